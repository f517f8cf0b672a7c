package adapters

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// MemoryModelStore keeps models in memory, keyed by name and version
// string.
type MemoryModelStore struct {
	mu     sync.RWMutex
	models map[string]map[string]types.StoredModel
}

func NewMemoryModelStore(models ...types.StoredModel) *MemoryModelStore {
	store := &MemoryModelStore{models: map[string]map[string]types.StoredModel{}}
	for _, model := range models {
		store.put(model)
	}
	return store
}

func (s *MemoryModelStore) AddModel(_ context.Context, model types.StoredModel) error {
	if err := validateStoredModel(model); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.models[model.Name][model.Version.Value]; exists {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("model already stored: " + model.Key())
	}
	s.put(model)
	return nil
}

func (s *MemoryModelStore) put(model types.StoredModel) {
	versions, ok := s.models[model.Name]
	if !ok {
		versions = map[string]types.StoredModel{}
		s.models[model.Name] = versions
	}
	versions[model.Version.Value] = model
}

func (s *MemoryModelStore) ReadModel(_ context.Context, name string) (types.StoredModel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.models[name]
	switch len(versions) {
	case 0:
		return types.StoredModel{}, false, nil
	case 1:
		for _, model := range versions {
			return model, true, nil
		}
	}
	return types.StoredModel{}, false, ambiguousModel(name, len(versions))
}

func (s *MemoryModelStore) ReadModelVersion(_ context.Context, name string, version types.Version) (types.StoredModel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[name][version.Value]
	return model, ok, nil
}

func (s *MemoryModelStore) ListVersions(_ context.Context, name string) ([]types.StoredModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.StoredModel, 0, len(s.models[name]))
	for _, model := range s.models[name] {
		out = append(out, model)
	}
	sortModels(out)
	return out, nil
}

func (s *MemoryModelStore) ListModels(_ context.Context) ([]types.StoredModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.StoredModel
	for _, versions := range s.models {
		for _, model := range versions {
			out = append(out, model)
		}
	}
	sortModels(out)
	return out, nil
}

func (s *MemoryModelStore) DeleteModel(_ context.Context, name string, version types.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[name][version.Value]; !ok {
		return modelNotFound(types.Capability{Name: name, Version: version})
	}
	delete(s.models[name], version.Value)
	if len(s.models[name]) == 0 {
		delete(s.models, name)
	}
	return nil
}

func validateStoredModel(model types.StoredModel) error {
	if strings.TrimSpace(model.Name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("model name is required")
	}
	if strings.TrimSpace(model.Body) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("model body is empty: " + model.Key())
	}
	return nil
}

func ambiguousModel(name string, versions int) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("model %s is ambiguous: %d versions stored", name, versions))
}

func modelNotFound(capability types.Capability) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("model not found: " + capability.Key())
}

func sortModels(models []types.StoredModel) {
	sort.Slice(models, func(i, j int) bool {
		return models[i].Key() < models[j].Key()
	})
}

var _ ports.ModelStorePort = (*MemoryModelStore)(nil)
