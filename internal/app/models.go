package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/policies"
	"gnmi-yang-bridge/internal/shared"
	"gnmi-yang-bridge/internal/types"
)

// ImportModels stores every YANG file found under root. Models already
// stored under the same name and version are skipped.
func (s Service) ImportModels(ctx context.Context, req ImportModelsRequest) (ImportModelsResult, error) {
	root, err := shared.RequireValue(req.Root, "import root")
	if err != nil {
		return ImportModelsResult{}, err
	}
	paths, err := s.Finder.FindModels(root)
	if err != nil {
		return ImportModelsResult{}, err
	}
	store, closeStore, err := OpenModelStore(req.Config)
	if err != nil {
		return ImportModelsResult{}, err
	}
	defer closeStore()

	result := ImportModelsResult{}
	for _, path := range paths {
		model, err := s.readModel(path, "")
		if err != nil {
			return ImportModelsResult{}, err
		}
		if err := store.AddModel(ctx, model); err != nil {
			if errbuilder.CodeOf(err) == errbuilder.CodeAlreadyExists {
				log.Ctx(ctx).Debug().Str("model", model.Key()).Msg("model already stored")
				result.Skipped = append(result.Skipped, model.Key())
				continue
			}
			return ImportModelsResult{}, err
		}
		result.Imported = append(result.Imported, model)
	}
	log.Ctx(ctx).Debug().
		Int("imported", len(result.Imported)).
		Int("skipped", len(result.Skipped)).
		Msg("models imported")
	return result, nil
}

// AddModel stores a single YANG file. An explicit version overrides the one
// the file declares.
func (s Service) AddModel(ctx context.Context, req AddModelRequest) (types.StoredModel, error) {
	model, err := s.readModel(req.Path, req.Version)
	if err != nil {
		return types.StoredModel{}, err
	}
	store, closeStore, err := OpenModelStore(req.Config)
	if err != nil {
		return types.StoredModel{}, err
	}
	defer closeStore()
	if err := store.AddModel(ctx, model); err != nil {
		return types.StoredModel{}, err
	}
	return model, nil
}

func (s Service) ListModels(ctx context.Context, cfg Config) ([]types.StoredModel, error) {
	store, closeStore, err := OpenModelStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return store.ListModels(ctx)
}

func (s Service) DeleteModel(ctx context.Context, cfg Config, name string, version string) error {
	name, err := shared.RequireValue(name, "model name")
	if err != nil {
		return err
	}
	store, closeStore, err := OpenModelStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return store.DeleteModel(ctx, name, policies.ClassifyVersion(version))
}

func (s Service) readModel(path string, version string) (types.StoredModel, error) {
	path, err := shared.RequireValue(path, "model path")
	if err != nil {
		return types.StoredModel{}, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return types.StoredModel{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read model %s", path)).
			WithCause(err)
	}
	header, err := s.Compiler.Inspect(types.SchemaSource{Key: path, Body: string(body)})
	if err != nil {
		return types.StoredModel{}, err
	}
	model := types.StoredModel{Name: header.Name, Version: headerVersion(header), Body: string(body)}
	if strings.TrimSpace(version) != "" {
		model.Version = policies.ClassifyVersion(version)
	}
	return model, nil
}

// headerVersion prefers the openconfig-version over the latest revision.
func headerVersion(header types.ModuleHeader) types.Version {
	switch {
	case header.SemVer != "":
		return types.SemVer(header.SemVer)
	case header.Revision != "":
		return types.Revision(header.Revision)
	default:
		return types.NoVersion()
	}
}
