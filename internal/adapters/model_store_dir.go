package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"gnmi-yang-bridge/internal/policies"
	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/shared"
	"gnmi-yang-bridge/internal/types"
)

// ManifestFile is the optional per-directory model listing.
const ManifestFile = "models.yaml"

const (
	yangExtension  = ".yang"
	reloadDebounce = 200 * time.Millisecond
)

type modelManifest struct {
	Models []manifestEntry `yaml:"models"`
}

type manifestEntry struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
	File    string `yaml:"file"`
}

type modelOrigin struct {
	dir  string
	file string
}

// DirModelStore serves models from layered directories. Each directory is
// described by a models.yaml manifest or, without one, by files named
// name.yang or name@version.yang. Later directories override earlier ones
// per model key; writes go to the last directory.
type DirModelStore struct {
	dirs []string

	mu      sync.RWMutex
	models  *MemoryModelStore
	origins map[string]modelOrigin
}

func NewDirModelStore(dirs ...string) (*DirModelStore, error) {
	if len(dirs) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one models directory is required")
	}
	store := &DirModelStore{dirs: append([]string(nil), dirs...)}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Reload rereads every layer and swaps the served set in one step.
func (s *DirModelStore) Reload() error {
	models := NewMemoryModelStore()
	origins := map[string]modelOrigin{}
	for _, dir := range s.dirs {
		layer, err := loadModelLayer(dir)
		if err != nil {
			return err
		}
		for _, loaded := range layer {
			key := loaded.model.Key()
			if _, exists := origins[key]; exists {
				log.Debug().
					Str("model", key).
					Str("layer", dir).
					Msg("model overridden by later layer")
			}
			models.put(loaded.model)
			origins[key] = loaded.origin
		}
	}

	s.mu.Lock()
	s.models = models
	s.origins = origins
	s.mu.Unlock()
	log.Debug().
		Strs("dirs", s.dirs).
		Int("models", len(origins)).
		Msg("model directories loaded")
	return nil
}

type loadedModel struct {
	model  types.StoredModel
	origin modelOrigin
}

func loadModelLayer(dir string) ([]loadedModel, error) {
	manifest, found, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	if found {
		out := make([]loadedModel, 0, len(manifest.Models))
		for _, entry := range manifest.Models {
			if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.File) == "" {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("manifest entry needs name and file in " + filepath.Join(dir, ManifestFile))
			}
			loaded, err := readModelFile(dir, entry.File, entry.Name, entry.Version)
			if err != nil {
				return nil, err
			}
			out = append(out, loaded)
		}
		return out, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read models directory: " + dir).
			WithCause(err)
	}
	var out []loadedModel
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != yangExtension {
			continue
		}
		name, version, _ := shared.SplitVersioned(strings.TrimSuffix(entry.Name(), yangExtension))
		loaded, err := readModelFile(dir, entry.Name(), name, version)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	return out, nil
}

func readManifest(dir string) (modelManifest, bool, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return modelManifest{}, false, nil
	}
	if err != nil {
		return modelManifest{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read manifest: " + path).
			WithCause(err)
	}
	var manifest modelManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return modelManifest{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse manifest: " + path).
			WithCause(err)
	}
	return manifest, true, nil
}

func writeManifest(dir string, manifest modelManifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode manifest").
			WithCause(err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest: " + path).
			WithCause(err)
	}
	return nil
}

func readModelFile(dir string, file string, name string, version string) (loadedModel, error) {
	path := filepath.Join(dir, file)
	body, err := os.ReadFile(path)
	if err != nil {
		return loadedModel{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read model file: " + path).
			WithCause(err)
	}
	return loadedModel{
		model: types.StoredModel{
			Name:    name,
			Version: policies.ClassifyVersion(version),
			Body:    string(body),
		},
		origin: modelOrigin{dir: dir, file: file},
	}, nil
}

func (s *DirModelStore) current() *MemoryModelStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models
}

func (s *DirModelStore) topLayer() string {
	return s.dirs[len(s.dirs)-1]
}

// AddModel writes the model into the last directory, registering it in
// that directory's manifest when one exists.
func (s *DirModelStore) AddModel(ctx context.Context, model types.StoredModel) error {
	if err := validateStoredModel(model); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.origins[model.Key()]; exists {
		return errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg("model already stored: " + model.Key())
	}

	dir := s.topLayer()
	file := model.Key() + yangExtension
	if err := os.WriteFile(filepath.Join(dir, file), []byte(model.Body), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write model file").
			WithCause(err)
	}
	manifest, found, err := readManifest(dir)
	if err != nil {
		return err
	}
	if found {
		manifest.Models = append(manifest.Models, manifestEntry{Name: model.Name, Version: model.Version.Value, File: file})
		if err := writeManifest(dir, manifest); err != nil {
			return err
		}
	}
	if err := s.models.AddModel(ctx, model); err != nil {
		return err
	}
	s.origins[model.Key()] = modelOrigin{dir: dir, file: file}
	log.Ctx(ctx).Debug().Str("model", model.Key()).Str("dir", dir).Msg("model added")
	return nil
}

func (s *DirModelStore) ReadModel(ctx context.Context, name string) (types.StoredModel, bool, error) {
	return s.current().ReadModel(ctx, name)
}

func (s *DirModelStore) ReadModelVersion(ctx context.Context, name string, version types.Version) (types.StoredModel, bool, error) {
	return s.current().ReadModelVersion(ctx, name, version)
}

func (s *DirModelStore) ListVersions(ctx context.Context, name string) ([]types.StoredModel, error) {
	return s.current().ListVersions(ctx, name)
}

func (s *DirModelStore) ListModels(ctx context.Context) ([]types.StoredModel, error) {
	return s.current().ListModels(ctx)
}

// DeleteModel removes a model file from the last directory. Models served
// by lower layers are read-only.
func (s *DirModelStore) DeleteModel(ctx context.Context, name string, version types.Version) error {
	key := types.Capability{Name: name, Version: version}.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	origin, ok := s.origins[key]
	if !ok {
		return modelNotFound(types.Capability{Name: name, Version: version})
	}
	if origin.dir != s.topLayer() {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("model " + key + " is provided by read-only layer " + origin.dir)
	}

	manifest, found, err := readManifest(origin.dir)
	if err != nil {
		return err
	}
	if found {
		kept := manifest.Models[:0]
		for _, entry := range manifest.Models {
			if entry.File != origin.file {
				kept = append(kept, entry)
			}
		}
		manifest.Models = kept
		if err := writeManifest(origin.dir, manifest); err != nil {
			return err
		}
	}
	if err := os.Remove(filepath.Join(origin.dir, origin.file)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove model file").
			WithCause(err)
	}
	if err := s.models.DeleteModel(ctx, name, version); err != nil {
		return err
	}
	delete(s.origins, key)
	log.Ctx(ctx).Debug().Str("model", key).Msg("model deleted")
	return nil
}

// Watch reloads the store when model files or manifests change. It blocks
// until ctx is cancelled. onReload runs once the watches are in place and
// after every successful reload. Reload failures are logged and the
// previous model set keeps being served.
func (s *DirModelStore) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to start models watcher").
			WithCause(err)
	}
	defer watcher.Close()

	for _, dir := range s.dirs {
		if err := watcher.Add(dir); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to watch models directory: " + dir).
				WithCause(err)
		}
	}
	logger := log.Ctx(ctx)
	logger.Debug().Strs("dirs", s.dirs).Msg("models watcher started")
	if onReload != nil {
		onReload()
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				logger.Warn().Err(err).Msg("models reload failed")
				continue
			}
			if onReload != nil {
				onReload()
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isModelFile(event.Name) {
				continue
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("models changed")
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(watchErr).Msg("models watcher error")
		}
	}
}

func isModelFile(path string) bool {
	base := filepath.Base(path)
	return base == ManifestFile || filepath.Ext(base) == yangExtension
}

// Dirs returns the configured layers, lowest first.
func (s *DirModelStore) Dirs() []string {
	return append([]string(nil), s.dirs...)
}

var _ ports.ModelStorePort = (*DirModelStore)(nil)
