package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

func storedModel(name string, version types.Version) types.StoredModel {
	return types.StoredModel{Name: name, Version: version, Body: "module " + name + " {}\n"}
}

// exerciseModelStore runs the shared ModelStorePort contract against store.
func exerciseModelStore(t *testing.T, store ports.ModelStorePort) {
	t.Helper()
	ctx := t.Context()

	require.NoError(t, store.AddModel(ctx, storedModel("openconfig-interfaces", types.SemVer("3.0.0"))))
	require.NoError(t, store.AddModel(ctx, storedModel("example-system", types.Revision("2023-05-01"))))
	require.NoError(t, store.AddModel(ctx, storedModel("example-system", types.Revision("2024-01-10"))))

	err := store.AddModel(ctx, storedModel("openconfig-interfaces", types.SemVer("3.0.0")))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeAlreadyExists, errbuilder.CodeOf(err))

	model, found, err := store.ReadModel(ctx, "openconfig-interfaces")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.SemVer("3.0.0"), model.Version)

	_, _, err = store.ReadModel(ctx, "example-system")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))

	_, found, err = store.ReadModel(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	model, found, err = store.ReadModelVersion(ctx, "example-system", types.Revision("2024-01-10"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.Revision("2024-01-10"), model.Version)

	versions, err := store.ListVersions(ctx, "example-system")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "example-system@2023-05-01", versions[0].Key())

	all, err := store.ListModels(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.DeleteModel(ctx, "example-system", types.Revision("2023-05-01")))
	model, found, err = store.ReadModel(ctx, "example-system")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2024-01-10", model.Version.Value)

	err = store.DeleteModel(ctx, "example-system", types.Revision("2023-05-01"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	err = store.AddModel(ctx, types.StoredModel{Name: "empty"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestMemoryModelStore(t *testing.T) {
	exerciseModelStore(t, NewMemoryModelStore())
}

func TestSQLiteModelStore(t *testing.T) {
	store, err := OpenSQLiteModelStore(filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	exerciseModelStore(t, store)
}

func TestSQLiteModelStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.db")
	store, err := OpenSQLiteModelStore(path)
	require.NoError(t, err)
	require.NoError(t, store.AddModel(t.Context(), storedModel("example-system", types.Revision("2023-05-01"))))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteModelStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	model, found, err := reopened.ReadModel(t.Context(), "example-system")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.VersionRevision, model.Version.Kind)
}

func TestDirModelStore(t *testing.T) {
	store, err := NewDirModelStore(t.TempDir())
	require.NoError(t, err)
	exerciseModelStore(t, store)
}

func TestDirModelStoreLoadsManifestAndOverlay(t *testing.T) {
	store, err := NewDirModelStore(fixtureModels, "../../fixtures/overlay")
	require.NoError(t, err)
	ctx := t.Context()

	model, found, err := store.ReadModelVersion(ctx, "openconfig-interfaces", types.SemVer("3.0.0"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.VersionSemVer, model.Version.Kind)
	assert.Contains(t, model.Body, "module openconfig-interfaces")

	versions, err := store.ListVersions(ctx, "example-system")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, types.VersionRevision, versions[1].Version.Kind)

	err = store.DeleteModel(ctx, "openconfig-interfaces", types.SemVer("3.0.0"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestDirModelStoreMaintainsManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("models: []\n"), 0o644))
	store, err := NewDirModelStore(dir)
	require.NoError(t, err)
	ctx := t.Context()

	require.NoError(t, store.AddModel(ctx, storedModel("example-system", types.Revision("2023-05-01"))))
	manifest, found, err := readManifest(dir)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, manifest.Models, 1)
	assert.Equal(t, "example-system@2023-05-01.yang", manifest.Models[0].File)

	require.NoError(t, store.Reload())
	_, found, err = store.ReadModel(ctx, "example-system")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, store.DeleteModel(ctx, "example-system", types.Revision("2023-05-01")))
	manifest, _, err = readManifest(dir)
	require.NoError(t, err)
	assert.Empty(t, manifest.Models)
	assert.NoFileExists(t, filepath.Join(dir, "example-system@2023-05-01.yang"))
}

func TestDirModelStoreRejectsBadManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("models:\n  - name: x\n"), 0o644))

	_, err := NewDirModelStore(dir)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestDirModelStoreWatchReloads(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirModelStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	reloads := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func() { reloads <- struct{}{} })
	}()
	waitReload(t, reloads)

	body := []byte("module example-system { namespace \"urn:example:system\"; prefix sys; }\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example-system@2023-05-01.yang"), body, 0o644))
	waitReload(t, reloads)

	model, found, err := store.ReadModel(ctx, "example-system")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.Revision("2023-05-01"), model.Version)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func waitReload(t *testing.T, reloads <-chan struct{}) {
	t.Helper()
	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
