package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnmi-yang-bridge/internal/types"
)

// testCompiler understands a line-based stand-in for YANG headers:
// "import name[@revision]", "include name", "submodule", "broken" and
// "compile-error".
type testCompiler struct {
	mu       sync.Mutex
	compiled [][]string
}

func (c *testCompiler) Inspect(source types.SchemaSource) (types.ModuleHeader, error) {
	header := types.ModuleHeader{Name: source.Name}
	for _, line := range strings.Split(source.Body, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "broken":
			return types.ModuleHeader{}, fmt.Errorf("%s:1:1: syntax error", source.Key)
		case "submodule":
			header.Submodule = true
		case "import":
			header.Imports = append(header.Imports, testDependency(fields[1]))
		case "include":
			header.Includes = append(header.Includes, testDependency(fields[1]))
		}
	}
	return header, nil
}

func testDependency(raw string) types.Capability {
	name, revision, _ := strings.Cut(raw, "@")
	if revision == "" {
		return types.Capability{Name: name}
	}
	return types.Capability{Name: name, Version: types.Revision(revision)}
}

func (c *testCompiler) Compile(_ context.Context, sources []types.SchemaSource) (*types.SchemaContext, map[string]error) {
	c.mu.Lock()
	var keys []string
	for _, source := range sources {
		keys = append(keys, source.Key)
	}
	c.compiled = append(c.compiled, keys)
	c.mu.Unlock()

	diagnostics := map[string]error{}
	var modules []*types.ModuleSchema
	for _, source := range sources {
		if strings.Contains(source.Body, "compile-error") {
			diagnostics[source.Key] = fmt.Errorf("%s: unresolved grouping", source.Key)
			continue
		}
		if strings.Contains(source.Body, "submodule") {
			continue
		}
		modules = append(modules, &types.ModuleSchema{Name: source.Name})
	}
	if len(diagnostics) > 0 {
		return nil, diagnostics
	}
	return types.NewSchemaContext(modules...), nil
}

func model(name string, version string, lines ...string) types.StoredModel {
	return types.StoredModel{Name: name, Version: types.Version{Value: version}, Body: strings.Join(lines, "\n")}
}

func openconfigStore(withExtensions bool) *testModelStore {
	store := &testModelStore{models: []types.StoredModel{
		model("openconfig-interfaces", "2.4.3", "import openconfig-extensions", "import openconfig-types", "import ietf-interfaces@2018-02-20"),
		model("openconfig-types", "0.6.0", "import openconfig-extensions"),
		model("ietf-interfaces", "2018-02-20"),
		model("openconfig-platform", "0.13.0", "import openconfig-extensions", "import openconfig-platform-types", "include openconfig-platform-common"),
		model("openconfig-platform-common", "0.13.0", "submodule", "import openconfig-platform-types"),
		model("openconfig-platform-types", "1.1.0", "import openconfig-types"),
	}}
	if withExtensions {
		store.models = append(store.models, model("openconfig-extensions", "0.5.0"))
	}
	return store
}

func openconfigCapabilities() []types.Capability {
	return []types.Capability{
		NewCapability("openconfig-interfaces", "2.4.3"),
		NewCapability("openconfig-platform", "0.13.0"),
	}
}

func TestSchemaResolverCompleteness(t *testing.T) {
	compiler := &testCompiler{}
	resolver := NewSchemaResolver(openconfigStore(true), compiler, NewVersionMatcher(false))

	schema, err := resolver.Resolve(t.Context(), openconfigCapabilities())
	require.NoError(t, err)
	want := []string{
		"ietf-interfaces",
		"openconfig-extensions",
		"openconfig-interfaces",
		"openconfig-platform",
		"openconfig-platform-types",
		"openconfig-types",
	}
	if diff := cmp.Diff(want, schema.ModuleNames()); diff != "" {
		t.Fatalf("unexpected modules (-want +got):\n%s", diff)
	}
	require.Len(t, compiler.compiled, 1)
	assert.Contains(t, compiler.compiled[0], "openconfig-platform-common@0.13.0")
}

func TestSchemaResolverMissingTransitiveImport(t *testing.T) {
	compiler := &testCompiler{}
	resolver := NewSchemaResolver(openconfigStore(false), compiler, NewVersionMatcher(false))

	schema, err := resolver.Resolve(t.Context(), openconfigCapabilities())
	require.Error(t, err)
	assert.Nil(t, schema)

	var failure *types.ResolutionError
	require.True(t, errors.As(err, &failure))
	if diff := cmp.Diff([]types.Capability{{Name: "openconfig-extensions"}}, failure.Missing); diff != "" {
		t.Fatalf("unexpected missing models (-want +got):\n%s", diff)
	}
	assert.Empty(t, failure.Syntax)
	assert.Empty(t, compiler.compiled, "compiler must not run on an incomplete set")
}

func TestSchemaResolverReportsExactlyTheMissing(t *testing.T) {
	store := &testModelStore{models: []types.StoredModel{
		model("present-a", "1.0.0"),
		model("present-b", "2020-01-01"),
	}}
	resolver := NewSchemaResolver(store, &testCompiler{}, NewVersionMatcher(false))

	_, err := resolver.Resolve(t.Context(), []types.Capability{
		NewCapability("present-a", "1.0.0"),
		NewCapability("present-b", "2020-01-01"),
		NewCapability("absent-c", "1.0.0"),
		NewCapability("absent-d", ""),
		NewCapability("present-a-wrong", "2021-01-01"),
	})
	var failure *types.ResolutionError
	require.True(t, errors.As(err, &failure))
	want := []types.Capability{
		NewCapability("absent-c", "1.0.0"),
		NewCapability("absent-d", ""),
		NewCapability("present-a-wrong", "2021-01-01"),
	}
	if diff := cmp.Diff(want, failure.Missing); diff != "" {
		t.Fatalf("unexpected missing models (-want +got):\n%s", diff)
	}
}

func TestSchemaResolverCountsSyntaxErrors(t *testing.T) {
	store := &testModelStore{models: []types.StoredModel{
		model("good", "1.0.0"),
		model("bad-one", "1.0.0", "broken"),
		model("bad-two", "2019-05-01", "broken"),
	}}
	resolver := NewSchemaResolver(store, &testCompiler{}, NewVersionMatcher(false))

	_, err := resolver.Resolve(t.Context(), []types.Capability{
		NewCapability("good", "1.0.0"),
		NewCapability("bad-one", "1.0.0"),
		NewCapability("bad-two", "2019-05-01"),
		NewCapability("gone", "1.0.0"),
	})
	var failure *types.ResolutionError
	require.True(t, errors.As(err, &failure))
	if diff := cmp.Diff([]string{"bad-one@1.0.0", "bad-two@2019-05-01"}, failure.SyntaxSources()); diff != "" {
		t.Fatalf("unexpected syntax sources (-want +got):\n%s", diff)
	}
	require.Len(t, failure.Missing, 1)
	assert.Equal(t, "gone", failure.Missing[0].Name)
}

func TestSchemaResolverCompilerDiagnostics(t *testing.T) {
	store := &testModelStore{models: []types.StoredModel{
		model("base", "1.0.0"),
		model("user", "1.0.0", "import base", "compile-error"),
	}}
	compiler := &testCompiler{}
	resolver := NewSchemaResolver(store, compiler, NewVersionMatcher(false))

	_, err := resolver.Resolve(t.Context(), []types.Capability{NewCapability("user", "1.0.0")})
	var failure *types.ResolutionError
	require.True(t, errors.As(err, &failure))
	assert.Empty(t, failure.Missing)
	assert.Equal(t, []string{"user@1.0.0"}, failure.SyntaxSources())
	require.Len(t, compiler.compiled, 1)
}

func TestSchemaResolverTerminatesOnCycles(t *testing.T) {
	store := &testModelStore{models: []types.StoredModel{
		model("a", "1.0.0", "import b", "import a"),
		model("b", "1.0.0", "import c", "import a"),
		model("c", "1.0.0", "import a", "import b"),
	}}
	schema, err := NewSchemaResolver(store, &testCompiler{}, NewVersionMatcher(false)).
		Resolve(t.Context(), []types.Capability{NewCapability("a", "1.0.0")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, schema.ModuleNames())
}

func TestSchemaResolverVersionlessImportReusesResolvedModule(t *testing.T) {
	store := &testModelStore{models: []types.StoredModel{
		model("shared", "1.0.0"),
		model("shared", "2.0.0"),
		model("user", "1.0.0", "import shared"),
	}}
	compiler := &testCompiler{}
	schema, err := NewSchemaResolver(store, compiler, NewVersionMatcher(false)).
		Resolve(t.Context(), []types.Capability{
			NewCapability("user", "1.0.0"),
			NewCapability("shared", "2.0.0"),
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "user"}, schema.ModuleNames())
	if diff := cmp.Diff([]string{"shared@2.0.0", "user@1.0.0"}, compiler.compiled[0]); diff != "" {
		t.Fatalf("unexpected sources (-want +got):\n%s", diff)
	}
}

func TestSchemaResolverAmbiguousImportIsMissing(t *testing.T) {
	store := &testModelStore{models: []types.StoredModel{
		model("shared", "1.0.0"),
		model("shared", "2.0.0"),
		model("user", "1.0.0", "import shared"),
	}}
	_, err := NewSchemaResolver(store, &testCompiler{}, NewVersionMatcher(false)).
		Resolve(t.Context(), []types.Capability{NewCapability("user", "1.0.0")})
	var failure *types.ResolutionError
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, []types.Capability{{Name: "shared"}}, failure.Missing)
}

func TestSchemaResolverDeterministicUnderParallelism(t *testing.T) {
	store := &testModelStore{}
	var capabilities []types.Capability
	for i := 0; i < 24; i++ {
		name := fmt.Sprintf("module-%02d", i)
		if i%3 == 0 {
			capabilities = append(capabilities, NewCapability(name, "1.0.0"))
			continue
		}
		store.models = append(store.models, model(name, "1.0.0", fmt.Sprintf("import dep-%02d", i)))
		capabilities = append(capabilities, NewCapability(name, "1.0.0"))
	}
	resolver := NewSchemaResolver(store, &testCompiler{}, NewVersionMatcher(false))
	resolver.Workers = 8

	var first *types.ResolutionError
	for run := 0; run < 10; run++ {
		_, err := resolver.Resolve(t.Context(), capabilities)
		var failure *types.ResolutionError
		require.True(t, errors.As(err, &failure))
		if first == nil {
			first = failure
			continue
		}
		if diff := cmp.Diff(first.Missing, failure.Missing); diff != "" {
			t.Fatalf("resolution is not deterministic (-want +got):\n%s", diff)
		}
	}
	assert.Len(t, first.Missing, 24)
}

func TestSchemaResolverPropagatesStoreErrors(t *testing.T) {
	store := &testModelStore{listErr: errors.New("store offline")}
	_, err := NewSchemaResolver(store, &testCompiler{}, NewVersionMatcher(false)).
		Resolve(t.Context(), []types.Capability{NewCapability("a", "1.0.0")})
	require.Error(t, err)
	var failure *types.ResolutionError
	assert.False(t, errors.As(err, &failure))
}

func TestSchemaResolverRequiresPorts(t *testing.T) {
	_, err := SchemaResolver{}.Resolve(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires model store")
}
