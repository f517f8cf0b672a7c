package core

import (
	"context"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

const defaultResolveWorkers = 4

// SchemaResolver builds a SchemaContext from a capability set, collecting
// every missing model and syntax error before giving up.
type SchemaResolver struct {
	Store    ports.ModelStorePort
	Compiler ports.SchemaCompilerPort
	Matcher  VersionMatcher
	Workers  int
}

func NewSchemaResolver(store ports.ModelStorePort, compiler ports.SchemaCompilerPort, matcher VersionMatcher) SchemaResolver {
	return SchemaResolver{
		Store:    store,
		Compiler: compiler,
		Matcher:  matcher,
		Workers:  defaultResolveWorkers,
	}
}

// Resolve returns the compiled context, or a *types.ResolutionError listing
// all missing models and syntax errors. Other errors come from the store.
func (r SchemaResolver) Resolve(ctx context.Context, capabilities []types.Capability) (*types.SchemaContext, error) {
	if r.Store == nil || r.Compiler == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires model store and schema compiler ports")
	}
	requested, err := ValidateCapabilities(ctx, capabilities)
	if err != nil {
		return nil, err
	}

	closure := newResolutionClosure()
	if err := r.collect(ctx, closure, requested); err != nil {
		return nil, err
	}
	if failure := closure.failure(); failure != nil {
		log.Ctx(ctx).Debug().
			Int("missing", len(failure.Missing)).
			Int("syntax_errors", len(failure.Syntax)).
			Msg("schema resolution incomplete")
		return nil, failure
	}

	sources := closure.sources()
	schema, diagnostics := r.Compiler.Compile(ctx, sources)
	if len(diagnostics) > 0 {
		return nil, &types.ResolutionError{Syntax: diagnostics}
	}
	if schema == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("schema compiler returned neither a schema nor diagnostics")
	}
	r.checkComplete(ctx, schema, closure, requested)

	log.Ctx(ctx).Debug().
		Int("requested", len(requested)).
		Int("sources", len(sources)).
		Int("modules", len(schema.Modules())).
		Msg("schema resolution completed")
	return schema, nil
}

// collect runs the import closure to a fixed point. Each wave is looked up
// in parallel and merged in request order.
func (r SchemaResolver) collect(ctx context.Context, closure *resolutionClosure, requested []types.Capability) error {
	frontier := make([]types.Capability, 0, len(requested))
	for _, capability := range requested {
		if closure.visit(capability) {
			frontier = append(frontier, capability)
		}
	}
	for wave := 0; len(frontier) > 0; wave++ {
		results, err := r.lookupWave(ctx, frontier)
		if err != nil {
			return err
		}
		var next []types.Capability
		for _, result := range results {
			next = append(next, closure.add(result)...)
		}
		log.Ctx(ctx).Debug().
			Int("wave", wave).
			Int("lookups", len(frontier)).
			Int("discovered", len(next)).
			Msg("resolution wave finished")
		frontier = next
	}
	return nil
}

type lookupResult struct {
	capability types.Capability
	model      types.StoredModel
	found      bool
	header     types.ModuleHeader
	inspectErr error
}

func (r SchemaResolver) lookupWave(ctx context.Context, wave []types.Capability) ([]lookupResult, error) {
	results := make([]lookupResult, len(wave))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers())
	for i, capability := range wave {
		group.Go(func() error {
			model, found, err := r.Matcher.Match(groupCtx, r.Store, capability)
			if err != nil {
				return err
			}
			result := lookupResult{capability: capability, model: model, found: found}
			if found {
				result.header, result.inspectErr = r.Compiler.Inspect(sourceFor(model))
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r SchemaResolver) workers() int {
	if r.Workers <= 0 {
		return defaultResolveWorkers
	}
	return r.Workers
}

// checkComplete guards the success contract: every requested module that
// was found must be present in the compiled context.
func (r SchemaResolver) checkComplete(ctx context.Context, schema *types.SchemaContext, closure *resolutionClosure, requested []types.Capability) {
	for _, capability := range requested {
		result, ok := closure.resolvedFor(capability)
		if !ok || result.header.Submodule {
			continue
		}
		name := ""
		if module := schema.Module(result.model.Name); module != nil {
			name = module.Name
		}
		assert.NotEmpty(ctx, name, "compiled schema is missing requested module "+result.model.Name)
	}
}

func sourceFor(model types.StoredModel) types.SchemaSource {
	return types.SchemaSource{Key: model.Key(), Name: model.Name, Body: model.Body}
}

// resolutionClosure is the fixed-point state. Requests are deduplicated by
// capability key and models by (name, resolved version).
type resolutionClosure struct {
	visited  map[string]struct{}
	resolved map[string]lookupResult
	byName   map[string]string
	requests map[string]string
	missing  map[string]types.Capability
	syntax   map[string]error
}

func newResolutionClosure() *resolutionClosure {
	return &resolutionClosure{
		visited:  map[string]struct{}{},
		resolved: map[string]lookupResult{},
		byName:   map[string]string{},
		requests: map[string]string{},
		missing:  map[string]types.Capability{},
		syntax:   map[string]error{},
	}
}

func (c *resolutionClosure) visit(capability types.Capability) bool {
	key := capability.Key()
	if _, seen := c.visited[key]; seen {
		return false
	}
	c.visited[key] = struct{}{}
	return true
}

// add records one lookup and returns the newly discovered dependencies.
func (c *resolutionClosure) add(result lookupResult) []types.Capability {
	if !result.found {
		c.missing[result.capability.Key()] = result.capability
		return nil
	}
	if result.capability.Version.Kind == types.VersionNone {
		if existing, ok := c.byName[result.model.Name]; ok {
			c.requests[result.capability.Key()] = existing
			return nil
		}
	}
	key := result.model.Key()
	c.requests[result.capability.Key()] = key
	if _, seen := c.resolved[key]; seen {
		return nil
	}
	c.resolved[key] = result
	if _, ok := c.byName[result.model.Name]; !ok {
		c.byName[result.model.Name] = key
	}
	if result.inspectErr != nil {
		c.syntax[key] = result.inspectErr
		return nil
	}
	var next []types.Capability
	for _, dep := range dependencyCapabilities(result.header) {
		if dep.Version.Kind == types.VersionNone {
			if _, ok := c.byName[dep.Name]; ok {
				continue
			}
		}
		if c.visit(dep) {
			next = append(next, dep)
		}
	}
	return next
}

func (c *resolutionClosure) resolvedFor(capability types.Capability) (lookupResult, bool) {
	key, ok := c.requests[capability.Key()]
	if !ok {
		return lookupResult{}, false
	}
	result, ok := c.resolved[key]
	return result, ok
}

// failure returns nil when nothing is missing and no source failed to parse.
// A versionless miss is forgiven when another request resolved that module.
func (c *resolutionClosure) failure() *types.ResolutionError {
	out := &types.ResolutionError{Syntax: map[string]error{}}
	for _, capability := range c.missing {
		if capability.Version.Kind == types.VersionNone {
			if _, ok := c.byName[capability.Name]; ok {
				continue
			}
		}
		out.Missing = append(out.Missing, capability)
	}
	sortCapabilities(out.Missing)
	for source, err := range c.syntax {
		out.Syntax[source] = err
	}
	if out.Empty() {
		return nil
	}
	return out
}

// sources returns compilation sources sorted by identity.
func (c *resolutionClosure) sources() []types.SchemaSource {
	keys := make([]string, 0, len(c.resolved))
	for key := range c.resolved {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]types.SchemaSource, 0, len(keys))
	for _, key := range keys {
		out = append(out, sourceFor(c.resolved[key].model))
	}
	return out
}
