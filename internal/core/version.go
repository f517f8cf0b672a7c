package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/blang/semver/v4"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/policies"
	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// versionCache memoizes parsed semantic versions so repeated lookups of the
// same module during a resolution do not re-parse stored versions.
type versionCache struct {
	mu     sync.Mutex
	semver map[string]semver.Version
}

func newVersionCache() *versionCache {
	return &versionCache{semver: map[string]semver.Version{}}
}

// semVersion returns a parsed semantic version, caching the result.
func (c *versionCache) semVersion(value string) (semver.Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if parsed, ok := c.semver[value]; ok {
		return parsed, nil
	}
	parsed, err := semver.Parse(value)
	if err != nil {
		return semver.Version{}, err
	}
	c.semver[value] = parsed
	return parsed, nil
}

// VersionMatcher selects the stored model satisfying a capability. The
// discipline is chosen from the stored version string; see
// policies.ClassifyVersion.
type VersionMatcher struct {
	// Compatible lets a semantic-version capability fall back to the
	// highest stored version with the same major (same minor for 0.x)
	// that is not lower than the requested one.
	Compatible bool
	cache      *versionCache
}

func NewVersionMatcher(compatible bool) VersionMatcher {
	return VersionMatcher{Compatible: compatible, cache: newVersionCache()}
}

// Match returns the unique stored model for capability. Ambiguity is
// reported as not found.
func (m VersionMatcher) Match(ctx context.Context, store ports.ModelStorePort, capability types.Capability) (types.StoredModel, bool, error) {
	if store == nil {
		return types.StoredModel{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("version matcher requires a model store")
	}
	if capability.Version.Kind == types.VersionNone {
		model, found, err := store.ReadModel(ctx, capability.Name)
		if err != nil {
			if errbuilder.CodeOf(err) == errbuilder.CodeFailedPrecondition {
				log.Ctx(ctx).Debug().
					Str("module", capability.Name).
					Msg("versionless capability is ambiguous")
				return types.StoredModel{}, false, nil
			}
			return types.StoredModel{}, false, err
		}
		return model, found, nil
	}

	stored, err := store.ListVersions(ctx, capability.Name)
	if err != nil {
		return types.StoredModel{}, false, err
	}
	var candidates []types.StoredModel
	switch capability.Version.Kind {
	case types.VersionSemVer:
		candidates, err = m.semverCandidates(capability, stored)
		if err != nil {
			return types.StoredModel{}, false, err
		}
	case types.VersionRevision:
		candidates = revisionCandidates(capability, stored)
	}
	switch len(candidates) {
	case 0:
		return types.StoredModel{}, false, nil
	case 1:
		return candidates[0], true, nil
	default:
		log.Ctx(ctx).Debug().
			Str("capability", capability.Key()).
			Int("candidates", len(candidates)).
			Msg("capability matches several stored models")
		return types.StoredModel{}, false, nil
	}
}

func (m VersionMatcher) semverCandidates(capability types.Capability, stored []types.StoredModel) ([]types.StoredModel, error) {
	cache := m.cache
	if cache == nil {
		cache = newVersionCache()
	}
	requested, err := cache.semVersion(capability.Version.Value)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid semantic version for %s: %s", capability.Name, capability.Version.Value)).
			WithCause(err)
	}

	type parsedModel struct {
		model   types.StoredModel
		version semver.Version
	}
	var semverModels []parsedModel
	for _, model := range stored {
		if policies.ClassifyVersion(model.Version.Value).Kind != types.VersionSemVer {
			continue
		}
		parsed, err := cache.semVersion(model.Version.Value)
		if err != nil {
			continue
		}
		semverModels = append(semverModels, parsedModel{model: model, version: parsed})
	}

	var exact []types.StoredModel
	for _, candidate := range semverModels {
		if candidate.version.Compare(requested) == 0 {
			exact = append(exact, candidate.model)
		}
	}
	if len(exact) > 0 || !m.Compatible {
		return exact, nil
	}

	var compatible []parsedModel
	for _, candidate := range semverModels {
		if candidate.version.Major != requested.Major {
			continue
		}
		if requested.Major == 0 && candidate.version.Minor != requested.Minor {
			continue
		}
		if candidate.version.LT(requested) {
			continue
		}
		compatible = append(compatible, candidate)
	}
	if len(compatible) == 0 {
		return nil, nil
	}
	sort.SliceStable(compatible, func(i, j int) bool {
		return compatible[i].version.GT(compatible[j].version)
	})
	best := compatible[0].version
	var out []types.StoredModel
	for _, candidate := range compatible {
		if candidate.version.Compare(best) == 0 {
			out = append(out, candidate.model)
		}
	}
	return out, nil
}

func revisionCandidates(capability types.Capability, stored []types.StoredModel) []types.StoredModel {
	var out []types.StoredModel
	for _, model := range stored {
		version := policies.ClassifyVersion(model.Version.Value)
		if version.Kind == types.VersionRevision && version.Value == capability.Version.Value {
			out = append(out, model)
		}
	}
	return out
}
