package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/policies"
	"gnmi-yang-bridge/internal/shared"
	"gnmi-yang-bridge/internal/types"
)

// ParseCapability splits a raw "name@version" string into a Capability.
// A bare name is versionless.
func ParseCapability(raw string) (types.Capability, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Capability{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty capability")
	}
	name, version, hasVersion := shared.SplitVersioned(raw)
	if name == "" || (hasVersion && version == "") {
		return types.Capability{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid capability: %s", raw))
	}
	return NewCapability(name, version), nil
}

// NewCapability classifies version and builds a Capability.
func NewCapability(name string, version string) types.Capability {
	return types.Capability{
		Name:    strings.TrimSpace(name),
		Version: policies.ClassifyVersion(version),
	}
}

// ValidateCapabilities rejects unnamed entries and modules requested at two
// different versions. It returns the set deduplicated and sorted by key.
func ValidateCapabilities(ctx context.Context, capabilities []types.Capability) ([]types.Capability, error) {
	byName := map[string]types.Capability{}
	for _, capability := range capabilities {
		if strings.TrimSpace(capability.Name) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("capability name must be set")
		}
		existing, ok := byName[capability.Name]
		if !ok {
			byName[capability.Name] = capability
			continue
		}
		if existing.Version.Value != capability.Version.Value {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("conflicting versions for %s: %s and %s", capability.Name, existing.Version.Value, capability.Version.Value))
		}
	}
	out := make([]types.Capability, 0, len(byName))
	for _, capability := range byName {
		assert.NotEmpty(ctx, capability.Key(), "capability key must be set")
		out = append(out, capability)
	}
	sortCapabilities(out)
	log.Ctx(ctx).Debug().
		Int("requested", len(capabilities)).
		Int("unique", len(out)).
		Msg("capabilities validated")
	return out, nil
}

func sortCapabilities(capabilities []types.Capability) {
	sort.Slice(capabilities, func(i, j int) bool {
		return capabilities[i].Key() < capabilities[j].Key()
	})
}
