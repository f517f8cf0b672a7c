package app

import (
	"context"
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/core"
	"gnmi-yang-bridge/internal/ports"
	"gnmi-yang-bridge/internal/types"
)

// Resolve compiles the schema for a capability set. A resolution failure
// is returned as *types.ResolutionError after the report, if requested,
// has been written.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	capabilities, err := s.loadCapabilities(req.Capabilities)
	if err != nil {
		return ResolveResult{}, err
	}
	store, closeStore, err := OpenModelStore(req.Config)
	if err != nil {
		return ResolveResult{}, err
	}
	defer closeStore()

	schema, resolveErr := s.resolveWith(ctx, store, req.Config, capabilities)
	var failure *types.ResolutionError
	if resolveErr != nil && !errors.As(resolveErr, &failure) {
		return ResolveResult{}, resolveErr
	}
	report := types.NewResolutionReport(schema, failure)
	if path := strings.TrimSpace(req.ReportPath); path != "" {
		if err := s.Reports.WriteReport(path, report); err != nil {
			return ResolveResult{}, err
		}
		log.Ctx(ctx).Debug().Str("path", path).Msg("resolution report written")
	}
	if resolveErr != nil {
		return ResolveResult{Report: report}, resolveErr
	}
	return ResolveResult{Schema: schema, Report: report}, nil
}

func (s Service) resolveWith(ctx context.Context, store ports.ModelStorePort, cfg Config, capabilities []types.Capability) (*types.SchemaContext, error) {
	cfg = cfg.withDefaults()
	resolver := core.NewSchemaResolver(store, s.Compiler, core.NewVersionMatcher(cfg.SemVerCompatible))
	resolver.Workers = cfg.Workers
	return resolver.Resolve(ctx, capabilities)
}

func (s Service) loadCapabilities(input CapabilityInput) ([]types.Capability, error) {
	var capabilities []types.Capability
	if path := strings.TrimSpace(input.File); path != "" {
		loaded, err := s.Capabilities.LoadCapabilities(path)
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, loaded...)
	}
	for _, raw := range input.Inline {
		capability, err := core.ParseCapability(raw)
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, capability)
	}
	if len(capabilities) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one capability is required")
	}
	return capabilities, nil
}
