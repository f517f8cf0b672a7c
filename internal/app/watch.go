package app

import (
	"context"
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gnmi-yang-bridge/internal/adapters"
	"gnmi-yang-bridge/internal/types"
)

// WatchResolve resolves when watching starts and again whenever the model
// directories change, until ctx is cancelled. Only directory stores can be
// watched.
func (s Service) WatchResolve(ctx context.Context, req ResolveRequest, onResult func(ResolveResult, error)) error {
	cfg := req.Config.withDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.StorePath) != "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("only model directories can be watched")
	}
	capabilities, err := s.loadCapabilities(req.Capabilities)
	if err != nil {
		return err
	}
	store, err := adapters.NewDirModelStore(cfg.ModelsDirs...)
	if err != nil {
		return err
	}

	resolve := func() {
		schema, err := s.resolveWith(ctx, store, cfg, capabilities)
		var failure *types.ResolutionError
		if err != nil && !errors.As(err, &failure) {
			onResult(ResolveResult{}, err)
			return
		}
		report := types.NewResolutionReport(schema, failure)
		if path := strings.TrimSpace(req.ReportPath); path != "" {
			if writeErr := s.Reports.WriteReport(path, report); writeErr != nil {
				log.Ctx(ctx).Warn().Err(writeErr).Str("path", path).Msg("failed to write resolution report")
			}
		}
		onResult(ResolveResult{Schema: schema, Report: report}, err)
	}

	return store.Watch(ctx, resolve)
}
