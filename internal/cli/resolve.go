package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gnmi-yang-bridge/internal/app"
	"gnmi-yang-bridge/internal/types"
)

type resolveOptions struct {
	Capabilities capabilityOptions
	ReportPath   string
	Watch        bool
}

func newResolveCommand(store *storeOptions) *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the schema for a capability set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, store, opts)
		},
	}
	addCapabilityFlags(cmd, &opts.Capabilities)
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "Write the resolution report to this file")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Resolve again whenever the model directories change")
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, store *storeOptions, opts resolveOptions) error {
	service := newAppService()
	req := app.ResolveRequest{
		Config:       storeConfig(cmd, store),
		Capabilities: capabilityInput(cmd, &opts.Capabilities),
		ReportPath:   resolveString(cmd, opts.ReportPath, "report", "report"),
	}
	if opts.Watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return service.WatchResolve(ctx, req, func(result app.ResolveResult, err error) {
			printResolution(cmd.OutOrStdout(), result.Report)
			if err != nil {
				log.Warn().Err(err).Msg("resolution failed")
			}
		})
	}

	result, err := service.Resolve(ctx, req)
	var failure *types.ResolutionError
	if err != nil && !errors.As(err, &failure) {
		return err
	}
	printResolution(cmd.OutOrStdout(), result.Report)
	return err
}

func printResolution(out io.Writer, report types.ResolutionReport) {
	if report.Succeeded {
		fmt.Fprintf(out, "resolved %d modules\n", len(report.Modules))
		for _, module := range report.Modules {
			fmt.Fprintf(out, "- %s %s\n", module.Name, module.Revision)
		}
		return
	}
	fmt.Fprintln(out, "resolution failed")
	for _, missing := range report.Missing {
		fmt.Fprintf(out, "missing: %s\n", missing)
	}
	for _, diagnostic := range report.Syntax {
		fmt.Fprintf(out, "syntax: %s: %s\n", diagnostic.Source, diagnostic.Message)
	}
}
