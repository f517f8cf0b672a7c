package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gnmi-yang-bridge/internal/app"
)

type validateOptions struct {
	Capabilities capabilityOptions
}

func newValidateCommand(store *storeOptions) *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a capability set and the stored models without compiling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, store, opts)
		},
	}
	addCapabilityFlags(cmd, &opts.Capabilities)
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, store *storeOptions, opts validateOptions) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		Config:       storeConfig(cmd, store),
		Capabilities: capabilityInput(cmd, &opts.Capabilities),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "validated: %d capabilities, %d stored models\n", len(result.Capabilities), result.Models)
	return nil
}
