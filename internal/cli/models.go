package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gnmi-yang-bridge/internal/app"
)

func newModelsCommand(store *storeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the model store",
	}
	cmd.AddCommand(newModelsAddCommand(store))
	cmd.AddCommand(newModelsListCommand(store))
	cmd.AddCommand(newModelsDeleteCommand(store))
	cmd.AddCommand(newModelsImportCommand(store))
	return cmd
}

type modelsAddOptions struct {
	Version string
}

func newModelsAddCommand(store *storeOptions) *cobra.Command {
	opts := modelsAddOptions{}
	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Store a YANG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			model, err := service.AddModel(cmd.Context(), app.AddModelRequest{
				Config:  storeConfig(cmd, store),
				Path:    args[0],
				Version: opts.Version,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", model.Key())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Version, "version", "", "Version to store under (default: declared openconfig-version or latest revision)")
	return cmd
}

func newModelsListCommand(store *storeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModelsList(cmd.Context(), cmd, store)
		},
	}
}

func runModelsList(ctx context.Context, cmd *cobra.Command, store *storeOptions) error {
	service := newAppService()
	models, err := service.ListModels(ctx, storeConfig(cmd, store))
	if err != nil {
		return err
	}
	for _, model := range models {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", model.Name, model.Version.Kind, model.Version.Value)
	}
	return nil
}

type modelsDeleteOptions struct {
	Version string
}

func newModelsDeleteCommand(store *storeOptions) *cobra.Command {
	opts := modelsDeleteOptions{}
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored model version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			if err := service.DeleteModel(cmd.Context(), storeConfig(cmd, store), args[0], opts.Version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Version, "version", "", "Version to delete (empty for a versionless model)")
	return cmd
}

func newModelsImportCommand(store *storeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Store every YANG file found under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newAppService()
			result, err := service.ImportModels(cmd.Context(), app.ImportModelsRequest{
				Config: storeConfig(cmd, store),
				Root:   args[0],
			})
			if err != nil {
				return err
			}
			for _, model := range result.Imported {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", model.Key())
			}
			for _, key := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s\n", key)
			}
			return nil
		},
	}
}
