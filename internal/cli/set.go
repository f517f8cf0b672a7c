package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gnmi-yang-bridge/internal/app"
	"gnmi-yang-bridge/internal/types"
)

type setOptions struct {
	Session  sessionOptions
	Deletes  []string
	Replaces []string
	Updates  []string
	DryRun   bool
}

func newSetCommand(store *storeOptions) *cobra.Command {
	opts := setOptions{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Apply deletes, replaces and updates to the data tree in one transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSet(cmd.Context(), cmd, store, opts)
		},
	}
	addSessionFlags(cmd, &opts.Session)
	cmd.Flags().StringArrayVar(&opts.Deletes, "delete", nil, "Path to delete")
	cmd.Flags().StringArrayVar(&opts.Replaces, "replace", nil, "path=value to replace")
	cmd.Flags().StringArrayVar(&opts.Updates, "update", nil, "path=value to merge")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the committed updates without saving the data file")
	return cmd
}

func runSet(ctx context.Context, cmd *cobra.Command, store *storeOptions, opts setOptions) error {
	req, err := buildSetRequest(opts)
	if err != nil {
		return err
	}
	session, err := openSession(ctx, cmd, store, &opts.Session)
	if err != nil {
		return err
	}
	resp, err := session.Set(ctx, req)
	if err != nil {
		return err
	}
	for _, update := range resp.Committed {
		if update.Kind == types.OpDelete {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", update.Kind, update.Path)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", update.Kind, update.Path, update.Value)
	}
	if opts.DryRun {
		return nil
	}
	return session.Save(ctx)
}

func buildSetRequest(opts setOptions) (types.SetRequest, error) {
	req := types.SetRequest{}
	deletes, err := parsePaths(opts.Deletes)
	if err != nil {
		return types.SetRequest{}, err
	}
	req.Deletes = deletes
	for _, raw := range opts.Replaces {
		update, err := app.ParsePathUpdate(raw)
		if err != nil {
			return types.SetRequest{}, err
		}
		req.Replaces = append(req.Replaces, update)
	}
	for _, raw := range opts.Updates {
		update, err := app.ParsePathUpdate(raw)
		if err != nil {
			return types.SetRequest{}, err
		}
		req.Updates = append(req.Updates, update)
	}
	return req, nil
}
