package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gnmi-yang-bridge/internal/app"
	"gnmi-yang-bridge/internal/types"
)

// sessionOptions name the capability set and data file a session is
// opened on.
type sessionOptions struct {
	Capabilities capabilityOptions
	DataPath     string
}

func addSessionFlags(cmd *cobra.Command, opts *sessionOptions) {
	addCapabilityFlags(cmd, &opts.Capabilities)
	cmd.Flags().StringVar(&opts.DataPath, "data", "", "JSON data tree file")
	_ = viper.BindPFlag("data", cmd.Flags().Lookup("data"))
}

func openSession(ctx context.Context, cmd *cobra.Command, store *storeOptions, opts *sessionOptions) (*app.Session, error) {
	service := newAppService()
	return service.OpenSession(ctx, app.SessionRequest{
		Config:       storeConfig(cmd, store),
		Capabilities: capabilityInput(cmd, &opts.Capabilities),
		DataPath:     resolveString(cmd, opts.DataPath, "data", "data"),
	})
}

type getOptions struct {
	Session  sessionOptions
	DataType string
}

func newGetCommand(store *storeOptions) *cobra.Command {
	opts := getOptions{}
	cmd := &cobra.Command{
		Use:   "get [PATH...]",
		Short: "Read paths from the data tree as module-qualified JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), cmd, store, opts, args)
		},
	}
	addSessionFlags(cmd, &opts.Session)
	cmd.Flags().StringVar(&opts.DataType, "type", "all", "Data type: all, config or state")
	return cmd
}

func runGet(ctx context.Context, cmd *cobra.Command, store *storeOptions, opts getOptions, args []string) error {
	dataType, err := parseDataType(opts.DataType)
	if err != nil {
		return err
	}
	paths, err := parsePaths(args)
	if err != nil {
		return err
	}
	session, err := openSession(ctx, cmd, store, &opts.Session)
	if err != nil {
		return err
	}
	resp, err := session.Get(ctx, types.GetRequest{Paths: paths, DataType: dataType})
	for _, failure := range resp.Errors {
		log.Warn().Err(failure.Err).Str("path", failure.Path.String()).Msg("path skipped")
	}
	if err != nil {
		return err
	}
	for _, value := range resp.Values {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", value.Path, value.Value)
	}
	return nil
}

func parseDataType(raw string) (types.DataType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return types.DataTypeAll, nil
	case "config":
		return types.DataTypeConfig, nil
	case "state", "operational":
		return types.DataTypeState, nil
	default:
		return types.DataTypeAll, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown data type %q", raw))
	}
}

func parsePaths(raw []string) ([]types.WirePath, error) {
	paths := make([]types.WirePath, 0, len(raw))
	for _, value := range raw {
		path, err := app.ParsePath(value)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
