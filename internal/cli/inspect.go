package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gnmi-yang-bridge/internal/app"
)

type inspectOptions struct {
	ReportPath string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a resolution report written by resolve",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "Resolution report file")
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{
		ReportPath: resolveString(cmd, opts.ReportPath, "report", "report"),
	})
	if err != nil {
		return err
	}
	printResolution(cmd.OutOrStdout(), result.Report)
	return nil
}
