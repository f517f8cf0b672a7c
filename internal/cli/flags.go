package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gnmi-yang-bridge/internal/app"
)

// storeOptions select the model store and tune resolution for every
// command that needs models.
type storeOptions struct {
	ModelsDirs       []string
	StorePath        string
	Workers          int
	SemVerCompatible bool
}

func addStoreFlags(cmd *cobra.Command, opts *storeOptions) {
	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.ModelsDirs, "models-dir", nil, "Model directories, lowest layer first")
	flags.StringVar(&opts.StorePath, "store", "", "SQLite model store path (overrides --models-dir)")
	flags.IntVar(&opts.Workers, "workers", app.DefaultWorkers, "Parallel model lookups")
	flags.BoolVar(&opts.SemVerCompatible, "semver-compatible", false, "Accept the newest compatible semantic version")
	_ = viper.BindPFlag("models_dirs", flags.Lookup("models-dir"))
	_ = viper.BindPFlag("store", flags.Lookup("store"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("semver_compatible", flags.Lookup("semver-compatible"))
}

func storeConfig(cmd *cobra.Command, opts *storeOptions) app.Config {
	return app.Config{
		ModelsDirs:       resolveStrings(cmd, opts.ModelsDirs, "models_dirs", "models-dir"),
		StorePath:        resolveString(cmd, opts.StorePath, "store", "store"),
		Workers:          resolveInt(cmd, opts.Workers, "workers", "workers"),
		SemVerCompatible: resolveBool(cmd, opts.SemVerCompatible, "semver_compatible", "semver-compatible"),
	}
}

type capabilityOptions struct {
	File   string
	Inline []string
}

func addCapabilityFlags(cmd *cobra.Command, opts *capabilityOptions) {
	cmd.Flags().StringVar(&opts.File, "capabilities", "", "Capability list file (YAML or gNMI CapabilityResponse JSON)")
	cmd.Flags().StringSliceVar(&opts.Inline, "capability", nil, "Capability as name[@version]")
	_ = viper.BindPFlag("capabilities", cmd.Flags().Lookup("capabilities"))
	_ = viper.BindPFlag("capability", cmd.Flags().Lookup("capability"))
}

func capabilityInput(cmd *cobra.Command, opts *capabilityOptions) app.CapabilityInput {
	return app.CapabilityInput{
		File:   resolveString(cmd, opts.File, "capabilities", "capabilities"),
		Inline: resolveStrings(cmd, opts.Inline, "capability", "capability"),
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
