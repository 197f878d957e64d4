package args

import (
	"massa_gateway/internal/infrastructure/configloader"

	"github.com/spf13/cobra"
)

type GlobalArgs struct {
	ConfigPath string
	LogLevel   string
	JSON       bool
}

func ProcessArgs(a *GlobalArgs, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config-path", configloader.PathFromEnv(), "Config file path")
	cmd.PersistentFlags().StringVarP(&a.LogLevel, "log-level", "l", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&a.JSON, "json", false, "Print results as JSON")
}
