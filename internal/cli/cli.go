package cli

import (
	"log"

	"massa_gateway/internal/cli/lookup"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:           "massactl",
	Short:         "massactl",
	Long:          `massactl queries Massa balances and smart contract datastores from the command line`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(appName, version string) {
	RootCmd.Short = appName
	RootCmd.Version = version

	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("failed to execute root command: %v", err)
	}
}

func init() {
	RootCmd.AddCommand(lookup.BalanceCmd)
	RootCmd.AddCommand(lookup.DatastoreCmd)
}
