package lookup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/app/service"
	"massa_gateway/internal/cli/args"
	"massa_gateway/internal/domain/entity"
	"massa_gateway/internal/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const allNetworks = "all"

type balanceFlags struct {
	network string
	final   bool
}

var balanceArgs balanceFlags

// BalanceCmd prints the balance of an address.
var BalanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Prints the MAS balance of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		rpc, zapLogger, err := newRPC(globalArgs)
		if err != nil {
			return err
		}
		defer func() { _ = zapLogger.Sync() }()

		svc := service.NewBalanceService(rpc, logger.NewSlogAdapter("service", "balance"))
		return runBalance(cmd.Context(), svc, cmd.OutOrStdout(), argv[0], balanceArgs, globalArgs)
	},
}

func init() {
	args.ProcessArgs(&globalArgs, BalanceCmd)
	BalanceCmd.Flags().StringVarP(&balanceArgs.network, "network", "n", allNetworks, "Network to query (mainnet, buildnet or all)")
	BalanceCmd.Flags().BoolVar(&balanceArgs.final, "final", false, "Report the final balance instead of the candidate one")
}

func runBalance(ctx context.Context, svc port.BalanceService, out io.Writer, address string, flags balanceFlags, a args.GlobalArgs) error {
	if strings.EqualFold(strings.TrimSpace(flags.network), allNetworks) {
		result := svc.CheckAllNetworks(ctx, address, flags.final)
		if a.JSON {
			return writeJSON(out, result)
		}
		for _, network := range entity.NetworkSelectors {
			if res := result.Result(network); res != nil {
				printBalance(out, res)
				continue
			}
			fmt.Fprintf(out, "%-9s error: %s\n", network, result.Errors[network])
		}
		return nil
	}

	network, err := entity.ParseNetworkSelector(flags.network, entity.Mainnet)
	if err != nil {
		return err
	}
	res, err := svc.GetBalance(ctx, entity.AddressQuery{Address: address, Network: network, Finalized: flags.final})
	if err != nil {
		return errors.Wrapf(err, "balance lookup on %s failed", network)
	}
	if a.JSON {
		return writeJSON(out, res)
	}
	printBalance(out, res)
	return nil
}

func printBalance(out io.Writer, res *entity.BalanceResult) {
	kind := "candidate"
	if res.Final {
		kind = "final"
	}
	fmt.Fprintf(out, "%-9s %s MAS (%s nanoMAS, %s) %s\n", res.Network, res.FormattedBalance, res.RawBalance, kind, res.Address)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode result")
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
