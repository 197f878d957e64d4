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

type datastoreFlags struct {
	network string
	key     string
}

var datastoreArgs datastoreFlags

// DatastoreCmd prints one datastore entry of a smart contract.
var DatastoreCmd = &cobra.Command{
	Use:   "datastore <contract-address>",
	Short: "Reads an entry from a smart contract datastore",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		rpc, zapLogger, err := newRPC(globalArgs)
		if err != nil {
			return err
		}
		defer func() { _ = zapLogger.Sync() }()

		svc := service.NewDatastoreService(rpc, logger.NewSlogAdapter("service", "datastore"))
		return runDatastore(cmd.Context(), svc, cmd.OutOrStdout(), argv[0], datastoreArgs, globalArgs)
	},
}

func init() {
	args.ProcessArgs(&globalArgs, DatastoreCmd)
	DatastoreCmd.Flags().StringVarP(&datastoreArgs.network, "network", "n", string(entity.Buildnet), "Network to query (mainnet or buildnet)")
	DatastoreCmd.Flags().StringVarP(&datastoreArgs.key, "key", "k", entity.DefaultDataKey, "Datastore key to read")
}

func runDatastore(ctx context.Context, svc port.DatastoreService, out io.Writer, contract string, flags datastoreFlags, a args.GlobalArgs) error {
	network, err := entity.ParseNetworkSelector(flags.network, entity.Buildnet)
	if err != nil {
		return err
	}

	res, err := svc.ReadEntry(ctx, entity.DatastoreQuery{ContractAddress: contract, Key: flags.key, Network: network})
	if err != nil {
		var se *entity.ServiceError
		if errors.As(err, &se) && se.Kind == entity.KindKeyNotFound && len(se.AvailableKeys) > 0 {
			return errors.Wrapf(err, "available keys: %s", strings.Join(se.AvailableKeys, " | "))
		}
		return errors.Wrapf(err, "datastore read on %s failed", network)
	}
	if a.JSON {
		return writeJSON(out, res)
	}
	fmt.Fprintf(out, "%s[%s] on %s\n", res.ContractAddress, res.DataKey, res.Network)
	fmt.Fprintf(out, "  key:     %s\n", res.FoundKey)
	fmt.Fprintf(out, "  value:   %s\n", res.DecodedValue)
	fmt.Fprintf(out, "  bytes:   %d\n", len(res.RawValue))
	return nil
}
