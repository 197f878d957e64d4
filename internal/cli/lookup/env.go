package lookup

import (
	"time"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/cli/args"
	"massa_gateway/internal/domain/entity"
	"massa_gateway/internal/infrastructure/configloader"
	rpcclient "massa_gateway/internal/infrastructure/network/client"
	networkdefinition "massa_gateway/internal/infrastructure/network/definition"
	"massa_gateway/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var globalArgs args.GlobalArgs

// newRPC builds the JSON-RPC adapter the same way the gateway does. Logs go
// to stderr so stdout only carries results.
func newRPC(a args.GlobalArgs) (port.RPCClient, *zap.Logger, error) {
	cfg, err := configloader.Load(a.ConfigPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not load configuration")
	}

	zapLogger, err := logger.New(a.LogLevel, true)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not initialize logger")
	}
	logger.Init(zapLogger)

	networks := networkdefinition.NewNetworkDefinitionProvider(logger.NewSlogAdapter("component", "networks"), map[entity.NetworkSelector]string{
		entity.Mainnet:  cfg.Networks.MainnetRPCURL,
		entity.Buildnet: cfg.Networks.BuildnetRPCURL,
	})
	rpc := rpcclient.NewMassaClient(networks, rpcclient.Options{
		CallTimeout:         time.Duration(cfg.RpcClient.CallTimeoutMs) * time.Millisecond,
		RateLimit:           cfg.RpcClient.RateLimit,
		BurstLimit:          cfg.RpcClient.BurstLimit,
		MaxIdleConnsPerHost: cfg.RpcClient.MaxIdleConnsPerHost,
	}, nil, logger.NewSlogAdapter("component", "rpc"))
	return rpc, zapLogger, nil
}
