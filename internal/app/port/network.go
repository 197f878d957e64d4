package port

import (
	"context"
	"encoding/json"

	"massa_gateway/internal/domain/entity"
)

// RPCClient sends one JSON-RPC request to the node of the selected network.
// Failures are *entity.ServiceError values of kind TransportError, RpcError,
// InvalidResponse or InvalidNetwork.
type RPCClient interface {
	Call(ctx context.Context, network entity.NetworkSelector, method string, params ...any) (json.RawMessage, error)
}

// NetworkDefinitionProvider resolves network selectors to their definitions.
type NetworkDefinitionProvider interface {
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinition returns the definition and true when the selector is known.
	GetNetworkDefinition(selector entity.NetworkSelector) (entity.NetworkDefinition, bool)
}
