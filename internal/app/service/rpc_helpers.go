package service

import (
	"context"
	"errors"
	"fmt"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"
	massa "massa_gateway/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const methodGetAddresses = "get_addresses"

// fetchAddressInfo runs get_addresses for a single address and returns the
// entry describing it, or nil when the node does not know the address.
func fetchAddressInfo(ctx context.Context, rpc port.RPCClient, network entity.NetworkSelector, address string, finalized bool, subject string) (*massa.AddressInfo, error) {
	raw, err := rpc.Call(ctx, network, methodGetAddresses, []string{address}, finalized)
	if err != nil {
		return nil, wrapUpstream(err, subject)
	}

	var infos []massa.AddressInfo
	if err := json.Unmarshal(raw, &infos); err != nil {
		return nil, &entity.ServiceError{
			Kind:    entity.KindInvalidResponse,
			Message: "Massa node returned malformed address data",
			Network: network,
			Method:  methodGetAddresses,
			Err:     err,
		}
	}
	return matchAddress(infos, address), nil
}

// matchAddress picks the entry for address. A lone entry without an address
// field is accepted as the answer.
func matchAddress(infos []massa.AddressInfo, address string) *massa.AddressInfo {
	for i := range infos {
		if infos[i].Address == address {
			return &infos[i]
		}
	}
	if len(infos) == 1 && infos[0].Address == "" {
		return &infos[0]
	}
	return nil
}

// wrapUpstream prefixes RPC errors with the subject being looked up; other
// adapter failures keep their message.
func wrapUpstream(err error, subject string) error {
	var se *entity.ServiceError
	if !errors.As(err, &se) {
		return entity.WrapServiceError(entity.KindInternalError, "Unexpected RPC adapter failure", err)
	}
	wrapped := *se
	wrapped.Err = se
	if se.Kind == entity.KindRpcError {
		wrapped.Message = fmt.Sprintf("Invalid %s or RPC error: %s", subject, se.Message)
	}
	return &wrapped
}
