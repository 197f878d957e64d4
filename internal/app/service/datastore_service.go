package service

import (
	"context"
	"fmt"
	"strings"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"
	"massa_gateway/internal/pkg/utils"
)

const MsgContractAddressRequired = "Message field is required. Please provide a contract address in the 'message' field."

// DatastoreServiceImpl implements port.DatastoreService.
type DatastoreServiceImpl struct {
	rpc    port.RPCClient
	logger port.Logger
}

// NewDatastoreService creates a new instance of DatastoreServiceImpl.
func NewDatastoreService(rpc port.RPCClient, l port.Logger) port.DatastoreService {
	return &DatastoreServiceImpl{rpc: rpc, logger: l}
}

// ReadEntry fetches the contract's datastore and returns the entry for query.Key.
func (s *DatastoreServiceImpl) ReadEntry(ctx context.Context, query entity.DatastoreQuery) (*entity.DatastoreResult, error) {
	contract := strings.TrimSpace(query.ContractAddress)
	if contract == "" {
		return nil, entity.NewServiceError(entity.KindMissingField, MsgContractAddressRequired)
	}
	key := query.Key
	if key == "" {
		key = entity.DefaultDataKey
	}

	info, err := fetchAddressInfo(ctx, s.rpc, query.Network, contract, true, "contract address")
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, &entity.ServiceError{
			Kind:    entity.KindAddressNotFound,
			Message: "Contract address not found or invalid",
			Network: query.Network,
			Method:  methodGetAddresses,
		}
	}

	store := info.DatastoreView()
	if store == nil {
		return nil, &entity.ServiceError{
			Kind:    entity.KindNoDatastoreFound,
			Message: "No smart contract datastore found at this address",
			Network: query.Network,
			Method:  methodGetAddresses,
		}
	}

	entry, ok := store.Lookup(key)
	if !ok {
		available := store.RawKeys()
		s.logger.Debug("Datastore key missing", "contract", contract, "key", key, "availableKeys", len(available))
		return nil, &entity.ServiceError{
			Kind:          entity.KindKeyNotFound,
			Message:       fmt.Sprintf("Datastore key '%s' doesn't exist in contract '%s'", key, contract),
			Network:       query.Network,
			Method:        methodGetAddresses,
			AvailableKeys: available,
		}
	}

	return &entity.DatastoreResult{
		ContractAddress: contract,
		DataKey:         key,
		FoundKey:        entry.RawKey,
		RawValue:        entry.Value,
		DecodedValue:    utils.DecodeUTF8(entry.Value),
		Network:         query.Network,
	}, nil
}
