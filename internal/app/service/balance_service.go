package service

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/domain/entity"
	"massa_gateway/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const MsgBalanceAddressRequired = "Message field is required. Please provide a Massa address in the 'message' field."

// BalanceServiceImpl implements port.BalanceService.
type BalanceServiceImpl struct {
	rpc    port.RPCClient
	logger port.Logger
}

// NewBalanceService creates a new instance of BalanceServiceImpl.
func NewBalanceService(rpc port.RPCClient, l port.Logger) port.BalanceService {
	return &BalanceServiceImpl{rpc: rpc, logger: l}
}

// GetBalance returns the candidate balance of the address, or the final one
// when query.Finalized is set.
func (s *BalanceServiceImpl) GetBalance(ctx context.Context, query entity.AddressQuery) (*entity.BalanceResult, error) {
	address := strings.TrimSpace(query.Address)
	if address == "" {
		return nil, entity.NewServiceError(entity.KindMissingField, MsgBalanceAddressRequired)
	}

	info, err := fetchAddressInfo(ctx, s.rpc, query.Network, address, query.Finalized, "Massa address")
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, &entity.ServiceError{
			Kind:    entity.KindAddressNotFound,
			Message: "Address not found or invalid",
			Network: query.Network,
			Method:  methodGetAddresses,
		}
	}

	field := info.CandidateBalance
	if query.Finalized {
		field = info.FinalBalance
	}
	text := strings.TrimSpace(string(field))
	if text == "" {
		text = "0"
	}

	nano, err := toNano(text)
	if err != nil {
		return nil, &entity.ServiceError{
			Kind:    entity.KindInvalidResponse,
			Message: "Massa node returned an unreadable balance",
			Network: query.Network,
			Method:  methodGetAddresses,
			Err:     err,
		}
	}

	s.logger.Debug("Balance resolved", "address", address, "network", query.Network, "final", query.Finalized, "raw", nano.String())
	return &entity.BalanceResult{
		Address:          address,
		Network:          query.Network,
		Final:            query.Finalized,
		RawBalance:       nano.String(),
		FormattedBalance: utils.FormatNano(nano),
	}, nil
}

// CheckAllNetworks looks the address up on every network at once. A failing
// network never cancels the others.
func (s *BalanceServiceImpl) CheckAllNetworks(ctx context.Context, address string, final bool) entity.MultiNetworkBalance {
	out := entity.MultiNetworkBalance{Address: strings.TrimSpace(address)}
	var mu sync.Mutex

	var eg errgroup.Group
	for _, network := range entity.NetworkSelectors {
		eg.Go(func() error {
			res, err := s.GetBalance(ctx, entity.AddressQuery{Address: address, Network: network, Finalized: final})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("Balance lookup failed", "address", address, "network", network, "error", err)
			}
			out.Set(network, res, err)
			return nil // Report as handled
		})
	}
	_ = eg.Wait()

	return out
}

func toNano(text string) (*big.Int, error) {
	amount, err := entity.ParseBalanceAmount(text)
	if err != nil {
		return nil, err
	}
	return amount.Nano()
}
