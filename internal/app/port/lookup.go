package port

import (
	"context"

	"massa_gateway/internal/domain/entity"
)

// BalanceService looks up MAS balances.
type BalanceService interface {
	GetBalance(ctx context.Context, query entity.AddressQuery) (*entity.BalanceResult, error)

	// CheckAllNetworks queries every network concurrently; each network settles on its own.
	CheckAllNetworks(ctx context.Context, address string, final bool) entity.MultiNetworkBalance
}

// DatastoreService reads smart-contract datastore entries.
type DatastoreService interface {
	ReadEntry(ctx context.Context, query entity.DatastoreQuery) (*entity.DatastoreResult, error)
}
