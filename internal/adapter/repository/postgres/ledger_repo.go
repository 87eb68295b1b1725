package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// ConservationTotals returns the sum of all account balances and the sum of
// all completed deposit amounts. Both sums come from a single statement so
// they see the same snapshot; a deposit committing between two separate
// queries would otherwise report a spurious imbalance.
func (r *LedgerRepository) ConservationTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	totals, err := r.queries.GetConservationTotals(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(totals.TotalBalances), numericToDecimal(totals.TotalDeposited), nil
}
