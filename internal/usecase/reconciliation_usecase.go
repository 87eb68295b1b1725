package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/infrastructure/metrics"
)

// ReconciliationUseCase handles the two recovery paths the ledger engine
// cannot run inline: failing transactions stuck in pending (a crash between
// the pending write and the atomic unit, or a failed failure-mark), and
// verifying that no money has been created or destroyed.
type ReconciliationUseCase struct {
	txnRepo    TransactionRepository
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase. m may be nil.
func NewReconciliationUseCase(txnRepo TransactionRepository, ledgerRepo LedgerRepository, m *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txnRepo:    txnRepo,
		ledgerRepo: ledgerRepo,
		metrics:    m,
	}
}

// SweepStalePending fails every transaction that has been pending longer than
// cutoff, with a STORAGE_ERROR motive. Returns how many records were swept.
func (uc *ReconciliationUseCase) SweepStalePending(ctx context.Context, cutoff time.Duration) (int, error) {
	if cutoff <= 0 {
		cutoff = StalePendingCutoff
	}

	before := time.Now().UTC().Add(-cutoff)

	stale, err := uc.txnRepo.ListStalePending(ctx, before, SweepBatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, txn := range stale {
		if err := uc.txnRepo.MarkFailed(ctx, txn.ID, domain.MotiveStorageError, time.Now().UTC()); err != nil {
			return swept, fmt.Errorf("sweep transaction %s: %w", txn.ID, err)
		}
		swept++
	}

	if uc.metrics != nil && swept > 0 {
		uc.metrics.StalePendingSwept.Add(float64(swept))
	}

	return swept, nil
}

// ConservationReport is the result of a conservation check.
type ConservationReport struct {
	TotalBalances  decimal.Decimal
	TotalDeposited decimal.Decimal
	Difference     decimal.Decimal
	Conserved      bool
	CheckedAt      time.Time
}

// CheckConservation verifies that the sum of all balances equals the sum of
// completed deposits. Transfers and chargebacks move money between accounts,
// so deposits are the only source; any difference is reported, never fixed.
func (uc *ReconciliationUseCase) CheckConservation(ctx context.Context) (*ConservationReport, error) {
	totalBalances, totalDeposited, err := uc.ledgerRepo.ConservationTotals(ctx)
	if err != nil {
		return nil, err
	}

	diff := totalBalances.Sub(totalDeposited)

	if uc.metrics != nil {
		if diff.IsZero() {
			uc.metrics.ConservationVerified.Inc()
		} else {
			uc.metrics.ConservationBroken.Inc()
		}
	}

	return &ConservationReport{
		TotalBalances:  totalBalances,
		TotalDeposited: totalDeposited,
		Difference:     diff,
		Conserved:      diff.IsZero(),
		CheckedAt:      time.Now().UTC(),
	}, nil
}
