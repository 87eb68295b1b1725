package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/infrastructure/postgres/generated"
	"github.com/openbank/walletd/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create persists a new transaction record on the repository's own connection.
// The pending record must be durable before any balance work starts.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                      txn.ID,
		Type:                    string(txn.Type),
		Status:                  string(txn.Status),
		StatusMotive:            motiveToText(txn.StatusMotive),
		Amount:                  decimalToNumeric(txn.Amount),
		PayerID:                 txn.PayerID,
		PayeeID:                 strPtrToText(txn.PayeeID),
		PayerBalanceBefore:      decimalToNumeric(txn.PayerBalanceBefore),
		PayerBalanceAfter:       decimalToNumeric(txn.PayerBalanceAfter),
		ChargebackTransactionID: strPtrToText(txn.ChargebackTransactionID),
		ReversedTransactionID:   strPtrToText(txn.ReversedTransactionID),
		CreatedAt:               timeToPgTimestamptz(txn.CreatedAt),
		UpdatedAt:               timeToPgTimestamptz(txn.UpdatedAt),
	})

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// GetByIDForPayer retrieves a transaction by ID restricted to its payer.
// A transaction belonging to someone else is indistinguishable from a
// missing one.
func (r *TransactionRepository) GetByIDForPayer(ctx context.Context, id, payerID string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByIDForPayer(ctx, generated.GetTransactionByIDForPayerParams{
		ID:      id,
		PayerID: payerID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// MarkCompleted transitions a pending transaction to completed within a
// transaction, recording the final balance snapshots.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, tx usecase.Tx, id string, balanceBefore, balanceAfter decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.MarkTransactionCompleted(ctx, generated.MarkTransactionCompletedParams{
		ID:                 id,
		PayerBalanceBefore: decimalToNumeric(balanceBefore),
		PayerBalanceAfter:  decimalToNumeric(balanceAfter),
		UpdatedAt:          timeToPgTimestamptz(updatedAt),
	})
}

// MarkFailed transitions a pending transaction to failed on the repository's
// own connection, so the mark survives a rolled-back balance transaction.
func (r *TransactionRepository) MarkFailed(ctx context.Context, id string, motive domain.StatusMotive, updatedAt time.Time) error {
	return r.queries.MarkTransactionFailed(ctx, generated.MarkTransactionFailedParams{
		ID:           id,
		StatusMotive: motiveToText(motive),
		UpdatedAt:    timeToPgTimestamptz(updatedAt),
	})
}

// MarkReversed transitions a completed transaction to reversed within a
// transaction, recording the chargeback that reversed it. The update is
// guarded on the completed status so a concurrent chargeback that lost the
// race reports ErrAlreadyReversed instead of silently double-reversing.
func (r *TransactionRepository) MarkReversed(ctx context.Context, tx usecase.Tx, id, chargebackID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	rows, err := queries.MarkTransactionReversed(ctx, generated.MarkTransactionReversedParams{
		ID:                      id,
		ChargebackTransactionID: pgtype.Text{String: chargebackID, Valid: true},
		UpdatedAt:               timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrAlreadyReversed
	}

	return nil
}

// List retrieves transactions matching the filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	params := generated.ListTransactionsParams{
		PayerID: strPtrToText(filter.PayerID),
		PayeeID: strPtrToText(filter.PayeeID),
		Limit:   int32(filter.Limit),
		Offset:  int32(filter.Offset),
	}

	if filter.Type != nil {
		params.Type = pgtype.Text{String: string(*filter.Type), Valid: true}
	}

	if filter.Status != nil {
		params.Status = pgtype.Text{String: string(*filter.Status), Valid: true}
	}

	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

// ListStalePending retrieves pending transactions created before the cutoff.
func (r *TransactionRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListStalePendingTransactions(ctx, generated.ListStalePendingTransactionsParams{
		CreatedAt: timeToPgTimestamptz(before),
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                      row.ID,
		Type:                    domain.TransactionType(row.Type),
		Status:                  domain.TransactionStatus(row.Status),
		StatusMotive:            domain.StatusMotive(row.StatusMotive.String),
		Amount:                  numericToDecimal(row.Amount),
		PayerID:                 row.PayerID,
		PayeeID:                 textToStrPtr(row.PayeeID),
		PayerBalanceBefore:      numericToDecimal(row.PayerBalanceBefore),
		PayerBalanceAfter:       numericToDecimal(row.PayerBalanceAfter),
		ChargebackTransactionID: textToStrPtr(row.ChargebackTransactionID),
		ReversedTransactionID:   textToStrPtr(row.ReversedTransactionID),
		CreatedAt:               row.CreatedAt.Time,
		UpdatedAt:               row.UpdatedAt.Time,
	}
}

func motiveToText(m domain.StatusMotive) pgtype.Text {
	if m == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(m), Valid: true}
}

func strPtrToText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textToStrPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
