package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	CreateTx(ctx context.Context, tx Tx, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Tx, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for ledger transaction records.
//
// Create and MarkFailed deliberately run outside any database transaction:
// a pending record must be durable before the atomic unit starts, and a
// failure mark must survive the rollback of that unit.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForPayer(ctx context.Context, id, payerID string) (*domain.Transaction, error)
	MarkCompleted(ctx context.Context, tx Tx, id string, balanceBefore, balanceAfter decimal.Decimal, updatedAt time.Time) error
	MarkFailed(ctx context.Context, id string, motive domain.StatusMotive, updatedAt time.Time) error
	MarkReversed(ctx context.Context, tx Tx, id, chargebackID string, updatedAt time.Time) error
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]*domain.Transaction, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// ConservationTotals returns the sum of all account balances and the sum
	// of all completed deposit amounts. Transfers and chargebacks conserve
	// money, so the two must be equal at any committed point.
	ConservationTotals(ctx context.Context) (totalBalances, totalDeposited decimal.Decimal, err error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	CreateTx(ctx context.Context, tx Tx, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// OutboxRepository defines data access for outbox events. A nil tx writes on
// the repository's own connection.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Tx represents a database transaction: the atomic unit every balance
// mutation commits inside.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// Retrier re-runs an operation on transient storage conflicts
// (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
