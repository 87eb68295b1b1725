package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
)

// HistoryRole selects which side of a transaction the requesting user is on.
type HistoryRole string

const (
	RolePayer HistoryRole = "payer"
	RolePayee HistoryRole = "payee"
)

// QueryUseCase serves read-only transaction history and balances.
type QueryUseCase struct {
	txnRepo     TransactionRepository
	accountRepo AccountRepository
	cache       Cache
}

// NewQueryUseCase creates a new QueryUseCase. cache may be nil.
func NewQueryUseCase(txnRepo TransactionRepository, accountRepo AccountRepository, cache Cache) *QueryUseCase {
	return &QueryUseCase{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		cache:       cache,
	}
}

// ListTransactionsInput represents input for listing transaction history.
type ListTransactionsInput struct {
	UserID         string
	Role           HistoryRole
	Type           *domain.TransactionType
	Status         *domain.TransactionStatus
	CounterpartyID *string
	Limit          int
	Offset         int
}

// ListTransactions lists the user's history on the requested side. A payee
// role may not carry a counterparty filter for anyone but the user themselves;
// being able to would mean querying another payee's inbound history.
func (uc *QueryUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)

	filter := domain.TransactionFilter{
		Type:   input.Type,
		Status: input.Status,
		Limit:  limit,
		Offset: offset,
	}

	switch input.Role {
	case RolePayer:
		payerID := input.UserID
		filter.PayerID = &payerID
		filter.PayeeID = input.CounterpartyID
	case RolePayee:
		if input.CounterpartyID != nil && *input.CounterpartyID != input.UserID {
			return nil, domain.ErrPayeeFilterMismatch
		}

		payeeID := input.UserID
		filter.PayeeID = &payeeID
	default:
		return nil, domain.ErrInvalidTransaction
	}

	return uc.txnRepo.List(ctx, filter)
}

// GetTransaction retrieves a single transaction visible to the user.
func (uc *QueryUseCase) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	txn, err := uc.txnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if txn.PayerID != userID && (txn.PayeeID == nil || *txn.PayeeID != userID) {
		return nil, domain.ErrTransactionNotFound
	}

	return txn, nil
}

// Balance returns the user's current balance, served from cache when fresh.
func (uc *QueryUseCase) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	key := "balance:" + accountID

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil {
			if balance, err := decimal.NewFromString(cached); err == nil {
				return balance, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, account.Balance.String(), BalanceCacheTTL)
	}

	return account.Balance, nil
}
