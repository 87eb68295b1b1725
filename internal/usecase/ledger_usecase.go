package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/infrastructure/metrics"
)

// LedgerUseCase is the ledger engine. It owns every transaction state
// transition and every balance mutation. Each operation follows the same
// audit-first shape: create a pending record with balance snapshots, run the
// pre-atomic validation gate, then commit balances and the terminal status as
// one database transaction. Rejections always leave a failed record with a
// motive; balances are only ever written inside the atomic unit.
type LedgerUseCase struct {
	txManager   TxManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	outboxRepo  OutboxRepository
	retrier     Retrier
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. outboxRepo, cache and m may be
// nil to disable event emission, balance-cache invalidation and metrics.
func NewLedgerUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	retrier Retrier,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		retrier:     retrier,
		idGen:       idGen,
		cache:       cache,
		metrics:     m,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID string
	Amount    decimal.Decimal
}

// Deposit credits amount to an account and records the operation.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	// Handlers validate the amount; re-check here because non-positive
	// amounts are a contract violation wherever they come from.
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:                 uc.idGen.Generate(),
		Type:               domain.TypeDeposit,
		Status:             domain.StatusPending,
		Amount:             input.Amount,
		PayerID:            account.ID,
		PayerBalanceBefore: account.Balance,
		PayerBalanceAfter:  account.ApplyCredit(input.Amount),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: create deposit record: %v", domain.ErrStorage, err)
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.commitDeposit(ctx, txn)
	})
	if err != nil {
		uc.failTransaction(ctx, txn, domain.MotiveStorageError)
		return nil, fmt.Errorf("%w: deposit commit: %v", domain.ErrStorage, err)
	}

	uc.invalidateBalance(ctx, txn.PayerID)

	if uc.metrics != nil {
		uc.metrics.DepositsCreated.Inc()
		uc.metrics.TransactionDuration.WithLabelValues(string(domain.TypeDeposit)).Observe(time.Since(now).Seconds())
		amount, _ := txn.Amount.Float64()
		uc.metrics.TransactionAmount.WithLabelValues(string(domain.TypeDeposit)).Observe(amount)
	}

	return txn, nil
}

// commitDeposit runs the atomic unit of a deposit: lock the account row,
// credit it, and complete the record with snapshots refreshed from the locked
// balance. Both writes commit together or not at all.
func (uc *LedgerUseCase) commitDeposit(ctx context.Context, txn *domain.Transaction) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, txn.PayerID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	before := account.Balance
	after := account.ApplyCredit(txn.Amount)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, after, now); err != nil {
		return err
	}

	if err := uc.txnRepo.MarkCompleted(ctx, tx, txn.ID, before, after, now); err != nil {
		return err
	}

	uc.complete(txn, before, after, now)

	if err := uc.emit(ctx, tx, txn, domain.EventTypeTransactionCompleted); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	PayerID string
	PayeeID string
	Amount  decimal.Decimal
}

// Transfer moves amount from payer to payee. An insolvent payer gets a failed
// record with an INSUFFICIENT_BALANCE motive and no balance change.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.PayerID == input.PayeeID {
		return nil, domain.ErrSameAccount
	}

	payer, err := uc.accountRepo.GetByID(ctx, input.PayerID)
	if err != nil {
		return nil, err
	}

	payee, err := uc.accountRepo.GetByID(ctx, input.PayeeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:                 uc.idGen.Generate(),
		Type:               domain.TypeTransfer,
		Status:             domain.StatusPending,
		Amount:             input.Amount,
		PayerID:            payer.ID,
		PayeeID:            &payee.ID,
		PayerBalanceBefore: payer.Balance,
		PayerBalanceAfter:  payer.ApplyDebit(input.Amount),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: create transfer record: %v", domain.ErrStorage, err)
	}

	// Validation gate: the solvency failure path never enters the atomic unit.
	if txn.PayerBalanceAfter.IsNegative() {
		uc.failTransaction(ctx, txn, domain.MotiveInsufficientBalance)
		return nil, domain.ErrInsufficientBalance
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.commitTransfer(ctx, txn)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			// Another operation drained the payer between the snapshot read
			// and the row lock; the re-check caught it.
			uc.failTransaction(ctx, txn, domain.MotiveInsufficientBalance)
			return nil, domain.ErrInsufficientBalance
		}

		uc.failTransaction(ctx, txn, domain.MotiveStorageError)
		return nil, fmt.Errorf("%w: transfer commit: %v", domain.ErrStorage, err)
	}

	uc.invalidateBalance(ctx, txn.PayerID)
	uc.invalidateBalance(ctx, *txn.PayeeID)

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransactionDuration.WithLabelValues(string(domain.TypeTransfer)).Observe(time.Since(now).Seconds())
		amount, _ := txn.Amount.Float64()
		uc.metrics.TransactionAmount.WithLabelValues(string(domain.TypeTransfer)).Observe(amount)
	}

	return txn, nil
}

// commitTransfer runs the atomic unit of a transfer: lock both account rows in
// ascending id order, re-validate solvency against the locked payer balance,
// then write both balances and the completed status together.
func (uc *LedgerUseCase) commitTransfer(ctx context.Context, txn *domain.Transaction) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.lockAccounts(ctx, tx, txn.PayerID, *txn.PayeeID)
	if err != nil {
		return err
	}

	payer := accounts[txn.PayerID]
	payee := accounts[*txn.PayeeID]

	// Re-check on the current persisted balance, not the pending snapshot.
	if err := payer.ValidateDebit(txn.Amount); err != nil {
		return err
	}

	now := time.Now().UTC()
	before := payer.Balance
	after := payer.ApplyDebit(txn.Amount)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, payer.ID, after, now); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, payee.ID, payee.ApplyCredit(txn.Amount), now); err != nil {
		return err
	}

	if err := uc.txnRepo.MarkCompleted(ctx, tx, txn.ID, before, after, now); err != nil {
		return err
	}

	uc.complete(txn, before, after, now)

	if err := uc.emit(ctx, tx, txn, domain.EventTypeTransactionCompleted); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ChargebackInput represents input for a chargeback.
type ChargebackInput struct {
	PayerID       string
	TransactionID string
}

// Chargeback reverses a completed transfer. The requesting user must be the
// original payer. The reversal is itself a transfer with the parties swapped,
// so solvency is re-validated on the original payee at reversal time.
func (uc *LedgerUseCase) Chargeback(ctx context.Context, input ChargebackInput) (*domain.Transaction, error) {
	original, err := uc.txnRepo.GetByIDForPayer(ctx, input.TransactionID, input.PayerID)
	if err != nil {
		return nil, err
	}

	if err := original.IsReversible(); err != nil {
		return nil, err
	}

	// Both counterparties must still resolve.
	origPayer, err := uc.accountRepo.GetByID(ctx, original.PayerID)
	if err != nil {
		return nil, err
	}

	origPayee, err := uc.accountRepo.GetByID(ctx, *original.PayeeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:                    uc.idGen.Generate(),
		Type:                  domain.TypeChargeback,
		Status:                domain.StatusPending,
		Amount:                original.Amount,
		PayerID:               origPayee.ID,
		PayeeID:               &origPayer.ID,
		PayerBalanceBefore:    origPayee.Balance,
		PayerBalanceAfter:     origPayee.ApplyDebit(original.Amount),
		ReversedTransactionID: &original.ID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: create chargeback record: %v", domain.ErrStorage, err)
	}

	// The original payee may have spent the funds since the transfer. In that
	// case the chargeback fails and the original keeps its completed status.
	if txn.PayerBalanceAfter.IsNegative() {
		uc.failTransaction(ctx, txn, domain.MotiveInsufficientBalance)
		return nil, domain.ErrInsufficientBalance
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.commitChargeback(ctx, txn, original)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.failTransaction(ctx, txn, domain.MotiveInsufficientBalance)
			return nil, domain.ErrInsufficientBalance
		}

		// A concurrent chargeback won the race on the same original. The
		// status_motive CHECK constraint admits only INSUFFICIENT_BALANCE
		// and STORAGE_ERROR, so the loser's failed record carries
		// STORAGE_ERROR even though the commit was refused on state, not
		// on a storage fault.
		if errors.Is(err, domain.ErrAlreadyReversed) {
			uc.failTransaction(ctx, txn, domain.MotiveStorageError)
			return nil, domain.ErrAlreadyReversed
		}

		uc.failTransaction(ctx, txn, domain.MotiveStorageError)
		return nil, fmt.Errorf("%w: chargeback commit: %v", domain.ErrStorage, err)
	}

	uc.invalidateBalance(ctx, txn.PayerID)
	uc.invalidateBalance(ctx, *txn.PayeeID)

	if uc.metrics != nil {
		uc.metrics.ChargebacksCreated.Inc()
		uc.metrics.TransactionDuration.WithLabelValues(string(domain.TypeChargeback)).Observe(time.Since(now).Seconds())
	}

	return txn, nil
}

// commitChargeback runs the atomic unit of a chargeback: move the money back,
// tag the original as reversed with a back-reference to the chargeback, and
// complete the chargeback record. All four writes commit together.
func (uc *LedgerUseCase) commitChargeback(ctx context.Context, txn, original *domain.Transaction) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.lockAccounts(ctx, tx, txn.PayerID, *txn.PayeeID)
	if err != nil {
		return err
	}

	payer := accounts[txn.PayerID]
	payee := accounts[*txn.PayeeID]

	if err := payer.ValidateDebit(txn.Amount); err != nil {
		return err
	}

	now := time.Now().UTC()
	before := payer.Balance
	after := payer.ApplyDebit(txn.Amount)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, payer.ID, after, now); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, payee.ID, payee.ApplyCredit(txn.Amount), now); err != nil {
		return err
	}

	if err := uc.txnRepo.MarkReversed(ctx, tx, original.ID, txn.ID, now); err != nil {
		return err
	}

	if err := uc.txnRepo.MarkCompleted(ctx, tx, txn.ID, before, after, now); err != nil {
		return err
	}

	original.Status = domain.StatusReversed
	original.ChargebackTransactionID = &txn.ID
	original.UpdatedAt = now
	uc.complete(txn, before, after, now)

	if err := uc.emit(ctx, tx, original, domain.EventTypeTransactionReversed); err != nil {
		return err
	}

	if err := uc.emit(ctx, tx, txn, domain.EventTypeTransactionCompleted); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// lockAccounts acquires FOR UPDATE locks on both accounts in ascending id
// order so that opposite-direction transfers between the same pair cannot
// deadlock.
func (uc *LedgerUseCase) lockAccounts(ctx context.Context, tx Tx, ids ...string) (map[string]*domain.Account, error) {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, sorted)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(sorted) {
		return nil, domain.ErrAccountNotFound
	}

	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m, nil
}

func (uc *LedgerUseCase) complete(txn *domain.Transaction, before, after decimal.Decimal, now time.Time) {
	txn.Status = domain.StatusCompleted
	txn.PayerBalanceBefore = before
	txn.PayerBalanceAfter = after
	txn.UpdatedAt = now
}

// failTransaction marks a pending record failed with a motive. The write runs
// on its own connection so it survives the atomic unit's rollback. A failure
// here leaves the record pending for the reconciliation sweep.
func (uc *LedgerUseCase) failTransaction(ctx context.Context, txn *domain.Transaction, motive domain.StatusMotive) {
	now := time.Now().UTC()
	if err := uc.txnRepo.MarkFailed(ctx, txn.ID, motive, now); err != nil {
		return
	}

	txn.Status = domain.StatusFailed
	txn.StatusMotive = motive
	txn.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.TransactionsFailed.WithLabelValues(string(txn.Type), string(motive)).Inc()
	}

	if uc.outboxRepo != nil {
		event := transactionEvent(uc.idGen.Generate(), txn, domain.EventTypeTransactionFailed, now)
		_ = uc.outboxRepo.Create(ctx, nil, event)
	}
}

func (uc *LedgerUseCase) emit(ctx context.Context, tx Tx, txn *domain.Transaction, eventType string) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, transactionEvent(uc.idGen.Generate(), txn, eventType, txn.UpdatedAt))
}

func (uc *LedgerUseCase) invalidateBalance(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, "balance:"+accountID)
}

func transactionEvent(id string, txn *domain.Transaction, eventType string, at time.Time) *domain.OutboxEvent {
	payload := domain.TransactionEvent{
		TransactionID: txn.ID,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		StatusMotive:  string(txn.StatusMotive),
		PayerID:       txn.PayerID,
		Amount:        txn.Amount.StringFixed(2),
	}

	if txn.PayeeID != nil {
		payload.PayeeID = *txn.PayeeID
	}

	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	}
}
