package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/usecase"
	"github.com/openbank/walletd/internal/usecase/mocks"
)

type ledgerFixture struct {
	txManager   *mocks.MockTxManager
	accountRepo *mocks.MockAccountRepository
	txnRepo     *mocks.MockTransactionRepository
	outboxRepo  *mocks.MockOutboxRepository
	cache       *mocks.MockCache
	uc          *usecase.LedgerUseCase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		txManager:   mocks.NewMockTxManager(),
		accountRepo: mocks.NewMockAccountRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		cache:       mocks.NewMockCache(),
	}

	idGen := mocks.NewMockIDGenerator()
	counter := 0
	idGen.GenerateFunc = func() string {
		counter++
		return fmt.Sprintf("txn-%03d", counter)
	}

	f.uc = usecase.NewLedgerUseCase(
		f.txManager,
		f.accountRepo,
		f.txnRepo,
		f.outboxRepo,
		mocks.NewMockRetrier(),
		idGen,
		f.cache,
		nil,
	)

	return f
}

func (f *ledgerFixture) seedAccount(id, balance string) {
	b, _ := decimal.NewFromString(balance)
	now := time.Now().UTC()
	f.accountRepo.Seed(&domain.Account{
		ID:        id,
		Balance:   b,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (f *ledgerFixture) balance(t *testing.T, id string) string {
	t.Helper()
	acc, err := f.accountRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return acc.Balance.StringFixed(2)
}

func (f *ledgerFixture) eventTypes() []string {
	var types []string
	for _, e := range f.outboxRepo.Events() {
		types = append(types, e.EventType)
	}
	return types
}

func amount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestLedgerUseCase_Deposit(t *testing.T) {
	t.Run("credits the account and completes the record", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")

		txn, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
			AccountID: "alice",
			Amount:    amount("100.00"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if txn.Status != domain.StatusCompleted {
			t.Errorf("expected status completed, got %s", txn.Status)
		}
		if got := txn.PayerBalanceBefore.StringFixed(2); got != "0.00" {
			t.Errorf("expected balance before 0.00, got %s", got)
		}
		if got := txn.PayerBalanceAfter.StringFixed(2); got != "100.00" {
			t.Errorf("expected balance after 100.00, got %s", got)
		}
		if got := f.balance(t, "alice"); got != "100.00" {
			t.Errorf("expected account balance 100.00, got %s", got)
		}

		stored := f.txnRepo.Get(txn.ID)
		if stored == nil || stored.Status != domain.StatusCompleted {
			t.Errorf("expected persisted record completed, got %+v", stored)
		}

		types := f.eventTypes()
		if len(types) != 1 || types[0] != domain.EventTypeTransactionCompleted {
			t.Errorf("expected one completed event, got %v", types)
		}

		payload, ok := f.outboxRepo.Events()[0].Payload.(domain.TransactionEvent)
		if !ok {
			t.Fatalf("expected a TransactionEvent payload, got %T", f.outboxRepo.Events()[0].Payload)
		}
		if payload.TransactionID != txn.ID || payload.PayerID != "alice" || payload.Amount != "100.00" {
			t.Errorf("unexpected event payload: %+v", payload)
		}
	})

	t.Run("rejects non-positive amounts without a record", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")

		_, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
			AccountID: "alice",
			Amount:    decimal.Zero,
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		if events := f.outboxRepo.Events(); len(events) != 0 {
			t.Errorf("expected no events, got %d", len(events))
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newLedgerFixture()

		_, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
			AccountID: "ghost",
			Amount:    amount("10.00"),
		})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("marks the record failed with STORAGE_ERROR when the commit fails", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		f.accountRepo.UpdateBalanceFunc = func(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
			return errors.New("connection reset")
		}

		_, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
			AccountID: "alice",
			Amount:    amount("100.00"),
		})
		if !errors.Is(err, domain.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}

		stored := f.txnRepo.Get("txn-001")
		if stored == nil {
			t.Fatal("expected a persisted record")
		}
		if stored.Status != domain.StatusFailed {
			t.Errorf("expected status failed, got %s", stored.Status)
		}
		if stored.StatusMotive != domain.MotiveStorageError {
			t.Errorf("expected motive STORAGE_ERROR, got %s", stored.StatusMotive)
		}
		if got := f.balance(t, "alice"); got != "0.00" {
			t.Errorf("expected balance unchanged at 0.00, got %s", got)
		}
	})

	t.Run("invalidates the cached balance", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		_ = f.cache.Set(context.Background(), "balance:alice", "0", time.Minute)

		if _, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
			AccountID: "alice",
			Amount:    amount("5.00"),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.cache.Get(context.Background(), "balance:alice"); err == nil {
			t.Error("expected cached balance to be invalidated")
		}
	})
}

func TestLedgerUseCase_Transfer(t *testing.T) {
	t.Run("moves funds and completes with payer snapshots", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "50.00")
		f.seedAccount("bob", "10.00")

		txn, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			PayerID: "alice",
			PayeeID: "bob",
			Amount:  amount("50.00"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if txn.Status != domain.StatusCompleted {
			t.Errorf("expected status completed, got %s", txn.Status)
		}
		if got := txn.PayerBalanceBefore.StringFixed(2); got != "50.00" {
			t.Errorf("expected balance before 50.00, got %s", got)
		}
		if got := txn.PayerBalanceAfter.StringFixed(2); got != "0.00" {
			t.Errorf("expected balance after 0.00, got %s", got)
		}
		if got := f.balance(t, "alice"); got != "0.00" {
			t.Errorf("expected payer balance 0.00, got %s", got)
		}
		if got := f.balance(t, "bob"); got != "60.00" {
			t.Errorf("expected payee balance 60.00, got %s", got)
		}
	})

	t.Run("payer and payee must differ", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "50.00")

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			PayerID: "alice",
			PayeeID: "alice",
			Amount:  amount("10.00"),
		})
		if !errors.Is(err, domain.ErrSameAccount) {
			t.Fatalf("expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("insolvent payer leaves a failed record and untouched balances", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		f.seedAccount("bob", "10.00")

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			PayerID: "alice",
			PayeeID: "bob",
			Amount:  amount("25.00"),
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		stored := f.txnRepo.Get("txn-001")
		if stored == nil {
			t.Fatal("expected a persisted record for the rejected transfer")
		}
		if stored.Status != domain.StatusFailed {
			t.Errorf("expected status failed, got %s", stored.Status)
		}
		if stored.StatusMotive != domain.MotiveInsufficientBalance {
			t.Errorf("expected motive INSUFFICIENT_BALANCE, got %s", stored.StatusMotive)
		}
		if got := stored.PayerBalanceBefore.StringFixed(2); got != "0.00" {
			t.Errorf("expected recorded balance before 0.00, got %s", got)
		}

		if got := f.balance(t, "alice"); got != "0.00" {
			t.Errorf("expected payer balance untouched, got %s", got)
		}
		if got := f.balance(t, "bob"); got != "10.00" {
			t.Errorf("expected payee balance untouched, got %s", got)
		}

		types := f.eventTypes()
		if len(types) != 1 || types[0] != domain.EventTypeTransactionFailed {
			t.Errorf("expected one failed event, got %v", types)
		}
	})

	t.Run("re-checks solvency on the locked balance", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "100.00")
		f.seedAccount("bob", "0")

		// Snapshot read sees 100.00; by lock time another operation drained
		// the account. The atomic unit must catch it.
		f.accountRepo.GetByIDsForUpdateFunc = func(ctx context.Context, tx usecase.Tx, ids []string) ([]*domain.Account, error) {
			accounts := make([]*domain.Account, 0, len(ids))
			for _, id := range ids {
				balance := decimal.Zero
				accounts = append(accounts, &domain.Account{ID: id, Balance: balance})
			}
			return accounts, nil
		}

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			PayerID: "alice",
			PayeeID: "bob",
			Amount:  amount("100.00"),
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance from re-check, got %v", err)
		}

		stored := f.txnRepo.Get("txn-001")
		if stored == nil || stored.Status != domain.StatusFailed {
			t.Fatalf("expected failed record, got %+v", stored)
		}
		if stored.StatusMotive != domain.MotiveInsufficientBalance {
			t.Errorf("expected motive INSUFFICIENT_BALANCE, got %s", stored.StatusMotive)
		}
	})

	t.Run("storage failure inside the atomic unit", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "100.00")
		f.seedAccount("bob", "0")
		f.txnRepo.MarkCompletedFunc = func(ctx context.Context, tx usecase.Tx, id string, before, after decimal.Decimal, updatedAt time.Time) error {
			return errors.New("write failed")
		}

		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			PayerID: "alice",
			PayeeID: "bob",
			Amount:  amount("10.00"),
		})
		if !errors.Is(err, domain.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}

		stored := f.txnRepo.Get("txn-001")
		if stored == nil || stored.StatusMotive != domain.MotiveStorageError {
			t.Fatalf("expected STORAGE_ERROR motive, got %+v", stored)
		}
	})
}

func TestLedgerUseCase_Chargeback(t *testing.T) {
	completedTransfer := func(f *ledgerFixture, id, payer, payee, amt string) *domain.Transaction {
		now := time.Now().UTC().Add(-time.Hour)
		txn := &domain.Transaction{
			ID:      id,
			Type:    domain.TypeTransfer,
			Status:  domain.StatusCompleted,
			Amount:  amount(amt),
			PayerID: payer,
			PayeeID: &payee,

			CreatedAt: now,
			UpdatedAt: now,
		}
		_ = f.txnRepo.Create(context.Background(), txn)
		return txn
	}

	t.Run("moves the funds back and tags the original reversed", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		f.seedAccount("bob", "40.00")
		completedTransfer(f, "orig-1", "alice", "bob", "40.00")

		cb, err := f.uc.Chargeback(context.Background(), usecase.ChargebackInput{
			PayerID:       "alice",
			TransactionID: "orig-1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cb.Type != domain.TypeChargeback {
			t.Errorf("expected type chargeback, got %s", cb.Type)
		}
		if cb.Status != domain.StatusCompleted {
			t.Errorf("expected status completed, got %s", cb.Status)
		}
		if cb.PayerID != "bob" {
			t.Errorf("expected chargeback payer bob, got %s", cb.PayerID)
		}
		if cb.PayeeID == nil || *cb.PayeeID != "alice" {
			t.Errorf("expected chargeback payee alice, got %v", cb.PayeeID)
		}
		if cb.ReversedTransactionID == nil || *cb.ReversedTransactionID != "orig-1" {
			t.Errorf("expected reversed reference orig-1, got %v", cb.ReversedTransactionID)
		}

		original := f.txnRepo.Get("orig-1")
		if original.Status != domain.StatusReversed {
			t.Errorf("expected original reversed, got %s", original.Status)
		}
		if original.ChargebackTransactionID == nil || *original.ChargebackTransactionID != cb.ID {
			t.Errorf("expected original back-reference %s, got %v", cb.ID, original.ChargebackTransactionID)
		}

		if got := f.balance(t, "alice"); got != "40.00" {
			t.Errorf("expected alice restored to 40.00, got %s", got)
		}
		if got := f.balance(t, "bob"); got != "0.00" {
			t.Errorf("expected bob back to 0.00, got %s", got)
		}

		types := f.eventTypes()
		if len(types) != 2 {
			t.Fatalf("expected reversed and completed events, got %v", types)
		}
	})

	t.Run("only the original payer can request it", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		f.seedAccount("bob", "40.00")
		completedTransfer(f, "orig-1", "alice", "bob", "40.00")

		_, err := f.uc.Chargeback(context.Background(), usecase.ChargebackInput{
			PayerID:       "bob",
			TransactionID: "orig-1",
		})
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}
	})

	t.Run("rejects non-reversible transactions", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "100.00")
		f.seedAccount("bob", "0")

		payee := "bob"
		cbRef := "cb-0"
		records := []struct {
			name string
			txn  domain.Transaction
			want error
		}{
			{
				name: "pending transfer",
				txn: domain.Transaction{
					ID: "t-pending", Type: domain.TypeTransfer, Status: domain.StatusPending,
					Amount: amount("10.00"), PayerID: "alice", PayeeID: &payee,
				},
				want: domain.ErrTransactionNotCompleted,
			},
			{
				name: "deposit",
				txn: domain.Transaction{
					ID: "t-deposit", Type: domain.TypeDeposit, Status: domain.StatusCompleted,
					Amount: amount("10.00"), PayerID: "alice",
				},
				want: domain.ErrNotATransfer,
			},
			{
				name: "already reversed",
				txn: domain.Transaction{
					ID: "t-reversed", Type: domain.TypeTransfer, Status: domain.StatusReversed,
					Amount: amount("10.00"), PayerID: "alice", PayeeID: &payee,
					ChargebackTransactionID: &cbRef,
				},
				want: domain.ErrAlreadyReversed,
			},
		}

		for _, tt := range records {
			t.Run(tt.name, func(t *testing.T) {
				stored := tt.txn
				_ = f.txnRepo.Create(context.Background(), &stored)

				_, err := f.uc.Chargeback(context.Background(), usecase.ChargebackInput{
					PayerID:       "alice",
					TransactionID: tt.txn.ID,
				})
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("insolvent payee fails the chargeback and keeps the original completed", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		f.seedAccount("bob", "5.00") // bob already spent most of the 40.00
		completedTransfer(f, "orig-1", "alice", "bob", "40.00")

		_, err := f.uc.Chargeback(context.Background(), usecase.ChargebackInput{
			PayerID:       "alice",
			TransactionID: "orig-1",
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		cb := f.txnRepo.Get("txn-001")
		if cb == nil {
			t.Fatal("expected a persisted chargeback record")
		}
		if cb.Status != domain.StatusFailed {
			t.Errorf("expected chargeback failed, got %s", cb.Status)
		}
		if cb.StatusMotive != domain.MotiveInsufficientBalance {
			t.Errorf("expected motive INSUFFICIENT_BALANCE, got %s", cb.StatusMotive)
		}

		original := f.txnRepo.Get("orig-1")
		if original.Status != domain.StatusCompleted {
			t.Errorf("expected original still completed, got %s", original.Status)
		}
		if got := f.balance(t, "bob"); got != "5.00" {
			t.Errorf("expected bob balance untouched, got %s", got)
		}
	})

	t.Run("fails the record when a concurrent chargeback wins the race", func(t *testing.T) {
		f := newLedgerFixture()
		f.seedAccount("alice", "0")
		f.seedAccount("bob", "40.00")
		completedTransfer(f, "orig-1", "alice", "bob", "40.00")

		f.txnRepo.MarkReversedFunc = func(ctx context.Context, tx usecase.Tx, id, chargebackID string, updatedAt time.Time) error {
			return domain.ErrAlreadyReversed
		}

		_, err := f.uc.Chargeback(context.Background(), usecase.ChargebackInput{
			PayerID:       "alice",
			TransactionID: "orig-1",
		})
		if !errors.Is(err, domain.ErrAlreadyReversed) {
			t.Fatalf("expected ErrAlreadyReversed, got %v", err)
		}

		cb := f.txnRepo.Get("txn-001")
		if cb == nil || cb.Status != domain.StatusFailed {
			t.Fatalf("expected the chargeback record failed, got %+v", cb)
		}
		if cb.StatusMotive != domain.MotiveStorageError {
			t.Fatalf("expected STORAGE_ERROR motive on the losing record, got %q", cb.StatusMotive)
		}
	})
}
