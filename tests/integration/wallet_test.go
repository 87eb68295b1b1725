package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/adapter/repository/postgres"
	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/usecase"
	"github.com/openbank/walletd/tests/testutil"
)

func TestWalletLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()

	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, outboxRepo, retrier, idGen, nil, nil)
	queryUC := usecase.NewQueryUseCase(txnRepo, accountRepo, nil)

	t.Run("deposit credits the account", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx)

		txn, err := ledgerUC.Deposit(ctx, usecase.DepositInput{
			AccountID: account.ID,
			Amount:    decimal.NewFromFloat(100.50),
		})
		if err != nil {
			t.Fatalf("deposit failed: %v", err)
		}

		if txn.Status != domain.StatusCompleted {
			t.Errorf("expected status completed, got %s", txn.Status)
		}

		if !txn.PayerBalanceBefore.Equal(decimal.Zero) {
			t.Errorf("expected balance before 0, got %s", txn.PayerBalanceBefore)
		}

		if !txn.PayerBalanceAfter.Equal(decimal.NewFromFloat(100.50)) {
			t.Errorf("expected balance after 100.50, got %s", txn.PayerBalanceAfter)
		}

		balance, err := queryUC.Balance(ctx, account.ID)
		if err != nil {
			t.Fatalf("balance query failed: %v", err)
		}

		if !balance.Equal(decimal.NewFromFloat(100.50)) {
			t.Errorf("expected balance 100.50, got %s", balance)
		}
	})

	t.Run("transfer moves money between accounts", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		payer := testDB.CreateTestAccountWithBalance(ctx, decimal.NewFromInt(100))
		payee := testDB.CreateTestAccount(ctx)

		txn, err := ledgerUC.Transfer(ctx, usecase.TransferInput{
			PayerID: payer.ID,
			PayeeID: payee.ID,
			Amount:  decimal.NewFromFloat(40.50),
		})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		if txn.Status != domain.StatusCompleted {
			t.Errorf("expected status completed, got %s", txn.Status)
		}

		if !txn.PayerBalanceBefore.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balance before 100, got %s", txn.PayerBalanceBefore)
		}

		if !txn.PayerBalanceAfter.Equal(decimal.NewFromFloat(59.50)) {
			t.Errorf("expected balance after 59.50, got %s", txn.PayerBalanceAfter)
		}

		payerAcc, _ := accountRepo.GetByID(ctx, payer.ID)
		payeeAcc, _ := accountRepo.GetByID(ctx, payee.ID)

		if !payerAcc.Balance.Equal(decimal.NewFromFloat(59.50)) {
			t.Errorf("expected payer balance 59.50, got %s", payerAcc.Balance)
		}

		if !payeeAcc.Balance.Equal(decimal.NewFromFloat(40.50)) {
			t.Errorf("expected payee balance 40.50, got %s", payeeAcc.Balance)
		}
	})

	t.Run("insolvent transfer leaves a failed record and untouched balances", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		payer := testDB.CreateTestAccountWithBalance(ctx, decimal.NewFromInt(10))
		payee := testDB.CreateTestAccount(ctx)

		_, err := ledgerUC.Transfer(ctx, usecase.TransferInput{
			PayerID: payer.ID,
			PayeeID: payee.ID,
			Amount:  decimal.NewFromInt(50),
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}

		payerAcc, _ := accountRepo.GetByID(ctx, payer.ID)
		payeeAcc, _ := accountRepo.GetByID(ctx, payee.ID)

		if !payerAcc.Balance.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected payer balance 10, got %s", payerAcc.Balance)
		}

		if !payeeAcc.Balance.Equal(decimal.Zero) {
			t.Errorf("expected payee balance 0, got %s", payeeAcc.Balance)
		}

		// The rejected attempt must still be on record for audit.
		failed := domain.StatusFailed
		txns, err := queryUC.ListTransactions(ctx, usecase.ListTransactionsInput{
			UserID: payer.ID,
			Role:   usecase.RolePayer,
			Status: &failed,
		})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}

		if len(txns) != 1 {
			t.Fatalf("expected 1 failed transaction, got %d", len(txns))
		}

		if txns[0].StatusMotive != domain.MotiveInsufficientBalance {
			t.Errorf("expected motive %s, got %s", domain.MotiveInsufficientBalance, txns[0].StatusMotive)
		}
	})

	t.Run("history filters by role", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		payer := testDB.CreateTestAccountWithBalance(ctx, decimal.NewFromInt(100))
		payee := testDB.CreateTestAccount(ctx)

		if _, err := ledgerUC.Transfer(ctx, usecase.TransferInput{
			PayerID: payer.ID,
			PayeeID: payee.ID,
			Amount:  decimal.NewFromInt(25),
		}); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		if _, err := ledgerUC.Deposit(ctx, usecase.DepositInput{
			AccountID: payer.ID,
			Amount:    decimal.NewFromInt(5),
		}); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}

		asPayer, err := queryUC.ListTransactions(ctx, usecase.ListTransactionsInput{
			UserID: payer.ID,
			Role:   usecase.RolePayer,
		})
		if err != nil {
			t.Fatalf("payer list failed: %v", err)
		}

		if len(asPayer) != 2 {
			t.Errorf("expected 2 transactions as payer, got %d", len(asPayer))
		}

		asPayee, err := queryUC.ListTransactions(ctx, usecase.ListTransactionsInput{
			UserID: payee.ID,
			Role:   usecase.RolePayee,
		})
		if err != nil {
			t.Fatalf("payee list failed: %v", err)
		}

		if len(asPayee) != 1 {
			t.Fatalf("expected 1 transaction as payee, got %d", len(asPayee))
		}

		if asPayee[0].Type != domain.TypeTransfer {
			t.Errorf("expected transfer, got %s", asPayee[0].Type)
		}
	})

	t.Run("completed operations land in the outbox", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx)

		if _, err := ledgerUC.Deposit(ctx, usecase.DepositInput{
			AccountID: account.ID,
			Amount:    decimal.NewFromInt(30),
		}); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}

		events, err := outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("outbox read failed: %v", err)
		}

		if len(events) != 1 {
			t.Fatalf("expected 1 unpublished event, got %d", len(events))
		}

		if events[0].AggregateID == "" {
			t.Error("expected event aggregate ID to be set")
		}
	})
}
