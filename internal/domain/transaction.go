package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType describes which ledger operation produced a transaction.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeTransfer   TransactionType = "transfer"
	TypeChargeback TransactionType = "chargeback"
)

// TransactionStatus is the state-machine state of a transaction record.
// Records start as pending and move to exactly one terminal state; reversed
// is a secondary terminal tag for a completed transfer undone by a chargeback.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusReversed  TransactionStatus = "reversed"
)

// StatusMotive is the machine-readable reason attached to a failed transaction.
type StatusMotive string

const (
	MotiveInsufficientBalance StatusMotive = "INSUFFICIENT_BALANCE"
	MotiveStorageError        StatusMotive = "STORAGE_ERROR"
)

// Transaction is an immutable record of a balance-affecting operation with
// payer-side balance snapshots taken at authorization time.
type Transaction struct {
	ID                      string
	Type                    TransactionType
	Status                  TransactionStatus
	StatusMotive            StatusMotive
	Amount                  decimal.Decimal
	PayerID                 string
	PayeeID                 *string
	PayerBalanceBefore      decimal.Decimal
	PayerBalanceAfter       decimal.Decimal
	ChargebackTransactionID *string
	ReversedTransactionID   *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// TransactionFilter narrows transaction history queries. Nil fields match all.
type TransactionFilter struct {
	PayerID *string
	PayeeID *string
	Type    *TransactionType
	Status  *TransactionStatus
	Limit   int
	Offset  int
}

// Validate checks the structural invariants of a new transaction.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch t.Type {
	case TypeDeposit:
		if t.PayeeID != nil {
			return ErrInvalidTransaction
		}
	case TypeTransfer, TypeChargeback:
		if t.PayeeID == nil {
			return ErrInvalidTransaction
		}
		if *t.PayeeID == t.PayerID {
			return ErrSameAccount
		}
	default:
		return ErrInvalidTransaction
	}

	return nil
}

// IsReversible reports whether a chargeback may target this transaction.
// Only a completed transfer that has not been charged back qualifies.
func (t *Transaction) IsReversible() error {
	if t.Status == StatusReversed || t.ChargebackTransactionID != nil {
		return ErrAlreadyReversed
	}
	if t.Status != StatusCompleted {
		return ErrTransactionNotCompleted
	}
	if t.Type != TypeTransfer {
		return ErrNotATransfer
	}
	return nil
}
