package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Transaction errors
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrInvalidTransaction      = errors.New("invalid transaction")
	ErrSameAccount             = errors.New("cannot transfer to same account")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrTransactionNotCompleted = errors.New("transaction is not completed")
	ErrNotATransfer            = errors.New("transaction is not a transfer")
	ErrAlreadyReversed         = errors.New("transaction has already been charged back")

	// Query errors
	ErrPayeeFilterMismatch = errors.New("payee filter does not match requesting user")

	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")

	// ErrStorage marks infrastructure failures inside the atomic unit. Callers
	// must not leak its details to API clients.
	ErrStorage = errors.New("storage failure")
)
