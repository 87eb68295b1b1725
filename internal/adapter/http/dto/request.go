package dto

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/usecase"
)

// ErrMalformedAmount is returned when an amount string cannot be parsed or
// carries more than two decimal places.
var ErrMalformedAmount = errors.New("amount must be a decimal string with at most two decimal places")

// ParseAmount parses a wire amount. Amounts cross the API boundary as strings
// to keep float rounding out of money handling.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}

	if d.Exponent() < -2 {
		return decimal.Zero, ErrMalformedAmount
	}

	return d, nil
}

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Email:    r.Email,
		Password: r.Password,
	}
}

// DepositRequest represents a request to deposit into the caller's wallet.
type DepositRequest struct {
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *DepositRequest) ToUseCaseInput(accountID string) (usecase.DepositInput, error) {
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	return usecase.DepositInput{
		AccountID: accountID,
		Amount:    amount,
	}, nil
}

// TransferRequest represents a request to transfer to another wallet.
type TransferRequest struct {
	PayeeID string `json:"payee_id"`
	Amount  string `json:"amount"`
}

// ToUseCaseInput converts to use case input for the given payer.
func (r *TransferRequest) ToUseCaseInput(payerID string) (usecase.TransferInput, error) {
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return usecase.TransferInput{}, err
	}

	return usecase.TransferInput{
		PayerID: payerID,
		PayeeID: r.PayeeID,
		Amount:  amount,
	}, nil
}

// HistoryQuery represents transaction history query parameters.
type HistoryQuery struct {
	Role           string
	CounterpartyID string
	Type           string
	Status         string
	Limit          int
	Offset         int
}

// ToUseCaseInput converts to use case input for the given user.
func (q *HistoryQuery) ToUseCaseInput(userID string) usecase.ListTransactionsInput {
	input := usecase.ListTransactionsInput{
		UserID: userID,
		Role:   usecase.RolePayer,
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.Role != "" {
		input.Role = usecase.HistoryRole(q.Role)
	}

	if q.CounterpartyID != "" {
		counterparty := q.CounterpartyID
		input.CounterpartyID = &counterparty
	}

	if q.Type != "" {
		txnType := domain.TransactionType(q.Type)
		input.Type = &txnType
	}

	if q.Status != "" {
		status := domain.TransactionStatus(q.Status)
		input.Status = &status
	}

	return input
}
