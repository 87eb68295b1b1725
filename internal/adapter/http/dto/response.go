package dto

import (
	"time"

	"github.com/openbank/walletd/internal/domain"
)

// TransactionResponse represents a transaction in API responses. All money
// fields are fixed two-decimal strings.
type TransactionResponse struct {
	ID                  string    `json:"id"`
	Type                string    `json:"type"`
	Status              string    `json:"status"`
	StatusMotive        string    `json:"status_motive,omitempty"`
	Amount              string    `json:"amount"`
	PayerID             string    `json:"payer_id"`
	PayeeID             string    `json:"payee_id,omitempty"`
	BalanceBefore       string    `json:"balance_before"`
	BalanceAfter        string    `json:"balance_after"`
	ChargebackReference string    `json:"chargeback_reference,omitempty"`
	ReversedReference   string    `json:"reversed_reference,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Status:        string(t.Status),
		StatusMotive:  string(t.StatusMotive),
		Amount:        t.Amount.StringFixed(2),
		PayerID:       t.PayerID,
		BalanceBefore: t.PayerBalanceBefore.StringFixed(2),
		BalanceAfter:  t.PayerBalanceAfter.StringFixed(2),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}

	if t.PayeeID != nil {
		resp.PayeeID = *t.PayeeID
	}

	if t.ChargebackTransactionID != nil {
		resp.ChargebackReference = *t.ChargebackTransactionID
	}

	if t.ReversedTransactionID != nil {
		resp.ReversedReference = *t.ReversedTransactionID
	}

	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse represents a wallet balance in API responses.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// TokenResponse represents an authentication token in API responses.
type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// SweepResponse represents the result of a stale-pending sweep.
type SweepResponse struct {
	Swept int `json:"swept"`
}

// ConservationResponse represents the result of a conservation check.
type ConservationResponse struct {
	TotalBalances  string    `json:"total_balances"`
	TotalDeposited string    `json:"total_deposited"`
	Difference     string    `json:"difference"`
	Conserved      bool      `json:"conserved"`
	CheckedAt      time.Time `json:"checked_at"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
