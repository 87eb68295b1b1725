package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/openbank/walletd/internal/adapter/http/dto"
	"github.com/openbank/walletd/internal/adapter/http/middleware"
	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/usecase"
)

// LedgerService defines the mutating behavior needed by WalletHandler.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	Chargeback(ctx context.Context, input usecase.ChargebackInput) (*domain.Transaction, error)
}

// QueryService defines the read behavior needed by WalletHandler.
type QueryService interface {
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error)
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// WalletHandler handles wallet-related HTTP requests. The authenticated user
// always operates on their own account; the account ID never comes from the
// request body.
type WalletHandler struct {
	ledgerUC LedgerService
	queryUC  QueryService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerUC LedgerService, queryUC QueryService) *WalletHandler {
	return &WalletHandler{
		ledgerUC: ledgerUC,
		queryUC:  queryUC,
	}
}

// Deposit credits the caller's wallet.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(user.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	txn, err := h.ledgerUC.Deposit(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create deposit")
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Transfer moves money from the caller's wallet to another account.
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(user.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	txn, err := h.ledgerUC.Transfer(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create transfer")
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Chargeback reverses a completed transfer the caller originally paid.
func (h *WalletHandler) Chargeback(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.Chargeback(r.Context(), usecase.ChargebackInput{
		PayerID:       user.ID,
		TransactionID: transactionID,
	})
	if err != nil {
		writeDomainError(w, err, "failed to create chargeback")
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Balance returns the caller's current balance.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	balance, err := h.queryUC.Balance(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err, "failed to get balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: user.ID,
		Balance:   balance.StringFixed(2),
	})
}

// History lists the caller's transactions on the requested side.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	query := dto.HistoryQuery{
		Role:           r.URL.Query().Get("role"),
		CounterpartyID: r.URL.Query().Get("counterparty_id"),
		Type:           r.URL.Query().Get("type"),
		Status:         r.URL.Query().Get("status"),
		Limit:          parseIntQuery(r, "limit", 20),
		Offset:         parseIntQuery(r, "offset", 0),
	}

	transactions, err := h.queryUC.ListTransactions(r.Context(), query.ToUseCaseInput(user.ID))
	if err != nil {
		writeDomainError(w, err, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

// GetTransaction retrieves a transaction visible to the caller.
func (h *WalletHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transactionID := chi.URLParam(r, "id")
	if transactionID == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.queryUC.GetTransaction(r.Context(), user.ID, transactionID)
	if err != nil {
		writeDomainError(w, err, "failed to get transaction")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}
