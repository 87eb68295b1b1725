package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/openbank/walletd/internal/adapter/http/dto"
	"github.com/openbank/walletd/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	SweepStalePending(ctx context.Context, cutoff time.Duration) (int, error)
	CheckConservation(ctx context.Context) (*usecase.ConservationReport, error)
}

// ReconciliationHandler exposes the admin-only ledger maintenance endpoints.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
	stalePendingAge  time.Duration
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService, stalePendingAge time.Duration) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationUC: reconciliationUC,
		stalePendingAge:  stalePendingAge,
	}
}

// Sweep fails pending transactions older than the configured cutoff.
func (h *ReconciliationHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	swept, err := h.reconciliationUC.SweepStalePending(r.Context(), h.stalePendingAge)
	if err != nil {
		writeDomainError(w, err, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{Swept: swept})
}

// Conservation reports whether balances still sum to completed deposits.
func (h *ReconciliationHandler) Conservation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.CheckConservation(r.Context())
	if err != nil {
		writeDomainError(w, err, "conservation check failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.ConservationResponse{
		TotalBalances:  report.TotalBalances.StringFixed(2),
		TotalDeposited: report.TotalDeposited.StringFixed(2),
		Difference:     report.Difference.StringFixed(2),
		Conserved:      report.Conserved,
		CheckedAt:      report.CheckedAt,
	})
}
