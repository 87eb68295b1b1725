package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openbank/walletd/internal/adapter/http/dto"
	"github.com/openbank/walletd/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"transaction not found", domain.ErrTransactionNotFound, http.StatusNotFound},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized},
		{"insufficient role", domain.ErrInsufficientRole, http.StatusForbidden},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"not a transfer", domain.ErrNotATransfer, http.StatusBadRequest},
		{"not completed", domain.ErrTransactionNotCompleted, http.StatusBadRequest},
		{"already reversed", domain.ErrAlreadyReversed, http.StatusBadRequest},
		{"payee filter mismatch", domain.ErrPayeeFilterMismatch, http.StatusBadRequest},
		{"malformed amount", dto.ErrMalformedAmount, http.StatusBadRequest},
		{"storage failure", domain.ErrStorage, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Errorf("mapDomainError(%v) = %d, expected %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapDomainError_WrappedErrors(t *testing.T) {
	wrapped := errors.Join(domain.ErrStorage, errors.New("transfer commit: connection reset"))
	if got := mapDomainError(wrapped); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for wrapped storage error, got %d", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&bad=abc", nil)

	if got := parseIntQuery(req, "limit", 20); got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Errorf("expected default for unparsable value, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Errorf("expected default for missing value, got %d", got)
	}
}
