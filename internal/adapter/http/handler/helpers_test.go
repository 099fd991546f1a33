package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"balance not found", domain.ErrBalanceNotFound, http.StatusNotFound},
		{"request not found", domain.ErrRequestNotFound, http.StatusNotFound},
		{"employee not found", domain.ErrEmployeeNotFound, http.StatusNotFound},
		{"balance exists", domain.ErrBalanceExists, http.StatusConflict},
		{"already decided", domain.ErrAlreadyDecided, http.StatusConflict},
		{"window expired", domain.ErrDecisionWindowExpired, http.StatusConflict},
		{"order violation", domain.ErrApprovalOrderViolation, http.StatusConflict},
		{"not owner", domain.ErrNotRequestOwner, http.StatusForbidden},
		{"invalid category", domain.ErrInvalidRequestCategory, http.StatusBadRequest},
		{
			"insufficient balance",
			&domain.InsufficientBalanceError{Category: domain.CategoryStandard, Available: decimal.NewFromInt(2)},
			http.StatusUnprocessableEntity,
		},
		{
			"overlap",
			&domain.OverlapError{ExistingRequestID: "req-1"},
			http.StatusConflict,
		},
		{
			"validation",
			domain.ValidationErrors{"reason": {"required"}},
			http.StatusBadRequest,
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Fatalf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseIntQuery(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/requests?limit=7&offset=bad", nil)

	if got := parseIntQuery(req, "limit", 20); got != 7 {
		t.Fatalf("expected limit 7, got %d", got)
	}
	if got := parseIntQuery(req, "offset", 0); got != 0 {
		t.Fatalf("expected default offset for invalid value, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 42); got != 42 {
		t.Fatalf("expected default 42, got %d", got)
	}
}
