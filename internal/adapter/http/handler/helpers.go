package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var (
		insufficient *domain.InsufficientBalanceError
		overlap      *domain.OverlapError
		validation   domain.ValidationErrors
	)

	switch {
	case errors.Is(err, domain.ErrBalanceNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrEmployeeNotFound),
		errors.Is(err, domain.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.As(err, &overlap):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBalanceExists),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrRequestCancelled),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrDecisionWindowExpired),
		errors.Is(err, domain.ErrApprovalOrderViolation),
		errors.Is(err, domain.ErrConcurrentBalanceAccess):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotRequestOwner):
		return http.StatusForbidden
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrInvalidRequestCategory),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
