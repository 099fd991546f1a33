package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	InitializeBalance(ctx context.Context, input usecase.InitializeBalanceInput) (*domain.BalanceRecord, error)
	GetBalance(ctx context.Context, id string) (*domain.BalanceRecord, error)
	GetEmployeeBalance(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error)
	ListEmployeeBalances(ctx context.Context, input usecase.ListEmployeeBalancesInput) ([]*domain.BalanceRecord, error)
	AdjustBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.BalanceRecord, error)
	RecomputeMonthlyVesting(ctx context.Context, balanceID string, asOf time.Time) (*domain.BalanceRecord, error)
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Initialize opens a fiscal-year balance record for an employee.
func (h *BalanceHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req dto.InitializeBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.balanceUC.InitializeBalance(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to initialize balance", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceFromDomain(balance))
}

// Get retrieves a balance record by ID.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// GetForEmployee retrieves an employee's balance for a year. Year defaults to
// the current one.
func (h *BalanceHandler) GetForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	year := parseIntQuery(r, "year", 0)

	balance, err := h.balanceUC.GetEmployeeBalance(r.Context(), employeeID, year)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// ListForEmployee lists an employee's balance history, newest year first.
func (h *BalanceHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	balances, err := h.balanceUC.ListEmployeeBalances(r.Context(), usecase.ListEmployeeBalancesInput{
		EmployeeID: employeeID,
		Limit:      parseIntQuery(r, "limit", 20),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Balances: dto.BalancesFromDomain(balances),
		Total:    int64(len(balances)),
	})
}

// Adjust applies a manual correction to the exceptional or compensatory pool.
func (h *BalanceHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	var req dto.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.balanceUC.AdjustBalance(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to adjust balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// RecomputeVesting re-runs the monthly vesting calculation for one balance
// record. An empty body vests through the current date.
func (h *BalanceHandler) RecomputeVesting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	var req dto.RecomputeVestingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.balanceUC.RecomputeMonthlyVesting(r.Context(), id, req.AsOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to recompute vesting", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}
