package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// EmployeeService defines the behavior needed by EmployeeHandler.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, input usecase.CreateEmployeeInput) (*domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	ListEmployees(ctx context.Context, input usecase.ListEmployeesInput) ([]*domain.Employee, error)
	ChangeGrade(ctx context.Context, input usecase.ChangeGradeInput) (*domain.Employee, error)
}

// EmployeeHandler handles employee-related HTTP requests.
type EmployeeHandler struct {
	employeeUC EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(employeeUC EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeUC: employeeUC}
}

// Create registers a new employee identity.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	employee, err := h.employeeUC.CreateEmployee(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create employee", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EmployeeFromDomain(employee))
}

// Get retrieves an employee by ID.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	employee, err := h.employeeUC.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get employee", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EmployeeFromDomain(employee))
}

// List lists employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeUC.ListEmployees(r.Context(), usecase.ListEmployeesInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list employees", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEmployeesResponse{
		Employees: dto.EmployeesFromDomain(employees),
		Total:     int64(len(employees)),
	})
}

// ChangeGrade moves an employee to a new grade and re-bases the current-year
// entitlement.
func (h *EmployeeHandler) ChangeGrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	var req dto.ChangeGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	employee, err := h.employeeUC.ChangeGrade(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to change grade", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EmployeeFromDomain(employee))
}
