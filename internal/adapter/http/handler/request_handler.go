package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// RequestService defines the behavior needed by RequestHandler.
type RequestService interface {
	SubmitRequest(ctx context.Context, input usecase.SubmitRequestInput) (*domain.LeaveRequest, error)
	ApproveRequest(ctx context.Context, input usecase.DecideRequestInput) (*domain.LeaveRequest, error)
	RejectRequest(ctx context.Context, input usecase.DecideRequestInput) (*domain.LeaveRequest, error)
	CancelRequest(ctx context.Context, input usecase.CancelRequestInput) (*domain.LeaveRequest, error)
	GetRequest(ctx context.Context, id string) (*domain.LeaveRequest, error)
	ListEmployeeRequests(ctx context.Context, input usecase.ListEmployeeRequestsInput) ([]*domain.LeaveRequest, error)
}

// RequestHandler handles leave request HTTP endpoints.
type RequestHandler struct {
	requestUC RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestUC RequestService) *RequestHandler {
	return &RequestHandler{requestUC: requestUC}
}

// Submit records a new pending leave request.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput()

	// Authenticated employees always submit for themselves.
	if user, ok := domain.UserFromContext(r.Context()); ok && user.Role == domain.RoleEmployee {
		input.EmployeeID = user.ID
	}

	request, err := h.requestUC.SubmitRequest(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LeaveRequestFromDomain(request))
}

// Get retrieves a leave request by ID.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	request, err := h.requestUC.GetRequest(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaveRequestFromDomain(request))
}

// Approve approves a pending request and debits the balance.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.requestUC.ApproveRequest)
}

// Reject rejects a pending request, refunding an in-window approval.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.requestUC.RejectRequest)
}

func (h *RequestHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, input usecase.DecideRequestInput) (*domain.LeaveRequest, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	var body dto.DecideRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := usecase.DecideRequestInput{
		RequestID: id,
		DeciderID: body.DecidedBy,
	}
	if user, ok := domain.UserFromContext(r.Context()); ok {
		input.DeciderID = user.ID
	}

	request, err := apply(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to decide request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaveRequestFromDomain(request))
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	var body dto.CancelRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := usecase.CancelRequestInput{
		RequestID:   id,
		RequesterID: body.EmployeeID,
	}
	if user, ok := domain.UserFromContext(r.Context()); ok {
		input.RequesterID = user.ID
	}

	request, err := h.requestUC.CancelRequest(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaveRequestFromDomain(request))
}

// ListForEmployee lists an employee's requests, newest first.
func (h *RequestHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	requests, err := h.requestUC.ListEmployeeRequests(r.Context(), usecase.ListEmployeeRequestsInput{
		EmployeeID: employeeID,
		Limit:      parseIntQuery(r, "limit", 20),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list requests", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLeaveRequestsResponse{
		Requests: dto.LeaveRequestsFromDomain(requests),
		Total:    int64(len(requests)),
	})
}
