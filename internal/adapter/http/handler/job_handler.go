package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// JobService defines the batch jobs exposed over the admin API.
type JobService interface {
	RolloverYear(ctx context.Context, newYear int) (usecase.JobResult, error)
	RecomputeVesting(ctx context.Context) (usecase.JobResult, error)
}

// JobHandler triggers the scheduled batch jobs on demand.
type JobHandler struct {
	jobUC JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobUC JobService) *JobHandler {
	return &JobHandler{jobUC: jobUC}
}

// Rollover runs the annual rollover. An empty body targets the current year.
func (h *JobHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	var req dto.RolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.jobUC.RolloverYear(r.Context(), req.Year)
	if err != nil {
		writeError(w, mapDomainError(err), "rollover failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JobResponse{
		Job:    "rollover",
		Year:   req.Year,
		Result: result,
	})
}

// Vesting runs the monthly vesting pass over current-year balances.
func (h *JobHandler) Vesting(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobUC.RecomputeVesting(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "vesting failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JobResponse{
		Job:    "vesting",
		Result: result,
	})
}
