package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// RuleService defines the behavior needed by RuleHandler.
type RuleService interface {
	ChangeRule(ctx context.Context, input usecase.ChangeRuleInput) (*domain.EntitlementRule, usecase.JobResult, error)
	GetLatestRule(ctx context.Context) (*domain.EntitlementRule, error)
	ListRules(ctx context.Context, input usecase.ListRulesInput) ([]*domain.EntitlementRule, error)
}

// RuleHandler handles entitlement rule HTTP requests.
type RuleHandler struct {
	ruleUC RuleService
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleUC RuleService) *RuleHandler {
	return &RuleHandler{ruleUC: ruleUC}
}

// Change publishes a new rule and re-bases current-year balances.
func (h *RuleHandler) Change(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangeRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput()
	if user, ok := domain.UserFromContext(r.Context()); ok {
		input.UpdatedBy = user.ID
	}

	rule, rebase, err := h.ruleUC.ChangeRule(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to change rule", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ChangeRuleResponse{
		Rule:   dto.RuleFromDomain(rule),
		Rebase: rebase,
	})
}

// GetCurrent returns the rule currently in force.
func (h *RuleHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	rule, err := h.ruleUC.GetLatestRule(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get current rule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RuleFromDomain(rule))
}

// List lists rule history, newest first.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.ruleUC.ListRules(r.Context(), usecase.ListRulesInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRulesResponse{
		Rules: dto.RulesFromDomain(rules),
		Total: int64(len(rules)),
	})
}
