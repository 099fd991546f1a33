package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/adapter/http/dto"
	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

type balanceServiceStub struct {
	initFn   func(ctx context.Context, input usecase.InitializeBalanceInput) (*domain.BalanceRecord, error)
	getFn    func(ctx context.Context, id string) (*domain.BalanceRecord, error)
	getEmpFn func(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error)
	listFn   func(ctx context.Context, input usecase.ListEmployeeBalancesInput) ([]*domain.BalanceRecord, error)
	adjustFn func(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.BalanceRecord, error)
	vestFn   func(ctx context.Context, balanceID string, asOf time.Time) (*domain.BalanceRecord, error)
}

func (s *balanceServiceStub) InitializeBalance(ctx context.Context, input usecase.InitializeBalanceInput) (*domain.BalanceRecord, error) {
	return s.initFn(ctx, input)
}

func (s *balanceServiceStub) GetBalance(ctx context.Context, id string) (*domain.BalanceRecord, error) {
	return s.getFn(ctx, id)
}

func (s *balanceServiceStub) GetEmployeeBalance(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error) {
	return s.getEmpFn(ctx, employeeID, year)
}

func (s *balanceServiceStub) ListEmployeeBalances(ctx context.Context, input usecase.ListEmployeeBalancesInput) ([]*domain.BalanceRecord, error) {
	return s.listFn(ctx, input)
}

func (s *balanceServiceStub) AdjustBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.BalanceRecord, error) {
	return s.adjustFn(ctx, input)
}

func (s *balanceServiceStub) RecomputeMonthlyVesting(ctx context.Context, balanceID string, asOf time.Time) (*domain.BalanceRecord, error) {
	return s.vestFn(ctx, balanceID, asOf)
}

func sampleBalance(id string) *domain.BalanceRecord {
	return &domain.BalanceRecord{
		ID:                 id,
		EmployeeID:         "emp-1",
		Year:               2026,
		CurrentYear:        decimal.NewFromInt(45),
		InitialEntitlement: 45,
		ExceptionalDays:    6,
		Total:              decimal.NewFromInt(45),
	}
}

func TestBalanceHandler_Initialize_Success(t *testing.T) {
	var captured usecase.InitializeBalanceInput
	handler := NewBalanceHandler(&balanceServiceStub{
		initFn: func(ctx context.Context, input usecase.InitializeBalanceInput) (*domain.BalanceRecord, error) {
			captured = input
			return sampleBalance("bal-1"), nil
		},
	})

	body, _ := json.Marshal(dto.InitializeBalanceRequest{EmployeeID: "emp-1", Year: 2026})
	req := httptest.NewRequest(http.MethodPost, "/balances", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Initialize(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.EmployeeID != "emp-1" || captured.Year != 2026 {
		t.Fatalf("unexpected input: %+v", captured)
	}
}

func TestBalanceHandler_Initialize_Duplicate(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		initFn: func(ctx context.Context, input usecase.InitializeBalanceInput) (*domain.BalanceRecord, error) {
			return nil, domain.ErrBalanceExists
		},
	})

	body, _ := json.Marshal(dto.InitializeBalanceRequest{EmployeeID: "emp-1"})
	req := httptest.NewRequest(http.MethodPost, "/balances", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Initialize(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestBalanceHandler_Get_NotFound(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.BalanceRecord, error) {
			return nil, domain.ErrBalanceNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/balances/bal-1", nil)
	req = setChiURLParam(req, "id", "bal-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBalanceHandler_GetForEmployee(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		getEmpFn: func(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error) {
			if employeeID != "emp-1" || year != 2025 {
				t.Fatalf("unexpected lookup: %s %d", employeeID, year)
			}
			return sampleBalance("bal-1"), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/employees/emp-1/balance?year=2025", nil)
	req = setChiURLParam(req, "id", "emp-1")
	rec := httptest.NewRecorder()

	handler.GetForEmployee(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "bal-1" || resp.ExceptionalDays != 6 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Adjust(t *testing.T) {
	var captured usecase.AdjustBalanceInput
	handler := NewBalanceHandler(&balanceServiceStub{
		adjustFn: func(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.BalanceRecord, error) {
			captured = input
			return sampleBalance("bal-1"), nil
		},
	})

	body, _ := json.Marshal(dto.AdjustBalanceRequest{
		CompensatoryDelta: decimal.RequireFromString("1.5"),
		Reason:            "overtime",
	})
	req := httptest.NewRequest(http.MethodPost, "/balances/bal-1/adjust", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "bal-1")
	rec := httptest.NewRecorder()

	handler.Adjust(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.BalanceID != "bal-1" || captured.Reason != "overtime" {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if !captured.CompensatoryDelta.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected delta: %s", captured.CompensatoryDelta)
	}
}

func TestBalanceHandler_RecomputeVesting(t *testing.T) {
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	var capturedID string
	var capturedAsOf time.Time
	handler := NewBalanceHandler(&balanceServiceStub{
		vestFn: func(ctx context.Context, balanceID string, at time.Time) (*domain.BalanceRecord, error) {
			capturedID = balanceID
			capturedAsOf = at
			return sampleBalance(balanceID), nil
		},
	})

	body, _ := json.Marshal(dto.RecomputeVestingRequest{AsOf: asOf})
	req := httptest.NewRequest(http.MethodPost, "/balances/bal-1/vesting", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "bal-1")
	rec := httptest.NewRecorder()

	handler.RecomputeVesting(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedID != "bal-1" || !capturedAsOf.Equal(asOf) {
		t.Fatalf("unexpected input: %s %s", capturedID, capturedAsOf)
	}
}

func TestBalanceHandler_RecomputeVesting_EmptyBody(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		vestFn: func(ctx context.Context, balanceID string, at time.Time) (*domain.BalanceRecord, error) {
			if !at.IsZero() {
				t.Fatalf("expected zero as-of for empty body, got %s", at)
			}
			return sampleBalance(balanceID), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/balances/bal-1/vesting", bytes.NewReader(nil))
	req = setChiURLParam(req, "id", "bal-1")
	rec := httptest.NewRecorder()

	handler.RecomputeVesting(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBalanceHandler_Adjust_MissingReason(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		adjustFn: func(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.BalanceRecord, error) {
			errs := domain.ValidationErrors{}
			errs.Add("reason", "a reason is required for manual adjustments")
			return nil, errs
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/balances/bal-1/adjust", bytes.NewBufferString(`{"exceptional_delta":1}`))
	req = setChiURLParam(req, "id", "bal-1")
	rec := httptest.NewRecorder()

	handler.Adjust(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
