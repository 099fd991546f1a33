package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

func TestDecisionFlipWithinWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	env.DB.TruncateAll(ctx)
	employee := env.DB.CreateTestEmployee(ctx, "W-100", "Wendy Window", "Ingenieur")

	year := time.Now().UTC().Year()
	env.DB.CreateTestBalance(ctx, employee.ID, year, 0, func(b *domain.BalanceRecord) {
		b.CarryoverN1 = decimal.NewFromInt(10)
	})

	request, err := env.RequestUC.SubmitRequest(ctx, usecase.SubmitRequestInput{
		EmployeeID:    employee.ID,
		Category:      domain.CategoryStandard,
		DaysRequested: 4,
		StartDate:     time.Date(year, time.May, 4, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	decide := usecase.DecideRequestInput{RequestID: request.ID, DeciderID: "hr-admin"}

	if _, err := env.RequestUC.ApproveRequest(ctx, decide); err != nil {
		t.Fatalf("approve: %v", err)
	}

	balance, err := env.BalanceRepo.GetByEmployeeYear(ctx, employee.ID, year)
	if err != nil {
		t.Fatalf("reload balance: %v", err)
	}
	if !balance.Total.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected total 6 after approval, got %s", balance.Total)
	}

	// Flipping to rejected inside the window refunds the debit.
	flipped, err := env.RequestUC.RejectRequest(ctx, decide)
	if err != nil {
		t.Fatalf("flip to rejected: %v", err)
	}
	if flipped.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %s", flipped.Status)
	}

	balance, err = env.BalanceRepo.GetByEmployeeYear(ctx, employee.ID, year)
	if err != nil {
		t.Fatalf("reload balance: %v", err)
	}
	if !balance.Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected total 10 after refund, got %s", balance.Total)
	}

	// Rejecting twice is refused.
	if _, err := env.RequestUC.RejectRequest(ctx, decide); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestApprovalOrderRule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	env.DB.TruncateAll(ctx)
	employee := env.DB.CreateTestEmployee(ctx, "O-100", "Omar Ordered", "Ingenieur")

	year := time.Now().UTC().Year()
	env.DB.CreateTestBalance(ctx, employee.ID, year, 0, func(b *domain.BalanceRecord) {
		b.CarryoverN1 = decimal.NewFromInt(20)
	})

	early, err := env.RequestUC.SubmitRequest(ctx, usecase.SubmitRequestInput{
		EmployeeID:    employee.ID,
		Category:      domain.CategoryStandard,
		DaysRequested: 2,
		StartDate:     time.Date(year, time.March, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit early request: %v", err)
	}

	late, err := env.RequestUC.SubmitRequest(ctx, usecase.SubmitRequestInput{
		EmployeeID:    employee.ID,
		Category:      domain.CategoryStandard,
		DaysRequested: 2,
		StartDate:     time.Date(year, time.September, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit late request: %v", err)
	}

	if _, err := env.RequestUC.ApproveRequest(ctx, usecase.DecideRequestInput{
		RequestID: late.ID, DeciderID: "hr-admin",
	}); err != nil {
		t.Fatalf("approve late request: %v", err)
	}

	// The earlier-ending request can no longer be approved.
	_, err = env.RequestUC.ApproveRequest(ctx, usecase.DecideRequestInput{
		RequestID: early.ID, DeciderID: "hr-admin",
	})
	if !errors.Is(err, domain.ErrApprovalOrderViolation) {
		t.Fatalf("expected ErrApprovalOrderViolation, got %v", err)
	}

	// Rejecting it is still allowed.
	if _, err := env.RequestUC.RejectRequest(ctx, usecase.DecideRequestInput{
		RequestID: early.ID, DeciderID: "hr-admin",
	}); err != nil {
		t.Fatalf("reject early request: %v", err)
	}
}

func TestStandardDebitDrainsOldestBucketsFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	env.DB.TruncateAll(ctx)
	employee := env.DB.CreateTestEmployee(ctx, "B-100", "Bea Buckets", "Ingenieur")

	year := time.Now().UTC().Year()
	env.DB.CreateTestBalance(ctx, employee.ID, year, 0, func(b *domain.BalanceRecord) {
		b.CarryoverN2 = decimal.RequireFromString("1.5")
		b.CarryoverN1 = decimal.NewFromInt(4)
	})

	request, err := env.RequestUC.SubmitRequest(ctx, usecase.SubmitRequestInput{
		EmployeeID:    employee.ID,
		Category:      domain.CategoryStandard,
		DaysRequested: 3,
		StartDate:     time.Date(year, time.April, 6, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := env.RequestUC.ApproveRequest(ctx, usecase.DecideRequestInput{
		RequestID: request.ID, DeciderID: "hr-admin",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	balance, err := env.BalanceRepo.GetByEmployeeYear(ctx, employee.ID, year)
	if err != nil {
		t.Fatalf("reload balance: %v", err)
	}

	// 3 days: 1.5 from n-2, the remaining 1.5 from n-1.
	if !balance.CarryoverN2.IsZero() {
		t.Errorf("expected carryover n-2 drained, got %s", balance.CarryoverN2)
	}
	if !balance.CarryoverN1.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected carryover n-1 of 2.5, got %s", balance.CarryoverN1)
	}
	if !balance.Total.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected total 2.5, got %s", balance.Total)
	}
}

func TestExceptionalPoolHasNoFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	env.DB.TruncateAll(ctx)
	employee := env.DB.CreateTestEmployee(ctx, "E-100", "Eve Exceptional", "Ingenieur")

	year := time.Now().UTC().Year()
	env.DB.CreateTestBalance(ctx, employee.ID, year, 0, func(b *domain.BalanceRecord) {
		// Plenty of standard days, but the exceptional pool stays at its
		// default of 6.
		b.CarryoverN1 = decimal.NewFromInt(40)
	})

	request, err := env.RequestUC.SubmitRequest(ctx, usecase.SubmitRequestInput{
		EmployeeID:    employee.ID,
		Category:      domain.CategoryExceptional,
		DaysRequested: domain.DefaultExceptionalDays + 1,
		StartDate:     time.Date(year, time.August, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = env.RequestUC.ApproveRequest(ctx, usecase.DecideRequestInput{
		RequestID: request.ID, DeciderID: "hr-admin",
	})

	var insufficient *domain.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Category != domain.CategoryExceptional {
		t.Errorf("expected exceptional category, got %s", insufficient.Category)
	}

	// The standard buckets are untouched by the failed exceptional debit.
	balance, err := env.BalanceRepo.GetByEmployeeYear(ctx, employee.ID, year)
	if err != nil {
		t.Fatalf("reload balance: %v", err)
	}
	if !balance.CarryoverN1.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected standard buckets untouched, got %s", balance.CarryoverN1)
	}
	if balance.ExceptionalDays != domain.DefaultExceptionalDays {
		t.Errorf("expected exceptional pool unchanged, got %d", balance.ExceptionalDays)
	}
}
