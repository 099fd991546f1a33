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

func TestInitializeBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("grants the grade entitlement", func(t *testing.T) {
		env.DB.TruncateAll(ctx)
		env.DB.SeedDefaultRule(ctx)
		employee := env.DB.CreateTestEmployee(ctx, "T-100", "Ada Technician", "Technicienne")

		year := time.Now().UTC().Year()
		balance, err := env.BalanceUC.InitializeBalance(ctx, usecase.InitializeBalanceInput{
			EmployeeID: employee.ID,
			Year:       year,
		})
		if err != nil {
			t.Fatalf("initialize balance: %v", err)
		}

		if balance.InitialEntitlement != 72 {
			t.Errorf("expected technician entitlement 72, got %d", balance.InitialEntitlement)
		}
		if !balance.CurrentYear.Equal(decimal.NewFromInt(72)) {
			t.Errorf("expected current-year bucket 72, got %s", balance.CurrentYear)
		}
		if balance.ExceptionalDays != domain.DefaultExceptionalDays {
			t.Errorf("expected %d exceptional days, got %d", domain.DefaultExceptionalDays, balance.ExceptionalDays)
		}

		stored, err := env.BalanceRepo.GetByEmployeeYear(ctx, employee.ID, year)
		if err != nil {
			t.Fatalf("reload balance: %v", err)
		}
		if !stored.Total.Equal(balance.Total) {
			t.Errorf("stored total %s does not match returned %s", stored.Total, balance.Total)
		}
	})

	t.Run("rejects a second balance for the same year", func(t *testing.T) {
		env.DB.TruncateAll(ctx)
		env.DB.SeedDefaultRule(ctx)
		employee := env.DB.CreateTestEmployee(ctx, "S-200", "Sam Standard", "Ingenieur")

		year := time.Now().UTC().Year()
		input := usecase.InitializeBalanceInput{EmployeeID: employee.ID, Year: year}

		if _, err := env.BalanceUC.InitializeBalance(ctx, input); err != nil {
			t.Fatalf("first initialize: %v", err)
		}

		_, err := env.BalanceUC.InitializeBalance(ctx, input)
		if !errors.Is(err, domain.ErrBalanceExists) {
			t.Fatalf("expected ErrBalanceExists, got %v", err)
		}
	})
}

func TestAdjustBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("credits the independent pools", func(t *testing.T) {
		env.DB.TruncateAll(ctx)
		employee := env.DB.CreateTestEmployee(ctx, "A-300", "Alex Adjusted", "Ingenieur")
		balance := env.DB.CreateTestBalance(ctx, employee.ID, time.Now().UTC().Year(), 45, nil)

		adjusted, err := env.BalanceUC.AdjustBalance(ctx, usecase.AdjustBalanceInput{
			BalanceID:         balance.ID,
			ExceptionalDelta:  2,
			CompensatoryDelta: decimal.RequireFromString("1.5"),
			Reason:            "overtime compensation",
		})
		if err != nil {
			t.Fatalf("adjust balance: %v", err)
		}

		if adjusted.ExceptionalDays != domain.DefaultExceptionalDays+2 {
			t.Errorf("expected exceptional pool %d, got %d", domain.DefaultExceptionalDays+2, adjusted.ExceptionalDays)
		}
		if !adjusted.CompensatoryDays.Equal(decimal.RequireFromString("1.5")) {
			t.Errorf("expected compensatory pool 1.5, got %s", adjusted.CompensatoryDays)
		}
	})

	t.Run("rejects adjustments that drain a pool below zero", func(t *testing.T) {
		env.DB.TruncateAll(ctx)
		employee := env.DB.CreateTestEmployee(ctx, "A-301", "Alex Adjusted", "Ingenieur")
		balance := env.DB.CreateTestBalance(ctx, employee.ID, time.Now().UTC().Year(), 45, nil)

		_, err := env.BalanceUC.AdjustBalance(ctx, usecase.AdjustBalanceInput{
			BalanceID:        balance.ID,
			ExceptionalDelta: -(domain.DefaultExceptionalDays + 1),
			Reason:           "correction",
		})

		var insufficient *domain.InsufficientBalanceError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientBalanceError, got %v", err)
		}
		if insufficient.Category != domain.CategoryExceptional {
			t.Errorf("expected exceptional category, got %s", insufficient.Category)
		}
	})

	t.Run("requires a reason", func(t *testing.T) {
		env.DB.TruncateAll(ctx)
		employee := env.DB.CreateTestEmployee(ctx, "A-302", "Alex Adjusted", "Ingenieur")
		balance := env.DB.CreateTestBalance(ctx, employee.ID, time.Now().UTC().Year(), 45, nil)

		_, err := env.BalanceUC.AdjustBalance(ctx, usecase.AdjustBalanceInput{
			BalanceID:        balance.ID,
			ExceptionalDelta: 1,
		})

		var validation domain.ValidationErrors
		if !errors.As(err, &validation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
