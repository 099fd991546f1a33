package integration

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/infrastructure/eventpublisher"
	"github.com/hrkit/leaveledger/internal/usecase"
)

func TestOutboxEventFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	env := newTestEnv(t)

	env.DB.TruncateAll(ctx)
	employee := env.DB.CreateTestEmployee(ctx, "X-100", "Xavier Outbox", "Ingenieur")

	year := time.Now().UTC().Year()
	env.DB.CreateTestBalance(ctx, employee.ID, year, 0, func(b *domain.BalanceRecord) {
		b.CarryoverN1 = decimal.NewFromInt(10)
	})

	request, err := env.RequestUC.SubmitRequest(ctx, usecase.SubmitRequestInput{
		EmployeeID:    employee.ID,
		Category:      domain.CategoryStandard,
		DaysRequested: 2,
		StartDate:     time.Date(year, time.October, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := env.RequestUC.ApproveRequest(ctx, usecase.DecideRequestInput{
		RequestID: request.ID, DeciderID: "hr-admin",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Both the submission and the approval left an unpublished event.
	events, err := env.OutboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("get unpublished: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 unpublished events, got %d", len(events))
	}

	types := map[string]bool{}
	for _, event := range events {
		types[event.EventType] = true
		if event.AggregateID != request.ID {
			t.Errorf("expected aggregate %s, got %s", request.ID, event.AggregateID)
		}
	}
	if !types[domain.EventTypeRequestSubmitted] || !types[domain.EventTypeRequestApproved] {
		t.Errorf("expected submitted and approved events, got %v", types)
	}

	// A publisher pass drains the outbox.
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: env.OutboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slog.Default()),
		BatchSize:  10,
		Interval:   time.Hour,
	})

	runCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := publisher.Start(runCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected publisher to stop on deadline, got %v", err)
	}

	events, err = env.OutboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("get unpublished after publish: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected outbox drained, %d events remain", len(events))
	}
}
