package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hrkit/leaveledger/internal/adapter/http/handler"
	apimiddleware "github.com/hrkit/leaveledger/internal/adapter/http/middleware"
	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"employee_id":"emp-1","category":"standard","days_requested":2,"start_date":"2026-06-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/employees/",
		"GET /api/v1/employees/{id}/balance",
		"GET /api/v1/employees/{id}/requests",
		"POST /api/v1/balances/",
		"POST /api/v1/balances/{id}/adjust",
		"POST /api/v1/balances/{id}/vesting",
		"POST /api/v1/requests/",
		"POST /api/v1/requests/{id}/approve",
		"POST /api/v1/requests/{id}/reject",
		"POST /api/v1/requests/{id}/cancel",
		"GET /api/v1/rules/current",
		"POST /api/v1/jobs/rollover",
		"POST /api/v1/jobs/vesting",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:   &handler.HealthHandler{},
		BalanceHandler:  handler.NewBalanceHandler(&stubBalanceService{}),
		RequestHandler:  handler.NewRequestHandler(&stubRequestService{}),
		EmployeeHandler: handler.NewEmployeeHandler(&stubEmployeeService{}),
		RuleHandler:     handler.NewRuleHandler(&stubRuleService{}),
		JobHandler:      handler.NewJobHandler(&stubJobService{}),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubBalanceService struct{}

func (stubBalanceService) InitializeBalance(ctx context.Context, input usecase.InitializeBalanceInput) (*domain.BalanceRecord, error) {
	return &domain.BalanceRecord{ID: "bal"}, nil
}

func (stubBalanceService) GetBalance(ctx context.Context, id string) (*domain.BalanceRecord, error) {
	return &domain.BalanceRecord{ID: id}, nil
}

func (stubBalanceService) GetEmployeeBalance(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error) {
	return &domain.BalanceRecord{EmployeeID: employeeID, Year: year}, nil
}

func (stubBalanceService) ListEmployeeBalances(ctx context.Context, input usecase.ListEmployeeBalancesInput) ([]*domain.BalanceRecord, error) {
	return []*domain.BalanceRecord{}, nil
}

func (stubBalanceService) AdjustBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.BalanceRecord, error) {
	return &domain.BalanceRecord{ID: input.BalanceID}, nil
}

func (stubBalanceService) RecomputeMonthlyVesting(ctx context.Context, balanceID string, asOf time.Time) (*domain.BalanceRecord, error) {
	return &domain.BalanceRecord{ID: balanceID}, nil
}

type stubRequestService struct{}

func (stubRequestService) SubmitRequest(ctx context.Context, input usecase.SubmitRequestInput) (*domain.LeaveRequest, error) {
	return &domain.LeaveRequest{ID: "req"}, nil
}

func (stubRequestService) ApproveRequest(ctx context.Context, input usecase.DecideRequestInput) (*domain.LeaveRequest, error) {
	return &domain.LeaveRequest{ID: input.RequestID}, nil
}

func (stubRequestService) RejectRequest(ctx context.Context, input usecase.DecideRequestInput) (*domain.LeaveRequest, error) {
	return &domain.LeaveRequest{ID: input.RequestID}, nil
}

func (stubRequestService) CancelRequest(ctx context.Context, input usecase.CancelRequestInput) (*domain.LeaveRequest, error) {
	return &domain.LeaveRequest{ID: input.RequestID}, nil
}

func (stubRequestService) GetRequest(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	return &domain.LeaveRequest{ID: id}, nil
}

func (stubRequestService) ListEmployeeRequests(ctx context.Context, input usecase.ListEmployeeRequestsInput) ([]*domain.LeaveRequest, error) {
	return []*domain.LeaveRequest{}, nil
}

type stubEmployeeService struct{}

func (stubEmployeeService) CreateEmployee(ctx context.Context, input usecase.CreateEmployeeInput) (*domain.Employee, error) {
	return &domain.Employee{ID: "emp"}, nil
}

func (stubEmployeeService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return &domain.Employee{ID: id}, nil
}

func (stubEmployeeService) ListEmployees(ctx context.Context, input usecase.ListEmployeesInput) ([]*domain.Employee, error) {
	return []*domain.Employee{}, nil
}

func (stubEmployeeService) ChangeGrade(ctx context.Context, input usecase.ChangeGradeInput) (*domain.Employee, error) {
	return &domain.Employee{ID: input.EmployeeID, Grade: input.NewGrade}, nil
}

type stubRuleService struct{}

func (stubRuleService) ChangeRule(ctx context.Context, input usecase.ChangeRuleInput) (*domain.EntitlementRule, usecase.JobResult, error) {
	return &domain.EntitlementRule{ID: "rule"}, usecase.JobResult{}, nil
}

func (stubRuleService) GetLatestRule(ctx context.Context) (*domain.EntitlementRule, error) {
	return domain.DefaultEntitlementRule(), nil
}

func (stubRuleService) ListRules(ctx context.Context, input usecase.ListRulesInput) ([]*domain.EntitlementRule, error) {
	return []*domain.EntitlementRule{}, nil
}

type stubJobService struct{}

func (stubJobService) RolloverYear(ctx context.Context, newYear int) (usecase.JobResult, error) {
	return usecase.JobResult{}, nil
}

func (stubJobService) RecomputeVesting(ctx context.Context) (usecase.JobResult, error) {
	return usecase.JobResult{}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
