package integration

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/hrkit/leaveledger/internal/adapter/repository/postgres"
	redisrepo "github.com/hrkit/leaveledger/internal/adapter/repository/redis"
	"github.com/hrkit/leaveledger/internal/usecase"
	"github.com/hrkit/leaveledger/tests/testutil"
)

// testEnv bundles the repositories and use cases most tests need. Each test
// gets its own database connection and an in-process Redis cache.
type testEnv struct {
	DB    *testutil.TestDB
	Cache *redisrepo.Cache

	BalanceRepo  *postgres.BalanceRepository
	RequestRepo  *postgres.RequestRepository
	EmployeeRepo *postgres.EmployeeRepository
	RuleRepo     *postgres.RuleRepository
	OutboxRepo   *postgres.OutboxRepository

	BalanceUC  *usecase.BalanceUseCase
	RequestUC  *usecase.RequestUseCase
	EmployeeUC *usecase.EmployeeUseCase
	RuleUC     *usecase.RuleUseCase
	RolloverUC *usecase.RolloverUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	pool := testDB.Pool
	cache := testutil.NewTestCache(t)

	txManager := postgres.NewTxManager(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	ruleRepo := postgres.NewRuleRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()
	logger := zerolog.Nop()

	return &testEnv{
		DB:           testDB,
		Cache:        cache,
		BalanceRepo:  balanceRepo,
		RequestRepo:  requestRepo,
		EmployeeRepo: employeeRepo,
		RuleRepo:     ruleRepo,
		OutboxRepo:   outboxRepo,
		BalanceUC: usecase.NewBalanceUseCase(txManager, balanceRepo, employeeRepo,
			ruleRepo, outboxRepo, idGen, cache, nil, logger),
		RequestUC: usecase.NewRequestUseCase(txManager, requestRepo, balanceRepo,
			outboxRepo, idGen, cache, retrier, nil, logger, usecase.DefaultDecisionLockWindow),
		EmployeeUC: usecase.NewEmployeeUseCase(txManager, employeeRepo, balanceRepo,
			requestRepo, ruleRepo, outboxRepo, idGen, cache, retrier, logger),
		RuleUC: usecase.NewRuleUseCase(txManager, ruleRepo, balanceRepo, employeeRepo,
			outboxRepo, idGen, cache, retrier, logger),
		RolloverUC: usecase.NewRolloverUseCase(txManager, balanceRepo, employeeRepo,
			ruleRepo, outboxRepo, idGen, cache, retrier, nil, logger),
	}
}
