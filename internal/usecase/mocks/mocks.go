package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// MockBalanceRepository is a mock implementation of BalanceRepository.
// The map-backed defaults hand out struct copies on locked reads so a
// discarded transaction never leaks mutations back into the store.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.BalanceRecord

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, balance *domain.BalanceRecord) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.BalanceRecord, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.BalanceRecord, error)
	GetByEmployeeYearFunc func(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error)
	UpdateFunc            func(ctx context.Context, tx usecase.Transaction, balance *domain.BalanceRecord) error
	ListByYearFunc        func(ctx context.Context, year int) ([]*domain.BalanceRecord, error)
	ListBeforeYearFunc    func(ctx context.Context, year int) ([]*domain.BalanceRecord, error)
	ListByEmployeeFunc    func(ctx context.Context, employeeID string, limit, offset int) ([]*domain.BalanceRecord, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]*domain.BalanceRecord),
	}
}

// Seed stores a balance directly, bypassing any transaction.
func (m *MockBalanceRepository) Seed(balance *domain.BalanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *balance
	m.balances[balance.ID] = &copied
}

func (m *MockBalanceRepository) Create(ctx context.Context, tx usecase.Transaction, balance *domain.BalanceRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.balances {
		if b.EmployeeID == balance.EmployeeID && b.Year == balance.Year {
			return domain.ErrBalanceExists
		}
	}
	copied := *balance
	m.balances[balance.ID] = &copied
	return nil
}

func (m *MockBalanceRepository) GetByID(ctx context.Context, id string) (*domain.BalanceRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.balances[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, domain.ErrBalanceNotFound
}

func (m *MockBalanceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BalanceRecord, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockBalanceRepository) GetByEmployeeYear(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error) {
	if m.GetByEmployeeYearFunc != nil {
		return m.GetByEmployeeYearFunc(ctx, employeeID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			copied := *b
			return &copied, nil
		}
	}
	return nil, domain.ErrBalanceNotFound
}

func (m *MockBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.BalanceRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[balance.ID]; !ok {
		return domain.ErrBalanceNotFound
	}
	copied := *balance
	m.balances[balance.ID] = &copied
	return nil
}

func (m *MockBalanceRepository) ListByYear(ctx context.Context, year int) ([]*domain.BalanceRecord, error) {
	if m.ListByYearFunc != nil {
		return m.ListByYearFunc(ctx, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balances []*domain.BalanceRecord
	for _, b := range m.balances {
		if b.Year == year {
			copied := *b
			balances = append(balances, &copied)
		}
	}
	return balances, nil
}

func (m *MockBalanceRepository) ListBeforeYear(ctx context.Context, year int) ([]*domain.BalanceRecord, error) {
	if m.ListBeforeYearFunc != nil {
		return m.ListBeforeYearFunc(ctx, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balances []*domain.BalanceRecord
	for _, b := range m.balances {
		if b.Year < year {
			copied := *b
			balances = append(balances, &copied)
		}
	}
	return balances, nil
}

func (m *MockBalanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.BalanceRecord, error) {
	if m.ListByEmployeeFunc != nil {
		return m.ListByEmployeeFunc(ctx, employeeID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balances []*domain.BalanceRecord
	for _, b := range m.balances {
		if b.EmployeeID == employeeID {
			copied := *b
			balances = append(balances, &copied)
		}
	}
	return balances, nil
}

// MockRequestRepository is a mock implementation of RequestRepository.
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.LeaveRequest

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, request *domain.LeaveRequest) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.LeaveRequest, error)
	GetByIDForUpdateFunc       func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LeaveRequest, error)
	UpdateFunc                 func(ctx context.Context, tx usecase.Transaction, request *domain.LeaveRequest) error
	ListApprovedByEmployeeFunc func(ctx context.Context, tx usecase.Transaction, employeeID string, year int) ([]*domain.LeaveRequest, error)
	ListActiveByEmployeeFunc   func(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error)
	ListByEmployeeFunc         func(ctx context.Context, employeeID string, limit, offset int) ([]*domain.LeaveRequest, error)
	SumApprovedDaysFunc        func(ctx context.Context, employeeID string, year int) (int, error)
}

func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[string]*domain.LeaveRequest),
	}
}

// Seed stores a request directly, bypassing any transaction.
func (m *MockRequestRepository) Seed(request *domain.LeaveRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *request
	m.requests[request.ID] = &copied
}

func (m *MockRequestRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.LeaveRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, request)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (m *MockRequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LeaveRequest, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockRequestRepository) Update(ctx context.Context, tx usecase.Transaction, request *domain.LeaveRequest) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, request)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[request.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *MockRequestRepository) ListApprovedByEmployee(ctx context.Context, tx usecase.Transaction, employeeID string, year int) ([]*domain.LeaveRequest, error) {
	if m.ListApprovedByEmployeeFunc != nil {
		return m.ListApprovedByEmployeeFunc(ctx, tx, employeeID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var requests []*domain.LeaveRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID && r.Year == year && r.Status == domain.StatusApproved && !r.Cancelled {
			copied := *r
			requests = append(requests, &copied)
		}
	}
	return requests, nil
}

func (m *MockRequestRepository) ListActiveByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error) {
	if m.ListActiveByEmployeeFunc != nil {
		return m.ListActiveByEmployeeFunc(ctx, employeeID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var requests []*domain.LeaveRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID && r.Year == year && !r.Cancelled && r.Status != domain.StatusRejected {
			copied := *r
			requests = append(requests, &copied)
		}
	}
	return requests, nil
}

func (m *MockRequestRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.LeaveRequest, error) {
	if m.ListByEmployeeFunc != nil {
		return m.ListByEmployeeFunc(ctx, employeeID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var requests []*domain.LeaveRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			copied := *r
			requests = append(requests, &copied)
		}
	}
	return requests, nil
}

func (m *MockRequestRepository) SumApprovedDays(ctx context.Context, employeeID string, year int) (int, error) {
	if m.SumApprovedDaysFunc != nil {
		return m.SumApprovedDaysFunc(ctx, employeeID, year)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, r := range m.requests {
		if r.EmployeeID == employeeID && r.Year == year && r.Status == domain.StatusApproved && !r.Cancelled {
			total += r.DaysRequested
		}
	}
	return total, nil
}

// MockEmployeeRepository is a mock implementation of EmployeeRepository.
type MockEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*domain.Employee

	CreateFunc      func(ctx context.Context, employee *domain.Employee) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Employee, error)
	UpdateGradeFunc func(ctx context.Context, tx usecase.Transaction, id, grade string) error
	ListFunc        func(ctx context.Context, limit, offset int) ([]*domain.Employee, error)
}

func NewMockEmployeeRepository() *MockEmployeeRepository {
	return &MockEmployeeRepository{
		employees: make(map[string]*domain.Employee),
	}
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, employee)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *employee
	m.employees[employee.ID] = &copied
	return nil
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.employees[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

func (m *MockEmployeeRepository) UpdateGrade(ctx context.Context, tx usecase.Transaction, id, grade string) error {
	if m.UpdateGradeFunc != nil {
		return m.UpdateGradeFunc(ctx, tx, id, grade)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return domain.ErrEmployeeNotFound
	}
	e.Grade = grade
	return nil
}

func (m *MockEmployeeRepository) List(ctx context.Context, limit, offset int) ([]*domain.Employee, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var employees []*domain.Employee
	for _, e := range m.employees {
		copied := *e
		employees = append(employees, &copied)
	}
	return employees, nil
}

// MockRuleRepository is a mock implementation of RuleRepository.
type MockRuleRepository struct {
	mu    sync.RWMutex
	rules []*domain.EntitlementRule

	CreateFunc func(ctx context.Context, tx usecase.Transaction, rule *domain.EntitlementRule) error
	LatestFunc func(ctx context.Context) (*domain.EntitlementRule, error)
	ListFunc   func(ctx context.Context, limit, offset int) ([]*domain.EntitlementRule, error)
}

func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{}
}

func (m *MockRuleRepository) Create(ctx context.Context, tx usecase.Transaction, rule *domain.EntitlementRule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *rule
	m.rules = append(m.rules, &copied)
	return nil
}

func (m *MockRuleRepository) Latest(ctx context.Context) (*domain.EntitlementRule, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.rules) == 0 {
		return nil, domain.ErrRuleNotFound
	}
	copied := *m.rules[len(m.rules)-1]
	return &copied, nil
}

func (m *MockRuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.EntitlementRule, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rules := make([]*domain.EntitlementRule, 0, len(m.rules))
	for i := len(m.rules) - 1; i >= 0; i-- {
		copied := *m.rules[i]
		rules = append(rules, &copied)
	}
	return rules, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns everything recorded so far.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*domain.OutboxEvent, len(m.events))
	copy(events, m.events)
	return events
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *event
	m.events = append(m.events, &copied)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
