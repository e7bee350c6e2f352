package tests

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) ListByRoute(ctx context.Context, routeID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.RouteID == routeID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) FindActiveByTruck(ctx context.Context, truckID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.TruckID == truckID && t.Status == domain.TripStatusActive {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil // No active trip
}

// GetTrip returns trip for assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// CountActiveTripsForTruck counts active trips for a truck.
func (m *MockTripRepository) CountActiveTripsForTruck(truckID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, t := range m.trips {
		if t.TruckID == truckID && t.Status == domain.TripStatusActive {
			count++
		}
	}
	return count
}

func (m *MockTripRepository) snapshot() map[string]domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]domain.Trip, len(m.trips))
	for id, t := range m.trips {
		snap[id] = *t
	}
	return snap
}

func (m *MockTripRepository) restore(snap map[string]domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = make(map[string]*domain.Trip, len(snap))
	for id := range snap {
		t := snap[id]
		m.trips[id] = &t
	}
}

// ──────────────────────────────────────────────
// MOCK ROUTE REPOSITORY
// ──────────────────────────────────────────────

// MockRouteRepository is a mock implementation of RouteRepository.
type MockRouteRepository struct {
	mu     sync.RWMutex
	routes map[string]*domain.Route

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32
	DeleteCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	DeleteError error
}

// NewMockRouteRepository creates a new mock route repository.
func NewMockRouteRepository() *MockRouteRepository {
	return &MockRouteRepository{
		routes: make(map[string]*domain.Route),
	}
}

// AddRoute adds a route to the mock repository.
func (m *MockRouteRepository) AddRoute(route *domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
}

func (m *MockRouteRepository) Create(ctx context.Context, route *domain.Route) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
	return nil
}

func (m *MockRouteRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	route, ok := m.routes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *route
	return &copy, nil
}

func (m *MockRouteRepository) List(ctx context.Context, filter repository.RouteFilter) ([]*domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Route
	for _, r := range m.routes {
		if filter.Active != nil && r.Active != *filter.Active {
			continue
		}
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRouteRepository) Update(ctx context.Context, route *domain.Route) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[route.ID]; !ok {
		return repository.ErrNotFound
	}
	m.routes[route.ID] = route
	return nil
}

func (m *MockRouteRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

// GetRoute returns the route by ID (for test assertions).
func (m *MockRouteRepository) GetRoute(id string) *domain.Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.routes[id]
}

// CountRoutes returns the number of routes.
func (m *MockRouteRepository) CountRoutes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.routes)
}

func (m *MockRouteRepository) snapshot() map[string]domain.Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]domain.Route, len(m.routes))
	for id, r := range m.routes {
		snap[id] = *r
	}
	return snap
}

func (m *MockRouteRepository) restore(snap map[string]domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]*domain.Route, len(snap))
	for id := range snap {
		r := snap[id]
		m.routes[id] = &r
	}
}

// ──────────────────────────────────────────────
// MOCK TRUCK REPOSITORY
// ──────────────────────────────────────────────

// MockTruckRepository is a mock implementation of TruckRepository.
type MockTruckRepository struct {
	mu     sync.RWMutex
	trucks map[string]*domain.Truck

	// Counters for verification
	UpdateStatusCallCount int32

	// Error injection
	UpdateStatusError error
}

// NewMockTruckRepository creates a new mock truck repository.
func NewMockTruckRepository() *MockTruckRepository {
	return &MockTruckRepository{
		trucks: make(map[string]*domain.Truck),
	}
}

// AddTruck adds a truck to the mock repository.
func (m *MockTruckRepository) AddTruck(truck *domain.Truck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trucks[truck.ID] = truck
}

func (m *MockTruckRepository) GetByID(ctx context.Context, id string) (*domain.Truck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	truck, ok := m.trucks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *truck
	return &copy, nil
}

func (m *MockTruckRepository) UpdateStatus(ctx context.Context, id string, status domain.TruckStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	truck, ok := m.trucks[id]
	if !ok {
		return repository.ErrNotFound
	}
	truck.Status = status
	return nil
}

// GetTruck returns truck for test assertions.
func (m *MockTruckRepository) GetTruck(id string) *domain.Truck {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trucks[id]
}

func (m *MockTruckRepository) snapshot() map[string]domain.Truck {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]domain.Truck, len(m.trucks))
	for id, t := range m.trucks {
		snap[id] = *t
	}
	return snap
}

func (m *MockTruckRepository) restore(snap map[string]domain.Truck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trucks = make(map[string]*domain.Truck, len(snap))
	for id := range snap {
		t := snap[id]
		m.trucks[id] = &t
	}
}

// ──────────────────────────────────────────────
// MOCK ATOMIC (transaction boundary)
// ──────────────────────────────────────────────

// MockAtomic runs atomic units against the mock repositories, restoring
// their state when the unit fails so rollback semantics hold in tests.
type MockAtomic struct {
	Trips  *MockTripRepository
	Routes *MockRouteRepository
	Trucks *MockTruckRepository

	// Counters
	InTxCallCount int32
	RollbackCount int32

	// Error injection
	BeginError error
}

// NewMockAtomic creates a new MockAtomic over the given mock repositories.
func NewMockAtomic(trips *MockTripRepository, routes *MockRouteRepository, trucks *MockTruckRepository) *MockAtomic {
	return &MockAtomic{
		Trips:  trips,
		Routes: routes,
		Trucks: trucks,
	}
}

func (m *MockAtomic) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	atomic.AddInt32(&m.InTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}

	tripSnap := m.Trips.snapshot()
	routeSnap := m.Routes.snapshot()
	truckSnap := m.Trucks.snapshot()

	// Match the real transaction manager: a panic inside fn rolls back
	// before propagating.
	defer func() {
		if p := recover(); p != nil {
			m.Trips.restore(tripSnap)
			m.Routes.restore(routeSnap)
			m.Trucks.restore(truckSnap)
			atomic.AddInt32(&m.RollbackCount, 1)
			panic(p)
		}
	}()

	err := fn(repository.Repos{
		Trips:  m.Trips,
		Routes: m.Routes,
		Trucks: m.Trucks,
	})
	if err != nil {
		m.Trips.restore(tripSnap)
		m.Routes.restore(routeSnap)
		m.Trucks.restore(truckSnap)
		atomic.AddInt32(&m.RollbackCount, 1)
		return err
	}

	return nil
}

// ──────────────────────────────────────────────
// MOCK LEDGER
// ──────────────────────────────────────────────

// MockLedger is a mock financial ledger bridge.
type MockLedger struct {
	mu sync.Mutex

	// Control behavior
	FailError error

	// Counters
	CreateIncomeCallCount int32

	// Recorded calls
	LastTripID      string
	LastAmount      float64
	LastDescription string

	total float64
}

// NewMockLedger creates a new mock ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

func (m *MockLedger) CreateIncome(ctx context.Context, tripID string, amount float64, description string) (*domain.IncomeRecord, error) {
	atomic.AddInt32(&m.CreateIncomeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailError != nil {
		return nil, m.FailError
	}
	m.LastTripID = tripID
	m.LastAmount = amount
	m.LastDescription = description
	m.total += amount
	return &domain.IncomeRecord{
		ID:    uuid.New().String(),
		Total: m.total,
	}, nil
}

// SetFailure configures the ledger to fail.
func (m *MockLedger) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailError = err
}

// ──────────────────────────────────────────────
// MOCK TRUCK LOCKER
// ──────────────────────────────────────────────

// MockTruckLocker is a mock implementation of TruckLocker.
type MockTruckLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockTruckLocker creates a new mock truck locker.
func NewMockTruckLocker() *MockTruckLocker {
	return &MockTruckLocker{
		locks: make(map[string]time.Time),
	}
}

func (m *MockTruckLocker) AcquireTruckLock(ctx context.Context, truckID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:truck:" + truckID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockTruckLocker) ReleaseTruckLock(ctx context.Context, truckID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:truck:"+truckID)
	return nil
}

// IsLocked checks if a truck is locked (for test assertions).
func (m *MockTruckLocker) IsLocked(truckID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:truck:"+truckID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK RANKING STORE
// ──────────────────────────────────────────────

// MockRankingStore is a mock implementation of RankingStore.
type MockRankingStore struct {
	mu     sync.Mutex
	cached []*domain.Route
	valid  bool

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockRankingStore creates a new mock ranking store.
func NewMockRankingStore() *MockRankingStore {
	return &MockRankingStore{}
}

func (m *MockRankingStore) GetRanking(ctx context.Context) ([]*domain.Route, bool, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.valid {
		return nil, false, nil
	}
	return m.cached, true, nil
}

func (m *MockRankingStore) SetRanking(ctx context.Context, routes []*domain.Route) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = routes
	m.valid = true
	return nil
}

func (m *MockRankingStore) InvalidateRanking(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
	m.valid = false
	return nil
}

// IsValid reports whether a cached ranking exists (for test assertions).
func (m *MockRankingStore) IsValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}

// ──────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────

// ErrMockLedgerDown simulates an unreachable financial ledger.
var ErrMockLedgerDown = errors.New("mock: ledger unreachable")

// float returns a pointer to v.
func float(v float64) *float64 {
	return &v
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
