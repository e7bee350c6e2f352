package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fleet/internal/domain"
)

// Ledger is the bridge to the external financial ledger. The ledger owns
// income and expense records; this service only asks it to create one income
// entry per finalized trip.
type Ledger interface {
	CreateIncome(ctx context.Context, tripID string, amount float64, description string) (*domain.IncomeRecord, error)
}

// MemoryLedger is an in-process Ledger used for local runs and tests.
type MemoryLedger struct {
	mu    sync.Mutex
	total float64
}

// NewMemoryLedger creates a new MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// CreateIncome records an income entry and returns its reference.
func (l *MemoryLedger) CreateIncome(ctx context.Context, tripID string, amount float64, description string) (*domain.IncomeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total += amount
	return &domain.IncomeRecord{
		ID:    uuid.New().String(),
		Total: l.total,
	}, nil
}
