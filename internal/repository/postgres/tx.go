package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/repository"
)

// TxManager runs atomic units against PostgreSQL transactions.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// InTx begins a transaction, hands transaction-scoped repositories to fn,
// and commits when fn returns nil. Any error rolls the transaction back.
func (m *TxManager) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// A panic inside fn must not leak the open transaction; roll back and
	// let it propagate.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	repos := repository.Repos{
		Trips:  NewTripRepositoryWithTx(tx),
		Routes: NewRouteRepositoryWithTx(tx),
		Trucks: NewTruckRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure TxManager implements repository.Atomic.
var _ repository.Atomic = (*TxManager)(nil)
