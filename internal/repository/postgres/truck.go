package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TruckRepository is a PostgreSQL implementation of repository.TruckRepository.
type TruckRepository struct {
	q Querier
}

// NewTruckRepository creates a new PostgreSQL truck repository.
func NewTruckRepository(db *sql.DB) *TruckRepository {
	return &TruckRepository{q: db}
}

// NewTruckRepositoryWithTx creates a truck repository using a transaction.
func NewTruckRepositoryWithTx(tx *sql.Tx) *TruckRepository {
	return &TruckRepository{q: tx}
}

// GetByID retrieves a truck by ID.
func (r *TruckRepository) GetByID(ctx context.Context, id string) (*domain.Truck, error) {
	query := `SELECT id, plate, status FROM trucks WHERE id = $1`

	var truck domain.Truck
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&truck.ID,
		&truck.Plate,
		&truck.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &truck, nil
}

// UpdateStatus updates the availability status of a truck.
func (r *TruckRepository) UpdateStatus(ctx context.Context, id string, status domain.TruckStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE trucks SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure TruckRepository implements repository.TruckRepository.
var _ repository.TruckRepository = (*TruckRepository)(nil)
