package repository

import (
	"context"

	"fleet/internal/domain"
)

// TruckRepository is the availability port onto the external truck
// inventory. The trip lifecycle only resolves trucks and flips their
// busy/available status.
type TruckRepository interface {
	// GetByID retrieves a truck by ID.
	GetByID(ctx context.Context, id string) (*domain.Truck, error)

	// UpdateStatus updates the availability status of a truck.
	UpdateStatus(ctx context.Context, id string, status domain.TruckStatus) error
}
