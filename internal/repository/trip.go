package repository

import (
	"context"

	"fleet/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves recent trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// ListByRoute retrieves all trips bound to a route.
	ListByRoute(ctx context.Context, routeID string) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// FindActiveByTruck retrieves the active trip for a truck.
	// Returns nil if no active trip exists.
	FindActiveByTruck(ctx context.Context, truckID string) (*domain.Trip, error)
}
