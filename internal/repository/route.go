package repository

import (
	"context"

	"fleet/internal/domain"
)

// RouteFilter narrows a route listing.
type RouteFilter struct {
	// Active filters by the active flag when set.
	Active *bool
}

// RouteRepository defines the persistence operations for routes.
type RouteRepository interface {
	// Create persists a new route.
	Create(ctx context.Context, route *domain.Route) error

	// GetByID retrieves a route by ID.
	GetByID(ctx context.Context, id string) (*domain.Route, error)

	// List retrieves routes matching the filter.
	List(ctx context.Context, filter RouteFilter) ([]*domain.Route, error)

	// Update updates an existing route, including its rollup counters.
	Update(ctx context.Context, route *domain.Route) error

	// Delete removes a route permanently.
	Delete(ctx context.Context, id string) error
}
