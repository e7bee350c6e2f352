package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// RouteRepository is a PostgreSQL implementation of repository.RouteRepository.
type RouteRepository struct {
	q Querier
}

// NewRouteRepository creates a new PostgreSQL route repository.
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{q: db}
}

// NewRouteRepositoryWithTx creates a route repository using a transaction.
func NewRouteRepositoryWithTx(tx *sql.Tx) *RouteRepository {
	return &RouteRepository{q: tx}
}

const routeColumns = `
	id, name, origin, destination, distance_km, estimated_hours, active,
	suggested_price, total_trips, active_trips, completed_trips,
	cancelled_trips, income_trips, income_total, expense_trips,
	expense_total, km_total, created_at
`

// Create persists a new route.
func (r *RouteRepository) Create(ctx context.Context, route *domain.Route) error {
	query := `
		INSERT INTO routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.q.ExecContext(ctx, query,
		route.ID,
		route.Name,
		route.Origin,
		route.Destination,
		nullFloatPtr(route.DistanceKM),
		nullFloatPtr(route.EstimatedHours),
		route.Active,
		nullFloatPtr(route.SuggestedPrice),
		route.Rollup.TotalTrips,
		route.Rollup.ActiveTrips,
		route.Rollup.CompletedTrips,
		route.Rollup.CancelledTrips,
		route.Rollup.IncomeTrips,
		route.Rollup.IncomeTotal,
		route.Rollup.ExpenseTrips,
		route.Rollup.ExpenseTotal,
		route.Rollup.KMTotal,
		route.CreatedAt,
	)

	return err
}

// GetByID retrieves a route by ID.
func (r *RouteRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	route, err := scanRoute(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return route, nil
}

// List retrieves routes matching the filter.
func (r *RouteRepository) List(ctx context.Context, filter repository.RouteFilter) ([]*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes`
	var args []any

	if filter.Active != nil {
		query += ` WHERE active = $1`
		args = append(args, *filter.Active)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*domain.Route
	for rows.Next() {
		route, err := scanRouteRows(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	return routes, rows.Err()
}

// Update updates an existing route, including its rollup counters.
func (r *RouteRepository) Update(ctx context.Context, route *domain.Route) error {
	query := `
		UPDATE routes
		SET name = $1, origin = $2, destination = $3, distance_km = $4,
		    estimated_hours = $5, active = $6, suggested_price = $7,
		    total_trips = $8, active_trips = $9, completed_trips = $10,
		    cancelled_trips = $11, income_trips = $12, income_total = $13,
		    expense_trips = $14, expense_total = $15, km_total = $16
		WHERE id = $17
	`

	result, err := r.q.ExecContext(ctx, query,
		route.Name,
		route.Origin,
		route.Destination,
		nullFloatPtr(route.DistanceKM),
		nullFloatPtr(route.EstimatedHours),
		route.Active,
		nullFloatPtr(route.SuggestedPrice),
		route.Rollup.TotalTrips,
		route.Rollup.ActiveTrips,
		route.Rollup.CompletedTrips,
		route.Rollup.CancelledTrips,
		route.Rollup.IncomeTrips,
		route.Rollup.IncomeTotal,
		route.Rollup.ExpenseTrips,
		route.Rollup.ExpenseTotal,
		route.Rollup.KMTotal,
		route.ID,
	)
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

// Delete removes a route permanently.
func (r *RouteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
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

func scanRoute(row *sql.Row) (*domain.Route, error) {
	var route domain.Route
	var distance, hours, price sql.NullFloat64

	err := row.Scan(
		&route.ID,
		&route.Name,
		&route.Origin,
		&route.Destination,
		&distance,
		&hours,
		&route.Active,
		&price,
		&route.Rollup.TotalTrips,
		&route.Rollup.ActiveTrips,
		&route.Rollup.CompletedTrips,
		&route.Rollup.CancelledTrips,
		&route.Rollup.IncomeTrips,
		&route.Rollup.IncomeTotal,
		&route.Rollup.ExpenseTrips,
		&route.Rollup.ExpenseTotal,
		&route.Rollup.KMTotal,
		&route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyRouteNulls(&route, distance, hours, price)
	return &route, nil
}

func scanRouteRows(rows *sql.Rows) (*domain.Route, error) {
	var route domain.Route
	var distance, hours, price sql.NullFloat64

	err := rows.Scan(
		&route.ID,
		&route.Name,
		&route.Origin,
		&route.Destination,
		&distance,
		&hours,
		&route.Active,
		&price,
		&route.Rollup.TotalTrips,
		&route.Rollup.ActiveTrips,
		&route.Rollup.CompletedTrips,
		&route.Rollup.CancelledTrips,
		&route.Rollup.IncomeTrips,
		&route.Rollup.IncomeTotal,
		&route.Rollup.ExpenseTrips,
		&route.Rollup.ExpenseTotal,
		&route.Rollup.KMTotal,
		&route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyRouteNulls(&route, distance, hours, price)
	return &route, nil
}

func applyRouteNulls(route *domain.Route, distance, hours, price sql.NullFloat64) {
	if distance.Valid {
		v := distance.Float64
		route.DistanceKM = &v
	}
	if hours.Valid {
		v := hours.Float64
		route.EstimatedHours = &v
	}
	if price.Valid {
		v := price.Float64
		route.SuggestedPrice = &v
	}
}

// Ensure RouteRepository implements repository.RouteRepository.
var _ repository.RouteRepository = (*RouteRepository)(nil)
