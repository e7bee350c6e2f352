package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, truck_id, route_id, status, start_date, end_date,
	odometer_start, odometer_end, km_traveled,
	observations_start, observations_final,
	income_id, income_amount, expenses, cancel_reason, created_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.TruckID,
		nullString(trip.RouteID),
		trip.Status,
		trip.StartDate,
		nullTime(trip.EndDate),
		trip.OdometerStart,
		nullInt(trip.OdometerEnd, trip.Status == domain.TripStatusCompleted),
		trip.KMTraveled,
		trip.ObservationsStart,
		trip.ObservationsFinal,
		nullString(trip.IncomeID),
		trip.IncomeAmount,
		nullFloatPtr(trip.Expenses),
		trip.CancelReason,
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAll retrieves recent trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// ListByRoute retrieves all trips bound to a route.
func (r *TripRepository) ListByRoute(ctx context.Context, routeID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE route_id = $1 ORDER BY start_date DESC`

	rows, err := r.q.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, end_date = $2, odometer_end = $3, km_traveled = $4,
		    observations_final = $5, income_id = $6, income_amount = $7,
		    expenses = $8, cancel_reason = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.Status,
		nullTime(trip.EndDate),
		nullInt(trip.OdometerEnd, trip.Status == domain.TripStatusCompleted),
		trip.KMTraveled,
		trip.ObservationsFinal,
		nullString(trip.IncomeID),
		trip.IncomeAmount,
		nullFloatPtr(trip.Expenses),
		trip.CancelReason,
		trip.ID,
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

// FindActiveByTruck retrieves the active trip for a truck.
// Returns nil if no active trip exists.
func (r *TripRepository) FindActiveByTruck(ctx context.Context, truckID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE truck_id = $1 AND status = $2
		LIMIT 1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, truckID, domain.TripStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

func scanTrip(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var routeID, incomeID sql.NullString
	var endDate sql.NullTime
	var odometerEnd sql.NullInt64
	var expenses sql.NullFloat64

	err := row.Scan(
		&trip.ID,
		&trip.TruckID,
		&routeID,
		&trip.Status,
		&trip.StartDate,
		&endDate,
		&trip.OdometerStart,
		&odometerEnd,
		&trip.KMTraveled,
		&trip.ObservationsStart,
		&trip.ObservationsFinal,
		&incomeID,
		&trip.IncomeAmount,
		&expenses,
		&trip.CancelReason,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyTripNulls(&trip, routeID, incomeID, endDate, odometerEnd, expenses)
	return &trip, nil
}

func collectTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		var trip domain.Trip
		var routeID, incomeID sql.NullString
		var endDate sql.NullTime
		var odometerEnd sql.NullInt64
		var expenses sql.NullFloat64

		if err := rows.Scan(
			&trip.ID,
			&trip.TruckID,
			&routeID,
			&trip.Status,
			&trip.StartDate,
			&endDate,
			&trip.OdometerStart,
			&odometerEnd,
			&trip.KMTraveled,
			&trip.ObservationsStart,
			&trip.ObservationsFinal,
			&incomeID,
			&trip.IncomeAmount,
			&expenses,
			&trip.CancelReason,
			&trip.CreatedAt,
		); err != nil {
			return nil, err
		}

		applyTripNulls(&trip, routeID, incomeID, endDate, odometerEnd, expenses)
		trips = append(trips, &trip)
	}

	return trips, rows.Err()
}

func applyTripNulls(trip *domain.Trip, routeID, incomeID sql.NullString, endDate sql.NullTime, odometerEnd sql.NullInt64, expenses sql.NullFloat64) {
	if routeID.Valid {
		trip.RouteID = routeID.String
	}
	if incomeID.Valid {
		trip.IncomeID = incomeID.String
	}
	if endDate.Valid {
		trip.EndDate = endDate.Time
	}
	if odometerEnd.Valid {
		trip.OdometerEnd = odometerEnd.Int64
	}
	if expenses.Valid {
		v := expenses.Float64
		trip.Expenses = &v
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullInt(v int64, valid bool) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: valid}
}

func nullFloatPtr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
