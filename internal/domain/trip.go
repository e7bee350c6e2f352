package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Trip represents one haul of a truck, from start to completion or
// cancellation. Once it reaches a terminal status it is never mutated again.
type Trip struct {
	ID      string
	TruckID string
	RouteID string // empty when the trip is not bound to a route

	Status TripStatus

	StartDate time.Time
	EndDate   time.Time // zero until finalized

	OdometerStart int64
	OdometerEnd   int64 // set only at finalization
	KMTraveled    int64 // OdometerEnd - OdometerStart

	ObservationsStart string
	ObservationsFinal string

	// Populated only when an automatic income record was created.
	IncomeID     string
	IncomeAmount float64

	// Optional expense total recorded at finalization. Nil means no expense
	// data was captured for this trip.
	Expenses *float64

	CancelReason string

	CreatedAt time.Time
}

// IsTerminal reports whether the trip can no longer change state.
func (t *Trip) IsTerminal() bool {
	return t.Status == TripStatusCompleted || t.Status == TripStatusCancelled
}

// HasIncome reports whether an automatic income record is linked to the trip.
func (t *Trip) HasIncome() bool {
	return t.IncomeID != ""
}
