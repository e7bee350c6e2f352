package service

import "errors"

var (
	// ErrTruckNotFound is returned when the truck cannot be resolved.
	ErrTruckNotFound = errors.New("truck not found")

	// ErrTruckAlreadyOnTrip is returned when the truck already has an active trip.
	ErrTruckAlreadyOnTrip = errors.New("truck already on an active trip")

	// ErrInvalidOdometerReading is returned when the starting odometer is negative.
	ErrInvalidOdometerReading = errors.New("invalid odometer reading")

	// ErrRouteNotFound is returned when the referenced route does not exist.
	ErrRouteNotFound = errors.New("route not found")

	// ErrRouteInactive is returned when a trip references a deactivated route.
	ErrRouteInactive = errors.New("route is inactive")

	// ErrTripNotFound is returned when the trip does not exist.
	ErrTripNotFound = errors.New("trip not found")

	// ErrTripNotActive is returned when a transition is attempted on a trip
	// that already reached a terminal state.
	ErrTripNotActive = errors.New("trip is not active")

	// ErrInvalidDistance is returned when km traveled is not positive.
	ErrInvalidDistance = errors.New("km traveled must be positive")

	// ErrInvalidDateRange is returned when the end date precedes the start date.
	ErrInvalidDateRange = errors.New("end date before start date")

	// ErrIncomeAmountRequired is returned when an automatic income is
	// requested without a positive charged amount.
	ErrIncomeAmountRequired = errors.New("automatic income requires a positive amount")

	// ErrInvalidExpenses is returned when a negative expense total is supplied.
	ErrInvalidExpenses = errors.New("expenses must not be negative")

	// ErrInvalidCancelReason is returned when a cancellation has no reason.
	ErrInvalidCancelReason = errors.New("cancellation reason required")

	// ErrLedgerUnavailable is returned when the financial ledger rejects or
	// fails the income creation; the whole finalization is aborted.
	ErrLedgerUnavailable = errors.New("financial ledger unavailable")

	// ErrRouteHasTrips is returned on a hard delete of a route with trip
	// history. DeleteRoute falls back to soft delete instead of surfacing it.
	ErrRouteHasTrips = errors.New("route has associated trips")

	// ErrInvalidRouteName is returned when the route name is empty.
	ErrInvalidRouteName = errors.New("route name required")

	// ErrInvalidEndpoints is returned when origin or destination is empty.
	ErrInvalidEndpoints = errors.New("origin and destination required")

	// ErrSameOriginDestination is returned when origin equals destination.
	ErrSameOriginDestination = errors.New("origin and destination must differ")

	// ErrInvalidRouteDistance is returned when distance is out of range.
	ErrInvalidRouteDistance = errors.New("route distance out of range")

	// ErrInvalidRouteHours is returned when estimated hours is out of range.
	ErrInvalidRouteHours = errors.New("estimated hours out of range")

	// ErrInvalidSuggestedPrice is returned when the suggested price is not positive.
	ErrInvalidSuggestedPrice = errors.New("suggested price must be positive")
)
