package domain

import (
	"strings"
	"time"
)

// Route limits and the advisory implied-speed window.
const (
	MaxRouteDistanceKM = 5000.0
	MaxRouteHours      = 168.0
	MinImpliedSpeedKMH = 10.0
	MaxImpliedSpeedKMH = 120.0
)

// ProfitabilityThreshold is the minimum average margin percentage for a
// route to be flagged profitable.
const ProfitabilityThreshold = 15.0

// Route is a reusable named origin→destination template usable by many trips.
type Route struct {
	ID             string
	Name           string
	Origin         string
	Destination    string
	DistanceKM     *float64
	EstimatedHours *float64
	Active         bool
	SuggestedPrice *float64

	// Rollup is owned by the aggregation logic; it is never hand-set.
	Rollup RouteRollup

	CreatedAt time.Time
}

// SameEndpoints reports whether origin and destination collide,
// case-insensitively.
func (r *Route) SameEndpoints() bool {
	return strings.EqualFold(strings.TrimSpace(r.Origin), strings.TrimSpace(r.Destination))
}

// ImpliedSpeedKMH returns the average speed implied by the route's distance
// and estimated duration. ok is false when either value is missing.
func (r *Route) ImpliedSpeedKMH() (float64, bool) {
	if r.DistanceKM == nil || r.EstimatedHours == nil || *r.EstimatedHours == 0 {
		return 0, false
	}
	return *r.DistanceKM / *r.EstimatedHours, true
}

// RouteRollup holds the running aggregate state for a route. Counters and
// totals are updated incrementally inside the same transaction as the trip
// transition that affects them.
type RouteRollup struct {
	TotalTrips     int64
	ActiveTrips    int64
	CompletedTrips int64
	CancelledTrips int64

	// IncomeTrips counts completed trips that recorded an automatic income;
	// trips without one are excluded from income averages, not zeroed.
	IncomeTrips  int64
	IncomeTotal  float64
	ExpenseTrips int64
	ExpenseTotal float64
	KMTotal      int64
}

// AverageIncome is the mean charged amount over income-bearing completed
// trips. ok is false when no such trip exists.
func (a RouteRollup) AverageIncome() (float64, bool) {
	if a.IncomeTrips == 0 {
		return 0, false
	}
	return a.IncomeTotal / float64(a.IncomeTrips), true
}

// AverageRealKM is the mean traveled distance over completed trips.
func (a RouteRollup) AverageRealKM() (float64, bool) {
	if a.CompletedTrips == 0 {
		return 0, false
	}
	return float64(a.KMTotal) / float64(a.CompletedTrips), true
}

// MarginPercentage is the realized margin over all recorded income and
// expenses. ok is false when income is zero or no expense data exists.
func (a RouteRollup) MarginPercentage() (float64, bool) {
	return MarginPercentage(a.IncomeTotal, a.ExpenseTotal, a.ExpenseTrips > 0)
}

// IsProfitable reports whether the route clears the profitability threshold.
func (a RouteRollup) IsProfitable() bool {
	avg, ok := a.AverageIncome()
	if !ok || avg <= 0 {
		return false
	}
	margin, ok := a.MarginPercentage()
	return ok && margin >= ProfitabilityThreshold
}

// ApplyTripStarted records a new active trip bound to the route.
func (a RouteRollup) ApplyTripStarted() RouteRollup {
	a.TotalTrips++
	a.ActiveTrips++
	return a
}

// TripCompletion carries the finalization figures the rollup needs.
type TripCompletion struct {
	KMTraveled   int64
	IncomeAmount float64
	HasIncome    bool
	Expenses     *float64
}

// ApplyTripCompleted moves one trip from active to completed and folds its
// figures into the running totals.
func (a RouteRollup) ApplyTripCompleted(c TripCompletion) RouteRollup {
	a.ActiveTrips--
	a.CompletedTrips++
	a.KMTotal += c.KMTraveled
	if c.HasIncome {
		a.IncomeTrips++
		a.IncomeTotal += c.IncomeAmount
	}
	if c.Expenses != nil {
		a.ExpenseTrips++
		a.ExpenseTotal += *c.Expenses
	}
	return a
}

// ApplyTripCancelled moves one trip from active to cancelled. Cancelled
// trips never count toward completion or profitability averages.
func (a RouteRollup) ApplyTripCancelled() RouteRollup {
	a.ActiveTrips--
	a.CancelledTrips++
	return a
}
