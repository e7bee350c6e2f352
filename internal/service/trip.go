package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// truckLockTTL bounds how long a start attempt may hold the per-truck lock.
const truckLockTTL = 10 * time.Second

// TruckLocker serializes concurrent trip starts for the same truck.
type TruckLocker interface {
	AcquireTruckLock(ctx context.Context, truckID string, ttl time.Duration) (bool, error)
	ReleaseTruckLock(ctx context.Context, truckID string) error
}

// RankingInvalidator drops the cached profitability ranking after a
// transition changes route aggregates.
type RankingInvalidator interface {
	InvalidateRanking(ctx context.Context) error
}

// TripService owns the trip lifecycle: starting, finalizing and cancelling
// trips, and keeping route aggregates and truck availability consistent with
// every transition. All writes of one transition share a transaction.
type TripService struct {
	atomic    repository.Atomic
	tripRepo  repository.TripRepository
	truckRepo repository.TruckRepository
	ledger    Ledger
	locks     TruckLocker
	ranking   RankingInvalidator
	audit     *AuditLog
}

// NewTripService creates a new TripService. locks, ranking and audit may be
// nil.
func NewTripService(
	atomic repository.Atomic,
	tripRepo repository.TripRepository,
	truckRepo repository.TruckRepository,
	ledger Ledger,
	locks TruckLocker,
	ranking RankingInvalidator,
	audit *AuditLog,
) *TripService {
	return &TripService{
		atomic:    atomic,
		tripRepo:  tripRepo,
		truckRepo: truckRepo,
		ledger:    ledger,
		locks:     locks,
		ranking:   ranking,
		audit:     audit,
	}
}

// StartTripRequest contains the parameters for starting a trip.
type StartTripRequest struct {
	TruckID       string
	RouteID       string
	StartDate     time.Time
	OdometerStart int64
	Observations  string
}

// StartTrip creates a trip in ACTIVE state and marks the truck busy. A truck
// can hold at most one active trip; the check runs under a per-truck lock
// and is repeated inside the transaction.
func (s *TripService) StartTrip(ctx context.Context, req StartTripRequest) (*domain.Trip, error) {
	if req.TruckID == "" {
		return nil, ErrTruckNotFound
	}

	if req.OdometerStart < 0 {
		return nil, ErrInvalidOdometerReading
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	// Resolve the truck before touching anything.
	if _, err := s.truckRepo.GetByID(ctx, req.TruckID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTruckNotFound
		}
		return nil, err
	}

	if s.locks != nil {
		acquired, err := s.locks.AcquireTruckLock(ctx, req.TruckID, truckLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrTruckAlreadyOnTrip
		}
		defer func() {
			_ = s.locks.ReleaseTruckLock(ctx, req.TruckID)
		}()
	}

	trip := &domain.Trip{
		ID:                uuid.New().String(),
		TruckID:           req.TruckID,
		RouteID:           req.RouteID,
		Status:            domain.TripStatusActive,
		StartDate:         startDate,
		OdometerStart:     req.OdometerStart,
		ObservationsStart: req.Observations,
		CreatedAt:         time.Now(),
	}

	err := s.atomic.InTx(ctx, func(repos repository.Repos) error {
		// Authoritative one-active-trip-per-truck check.
		existing, err := repos.Trips.FindActiveByTruck(ctx, req.TruckID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrTruckAlreadyOnTrip
		}

		if req.RouteID != "" {
			route, err := repos.Routes.GetByID(ctx, req.RouteID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrRouteNotFound
				}
				return err
			}
			if !route.Active {
				return ErrRouteInactive
			}

			route.Rollup = route.Rollup.ApplyTripStarted()
			if err := repos.Routes.Update(ctx, route); err != nil {
				return err
			}
		}

		if err := repos.Trips.Create(ctx, trip); err != nil {
			return err
		}

		return repos.Trucks.UpdateStatus(ctx, req.TruckID, domain.TruckStatusOnTrip)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRanking(ctx)
	s.audit.TripTransition(ctx, AuditTripStarted, trip)

	return trip, nil
}

// IncomeParams describes the optional automatic income created at
// finalization.
type IncomeParams struct {
	CreateAutoIncome bool
	AmountCharged    float64
	Description      string
}

// FinalizeTripRequest contains the parameters for finalizing a trip.
type FinalizeTripRequest struct {
	EndDate           time.Time
	KMTraveled        int64
	ObservationsFinal string
	Expenses          *float64
	Income            *IncomeParams
}

// FinalizeTripResponse contains the result of finalizing a trip.
type FinalizeTripResponse struct {
	Trip   *domain.Trip
	Income *domain.IncomeRecord
}

// FinalizeTrip completes an active trip. The status change, the odometer
// math, the route aggregate refresh, the truck release and the optional
// income creation commit as one unit; a ledger failure aborts everything and
// the trip stays ACTIVE.
func (s *TripService) FinalizeTrip(ctx context.Context, tripID string, req FinalizeTripRequest) (*FinalizeTripResponse, error) {
	if tripID == "" {
		return nil, ErrTripNotFound
	}

	if req.KMTraveled <= 0 {
		return nil, ErrInvalidDistance
	}

	if req.Expenses != nil && *req.Expenses < 0 {
		return nil, ErrInvalidExpenses
	}

	if req.Income != nil && req.Income.CreateAutoIncome && req.Income.AmountCharged <= 0 {
		return nil, ErrIncomeAmountRequired
	}

	endDate := req.EndDate
	if endDate.IsZero() {
		endDate = time.Now()
	}

	var result FinalizeTripResponse

	err := s.atomic.InTx(ctx, func(repos repository.Repos) error {
		trip, err := repos.Trips.GetByID(ctx, tripID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTripNotFound
			}
			return err
		}

		if trip.Status != domain.TripStatusActive {
			return ErrTripNotActive
		}

		if endDate.Before(trip.StartDate) {
			return ErrInvalidDateRange
		}

		trip.Status = domain.TripStatusCompleted
		trip.EndDate = endDate
		trip.KMTraveled = req.KMTraveled
		trip.OdometerEnd = trip.OdometerStart + req.KMTraveled
		trip.ObservationsFinal = req.ObservationsFinal
		trip.Expenses = req.Expenses

		if req.Income != nil && req.Income.CreateAutoIncome {
			description := req.Income.Description
			if description == "" {
				description, err = s.defaultIncomeDescription(ctx, repos, trip)
				if err != nil {
					return err
				}
			}

			income, err := s.ledger.CreateIncome(ctx, trip.ID, req.Income.AmountCharged, description)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
			}

			trip.IncomeID = income.ID
			trip.IncomeAmount = req.Income.AmountCharged
			result.Income = income
		}

		if err := repos.Trips.Update(ctx, trip); err != nil {
			return err
		}

		if trip.RouteID != "" {
			route, err := repos.Routes.GetByID(ctx, trip.RouteID)
			if err != nil {
				return err
			}

			route.Rollup = route.Rollup.ApplyTripCompleted(domain.TripCompletion{
				KMTraveled:   trip.KMTraveled,
				IncomeAmount: trip.IncomeAmount,
				HasIncome:    trip.HasIncome(),
				Expenses:     trip.Expenses,
			})
			if err := repos.Routes.Update(ctx, route); err != nil {
				return err
			}
		}

		if err := repos.Trucks.UpdateStatus(ctx, trip.TruckID, domain.TruckStatusAvailable); err != nil {
			return err
		}

		result.Trip = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRanking(ctx)
	s.audit.TripTransition(ctx, AuditTripCompleted, result.Trip)
	if result.Income != nil {
		s.audit.IncomeCreated(ctx, result.Trip, result.Income)
	}

	return &result, nil
}

// CancelTrip cancels an active trip. No odometer or financial fields are
// touched; the route's active count drops and the truck is released.
func (s *TripService) CancelTrip(ctx context.Context, tripID, reason string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrTripNotFound
	}

	if reason == "" {
		return nil, ErrInvalidCancelReason
	}

	var cancelled *domain.Trip

	err := s.atomic.InTx(ctx, func(repos repository.Repos) error {
		trip, err := repos.Trips.GetByID(ctx, tripID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTripNotFound
			}
			return err
		}

		if trip.Status != domain.TripStatusActive {
			return ErrTripNotActive
		}

		// Cancel records only the terminal status and the reason. EndDate
		// stays zero: stamping it here could precede a future-dated start.
		trip.Status = domain.TripStatusCancelled
		trip.CancelReason = reason

		if err := repos.Trips.Update(ctx, trip); err != nil {
			return err
		}

		if trip.RouteID != "" {
			route, err := repos.Routes.GetByID(ctx, trip.RouteID)
			if err != nil {
				return err
			}

			route.Rollup = route.Rollup.ApplyTripCancelled()
			if err := repos.Routes.Update(ctx, route); err != nil {
				return err
			}
		}

		if err := repos.Trucks.UpdateStatus(ctx, trip.TruckID, domain.TruckStatusAvailable); err != nil {
			return err
		}

		cancelled = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRanking(ctx)
	s.audit.TripTransition(ctx, AuditTripCancelled, cancelled)

	return cancelled, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrTripNotFound
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAllTrips retrieves recent trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// ListTripsByRoute retrieves all trips bound to a route.
func (s *TripService) ListTripsByRoute(ctx context.Context, routeID string) ([]*domain.Trip, error) {
	return s.tripRepo.ListByRoute(ctx, routeID)
}

// defaultIncomeDescription builds the income description from the truck
// plate and, when bound, the route name.
func (s *TripService) defaultIncomeDescription(ctx context.Context, repos repository.Repos, trip *domain.Trip) (string, error) {
	truck, err := repos.Trucks.GetByID(ctx, trip.TruckID)
	if err != nil {
		return "", err
	}

	if trip.RouteID == "" {
		return fmt.Sprintf("Trip income: truck %s", truck.Plate), nil
	}

	route, err := repos.Routes.GetByID(ctx, trip.RouteID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Trip income: truck %s, route %s", truck.Plate, route.Name), nil
}

func (s *TripService) invalidateRanking(ctx context.Context) {
	if s.ranking != nil {
		_ = s.ranking.InvalidateRanking(ctx)
	}
}
