package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// RankingStore caches the profitability ranking between transitions.
type RankingStore interface {
	GetRanking(ctx context.Context) ([]*domain.Route, bool, error)
	SetRanking(ctx context.Context, routes []*domain.Route) error
	InvalidateRanking(ctx context.Context) error
}

// RouteService owns route templates and the aggregate statistics derived
// from their trip history.
type RouteService struct {
	routeRepo repository.RouteRepository
	ranking   RankingStore
	audit     *AuditLog
}

// NewRouteService creates a new RouteService. ranking and audit may be nil.
func NewRouteService(routeRepo repository.RouteRepository, ranking RankingStore, audit *AuditLog) *RouteService {
	return &RouteService{
		routeRepo: routeRepo,
		ranking:   ranking,
		audit:     audit,
	}
}

// CreateRouteRequest contains the parameters for creating a route.
type CreateRouteRequest struct {
	Name           string
	Origin         string
	Destination    string
	DistanceKM     *float64
	EstimatedHours *float64
	SuggestedPrice *float64
}

// RouteResult carries a route plus warning-class validation outcomes that
// did not block the operation.
type RouteResult struct {
	Route    *domain.Route
	Warnings []string
}

// CreateRoute validates and persists a new route. The implied-speed bound is
// advisory: a violation is returned as a warning, never an error.
func (s *RouteService) CreateRoute(ctx context.Context, req CreateRouteRequest) (*RouteResult, error) {
	route := &domain.Route{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		Origin:         strings.TrimSpace(req.Origin),
		Destination:    strings.TrimSpace(req.Destination),
		DistanceKM:     req.DistanceKM,
		EstimatedHours: req.EstimatedHours,
		Active:         true,
		SuggestedPrice: req.SuggestedPrice,
		CreatedAt:      time.Now(),
	}

	warnings, err := validateRoute(route)
	if err != nil {
		return nil, err
	}

	if err := s.routeRepo.Create(ctx, route); err != nil {
		return nil, err
	}

	return &RouteResult{Route: route, Warnings: warnings}, nil
}

// UpdateRouteRequest contains the parameters for editing a route. Rollup
// fields are aggregator-owned and cannot be set here.
type UpdateRouteRequest struct {
	Name           string
	Origin         string
	Destination    string
	DistanceKM     *float64
	EstimatedHours *float64
	SuggestedPrice *float64
	Active         *bool
}

// UpdateRoute edits a route's template fields.
func (s *RouteService) UpdateRoute(ctx context.Context, routeID string, req UpdateRouteRequest) (*RouteResult, error) {
	route, err := s.getRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	route.Name = strings.TrimSpace(req.Name)
	route.Origin = strings.TrimSpace(req.Origin)
	route.Destination = strings.TrimSpace(req.Destination)
	route.DistanceKM = req.DistanceKM
	route.EstimatedHours = req.EstimatedHours
	route.SuggestedPrice = req.SuggestedPrice
	if req.Active != nil {
		route.Active = *req.Active
	}

	warnings, err := validateRoute(route)
	if err != nil {
		return nil, err
	}

	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return &RouteResult{Route: route, Warnings: warnings}, nil
}

// GetRoute retrieves a route by ID.
func (s *RouteService) GetRoute(ctx context.Context, routeID string) (*domain.Route, error) {
	return s.getRoute(ctx, routeID)
}

// ListRoutes retrieves routes, optionally filtered by the active flag.
func (s *RouteService) ListRoutes(ctx context.Context, active *bool) ([]*domain.Route, error) {
	return s.routeRepo.List(ctx, repository.RouteFilter{Active: active})
}

// Delete result types.
const (
	DeleteTypeHard = "hard_delete"
	DeleteTypeSoft = "soft_delete"
)

// DeleteRouteResult tells the caller which deletion path was taken.
type DeleteRouteResult struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DeleteRoute removes a route. Routes with trip history are never hard
// deleted; they are deactivated so historical trips keep their reference.
func (s *RouteService) DeleteRoute(ctx context.Context, routeID string) (*DeleteRouteResult, error) {
	route, err := s.getRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if route.Rollup.TotalTrips == 0 {
		if err := s.routeRepo.Delete(ctx, routeID); err != nil {
			return nil, err
		}

		s.invalidate(ctx)
		s.audit.RouteRemoved(ctx, AuditRouteDeleted, routeID)

		return &DeleteRouteResult{
			Type:    DeleteTypeHard,
			Message: "route deleted",
		}, nil
	}

	route.Active = false
	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.audit.RouteRemoved(ctx, AuditRouteDeactivated, routeID)

	return &DeleteRouteResult{
		Type:    DeleteTypeSoft,
		Message: "route deactivated; history preserved",
	}, nil
}

// RouteStats is the derived statistics snapshot for one route. Averages and
// margins are nil when the underlying data does not exist; they are never
// computed from a zero divisor.
type RouteStats struct {
	RouteID        string
	Name           string
	Origin         string
	Destination    string
	Active         bool
	TotalTrips     int64
	ActiveTrips    int64
	CompletedTrips int64
	CancelledTrips int64
	AverageIncome  *float64
	AverageRealKM  *float64
	MarginPct      *float64
	ProfitPerKM    *float64
	IsProfitable   bool
}

// GetRouteStatistics builds the statistics snapshot for a route.
func (s *RouteService) GetRouteStatistics(ctx context.Context, routeID string) (*RouteStats, error) {
	route, err := s.getRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	return buildRouteStats(route), nil
}

// MostProfitableRoutes ranks routes with trip history by average income
// (ties: completed trips, then name case-insensitively). The ranking is
// served from cache when a fresh copy exists.
func (s *RouteService) MostProfitableRoutes(ctx context.Context, limit int) ([]*domain.Route, error) {
	if limit <= 0 {
		return nil, nil
	}

	if s.ranking != nil {
		if cached, ok, err := s.ranking.GetRanking(ctx); err == nil && ok {
			return clip(cached, limit), nil
		}
	}

	routes, err := s.routeRepo.List(ctx, repository.RouteFilter{})
	if err != nil {
		return nil, err
	}

	ranked := routes[:0]
	for _, route := range routes {
		if route.Rollup.TotalTrips > 0 {
			ranked = append(ranked, route)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return moreProfitable(ranked[i], ranked[j])
	})

	if s.ranking != nil {
		_ = s.ranking.SetRanking(ctx, ranked)
	}

	return clip(ranked, limit), nil
}

func (s *RouteService) getRoute(ctx context.Context, routeID string) (*domain.Route, error) {
	if routeID == "" {
		return nil, ErrRouteNotFound
	}

	route, err := s.routeRepo.GetByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	return route, nil
}

func (s *RouteService) invalidate(ctx context.Context) {
	if s.ranking != nil {
		_ = s.ranking.InvalidateRanking(ctx)
	}
}

// moreProfitable is the ranking order: average income descending, completed
// trips descending, then name ascending ignoring case.
func moreProfitable(a, b *domain.Route) bool {
	ai, _ := a.Rollup.AverageIncome()
	bi, _ := b.Rollup.AverageIncome()
	if ai != bi {
		return ai > bi
	}
	if a.Rollup.CompletedTrips != b.Rollup.CompletedTrips {
		return a.Rollup.CompletedTrips > b.Rollup.CompletedTrips
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

func buildRouteStats(route *domain.Route) *RouteStats {
	stats := &RouteStats{
		RouteID:        route.ID,
		Name:           route.Name,
		Origin:         route.Origin,
		Destination:    route.Destination,
		Active:         route.Active,
		TotalTrips:     route.Rollup.TotalTrips,
		ActiveTrips:    route.Rollup.ActiveTrips,
		CompletedTrips: route.Rollup.CompletedTrips,
		CancelledTrips: route.Rollup.CancelledTrips,
		IsProfitable:   route.Rollup.IsProfitable(),
	}

	if avg, ok := route.Rollup.AverageIncome(); ok {
		stats.AverageIncome = &avg
	}
	if km, ok := route.Rollup.AverageRealKM(); ok {
		stats.AverageRealKM = &km
	}
	if margin, ok := route.Rollup.MarginPercentage(); ok {
		stats.MarginPct = &margin
	}
	if profit, ok := domain.ProfitPerKM(
		route.Rollup.IncomeTotal,
		route.Rollup.ExpenseTotal,
		route.Rollup.KMTotal,
		route.Rollup.ExpenseTrips > 0,
	); ok {
		stats.ProfitPerKM = &profit
	}

	return stats
}

// validateRoute checks the route template fields. The returned warnings are
// advisory outcomes that do not block the operation.
func validateRoute(route *domain.Route) ([]string, error) {
	if route.Name == "" {
		return nil, ErrInvalidRouteName
	}

	if route.Origin == "" || route.Destination == "" {
		return nil, ErrInvalidEndpoints
	}

	if route.SameEndpoints() {
		return nil, ErrSameOriginDestination
	}

	if route.DistanceKM != nil && (*route.DistanceKM <= 0 || *route.DistanceKM > domain.MaxRouteDistanceKM) {
		return nil, ErrInvalidRouteDistance
	}

	if route.EstimatedHours != nil && (*route.EstimatedHours <= 0 || *route.EstimatedHours > domain.MaxRouteHours) {
		return nil, ErrInvalidRouteHours
	}

	if route.SuggestedPrice != nil && *route.SuggestedPrice <= 0 {
		return nil, ErrInvalidSuggestedPrice
	}

	var warnings []string
	if speed, ok := route.ImpliedSpeedKMH(); ok {
		if speed < domain.MinImpliedSpeedKMH || speed > domain.MaxImpliedSpeedKMH {
			warnings = append(warnings, fmt.Sprintf(
				"implied average speed %.1f km/h outside advisory range [%.0f, %.0f]",
				speed, domain.MinImpliedSpeedKMH, domain.MaxImpliedSpeedKMH))
		}
	}

	return warnings, nil
}

func clip(routes []*domain.Route, limit int) []*domain.Route {
	if len(routes) > limit {
		return routes[:limit]
	}
	return routes
}
