package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet/internal/domain"
)

// RankingCacheTTL bounds how long a ranking survives without invalidation.
// Every trip transition invalidates explicitly; the TTL is a backstop.
const RankingCacheTTL = 60 * time.Second

const rankingCacheKey = "cache:route_ranking"

// CacheStore caches the route profitability ranking in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// cachedRoute is the serialized form of a ranked route.
type cachedRoute struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DistanceKM     *float64 `json:"distance_km,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Active         bool     `json:"active"`
	SuggestedPrice *float64 `json:"suggested_price,omitempty"`
	TotalTrips     int64    `json:"total_trips"`
	ActiveTrips    int64    `json:"active_trips"`
	CompletedTrips int64    `json:"completed_trips"`
	CancelledTrips int64    `json:"cancelled_trips"`
	IncomeTrips    int64    `json:"income_trips"`
	IncomeTotal    float64  `json:"income_total"`
	ExpenseTrips   int64    `json:"expense_trips"`
	ExpenseTotal   float64  `json:"expense_total"`
	KMTotal        int64    `json:"km_total"`
}

// GetRanking retrieves the cached ranking. The second return is false on a
// cache miss.
func (s *CacheStore) GetRanking(ctx context.Context) ([]*domain.Route, bool, error) {
	data, err := s.client.Get(ctx, rankingCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached []cachedRoute
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}

	routes := make([]*domain.Route, 0, len(cached))
	for _, c := range cached {
		routes = append(routes, &domain.Route{
			ID:             c.ID,
			Name:           c.Name,
			Origin:         c.Origin,
			Destination:    c.Destination,
			DistanceKM:     c.DistanceKM,
			EstimatedHours: c.EstimatedHours,
			Active:         c.Active,
			SuggestedPrice: c.SuggestedPrice,
			Rollup: domain.RouteRollup{
				TotalTrips:     c.TotalTrips,
				ActiveTrips:    c.ActiveTrips,
				CompletedTrips: c.CompletedTrips,
				CancelledTrips: c.CancelledTrips,
				IncomeTrips:    c.IncomeTrips,
				IncomeTotal:    c.IncomeTotal,
				ExpenseTrips:   c.ExpenseTrips,
				ExpenseTotal:   c.ExpenseTotal,
				KMTotal:        c.KMTotal,
			},
		})
	}

	return routes, true, nil
}

// SetRanking stores the ranked routes.
func (s *CacheStore) SetRanking(ctx context.Context, routes []*domain.Route) error {
	cached := make([]cachedRoute, 0, len(routes))
	for _, r := range routes {
		cached = append(cached, cachedRoute{
			ID:             r.ID,
			Name:           r.Name,
			Origin:         r.Origin,
			Destination:    r.Destination,
			DistanceKM:     r.DistanceKM,
			EstimatedHours: r.EstimatedHours,
			Active:         r.Active,
			SuggestedPrice: r.SuggestedPrice,
			TotalTrips:     r.Rollup.TotalTrips,
			ActiveTrips:    r.Rollup.ActiveTrips,
			CompletedTrips: r.Rollup.CompletedTrips,
			CancelledTrips: r.Rollup.CancelledTrips,
			IncomeTrips:    r.Rollup.IncomeTrips,
			IncomeTotal:    r.Rollup.IncomeTotal,
			ExpenseTrips:   r.Rollup.ExpenseTrips,
			ExpenseTotal:   r.Rollup.ExpenseTotal,
			KMTotal:        r.Rollup.KMTotal,
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, rankingCacheKey, data, RankingCacheTTL).Err()
}

// InvalidateRanking drops the cached ranking. Called on every trip
// transition so readers never see stale aggregates.
func (s *CacheStore) InvalidateRanking(ctx context.Context) error {
	return s.client.Del(ctx, rankingCacheKey).Err()
}
