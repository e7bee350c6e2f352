package tests

import (
	"context"
	"errors"
	"testing"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// routeFixture wires a RouteService against the mock repositories.
type routeFixture struct {
	routes  *MockRouteRepository
	ranking *MockRankingStore
	svc     *service.RouteService
}

func newRouteFixture() *routeFixture {
	routes := NewMockRouteRepository()
	ranking := NewMockRankingStore()

	return &routeFixture{
		routes:  routes,
		ranking: ranking,
		svc:     service.NewRouteService(routes, ranking, nil),
	}
}

// addRankedRoute seeds a route whose rollup already reflects completed trips.
func (f *routeFixture) addRankedRoute(id, name string, completed int64, incomeTotal float64) {
	f.routes.AddRoute(&domain.Route{
		ID:          id,
		Name:        name,
		Origin:      "Buenos Aires",
		Destination: "Cordoba",
		Active:      true,
		Rollup: domain.RouteRollup{
			TotalTrips:     completed,
			CompletedTrips: completed,
			IncomeTrips:    completed,
			IncomeTotal:    incomeTotal,
		},
	})
}

func TestCreateRoute(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()

	result, err := f.svc.CreateRoute(context.Background(), service.CreateRouteRequest{
		Name:           "BA - Cordoba",
		Origin:         "Buenos Aires",
		Destination:    "Cordoba",
		DistanceKM:     float(700),
		EstimatedHours: float(9),
		SuggestedPrice: float(250000),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !result.Route.Active {
		t.Error("expected new route to be active")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if result.Route.Rollup.TotalTrips != 0 {
		t.Error("expected fresh route to carry empty aggregates")
	}
	if f.routes.GetRoute(result.Route.ID) == nil {
		t.Error("expected route to be persisted")
	}
}

func TestCreateRoute_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     service.CreateRouteRequest
		wantErr error
	}{
		{
			name:    "empty name",
			req:     service.CreateRouteRequest{Origin: "A", Destination: "B"},
			wantErr: service.ErrInvalidRouteName,
		},
		{
			name:    "missing origin",
			req:     service.CreateRouteRequest{Name: "R", Destination: "B"},
			wantErr: service.ErrInvalidEndpoints,
		},
		{
			name:    "missing destination",
			req:     service.CreateRouteRequest{Name: "R", Origin: "A"},
			wantErr: service.ErrInvalidEndpoints,
		},
		{
			name:    "same endpoints ignoring case",
			req:     service.CreateRouteRequest{Name: "R", Origin: "Rosario", Destination: "  rosario "},
			wantErr: service.ErrSameOriginDestination,
		},
		{
			name:    "zero distance",
			req:     service.CreateRouteRequest{Name: "R", Origin: "A", Destination: "B", DistanceKM: float(0)},
			wantErr: service.ErrInvalidRouteDistance,
		},
		{
			name:    "distance above cap",
			req:     service.CreateRouteRequest{Name: "R", Origin: "A", Destination: "B", DistanceKM: float(5001)},
			wantErr: service.ErrInvalidRouteDistance,
		},
		{
			name:    "hours above cap",
			req:     service.CreateRouteRequest{Name: "R", Origin: "A", Destination: "B", EstimatedHours: float(169)},
			wantErr: service.ErrInvalidRouteHours,
		},
		{
			name:    "negative price",
			req:     service.CreateRouteRequest{Name: "R", Origin: "A", Destination: "B", SuggestedPrice: float(-1)},
			wantErr: service.ErrInvalidSuggestedPrice,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newRouteFixture()
			_, err := f.svc.CreateRoute(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateRoute_ImpliedSpeedWarning(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()

	// 700 km in 2 hours implies 350 km/h. Advisory only: the route is
	// still created.
	result, err := f.svc.CreateRoute(context.Background(), service.CreateRouteRequest{
		Name:           "Fast",
		Origin:         "A",
		Destination:    "B",
		DistanceKM:     float(700),
		EstimatedHours: float(2),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	if !containsFold(result.Warnings[0], "speed") {
		t.Errorf("expected a speed warning, got %q", result.Warnings[0])
	}
	if f.routes.GetRoute(result.Route.ID) == nil {
		t.Error("expected route to be persisted despite the warning")
	}
}

func TestUpdateRoute(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.addRankedRoute("route-1", "Old name", 3, 600)

	inactive := false
	result, err := f.svc.UpdateRoute(context.Background(), "route-1", service.UpdateRouteRequest{
		Name:        "New name",
		Origin:      "Buenos Aires",
		Destination: "Mendoza",
		Active:      &inactive,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Route.Name != "New name" {
		t.Errorf("expected renamed route, got %q", result.Route.Name)
	}
	if result.Route.Active {
		t.Error("expected route to be deactivated")
	}

	// Aggregates survive template edits untouched.
	if result.Route.Rollup.CompletedTrips != 3 {
		t.Errorf("expected completed trips 3, got %d", result.Route.Rollup.CompletedTrips)
	}

	if f.ranking.InvalidateCallCount == 0 {
		t.Error("expected ranking cache invalidation after update")
	}
}

func TestUpdateRoute_NotFound(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()

	_, err := f.svc.UpdateRoute(context.Background(), "ghost", service.UpdateRouteRequest{
		Name:        "R",
		Origin:      "A",
		Destination: "B",
	})
	if !errors.Is(err, service.ErrRouteNotFound) {
		t.Errorf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestListRoutes_ActiveFilter(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.routes.AddRoute(&domain.Route{ID: "r1", Name: "On", Origin: "A", Destination: "B", Active: true})
	f.routes.AddRoute(&domain.Route{ID: "r2", Name: "Off", Origin: "A", Destination: "C", Active: false})

	all, err := f.svc.ListRoutes(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 routes, got %d", len(all))
	}

	active := true
	onlyActive, err := f.svc.ListRoutes(context.Background(), &active)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].ID != "r1" {
		t.Errorf("expected only the active route, got %v", onlyActive)
	}
}

func TestDeleteRoute_HardWhenNoHistory(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.routes.AddRoute(&domain.Route{ID: "fresh", Name: "Fresh", Origin: "A", Destination: "B", Active: true})

	result, err := f.svc.DeleteRoute(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Type != service.DeleteTypeHard {
		t.Errorf("expected hard delete, got %s", result.Type)
	}
	if f.routes.GetRoute("fresh") != nil {
		t.Error("expected route to be gone")
	}
}

func TestDeleteRoute_SoftWhenHistoryExists(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.addRankedRoute("busy", "Busy", 3, 600) // 100+200+300

	result, err := f.svc.DeleteRoute(context.Background(), "busy")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Type != service.DeleteTypeSoft {
		t.Errorf("expected soft delete, got %s", result.Type)
	}
	if !containsFold(result.Message, "history") {
		t.Errorf("expected message to mention preserved history, got %q", result.Message)
	}

	// Deactivated, not removed: history and aggregates survive.
	route := f.routes.GetRoute("busy")
	if route == nil {
		t.Fatal("expected route to still exist")
	}
	if route.Active {
		t.Error("expected route to be inactive")
	}
	if route.Rollup.CompletedTrips != 3 {
		t.Errorf("expected aggregates preserved, got %d completed", route.Rollup.CompletedTrips)
	}

	if avg, ok := route.Rollup.AverageIncome(); !ok || avg != 200 {
		t.Errorf("expected average income 200, got %f (ok=%v)", avg, ok)
	}
}

func TestDeleteRoute_NotFound(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()

	_, err := f.svc.DeleteRoute(context.Background(), "ghost")
	if !errors.Is(err, service.ErrRouteNotFound) {
		t.Errorf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestGetRouteStatistics(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.routes.AddRoute(&domain.Route{
		ID:          "route-1",
		Name:        "BA - Rosario",
		Origin:      "Buenos Aires",
		Destination: "Rosario",
		Active:      true,
		Rollup: domain.RouteRollup{
			TotalTrips:     5,
			ActiveTrips:    1,
			CompletedTrips: 3,
			CancelledTrips: 1,
			IncomeTrips:    3,
			IncomeTotal:    600000,
			ExpenseTrips:   3,
			ExpenseTotal:   450000,
			KMTotal:        900,
		},
	})

	stats, err := f.svc.GetRouteStatistics(context.Background(), "route-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stats.TotalTrips != 5 {
		t.Errorf("expected total trips 5, got %d", stats.TotalTrips)
	}
	if stats.TotalTrips != stats.ActiveTrips+stats.CompletedTrips+stats.CancelledTrips {
		t.Error("expected trip counters to add up")
	}
	if stats.AverageIncome == nil || *stats.AverageIncome != 200000 {
		t.Errorf("expected average income 200000, got %v", stats.AverageIncome)
	}
	if stats.AverageRealKM == nil || *stats.AverageRealKM != 300 {
		t.Errorf("expected average real km 300, got %v", stats.AverageRealKM)
	}
	// 600000 income over 450000 expenses: margin 25%, above threshold.
	if stats.MarginPct == nil || *stats.MarginPct != 25 {
		t.Errorf("expected margin 25%%, got %v", stats.MarginPct)
	}
	if !stats.IsProfitable {
		t.Error("expected route to be profitable")
	}
	if stats.ProfitPerKM == nil {
		t.Fatal("expected profit per km")
	}
	if want := (600000.0 - 450000.0) / 900.0; *stats.ProfitPerKM != want {
		t.Errorf("expected profit per km %f, got %f", want, *stats.ProfitPerKM)
	}
}

func TestGetRouteStatistics_NoData(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.routes.AddRoute(&domain.Route{
		ID:          "empty",
		Name:        "Empty",
		Origin:      "A",
		Destination: "B",
		Active:      true,
	})

	stats, err := f.svc.GetRouteStatistics(context.Background(), "empty")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// No completed trips and no income: averages and margins stay undefined
	// rather than dividing by zero.
	if stats.AverageIncome != nil {
		t.Errorf("expected undefined average income, got %v", *stats.AverageIncome)
	}
	if stats.AverageRealKM != nil {
		t.Errorf("expected undefined average km, got %v", *stats.AverageRealKM)
	}
	if stats.MarginPct != nil {
		t.Errorf("expected undefined margin, got %v", *stats.MarginPct)
	}
	if stats.ProfitPerKM != nil {
		t.Errorf("expected undefined profit per km, got %v", *stats.ProfitPerKM)
	}
	if stats.IsProfitable {
		t.Error("expected route without data to not be profitable")
	}
}

func TestGetRouteStatistics_NoExpenseData(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.addRankedRoute("route-1", "R", 2, 400000)

	stats, err := f.svc.GetRouteStatistics(context.Background(), "route-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stats.AverageIncome == nil || *stats.AverageIncome != 200000 {
		t.Errorf("expected average income 200000, got %v", stats.AverageIncome)
	}
	// Income exists but no expense records: margin has no basis.
	if stats.MarginPct != nil {
		t.Errorf("expected undefined margin, got %v", *stats.MarginPct)
	}
	if stats.IsProfitable {
		t.Error("expected no profitability flag without expense data")
	}
}

func TestMostProfitableRoutes_Ordering(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.addRankedRoute("low", "Low earner", 4, 400)      // avg 100
	f.addRankedRoute("high", "High earner", 2, 1000)   // avg 500
	f.addRankedRoute("mid", "Mid earner", 3, 900)      // avg 300
	f.routes.AddRoute(&domain.Route{ // never used: excluded from the ranking
		ID:          "unused",
		Name:        "Unused",
		Origin:      "A",
		Destination: "B",
		Active:      true,
	})

	ranked, err := f.svc.MostProfitableRoutes(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked routes, got %d", len(ranked))
	}
	if ranked[0].ID != "high" || ranked[1].ID != "mid" || ranked[2].ID != "low" {
		t.Errorf("unexpected order: %s, %s, %s", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestMostProfitableRoutes_TieBreaks(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	// Same average income (200); more completed trips wins.
	f.addRankedRoute("few", "alpha", 2, 400)
	f.addRankedRoute("many", "Beta", 5, 1000)
	// Same average, same completed count as "few": name decides,
	// case-insensitively.
	f.addRankedRoute("named", "Aardvark", 2, 400)

	ranked, err := f.svc.MostProfitableRoutes(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(ranked))
	}
	if ranked[0].ID != "many" {
		t.Errorf("expected completed-trips tie-break first, got %s", ranked[0].ID)
	}
	if ranked[1].ID != "named" || ranked[2].ID != "few" {
		t.Errorf("expected case-insensitive name tie-break, got %s then %s", ranked[1].ID, ranked[2].ID)
	}
}

func TestMostProfitableRoutes_Limit(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.addRankedRoute("a", "A", 1, 100)
	f.addRankedRoute("b", "B", 1, 200)
	f.addRankedRoute("c", "C", 1, 300)

	ranked, err := f.svc.MostProfitableRoutes(context.Background(), 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ranked) != 2 {
		t.Errorf("expected 2 routes, got %d", len(ranked))
	}

	none, err := f.svc.MostProfitableRoutes(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty result for limit 0, got %d", len(none))
	}
}

func TestMostProfitableRoutes_Caching(t *testing.T) {
	t.Parallel()

	f := newRouteFixture()
	f.addRankedRoute("a", "A", 1, 100)

	if _, err := f.svc.MostProfitableRoutes(context.Background(), 10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !f.ranking.IsValid() {
		t.Fatal("expected ranking to be cached after first read")
	}

	// Second read is served from cache.
	if _, err := f.svc.MostProfitableRoutes(context.Background(), 10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.ranking.GetCallCount < 2 {
		t.Error("expected cache reads on every call")
	}
	if f.ranking.SetCallCount != 1 {
		t.Errorf("expected a single cache fill, got %d", f.ranking.SetCallCount)
	}

	// Any route mutation drops the cache.
	if _, err := f.svc.DeleteRoute(context.Background(), "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if f.ranking.IsValid() {
		t.Error("expected ranking cache to be invalidated by the delete")
	}
}
