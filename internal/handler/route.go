package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// RouteHandler handles HTTP requests for routes.
type RouteHandler struct {
	routeService *service.RouteService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routeService *service.RouteService) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

// RouteRequest is the HTTP request body for creating or updating a route.
type RouteRequest struct {
	Name           string   `json:"name"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DistanceKM     *float64 `json:"distance_km,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	SuggestedPrice *float64 `json:"suggested_price,omitempty"`
	Active         *bool    `json:"active,omitempty"`
}

// RouteResponse is the HTTP response for route operations.
type RouteResponse struct {
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
	Warnings       []string `json:"warnings,omitempty"`
}

// RouteStatsResponse is the HTTP response for route statistics.
type RouteStatsResponse struct {
	RouteID        string   `json:"route_id"`
	Name           string   `json:"name"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	Active         bool     `json:"active"`
	TotalTrips     int64    `json:"total_trips"`
	ActiveTrips    int64    `json:"active_trips"`
	CompletedTrips int64    `json:"completed_trips"`
	CancelledTrips int64    `json:"cancelled_trips"`
	AverageIncome  *float64 `json:"average_income,omitempty"`
	AverageRealKM  *float64 `json:"average_real_km,omitempty"`
	MarginPct      *float64 `json:"margin_percentage,omitempty"`
	ProfitPerKM    *float64 `json:"profit_per_km,omitempty"`
	IsProfitable   bool     `json:"is_profitable"`
}

// CreateRoute handles POST /v1/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.routeService.CreateRoute(c.Request.Context(), service.CreateRouteRequest{
		Name:           req.Name,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DistanceKM:     req.DistanceKM,
		EstimatedHours: req.EstimatedHours,
		SuggestedPrice: req.SuggestedPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, routeResponse(result.Route, result.Warnings))
}

// UpdateRoute handles PUT /v1/routes/:id
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.routeService.UpdateRoute(c.Request.Context(), c.Param("id"), service.UpdateRouteRequest{
		Name:           req.Name,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DistanceKM:     req.DistanceKM,
		EstimatedHours: req.EstimatedHours,
		SuggestedPrice: req.SuggestedPrice,
		Active:         req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, routeResponse(result.Route, result.Warnings))
}

// GetRoute handles GET /v1/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeService.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, routeResponse(route, nil))
}

// ListRoutes handles GET /v1/routes
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid active filter"})
			return
		}
		active = &parsed
	}

	routes, err := h.routeService.ListRoutes(c.Request.Context(), active)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RouteResponse, 0, len(routes))
	for _, route := range routes {
		response = append(response, routeResponse(route, nil))
	}

	respondJSON(c, http.StatusOK, response)
}

// DeleteRoute handles DELETE /v1/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	result, err := h.routeService.DeleteRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, result)
}

// GetStatistics handles GET /v1/routes/:id/stats
func (h *RouteHandler) GetStatistics(c *gin.Context) {
	stats, err := h.routeService.GetRouteStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, RouteStatsResponse{
		RouteID:        stats.RouteID,
		Name:           stats.Name,
		Origin:         stats.Origin,
		Destination:    stats.Destination,
		Active:         stats.Active,
		TotalTrips:     stats.TotalTrips,
		ActiveTrips:    stats.ActiveTrips,
		CompletedTrips: stats.CompletedTrips,
		CancelledTrips: stats.CancelledTrips,
		AverageIncome:  stats.AverageIncome,
		AverageRealKM:  stats.AverageRealKM,
		MarginPct:      stats.MarginPct,
		ProfitPerKM:    stats.ProfitPerKM,
		IsProfitable:   stats.IsProfitable,
	})
}

// MostProfitable handles GET /v1/routes/top
func (h *RouteHandler) MostProfitable(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	routes, err := h.routeService.MostProfitableRoutes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RouteResponse, 0, len(routes))
	for _, route := range routes {
		response = append(response, routeResponse(route, nil))
	}

	respondJSON(c, http.StatusOK, response)
}

func routeResponse(route *domain.Route, warnings []string) RouteResponse {
	return RouteResponse{
		ID:             route.ID,
		Name:           route.Name,
		Origin:         route.Origin,
		Destination:    route.Destination,
		DistanceKM:     route.DistanceKM,
		EstimatedHours: route.EstimatedHours,
		Active:         route.Active,
		SuggestedPrice: route.SuggestedPrice,
		TotalTrips:     route.Rollup.TotalTrips,
		ActiveTrips:    route.Rollup.ActiveTrips,
		CompletedTrips: route.Rollup.CompletedTrips,
		Warnings:       warnings,
	}
}
