package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// StartTripRequest is the HTTP request body for starting a trip.
type StartTripRequest struct {
	TruckID       string `json:"truck_id"`
	RouteID       string `json:"route_id,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	OdometerStart int64  `json:"odometer_start"`
	Observations  string `json:"observations,omitempty"`
}

// FinalizeTripRequest is the HTTP request body for finalizing a trip.
type FinalizeTripRequest struct {
	EndDate           string   `json:"end_date,omitempty"`
	KMTraveled        int64    `json:"km_traveled"`
	ObservationsFinal string   `json:"observations_final,omitempty"`
	Expenses          *float64 `json:"expenses,omitempty"`

	CreateAutoIncome  bool    `json:"create_auto_income,omitempty"`
	AmountCharged     float64 `json:"amount_charged,omitempty"`
	IncomeDescription string  `json:"income_description,omitempty"`
}

// CancelTripRequest is the HTTP request body for cancelling a trip.
type CancelTripRequest struct {
	Reason string `json:"reason"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID            string      `json:"trip_id"`
	TruckID           string      `json:"truck_id"`
	RouteID           string      `json:"route_id,omitempty"`
	Status            string      `json:"status"`
	StartDate         string      `json:"start_date"`
	EndDate           string      `json:"end_date,omitempty"`
	OdometerStart     int64       `json:"odometer_start"`
	OdometerEnd       *int64      `json:"odometer_end,omitempty"`
	KMTraveled        int64       `json:"km_traveled,omitempty"`
	ObservationsStart string      `json:"observations_start,omitempty"`
	ObservationsFinal string      `json:"observations_final,omitempty"`
	Expenses          *float64    `json:"expenses,omitempty"`
	CancelReason      string      `json:"cancel_reason,omitempty"`
	Income            *IncomeInfo `json:"income,omitempty"`
}

// IncomeInfo contains the linked income details in the response.
type IncomeInfo struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Total  float64 `json:"total,omitempty"`
}

// StartTrip handles POST /v1/trips
func (h *TripHandler) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	startDate, ok := parseDate(c, req.StartDate)
	if !ok {
		return
	}

	trip, err := h.tripService.StartTrip(c.Request.Context(), service.StartTripRequest{
		TruckID:       req.TruckID,
		RouteID:       req.RouteID,
		StartDate:     startDate,
		OdometerStart: req.OdometerStart,
		Observations:  req.Observations,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip, nil))
}

// FinalizeTrip handles POST /v1/trips/:id/finalize
func (h *TripHandler) FinalizeTrip(c *gin.Context) {
	var req FinalizeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	endDate, ok := parseDate(c, req.EndDate)
	if !ok {
		return
	}

	var income *service.IncomeParams
	if req.CreateAutoIncome {
		income = &service.IncomeParams{
			CreateAutoIncome: true,
			AmountCharged:    req.AmountCharged,
			Description:      req.IncomeDescription,
		}
	}

	result, err := h.tripService.FinalizeTrip(c.Request.Context(), c.Param("id"), service.FinalizeTripRequest{
		EndDate:           endDate,
		KMTraveled:        req.KMTraveled,
		ObservationsFinal: req.ObservationsFinal,
		Expenses:          req.Expenses,
		Income:            income,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(result.Trip, result.Income))
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	var req CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.CancelTrip(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip, nil))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip, nil))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip, nil))
	}

	respondJSON(c, http.StatusOK, response)
}

// ListByRoute handles GET /v1/routes/:id/trips
func (h *TripHandler) ListByRoute(c *gin.Context) {
	trips, err := h.tripService.ListTripsByRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip, nil))
	}

	respondJSON(c, http.StatusOK, response)
}

func tripResponse(trip *domain.Trip, income *domain.IncomeRecord) TripResponse {
	response := TripResponse{
		TripID:            trip.ID,
		TruckID:           trip.TruckID,
		RouteID:           trip.RouteID,
		Status:            string(trip.Status),
		StartDate:         trip.StartDate.Format(time.RFC3339),
		OdometerStart:     trip.OdometerStart,
		KMTraveled:        trip.KMTraveled,
		ObservationsStart: trip.ObservationsStart,
		ObservationsFinal: trip.ObservationsFinal,
		Expenses:          trip.Expenses,
		CancelReason:      trip.CancelReason,
	}

	if !trip.EndDate.IsZero() {
		response.EndDate = trip.EndDate.Format(time.RFC3339)
	}

	if trip.Status == domain.TripStatusCompleted {
		end := trip.OdometerEnd
		response.OdometerEnd = &end
	}

	if trip.HasIncome() {
		response.Income = &IncomeInfo{
			ID:     trip.IncomeID,
			Amount: trip.IncomeAmount,
		}
		if income != nil {
			response.Income.Total = income.Total
		}
	}

	return response
}

// parseDate accepts RFC 3339 timestamps and bare dates. Empty input is
// valid; the service substitutes the current time.
func parseDate(c *gin.Context, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date: " + value})
		return time.Time{}, false
	}

	return t, true
}
