package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/repository"
	"fleet/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrTruckNotFound),
		errors.Is(err, service.ErrRouteNotFound),
		errors.Is(err, service.ErrTripNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidOdometerReading),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrIncomeAmountRequired),
		errors.Is(err, service.ErrInvalidExpenses),
		errors.Is(err, service.ErrInvalidCancelReason),
		errors.Is(err, service.ErrInvalidRouteName),
		errors.Is(err, service.ErrInvalidEndpoints),
		errors.Is(err, service.ErrSameOriginDestination),
		errors.Is(err, service.ErrInvalidRouteDistance),
		errors.Is(err, service.ErrInvalidRouteHours),
		errors.Is(err, service.ErrInvalidSuggestedPrice):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrTruckAlreadyOnTrip),
		errors.Is(err, service.ErrTripNotActive),
		errors.Is(err, service.ErrRouteInactive),
		errors.Is(err, service.ErrRouteHasTrips):
		return http.StatusConflict

	// Upstream collaborator failure
	case errors.Is(err, service.ErrLedgerUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
