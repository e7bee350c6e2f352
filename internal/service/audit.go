package service

import (
	"context"
	"log"
	"time"

	"fleet/internal/domain"
)

// AuditEvent represents the type of a recorded transition.
type AuditEvent string

const (
	AuditTripStarted      AuditEvent = "TRIP_STARTED"
	AuditTripCompleted    AuditEvent = "TRIP_COMPLETED"
	AuditTripCancelled    AuditEvent = "TRIP_CANCELLED"
	AuditIncomeCreated    AuditEvent = "INCOME_CREATED"
	AuditRouteDeactivated AuditEvent = "ROUTE_DEACTIVATED"
	AuditRouteDeleted     AuditEvent = "ROUTE_DELETED"
)

// AuditLog records lifecycle transitions for operators. Entries go to the
// process log; a real deployment would forward them to an audit sink.
type AuditLog struct{}

// NewAuditLog creates a new AuditLog.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// TripTransition records a trip state change.
func (a *AuditLog) TripTransition(ctx context.Context, event AuditEvent, trip *domain.Trip) {
	if a == nil || trip == nil {
		return
	}
	log.Printf("[audit] %s trip=%s truck=%s route=%s status=%s at=%s",
		event, trip.ID, trip.TruckID, trip.RouteID, trip.Status, time.Now().Format(time.RFC3339))
}

// IncomeCreated records an income entry linked to a trip.
func (a *AuditLog) IncomeCreated(ctx context.Context, trip *domain.Trip, income *domain.IncomeRecord) {
	if a == nil || income == nil {
		return
	}
	log.Printf("[audit] %s trip=%s income=%s amount=%.2f",
		AuditIncomeCreated, trip.ID, income.ID, trip.IncomeAmount)
}

// RouteRemoved records a route deletion or deactivation.
func (a *AuditLog) RouteRemoved(ctx context.Context, event AuditEvent, routeID string) {
	if a == nil {
		return
	}
	log.Printf("[audit] %s route=%s", event, routeID)
}
