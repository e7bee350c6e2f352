package repository

import "context"

// Repos bundles the transaction-scoped repositories handed to an atomic unit.
type Repos struct {
	Trips  TripRepository
	Routes RouteRepository
	Trucks TruckRepository
}

// Atomic runs a function against transaction-scoped repositories. The
// function's writes either all commit or all roll back; returning an error
// rolls back.
type Atomic interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}
