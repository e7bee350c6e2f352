package domain

// TruckStatus represents the availability of a truck.
type TruckStatus string

const (
	TruckStatusAvailable TruckStatus = "AVAILABLE"
	TruckStatusOnTrip    TruckStatus = "ON_TRIP"
)

// Truck is the availability view of a truck. The wider inventory (documents,
// maintenance, ownership) lives outside this service; trips only need to
// resolve a truck and flip its availability.
type Truck struct {
	ID     string
	Plate  string
	Status TruckStatus
}
