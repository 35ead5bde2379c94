package domain

// Represents a single delivery status update accepted by the intake service.
// A Delivery is created once per request and never mutated afterwards.
// Status and Location are stored exactly as the caller sent them.
type Delivery struct {
	TrackingNumber string
	Status         string
	Location       string
}
