package ports

import (
	"context"
	"delivery-intake-service/internal/domain"
)

// Port: a boundary for persisting and reading Delivery records.
type DeliveryRepository interface {
	// Persist a single delivery. Failures to reach the database are reported as
	// *domain.ConnectionError, failures of the statement itself as *domain.InsertError.
	CreateDelivery(ctx context.Context, d domain.Delivery) error
	// Look up one delivery by tracking number. Returns domain.ErrNotFound when absent.
	GetDelivery(ctx context.Context, trackingNumber string) (*domain.Delivery, error)
}
