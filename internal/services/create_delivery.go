package services

import (
	"context"
	"delivery-intake-service/internal/domain"
	"delivery-intake-service/internal/ports"
	"fmt"
)

type CreateDeliveryRequest struct {
	Status   string
	Location string
}

// CreateDelivery assigns a fresh tracking number and persists the delivery.
//
// Exactly one insert is attempted; there is no retry and no collision check.
// Repository errors are returned unwrapped so callers can match
// *domain.ConnectionError and *domain.InsertError directly.
func CreateDelivery(
	ctx context.Context,
	req CreateDeliveryRequest,
	repo ports.DeliveryRepository,
	gen ports.TrackingNumberGenerator,
) (*domain.Delivery, error) {
	trackingNumber, err := gen.NewTrackingNumber()
	if err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	d := domain.Delivery{
		TrackingNumber: trackingNumber,
		Status:         req.Status,
		Location:       req.Location,
	}

	if err := repo.CreateDelivery(ctx, d); err != nil {
		return nil, err
	}

	return &d, nil
}

// GetDelivery looks up a delivery by tracking number.
func GetDelivery(ctx context.Context, trackingNumber string, repo ports.DeliveryRepository) (*domain.Delivery, error) {
	d, err := repo.GetDelivery(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	return d, nil
}
