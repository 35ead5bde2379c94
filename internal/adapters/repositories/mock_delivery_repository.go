package repositories

import (
	"context"
	"delivery-intake-service/internal/domain"
	"sync"
)

// MockDeliveryRepository keeps deliveries in memory. CreateErr and GetErr,
// when set, are returned instead of touching the map.
type MockDeliveryRepository struct {
	mu        sync.Mutex
	m         map[string]domain.Delivery
	CreateErr error
	GetErr    error
}

func NewMockDeliveryRepository() *MockDeliveryRepository {
	return &MockDeliveryRepository{m: make(map[string]domain.Delivery)}
}

func (r *MockDeliveryRepository) CreateDelivery(ctx context.Context, d domain.Delivery) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[d.TrackingNumber] = d
	return nil
}

func (r *MockDeliveryRepository) GetDelivery(ctx context.Context, trackingNumber string) (*domain.Delivery, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.m[trackingNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

// Len reports how many deliveries were stored.
func (r *MockDeliveryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

// MockTrackingNumbers hands out the given tracking numbers in order and then
// repeats the last one.
type MockTrackingNumbers struct {
	mu      sync.Mutex
	numbers []string
	Err     error
}

func NewMockTrackingNumbers(numbers ...string) *MockTrackingNumbers {
	return &MockTrackingNumbers{numbers: numbers}
}

func (g *MockTrackingNumbers) NewTrackingNumber() (string, error) {
	if g.Err != nil {
		return "", g.Err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.numbers[0]
	if len(g.numbers) > 1 {
		g.numbers = g.numbers[1:]
	}
	return n, nil
}
