package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/geoweather/backend/internal/domain"
)

// MockRepository implements domain.ObservationRepository in memory for demo mode.
// Nothing survives a restart.
type MockRepository struct {
	mu   sync.RWMutex
	data []domain.Observation
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveObservation keeps the observation in memory
func (r *MockRepository) SaveObservation(ctx context.Context, obs domain.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, obs)
	return nil
}

// GetHistory returns stored observations inside [from, to], newest first
func (r *MockRepository) GetHistory(ctx context.Context, from, to time.Time) ([]domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []domain.Observation{}
	for i := len(r.data) - 1; i >= 0; i-- {
		o := r.data[i]
		if o.ObservedAt.Before(from) || o.ObservedAt.After(to) {
			continue
		}
		results = append(results, o)
	}
	return results, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
