package domain

import (
	"context"
	"time"
)

// ObservationRepository defines the interface for the opt-in observation history.
// The domain defines the interface, the repository packages implement it.
type ObservationRepository interface {
	// SaveObservation persists one rendered flow result
	SaveObservation(ctx context.Context, obs Observation) error

	// GetHistory retrieves observations recorded between from and to, newest first
	GetHistory(ctx context.Context, from, to time.Time) ([]Observation, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
