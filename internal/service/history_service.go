package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geoweather/backend/internal/domain"
)

const (
	defaultHistoryHours = 24
	maxHistoryHours     = 720 // 30 days
	saveTimeout         = 5 * time.Second
)

// HistoryService records rendered flow results into the optional observation store
type HistoryService struct {
	repo   ObservationRepository
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	closed bool
	wgBg   sync.WaitGroup // tracks background saves for graceful shutdown
}

// NewHistoryService creates a history service; a nil repository disables recording
func NewHistoryService(repo ObservationRepository, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		logger: logger.With("component", "history"),
		now:    time.Now,
	}
}

// Enabled reports whether a store is configured
func (s *HistoryService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record persists the observation of a rendered flow asynchronously.
// Flows that did not reach Rendered are ignored, and so is everything after Wait.
func (s *HistoryService) Record(flow *Flow) {
	if !s.Enabled() {
		return
	}
	obs, ok := flow.Observation()
	if !ok {
		return
	}
	obs.ObservedAt = s.now().UTC()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("history closed, observation dropped", "flow_id", obs.FlowID)
		return
	}
	s.wgBg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.repo.SaveObservation(ctx, obs); err != nil {
			s.logger.Error("failed to save observation", "flow_id", obs.FlowID, "error", err)
			return
		}
		s.logger.Debug("observation saved", "flow_id", obs.FlowID, "city", obs.City)
	}()
}

// History returns observations recorded in the last hours, newest first.
// Out-of-range values fall back to 24 hours.
func (s *HistoryService) History(ctx context.Context, hours int) ([]domain.Observation, error) {
	if !s.Enabled() {
		return []domain.Observation{}, nil
	}
	if hours < 1 || hours > maxHistoryHours {
		hours = defaultHistoryHours
	}

	to := s.now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	data, err := s.repo.GetHistory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []domain.Observation{}
	}
	return data, nil
}

// Health checks the store, if any
func (s *HistoryService) Health(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.Health(ctx)
}

// Wait stops accepting new records and blocks until all background saves complete.
// Call during graceful shutdown.
func (s *HistoryService) Wait() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wgBg.Wait()
}
