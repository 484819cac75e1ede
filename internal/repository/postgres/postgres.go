package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoweather/backend/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS weather_observations (
		flow_id     UUID PRIMARY KEY,
		latitude    DOUBLE PRECISION NOT NULL,
		longitude   DOUBLE PRECISION NOT NULL,
		city        TEXT NOT NULL,
		display     JSONB NOT NULL,
		dt          BIGINT NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS weather_observations_observed_at_idx
		ON weather_observations (observed_at DESC);
`

// PostgresRepository implements domain.ObservationRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Connect opens a pool, checks it and makes sure the table exists
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return pool, nil
}

// SaveObservation persists one rendered flow result
func (r *PostgresRepository) SaveObservation(ctx context.Context, obs domain.Observation) error {
	query := `
		INSERT INTO weather_observations (
			flow_id, latitude, longitude, city, display, dt, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (flow_id) DO NOTHING
	`

	id, err := uuid.Parse(obs.FlowID)
	if err != nil {
		return fmt.Errorf("postgres: invalid flow id %q: %w", obs.FlowID, err)
	}

	_, err = r.pool.Exec(ctx, query,
		id, obs.Coordinate.Latitude, obs.Coordinate.Longitude,
		obs.City, obs.Display, obs.Dt, obs.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save observation: %w", err)
	}

	return nil
}

// GetHistory retrieves observations from PostgreSQL
func (r *PostgresRepository) GetHistory(ctx context.Context, from, to time.Time) ([]domain.Observation, error) {
	query := `
		SELECT flow_id::text, latitude, longitude, city, display, dt, observed_at
		FROM weather_observations
		WHERE observed_at BETWEEN $1 AND $2
		ORDER BY observed_at DESC
		LIMIT 100
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query observations: %w", err)
	}
	defer rows.Close()

	var results []domain.Observation
	for rows.Next() {
		var o domain.Observation
		err := rows.Scan(
			&o.FlowID, &o.Coordinate.Latitude, &o.Coordinate.Longitude,
			&o.City, &o.Display, &o.Dt, &o.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan observation row: %w", err)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate observations: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
