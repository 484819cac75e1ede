// Package timezone picks the zone timestamps are displayed in.
package timezone

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"

	"github.com/geoweather/backend/internal/domain"
)

const (
	// ModeLocal displays in the system time zone
	ModeLocal = "local"
	// ModeCoordinate displays in the zone of the weather location
	ModeCoordinate = "coordinate"
)

// Local resolves every coordinate to the system time zone
type Local struct{}

func (Local) Zone(domain.Coordinate) (*time.Location, error) {
	return time.Local, nil
}

// Fixed resolves every coordinate to one IANA zone
type Fixed struct {
	loc *time.Location
}

// NewFixed loads the named zone
func NewFixed(name string) (*Fixed, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone: unknown zone %q: %w", name, err)
	}
	return &Fixed{loc: loc}, nil
}

func (f *Fixed) Zone(domain.Coordinate) (*time.Location, error) {
	return f.loc, nil
}

// CoordinateResolver looks up the zone containing a coordinate
type CoordinateResolver struct {
	finder tzf.F

	mu    sync.RWMutex
	cache map[string]*time.Location
}

var (
	finderOnce sync.Once
	finder     tzf.F
	finderErr  error
)

// NewCoordinateResolver creates a resolver backed by the shared tzf finder.
// The finder holds its polygon data in memory, so it is built once per process.
func NewCoordinateResolver() (*CoordinateResolver, error) {
	finderOnce.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			finderErr = fmt.Errorf("timezone: failed to initialize finder: %w", err)
			return
		}
		finder = f
	})
	if finderErr != nil {
		return nil, finderErr
	}
	return &CoordinateResolver{finder: finder, cache: make(map[string]*time.Location)}, nil
}

func (r *CoordinateResolver) Zone(coord domain.Coordinate) (*time.Location, error) {
	name := r.finder.GetTimezoneName(coord.Longitude, coord.Latitude)
	if name == "" {
		return nil, fmt.Errorf("timezone: no zone for lat=%f, lon=%f", coord.Latitude, coord.Longitude)
	}

	r.mu.RLock()
	loc, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone: failed to load %q: %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = loc
	r.mu.Unlock()
	return loc, nil
}

// Resolver is the common shape of the resolvers in this package
type Resolver interface {
	Zone(coord domain.Coordinate) (*time.Location, error)
}

// New builds a resolver from a mode: "local", "coordinate" or an IANA zone name
func New(mode string) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeLocal:
		return Local{}, nil
	case ModeCoordinate:
		r, err := NewCoordinateResolver()
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		f, err := NewFixed(strings.TrimSpace(mode))
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}
