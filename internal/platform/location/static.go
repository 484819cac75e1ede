// Package location provides location fixes and the permission prompt in front of them.
package location

import (
	"context"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/service"
)

// StaticProvider always reports the same coordinate
type StaticProvider struct {
	coord    domain.Coordinate
	disabled bool
}

// NewStaticProvider creates a provider for a fixed coordinate
func NewStaticProvider(coord domain.Coordinate) *StaticProvider {
	return &StaticProvider{coord: coord}
}

// NewDisabledProvider creates a provider whose location services are off
func NewDisabledProvider() *StaticProvider {
	return &StaticProvider{disabled: true}
}

func (p *StaticProvider) Enabled() bool {
	return !p.disabled
}

// RequestFix delivers the configured coordinate once
func (p *StaticProvider) RequestFix(_ context.Context, _ domain.FixRequest) <-chan service.LocationFix {
	ch := make(chan service.LocationFix, 1)
	if !p.disabled {
		ch <- service.LocationFix{Coordinate: p.coord}
	}
	close(ch)
	return ch
}
