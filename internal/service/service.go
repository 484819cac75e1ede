package service

import (
	"context"

	"github.com/geoweather/backend/internal/domain"
)

// ObservationRepository is re-exported from domain for convenience
type ObservationRepository = domain.ObservationRepository

// LocationFix is one delivery from a location provider
type LocationFix struct {
	Coordinate domain.Coordinate
	Err        error
}

// LocationProvider yields at most one fix per request.
// The returned channel delivers one LocationFix or is closed without a value.
type LocationProvider interface {
	// Enabled reports whether location services are switched on
	Enabled() bool
	RequestFix(ctx context.Context, req domain.FixRequest) <-chan LocationFix
}

// PermissionPrompter asks the user for the location permission
type PermissionPrompter interface {
	// ShouldShowRationale reports that the user declined earlier and must be pointed to settings
	ShouldShowRationale() bool
	RequestLocationPermission(ctx context.Context) (bool, error)
}

// NetworkChecker reports whether a usable network is active right now
type NetworkChecker interface {
	Available() bool
}

// WeatherFetcher fetches the current weather for a coordinate
type WeatherFetcher interface {
	GetCurrentWeather(ctx context.Context, coord domain.Coordinate) (*domain.WeatherResponse, error)
}

// Display is the surface a flow writes to
type Display interface {
	Render(state domain.DisplayState)
	// Notify shows a transient message
	Notify(message string)
	ShowDialog(title, message string)
}
