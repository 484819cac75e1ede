package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or longitudes outside [-180, 180]
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrMalformedResponse marks a weather payload that decoded but cannot be rendered
var ErrMalformedResponse = errors.New("malformed weather response")

// Coordinate is a single location fix in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Validate checks the coordinate ranges. NaN is never in range.
func (c Coordinate) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// Condition is one weather-condition descriptor
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainMeasurements groups temperature, pressure and humidity readings
type MainMeasurements struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
	SeaLevel  *int    `json:"sea_level,omitempty"`
	GrndLevel *int    `json:"grnd_level,omitempty"`
}

// Wind holds speed and direction
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// Clouds holds cloud coverage in percent
type Clouds struct {
	All int `json:"all"`
}

// Sys holds the country and sun times
type Sys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// WeatherResponse is the current-weather record returned by the weather API
type WeatherResponse struct {
	Coord      Coordinate       `json:"coord"`
	Weather    []Condition      `json:"weather"`
	Base       string           `json:"base"`
	Main       MainMeasurements `json:"main"`
	Visibility int              `json:"visibility"`
	Wind       Wind             `json:"wind"`
	Clouds     *Clouds          `json:"clouds,omitempty"`
	Dt         int64            `json:"dt"`
	Sys        Sys              `json:"sys"`
	Timezone   int              `json:"timezone"`
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Cod        int              `json:"cod"`
}

// Validate reports ErrMalformedResponse when the record cannot be rendered
func (w *WeatherResponse) Validate() error {
	if w == nil {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if len(w.Weather) == 0 {
		return fmt.Errorf("%w: no weather conditions", ErrMalformedResponse)
	}
	return nil
}

// PrimaryCondition returns the first condition descriptor
func (w *WeatherResponse) PrimaryCondition() (Condition, error) {
	if err := w.Validate(); err != nil {
		return Condition{}, err
	}
	return w.Weather[0], nil
}
