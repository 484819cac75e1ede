package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/pkg/utils"
)

// ZoneResolver picks the time zone timestamps are displayed in
type ZoneResolver interface {
	Zone(coord domain.Coordinate) (*time.Location, error)
}

// Presenter maps a WeatherResponse onto display labels
type Presenter struct {
	zones ZoneResolver
}

// NewPresenter creates a presenter; a nil resolver displays in the system time zone
func NewPresenter(zones ZoneResolver) *Presenter {
	return &Presenter{zones: zones}
}

// Present computes the full display state. It never returns a partial state.
func (p *Presenter) Present(w *domain.WeatherResponse) (domain.DisplayState, error) {
	condition, err := w.PrimaryCondition()
	if err != nil {
		return domain.DisplayState{}, err
	}

	loc := p.location(w.Coord)

	return domain.DisplayState{
		Country:         w.Sys.Country,
		DateTime:        FormatTimestamp(w.Dt, loc),
		Status:          condition.Description,
		Temperature:     FahrenheitToCelsius(w.Main.Temp),
		MinTemperature:  "Min Temp: " + FahrenheitToCelsius(w.Main.TempMin),
		MaxTemperature:  "Max Temp: " + FahrenheitToCelsius(w.Main.TempMax),
		Sunrise:         "Sunrise : " + FormatTimestamp(w.Sys.Sunrise, loc),
		Sunset:          "Sunset: " + FormatTimestamp(w.Sys.Sunset, loc),
		WindSpeed:       "Wind Speed: " + utils.FormatDecimal(w.Wind.Speed),
		Humidity:        "Humidity: " + strconv.Itoa(w.Main.Humidity),
		Pressure:        "Pressure: " + strconv.Itoa(w.Main.Pressure),
		MoreInfo:        MoreInfoText(w),
		MoreInfoEnabled: true,
	}, nil
}

func (p *Presenter) location(coord domain.Coordinate) *time.Location {
	if p == nil || p.zones == nil {
		return time.Local
	}
	loc, err := p.zones.Zone(coord)
	if err != nil || loc == nil {
		return time.Local
	}
	return loc
}

// MoreInfoText assembles the detail block shown in the "More Info" dialog
func MoreInfoText(w *domain.WeatherResponse) string {
	var b strings.Builder
	b.WriteString("Coordinates : " + utils.FormatDecimal(w.Coord.Latitude) + ", " + utils.FormatDecimal(w.Coord.Longitude))
	b.WriteString("\n")
	b.WriteString("Feels Like : " + FahrenheitToCelsius(w.Main.FeelsLike))
	b.WriteString("\n")
	b.WriteString("Sea Level : " + optionalInt(w.Main.SeaLevel))
	b.WriteString("\n")
	b.WriteString("Ground Level: " + optionalInt(w.Main.GrndLevel))
	b.WriteString("\n")
	b.WriteString("Visibility: " + VisibilityLabel(w.Visibility))
	return b.String()
}

func optionalInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
