package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/geoweather/backend/internal/domain"
)

// DefaultBaseURL is the OpenWeatherMap data root; the current-weather path resolves beneath it
const DefaultBaseURL = "https://api.openweathermap.org/data/"

const currentWeatherPath = "2.5/weather"

// ErrUnsuccessfulResponse is returned when the API answers with a non-2xx status
var ErrUnsuccessfulResponse = errors.New("weather: response not successful")

// WeatherClientOptions configures a WeatherClient
type WeatherClientOptions struct {
	BaseURL string
	APIKey  string
	// Units is forwarded as the "units" query parameter when non-empty
	Units     string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// WeatherClient fetches current weather for a coordinate.
// Each call issues exactly one request with no retries.
type WeatherClient struct {
	baseURL    *url.URL
	apiKey     string
	units      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWeatherClient creates a new weather client
func NewWeatherClient(opts WeatherClientOptions, logger *slog.Logger) (*WeatherClient, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("weather: base URL %q must be absolute", opts.BaseURL)
	}
	if opts.APIKey == "" {
		return nil, errors.New("weather: API key is required")
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &WeatherClient{
		baseURL: u,
		apiKey:  opts.APIKey,
		units:   opts.Units,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger: logger.With("component", "weather-client"),
	}, nil
}

// owmPayload mirrors the wire format. Required numeric fields are pointers so
// that an absent field can be told apart from a zero reading.
type owmPayload struct {
	Coord   *domain.Coordinate `json:"coord"`
	Weather []domain.Condition `json:"weather"`
	Base    string             `json:"base"`
	Main    *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *int     `json:"pressure"`
		Humidity  *int     `json:"humidity"`
		SeaLevel  *int     `json:"sea_level"`
		GrndLevel *int     `json:"grnd_level"`
	} `json:"main"`
	Visibility *int `json:"visibility"`
	Wind       *struct {
		Speed *float64 `json:"speed"`
		Deg   int      `json:"deg"`
	} `json:"wind"`
	Clouds *domain.Clouds `json:"clouds"`
	Dt     *int64         `json:"dt"`
	Sys    *struct {
		Country string `json:"country"`
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int       `json:"timezone"`
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Cod      codeValue `json:"cod"`
}

// codeValue accepts "cod" as either a number or a numeric string
type codeValue int

func (c *codeValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid cod %s: %w", string(b), err)
	}
	*c = codeValue(n)
	return nil
}

// GetCurrentWeather fetches the current weather at coord
func (c *WeatherClient) GetCurrentWeather(ctx context.Context, coord domain.Coordinate) (*domain.WeatherResponse, error) {
	reqURL := c.requestURL(coord)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to create request: %w", err)
	}

	c.logger.Debug("fetching current weather",
		"latitude", coord.Latitude,
		"longitude", coord.Longitude,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch current weather", "error", err)
		return nil, fmt.Errorf("weather: failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("weather API returned error",
			"status_code", resp.StatusCode,
			"response_body", string(body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUnsuccessfulResponse, resp.StatusCode)
	}

	var payload owmPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMalformedResponse, err)
	}

	weather, err := payload.toDomain()
	if err != nil {
		c.logger.Error("weather API returned an unusable body", "error", err)
		return nil, err
	}

	c.logger.Debug("fetched current weather",
		"city", weather.Name,
		"country", weather.Sys.Country,
		"dt", weather.Dt,
	)

	return weather, nil
}

// requestURL builds {base}/2.5/weather?lat=..&lon=..&appid=..
func (c *WeatherClient) requestURL(coord domain.Coordinate) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: currentWeatherPath})

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	if c.units != "" {
		q.Set("units", c.units)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// toDomain translates the wire payload, reporting missing required fields as malformed
func (p *owmPayload) toDomain() (*domain.WeatherResponse, error) {
	var missing []string
	if p.Main == nil {
		missing = append(missing, "main")
	} else {
		if p.Main.Temp == nil {
			missing = append(missing, "main.temp")
		}
		if p.Main.FeelsLike == nil {
			missing = append(missing, "main.feels_like")
		}
		if p.Main.TempMin == nil {
			missing = append(missing, "main.temp_min")
		}
		if p.Main.TempMax == nil {
			missing = append(missing, "main.temp_max")
		}
		if p.Main.Pressure == nil {
			missing = append(missing, "main.pressure")
		}
		if p.Main.Humidity == nil {
			missing = append(missing, "main.humidity")
		}
	}
	if p.Wind == nil || p.Wind.Speed == nil {
		missing = append(missing, "wind.speed")
	}
	if p.Visibility == nil {
		missing = append(missing, "visibility")
	}
	if p.Dt == nil {
		missing = append(missing, "dt")
	}
	if p.Sys == nil || p.Sys.Sunrise == nil || p.Sys.Sunset == nil {
		missing = append(missing, "sys.sunrise/sys.sunset")
	}
	if p.Coord == nil {
		missing = append(missing, "coord")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrMalformedResponse, strings.Join(missing, ", "))
	}

	w := &domain.WeatherResponse{
		Coord:   *p.Coord,
		Weather: p.Weather,
		Base:    p.Base,
		Main: domain.MainMeasurements{
			Temp:      *p.Main.Temp,
			FeelsLike: *p.Main.FeelsLike,
			TempMin:   *p.Main.TempMin,
			TempMax:   *p.Main.TempMax,
			Pressure:  *p.Main.Pressure,
			Humidity:  *p.Main.Humidity,
			SeaLevel:  p.Main.SeaLevel,
			GrndLevel: p.Main.GrndLevel,
		},
		Visibility: *p.Visibility,
		Wind: domain.Wind{
			Speed: *p.Wind.Speed,
			Deg:   p.Wind.Deg,
		},
		Clouds: p.Clouds,
		Dt:     *p.Dt,
		Sys: domain.Sys{
			Country: p.Sys.Country,
			Sunrise: *p.Sys.Sunrise,
			Sunset:  *p.Sys.Sunset,
		},
		Timezone: p.Timezone,
		ID:       p.ID,
		Name:     p.Name,
		Cod:      int(p.Cod),
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}
