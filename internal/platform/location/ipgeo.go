package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/service"
)

// DefaultIPLookupURL returns the caller's approximate position as JSON
const DefaultIPLookupURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPProvider resolves the host's approximate position from its public IP
type IPProvider struct {
	lookupURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

type ipLookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// NewIPProvider creates an IP geolocation provider; an empty URL uses DefaultIPLookupURL
func NewIPProvider(lookupURL string, timeout time.Duration, logger *slog.Logger) *IPProvider {
	if lookupURL == "" {
		lookupURL = DefaultIPLookupURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPProvider{
		lookupURL: lookupURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With("component", "ip-location"),
	}
}

func (p *IPProvider) Enabled() bool {
	return true
}

// RequestFix performs one lookup in the background and delivers its result.
// The priority hint is ignored: IP lookups have a single accuracy.
func (p *IPProvider) RequestFix(ctx context.Context, req domain.FixRequest) <-chan service.LocationFix {
	ch := make(chan service.LocationFix, 1)
	go func() {
		defer close(ch)
		coord, err := p.lookup(ctx)
		if err != nil {
			p.logger.Warn("ip lookup failed", "error", err)
		}
		ch <- service.LocationFix{Coordinate: coord, Err: err}
	}()
	return ch
}

func (p *IPProvider) lookup(ctx context.Context) (domain.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.lookupURL, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("location: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("location: lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("location: lookup returned status %d", resp.StatusCode)
	}

	var body ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinate{}, fmt.Errorf("location: failed to decode response: %w", err)
	}
	if body.Status != "success" {
		return domain.Coordinate{}, fmt.Errorf("location: lookup status %q: %s", body.Status, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return domain.Coordinate{}, errors.New("location: response carries no coordinate")
	}

	coord := domain.Coordinate{Latitude: *body.Lat, Longitude: *body.Lon}
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return coord, nil
}
