package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/repository/postgres"
	"github.com/geoweather/backend/internal/service"
)

type stubWeather struct {
	resp *domain.WeatherResponse
	err  error
}

func (s stubWeather) GetCurrentWeather(context.Context, domain.Coordinate) (*domain.WeatherResponse, error) {
	return s.resp, s.err
}

type stubNetwork bool

func (n stubNetwork) Available() bool { return bool(n) }

func sampleWeather() *domain.WeatherResponse {
	return &domain.WeatherResponse{
		Coord:      domain.Coordinate{Latitude: 43.25, Longitude: 76.95},
		Weather:    []domain.Condition{{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}},
		Main:       domain.MainMeasurements{Temp: 300, FeelsLike: 300, TempMin: 298, TempMax: 302, Pressure: 1015, Humidity: 40},
		Visibility: 12000,
		Wind:       domain.Wind{Speed: 3.5},
		Dt:         1700000000,
		Sys:        domain.Sys{Country: "KZ", Sunrise: 1699990000, Sunset: 1700025000},
		Name:       "Almaty",
		Cod:        200,
	}
}

type testServer struct {
	app     *fiber.App
	history *service.HistoryService
}

func newTestServer(weather service.WeatherFetcher, network bool) testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	history := service.NewHistoryService(postgres.NewMockRepository(), logger)
	handler := NewHandler(weather, stubNetwork(network), service.NewPresenter(nil), history, logger)
	return testServer{app: NewApp(handler), history: history}
}

func doGet(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	if err != nil {
		t.Fatalf("request %s failed: %v", target, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body of %s: %v", target, err)
	}
	return resp.StatusCode, body
}

func TestGetWeather_Success(t *testing.T) {
	srv := newTestServer(stubWeather{resp: sampleWeather()}, true)

	status, body := doGet(t, srv.app, "/api/v1/weather?lat=43.25&lon=76.95")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data = %T", body["data"])
	}
	if data["temperature"] != "148.89" {
		t.Errorf("temperature = %v, want 148.89", data["temperature"])
	}
	if data["country"] != "KZ" || data["status"] != "clear sky" {
		t.Errorf("unexpected data %v", data)
	}
	if id, _ := body["flow_id"].(string); id == "" {
		t.Error("missing flow_id")
	}

	srv.history.Wait()
	status, body = doGet(t, srv.app, "/api/v1/history?hours=1")
	if status != fiber.StatusOK {
		t.Fatalf("history status = %d", status)
	}
	if body["count"] != float64(1) {
		t.Errorf("history count = %v, want 1", body["count"])
	}
}

func TestGetWeather_Errors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		weather     stubWeather
		network     bool
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "missing coordinates",
			target:     "/api/v1/weather?lat=43.25",
			weather:    stubWeather{resp: sampleWeather()},
			network:    true,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "not a number",
			target:     "/api/v1/weather?lat=abc&lon=1",
			weather:    stubWeather{resp: sampleWeather()},
			network:    true,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "out of range",
			target:     "/api/v1/weather?lat=91&lon=0",
			weather:    stubWeather{resp: sampleWeather()},
			network:    true,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "NaN coordinate",
			target:     "/api/v1/weather?lat=NaN&lon=NaN",
			weather:    stubWeather{resp: sampleWeather()},
			network:    true,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:        "no network",
			target:      "/api/v1/weather?lat=43.25&lon=76.95",
			weather:     stubWeather{resp: sampleWeather()},
			network:     false,
			wantStatus:  fiber.StatusServiceUnavailable,
			wantMessage: service.NoticeNoNetwork,
		},
		{
			name:        "unsuccessful upstream",
			target:      "/api/v1/weather?lat=43.25&lon=76.95",
			weather:     stubWeather{err: fmt.Errorf("%w: status 401", service.ErrUnsuccessfulResponse)},
			network:     true,
			wantStatus:  fiber.StatusBadGateway,
			wantMessage: service.NoticeUnsuccessful,
		},
		{
			name:        "malformed upstream",
			target:      "/api/v1/weather?lat=43.25&lon=76.95",
			weather:     stubWeather{err: domain.ErrMalformedResponse},
			network:     true,
			wantStatus:  fiber.StatusBadGateway,
			wantMessage: service.NoticeMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.weather, tt.network)

			status, body := doGet(t, srv.app, tt.target)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d: %v", status, tt.wantStatus, body)
			}
			if body["error"] != true {
				t.Errorf("error flag = %v", body["error"])
			}
			if tt.wantMessage != "" && body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(stubWeather{}, true)

	status, body := doGet(t, srv.app, "/health")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" || body["storage"] != "ok" || body["network"] != true {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestGetHistory_Empty(t *testing.T) {
	srv := newTestServer(stubWeather{}, true)

	status, body := doGet(t, srv.app, "/api/v1/history")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["count"] != float64(0) {
		t.Errorf("count = %v, want 0", body["count"])
	}
	if data, ok := body["data"].([]any); !ok || len(data) != 0 {
		t.Errorf("data = %#v, want empty array", body["data"])
	}
}
