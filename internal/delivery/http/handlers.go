package http

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/platform/location"
	"github.com/geoweather/backend/internal/service"
	"github.com/geoweather/backend/pkg/utils"
)

const tracerName = "github.com/geoweather/backend/http"

// Handler contains all HTTP handlers
type Handler struct {
	weather   service.WeatherFetcher
	network   service.NetworkChecker
	presenter *service.Presenter
	history   *service.HistoryService
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewHandler creates a new handler
func NewHandler(
	weather service.WeatherFetcher,
	network service.NetworkChecker,
	presenter *service.Presenter,
	history *service.HistoryService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		weather:   weather,
		network:   network,
		presenter: presenter,
		history:   history,
		logger:    logger.With("component", "http"),
		tracer:    otel.Tracer(tracerName),
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "disabled"
	if h.history.Enabled() {
		storage = "ok"
		if err := h.history.Health(c.UserContext()); err != nil {
			h.logger.Warn("storage health check failed", "error", err)
			storage = "unavailable"
		}
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "geoweather-backend",
		"version": "1.0.0",
		"storage": storage,
		"network": h.network.Available(),
	})
}

// GetWeather runs one flow for the coordinate in the query and returns the rendered labels
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	ctx, span := h.tracer.Start(c.UserContext(), "GET /api/v1/weather")
	defer span.End()

	coord, err := parseCoordinate(c)
	if err != nil {
		span.SetStatus(codes.Error, "bad coordinate")
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	// traces carry the coordinate at ~10m precision
	span.SetAttributes(
		attribute.Float64("location.latitude", utils.RoundTo(coord.Latitude, 4)),
		attribute.Float64("location.longitude", utils.RoundTo(coord.Longitude, 4)),
	)

	flow := service.NewFlow(service.FlowDeps{
		Location:   location.NewStaticProvider(coord),
		Permission: location.FixedPrompter{Granted: true},
		Network:    h.network,
		Weather:    h.weather,
		Presenter:  h.presenter,
		Display:    requestDisplay{logger: h.logger},
	}, h.logger)

	if err := flow.Run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flow failed")

		var flowErr *domain.FlowError
		if !errors.As(err, &flowErr) {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather data")
		}
		return c.Status(statusFor(flowErr.Kind)).JSON(fiber.Map{
			"error":   true,
			"success": false,
			"kind":    flowErr.Kind.String(),
			"message": flowErr.Notice,
			"flow_id": flow.ID(),
		})
	}

	h.history.Record(flow)

	state, _ := flow.Result()
	return c.JSON(domain.WeatherDisplayResponse{
		Data:    state,
		FlowID:  flow.ID(),
		Success: true,
	})
}

// GetHistory returns recorded observations within a time range
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	data, err := h.history.History(ctx, c.QueryInt("hours", 24))
	if err != nil {
		h.logger.Error("failed to fetch history", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather history")
	}

	return c.JSON(domain.HistoryResponse{
		Data:    data,
		Count:   len(data),
		Success: true,
	})
}

func parseCoordinate(c *fiber.Ctx) (domain.Coordinate, error) {
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw == "" || lonRaw == "" {
		return domain.Coordinate{}, errors.New("lat and lon query parameters are required")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return domain.Coordinate{}, errors.New("lon must be a number")
	}

	coord := domain.Coordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, err
	}
	return coord, nil
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindPermissionDenied:
		return fiber.StatusForbidden
	case domain.KindLocationServiceDisabled, domain.KindLocationUnavailable:
		return fiber.StatusUnprocessableEntity
	case domain.KindNoNetwork:
		return fiber.StatusServiceUnavailable
	case domain.KindHTTPFailure, domain.KindMalformedResponse:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// requestDisplay stands in for a screen. The rendered state is read back from the
// flow and notifications end up in the response message.
type requestDisplay struct {
	logger *slog.Logger
}

func (d requestDisplay) Render(domain.DisplayState) {}

func (d requestDisplay) Notify(message string) {
	d.logger.Debug("flow notification", "message", message)
}

func (d requestDisplay) ShowDialog(title, message string) {
	d.logger.Debug("flow dialog", "title", title, "message", message)
}
