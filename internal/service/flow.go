package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/pkg/utils"
)

const tracerName = "github.com/geoweather/backend/flow"

// Notification texts shown to the user
const (
	NoticeLocationDisabled    = "Location services are not enabled"
	NoticePermissionGranted   = "Permission Granted"
	NoticePermissionDenied    = "Permission Denied"
	NoticeLocationUnavailable = "Location unavailable"
	NoticeNoNetwork           = "No Internet Connection"
	NoticeUnsuccessful        = "Response not successful"
	NoticeError               = "Error"
	NoticeMalformed           = "Malformed weather response"

	RationaleTitle   = "Location Permission Needed"
	RationaleMessage = "This app needs the Location permission, please accept to use location functionality"
)

var (
	// ErrFlowStarted is returned when Run is called a second time
	ErrFlowStarted = errors.New("flow: already started")

	// ErrMoreInfoUnavailable is returned by ShowMoreInfo before the flow has rendered
	ErrMoreInfoUnavailable = errors.New("flow: more info is not available until weather is rendered")
)

// FlowDeps wires the collaborators of a flow
type FlowDeps struct {
	Location   LocationProvider
	Permission PermissionPrompter
	Network    NetworkChecker
	Weather    WeatherFetcher
	Presenter  *Presenter
	Display    Display
	FixRequest domain.FixRequest
}

// Flow runs permission -> location fix -> weather request -> render exactly once.
// Any failure moves it to the Failed state; there is no retry.
type Flow struct {
	id     string
	deps   FlowDeps
	logger *slog.Logger
	tracer trace.Tracer

	mu       sync.Mutex
	started  bool
	state    domain.FlowState
	coord    domain.Coordinate
	rendered domain.DisplayState
	weather  *domain.WeatherResponse
	failure  *domain.FlowError
}

// NewFlow creates a flow in the AwaitingPermission state
func NewFlow(deps FlowDeps, logger *slog.Logger) *Flow {
	if deps.Presenter == nil {
		deps.Presenter = NewPresenter(nil)
	}
	if deps.FixRequest == (domain.FixRequest{}) {
		deps.FixRequest = domain.DefaultFixRequest()
	}
	id := uuid.NewString()
	return &Flow{
		id:     id,
		deps:   deps,
		logger: logger.With("component", "weather-flow", "flow_id", id),
		tracer: otel.Tracer(tracerName),
		state:  domain.StateAwaitingPermission,
	}
}

// ID returns the flow identifier
func (f *Flow) ID() string {
	return f.id
}

// State returns the current state
func (f *Flow) State() domain.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the terminal failure, or nil
func (f *Flow) Err() *domain.FlowError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

// Result returns the rendered display state once the flow reached Rendered
func (f *Flow) Result() (domain.DisplayState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rendered, f.state == domain.StateRendered
}

// Observation returns the rendered result as a history record
func (f *Flow) Observation() (domain.Observation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != domain.StateRendered || f.weather == nil {
		return domain.Observation{}, false
	}
	return domain.Observation{
		FlowID:     f.id,
		Coordinate: f.coord,
		City:       f.weather.Name,
		Display:    f.rendered,
		Dt:         f.weather.Dt,
	}, true
}

// Run drives the flow to a terminal state. It returns a *domain.FlowError on failure.
func (f *Flow) Run(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrFlowStarted
	}
	f.started = true
	f.mu.Unlock()

	ctx, span := f.tracer.Start(ctx, "weather-flow: run")
	defer span.End()
	span.SetAttributes(attribute.String("flow.id", f.id))

	err := f.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flow failed")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (f *Flow) run(ctx context.Context) error {
	f.logger.Debug("flow started", "state", f.State())

	if !f.deps.Location.Enabled() {
		return f.fail(domain.KindLocationServiceDisabled, NoticeLocationDisabled, nil)
	}

	if f.deps.Permission.ShouldShowRationale() {
		f.deps.Display.ShowDialog(RationaleTitle, RationaleMessage)
		return f.fail(domain.KindPermissionDenied, NoticePermissionDenied, errors.New("permission previously declined"))
	}

	granted, err := f.deps.Permission.RequestLocationPermission(ctx)
	if err != nil {
		return f.fail(domain.KindPermissionDenied, NoticePermissionDenied, err)
	}
	if !granted {
		return f.fail(domain.KindPermissionDenied, NoticePermissionDenied, nil)
	}
	f.deps.Display.Notify(NoticePermissionGranted)

	f.transition(domain.StateAwaitingLocationFix)
	coord, err := f.awaitFix(ctx)
	if err != nil {
		return f.fail(domain.KindLocationUnavailable, NoticeLocationUnavailable, err)
	}
	f.logger.Debug("location fix received", "latitude", coord.Latitude, "longitude", coord.Longitude)

	if !f.deps.Network.Available() {
		return f.fail(domain.KindNoNetwork, NoticeNoNetwork, nil)
	}

	f.transition(domain.StateAwaitingWeatherResponse)
	weather, err := f.awaitWeather(ctx, coord)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedResponse):
			return f.fail(domain.KindMalformedResponse, NoticeMalformed, err)
		case errors.Is(err, ErrUnsuccessfulResponse):
			return f.fail(domain.KindHTTPFailure, NoticeUnsuccessful, err)
		default:
			return f.fail(domain.KindHTTPFailure, NoticeError, err)
		}
	}

	state, err := f.deps.Presenter.Present(weather)
	if err != nil {
		return f.fail(domain.KindMalformedResponse, NoticeMalformed, err)
	}

	f.mu.Lock()
	f.coord = coord
	f.weather = weather
	f.rendered = state
	f.state = domain.StateRendered
	f.mu.Unlock()

	f.deps.Display.Render(state)
	f.logger.Info("weather rendered",
		"city", weather.Name,
		"country", weather.Sys.Country,
		"status", state.Status,
	)
	return nil
}

// awaitFix requests one fix and waits for its delivery
func (f *Flow) awaitFix(ctx context.Context) (domain.Coordinate, error) {
	_, span := f.tracer.Start(ctx, "weather-flow: await-location-fix")
	defer span.End()

	fixes := f.deps.Location.RequestFix(ctx, f.deps.FixRequest)
	select {
	case fix, ok := <-fixes:
		if !ok {
			return domain.Coordinate{}, errors.New("location provider delivered no fix")
		}
		if fix.Err != nil {
			return domain.Coordinate{}, fmt.Errorf("location provider failed: %w", fix.Err)
		}
		if err := fix.Coordinate.Validate(); err != nil {
			return domain.Coordinate{}, err
		}
		span.SetAttributes(
			attribute.Float64("location.latitude", utils.RoundTo(fix.Coordinate.Latitude, 4)),
			attribute.Float64("location.longitude", utils.RoundTo(fix.Coordinate.Longitude, 4)),
		)
		return fix.Coordinate, nil
	case <-ctx.Done():
		return domain.Coordinate{}, ctx.Err()
	}
}

type weatherResult struct {
	weather *domain.WeatherResponse
	err     error
}

// awaitWeather dispatches the single weather request and waits for its callback
func (f *Flow) awaitWeather(ctx context.Context, coord domain.Coordinate) (*domain.WeatherResponse, error) {
	ctx, span := f.tracer.Start(ctx, "weather-flow: await-weather-response")
	defer span.End()

	results := make(chan weatherResult, 1)
	go func() {
		w, err := f.deps.Weather.GetCurrentWeather(ctx, coord)
		results <- weatherResult{weather: w, err: err}
	}()

	select {
	case r := <-results:
		if r.err != nil {
			span.RecordError(r.err)
			span.SetStatus(codes.Error, "weather request failed")
		}
		return r.weather, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Flow) transition(to domain.FlowState) {
	f.mu.Lock()
	from := f.state
	f.state = to
	f.mu.Unlock()
	f.logger.Debug("flow transition", "from", from.String(), "to", to.String())
}

func (f *Flow) fail(kind domain.ErrorKind, notice string, cause error) error {
	flowErr := &domain.FlowError{Kind: kind, Notice: notice, Err: cause}

	f.mu.Lock()
	from := f.state
	f.state = domain.StateFailed
	f.failure = flowErr
	f.mu.Unlock()

	f.deps.Display.Notify(notice)
	f.logger.Warn("flow failed", "from", from.String(), "kind", kind.String(), "error", cause)
	return flowErr
}

// ShowMoreInfo opens the detail dialog. It is only available once the flow has rendered.
func (f *Flow) ShowMoreInfo() error {
	f.mu.Lock()
	state, rendered := f.state, f.rendered
	f.mu.Unlock()

	if state != domain.StateRendered || !rendered.MoreInfoEnabled {
		return ErrMoreInfoUnavailable
	}

	f.logger.Info("more info", "text", rendered.MoreInfo)
	f.deps.Display.ShowDialog(domain.MoreInfoTitle, rendered.MoreInfo)
	return nil
}
