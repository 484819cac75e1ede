package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geoweather/backend/internal/config"
	"github.com/geoweather/backend/internal/delivery/terminal"
	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/platform/location"
	"github.com/geoweather/backend/internal/platform/network"
	"github.com/geoweather/backend/internal/platform/timezone"
	"github.com/geoweather/backend/internal/repository/postgres"
	"github.com/geoweather/backend/internal/scheduler"
	"github.com/geoweather/backend/internal/service"
	"github.com/geoweather/backend/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		lat   = flag.Float64("lat", 0, "latitude of a fixed location (overrides LOCATION_LATITUDE)")
		lon   = flag.Float64("lon", 0, "longitude of a fixed location (overrides LOCATION_LONGITUDE)")
		watch = flag.Bool("watch", false, "keep running and refresh on WEATHER_SCHEDULE")
		more  = flag.Bool("more", false, "show the More Info dialog after rendering")
	)
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(func(c *config.Config) {
		if set["lat"] || set["lon"] {
			c.Location.Provider = config.ProviderStatic
		}
		if set["lat"] {
			c.Location.Latitude = lat
		}
		if set["lon"] {
			c.Location.Longitude = lon
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "weather: %v\n", err)
		return 2
	}

	logger := cfg.NewLoggerTo(os.Stderr)
	if cfg.UnitsMismatch() {
		logger.Warn("temperatures are always converted from Fahrenheit; set OPENWEATHER_UNITS=imperial for correct values",
			"units", cfg.OpenWeather.Units)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	a, cleanup, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}
	defer cleanup()
	a.showMore = *more

	if *watch {
		s := scheduler.New(cfg.Schedule, scheduler.JobFunc{JobName: "weather-flow", Fn: a.runFlow}, logger)
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler failed", "error", err)
			return 1
		}
		return 0
	}

	if err := a.runFlow(ctx); err != nil {
		return 1
	}
	return 0
}

// app holds the long-lived collaborators; every run builds a fresh flow from them
type app struct {
	location   service.LocationProvider
	permission service.PermissionPrompter
	network    service.NetworkChecker
	weather    service.WeatherFetcher
	presenter  *service.Presenter
	display    *terminal.Display
	history    *service.HistoryService
	logger     *slog.Logger
	out        io.Writer
	showMore   bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, func(), error) {
	cleanup := func() {}

	weatherClient, err := service.NewWeatherClient(service.WeatherClientOptions{
		BaseURL: cfg.OpenWeather.BaseURL,
		APIKey:  cfg.OpenWeather.APIKey,
		Units:   cfg.OpenWeather.Units,
		Timeout: cfg.OpenWeather.Timeout,
	}, logger)
	if err != nil {
		return nil, cleanup, err
	}

	zones, err := timezone.New(cfg.Display.Timezone)
	if err != nil {
		return nil, cleanup, err
	}

	var provider service.LocationProvider
	switch cfg.Location.Provider {
	case config.ProviderIP:
		provider = location.NewIPProvider(cfg.Location.LookupURL, cfg.OpenWeather.Timeout, logger)
	case config.ProviderDisabled:
		provider = location.NewDisabledProvider()
	default:
		provider = location.NewStaticProvider(cfg.Coordinate())
	}

	stdin := bufio.NewReader(os.Stdin)
	var (
		permission service.PermissionPrompter
		dismiss    io.Reader
	)
	switch cfg.Location.Permission {
	case config.PermissionGranted:
		permission = location.FixedPrompter{Granted: true}
	case config.PermissionDenied:
		permission = location.FixedPrompter{Granted: false}
	default:
		permission = location.NewTerminalPrompter(stdin, os.Stdout)
	}
	if interactive() {
		dismiss = stdin
	}

	var repo domain.ObservationRepository
	if cfg.Database.URL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := postgres.Connect(dbCtx, cfg.Database.URL)
		cancel()
		if err != nil {
			logger.Warn("could not connect to database, history disabled", "error", err)
		} else {
			repo = postgres.NewPostgresRepository(pool)
			cleanup = pool.Close
		}
	}
	history := service.NewHistoryService(repo, logger)
	closePool := cleanup
	cleanup = func() {
		history.Wait()
		closePool()
	}

	return &app{
		location:   provider,
		permission: permission,
		network:    network.NewChecker(logger),
		weather:    weatherClient,
		presenter:  service.NewPresenter(zones),
		display:    terminal.NewDisplay(os.Stdout, dismiss),
		history:    history,
		logger:     logger,
		out:        os.Stdout,
	}, cleanup, nil
}

// runFlow drives one flow to a terminal state
func (a *app) runFlow(ctx context.Context) error {
	flow := service.NewFlow(service.FlowDeps{
		Location:   a.location,
		Permission: a.permission,
		Network:    a.network,
		Weather:    a.weather,
		Presenter:  a.presenter,
		Display:    a.display,
	}, a.logger)

	if err := flow.Run(ctx); err != nil {
		var flowErr *domain.FlowError
		if errors.As(err, &flowErr) && flowErr.Kind == domain.KindLocationServiceDisabled {
			fmt.Fprintln(a.out, "Turn on location services (LOCATION_PROVIDER=static or ip) and try again.")
		}
		return err
	}

	a.history.Record(flow)

	if a.showMore {
		if err := flow.ShowMoreInfo(); err != nil {
			a.logger.Warn("more info unavailable", "error", err)
		}
	}
	return nil
}

func interactive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
