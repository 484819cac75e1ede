package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geoweather/backend/internal/config"
	"github.com/geoweather/backend/internal/delivery/http"
	"github.com/geoweather/backend/internal/domain"
	"github.com/geoweather/backend/internal/platform/network"
	"github.com/geoweather/backend/internal/platform/timezone"
	"github.com/geoweather/backend/internal/repository/postgres"
	"github.com/geoweather/backend/internal/service"
	"github.com/geoweather/backend/internal/telemetry"
)

func main() {
	// Coordinates come with each request
	cfg, err := config.Load(func(c *config.Config) {
		c.Location.Provider = config.ProviderRequest
	})
	if err != nil {
		logger := (&config.Config{}).NewLogger()
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	if cfg.UnitsMismatch() {
		logger.Warn("temperatures are always converted from Fahrenheit; set OPENWEATHER_UNITS=imperial for correct values",
			"units", cfg.OpenWeather.Units)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	// Dependency Injection: Repositories
	var repo domain.ObservationRepository
	if cfg.Database.URL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := postgres.Connect(dbCtx, cfg.Database.URL)
		cancel()
		if err != nil {
			logger.Warn("could not connect to database, keeping history in memory", "error", err)
			repo = postgres.NewMockRepository()
		} else {
			defer pool.Close()
			logger.Info("connected to PostgreSQL")
			repo = postgres.NewPostgresRepository(pool)
		}
	}

	// Dependency Injection: Services
	weatherClient, err := service.NewWeatherClient(service.WeatherClientOptions{
		BaseURL: cfg.OpenWeather.BaseURL,
		APIKey:  cfg.OpenWeather.APIKey,
		Units:   cfg.OpenWeather.Units,
		Timeout: cfg.OpenWeather.Timeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create weather client", "error", err)
		os.Exit(1)
	}

	zones, err := timezone.New(cfg.Display.Timezone)
	if err != nil {
		logger.Error("failed to set up display timezone", "error", err)
		os.Exit(1)
	}

	history := service.NewHistoryService(repo, logger)
	handler := http.NewHandler(
		weatherClient,
		network.NewChecker(logger),
		service.NewPresenter(zones),
		history,
		logger,
	)
	app := http.NewApp(handler)

	// Graceful shutdown
	go func() {
		logger.Info("server starting", "addr", cfg.GetServerAddr())
		if err := app.Listen(cfg.GetServerAddr()); err != nil {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}
	history.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("failed to flush traces", "error", err)
	}
	logger.Info("server exited gracefully")
}
