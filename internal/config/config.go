package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/geoweather/backend/internal/domain"
)

// Location provider modes
const (
	ProviderStatic   = "static"
	ProviderIP       = "ip"
	ProviderDisabled = "disabled"
	// ProviderRequest takes the coordinate from each API request
	ProviderRequest = "request"
)

// Permission modes
const (
	PermissionPrompt  = "prompt"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

const (
	defaultBaseURL  = "https://api.openweathermap.org/data/"
	defaultTimeout  = 10 * time.Second
	defaultPort     = "8080"
	defaultSchedule = "0 */30 * * * *" // every 30 minutes
	defaultService  = "geoweather"
)

// Config holds all configuration for the application
type Config struct {
	OpenWeather OpenWeatherConfig `yaml:"openweather"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Location    LocationConfig    `yaml:"location"`
	Display     DisplayConfig     `yaml:"display"`
	Schedule    string            `yaml:"schedule"`
}

type OpenWeatherConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Units   string        `yaml:"units"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig enables the observation history when URL is set
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

type LocationConfig struct {
	Provider   string   `yaml:"provider"`
	Latitude   *float64 `yaml:"latitude"`
	Longitude  *float64 `yaml:"longitude"`
	Permission string   `yaml:"permission"`
	LookupURL  string   `yaml:"lookup_url"`
}

type DisplayConfig struct {
	// Timezone is "local", "coordinate" or an IANA zone name
	Timezone string `yaml:"timezone"`
}

// Option adjusts the configuration after file and environment, before validation
type Option func(*Config)

// Load reads .env, the optional YAML file and environment variables, in that order of precedence
func Load(opts ...Option) (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults and environment only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	// only the server takes coordinates per request, and it sets that through an Option
	if cfg.Location.Provider == ProviderRequest {
		return nil, fmt.Errorf("location provider %q cannot be configured, want static, ip or disabled", ProviderRequest)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.OpenWeather.APIKey, "OPENWEATHER_API_KEY")
	setString(&c.OpenWeather.BaseURL, "OPENWEATHER_BASE_URL")
	setString(&c.OpenWeather.Units, "OPENWEATHER_UNITS")
	setString(&c.Server.Port, "PORT")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Schedule, "WEATHER_SCHEDULE")
	setString(&c.Location.Provider, "LOCATION_PROVIDER")
	setString(&c.Location.Permission, "LOCATION_PERMISSION")
	setString(&c.Display.Timezone, "DISPLAY_TIMEZONE")

	if err := setFloat(&c.Location.Latitude, "LOCATION_LATITUDE"); err != nil {
		return err
	}
	return setFloat(&c.Location.Longitude, "LOCATION_LONGITUDE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst **float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = &f
	return nil
}

func (c *Config) applyDefaults() {
	if c.OpenWeather.BaseURL == "" {
		c.OpenWeather.BaseURL = defaultBaseURL
	}
	if !strings.HasSuffix(c.OpenWeather.BaseURL, "/") {
		c.OpenWeather.BaseURL += "/"
	}
	if c.OpenWeather.Timeout <= 0 {
		c.OpenWeather.Timeout = defaultTimeout
	}
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultService
	}
	if c.Location.Provider == "" {
		c.Location.Provider = ProviderStatic
	}
	if c.Location.Permission == "" {
		c.Location.Permission = PermissionPrompt
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = "local"
	}
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
}

func (c *Config) validate() error {
	if c.OpenWeather.APIKey == "" {
		return fmt.Errorf("OpenWeatherMap API key is required (set OPENWEATHER_API_KEY or openweather.api_key)")
	}

	switch c.Location.Provider {
	case ProviderStatic:
		if c.Location.Latitude == nil || c.Location.Longitude == nil {
			return fmt.Errorf("static location provider requires LOCATION_LATITUDE and LOCATION_LONGITUDE")
		}
		if err := c.Coordinate().Validate(); err != nil {
			return err
		}
	case ProviderIP, ProviderDisabled, ProviderRequest:
	default:
		return fmt.Errorf("unknown location provider %q (want static, ip or disabled)", c.Location.Provider)
	}

	switch c.Location.Permission {
	case PermissionPrompt, PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("unknown location permission %q (want prompt, granted or denied)", c.Location.Permission)
	}

	switch tz := c.Display.Timezone; tz {
	case "local", "coordinate":
	default:
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("unknown display timezone %q: %w", tz, err)
		}
	}

	return nil
}

// Coordinate returns the configured static coordinate; unset values are zero
func (c *Config) Coordinate() domain.Coordinate {
	var coord domain.Coordinate
	if c.Location.Latitude != nil {
		coord.Latitude = *c.Location.Latitude
	}
	if c.Location.Longitude != nil {
		coord.Longitude = *c.Location.Longitude
	}
	return coord
}

// UnitsMismatch reports that the API is asked for something other than Fahrenheit
// while every temperature is still converted from Fahrenheit.
func (c *Config) UnitsMismatch() bool {
	return c.OpenWeather.Units != "imperial"
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return ":" + c.Server.Port
}

// NewLogger creates a new slog.Logger writing to stdout
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a new slog.Logger based on the configuration
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
