package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

// Sink kinds accepted by SINK.
const (
	SinkTerminal = "terminal"
	SinkOPC      = "opc"
	SinkWS281x   = "ws281x"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Display.
	NumLEDs          int
	Brightness       float64
	StartupAnimation int

	// Timing.
	PollTime           time.Duration
	WeatherDisplayTime time.Duration
	WeatherTTL         time.Duration
	ErrorBackoff       time.Duration
	OnHour             int
	OffHour            int

	// Pixel sink and power relay.
	Sink          string
	OPCAddr       string
	OPCChannel    uint8
	WS281xPin     int
	PowerGPIOChip string
	PowerGPIOLine int

	// Trackers.
	NumDays            int
	GitHubUsername     string
	GitHubToken        string
	GitHubColors       domain.ColorPair
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
	StravaColors       domain.ColorPair
	TrackerFiles       []string

	// Weather.
	OpenWeatherAPIKey string
	WeatherLat        float64
	WeatherLon        float64

	// Activity sample publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// GitHubEnabled reports whether the GitHub tracker has credentials.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubUsername != "" && c.GitHubToken != ""
}

// StravaEnabled reports whether the Strava tracker has credentials.
func (c *Config) StravaEnabled() bool {
	return c.StravaClientID != "" && c.StravaClientSecret != "" && c.StravaRefreshToken != ""
}

// PowerSwitchEnabled reports whether a relay line is configured.
func (c *Config) PowerSwitchEnabled() bool {
	return c.PowerGPIOLine >= 0
}

// Load reads configuration from environment variables, applying defaults where unset.
// Every failure is a *domain.ConfigError.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, &domain.ConfigError{Field: "SHUTDOWN_TIMEOUT", Reason: "must be a positive duration"}
	}

	p := &parser{}
	cfg := &Config{
		NumLEDs:          p.int("NUM_LEDS", 28),
		Brightness:       p.float("BRIGHTNESS", 0.8),
		StartupAnimation: p.int("STARTUP_ANIMATION", 3),

		PollTime:           p.duration("POLL_TIME", 30*time.Second),
		WeatherDisplayTime: p.duration("WEATHER_DISPLAY_TIME", 5*time.Second),
		WeatherTTL:         p.duration("WEATHER_TTL", 5*time.Minute),
		ErrorBackoff:       p.duration("ERROR_BACKOFF", 10*time.Second),
		OnHour:             p.int("ON_HOUR", 9),
		OffHour:            p.int("OFF_HOUR", 23),

		Sink:          strings.ToLower(sharedcfg.EnvOrDefault("SINK", SinkTerminal)),
		OPCAddr:       sharedcfg.EnvOrDefault("OPC_ADDR", "localhost:7890"),
		WS281xPin:     p.int("WS281X_PIN", 18),
		PowerGPIOChip: sharedcfg.EnvOrDefault("POWER_GPIO_CHIP", "gpiochip0"),
		PowerGPIOLine: p.int("POWER_GPIO_LINE", -1),

		NumDays:            p.int("NUM_DAYS", domain.DefaultDays),
		GitHubUsername:     os.Getenv("GITHUB_USERNAME"),
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubColors:       p.colors("GITHUB", "#00ff00", "#1e1e1e"),
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaRefreshToken: os.Getenv("STRAVA_REFRESH_TOKEN"),
		StravaColors:       p.colors("STRAVA", "#ff6400", "#1e1e1e"),
		TrackerFiles:       sharedcfg.ParseBrokers(os.Getenv("TRACKER_FILES")),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherLat:        p.requiredFloat("WEATHER_LAT"),
		WeatherLon:        p.requiredFloat("WEATHER_LON"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "activity-samples"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}
	channel := p.int("OPC_CHANNEL", 0)
	if p.err != nil {
		return nil, p.err
	}

	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}

	switch {
	case cfg.OpenWeatherAPIKey == "":
		return nil, &domain.ConfigError{Field: "OPENWEATHER_API_KEY", Reason: "is required"}
	case cfg.NumLEDs <= 0:
		return nil, &domain.ConfigError{Field: "NUM_LEDS", Reason: "must be positive"}
	case cfg.NumDays <= 0:
		return nil, &domain.ConfigError{Field: "NUM_DAYS", Reason: "must be positive"}
	case cfg.Brightness < 0 || cfg.Brightness > 1:
		return nil, &domain.ConfigError{Field: "BRIGHTNESS", Reason: "must be between 0 and 1"}
	case cfg.OnHour < 0 || cfg.OnHour > 23:
		return nil, &domain.ConfigError{Field: "ON_HOUR", Reason: "must be 0-23"}
	case cfg.OffHour < 0 || cfg.OffHour > 23:
		return nil, &domain.ConfigError{Field: "OFF_HOUR", Reason: "must be 0-23"}
	case cfg.PollTime <= 0:
		return nil, &domain.ConfigError{Field: "POLL_TIME", Reason: "must be positive"}
	case cfg.WeatherDisplayTime <= 0:
		return nil, &domain.ConfigError{Field: "WEATHER_DISPLAY_TIME", Reason: "must be positive"}
	case cfg.WeatherTTL <= 0:
		return nil, &domain.ConfigError{Field: "WEATHER_TTL", Reason: "must be positive"}
	case cfg.ErrorBackoff <= 0:
		return nil, &domain.ConfigError{Field: "ERROR_BACKOFF", Reason: "must be positive"}
	case channel < 0 || channel > 255:
		return nil, &domain.ConfigError{Field: "OPC_CHANNEL", Reason: "must be 0-255"}
	case cfg.Sink != SinkTerminal && cfg.Sink != SinkOPC && cfg.Sink != SinkWS281x:
		return nil, &domain.ConfigError{Field: "SINK", Reason: "must be terminal, opc, or ws281x"}
	case cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0:
		return nil, &domain.ConfigError{Field: "KAFKA_BROKERS", Reason: "is required when KAFKA_ENABLED is true"}
	}
	cfg.OPCChannel = uint8(channel)

	return cfg, nil
}

// parser reads typed values and keeps the first failure.
type parser struct {
	err error
}

func (p *parser) fail(field, reason string) {
	if p.err == nil {
		p.err = &domain.ConfigError{Field: field, Reason: reason}
	}
}

func (p *parser) int(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		p.fail(key, "must be an integer")
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		p.fail(key, "must be a number")
		return def
	}
	return f
}

func (p *parser) requiredFloat(key string) float64 {
	if os.Getenv(key) == "" {
		p.fail(key, "is required")
		return 0
	}
	return p.float(key, 0)
}

// duration accepts a Go duration ("45s", "2m") or a bare number of seconds.
func (p *parser) duration(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if !finite(secs) {
			p.fail(key, "must be a duration or a number of seconds")
			return def
		}
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		p.fail(key, "must be a duration or a number of seconds")
		return def
	}
	return d
}

// finite rejects the NaN and Inf spellings strconv.ParseFloat accepts.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (p *parser) color(key, def string) domain.Color {
	c, err := domain.ParseColor(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		p.fail(key, "must be #rrggbb or r,g,b")
	}
	return c
}

func (p *parser) colors(prefix, event, noEvents string) domain.ColorPair {
	return domain.ColorPair{
		Event:    p.color(prefix+"_EVENT_COLOR", event),
		NoEvents: p.color(prefix+"_NO_EVENTS_COLOR", noEvents),
	}
}
