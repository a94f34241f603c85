package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

const testAPIKey = "owm-test-key"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", testAPIKey)
	t.Setenv("WEATHER_LAT", "37.7749")
	t.Setenv("WEATHER_LON", "-122.4194")
}

func requireConfigError(t *testing.T, err error, field string) {
	t.Helper()
	var ce *domain.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, field, ce.Field)
	assert.Contains(t, err.Error(), field)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 28, cfg.NumLEDs)
	assert.InDelta(t, 0.8, cfg.Brightness, 0)
	assert.Equal(t, 3, cfg.StartupAnimation)
	assert.Equal(t, 30*time.Second, cfg.PollTime)
	assert.Equal(t, 5*time.Second, cfg.WeatherDisplayTime)
	assert.Equal(t, 5*time.Minute, cfg.WeatherTTL)
	assert.Equal(t, 10*time.Second, cfg.ErrorBackoff)
	assert.Equal(t, 9, cfg.OnHour)
	assert.Equal(t, 23, cfg.OffHour)
	assert.Equal(t, SinkTerminal, cfg.Sink)
	assert.Equal(t, "localhost:7890", cfg.OPCAddr)
	assert.Equal(t, uint8(0), cfg.OPCChannel)
	assert.Equal(t, 18, cfg.WS281xPin)
	assert.False(t, cfg.PowerSwitchEnabled())
	assert.Equal(t, domain.DefaultDays, cfg.NumDays)
	assert.Equal(t, domain.ColorPair{Event: domain.Color{G: 255}, NoEvents: domain.Color{R: 30, G: 30, B: 30}}, cfg.GitHubColors)
	assert.Equal(t, domain.ColorPair{Event: domain.Color{R: 255, G: 100}, NoEvents: domain.Color{R: 30, G: 30, B: 30}}, cfg.StravaColors)
	assert.False(t, cfg.GitHubEnabled())
	assert.False(t, cfg.StravaEnabled())
	assert.Empty(t, cfg.TrackerFiles)
	assert.Equal(t, testAPIKey, cfg.OpenWeatherAPIKey)
	assert.InDelta(t, 37.7749, cfg.WeatherLat, 1e-9)
	assert.InDelta(t, -122.4194, cfg.WeatherLon, 1e-9)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "activity-samples", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("NUM_LEDS", "60")
	t.Setenv("BRIGHTNESS", "0.25")
	t.Setenv("STARTUP_ANIMATION", "4")
	t.Setenv("POLL_TIME", "90")
	t.Setenv("WEATHER_DISPLAY_TIME", "7.5")
	t.Setenv("WEATHER_TTL", "10m")
	t.Setenv("ERROR_BACKOFF", "3s")
	t.Setenv("ON_HOUR", "7")
	t.Setenv("OFF_HOUR", "22")
	t.Setenv("SINK", "OPC")
	t.Setenv("OPC_ADDR", "fadecandy:7890")
	t.Setenv("OPC_CHANNEL", "2")
	t.Setenv("POWER_GPIO_CHIP", "gpiochip4")
	t.Setenv("POWER_GPIO_LINE", "17")
	t.Setenv("GITHUB_USERNAME", "octocat")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_EVENT_COLOR", "0,0,255")
	t.Setenv("STRAVA_CLIENT_ID", "123")
	t.Setenv("STRAVA_CLIENT_SECRET", "secret")
	t.Setenv("STRAVA_REFRESH_TOKEN", "refresh")
	t.Setenv("TRACKER_FILES", "/data/reading.yaml, /data/gym.yaml")
	t.Setenv("NUM_DAYS", "14")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-samples")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.NumLEDs)
	assert.InDelta(t, 0.25, cfg.Brightness, 0)
	assert.Equal(t, 4, cfg.StartupAnimation)
	assert.Equal(t, 90*time.Second, cfg.PollTime)
	assert.Equal(t, 7500*time.Millisecond, cfg.WeatherDisplayTime)
	assert.Equal(t, 10*time.Minute, cfg.WeatherTTL)
	assert.Equal(t, 3*time.Second, cfg.ErrorBackoff)
	assert.Equal(t, 7, cfg.OnHour)
	assert.Equal(t, 22, cfg.OffHour)
	assert.Equal(t, SinkOPC, cfg.Sink)
	assert.Equal(t, "fadecandy:7890", cfg.OPCAddr)
	assert.Equal(t, uint8(2), cfg.OPCChannel)
	assert.Equal(t, "gpiochip4", cfg.PowerGPIOChip)
	assert.Equal(t, 17, cfg.PowerGPIOLine)
	assert.True(t, cfg.PowerSwitchEnabled())
	assert.True(t, cfg.GitHubEnabled())
	assert.Equal(t, domain.Color{B: 255}, cfg.GitHubColors.Event)
	assert.True(t, cfg.StravaEnabled())
	assert.Equal(t, []string{"/data/reading.yaml", "/data/gym.yaml"}, cfg.TrackerFiles)
	assert.Equal(t, 14, cfg.NumDays)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-samples", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_MissingWeatherSettings(t *testing.T) {
	for _, field := range []string{"OPENWEATHER_API_KEY", "WEATHER_LAT", "WEATHER_LON"} {
		t.Run(field, func(t *testing.T) {
			setRequired(t)
			t.Setenv(field, "")
			_, err := Load()
			requireConfigError(t, err, field)
			assert.True(t, domain.IsFatal(err))
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"NUM_LEDS", "0"},
		{"NUM_LEDS", "many"},
		{"NUM_DAYS", "-3"},
		{"BRIGHTNESS", "1.5"},
		{"BRIGHTNESS", "-0.1"},
		{"BRIGHTNESS", "bright"},
		{"BRIGHTNESS", "NaN"},
		{"BRIGHTNESS", "+Inf"},
		{"WEATHER_LAT", "nan"},
		{"ON_HOUR", "24"},
		{"OFF_HOUR", "-1"},
		{"POLL_TIME", "soon"},
		{"POLL_TIME", "0"},
		{"POLL_TIME", "NaN"},
		{"WEATHER_DISPLAY_TIME", "-5"},
		{"WEATHER_TTL", "0s"},
		{"ERROR_BACKOFF", "0"},
		{"OPC_CHANNEL", "256"},
		{"SINK", "hdmi"},
		{"GITHUB_EVENT_COLOR", "#12345"},
		{"STRAVA_NO_EVENTS_COLOR", "1,2"},
		{"WEATHER_LAT", "north"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			requireConfigError(t, err, tt.key)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	requireConfigError(t, err, "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_GitHubNeedsBothCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("GITHUB_USERNAME", "octocat")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.GitHubEnabled())
}
