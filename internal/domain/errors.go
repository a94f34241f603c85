package domain

import (
	"errors"
	"fmt"
)

// ErrNoWeather is returned when no weather reading has ever been fetched.
var ErrNoWeather = errors.New("no weather data available")

// TrackerFetchError wraps a failed tracker poll. Recoverable.
type TrackerFetchError struct {
	Tracker string
	Err     error
}

func (e *TrackerFetchError) Error() string {
	return fmt.Sprintf("tracker %s: fetch activity: %v", e.Tracker, e.Err)
}

func (e *TrackerFetchError) Unwrap() error { return e.Err }

// WeatherFetchError wraps a failed weather lookup. Recoverable.
type WeatherFetchError struct {
	Err error
}

func (e *WeatherFetchError) Error() string {
	return fmt.Sprintf("fetch weather: %v", e.Err)
}

func (e *WeatherFetchError) Unwrap() error { return e.Err }

// ConfigError reports an invalid or missing setting. Fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// HardwareWriteError reports that the pixel sink rejected a write. Fatal.
type HardwareWriteError struct {
	Op  string
	Err error
}

func (e *HardwareWriteError) Error() string {
	return fmt.Sprintf("hardware %s: %v", e.Op, e.Err)
}

func (e *HardwareWriteError) Unwrap() error { return e.Err }

// IsFatal reports whether err must stop the service.
func IsFatal(err error) bool {
	var hw *HardwareWriteError
	var cfg *ConfigError
	return errors.As(err, &hw) || errors.As(err, &cfg)
}
