package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

const (
	defaultBaseURL  = "https://api.openweathermap.org/data/3.0/onecall"
	defaultAttempts = 3
	initialBackoff  = 500 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

// Client fetches current conditions from the OpenWeatherMap One Call API.
// It implements domain.WeatherSource without caching; wrap it in a Cache.
type Client struct {
	apiKey     string
	lat, lon   float64
	httpClient *http.Client
	baseURL    string
	attempts   int
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client for one location.
func NewClient(apiKey string, lat, lon float64, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		lat:    lat,
		lon:    lon,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  defaultBaseURL,
		attempts: defaultAttempts,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
}

// Weather fetches the current conditions, retrying transient failures.
func (c *Client) Weather(ctx context.Context) (domain.WeatherSnapshot, error) {
	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		snap, err := c.fetch(ctx)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == c.attempts {
			break
		}
		c.logger.Debug("weather request failed, retrying", "attempt", attempt, "error", err)
		if !c.sleep(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return domain.WeatherSnapshot{}, &domain.WeatherFetchError{Err: lastErr}
}

func (c *Client) fetch(ctx context.Context) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":     {strconv.FormatFloat(c.lat, 'f', 6, 64)},
		"lon":     {strconv.FormatFloat(c.lon, 'f', 6, 64)},
		"appid":   {c.apiKey},
		"units":   {"metric"},
		"exclude": {"minutely,hourly,daily,alerts"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherSnapshot{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("decode response: %w", err)
	}
	return owResp.snapshot(c.clock.Now())
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	t := c.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

// OpenWeatherMap response types. One Call nests the reading under "current";
// the older current-weather endpoint keeps it at the top level.

type response struct {
	Current *conditions `json:"current"`
	Weather []weather   `json:"weather"`
	Main    *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

type conditions struct {
	Temp    *float64  `json:"temp"`
	Weather []weather `json:"weather"`
}

type weather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

var errNoConditions = errors.New("response carries no weather conditions")

func (r response) snapshot(now time.Time) (domain.WeatherSnapshot, error) {
	var (
		list []weather
		temp *float64
	)
	switch {
	case r.Current != nil:
		list, temp = r.Current.Weather, r.Current.Temp
	default:
		list = r.Weather
		if r.Main != nil {
			temp = r.Main.Temp
		}
	}
	if len(list) == 0 && temp == nil {
		return domain.WeatherSnapshot{}, errNoConditions
	}

	snap := domain.WeatherSnapshot{Temperature: temp, FetchedAt: now}
	if len(list) > 0 {
		snap.Condition = list[0].Main
	}
	return snap, nil
}
