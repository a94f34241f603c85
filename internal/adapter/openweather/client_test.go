package openweather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// autoAdvance moves the fake clock forward whenever the client is sleeping
// between attempts.
func autoAdvance(t *testing.T, fc *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		for {
			if err := fc.BlockUntilContext(ctx, 1); err != nil {
				return
			}
			fc.Advance(maxBackoff)
		}
	}()
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	fc := clockwork.NewFakeClock()
	autoAdvance(t, fc)
	return &Client{
		apiKey:     testKey,
		lat:        51.5072,
		lon:        -0.1276,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		attempts:   defaultAttempts,
		clock:      fc,
		logger:     discardLogger(),
	}
}

func TestClient_Weather_OneCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, testKey, q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "51.507200", q.Get("lat"))
		assert.Equal(t, "-0.127600", q.Get("lon"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, `{"current":{"temp":-3.2,"weather":[{"main":"Snow","description":"light snow"}]}}`)
	}))
	defer srv.Close()

	snap, err := testClient(t, srv.URL).Weather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Snow", snap.Condition)
	require.NotNil(t, snap.Temperature)
	assert.InDelta(t, -3.2, *snap.Temperature, 1e-9)
}

func TestClient_Weather_CurrentWeatherShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, `{"weather":[{"main":"Clouds"}],"main":{"temp":18.6}}`)
	}))
	defer srv.Close()

	snap, err := testClient(t, srv.URL).Weather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Clouds", snap.Condition)
	require.NotNil(t, snap.Temperature)
	assert.InDelta(t, 18.6, *snap.Temperature, 1e-9)
}

func TestClient_Weather_MissingTemperature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"current":{"weather":[{"main":"Haze"}]}}`)
	}))
	defer srv.Close()

	snap, err := testClient(t, srv.URL).Weather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Haze", snap.Condition)
	assert.Nil(t, snap.Temperature)
}

func TestClient_Weather_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"current":{"temp":21,"weather":[{"main":"Clear"}]}}`)
	}))
	defer srv.Close()

	snap, err := testClient(t, srv.URL).Weather(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Clear", snap.Condition)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Weather_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Weather(context.Background())
	require.Error(t, err)

	var wfe *domain.WeatherFetchError
	require.ErrorAs(t, err, &wfe)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Weather_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Weather(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoConditions))
}

func TestClient_Weather_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(t, srv.URL).Weather(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
