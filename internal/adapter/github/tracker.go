// Package github counts a user's public GitHub events per day.
package github

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
	defaultBaseURL   = "https://api.github.com"
	defaultPerPage   = 30
	defaultMaxEvents = 200
	defaultRetries   = 3
	initialBackoff   = 2 * time.Second
	maxBackoff       = 8 * time.Second
	pageDelay        = time.Second
	// maxRateLimitWait bounds how long a poll waits for the rate-limit
	// window to reset before giving up on the page.
	maxRateLimitWait = time.Minute
)

// Tracker implements domain.Tracker over the GitHub user events API.
type Tracker struct {
	username   string
	token      string
	days       int
	colors     domain.ColorPair
	baseURL    string
	httpClient *http.Client
	perPage    int
	maxEvents  int
	retries    int
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewTracker creates a GitHub tracker for username authenticated with token.
func NewTracker(username, token string, days int, colors domain.ColorPair, timeout time.Duration, logger *slog.Logger) *Tracker {
	return &Tracker{
		username:   username,
		token:      token,
		days:       days,
		colors:     colors,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		perPage:    defaultPerPage,
		maxEvents:  defaultMaxEvents,
		retries:    defaultRetries,
		clock:      domain.Clock(),
		logger:     logger.With("tracker", "github"),
	}
}

func (t *Tracker) Name() string { return "github" }

func (t *Tracker) Colors() domain.ColorPair { return t.colors }

// Activity counts events per local calendar day, today first.
func (t *Tracker) Activity(ctx context.Context) (domain.TrackerSample, error) {
	events, err := t.fetchEvents(ctx)
	if err != nil {
		return nil, &domain.TrackerFetchError{Tracker: t.Name(), Err: err}
	}

	counts := make(domain.TrackerSample, t.days)
	now := t.clock.Now()
	for _, e := range events {
		if e.CreatedAt.IsZero() {
			continue
		}
		if d := domain.DaysAgo(now, e.CreatedAt); d >= 0 && d < t.days {
			counts[d]++
		}
	}
	return counts, nil
}

// fetchEvents pages through the event feed until a short page or maxEvents.
// A page that fails after the first one ends paging with what was collected.
func (t *Tracker) fetchEvents(ctx context.Context) ([]event, error) {
	var all []event
	for page := 1; len(all) < t.maxEvents; page++ {
		batch, err := t.fetchPage(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			t.logger.Warn("event page failed, using partial results", "page", page, "events", len(all), "error", err)
			break
		}
		all = append(all, batch...)
		if len(batch) < t.perPage {
			break
		}
		if !t.sleep(ctx, pageDelay) {
			return nil, ctx.Err()
		}
	}
	if len(all) > t.maxEvents {
		all = all[:t.maxEvents]
	}
	return all, nil
}

func (t *Tracker) fetchPage(ctx context.Context, page int) ([]event, error) {
	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= t.retries; attempt++ {
		events, wait, err := t.request(ctx, page)
		if err == nil {
			return events, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if wait == 0 {
			wait = backoff
			backoff = retry.NextBackoff(backoff, maxBackoff)
		}
		t.logger.Debug("event page request failed", "page", page, "attempt", attempt, "retry_in", wait, "error", err)
		if attempt < t.retries && !t.sleep(ctx, wait) {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("page %d after %d attempts: %w", page, t.retries, lastErr)
}

var errRateLimited = errors.New("rate limit exceeded")

// request fetches one page. A non-zero wait asks the caller to hold off that
// long before the next attempt.
func (t *Tracker) request(ctx context.Context, page int) ([]event, time.Duration, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(t.perPage)},
	}
	u := fmt.Sprintf("%s/users/%s/events?%s", t.baseURL, url.PathEscape(t.username), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "ccal-led")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("events request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, t.rateLimitWait(resp.Header.Get("X-RateLimit-Reset")), errRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, 0, fmt.Errorf("github API error: status %d: %s", resp.StatusCode, body)
	}

	var events []event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, 0, fmt.Errorf("decode events: %w", err)
	}
	return events, 0, nil
}

// rateLimitWait converts an X-RateLimit-Reset epoch into a wait, one second
// past the reset and capped at maxRateLimitWait.
func (t *Tracker) rateLimitWait(reset string) time.Duration {
	wait := maxRateLimitWait
	if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
		wait = time.Unix(epoch, 0).Sub(t.clock.Now()) + time.Second
	}
	return min(max(wait, time.Second), maxRateLimitWait)
}

func (t *Tracker) sleep(ctx context.Context, d time.Duration) bool {
	timer := t.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

// GitHub API response types.

type event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
