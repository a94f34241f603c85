// Package strava counts an athlete's Strava activities per day.
package strava

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
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

const (
	defaultTokenURL      = "https://www.strava.com/oauth/token"
	defaultActivitiesURL = "https://www.strava.com/api/v3/athlete/activities"
	defaultPerPage       = 50
	defaultMaxActivities = 200
	pageDelay            = 500 * time.Millisecond
	// expiryMargin refreshes the access token shortly before Strava expires it.
	expiryMargin = time.Minute
)

var (
	errUnauthorized = errors.New("unauthorized")
	errRateLimited  = errors.New("rate limited")
)

// Credentials are the OAuth client and the long-lived refresh token obtained
// when the athlete authorized the app.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Tracker implements domain.Tracker over the Strava athlete activities API.
type Tracker struct {
	creds         Credentials
	days          int
	colors        domain.ColorPair
	tokenURL      string
	activitiesURL string
	httpClient    *http.Client
	perPage       int
	maxActivities int
	clock         clockwork.Clock
	logger        *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewTracker creates a Strava tracker. No request is made until Activity.
func NewTracker(creds Credentials, days int, colors domain.ColorPair, timeout time.Duration, logger *slog.Logger) *Tracker {
	return &Tracker{
		creds:         creds,
		days:          days,
		colors:        colors,
		tokenURL:      defaultTokenURL,
		activitiesURL: defaultActivitiesURL,
		httpClient:    &http.Client{Timeout: timeout},
		perPage:       defaultPerPage,
		maxActivities: defaultMaxActivities,
		clock:         domain.Clock(),
		logger:        logger.With("tracker", "strava"),
	}
}

func (t *Tracker) Name() string { return "strava" }

func (t *Tracker) Colors() domain.ColorPair { return t.colors }

// Activity counts activities per local calendar day, today first. Rate
// limiting is reported as an error; the next cycle tries again.
func (t *Tracker) Activity(ctx context.Context) (domain.TrackerSample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	activities, err := t.fetchActivities(ctx)
	if err != nil {
		return nil, &domain.TrackerFetchError{Tracker: t.Name(), Err: err}
	}

	counts := make(domain.TrackerSample, t.days)
	now := t.clock.Now()
	for _, a := range activities {
		day, ok := a.day(now.Location())
		if !ok {
			continue
		}
		if d := domain.DaysAgo(now, day); d >= 0 && d < t.days {
			counts[d]++
		}
	}
	return counts, nil
}

func (t *Tracker) fetchActivities(ctx context.Context) ([]activity, error) {
	if err := t.ensureToken(ctx); err != nil {
		return nil, err
	}

	after := t.clock.Now().AddDate(0, 0, -t.days).Unix()
	var all []activity
	refreshed := false
	for page := 1; len(all) < t.maxActivities; {
		batch, err := t.fetchPage(ctx, page, after)
		if errors.Is(err, errUnauthorized) && !refreshed {
			t.logger.Info("access token rejected, refreshing")
			if err := t.refresh(ctx); err != nil {
				return nil, err
			}
			refreshed = true
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		page++
		if !t.sleep(ctx, pageDelay) {
			return nil, ctx.Err()
		}
	}
	if len(all) > t.maxActivities {
		all = all[:t.maxActivities]
	}
	return all, nil
}

func (t *Tracker) fetchPage(ctx context.Context, page int, after int64) ([]activity, error) {
	params := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(t.perPage)},
		"after":    {strconv.FormatInt(after, 10)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.activitiesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.accessToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("activities request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, errUnauthorized
	case http.StatusTooManyRequests:
		return nil, errRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("strava API error: status %d: %s", resp.StatusCode, body)
	}

	var activities []activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

func (t *Tracker) ensureToken(ctx context.Context) error {
	if t.accessToken != "" && t.clock.Now().Before(t.expiresAt.Add(-expiryMargin)) {
		return nil
	}
	return t.refresh(ctx)
}

// refresh exchanges the refresh token for a new access token. Strava may
// rotate the refresh token, so the returned one replaces it.
func (t *Tracker) refresh(ctx context.Context) error {
	form := url.Values{
		"client_id":     {t.creds.ClientID},
		"client_secret": {t.creds.ClientSecret},
		"refresh_token": {t.creds.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("refresh token: status %d: %s", resp.StatusCode, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return errors.New("refresh token: empty access token")
	}

	t.accessToken = tok.AccessToken
	t.expiresAt = time.Unix(tok.ExpiresAt, 0)
	if tok.RefreshToken != "" {
		t.creds.RefreshToken = tok.RefreshToken
	}
	t.logger.Debug("access token refreshed", "expires_at", t.expiresAt)
	return nil
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

// Strava API response types.

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

type activity struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	StartDate      string `json:"start_date"`
	StartDateLocal string `json:"start_date_local"`
}

// day returns the calendar day the activity started on. start_date_local is
// the athlete's wall clock with a misleading Z suffix, so only its date is
// used; start_date is a real UTC instant.
func (a activity) day(loc *time.Location) (time.Time, bool) {
	if ts, err := time.Parse(time.RFC3339, a.StartDateLocal); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 12, 0, 0, 0, loc), true
	}
	if ts, err := time.Parse(time.RFC3339, a.StartDate); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
