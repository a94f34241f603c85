// Package filetracker reads activity counts from a user-maintained data file.
//
// The file is YAML (JSON is accepted too) and looks like:
//
//	name: reading
//	metric: pages
//	event: [0, 128, 255]
//	no_events: [20, 20, 20]
//	updated: 2026-03-14
//	data: [3, 0, 1, 0, ...]
//
// data[0] is today. When the calendar day changes the counts are shifted one
// slot per elapsed day, zeros are inserted at the front, and the file is
// rewritten.
package filetracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

const dateLayout = time.DateOnly

var (
	defaultEvent    = domain.Color{G: 255}
	defaultNoEvents = domain.Color{}
)

// Tracker implements domain.Tracker over a local data file.
type Tracker struct {
	path   string
	days   int
	clock  clockwork.Clock
	logger *slog.Logger

	mu     sync.Mutex
	name   string
	colors domain.ColorPair
}

// document is the on-disk layout.
type document struct {
	Name     string `yaml:"name" json:"name"`
	Metric   string `yaml:"metric,omitempty" json:"metric,omitempty"`
	Event    []int  `yaml:"event,flow" json:"event"`
	NoEvents []int  `yaml:"no_events,flow" json:"no_events"`
	Updated  string `yaml:"updated,omitempty" json:"updated,omitempty"`
	Data     []int  `yaml:"data,flow" json:"data"`
}

// Open loads the data file once to validate it and learn the tracker's name
// and colors. The file is re-read on every Activity call.
func Open(path string, days int, logger *slog.Logger) (*Tracker, error) {
	t := &Tracker{
		path:  path,
		days:  days,
		clock: domain.Clock(),
	}
	doc, err := t.load()
	if err != nil {
		return nil, err
	}
	t.apply(doc)
	t.logger = logger.With("tracker", t.name, "path", path)
	return t, nil
}

func (t *Tracker) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

func (t *Tracker) Colors() domain.ColorPair {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.colors
}

// Activity re-reads the file, shifts it forward to today, and returns the
// first days counts.
func (t *Tracker) Activity(_ context.Context) (domain.TrackerSample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load()
	if err != nil {
		return nil, &domain.TrackerFetchError{Tracker: t.name, Err: err}
	}
	t.apply(doc)

	today := t.clock.Now()
	if shifted, n := shift(&doc, today); shifted {
		t.logger.Info("new day, shifting tracker data", "days", n)
		if err := t.save(doc); err != nil {
			return nil, &domain.TrackerFetchError{Tracker: t.name, Err: err}
		}
	}

	sample := make(domain.TrackerSample, t.days)
	for i := 0; i < t.days && i < len(doc.Data); i++ {
		sample[i] = max(doc.Data[i], 0)
	}
	return sample, nil
}

// shift moves data forward by the whole days between doc.Updated and today.
// A missing or unparsable date is stamped without shifting.
func shift(doc *document, today time.Time) (bool, int) {
	stamp := today.Format(dateLayout)
	if doc.Updated == stamp {
		return false, 0
	}
	last, err := time.ParseInLocation(dateLayout, doc.Updated, today.Location())
	doc.Updated = stamp
	if err != nil {
		return true, 0
	}

	n := domain.DaysAgo(today, last)
	if n <= 0 {
		return true, 0
	}
	n = min(n, len(doc.Data))
	shifted := make([]int, len(doc.Data))
	copy(shifted[n:], doc.Data[:len(doc.Data)-n])
	doc.Data = shifted
	return true, n
}

func (t *Tracker) apply(doc document) {
	t.name = doc.Name
	if t.name == "" {
		t.name = strings.TrimSuffix(filepath.Base(t.path), filepath.Ext(t.path))
	}
	t.colors = domain.ColorPair{
		Event:    colorOr(doc.Event, defaultEvent),
		NoEvents: colorOr(doc.NoEvents, defaultNoEvents),
	}
}

func colorOr(rgb []int, fallback domain.Color) domain.Color {
	if len(rgb) != 3 {
		return fallback
	}
	return domain.NewColor(rgb[0], rgb[1], rgb[2])
}

func (t *Tracker) load() (document, error) {
	raw, err := os.ReadFile(t.path)
	if err != nil {
		return document{}, fmt.Errorf("read tracker file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("parse tracker file %s: %w", t.path, err)
	}
	if len(doc.Data) == 0 {
		doc.Data = make([]int, t.days)
	}
	return doc, nil
}

// save writes doc next to the original and renames it into place.
func (t *Tracker) save(doc document) error {
	var (
		raw []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(t.path), ".json") {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
		raw = buf.Bytes()
	} else {
		raw, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encode tracker file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), "."+filepath.Base(t.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if info, err := os.Stat(t.path); err == nil {
		_ = os.Chmod(tmp.Name(), info.Mode().Perm())
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("replace tracker file: %w", err)
	}
	return nil
}
