package filetracker

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

var today = time.Date(2026, 3, 14, 8, 0, 0, 0, time.Local)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openTracker(t *testing.T, path string, days int) *Tracker {
	t.Helper()
	tr, err := Open(path, days, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	tr.clock = clockwork.NewFakeClockAt(today)
	return tr
}

func readDoc(t *testing.T, path string) document {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc document
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	return doc
}

func TestOpen_ReadsNameAndColors(t *testing.T) {
	path := writeFile(t, "reading.yaml", `
name: reading
metric: pages
event: [0, 128, 255]
no_events: [20, 20, 20]
updated: 2026-03-14
data: [3, 0, 1]
`)
	tr := openTracker(t, path, 4)

	assert.Equal(t, "reading", tr.Name())
	assert.Equal(t, domain.ColorPair{
		Event:    domain.Color{G: 128, B: 255},
		NoEvents: domain.Color{R: 20, G: 20, B: 20},
	}, tr.Colors())
}

func TestOpen_DefaultsNameAndColors(t *testing.T) {
	path := writeFile(t, "pushups.yaml", "data: [1]\n")
	tr := openTracker(t, path, 4)

	assert.Equal(t, "pushups", tr.Name())
	assert.Equal(t, defaultEvent, tr.Colors().Event)
	assert.Equal(t, defaultNoEvents, tr.Colors().NoEvents)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.yaml"), 28, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestActivity_SameDayLeavesFileAlone(t *testing.T) {
	content := "name: reading\nupdated: 2026-03-14\ndata: [3, -2, 1]\n"
	path := writeFile(t, "reading.yaml", content)
	tr := openTracker(t, path, 4)

	sample, err := tr.Activity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TrackerSample{3, 0, 1, 0}, sample)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))
}

func TestActivity_ShiftsOneSlotPerElapsedDay(t *testing.T) {
	path := writeFile(t, "reading.yaml", "name: reading\nupdated: 2026-03-12\ndata: [5, 4, 3, 2]\n")
	tr := openTracker(t, path, 4)

	sample, err := tr.Activity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TrackerSample{0, 0, 5, 4}, sample)

	doc := readDoc(t, path)
	assert.Equal(t, []int{0, 0, 5, 4}, doc.Data)
	assert.Equal(t, "2026-03-14", doc.Updated)
	assert.Equal(t, "reading", doc.Name)

	// A second poll on the same day does not shift again.
	sample, err = tr.Activity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TrackerSample{0, 0, 5, 4}, sample)
}

func TestActivity_LongGapClearsData(t *testing.T) {
	path := writeFile(t, "reading.yaml", "updated: 2026-01-01\ndata: [5, 4, 3]\n")
	tr := openTracker(t, path, 3)

	sample, err := tr.Activity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TrackerSample{0, 0, 0}, sample)
}

func TestActivity_MissingDateIsStampedWithoutShift(t *testing.T) {
	path := writeFile(t, "reading.yaml", "data: [7, 1]\n")
	tr := openTracker(t, path, 2)

	sample, err := tr.Activity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TrackerSample{7, 1}, sample)
	assert.Equal(t, "2026-03-14", readDoc(t, path).Updated)
}

func TestActivity_JSONFileStaysJSON(t *testing.T) {
	path := writeFile(t, "steps.json", `{"name":"steps","event":[255,0,0],"no_events":[0,0,0],"updated":"2026-03-13","data":[9,8]}`)
	tr := openTracker(t, path, 2)

	sample, err := tr.Activity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TrackerSample{0, 9}, sample)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"updated": "2026-03-14"`)
}

func TestActivity_PreservesFileMode(t *testing.T) {
	path := writeFile(t, "reading.yaml", "updated: 2026-03-13\ndata: [1]\n")
	tr := openTracker(t, path, 1)

	_, err := tr.Activity(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestActivity_FileRemovedAfterOpen(t *testing.T) {
	path := writeFile(t, "reading.yaml", "name: reading\ndata: [1]\n")
	tr := openTracker(t, path, 1)
	require.NoError(t, os.Remove(path))

	_, err := tr.Activity(context.Background())
	var tfe *domain.TrackerFetchError
	require.ErrorAs(t, err, &tfe)
	assert.Equal(t, "reading", tfe.Tracker)
}
