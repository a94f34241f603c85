package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

func TestSink_DrawsFourRowGrid(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	colors := make([]domain.Color, 28)
	colors[0] = domain.White
	colors[27] = domain.Color{R: 255}
	require.NoError(t, s.Write(colors))
	require.NoError(t, s.Show())

	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, 2, strings.Count(out, litCh))
	assert.Equal(t, 26, strings.Count(out, darkCh))
	assert.Contains(t, lines[0], litCh)
	assert.Contains(t, lines[3], litCh)
}

func TestSink_RepaintsInPlace(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	require.NoError(t, s.Write(make([]domain.Color, 8)))
	require.NoError(t, s.Show())
	buf.Reset()

	require.NoError(t, s.Show())
	assert.True(t, strings.HasPrefix(buf.String(), "\x1b[4A"))
}

func TestSink_EmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	require.NoError(t, s.Show())
	assert.Empty(t, buf.String())
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff6400", hex(domain.Color{R: 255, G: 100}))
}
