package animation

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// gridRows is the row count weather clips lay the strip out in.
const gridRows = 4

// gridCols returns ceil(n / gridRows).
func gridCols(n int) int {
	return (n + gridRows - 1) / gridRows
}

var (
	sunRays      = []domain.Color{{R: 255, G: 255}, {R: 255, G: 255, B: 50}, {R: 255, G: 255, B: 20}}
	cloudColor   = domain.Color{R: 180, G: 180, B: 180}
	rainColors   = []domain.Color{{G: 128, B: 255}, {B: 255}}
	snowColors   = []domain.Color{{R: 255, G: 255, B: 255}, {R: 220, G: 200, B: 255}, {R: 240, G: 220, B: 255}}
	flashColor   = domain.Color{R: 255, G: 255, B: 200}
	fogColors    = []domain.Color{{R: 200, G: 200, B: 200}, {R: 180, G: 180, B: 180}, {R: 255, G: 255, B: 255}, {R: 220, G: 220, B: 220}}
	defaultGreys = []domain.Color{{R: 255, G: 255, B: 255}, {R: 200, G: 200, B: 200}, {R: 180, G: 180, B: 180}}

	cloudShape = []int{12, 11, 20, 19, 18, 17}
)

// Sun pulses the strip in warm yellows with a ray wave rolling outward from
// the center.
type Sun struct {
	scale float64
}

// NewSun creates a sun clip at the given brightness scale.
func NewSun(scale float64) *Sun { return &Sun{scale: scale} }

func (s *Sun) Name() string { return "sun" }

func (s *Sun) Step(c display.Canvas, elapsed time.Duration) (time.Duration, bool) {
	progress := math.Mod(elapsed.Seconds(), 2) / 2
	core := 0.3 + 0.7*(0.5+0.5*math.Sin(progress*math.Pi))
	wave := int(progress*3) % 3

	n := c.Len()
	for i := range n {
		dist := i - n/2
		if dist < 0 {
			dist = -dist
		}
		b := math.Min(1, core+float64(3-(dist+wave)%3)*0.3)
		c.SetPixel(i, sunRays[i%3], b*s.scale)
	}
	return 50 * time.Millisecond, false
}

// Cloud drifts a small cloud shape left by up to three pixels, one position
// every half second.
type Cloud struct {
	scale float64
	shift int
}

// NewCloud creates a cloud clip at the given brightness scale.
func NewCloud(scale float64) *Cloud { return &Cloud{scale: scale} }

func (cl *Cloud) Name() string { return "cloud" }

func (cl *Cloud) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	c.Fill(domain.Black, 0)
	for _, px := range cloudShape {
		c.SetPixel(px-cl.shift, cloudColor, cl.scale)
	}
	cl.shift = (cl.shift + 1) % 4
	return 500 * time.Millisecond, false
}

type drop struct {
	row        float64
	col        int
	speed      float64
	color      domain.Color
	brightness float64
}

// precipitation is the droplet model shared by rain, drizzle, snow, and the
// thunderstorm's rain layer.
type precipitation struct {
	rng     *rand.Rand
	palette []domain.Color
	speed   float64
	chance  float64
	scale   float64
	drops   []drop
}

// tick clears the frame, maybe spawns a drop in row 0, draws every drop, and
// advances them. Drops that pass the last row are removed.
func (p *precipitation) tick(c display.Canvas) {
	c.Fill(domain.Black, 0)
	cols := gridCols(c.Len())
	if cols == 0 {
		return
	}

	if p.rng.Float64() < p.chance {
		p.drops = append(p.drops, drop{
			col:        p.rng.IntN(cols),
			speed:      p.speed,
			color:      p.palette[p.rng.IntN(len(p.palette))],
			brightness: (0.6 + 0.3*p.rng.Float64()) * p.scale,
		})
	}

	kept := p.drops[:0]
	for _, d := range p.drops {
		c.SetPixel(d.col+int(d.row)*cols, d.color, d.brightness)
		d.row += d.speed
		if d.row < gridRows {
			kept = append(kept, d)
		}
	}
	p.drops = kept
}

// Precipitation is a falling-droplet clip: rain, drizzle, or snow.
type Precipitation struct {
	name string
	precipitation
}

// NewRain creates a rain clip where drops fall speed rows per tick and spawn
// with probability chance on each tick.
func NewRain(rng *rand.Rand, speed, chance, scale float64) *Precipitation {
	return &Precipitation{
		name: "rain",
		precipitation: precipitation{
			rng: rng, palette: rainColors, speed: speed, chance: chance, scale: scale,
		},
	}
}

// NewDrizzle is a slow, sparse rain.
func NewDrizzle(rng *rand.Rand, scale float64) *Precipitation {
	p := NewRain(rng, 0.5, 0.2, scale)
	p.name = "drizzle"
	return p
}

// NewSnow creates a snow clip with slow pale flakes.
func NewSnow(rng *rand.Rand, scale float64) *Precipitation {
	return &Precipitation{
		name: "snow",
		precipitation: precipitation{
			rng: rng, palette: snowColors, speed: 0.5, chance: 0.3, scale: scale,
		},
	}
}

func (p *Precipitation) Name() string { return p.name }

// Drops returns the number of live droplets.
func (p *Precipitation) Drops() int { return len(p.drops) }

func (p *Precipitation) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	p.tick(c)
	return 100 * time.Millisecond, false
}

// Thunderstorm is heavy rain interrupted by bursts of lightning.
type Thunderstorm struct {
	rain        precipitation
	nextStrike  time.Duration
	flashesLeft int
	lit         bool
}

// NewThunderstorm creates a thunderstorm clip.
func NewThunderstorm(rng *rand.Rand, scale float64) *Thunderstorm {
	t := &Thunderstorm{
		rain: precipitation{
			rng: rng, palette: rainColors, speed: 1, chance: 0.7, scale: scale,
		},
	}
	t.nextStrike = t.strikeInterval()
	return t
}

func (t *Thunderstorm) Name() string { return "thunderstorm" }

// strikeInterval is uniform in [3s, 8s].
func (t *Thunderstorm) strikeInterval() time.Duration {
	return 3*time.Second + time.Duration(t.rain.rng.Float64()*float64(5*time.Second))
}

func (t *Thunderstorm) Step(c display.Canvas, elapsed time.Duration) (time.Duration, bool) {
	const flashHold = 50 * time.Millisecond

	if t.flashesLeft == 0 && elapsed >= t.nextStrike {
		t.flashesLeft = 1 + t.rain.rng.IntN(3)
	}

	if t.flashesLeft > 0 {
		if t.lit {
			c.Fill(domain.Black, 0)
			t.lit = false
			t.flashesLeft--
			if t.flashesLeft == 0 {
				t.nextStrike = elapsed + flashHold + t.strikeInterval()
			}
			return flashHold, false
		}
		c.Fill(flashColor, t.rain.scale)
		t.lit = true
		return flashHold, false
	}

	t.rain.tick(c)
	return 100 * time.Millisecond, false
}

type fogPatch struct {
	row   int
	pos   float64
	width float64
	color domain.Color
	speed float64
}

// Fog drifts soft grey patches across a serpentine grid at low brightness.
type Fog struct {
	rng     *rand.Rand
	scale   float64
	patches []fogPatch
	cols    int
}

// NewFog creates a fog clip.
func NewFog(rng *rand.Rand, scale float64) *Fog {
	return &Fog{rng: rng, scale: scale}
}

func (f *Fog) Name() string { return "fog" }

func (f *Fog) init(n int) {
	f.cols = gridCols(n)
	cols := float64(f.cols)
	f.patches = make([]fogPatch, 3)
	for i := range f.patches {
		speed := 0.02 + f.rng.Float64()*0.23
		if f.rng.IntN(2) == 0 {
			speed = -speed
		}
		f.patches[i] = fogPatch{
			row:   f.rng.IntN(gridRows),
			pos:   f.rng.Float64() * (cols - 1),
			width: cols * (0.4 + f.rng.Float64()*0.3),
			color: fogColors[f.rng.IntN(len(fogColors))],
			speed: speed,
		}
	}
}

// fogIndex maps a grid cell to a strip index. Even rows run right to left.
func fogIndex(row, col, cols int) int {
	if row%2 == 0 {
		return row*cols + (cols - 1 - col)
	}
	return row*cols + col
}

func (f *Fog) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	n := c.Len()
	if f.patches == nil {
		f.init(n)
	}
	if f.cols == 0 {
		return 10 * time.Millisecond, false
	}

	floor := 0.07 * f.scale
	ceiling := 0.18 * f.scale
	levels := make([]float64, n)
	colors := make([]domain.Color, n)
	for i := range levels {
		levels[i] = floor
		colors[i] = fogColors[1]
	}

	cols := float64(f.cols)
	for i := range f.patches {
		p := &f.patches[i]
		p.pos = math.Mod(p.pos+p.speed, cols)
		if p.pos < 0 {
			p.pos += cols
		}

		half := p.width / 2
		for col := range f.cols {
			d := math.Abs(float64(col) - p.pos)
			d = math.Min(d, cols-d)
			if d >= half {
				continue
			}
			t := d / half
			smooth := 1 - (3*t*t - 2*t*t*t)
			level := floor + (ceiling-floor)*smooth

			idx := fogIndex(p.row, col, f.cols)
			if idx < n && level > levels[idx] {
				levels[idx] = level
				colors[idx] = p.color
			}
		}
	}

	for i := range n {
		c.SetPixel(i, colors[i], levels[i])
	}
	return 10 * time.Millisecond, false
}

// Default cycles the whole strip through three greys, half a second each.
type Default struct {
	scale float64
}

// NewDefault creates the fallback grey clip.
func NewDefault(scale float64) *Default { return &Default{scale: scale} }

func (d *Default) Name() string { return "default" }

func (d *Default) Step(c display.Canvas, elapsed time.Duration) (time.Duration, bool) {
	idx := int(elapsed/(500*time.Millisecond)) % len(defaultGreys)
	c.Fill(defaultGreys[idx], d.scale)
	return 50 * time.Millisecond, false
}
