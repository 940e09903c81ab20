// Package field simulates the decorative particle background: points that
// drift, are pushed away by the pointer, and are joined by faint lines when
// close to each other.
//
// A Field is not safe for concurrent use. The host calls Tick, Render and
// the setters from a single goroutine, the same way a browser delivers
// animation frames and input events on one thread.
package field

import (
	"math"
	"math/rand"
	"time"

	"github.com/olivierh59500/particle-field/internal/theme"
)

// Field owns the particles and the state of the inputs they react to.
type Field struct {
	params Params

	width, height float64
	particles     []Particle

	pointerX, pointerY float64
	mode               theme.Mode

	rng   *rand.Rand
	flow  *flow
	ticks uint64
}

// Option configures a Field at construction.
type Option func(*Field)

// WithParams replaces the default tuning.
func WithParams(p Params) Option {
	return func(f *Field) { f.params = p }
}

// WithRand sets the random source used for particle resets.
func WithRand(rng *rand.Rand) Option {
	return func(f *Field) { f.rng = rng }
}

// WithDrift enables the ambient noise flow.
func WithDrift(d Drift) Option {
	return func(f *Field) { f.flow = newFlow(d) }
}

// New creates a field for a surface of the given size and fills it with
// particles.
func New(width, height float64, mode theme.Mode, opts ...Option) *Field {
	f := &Field{
		params: DefaultParams(),
		mode:   mode,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	f.Resize(width, height)
	return f
}

// Resize sets new surface dimensions and replaces every particle.
func (f *Field) Resize(width, height float64) {
	f.width = math.Max(0, width)
	f.height = math.Max(0, height)

	n := f.params.Count(f.width)
	f.particles = make([]Particle, n)
	for i := range f.particles {
		f.reset(&f.particles[i])
	}
}

func (f *Field) reset(p *Particle) {
	p.X = f.rng.Float64() * f.width
	p.Y = f.rng.Float64() * f.height
	p.VX = (f.rng.Float64() - 0.5) * f.params.SpeedScale
	p.VY = (f.rng.Float64() - 0.5) * f.params.SpeedScale
	p.Radius = f.rng.Float64()*f.params.RadiusRange + f.params.MinRadius
	p.Color = f.colorAt(p.X)
}

func (f *Field) colorAt(x float64) Color {
	return f.params.Palette.Color(BandOf(x, f.width), f.mode)
}

// SetPointer records the latest pointer position.
func (f *Field) SetPointer(x, y float64) {
	f.pointerX, f.pointerY = x, y
}

// Pointer returns the last recorded pointer position, (0, 0) if none.
func (f *Field) Pointer() (float64, float64) {
	return f.pointerX, f.pointerY
}

// SetMode switches the display mode and recolours every particle from its
// current x. Positions and velocities are left alone.
func (f *Field) SetMode(m theme.Mode) {
	if m == f.mode {
		return
	}
	f.mode = m
	for i := range f.particles {
		f.particles[i].Color = f.colorAt(f.particles[i].X)
	}
}

// Watch keeps the field's mode in sync with s. The returned func stops it.
func (f *Field) Watch(s *theme.Signal) (unsubscribe func()) {
	f.SetMode(s.Mode())
	return s.Subscribe(f.SetMode)
}

// Mode returns the current display mode.
func (f *Field) Mode() theme.Mode {
	return f.mode
}

// Size returns the surface dimensions.
func (f *Field) Size() (width, height float64) {
	return f.width, f.height
}

// Params returns the tuning in use.
func (f *Field) Params() Params {
	return f.params
}

// Ticks is the number of ticks advanced since construction.
func (f *Field) Ticks() uint64 {
	return f.ticks
}

// Particles returns a copy of the particles in paint order.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Tick advances every particle by one fixed step. Motion is per tick, not
// per elapsed time.
func (f *Field) Tick() {
	for i := range f.particles {
		f.particles[i].move(f)
	}
	f.ticks++
}

// Link is a connecting line between two particles.
type Link struct {
	A, B  int // indices into Particles
	Alpha float64
}

// Links returns every unordered pair closer than the link distance, with
// opacity fading linearly to zero at that distance.
func (f *Field) Links() []Link {
	var links []Link
	maxDist := f.params.LinkDistance
	base := f.params.LinkAlpha(f.mode)
	for i := range f.particles {
		p1 := &f.particles[i]
		for j := i + 1; j < len(f.particles); j++ {
			p2 := &f.particles[j]
			dx := p1.X - p2.X
			dy := p1.Y - p2.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < maxDist {
				links = append(links, Link{A: i, B: j, Alpha: base * (1 - dist/maxDist)})
			}
		}
	}
	return links
}

// Render clears s and paints the particles followed by their links.
func (f *Field) Render(s Surface) {
	s.Clear()

	for _, p := range f.particles {
		s.FillCircle(p.X, p.Y, p.Radius, p.Color.NRGBA())
	}

	line := f.params.LinkColor(f.mode)
	for _, l := range f.Links() {
		p1, p2 := f.particles[l.A], f.particles[l.B]
		s.StrokeLine(p1.X, p1.Y, p2.X, p2.Y, f.params.LinkWidth, line.WithAlpha(l.Alpha).NRGBA())
	}
}

// Step is one full frame: Tick then Render.
func (f *Field) Step(s Surface) {
	f.Tick()
	f.Render(s)
}
