package field

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/olivierh59500/particle-field/internal/field/mocks"
	"github.com/olivierh59500/particle-field/internal/theme"
	"go.uber.org/mock/gomock"
)

const eps = 1e-9

// newTestField builds a seeded field and, when ps is non-empty, replaces
// its particles with ps. The pointer is parked far off-surface.
func newTestField(t *testing.T, w, h float64, mode theme.Mode, ps ...Particle) *Field {
	t.Helper()
	f := New(w, h, mode, WithRand(rand.New(rand.NewSource(42))))
	f.SetPointer(1e6, 1e6)
	if len(ps) > 0 {
		f.particles = ps
	}
	return f
}

func inBounds(f *Field) bool {
	for _, p := range f.particles {
		if p.X < 0 || p.X > f.width || p.Y < 0 || p.Y > f.height {
			return false
		}
	}
	return true
}

func TestParamsCount(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		want  int
	}{
		{"wide surface capped", 1200, 60},
		{"much wider still capped", 4000, 60},
		{"width beyond int range capped", 1e30, 60},
		{"infinite width capped", math.Inf(1), 60},
		{"medium", 800, 40},
		{"floor of fraction", 219, 10},
		{"narrower than spacing", 10, 0},
		{"zero width", 0, 0},
		{"negative width", -50, 0},
	}

	p := DefaultParams()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Count(tt.width); got != tt.want {
				t.Errorf("Count(%v) = %d, want %d", tt.width, got, tt.want)
			}
		})
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		x    float64
		want Band
	}{
		{0, BandA},
		{100, BandA},
		{399.9, BandA},
		{400, BandC},
		{600, BandC},
		{800, BandC},
		{800.1, BandB},
		{1200, BandB},
	}

	for _, tt := range tests {
		if got := BandOf(tt.x, 1200); got != tt.want {
			t.Errorf("BandOf(%v, 1200) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestPaletteColors(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		band Band
		mode theme.Mode
		want string
	}{
		{BandA, theme.Light, "rgba(0, 102, 255, 0.3)"},
		{BandA, theme.Dark, "rgba(0, 102, 255, 0.4)"},
		{BandB, theme.Light, "rgba(255, 51, 102, 0.3)"},
		{BandB, theme.Dark, "rgba(255, 51, 102, 0.4)"},
		{BandC, theme.Light, "rgba(139, 92, 246, 0.3)"},
		{BandC, theme.Dark, "rgba(139, 92, 246, 0.4)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := p.Color(tt.band, tt.mode).String(); got != tt.want {
				t.Errorf("Color(%v, %v) = %s, want %s", tt.band, tt.mode, got, tt.want)
			}
		})
	}
}

func TestColorNRGBA(t *testing.T) {
	got := Color{R: 139, G: 92, B: 246, A: 0.4}.NRGBA()
	want := color.NRGBA{R: 139, G: 92, B: 246, A: 102}
	if got != want {
		t.Errorf("NRGBA() = %v, want %v", got, want)
	}
	if c := (Color{A: 2}).NRGBA(); c.A != 255 {
		t.Errorf("alpha above 1 should saturate, got %d", c.A)
	}
}

func TestNewPopulatesField(t *testing.T) {
	f := newTestField(t, 1200, 800, theme.Light)

	if len(f.particles) != 60 {
		t.Fatalf("particle count = %d, want 60", len(f.particles))
	}
	if !inBounds(f) {
		t.Errorf("particles created outside the surface")
	}
	pal := DefaultPalette()
	for i, p := range f.particles {
		if p.Radius < 1 || p.Radius >= 3 {
			t.Errorf("particle %d radius %v outside [1, 3)", i, p.Radius)
		}
		if math.Abs(p.VX) > 0.15 || math.Abs(p.VY) > 0.15 {
			t.Errorf("particle %d velocity (%v, %v) outside [-0.15, 0.15]", i, p.VX, p.VY)
		}
		if want := pal.Color(BandOf(p.X, 1200), theme.Light); p.Color != want {
			t.Errorf("particle %d at x=%v colour %s, want %s", i, p.X, p.Color, want)
		}
	}
}

func TestBandAColorScenario(t *testing.T) {
	f := newTestField(t, 1200, 800, theme.Light)
	if got := f.colorAt(100).String(); got != "rgba(0, 102, 255, 0.3)" {
		t.Errorf("colour at x=100 = %s, want rgba(0, 102, 255, 0.3)", got)
	}
}

func TestTickAppliesVelocityBeforeBounce(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light, Particle{X: 5, Y: 50, VX: -0.2})
	f.Tick()

	p := f.particles[0]
	if math.Abs(p.X-4.8) > eps {
		t.Errorf("x = %v, want 4.8", p.X)
	}
	if math.Abs(p.VX-(-0.2*0.99)) > eps {
		t.Errorf("vx = %v, want damped -0.198 with no bounce", p.VX)
	}
}

func TestTickBouncesAndClamps(t *testing.T) {
	tests := []struct {
		name   string
		start  Particle
		wantX  float64
		wantY  float64
		wantVX float64
		wantVY float64
	}{
		{"left edge", Particle{X: 0.1, Y: 50, VX: -0.2}, 0, 50, 0.198, 0},
		{"right edge", Particle{X: 799.9, Y: 50, VX: 0.2}, 800, 50, -0.198, 0},
		{"top edge", Particle{X: 50, Y: 0.05, VY: -0.1}, 50, 0, 0, 0.099},
		{"bottom edge", Particle{X: 50, Y: 599.95, VY: 0.1}, 50, 600, 0, -0.099},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestField(t, 800, 600, theme.Light, tt.start)
			f.Tick()
			p := f.particles[0]
			if math.Abs(p.X-tt.wantX) > eps || math.Abs(p.Y-tt.wantY) > eps {
				t.Errorf("position = (%v, %v), want (%v, %v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if math.Abs(p.VX-tt.wantVX) > eps || math.Abs(p.VY-tt.wantVY) > eps {
				t.Errorf("velocity = (%v, %v), want (%v, %v)", p.VX, p.VY, tt.wantVX, tt.wantVY)
			}
		})
	}
}

func TestBounceFlipsOncePerCrossing(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light, Particle{X: 0.3, Y: 300, VX: -1})

	flips := 0
	prev := f.particles[0].VX
	for i := 0; i < 5; i++ {
		f.Tick()
		v := f.particles[0].VX
		if math.Signbit(v) != math.Signbit(prev) {
			flips++
		}
		prev = v
	}
	if flips != 1 {
		t.Errorf("velocity sign flipped %d times, want 1", flips)
	}
	if f.particles[0].X <= 0 {
		t.Errorf("particle did not move back inside, x = %v", f.particles[0].X)
	}
}

func TestTickKeepsParticlesInBounds(t *testing.T) {
	f := newTestField(t, 640, 480, theme.Dark)
	f.SetPointer(320, 240)

	for i := 0; i < 2000; i++ {
		if i%100 == 0 {
			f.SetPointer(float64(i%640), float64((i*7)%480))
		}
		f.Tick()
		if !inBounds(f) {
			t.Fatalf("particle left the surface after %d ticks", i+1)
		}
	}
	if f.Ticks() != 2000 {
		t.Errorf("Ticks() = %d, want 2000", f.Ticks())
	}
}

func TestDampingDecreasesSpeed(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light, Particle{X: 400, Y: 300, VX: 0.1, VY: -0.05})

	speed := func() float64 { return math.Hypot(f.particles[0].VX, f.particles[0].VY) }
	prev := speed()
	for i := 0; i < 100; i++ {
		f.Tick()
		cur := speed()
		if cur >= prev {
			t.Fatalf("tick %d: speed %v did not drop below %v", i, cur, prev)
		}
		if cur == 0 {
			t.Fatalf("tick %d: speed reached zero", i)
		}
		prev = cur
	}
}

func TestPointerRepelsParticle(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light, Particle{X: 110, Y: 100})
	f.SetPointer(100, 100)
	f.Tick()

	want := (150.0 - 10) / 150 * 0.02 * 0.99
	p := f.particles[0]
	if math.Abs(p.VX-want) > eps {
		t.Errorf("vx = %v, want %v", p.VX, want)
	}
	if math.Abs(p.VY) > eps {
		t.Errorf("vy = %v, want 0", p.VY)
	}
}

func TestPointerOutsideRadiusHasNoEffect(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light, Particle{X: 300, Y: 100})
	f.SetPointer(100, 100)
	f.Tick()

	if p := f.particles[0]; p.VX != 0 || p.VY != 0 {
		t.Errorf("velocity = (%v, %v), want (0, 0)", p.VX, p.VY)
	}
}

func TestPointerOnParticleIsIgnored(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light, Particle{X: 200, Y: 200})
	f.SetPointer(200, 200)
	f.Tick()

	p := f.particles[0]
	if math.IsNaN(p.VX) || math.IsNaN(p.VY) || p.VX != 0 || p.VY != 0 {
		t.Errorf("velocity = (%v, %v), want (0, 0)", p.VX, p.VY)
	}
}

func TestPointerDefaultsToOrigin(t *testing.T) {
	f := New(400, 300, theme.Light, WithRand(rand.New(rand.NewSource(1))))
	if x, y := f.Pointer(); x != 0 || y != 0 {
		t.Errorf("Pointer() = (%v, %v), want (0, 0)", x, y)
	}
}

func TestSetModeRecolorsInPlace(t *testing.T) {
	f := newTestField(t, 1200, 800, theme.Light)
	before := f.Particles()

	f.SetMode(theme.Dark)

	after := f.Particles()
	for i := range before {
		b, a := before[i], after[i]
		if a.X != b.X || a.Y != b.Y || a.VX != b.VX || a.VY != b.VY || a.Radius != b.Radius {
			t.Fatalf("particle %d moved on mode change: %+v -> %+v", i, b, a)
		}
		if b.Color.A != 0.3 || a.Color.A != 0.4 {
			t.Errorf("particle %d alpha %v -> %v, want 0.3 -> 0.4", i, b.Color.A, a.Color.A)
		}
		if a.Color.R != b.Color.R || a.Color.G != b.Color.G || a.Color.B != b.Color.B {
			t.Errorf("particle %d changed band: %s -> %s", i, b.Color, a.Color)
		}
	}
	if f.Mode() != theme.Dark {
		t.Errorf("Mode() = %v, want dark", f.Mode())
	}
}

func TestSetModeUsesCurrentX(t *testing.T) {
	f := newTestField(t, 1200, 800, theme.Light, Particle{X: 1000, Y: 10, Color: DefaultPalette().Color(BandA, theme.Light)})
	f.SetMode(theme.Dark)

	if got, want := f.particles[0].Color, DefaultPalette().Color(BandB, theme.Dark); got != want {
		t.Errorf("colour = %s, want %s", got, want)
	}
}

func TestWatchFollowsSignal(t *testing.T) {
	f := newTestField(t, 1200, 800, theme.Light)
	sig := theme.NewSignal(theme.Dark)

	stop := f.Watch(sig)
	if f.Mode() != theme.Dark {
		t.Fatalf("Watch did not pick up the current mode")
	}
	sig.Set(theme.Light)
	if f.Mode() != theme.Light {
		t.Errorf("field did not follow signal to light")
	}

	stop()
	sig.Set(theme.Dark)
	if f.Mode() != theme.Light {
		t.Errorf("field followed signal after unsubscribe")
	}
}

func TestResizeReplacesParticles(t *testing.T) {
	f := newTestField(t, 1200, 800, theme.Light)
	before := f.Particles()

	f.Resize(400, 300)

	if got := len(f.particles); got != 20 {
		t.Fatalf("count after resize = %d, want 20", got)
	}
	if w, h := f.Size(); w != 400 || h != 300 {
		t.Errorf("Size() = (%v, %v), want (400, 300)", w, h)
	}
	if !inBounds(f) {
		t.Errorf("particles outside resized surface")
	}
	for i, p := range f.particles {
		if p == before[i] {
			t.Errorf("particle %d survived the resize", i)
		}
	}
}

func TestResizeHugeWidth(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Light)
	f.Resize(1e30, 600)

	if got := len(f.particles); got != 60 {
		t.Errorf("count after huge resize = %d, want 60", got)
	}
}

func TestLinksScenario(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Dark,
		Particle{X: 100, Y: 100},
		Particle{X: 180, Y: 100},
		Particle{X: 500, Y: 500},
	)

	links := f.Links()
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	l := links[0]
	if l.A != 0 || l.B != 1 {
		t.Errorf("link between %d and %d, want 0 and 1", l.A, l.B)
	}
	want := 0.05 * (1 - 80.0/120)
	if math.Abs(l.Alpha-want) > eps {
		t.Errorf("alpha = %v, want %v", l.Alpha, want)
	}

	f.SetMode(theme.Light)
	if got := f.Links()[0].Alpha; math.Abs(got-0.03*(1-80.0/120)) > eps {
		t.Errorf("light alpha = %v, want %v", got, 0.03*(1-80.0/120))
	}
}

func TestLinksSkipDistantPairs(t *testing.T) {
	f := newTestField(t, 800, 600, theme.Dark,
		Particle{X: 0, Y: 0},
		Particle{X: 120, Y: 0},
	)
	if links := f.Links(); len(links) != 0 {
		t.Errorf("pair at exactly the link distance was linked: %v", links)
	}
}

func TestRender(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := Particle{X: 100, Y: 100, Radius: 2, Color: Color{R: 0, G: 102, B: 255, A: 0.4}}
	b := Particle{X: 180, Y: 100, Radius: 1.5, Color: Color{R: 139, G: 92, B: 246, A: 0.4}}
	f := newTestField(t, 800, 600, theme.Dark, a, b)

	s := mocks.NewMockSurface(ctrl)
	gomock.InOrder(
		s.EXPECT().Clear(),
		s.EXPECT().FillCircle(100.0, 100.0, 2.0, a.Color.NRGBA()),
		s.EXPECT().FillCircle(180.0, 100.0, 1.5, b.Color.NRGBA()),
		s.EXPECT().StrokeLine(100.0, 100.0, 180.0, 100.0, 0.5, color.NRGBA{R: 255, G: 255, B: 255, A: 4}),
	)

	f.Render(s)
}

func TestRenderLightLinksAreBlack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newTestField(t, 800, 600, theme.Light,
		Particle{X: 10, Y: 10, Radius: 1},
		Particle{X: 10, Y: 20, Radius: 1},
	)

	s := mocks.NewMockSurface(ctrl)
	s.EXPECT().Clear()
	s.EXPECT().FillCircle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
	s.EXPECT().StrokeLine(10.0, 10.0, 10.0, 20.0, 0.5, gomock.Any()).Do(
		func(_, _, _, _, _ float64, c color.Color) {
			n := c.(color.NRGBA)
			if n.R != 0 || n.G != 0 || n.B != 0 {
				t.Errorf("light link colour = %v, want black", n)
			}
		})

	f.Render(s)
}

func TestRenderEmptyFieldOnlyClears(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := New(10, 10, theme.Light, WithRand(rand.New(rand.NewSource(3))))
	s := mocks.NewMockSurface(ctrl)
	s.EXPECT().Clear()

	f.Step(s)
}

func TestDriftKeepsBounds(t *testing.T) {
	f := New(600, 400, theme.Light,
		WithRand(rand.New(rand.NewSource(9))),
		WithDrift(Drift{Strength: 0.05, Scale: 0.01, Speed: 0.02, Seed: 7}),
	)
	f.SetPointer(1e6, 1e6)
	if f.flow == nil {
		t.Fatal("drift with positive strength should be enabled")
	}

	before := f.Particles()
	for i := 0; i < 500; i++ {
		f.Tick()
		if !inBounds(f) {
			t.Fatalf("drift pushed a particle out after %d ticks", i+1)
		}
	}
	moved := false
	for i, p := range f.Particles() {
		if p.X != before[i].X || p.Y != before[i].Y {
			moved = true
			break
		}
	}
	if !moved {
		t.Errorf("no particle moved under drift")
	}
}

func TestZeroDriftIsDisabled(t *testing.T) {
	f := New(600, 400, theme.Light, WithDrift(Drift{Scale: 0.01}))
	if f.flow != nil {
		t.Errorf("zero-strength drift should not install a flow")
	}
}
