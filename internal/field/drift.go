package field

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Drift is an ambient Perlin flow that nudges particles along a slowly
// changing noise field. A zero Strength disables it.
type Drift struct {
	Strength float64
	Scale    float64
	Speed    float64
	Seed     int64
}

// Enabled reports whether the drift contributes any force.
func (d Drift) Enabled() bool {
	return d.Strength > 0
}

type flow struct {
	Drift
	noise *perlin.Perlin
}

func newFlow(d Drift) *flow {
	if !d.Enabled() {
		return nil
	}
	return &flow{
		Drift: d,
		noise: perlin.NewPerlin(2, 2, 3, d.Seed),
	}
}

// force returns the velocity nudge at (x, y) after the given tick count.
func (f *flow) force(x, y float64, tick uint64) (float64, float64) {
	n := f.noise.Noise2D(x*f.Scale, y*f.Scale+float64(tick)*f.Speed)
	angle := (n + 1) * math.Pi
	return math.Cos(angle) * f.Strength, math.Sin(angle) * f.Strength
}
