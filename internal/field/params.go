package field

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/olivierh59500/particle-field/internal/theme"
)

// Default tuning, matching the look of the original background.
const (
	MaxParticles    = 60
	Spacing         = 20.0
	SpeedScale      = 0.3
	MinRadius       = 1.0
	RadiusRange     = 2.0
	PointerRadius   = 150.0
	PointerStrength = 0.02
	Damping         = 0.99
	LinkDistance    = 120.0
	LinkWidth       = 0.5
	LinkAlphaLight  = 0.03
	LinkAlphaDark   = 0.05
)

// RGB is an opaque base colour.
type RGB struct {
	R, G, B uint8
}

// WithAlpha attaches a straight alpha in [0, 1].
func (c RGB) WithAlpha(a float64) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: a}
}

// Color is an RGB colour with a straight (non-premultiplied) float alpha,
// the way CSS rgba() values are written.
type Color struct {
	R, G, B uint8
	A       float64
}

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA {
	a := math.Max(0, math.Min(1, c.A))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Band is one of the three horizontal colour zones of the surface.
type Band int

const (
	BandA Band = iota // left third
	BandB             // right third
	BandC             // middle
)

// BandOf returns the zone x falls in for a surface of the given width.
func BandOf(x, width float64) Band {
	switch {
	case x < width/3:
		return BandA
	case x > width*2/3:
		return BandB
	default:
		return BandC
	}
}

// Palette holds the base colour per band and the particle alpha per mode.
type Palette struct {
	BandA, BandB, BandC   RGB
	LightAlpha, DarkAlpha float64
}

// DefaultPalette is blue on the left, red on the right and a purple blend
// in between.
func DefaultPalette() Palette {
	return Palette{
		BandA:      RGB{0, 102, 255},
		BandB:      RGB{255, 51, 102},
		BandC:      RGB{139, 92, 246},
		LightAlpha: 0.3,
		DarkAlpha:  0.4,
	}
}

// Color returns the particle colour for band b in mode m.
func (p Palette) Color(b Band, m theme.Mode) Color {
	alpha := p.LightAlpha
	if m == theme.Dark {
		alpha = p.DarkAlpha
	}
	switch b {
	case BandA:
		return p.BandA.WithAlpha(alpha)
	case BandB:
		return p.BandB.WithAlpha(alpha)
	default:
		return p.BandC.WithAlpha(alpha)
	}
}

// Params is the full set of field tunables.
type Params struct {
	MaxParticles int
	Spacing      float64

	SpeedScale  float64
	MinRadius   float64
	RadiusRange float64

	PointerRadius   float64
	PointerStrength float64
	Damping         float64

	LinkDistance   float64
	LinkWidth      float64
	LinkAlphaLight float64
	LinkAlphaDark  float64

	Palette Palette
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		MaxParticles:    MaxParticles,
		Spacing:         Spacing,
		SpeedScale:      SpeedScale,
		MinRadius:       MinRadius,
		RadiusRange:     RadiusRange,
		PointerRadius:   PointerRadius,
		PointerStrength: PointerStrength,
		Damping:         Damping,
		LinkDistance:    LinkDistance,
		LinkWidth:       LinkWidth,
		LinkAlphaLight:  LinkAlphaLight,
		LinkAlphaDark:   LinkAlphaDark,
		Palette:         DefaultPalette(),
	}
}

// Count is the number of particles a surface of the given width holds.
func (p Params) Count(width float64) int {
	if width <= 0 || p.Spacing <= 0 {
		return 0
	}
	// Cap before converting: huge widths overflow int.
	return int(math.Min(math.Floor(width/p.Spacing), float64(p.MaxParticles)))
}

// LinkAlpha is the base opacity of connecting lines in mode m.
func (p Params) LinkAlpha(m theme.Mode) float64 {
	if m == theme.Dark {
		return p.LinkAlphaDark
	}
	return p.LinkAlphaLight
}

// LinkColor is white in dark mode and black in light mode.
func (p Params) LinkColor(m theme.Mode) RGB {
	if m == theme.Dark {
		return RGB{255, 255, 255}
	}
	return RGB{0, 0, 0}
}
