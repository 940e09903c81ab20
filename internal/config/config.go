// Package config loads the YAML configuration of the particle background.
//
// Every key is optional: values absent from the file keep their defaults,
// so an empty file yields Default().
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/olivierh59500/particle-field/internal/field"
	"github.com/olivierh59500/particle-field/internal/theme"
)

// Config is the root of the configuration file.
type Config struct {
	Window   WindowConfig  `yaml:"window"`
	Field    FieldConfig   `yaml:"field"`
	Palette  PaletteConfig `yaml:"palette"`
	Drift    DriftConfig   `yaml:"drift"`
	Mode     string        `yaml:"mode"`
	Seed     int64         `yaml:"seed"`
	LogLevel string        `yaml:"logLevel"`
}

// WindowConfig sizes the host window and its refresh rate.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	TPS    int    `yaml:"tps"`
	// Background colours painted by Clear, per mode.
	LightBackground [3]uint8 `yaml:"lightBackground"`
	DarkBackground  [3]uint8 `yaml:"darkBackground"`
}

// FieldConfig mirrors field.Params.
type FieldConfig struct {
	MaxParticles    int     `yaml:"maxParticles"`
	Spacing         float64 `yaml:"spacing"`
	SpeedScale      float64 `yaml:"speedScale"`
	MinRadius       float64 `yaml:"minRadius"`
	RadiusRange     float64 `yaml:"radiusRange"`
	PointerRadius   float64 `yaml:"pointerRadius"`
	PointerStrength float64 `yaml:"pointerStrength"`
	Damping         float64 `yaml:"damping"`
	LinkDistance    float64 `yaml:"linkDistance"`
	LinkWidth       float64 `yaml:"linkWidth"`
	LinkAlphaLight  float64 `yaml:"linkAlphaLight"`
	LinkAlphaDark   float64 `yaml:"linkAlphaDark"`
}

// PaletteConfig holds the band colours as [r, g, b] triples.
type PaletteConfig struct {
	BandA      [3]uint8 `yaml:"bandA"`
	BandB      [3]uint8 `yaml:"bandB"`
	BandC      [3]uint8 `yaml:"bandC"`
	LightAlpha float64  `yaml:"lightAlpha"`
	DarkAlpha  float64  `yaml:"darkAlpha"`
}

// DriftConfig mirrors field.Drift. Strength 0 disables it.
type DriftConfig struct {
	Strength float64 `yaml:"strength"`
	Scale    float64 `yaml:"scale"`
	Speed    float64 `yaml:"speed"`
}

// Default returns the stock configuration.
func Default() *Config {
	p := field.DefaultParams()
	pal := p.Palette
	return &Config{
		Window: WindowConfig{
			Width:           1200,
			Height:          800,
			Title:           "Particle Field",
			TPS:             60,
			LightBackground: [3]uint8{250, 250, 250},
			DarkBackground:  [3]uint8{10, 10, 15},
		},
		Field: FieldConfig{
			MaxParticles:    p.MaxParticles,
			Spacing:         p.Spacing,
			SpeedScale:      p.SpeedScale,
			MinRadius:       p.MinRadius,
			RadiusRange:     p.RadiusRange,
			PointerRadius:   p.PointerRadius,
			PointerStrength: p.PointerStrength,
			Damping:         p.Damping,
			LinkDistance:    p.LinkDistance,
			LinkWidth:       p.LinkWidth,
			LinkAlphaLight:  p.LinkAlphaLight,
			LinkAlphaDark:   p.LinkAlphaDark,
		},
		Palette: PaletteConfig{
			BandA:      rgbTriple(pal.BandA),
			BandB:      rgbTriple(pal.BandB),
			BandC:      rgbTriple(pal.BandC),
			LightAlpha: pal.LightAlpha,
			DarkAlpha:  pal.DarkAlpha,
		},
		Drift: DriftConfig{
			Scale: 0.004,
			Speed: 0.002,
		},
		Mode:     "light",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path on top of Default and validates it.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, overriding only the keys present, and
// validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	check(c.Window.TPS > 0, "window.tps must be positive, got %d", c.Window.TPS)

	f := c.Field
	check(f.MaxParticles >= 0, "field.maxParticles must not be negative, got %d", f.MaxParticles)
	check(f.Spacing > 0, "field.spacing must be positive, got %v", f.Spacing)
	check(f.SpeedScale >= 0, "field.speedScale must not be negative, got %v", f.SpeedScale)
	check(f.MinRadius > 0, "field.minRadius must be positive, got %v", f.MinRadius)
	check(f.RadiusRange >= 0, "field.radiusRange must not be negative, got %v", f.RadiusRange)
	check(f.PointerRadius > 0, "field.pointerRadius must be positive, got %v", f.PointerRadius)
	check(f.Damping > 0 && f.Damping <= 1, "field.damping must be in (0, 1], got %v", f.Damping)
	check(f.LinkDistance > 0, "field.linkDistance must be positive, got %v", f.LinkDistance)
	check(f.LinkWidth > 0, "field.linkWidth must be positive, got %v", f.LinkWidth)
	check(unit(f.LinkAlphaLight), "field.linkAlphaLight must be in [0, 1], got %v", f.LinkAlphaLight)
	check(unit(f.LinkAlphaDark), "field.linkAlphaDark must be in [0, 1], got %v", f.LinkAlphaDark)

	check(unit(c.Palette.LightAlpha), "palette.lightAlpha must be in [0, 1], got %v", c.Palette.LightAlpha)
	check(unit(c.Palette.DarkAlpha), "palette.darkAlpha must be in [0, 1], got %v", c.Palette.DarkAlpha)

	check(c.Drift.Strength >= 0, "drift.strength must not be negative, got %v", c.Drift.Strength)

	if err := checkMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SetMode overrides the starting mode, rejecting the values Validate would.
func (c *Config) SetMode(s string) error {
	if err := checkMode(s); err != nil {
		return err
	}
	c.Mode = s
	return nil
}

func checkMode(s string) error {
	switch strings.ToLower(s) {
	case "", "light", "dark":
		return nil
	}
	return fmt.Errorf("mode must be light or dark, got %q", s)
}

// ThemeMode is the configured starting mode.
func (c *Config) ThemeMode() theme.Mode {
	return theme.ParseMode(c.Mode)
}

// Level parses LogLevel. An empty value is info.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logLevel: %w", err)
	}
	return lvl, nil
}

// FieldParams converts the field and palette sections.
func (c *Config) FieldParams() field.Params {
	f := c.Field
	return field.Params{
		MaxParticles:    f.MaxParticles,
		Spacing:         f.Spacing,
		SpeedScale:      f.SpeedScale,
		MinRadius:       f.MinRadius,
		RadiusRange:     f.RadiusRange,
		PointerRadius:   f.PointerRadius,
		PointerStrength: f.PointerStrength,
		Damping:         f.Damping,
		LinkDistance:    f.LinkDistance,
		LinkWidth:       f.LinkWidth,
		LinkAlphaLight:  f.LinkAlphaLight,
		LinkAlphaDark:   f.LinkAlphaDark,
		Palette: field.Palette{
			BandA:      tripleRGB(c.Palette.BandA),
			BandB:      tripleRGB(c.Palette.BandB),
			BandC:      tripleRGB(c.Palette.BandC),
			LightAlpha: c.Palette.LightAlpha,
			DarkAlpha:  c.Palette.DarkAlpha,
		},
	}
}

// FieldDrift converts the drift section, seeding the noise from Seed.
func (c *Config) FieldDrift() field.Drift {
	return field.Drift{
		Strength: c.Drift.Strength,
		Scale:    c.Drift.Scale,
		Speed:    c.Drift.Speed,
		Seed:     c.Seed,
	}
}

// FieldOptions bundles params, drift and the random source for field.New.
// A zero Seed seeds both the particles and the drift noise from the clock.
func (c *Config) FieldOptions() []field.Option {
	seed := c.resolveSeed()
	return []field.Option{
		field.WithParams(c.FieldParams()),
		field.WithDrift(c.driftFor(seed)),
		field.WithRand(rand.New(rand.NewSource(seed))),
	}
}

func (c *Config) resolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

func (c *Config) driftFor(seed int64) field.Drift {
	d := c.FieldDrift()
	d.Seed = seed
	return d
}

// Background is the Clear colour for mode m.
func (c *Config) Background(m theme.Mode) color.RGBA {
	t := c.Window.LightBackground
	if m == theme.Dark {
		t = c.Window.DarkBackground
	}
	return color.RGBA{R: t[0], G: t[1], B: t[2], A: 255}
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func rgbTriple(c field.RGB) [3]uint8 {
	return [3]uint8{c.R, c.G, c.B}
}

func tripleRGB(t [3]uint8) field.RGB {
	return field.RGB{R: t[0], G: t[1], B: t[2]}
}
