package main

import (
	"image/color"
	"log/slog"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/olivierh59500/particle-field/internal/config"
	"github.com/olivierh59500/particle-field/internal/field"
	"github.com/olivierh59500/particle-field/internal/theme"
)

// Game hosts the particle field in an ebiten window.
type Game struct {
	cfg    *config.Config
	modes  *theme.Signal
	logger *slog.Logger

	field   *field.Field // nil until the window reports a size
	unwatch func()
	screen  screenSurface

	Width, Height  int
	Paused         bool
	PrevMX, PrevMY int // Previous cursor position, to detect moves
	touches        []ebiten.TouchID

	stopped atomic.Bool
}

// NewGame creates the host. The field is built on the first Layout call
// with a non-empty size.
func NewGame(cfg *config.Config, modes *theme.Signal, logger *slog.Logger) *Game {
	return &Game{
		cfg:    cfg,
		modes:  modes,
		logger: logger,
		PrevMX: -1,
		PrevMY: -1,
	}
}

// Stop ends the game loop at the next Update.
func (g *Game) Stop() {
	g.stopped.Store(true)
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	if g.stopped.Load() {
		if g.unwatch != nil {
			g.unwatch()
		}
		return ebiten.Termination
	}

	g.handleInput()

	if g.field == nil || g.Paused {
		return nil
	}
	g.field.Tick()
	return nil
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	if g.field == nil {
		return
	}
	g.screen.target = screen
	g.screen.background = g.cfg.Background(g.field.Mode())
	g.field.Render(&g.screen)
}

// Layout follows the window size. Any change rebuilds the particle set.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		// Minimised: keep the last layout.
		if g.Width > 0 && g.Height > 0 {
			return g.Width, g.Height
		}
		return 1, 1
	}
	if outsideWidth != g.Width || outsideHeight != g.Height {
		g.resize(outsideWidth, outsideHeight)
	}
	return g.Width, g.Height
}

func (g *Game) resize(w, h int) {
	g.Width, g.Height = w, h
	if g.field == nil {
		g.field = field.New(float64(w), float64(h), g.modes.Mode(), g.cfg.FieldOptions()...)
		g.unwatch = g.field.Watch(g.modes)
		g.logger.Info("field initialised",
			"width", w, "height", h, "particles", len(g.field.Particles()), "mode", g.field.Mode())
		return
	}
	g.field.Resize(float64(w), float64(h))
	g.logger.Debug("field resized", "width", w, "height", h, "particles", len(g.field.Particles()))
}

// handleInput processes keyboard, mouse and touch input
func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.Paused = !g.Paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.modes.Set(g.modes.Mode().Toggle())
		g.logger.Debug("mode toggled", "mode", g.modes.Mode())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && g.field != nil {
		g.field.Resize(g.field.Size())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.Stop()
	}

	if g.field == nil {
		return
	}

	mx, my := ebiten.CursorPosition()
	if mx != g.PrevMX || my != g.PrevMY {
		g.field.SetPointer(float64(mx), float64(my))
	}
	g.PrevMX, g.PrevMY = mx, my

	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	if len(g.touches) > 0 {
		tx, ty := ebiten.TouchPosition(g.touches[0])
		g.field.SetPointer(float64(tx), float64(ty))
	}
}

// screenSurface draws onto the ebiten screen image.
type screenSurface struct {
	target     *ebiten.Image
	background color.Color
}

func (s *screenSurface) Clear() {
	s.target.Fill(s.background)
}

func (s *screenSurface) FillCircle(x, y, r float64, c color.Color) {
	vector.DrawFilledCircle(s.target, float32(x), float32(y), float32(r), c, true)
}

func (s *screenSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	vector.StrokeLine(s.target, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}
