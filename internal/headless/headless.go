// Package headless runs the particle field without a window and writes the
// last frame as a PNG.
package headless

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olivierh59500/particle-field/internal/config"
	"github.com/olivierh59500/particle-field/internal/field"
	"github.com/olivierh59500/particle-field/internal/loop"
	"github.com/olivierh59500/particle-field/internal/raster"
	"github.com/olivierh59500/particle-field/internal/theme"
)

// Options control a headless run.
type Options struct {
	// Duration of the simulated run, wall clock.
	Duration time.Duration
	// Out is the PNG path of the final frame.
	Out string
	// Orbit moves a synthetic pointer around the centre of the surface.
	Orbit bool
	// ToggleEvery flips the display mode at this period. Zero disables.
	ToggleEvery time.Duration
}

// Result summarises a finished run.
type Result struct {
	Ticks     uint64
	Particles int
	Mode      theme.Mode
}

// Run drives a field at the configured TPS until opts.Duration elapses or
// ctx is cancelled, then renders the final frame to opts.Out.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Duration <= 0 {
		return Result{}, errors.New("headless: duration must be positive")
	}

	w, h := cfg.Window.Width, cfg.Window.Height
	modes := theme.NewSignal(cfg.ThemeMode())
	f := field.New(float64(w), float64(h), modes.Mode(), cfg.FieldOptions()...)
	unwatch := f.Watch(modes)
	defer unwatch()

	interval := time.Second / time.Duration(cfg.Window.TPS)
	driver, err := loop.New(loop.Config{Tick: f.Tick, Interval: interval, Logger: logger})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create driver: %w", err)
	}

	logger.InfoContext(ctx, "headless run started",
		"width", w, "height", h, "particles", len(f.Particles()), "mode", modes.Mode(), "duration", opts.Duration)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := driver.Start(runCtx); err != nil {
		return Result{}, fmt.Errorf("failed to start driver: %w", err)
	}

	g, gctx := errgroup.WithContext(runCtx)
	helpers, stopHelpers := context.WithCancel(gctx)
	defer stopHelpers()
	g.Go(func() error {
		defer stopHelpers()
		timer := time.NewTimer(opts.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	if opts.Orbit {
		g.Go(func() error {
			return orbit(helpers, driver, f, float64(w), float64(h), interval)
		})
	}
	if opts.ToggleEvery > 0 {
		g.Go(func() error {
			return toggle(helpers, driver, modes, opts.ToggleEvery, logger)
		})
	}

	waitErr := g.Wait()
	if errors.Is(waitErr, context.Canceled) && ctx.Err() != nil {
		logger.InfoContext(ctx, "headless run interrupted")
		waitErr = nil
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := driver.Stop(stopCtx); err != nil && !errors.Is(err, loop.ErrStopped) {
		return Result{}, fmt.Errorf("failed to stop driver: %w", err)
	}
	if waitErr != nil {
		return Result{}, waitErr
	}

	res := Result{Ticks: f.Ticks(), Particles: len(f.Particles()), Mode: f.Mode()}
	if err := snapshot(f, cfg, opts.Out); err != nil {
		return res, err
	}
	logger.InfoContext(ctx, "headless run finished", "ticks", res.Ticks, "mode", res.Mode, "out", opts.Out)
	return res, nil
}

// orbit feeds the pointer a point on a circle around the centre, the way a
// stream of move events would.
func orbit(ctx context.Context, d *loop.Driver, f *field.Field, w, h float64, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cx, cy := w/2, h/2
	radius := math.Min(w, h) / 3
	var step float64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			step += 0.02
			x := cx + radius*math.Cos(step)
			y := cy + radius*math.Sin(step)
			if err := d.Submit(ctx, func() { f.SetPointer(x, y) }); err != nil {
				return ignoreShutdown(ctx, err)
			}
		}
	}
}

func toggle(ctx context.Context, d *loop.Driver, modes *theme.Signal, every time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Submit(ctx, func() {
				next := modes.Mode().Toggle()
				logger.DebugContext(ctx, "mode toggled", "mode", next)
				modes.Set(next)
			})
			if err != nil {
				return ignoreShutdown(ctx, err)
			}
		}
	}
}

func ignoreShutdown(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, loop.ErrStopped) {
		return nil
	}
	return err
}

func snapshot(f *field.Field, cfg *config.Config, path string) error {
	if path == "" {
		return nil
	}
	w, h := f.Size()
	s := raster.New(int(w), int(h), cfg.Background(f.Mode()))
	f.Render(s)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := s.WritePNG(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
