// Command particle-field shows the portfolio particle background in a
// window, or renders it headless to a PNG.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--config <path>        YAML configuration (built-in defaults if empty)
//	--mode light|dark      Starting display mode, overrides the config
//	--seed <n>             Random seed, 0 seeds from the clock
//	--headless             Run without a window and write a PNG snapshot
//	--duration <d>         Headless run length (default 5s)
//	--out <path>           Headless snapshot path (default particles.png)
//	--orbit                Headless: move a synthetic pointer in a circle
//	--toggle-every <d>     Headless: flip the mode at this period
//	--verbose              Debug logging
//
// Controls:
//
//	Mouse / touch  - Push particles away
//	T              - Toggle light/dark mode
//	Space          - Pause
//	R              - Respawn particles
//	Escape         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/olivierh59500/particle-field/internal/config"
	"github.com/olivierh59500/particle-field/internal/headless"
	"github.com/olivierh59500/particle-field/internal/theme"
)

var (
	configFlag   = flag.String("config", "", "Path to YAML configuration")
	modeFlag     = flag.String("mode", "", "Starting mode: light or dark")
	seedFlag     = flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	headlessFlag = flag.Bool("headless", false, "Run without a window and write a PNG snapshot")
	durationFlag = flag.Duration("duration", 5*time.Second, "Headless run length")
	outFlag      = flag.String("out", "particles.png", "Headless snapshot path")
	orbitFlag    = flag.Bool("orbit", true, "Headless: move a synthetic pointer in a circle")
	toggleFlag   = flag.Duration("toggle-every", 0, "Headless: flip the mode at this period")
	verboseFlag  = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "particle-field: %v\n", err)
		os.Exit(1)
	}
	if *modeFlag != "" {
		if err := cfg.SetMode(*modeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "particle-field: --mode: %v\n", err)
			os.Exit(1)
		}
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headlessFlag {
		err = runHeadless(ctx, cfg, logger)
	} else {
		err = runWindow(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("particle-field failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	// Validated by config.Load.
	level, _ := cfg.Level()
	if *verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runWindow(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	game := NewGame(cfg, theme.NewSignal(cfg.ThemeMode()), logger)

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Window.TPS)

	go func() {
		<-ctx.Done()
		game.Stop()
	}()

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}
	logger.Info("window closed")
	return nil
}

func runHeadless(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	_, err := headless.Run(ctx, cfg, headless.Options{
		Duration:    *durationFlag,
		Out:         *outFlag,
		Orbit:       *orbitFlag,
		ToggleEvery: *toggleFlag,
	}, logger)
	return err
}
