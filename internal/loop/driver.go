// Package loop drives a tick function at a fixed rate on a single goroutine.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("loop: already started")
	ErrNotStarted     = errors.New("loop: not started")
	ErrStopped        = errors.New("loop: stopped")
)

// Config controls a Driver.
type Config struct {
	// Tick is called once per interval. Required.
	Tick func()
	// Interval between ticks. Required.
	Interval time.Duration
	// QueueSize bounds jobs waiting for the loop goroutine. Defaults to 64.
	QueueSize int
	Logger    *slog.Logger
}

// Driver calls Tick once per interval until stopped. Jobs passed to Submit
// run on the same goroutine between ticks, so state shared by ticks and
// jobs needs no locking. Ticks missed while the goroutine is busy are
// dropped, not replayed.
type Driver struct {
	tick     func()
	interval time.Duration
	jobs     chan func()
	logger   *slog.Logger

	started atomic.Bool
	stopped atomic.Bool
	ticks   atomic.Uint64

	quit chan struct{}
	done chan struct{}
}

// New creates a Driver with the supplied configuration.
func New(cfg Config) (*Driver, error) {
	if cfg.Tick == nil {
		return nil, errors.New("loop: tick func is required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("loop: interval must be positive")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		tick:     cfg.Tick,
		interval: cfg.Interval,
		jobs:     make(chan func(), queueSize),
		logger:   logger,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the loop goroutine. It runs until Stop or until ctx is
// cancelled.
func (d *Driver) Start(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go d.run(ctx)
	return nil
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.DebugContext(ctx, "loop started", "interval", d.interval)
	for {
		select {
		case <-ctx.Done():
			d.logger.DebugContext(ctx, "loop context cancelled", "err", ctx.Err(), "ticks", d.ticks.Load())
			return
		case <-d.quit:
			d.logger.DebugContext(ctx, "loop stopped", "ticks", d.ticks.Load())
			return
		case job := <-d.jobs:
			job()
		case <-ticker.C:
			d.tick()
			d.ticks.Add(1)
		}
	}
}

// Submit queues fn to run on the loop goroutine.
func (d *Driver) Submit(ctx context.Context, fn func()) error {
	if !d.started.Load() {
		return ErrNotStarted
	}
	if d.stopped.Load() {
		return ErrStopped
	}
	select {
	case <-d.done:
		return ErrStopped
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrStopped
	case d.jobs <- fn:
		return nil
	}
}

// Stop halts the loop and waits for the goroutine to exit or ctx to end.
func (d *Driver) Stop(ctx context.Context) error {
	if !d.started.Load() {
		return ErrNotStarted
	}
	if !d.stopped.CompareAndSwap(false, true) {
		return ErrStopped
	}
	close(d.quit)
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the loop goroutine has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

// Ticks is the number of completed ticks.
func (d *Driver) Ticks() uint64 {
	return d.ticks.Load()
}
