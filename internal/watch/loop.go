// Package watch repeats the notification pass until the user stops it.
package watch

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultThrottle is the minimum time between two passes.
const DefaultThrottle = time.Second

// Pass runs one refresh.
type Pass func(ctx context.Context) error

// Loop clears the screen, runs a pass and waits, until cancelled.
type Loop struct {
	waiter  Waiter
	screen  Screen
	limiter *rate.Limiter
	logger  *log.Logger
	wake    chan struct{}
}

// NewLoop creates a loop. Passes are throttled to DefaultThrottle so a held
// down key cannot flood the monitoring instances.
func NewLoop(waiter Waiter, screen Screen, logger *log.Logger) *Loop {
	return &Loop{
		waiter:  waiter,
		screen:  screen,
		limiter: rate.NewLimiter(rate.Every(DefaultThrottle), 1),
		logger:  logger,
		wake:    make(chan struct{}, 1),
	}
}

// SetThrottle changes the minimum time between passes. Zero disables it.
func (l *Loop) SetThrottle(d time.Duration) {
	if d <= 0 {
		l.limiter.SetLimit(rate.Inf)
		return
	}
	l.limiter.SetLimit(rate.Every(d))
}

// Wake ends the current wait early. It never blocks.
func (l *Loop) Wake() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run repeats pass until ctx is cancelled or the user interrupts, both of
// which return nil. interval is asked before every wait so it can follow a
// reloaded config. An error from pass stops the loop and is returned.
func (l *Loop) Run(ctx context.Context, interval func() time.Duration, pass Pass) error {
	for {
		if err := l.limiter.Wait(ctx); err != nil {
			return l.exit(ctx, err)
		}

		l.screen.Clear()
		if err := pass(ctx); err != nil {
			return l.exit(ctx, err)
		}

		if err := l.wait(ctx, interval()); err != nil {
			return l.exit(ctx, err)
		}
	}
}

func (l *Loop) wait(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-l.wake:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	err := l.waiter.Wait(waitCtx, timeout)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		l.logger.Debug("wait cut short")
		return nil
	}
	return err
}

// exit maps user cancellation to a clean stop.
func (l *Loop) exit(ctx context.Context, err error) error {
	if errors.Is(err, ErrInterrupted) || ctx.Err() != nil {
		l.logger.Debug("watch stopped", "reason", err)
		return nil
	}
	return err
}
