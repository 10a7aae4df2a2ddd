// Package shutdown ties the process lifetime to OS signals and runs the
// ordered cleanup once the process is asked to stop.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// WithSignals returns a context cancelled on the first of sigs, or on
// SIGINT/SIGTERM when none are given.
func WithSignals(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()

	return ctx, cancel
}

// Step is one named cleanup action.
type Step struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Run executes steps in order under a shared deadline. A failing step does
// not stop the ones after it; all failures are joined.
func Run(log *slog.Logger, timeout time.Duration, steps ...Step) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, s := range steps {
		start := time.Now()
		if err := s.Fn(ctx); err != nil {
			log.Error("shutdown step failed", slog.String("step", s.Name), slog.Any("err", err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		log.Info("shutdown step done", slog.String("step", s.Name), slog.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}
