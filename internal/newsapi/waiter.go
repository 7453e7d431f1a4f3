package newsapi

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNotReady is returned when the backend stays down for every attempt.
var ErrNotReady = errors.New("backend not ready")

type HealthChecker interface {
	Health(ctx context.Context) error
}

// ticker is an interface so we can swap out time.Ticker in tests.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type tickerFactory func(d time.Duration) ticker

// timeTicker is the real implementation backed by time.Ticker.
type timeTicker struct {
	*time.Ticker
}

func (t *timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func (t *timeTicker) Stop() {
	t.Ticker.Stop()
}

// Waiter polls a health endpoint until a cold-starting backend answers.
type Waiter struct {
	checker     HealthChecker
	maxAttempts int // <= 0 is unlimited
	logger      *zap.Logger
	newTicker   tickerFactory
}

func NewWaiter(checker HealthChecker, maxAttempts int, logger *zap.Logger) *Waiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Waiter{
		checker:     checker,
		maxAttempts: maxAttempts,
		logger:      logger,
		newTicker: func(d time.Duration) ticker {
			return &timeTicker{time.NewTicker(d)}
		},
	}
}

// Wait checks once immediately and then on every tick. It returns nil on the
// first healthy answer, ErrNotReady after maxAttempts, or ctx.Err().
func (w *Waiter) Wait(ctx context.Context, interval time.Duration) error {
	attempt := 0

	check := func() bool {
		attempt++
		err := w.checker.Health(ctx)
		if err == nil {
			w.logger.Info("backend ready", zap.Int("attempt", attempt))
			return true
		}
		w.logger.Info("backend not ready yet", zap.Int("attempt", attempt), zap.Error(err))
		return false
	}

	if check() {
		return nil
	}

	t := w.newTicker(interval)
	defer t.Stop()

	for {
		if w.maxAttempts > 0 && attempt >= w.maxAttempts {
			w.logger.Warn("giving up waiting for backend", zap.Int("attempts", attempt))
			return ErrNotReady
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			if check() {
				return nil
			}
		}
	}
}
