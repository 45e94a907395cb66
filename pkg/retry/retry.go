package retry

import (
	"context"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"math"
	"time"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// SleepFunc blocks for the given duration or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// NotifyFunc is called after a failed attempt, before sleeping. delay is zero
// when no further attempt will be made.
type NotifyFunc func(attempt int, err error, delay time.Duration)

type Policy struct {

	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// BackoffBase is raised to the power of the attempt index to get the delay
	// in seconds before the next attempt: base^1, base^2, ...
	BackoffBase float64

	// Sleep defaults to a context-aware time.Sleep.
	Sleep SleepFunc

	// Notify is optional.
	Notify NotifyFunc
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BackoffBase <= 1 {
		return fmt.Errorf("backoff base must be greater than 1, got %v", p.BackoffBase)
	}
	return nil
}

// Delay returns the pause after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	return time.Duration(math.Pow(p.BackoffBase, float64(attempt)) * float64(time.Second))
}

// Do calls op until it succeeds or MaxAttempts is reached. The returned error
// wraps both ErrRetriesExhausted and the last error from op.
func (p Policy) Do(ctx context.Context, op func(attempt int) error) (attempts int, err error) {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := &sleepTimer{ctx: ctx, cancel: cancel, sleep: p.Sleep, c: make(chan time.Time, 1)}
	if timer.sleep == nil {
		timer.sleep = Sleep
	}

	var lastErr error
	operation := func() error {
		attempts++
		lastErr = op(attempts)
		return lastErr
	}

	notify := func(err error, delay time.Duration) {
		p.notify(attempts, err, delay)
	}

	err = backoff.RetryNotifyWithTimer(operation, backoff.WithContext(p.backOff(), ctx), notify, timer)
	switch {
	case err == nil:
		return attempts, nil
	case timer.err != nil:
		return attempts, errors.Join(timer.err, lastErr)
	case ctx.Err() != nil:
		return attempts, errors.Join(ctx.Err(), lastErr)
	}

	p.notify(attempts, lastErr, 0)
	return attempts, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

// backOff yields BackoffBase^1, BackoffBase^2, ... seconds without randomization.
func (p Policy) backOff() backoff.BackOff {
	if p.MaxAttempts <= 1 {
		return &backoff.StopBackOff{}
	}

	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = p.Delay(1)
	exponential.Multiplier = p.BackoffBase
	exponential.RandomizationFactor = 0
	exponential.MaxInterval = time.Duration(math.MaxInt64)
	exponential.MaxElapsedTime = 0

	return backoff.WithMaxRetries(exponential, uint64(p.MaxAttempts-1))
}

func (p Policy) notify(attempt int, err error, delay time.Duration) {
	if p.Notify != nil {
		p.Notify(attempt, err, delay)
	}
}

func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// sleepTimer lets the backoff loop wait through a SleepFunc. A failed sleep cancels
// the loop context and keeps the sleep error.
type sleepTimer struct {
	ctx    context.Context
	cancel context.CancelFunc
	sleep  SleepFunc
	c      chan time.Time
	err    error
}

func (t *sleepTimer) Start(d time.Duration) {
	if err := t.sleep(t.ctx, d); err != nil {
		t.err = err
		t.cancel()
		return
	}
	t.c <- time.Now()
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time {
	return t.c
}
