package utils

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Outcome is the classification of one outbound call attempt
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeThrottled
	OutcomeFailed
)

// CallResult is what a Classifier makes of an outbound call error
type CallResult struct {
	Outcome    Outcome
	RetryAfter time.Duration
	Err        error
}

// Classifier turns a transport error (nil on success) into a typed result
type Classifier func(err error) CallResult

// DispatchMetrics tracks outbound call volume
type DispatchMetrics struct {
	TotalCalls     int64
	FailedCalls    int64
	ThrottleEvents int64
	ThrottledTime  int64 // in milliseconds
}

// Dispatcher runs outbound calls and absorbs throttle signals by waiting and retrying.
// MaxRetries of zero means retry for as long as the transport keeps asking.
type Dispatcher struct {
	classify   Classifier
	buffer     time.Duration
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
	metrics    DispatchMetrics
}

// NewDispatcher creates a dispatcher that waits retry-after plus buffer on throttling
func NewDispatcher(classify Classifier, buffer time.Duration, maxRetries int) *Dispatcher {
	return &Dispatcher{
		classify:   classify,
		buffer:     buffer,
		maxRetries: maxRetries,
		sleep:      SleepContext,
	}
}

// WithSleep replaces the wait function (tests use it to skip real delays)
func (d *Dispatcher) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Dispatcher {
	d.sleep = sleep
	return d
}

// Do executes call until it is done, fails, or the retry budget runs out
func (d *Dispatcher) Do(ctx context.Context, call func() error) error {
	for attempt := 0; ; attempt++ {
		atomic.AddInt64(&d.metrics.TotalCalls, 1)

		res := d.classify(call())
		switch res.Outcome {
		case OutcomeDone:
			return nil
		case OutcomeFailed:
			atomic.AddInt64(&d.metrics.FailedCalls, 1)
			return res.Err
		}

		atomic.AddInt64(&d.metrics.ThrottleEvents, 1)
		if d.maxRetries > 0 && attempt >= d.maxRetries {
			atomic.AddInt64(&d.metrics.FailedCalls, 1)
			return fmt.Errorf("%w after %d retries: %v", ErrThrottled, attempt, res.Err)
		}

		wait := res.RetryAfter + d.buffer
		atomic.AddInt64(&d.metrics.ThrottledTime, wait.Milliseconds())
		AreaLogger("DISPATCH").Debugf("Throttled, retrying in %v", wait)

		if err := d.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// GetMetrics returns a snapshot of the dispatch counters
func (d *Dispatcher) GetMetrics() DispatchMetrics {
	return DispatchMetrics{
		TotalCalls:     atomic.LoadInt64(&d.metrics.TotalCalls),
		FailedCalls:    atomic.LoadInt64(&d.metrics.FailedCalls),
		ThrottleEvents: atomic.LoadInt64(&d.metrics.ThrottleEvents),
		ThrottledTime:  atomic.LoadInt64(&d.metrics.ThrottledTime),
	}
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
