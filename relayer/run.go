package relayer

import (
	"context"
	"time"

	"cosmossdk.io/log"

	"github.com/wormholelabs-xyz/rootsync/relayer/internal/telemetry"
)

// MaxBackoffExponent caps the backoff at interval * 2^MaxBackoffExponent.
const MaxBackoffExponent = 10

// Step is one cycle of a loop.
type Step func(ctx context.Context) error

// Backoff returns how long to sleep after a failed cycle with the given retry count.
func Backoff(interval time.Duration, retry int) time.Duration {
	return interval << min(retry, MaxBackoffExponent)
}

// LoopOptions configure Run.
type LoopOptions struct {
	Name string
	// Interval is the pause between successful cycles. Zero runs a single cycle.
	Interval time.Duration
	// AlertAfterRetries escalates to an error log once that many consecutive transient
	// failures have occurred. Zero disables escalation.
	AlertAfterRetries int
}

// Run calls step until ctx is done. Every failed cycle sleeps Backoff(interval, retry)
// and increments retry; a successful cycle resets retry and sleeps interval.
func Run(ctx context.Context, clock Clock, opts LoopOptions, logger log.Logger, step Step) error {
	logger = logger.With("loop", opts.Name)

	if opts.Interval == 0 {
		return step(ctx)
	}

	retry, transient := 0, 0
	for {
		err := step(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sleep := opts.Interval
		if err != nil {
			sleep = Backoff(opts.Interval, retry)
			retry++

			class := Classify(err)
			if class == ClassTransient {
				transient++
			} else {
				transient = 0
			}

			if opts.AlertAfterRetries > 0 && transient >= opts.AlertAfterRetries {
				logger.Error("transient failures persisting", "retries", transient, "error", err)
			} else {
				logger.Warn("cycle failed", "retry", retry, "error_class", class, "sleep", sleep, "error", err)
			}
		} else {
			retry, transient = 0, 0
		}
		telemetry.ReportRetry(opts.Name, retry)

		if err := clock.Sleep(ctx, sleep); err != nil {
			return err
		}
	}
}

// SyncStep adapts SyncOnce to a loop step.
func (d *Driver) SyncStep(ctx context.Context) error {
	_, err := d.SyncOnce(ctx)
	return err
}

// CleanupStep adapts CleanUpOnce to a loop step.
func (d *Driver) CleanupStep(ctx context.Context) error {
	_, err := d.CleanUpOnce(ctx)
	return err
}
