// Package session drives an in-progress attempt on the client side: it owns
// the countdown clock and the focus-loss monitor, and guarantees the attempt
// is submitted exactly once no matter which trigger fires first.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
)

// MaxWarnings is the focus-loss count that forces submission.
const MaxWarnings = 3

// ErrAlreadySubmitted mirrors the server-side conflict. SubmitFunc
// implementations return it when the attempt was finalized elsewhere; the
// runner treats it as a successful close.
var ErrAlreadySubmitted = errors.New("attempt already submitted")

// SubmitFunc performs the actual submission. autoSubmitted is true when the
// timer or the warning threshold triggered it.
type SubmitFunc func(ctx context.Context, autoSubmitted bool) error

// Notifier receives user-facing notices from the runner.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Outcome describes how the session ended.
type Outcome struct {
	AutoSubmitted bool
	Trigger       Trigger
	Warnings      int
	Err           error
}

type Trigger string

const (
	TriggerManual     Trigger = "manual"
	TriggerTimer      Trigger = "timer"
	TriggerProctoring Trigger = "proctoring"
)

// Config parameterizes a session run.
type Config struct {
	RemainingSeconds int
	Submit           SubmitFunc
	Notifier         Notifier
	Logger           utils.Logger

	// TickInterval defaults to one second; tests shrink it.
	TickInterval time.Duration
}

// Runner serializes the timer, the proctoring monitor, and manual submission
// on one goroutine. All external inputs arrive through channels, so no state
// needs locking and the submit callback can only ever run once.
type Runner struct {
	cfg Config

	focusLost chan struct{}
	manual    chan struct{}
	done      chan Outcome
}

func NewRunner(cfg Config) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NotifierFunc(func(string) {})
	}
	return &Runner{
		cfg:       cfg,
		focusLost: make(chan struct{}, 1),
		manual:    make(chan struct{}, 1),
		done:      make(chan Outcome, 1),
	}
}

// FocusLost reports one focus-loss (tab switch or window blur) to the loop.
// Safe to call from any goroutine; events during submission are dropped.
func (r *Runner) FocusLost() {
	select {
	case r.focusLost <- struct{}{}:
	default:
	}
}

// Submit requests a manual submission.
func (r *Runner) Submit() {
	select {
	case r.manual <- struct{}{}:
	default:
	}
}

// Done yields the session outcome once the loop has finished.
func (r *Runner) Done() <-chan Outcome {
	return r.done
}

// Run drives the session until a trigger fires or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	remaining := r.cfg.RemainingSeconds
	warnings := 0

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	if remaining <= 0 {
		r.finish(ctx, TriggerTimer, warnings)
		return
	}

	for {
		select {
		case <-ctx.Done():
			r.done <- Outcome{Warnings: warnings, Err: ctx.Err()}
			return

		case <-ticker.C:
			remaining--
			if remaining <= 0 {
				r.cfg.Notifier.Notify("Time is up. Submitting your test.")
				r.finish(ctx, TriggerTimer, warnings)
				return
			}

		case <-r.focusLost:
			warnings++
			if warnings >= MaxWarnings {
				r.cfg.Notifier.Notify("Warning limit reached. Submitting your test.")
				r.finish(ctx, TriggerProctoring, warnings)
				return
			}
			r.cfg.Notifier.Notify(warningMessage(warnings))

		case <-r.manual:
			r.finish(ctx, TriggerManual, warnings)
			return
		}
	}
}

// finish invokes the submit callback once. The loop has already returned by
// the time callers read the outcome, so no second trigger can reach here.
func (r *Runner) finish(ctx context.Context, trigger Trigger, warnings int) {
	autoSubmitted := trigger != TriggerManual

	err := r.cfg.Submit(ctx, autoSubmitted)
	if errors.Is(err, ErrAlreadySubmitted) || errors.Is(err, services.ErrAttemptAlreadySubmitted) {
		// Someone else won the race; the attempt is finalized either way.
		err = nil
	}
	if err != nil && r.cfg.Logger != nil {
		r.cfg.Logger.Error("Failed to submit attempt", "trigger", trigger, "error", err)
	}

	r.done <- Outcome{
		AutoSubmitted: autoSubmitted,
		Trigger:       trigger,
		Warnings:      warnings,
		Err:           err,
	}
}

func warningMessage(warnings int) string {
	return fmt.Sprintf("Warning %d/%d: leaving the test window is recorded.", warnings, MaxWarnings)
}
