package learning

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Controller is polled by long-running loops. It receives the progress
// fraction in [0,1] (or NaN if unknown) and returns false to request a stop.
// Implementations may use the call for progress reporting.
type Controller interface {
	CanContinue(progress float64) bool
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(progress float64) bool

// CanContinue implements Controller.
func (f ControllerFunc) CanContinue(progress float64) bool { return f(progress) }

// Poll checks ctx and c. It returns an error carrying CodeLearningInterrupted
// if ctx is done or c requests a stop. Either argument may be nil.
func Poll(ctx context.Context, c Controller, progress float64) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return WrapError(CodeLearningInterrupted, "learning interrupted", err)
		}
	}
	if c != nil && !c.CanContinue(progress) {
		return ErrLearningInterrupted
	}
	return nil
}

// Flag is a Controller backed by an atomic stop flag. It is safe to call
// Stop from another goroutine while a learner polls it.
type Flag struct {
	stopped atomic.Bool
}

// Stop requests cancellation.
func (f *Flag) Stop() { f.stopped.Store(true) }

// Reset clears a previous stop request.
func (f *Flag) Reset() { f.stopped.Store(false) }

// Stopped reports whether Stop has been called.
func (f *Flag) Stopped() bool { return f.stopped.Load() }

// CanContinue implements Controller.
func (f *Flag) CanContinue(float64) bool { return !f.stopped.Load() }

// ContextController stops when its context is done.
type ContextController struct {
	ctx context.Context
}

// NewContextController wraps ctx.
func NewContextController(ctx context.Context) *ContextController {
	return &ContextController{ctx: ctx}
}

// CanContinue implements Controller.
func (c *ContextController) CanContinue(float64) bool { return c.ctx.Err() == nil }

// RateController forwards progress to next at most once per interval.
// Calls in between reuse the last decision; completion (progress >= 1) is
// always forwarded. Once next has returned false the controller stays stopped.
type RateController struct {
	next    Controller
	limiter *rate.Limiter
	stopped atomic.Bool
}

// NewRateController creates a throttling controller. An interval <= 0
// forwards every call.
func NewRateController(next Controller, interval time.Duration) *RateController {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateController{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// CanContinue implements Controller.
func (c *RateController) CanContinue(progress float64) bool {
	if c.stopped.Load() {
		return false
	}
	if progress < 1 && !c.limiter.Allow() {
		return true
	}
	if !c.next.CanContinue(progress) {
		c.stopped.Store(true)
		return false
	}
	return true
}
