package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the
// memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for buffered samples.
	// If 0, memory is only tracked.
	MemoryLimitBytes int64

	// MaxTrainings is the maximum number of concurrent training tasks.
	// If 0, defaults to 1.
	MaxTrainings int64
}

// Controller hands out training slots and memory reservations. A nil
// *Controller imposes no limits.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	trainSem *semaphore.Weighted
	running  atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxTrainings <= 0 {
		cfg.MaxTrainings = 1
	}
	c := &Controller{
		cfg:      cfg,
		trainSem: semaphore.NewWeighted(cfg.MaxTrainings),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// AcquireMemory reserves bytes without blocking.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns a reservation.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireTraining blocks until a training slot is free or ctx is done.
func (c *Controller) AcquireTraining(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.trainSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.running.Add(1)
	return nil
}

// TryAcquireTraining takes a training slot if one is free.
func (c *Controller) TryAcquireTraining() bool {
	if c == nil {
		return true
	}
	if !c.trainSem.TryAcquire(1) {
		return false
	}
	c.running.Add(1)
	return true
}

// ReleaseTraining frees a training slot.
func (c *Controller) ReleaseTraining() {
	if c == nil {
		return
	}
	c.running.Add(-1)
	c.trainSem.Release(1)
}

// Trainings returns the number of training slots in use.
func (c *Controller) Trainings() int64 {
	if c == nil {
		return 0
	}
	return c.running.Load()
}
