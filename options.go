package vecml

import (
	"github.com/hupe1980/vecml/internal/resource"
)

// Limiter bounds the resources of every Trainer it is shared with.
type Limiter struct {
	rc *resource.Controller
}

// Limits configures a Limiter.
type Limits struct {
	// MemoryLimitBytes caps the bytes held by sample buffers. 0 means
	// unlimited.
	MemoryLimitBytes int64
	// MaxConcurrentTrainings caps the training runs in flight. Default: 1.
	MaxConcurrentTrainings int64
}

// NewLimiter creates a Limiter.
func NewLimiter(l Limits) *Limiter {
	return &Limiter{rc: resource.NewController(resource.Config{
		MemoryLimitBytes: l.MemoryLimitBytes,
		MaxTrainings:     l.MaxConcurrentTrainings,
	})}
}

// MemoryUsage returns the bytes currently held by sample buffers.
func (l *Limiter) MemoryUsage() int64 { return l.rc.MemoryUsage() }

// Trainings returns the number of training runs in flight.
func (l *Limiter) Trainings() int64 { return l.rc.Trainings() }

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	limiter          *Limiter
	name             string
}

// Option configures a Trainer.
type Option func(*options)

// WithLogger sets the logger. Default: NoopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics sink. Default: NoopMetricsCollector.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metricsCollector = m
		}
	}
}

// WithLimiter shares resource limits across trainers. By default each
// Trainer gets its own Limiter allowing one run and unlimited memory.
func WithLimiter(l *Limiter) Option {
	return func(o *options) {
		if l != nil {
			o.limiter = l
		}
	}
}

// WithName names the model in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
