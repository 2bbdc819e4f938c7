package vecml

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics from a Trainer.
// Implement it to bridge to a monitoring system.
type MetricsCollector interface {
	// RecordLearn is called after each training run with the number of
	// samples in the snapshot.
	RecordLearn(samples int, duration time.Duration, err error)

	// RecordClassify is called after each classification. rejected is true
	// when the model returned NaN.
	RecordClassify(duration time.Duration, rejected bool)

	// RecordBuffer is called whenever the sample buffer changes size.
	RecordBuffer(samples int, bytes int64)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLearn(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordClassify(time.Duration, bool)    {}
func (NoopMetricsCollector) RecordBuffer(int, int64)               {}

// BasicMetricsCollector keeps counters in memory.
type BasicMetricsCollector struct {
	LearnCount       atomic.Int64
	LearnErrors      atomic.Int64
	LearnSamples     atomic.Int64
	LearnTotalNanos  atomic.Int64
	ClassifyCount    atomic.Int64
	ClassifyRejected atomic.Int64
	ClassifyNanos    atomic.Int64
	BufferSamples    atomic.Int64
	BufferBytes      atomic.Int64
}

// RecordLearn implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLearn(samples int, duration time.Duration, err error) {
	b.LearnCount.Add(1)
	b.LearnSamples.Add(int64(samples))
	b.LearnTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LearnErrors.Add(1)
	}
}

// RecordClassify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClassify(duration time.Duration, rejected bool) {
	b.ClassifyCount.Add(1)
	b.ClassifyNanos.Add(duration.Nanoseconds())
	if rejected {
		b.ClassifyRejected.Add(1)
	}
}

// RecordBuffer implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuffer(samples int, bytes int64) {
	b.BufferSamples.Store(int64(samples))
	b.BufferBytes.Store(bytes)
}

// BasicMetricsStats is a point-in-time copy of BasicMetricsCollector.
type BasicMetricsStats struct {
	LearnCount       int64
	LearnErrors      int64
	LearnAvgNanos    int64
	ClassifyCount    int64
	ClassifyRejected int64
	ClassifyAvgNanos int64
	BufferSamples    int64
	BufferBytes      int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LearnCount:       b.LearnCount.Load(),
		LearnErrors:      b.LearnErrors.Load(),
		LearnAvgNanos:    avg(b.LearnTotalNanos.Load(), b.LearnCount.Load()),
		ClassifyCount:    b.ClassifyCount.Load(),
		ClassifyRejected: b.ClassifyRejected.Load(),
		ClassifyAvgNanos: avg(b.ClassifyNanos.Load(), b.ClassifyCount.Load()),
		BufferSamples:    b.BufferSamples.Load(),
		BufferBytes:      b.BufferBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

var (
	_ MetricsCollector = NoopMetricsCollector{}
	_ MetricsCollector = (*BasicMetricsCollector)(nil)
)
