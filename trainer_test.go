package vecml

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecml/blobstore"
	"github.com/hupe1980/vecml/boost"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/persist"
	"github.com/hupe1980/vecml/sampleset"
	"github.com/hupe1980/vecml/stump"
	"github.com/hupe1980/vecml/testutil"
)

func stumps() learning.Model { return stump.New() }

func fill(t *testing.T, tr *Trainer, n int) {
	t.Helper()
	rng := testutil.NewRNG(5)
	for range n {
		x := rng.UniformVector(2)
		label := 0.0
		if x[0] > 0.5 {
			label = 1
		}
		require.NoError(t, tr.Add(x, label, 1))
	}
}

// blocking is a model whose Learn waits until released or canceled.
type blocking struct {
	started chan struct{}
	release chan struct{}
	value   float64
}

func (b *blocking) Learn(ctx context.Context, _ *sampleset.SampleSet, _, _ []float64) error {
	close(b.started)
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return learning.Poll(ctx, nil, 0)
	}
}
func (b *blocking) LearnOne([]float64, float64, float64) float64 { return math.NaN() }
func (b *blocking) Converged() bool                              { return true }
func (b *blocking) Capabilities() learning.Capabilities          { return 0 }
func (b *blocking) Classify([]float64) float64                   { return b.value }

func TestTrainer(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	tr := NewTrainer(stumps, WithMetricsCollector(metrics))

	assert.True(t, math.IsNaN(tr.Classify([]float64{0.9, 0.1})))
	assert.Nil(t, tr.Model())
	assert.False(t, tr.Running())
	require.NoError(t, tr.Wait())

	fill(t, tr, 100)
	assert.Equal(t, 100, tr.Len())

	require.NoError(t, tr.Start(ctx))
	require.NoError(t, tr.Wait())
	assert.False(t, tr.Running())
	require.NotNil(t, tr.Model())
	assert.Equal(t, 1.0, tr.Classify([]float64{0.9, 0.1}))
	assert.Equal(t, 0.0, tr.Classify([]float64{0.1, 0.9}))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LearnCount)
	assert.Equal(t, int64(0), stats.LearnErrors)
	assert.Equal(t, int64(3), stats.ClassifyCount)
	assert.Equal(t, int64(1), stats.ClassifyRejected)
	assert.Equal(t, int64(100), stats.BufferSamples)
	assert.Equal(t, int64(100*4*8), stats.BufferBytes)

	t.Run("FeatureMismatch", func(t *testing.T) {
		err := tr.Add([]float64{1, 2, 3}, 0, 1)
		assert.ErrorIs(t, err, learning.ErrFeatureCountMismatch)
		assert.Equal(t, 100, tr.Len())
	})

	t.Run("Reset", func(t *testing.T) {
		tr.Reset()
		assert.Equal(t, 0, tr.Len())
		assert.NotNil(t, tr.Model())
		require.NoError(t, tr.Add([]float64{1, 2, 3}, 0, 1))
	})
}

func TestTrainerFailedRunKeepsModel(t *testing.T) {
	tr := NewTrainer(func() learning.Model {
		return boost.New(boost.WithFactory(boost.StumpFactory()))
	})
	fill(t, tr, 50)
	require.NoError(t, tr.Start(context.Background()))
	require.NoError(t, tr.Wait())
	before := tr.Model()

	// A single class cannot be boosted.
	tr.Reset()
	require.NoError(t, tr.Add([]float64{0, 0}, 0, 1))
	require.NoError(t, tr.Add([]float64{1, 1}, 0, 1))
	require.NoError(t, tr.Start(context.Background()))
	assert.ErrorIs(t, tr.Wait(), learning.ErrTooFewClasses)
	assert.Same(t, before, tr.Model())
}

func TestTrainerStop(t *testing.T) {
	m := &blocking{started: make(chan struct{}), release: make(chan struct{})}
	tr := NewTrainer(func() learning.Model { return m })

	require.NoError(t, tr.Start(context.Background()))
	<-m.started
	assert.True(t, tr.Running())
	assert.ErrorIs(t, tr.Start(context.Background()), ErrTrainingRunning)

	// Samples added during a run are buffered for the next one.
	require.NoError(t, tr.Add([]float64{1}, 0, 1))
	assert.Equal(t, 1, tr.Len())

	assert.ErrorIs(t, tr.Stop(), learning.ErrLearningInterrupted)
	assert.False(t, tr.Running())
	assert.Nil(t, tr.Model())
}

func TestTrainerSwap(t *testing.T) {
	first := &blocking{started: make(chan struct{}), release: make(chan struct{}), value: 1}
	second := &blocking{started: make(chan struct{}), release: make(chan struct{}), value: 2}
	models := []*blocking{first, second}
	var mu sync.Mutex
	tr := NewTrainer(func() learning.Model {
		mu.Lock()
		defer mu.Unlock()
		m := models[0]
		models = models[1:]
		return m
	})

	require.NoError(t, tr.Start(context.Background()))
	close(first.release)
	require.NoError(t, tr.Wait())
	assert.Equal(t, 1.0, tr.Classify(nil))

	require.NoError(t, tr.Start(context.Background()))
	<-second.started
	// The old model answers while the new one trains.
	assert.Equal(t, 1.0, tr.Classify(nil))
	close(second.release)
	require.NoError(t, tr.Wait())
	assert.Equal(t, 2.0, tr.Classify(nil))
}

func TestLimiter(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		limiter := NewLimiter(Limits{MemoryLimitBytes: 3 * rowBytes(2)})
		a := NewTrainer(stumps, WithLimiter(limiter))
		b := NewTrainer(stumps, WithLimiter(limiter))

		require.NoError(t, a.Add([]float64{1, 2}, 0, 1))
		require.NoError(t, a.Add([]float64{1, 2}, 0, 1))
		require.NoError(t, b.Add([]float64{1, 2}, 0, 1))
		assert.ErrorIs(t, b.Add([]float64{1, 2}, 0, 1), ErrBufferFull)
		assert.Equal(t, 3*rowBytes(2), limiter.MemoryUsage())

		a.Reset()
		require.NoError(t, b.Add([]float64{1, 2}, 0, 1))
		assert.Equal(t, 2*rowBytes(2), limiter.MemoryUsage())
	})

	t.Run("Trainings", func(t *testing.T) {
		limiter := NewLimiter(Limits{MaxConcurrentTrainings: 1})
		m := &blocking{started: make(chan struct{}), release: make(chan struct{})}
		a := NewTrainer(func() learning.Model { return m }, WithLimiter(limiter))
		b := NewTrainer(stumps, WithLimiter(limiter))

		require.NoError(t, a.Start(context.Background()))
		<-m.started
		assert.Equal(t, int64(1), limiter.Trainings())

		// b waits for the slot; stopping it while queued interrupts it.
		require.NoError(t, b.Start(context.Background()))
		assert.ErrorIs(t, b.Stop(), learning.ErrLearningInterrupted)

		close(m.release)
		require.NoError(t, a.Wait())
		assert.Equal(t, int64(0), limiter.Trainings())
	})
}

func TestTrainerPersistence(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	tr := NewTrainer(stumps, WithLogger(logger), WithName("demo"))
	assert.ErrorIs(t, tr.Save(ctx, store, "demo.vml"), ErrNoModel)

	fill(t, tr, 40)
	require.NoError(t, tr.Start(ctx))
	require.NoError(t, tr.Wait())
	require.NoError(t, tr.Save(ctx, store, "demo.vml", persist.WithCompression(persist.CompressionLZ4)))

	other := NewTrainer(stumps)
	require.NoError(t, other.Load(ctx, store, "demo.vml"))
	assert.Equal(t, tr.Classify([]float64{0.8, 0.3}), other.Classify([]float64{0.8, 0.3}))

	assert.ErrorIs(t, other.Load(ctx, store, "missing.vml"), blobstore.ErrNotFound)

	out := buf.String()
	assert.Contains(t, out, "learning completed")
	assert.Contains(t, out, "model saved")
	assert.Contains(t, out, "model=demo")
}
