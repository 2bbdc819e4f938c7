package vecml

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/hupe1980/vecml/blobstore"
	"github.com/hupe1980/vecml/internal/resource"
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/persist"
	"github.com/hupe1980/vecml/sampleset"
)

// ModelFactory creates an untrained model for each training run.
type ModelFactory func() learning.Model

// Trainer collects samples online and trains models on them in the
// background.
//
// Add may be called while a run is in progress: Start snapshots the buffer,
// so later samples wait for the next run. A trained model is installed only
// when its run succeeds; classification always sees either the previous or
// the new model, never one in training.
type Trainer struct {
	opts    options
	factory ModelFactory

	mu      sync.RWMutex
	samples *sampleset.SampleSet
	labels  []float64
	weights []float64
	bytes   int64
	model   learning.Model

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// NewTrainer creates a Trainer that trains models made by factory.
func NewTrainer(factory ModelFactory, opts ...Option) *Trainer {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limiter == nil {
		o.limiter = NewLimiter(Limits{})
	}
	if o.name != "" {
		o.logger = o.logger.WithModel(o.name)
	}
	return &Trainer{
		opts:    o,
		factory: factory,
		samples: sampleset.New(0),
	}
}

func (t *Trainer) resources() *resource.Controller { return t.opts.limiter.rc }

// rowBytes is the buffer cost of one sample with its label and weight.
func rowBytes(features int) int64 { return int64(features+2) * 8 }

// Add appends a sample to the buffer. Use NaN as label for unlabeled data.
func (t *Trainer) Add(features []float64, label, weight float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.samples.Len() > 0 && len(features) != t.samples.Features() {
		return learning.Errorf(learning.CodeFeatureCountMismatch,
			"buffer has %d features, sample has %d", t.samples.Features(), len(features))
	}
	cost := rowBytes(len(features))
	if err := t.resources().AcquireMemory(cost); err != nil {
		return errors.Join(ErrBufferFull, err)
	}
	if err := t.samples.Append(features); err != nil {
		t.resources().ReleaseMemory(cost)
		return learning.WrapError(learning.CodeFeatureCountMismatch, "append sample", err)
	}
	t.labels = append(t.labels, label)
	t.weights = append(t.weights, weight)
	t.bytes += cost
	t.opts.metricsCollector.RecordBuffer(t.samples.Len(), t.bytes)
	return nil
}

// Len returns the number of buffered samples.
func (t *Trainer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.samples.Len()
}

// Reset empties the sample buffer. The installed model is kept.
func (t *Trainer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resources().ReleaseMemory(t.bytes)
	t.samples = sampleset.New(0)
	t.labels, t.weights, t.bytes = nil, nil, 0
	t.opts.metricsCollector.RecordBuffer(0, 0)
}

// Start trains a fresh model on a snapshot of the buffer in a new
// goroutine. It returns ErrTrainingRunning if a run is still active.
func (t *Trainer) Start(ctx context.Context) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.done != nil {
		select {
		case <-t.done:
		default:
			return ErrTrainingRunning
		}
	}

	t.mu.RLock()
	samples := t.samples.Clone()
	labels := append([]float64(nil), t.labels...)
	weights := append([]float64(nil), t.weights...)
	t.mu.RUnlock()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done, t.lastErr = cancel, done, nil

	go func() {
		defer close(done)
		defer cancel()
		err := t.train(runCtx, samples, labels, weights)
		t.runMu.Lock()
		t.lastErr = err
		t.runMu.Unlock()
	}()
	return nil
}

func (t *Trainer) train(ctx context.Context, samples *sampleset.SampleSet, labels, weights []float64) error {
	if err := t.resources().AcquireTraining(ctx); err != nil {
		return learning.WrapError(learning.CodeLearningInterrupted, "waiting for a training slot", err)
	}
	defer t.resources().ReleaseTraining()

	if samples.Len() == 0 {
		labels, weights = nil, nil
	}

	start := time.Now()
	model := t.factory()
	err := model.Learn(ctx, samples, labels, weights)
	took := time.Since(start)

	t.opts.logger.LogLearn(ctx, samples.Len(), took, err)
	t.opts.metricsCollector.RecordLearn(samples.Len(), took, err)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.model = model
	t.mu.Unlock()
	return nil
}

// Running reports whether a training run is active.
func (t *Trainer) Running() bool {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the current run finishes and returns its error.
func (t *Trainer) Wait() error {
	t.runMu.Lock()
	done := t.done
	t.runMu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	t.runMu.Lock()
	defer t.runMu.Unlock()
	return t.lastErr
}

// Stop interrupts the current run and waits for it. The previously
// installed model stays in place.
func (t *Trainer) Stop() error {
	t.runMu.Lock()
	cancel := t.cancel
	t.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	return t.Wait()
}

// Model returns the installed model, or nil before the first successful run.
func (t *Trainer) Model() learning.Model {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.model
}

// Classify classifies features with the installed model. It returns NaN
// when no model is installed.
func (t *Trainer) Classify(features []float64) float64 {
	start := time.Now()
	t.mu.RLock()
	result := math.NaN()
	if t.model != nil {
		result = t.model.Classify(features)
	}
	t.mu.RUnlock()

	t.opts.metricsCollector.RecordClassify(time.Since(start), math.IsNaN(result))
	t.opts.logger.LogClassify(context.Background(), len(features), result)
	return result
}

// Save persists the installed model.
func (t *Trainer) Save(ctx context.Context, store blobstore.Store, name string, opts ...persist.Option) error {
	model := t.Model()
	if model == nil {
		t.opts.logger.LogSave(ctx, name, ErrNoModel)
		return ErrNoModel
	}
	err := persist.Save(ctx, store, name, model, opts...)
	t.opts.logger.LogSave(ctx, name, err)
	return err
}

// Load installs a persisted model. The model must be trainable, which
// excludes bare kd-trees.
func (t *Trainer) Load(ctx context.Context, store blobstore.Store, name string) error {
	m, err := persist.Load(ctx, store, name)
	if err == nil {
		model, ok := m.(learning.Model)
		if !ok {
			err = errors.Join(persist.ErrKindMismatch, learning.Errorf(learning.CodeInvalidArgument, "%T is not a model", m))
		} else {
			t.mu.Lock()
			t.model = model
			t.mu.Unlock()
		}
	}
	t.opts.logger.LogLoad(ctx, name, err)
	return err
}
