package learning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecml/sampleset"
)

func TestError(t *testing.T) {
	t.Run("IsByCode", func(t *testing.T) {
		err := Errorf(CodeTooWeakClassifier, "round %d: error %.2f", 3, 0.6)
		assert.ErrorIs(t, err, ErrTooWeakClassifier)
		assert.NotErrorIs(t, err, ErrTooFewClasses)

		wrapped := fmt.Errorf("train: %w", err)
		assert.ErrorIs(t, wrapped, ErrTooWeakClassifier)

		var le *Error
		require.ErrorAs(t, wrapped, &le)
		assert.Equal(t, CodeTooWeakClassifier, le.Code)
	})

	t.Run("Unwrap", func(t *testing.T) {
		err := WrapError(CodeLearningInterrupted, "stopped", context.Canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, ErrLearningInterrupted)
		assert.Contains(t, err.Error(), "context canceled")
	})

	t.Run("CodeString", func(t *testing.T) {
		assert.Equal(t, "LearningInterrupted", CodeLearningInterrupted.String())
		assert.Equal(t, "Unknown(99)", Code(99).String())
	})
}

func TestPoll(t *testing.T) {
	assert.NoError(t, Poll(context.Background(), nil, 0.5))
	assert.NoError(t, Poll(nil, ControllerFunc(func(float64) bool { return true }), 0.5))

	err := Poll(context.Background(), ControllerFunc(func(float64) bool { return false }), 0.5)
	assert.ErrorIs(t, err, ErrLearningInterrupted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Poll(ctx, nil, 0)
	assert.ErrorIs(t, err, ErrLearningInterrupted)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFlag(t *testing.T) {
	var f Flag
	assert.True(t, f.CanContinue(0))
	f.Stop()
	assert.False(t, f.CanContinue(0))
	assert.True(t, f.Stopped())
	f.Reset()
	assert.True(t, f.CanContinue(0))
}

func TestContextController(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewContextController(ctx)
	assert.True(t, c.CanContinue(0))
	cancel()
	assert.False(t, c.CanContinue(0))
}

func TestRateController(t *testing.T) {
	t.Run("Throttles", func(t *testing.T) {
		calls := 0
		c := NewRateController(ControllerFunc(func(float64) bool {
			calls++
			return true
		}), time.Hour)

		for range 10 {
			assert.True(t, c.CanContinue(0.1))
		}
		assert.Equal(t, 1, calls)

		assert.True(t, c.CanContinue(1))
		assert.Equal(t, 2, calls)
	})

	t.Run("StopIsSticky", func(t *testing.T) {
		c := NewRateController(ControllerFunc(func(float64) bool { return false }), 0)
		assert.False(t, c.CanContinue(0.2))
		assert.False(t, c.CanContinue(0.3))
	})
}

func TestHelpers(t *testing.T) {
	s, _ := sampleset.FromRows([][]float64{{1}, {2}})
	assert.NoError(t, CheckInputs(s, nil, nil))
	assert.ErrorIs(t, CheckInputs(s, []float64{0}, nil), ErrInvalidArgument)
	assert.ErrorIs(t, CheckInputs(s, nil, []float64{1, 2, 3}), ErrInvalidArgument)

	assert.Equal(t, []float64{1, 1}, Weights(nil, 2))
	assert.False(t, IsLabel(math.NaN()))
	assert.True(t, IsLabel(1))

	t.Run("CheckLabels", func(t *testing.T) {
		assert.NoError(t, CheckLabels(nil))
		assert.NoError(t, CheckLabels([]float64{0, 1, math.NaN(), -1, MaxClasses - 1}))
		for _, bad := range []float64{math.Inf(1), 0.5, MaxClasses, 1e15} {
			assert.ErrorIs(t, CheckLabels([]float64{0, bad}), ErrInvalidArgument, "%v", bad)
		}
	})

	caps := OnlineLearner | WeightedLearner
	assert.True(t, caps.Has(OnlineLearner))
	assert.False(t, caps.Has(NonSupervisedLearner))
}
