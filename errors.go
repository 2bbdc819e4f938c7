package vecml

import (
	"errors"

	"github.com/hupe1980/vecml/learning"
)

// Learning errors, re-exported for callers that only import the root
// package. Match them with errors.Is.
var (
	ErrLearningInterrupted  = learning.ErrLearningInterrupted
	ErrFactoryNotSet        = learning.ErrFactoryNotSet
	ErrTooFewClasses        = learning.ErrTooFewClasses
	ErrTooManyClasses       = learning.ErrTooManyClasses
	ErrTooWeakClassifier    = learning.ErrTooWeakClassifier
	ErrFeatureCountMismatch = learning.ErrFeatureCountMismatch
	ErrBoundaryMismatch     = learning.ErrBoundaryMismatch
	ErrInvalidArgument      = learning.ErrInvalidArgument
)

var (
	// ErrTrainingRunning is returned by Start while a previous run is active.
	ErrTrainingRunning = errors.New("training already running")
	// ErrNoModel is returned when saving before any model was trained.
	ErrNoModel = errors.New("no trained model")
	// ErrBufferFull is returned by Add when the memory limit is reached.
	ErrBufferFull = errors.New("sample buffer full")
)
