package learning

import (
	"fmt"
)

// Code discriminates the failure reported by an Error.
type Code int

const (
	CodeUnknown Code = iota
	CodeLearningInterrupted
	CodeFactoryNotSet
	CodeTooFewClasses
	CodeTooManyClasses
	CodeTooWeakClassifier
	CodeFeatureCountMismatch
	CodeBoundaryMismatch
	CodeInvalidArgument
)

func (c Code) String() string {
	switch c {
	case CodeLearningInterrupted:
		return "LearningInterrupted"
	case CodeFactoryNotSet:
		return "FactoryNotSet"
	case CodeTooFewClasses:
		return "TooFewClasses"
	case CodeTooManyClasses:
		return "TooManyClasses"
	case CodeTooWeakClassifier:
		return "TooWeakClassifier"
	case CodeFeatureCountMismatch:
		return "FeatureCountMismatch"
	case CodeBoundaryMismatch:
		return "BoundaryMismatch"
	case CodeInvalidArgument:
		return "InvalidArgument"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is the single error family of the learning algorithms.
//
// Two errors match under errors.Is when their codes are equal, so callers
// compare against the sentinels below regardless of message or cause.
// The original underlying error (if any) can be accessed via errors.Unwrap.
type Error struct {
	Code  Code
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates an error with the given code and message.
func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Errorf creates an error with the given code and a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// WrapError attaches cause to a new error carrying code.
func WrapError(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, cause: cause}
}

var (
	// ErrLearningInterrupted is returned when a controller or context stops a
	// long-running learn or build.
	ErrLearningInterrupted = NewError(CodeLearningInterrupted, "learning interrupted")

	// ErrFactoryNotSet is returned by boosting when no weak learner factory
	// is installed.
	ErrFactoryNotSet = NewError(CodeFactoryNotSet, "weak classifier factory not set")

	// ErrTooFewClasses is returned when training labels contain fewer than
	// two classes.
	ErrTooFewClasses = NewError(CodeTooFewClasses, "too few classes")

	// ErrTooManyClasses is returned when a binary-only algorithm sees more
	// than two classes.
	ErrTooManyClasses = NewError(CodeTooManyClasses, "too many classes")

	// ErrTooWeakClassifier is returned when a weak classifier does not beat
	// chance level.
	ErrTooWeakClassifier = NewError(CodeTooWeakClassifier, "too weak classifier")

	// ErrFeatureCountMismatch is returned when vector lengths disagree.
	ErrFeatureCountMismatch = NewError(CodeFeatureCountMismatch, "feature count mismatch")

	// ErrBoundaryMismatch is returned when multi-feature boundaries do not
	// match the configured measures.
	ErrBoundaryMismatch = NewError(CodeBoundaryMismatch, "boundary mismatch")

	// ErrInvalidArgument is returned for malformed inputs.
	ErrInvalidArgument = NewError(CodeInvalidArgument, "invalid argument")
)
