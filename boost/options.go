package boost

import (
	"io"
	"log/slog"

	"github.com/hupe1980/vecml/learning"
)

// DefaultMaxClassifiers is the default ensemble size limit.
const DefaultMaxClassifiers = 100

type options struct {
	factory        Factory
	algorithm      Algorithm
	maxClassifiers int
	maxRounds      int
	minError       float64
	controller     learning.Controller
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		algorithm:      RealBoost,
		maxClassifiers: DefaultMaxClassifiers,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Classifier.
type Option func(*options)

// WithFactory installs the weak classifier factory. Learn fails without one.
func WithFactory(f Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithAlgorithm selects the boosting variant. Default: RealBoost.
func WithAlgorithm(a Algorithm) Option {
	return func(o *options) { o.algorithm = a }
}

// WithMaxClassifiers limits the ensemble size. Values below 1 are treated
// as 1. FloatBoost may train up to three times as many weak classifiers
// because it removes some of them again; see WithMaxRounds.
func WithMaxClassifiers(n int) Option {
	return func(o *options) { o.maxClassifiers = max(n, 1) }
}

// WithMaxRounds caps the number of weak classifiers trained, including
// those FloatBoost removes again. Values below 1 restore the default: the
// ensemble size limit, times three for FloatBoost. Hitting the cap before
// the ensemble is full is logged at Info level.
func WithMaxRounds(n int) Option {
	return func(o *options) { o.maxRounds = max(n, 0) }
}

// WithMinError stops training once a weak classifier's weighted error drops
// to e or below. Default: 0.
func WithMinError(e float64) Option {
	return func(o *options) { o.minError = e }
}

// WithController installs a progress controller polled after every round.
func WithController(c learning.Controller) Option {
	return func(o *options) { o.controller = c }
}

// WithLogger sets the logger for per-round diagnostics. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
