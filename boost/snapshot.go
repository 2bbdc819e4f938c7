package boost

import (
	"github.com/hupe1980/vecml/learning"
	"github.com/hupe1980/vecml/stump"
)

// MemberSnapshot is one persisted weak classifier.
type MemberSnapshot struct {
	Weight float64        `json:"weight"`
	Stump  stump.Snapshot `json:"stump"`
}

// Snapshot is the persisted form of a stump ensemble.
type Snapshot struct {
	Algorithm      string           `json:"algorithm"`
	ClassCount     int              `json:"class_count"`
	FeatureCount   int              `json:"feature_count"`
	MaxClassifiers int              `json:"max_classifiers"`
	MinError       float64          `json:"min_error"`
	Members        []MemberSnapshot `json:"members"`
}

// Snapshot captures the ensemble. Only decision stump members can be
// persisted.
func (c *Classifier) Snapshot() (Snapshot, error) {
	s := Snapshot{
		Algorithm:      c.opts.algorithm.String(),
		ClassCount:     c.classCount,
		FeatureCount:   c.featureCount,
		MaxClassifiers: c.opts.maxClassifiers,
		MinError:       c.opts.minError,
		Members:        make([]MemberSnapshot, len(c.members)),
	}
	for i, m := range c.members {
		st, ok := m.classifier.(*stump.Stump)
		if !ok {
			return Snapshot{}, learning.Errorf(learning.CodeInvalidArgument,
				"weak classifier %d is a %T, only stumps can be persisted", i, m.classifier)
		}
		s.Members[i] = MemberSnapshot{Weight: m.weight, Stump: st.Snapshot()}
	}
	return s, nil
}

// FromSnapshot restores an ensemble. It is ready to classify and retrains
// with StumpFactory unless opts install another factory.
func FromSnapshot(s Snapshot, opts ...Option) (*Classifier, error) {
	a, err := ParseAlgorithm(s.Algorithm)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithFactory(StumpFactory()),
		WithAlgorithm(a),
		WithMaxClassifiers(s.MaxClassifiers),
		WithMinError(s.MinError),
	}
	c := New(append(base, opts...)...)
	c.classCount = s.ClassCount
	c.featureCount = s.FeatureCount
	for i, ms := range s.Members {
		st, err := stump.FromSnapshot(ms.Stump)
		if err != nil {
			return nil, learning.WrapError(learning.CodeInvalidArgument, "invalid ensemble member", err)
		}
		if st.Feature() >= s.FeatureCount && st.Trained() {
			return nil, learning.Errorf(learning.CodeInvalidArgument,
				"member %d uses feature %d of %d", i, st.Feature(), s.FeatureCount)
		}
		c.members = append(c.members, member{classifier: st, weight: ms.Weight})
	}
	return c, nil
}
