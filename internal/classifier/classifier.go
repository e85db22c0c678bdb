package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Classifier maps a fixed-width feature vector to a class label.
type Classifier interface {
	Width() int
	Predict(x []float64) (int, error)
}

// ProbabilityClassifier also reports p(class = 1) for binary models.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(x []float64) (float64, error)
}

// ErrWidthMismatch is returned when the vector width differs from the fitted width.
var ErrWidthMismatch = errors.New("feature vector width does not match classifier")

func checkWidth(c Classifier, x []float64) error {
	if len(x) != c.Width() {
		return fmt.Errorf("%w: got %d, want %d", ErrWidthMismatch, len(x), c.Width())
	}
	return nil
}

// envelope is the shared header of every model artifact; the kind-specific
// body is decoded by the registered decoder.
type envelope struct {
	Kind     string          `json:"kind"`
	Features []string        `json:"features,omitempty"`
	Classes  []int           `json:"classes"`
	Params   json.RawMessage `json:"params"`
}

type decoder func(env envelope) (Classifier, error)

var registry = map[string]decoder{}

// Register binds a decoder to a model kind like "logistic_regression".
func Register(kind string, d decoder) { registry[kind] = d }

func init() {
	Register(KindLogistic, decodeLogistic)
	Register(KindDecisionTree, decodeTree)
}

// Model is a decoded artifact: the classifier plus the column names it was
// fit on, when the artifact records them.
type Model struct {
	Classifier
	Kind     string
	Features []string
}

// Load decodes a JSON model artifact.
func Load(r io.Reader) (*Model, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	d, ok := registry[env.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported model kind: %q", env.Kind)
	}
	if len(env.Classes) == 0 {
		env.Classes = []int{0, 1}
	}
	c, err := d(env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Kind, err)
	}
	if len(env.Features) > 0 && len(env.Features) != c.Width() {
		return nil, fmt.Errorf("%s: %d feature names for width %d", env.Kind, len(env.Features), c.Width())
	}
	return &Model{Classifier: c, Kind: env.Kind, Features: env.Features}, nil
}

// Probability returns p(class = 1) when the model supports it.
func (m *Model) Probability(x []float64) (float64, bool, error) {
	pc, ok := m.Classifier.(ProbabilityClassifier)
	if !ok {
		return 0, false, nil
	}
	p, err := pc.PredictProba(x)
	return p, err == nil, err
}
