package classifier

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

const KindLogistic = "logistic_regression"

// Logistic is a fitted binary logistic regression.
type Logistic struct {
	coef      *mat.VecDense
	Intercept float64
	Threshold float64
	Classes   [2]int
}

type logisticParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold,omitempty"`
}

// NewLogistic builds a model from fitted weights. A zero threshold means 0.5.
func NewLogistic(coef []float64, intercept, threshold float64, classes [2]int) (*Logistic, error) {
	if len(coef) == 0 {
		return nil, errors.New("empty coef")
	}
	if threshold == 0 {
		threshold = 0.5
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, errors.New("threshold must be in (0, 1)")
	}
	w := make([]float64, len(coef))
	copy(w, coef)
	return &Logistic{coef: mat.NewVecDense(len(w), w), Intercept: intercept, Threshold: threshold, Classes: classes}, nil
}

func decodeLogistic(env envelope) (Classifier, error) {
	var p logisticParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, err
	}
	if len(env.Classes) != 2 {
		return nil, errors.New("logistic regression needs exactly two classes")
	}
	return NewLogistic(p.Coef, p.Intercept, p.Threshold, [2]int{env.Classes[0], env.Classes[1]})
}

func (m *Logistic) Width() int { return m.coef.Len() }

// PredictProba returns sigmoid(w·x + b).
func (m *Logistic) PredictProba(x []float64) (float64, error) {
	if err := checkWidth(m, x); err != nil {
		return 0, err
	}
	z := mat.Dot(m.coef, mat.NewVecDense(len(x), x)) + m.Intercept
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *Logistic) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= m.Threshold {
		return m.Classes[1], nil
	}
	return m.Classes[0], nil
}
