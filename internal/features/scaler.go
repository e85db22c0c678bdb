package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// FittedScaler applies a transform whose parameters were computed at
// training time. Transform receives values in FeatureNames order.
type FittedScaler interface {
	FeatureNames() []string
	Transform(x []float64) ([]float64, error)
}

// ErrScalerShape is returned when an input row does not match the fitted width.
var ErrScalerShape = errors.New("scaler: input width does not match fitted features")

// scalerArtifact is the on-disk shape of every scaler kind.
type scalerArtifact struct {
	Kind         string     `json:"kind"`
	FeatureNames []string   `json:"feature_names"`
	DataMin      []float64  `json:"data_min,omitempty"`
	DataMax      []float64  `json:"data_max,omitempty"`
	FeatureRange [2]float64 `json:"feature_range,omitempty"`
	Clip         bool       `json:"clip,omitempty"`
	Mean         []float64  `json:"mean,omitempty"`
	Scale        []float64  `json:"scale,omitempty"`
}

type scalerDecoder func(a scalerArtifact) (FittedScaler, error)

var scalerRegistry = map[string]scalerDecoder{}

// RegisterScaler binds a decoder to an artifact kind like "minmax".
func RegisterScaler(kind string, d scalerDecoder) { scalerRegistry[kind] = d }

func init() {
	RegisterScaler("minmax", decodeMinMax)
	RegisterScaler("standard", decodeStandard)
}

// LoadScaler decodes a JSON scaler artifact.
func LoadScaler(r io.Reader) (FittedScaler, error) {
	var a scalerArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if a.Kind == "" {
		a.Kind = "minmax"
	}
	d, ok := scalerRegistry[a.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported scaler kind: %s", a.Kind)
	}
	if len(a.FeatureNames) == 0 {
		return nil, errors.New("scaler: feature_names is empty")
	}
	return d(a)
}

// MinMaxScaler maps [DataMin, DataMax] onto FeatureRange per feature.
type MinMaxScaler struct {
	Names        []string
	DataMin      []float64
	DataMax      []float64
	FeatureRange [2]float64
	Clip         bool
}

func decodeMinMax(a scalerArtifact) (FittedScaler, error) {
	n := len(a.FeatureNames)
	if len(a.DataMin) != n || len(a.DataMax) != n {
		return nil, fmt.Errorf("minmax scaler: want %d mins/maxs, got %d/%d", n, len(a.DataMin), len(a.DataMax))
	}
	fr := a.FeatureRange
	if fr == [2]float64{} {
		fr = [2]float64{0, 1}
	}
	if fr[0] >= fr[1] {
		return nil, fmt.Errorf("minmax scaler: bad feature_range %v", fr)
	}
	return &MinMaxScaler{Names: a.FeatureNames, DataMin: a.DataMin, DataMax: a.DataMax, FeatureRange: fr, Clip: a.Clip}, nil
}

func (s *MinMaxScaler) FeatureNames() []string { return s.Names }

func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Names) {
		return nil, ErrScalerShape
	}
	lo, hi := s.FeatureRange[0], s.FeatureRange[1]
	out := make([]float64, len(x))
	for j, v := range x {
		span := s.DataMax[j] - s.DataMin[j]
		if span == 0 {
			// a constant training column scales by 1
			span = 1
		}
		scale := (hi - lo) / span
		out[j] = v*scale + (lo - s.DataMin[j]*scale)
		if s.Clip {
			out[j] = math.Min(math.Max(out[j], lo), hi)
		}
	}
	return out, nil
}

// StandardScaler centers on Mean and divides by Scale per feature.
type StandardScaler struct {
	Names []string
	Mean  []float64
	Scale []float64
}

func decodeStandard(a scalerArtifact) (FittedScaler, error) {
	n := len(a.FeatureNames)
	if len(a.Mean) != n || len(a.Scale) != n {
		return nil, fmt.Errorf("standard scaler: want %d means/scales, got %d/%d", n, len(a.Mean), len(a.Scale))
	}
	return &StandardScaler{Names: a.FeatureNames, Mean: a.Mean, Scale: a.Scale}, nil
}

func (s *StandardScaler) FeatureNames() []string { return s.Names }

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Names) {
		return nil, ErrScalerShape
	}
	out := make([]float64, len(x))
	for j, v := range x {
		sd := s.Scale[j]
		if sd == 0 {
			sd = 1
		}
		out[j] = (v - s.Mean[j]) / sd
	}
	return out, nil
}
