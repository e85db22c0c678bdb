package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// ErrSkewedDomain is returned when ln(x+1) is undefined for a skewed field.
var ErrSkewedDomain = errors.New("skewed value must be greater than -1")

// Column is one named numeric feature.
type Column struct {
	Name  string
	Value float64
}

// Row is a single scaled record: the continuous columns followed by one
// indicator per categorical field. It only carries categories seen in this
// record, so it is narrower than any schema.
type Row []Column

// Names lists the column names in order.
func (r Row) Names() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Name
	}
	return out
}

// IndicatorColumn names the one-hot column for a category. All whitespace is
// removed so " Private" and "Private" land on the same column.
func IndicatorColumn(field, category string) string {
	return stripSpace(field + "_" + category)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// FeatureScaler turns a raw record into the model's numeric feature space.
type FeatureScaler struct {
	Scaler FittedScaler
}

// Scale log-transforms the skewed fields, applies the fitted scaler to the
// continuous fields and one-hot encodes the categorical fields.
func (fs FeatureScaler) Scale(rec RawRecord) (Row, error) {
	if fs.Scaler == nil {
		return nil, errors.New("feature scaler: no fitted scaler")
	}
	cont := rec.Continuous()
	names := fs.Scaler.FeatureNames()
	x := make([]float64, len(names))
	for j, name := range names {
		v, ok := cont[name]
		if !ok {
			return nil, fmt.Errorf("feature scaler: fitted feature %q is not a continuous field", name)
		}
		x[j] = float64(v)
	}

	verr := &ValidationError{}
	for j, name := range names {
		if !isSkewed(name) {
			continue
		}
		lv, err := LogTransform(x[j])
		if err != nil {
			verr.add(name, ReasonOutOfDomain, fmt.Sprintf("%d", cont[name]))
			continue
		}
		x[j] = lv
	}
	if len(verr.Fields) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrSkewedDomain, verr)
	}

	scaled, err := fs.Scaler.Transform(x)
	if err != nil {
		return nil, err
	}

	row := make(Row, 0, len(names)+len(CategoricalFields))
	for j, name := range names {
		row = append(row, Column{Name: name, Value: scaled[j]})
	}
	cats := rec.Categorical()
	for _, f := range CategoricalFields {
		row = append(row, Column{Name: IndicatorColumn(f, cats[f]), Value: 1})
	}
	return row, nil
}

// LogTransform is ln(x+1); zero maps to zero.
func LogTransform(x float64) (float64, error) {
	if x <= -1 || math.IsNaN(x) {
		return 0, ErrSkewedDomain
	}
	return math.Log1p(x), nil
}

func isSkewed(field string) bool {
	for _, s := range SkewedFields {
		if s == field {
			return true
		}
	}
	return false
}
