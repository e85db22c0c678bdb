package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Wire names of the 13 submitted fields.
const (
	FieldAge                = "age"
	FieldWorkclass          = "workclass"
	FieldEducation          = "education"
	FieldEducationYears     = "education_years"
	FieldMaritalStatus      = "marital_status"
	FieldOccupation         = "occupation"
	FieldRelationship       = "relationship"
	FieldRace               = "race"
	FieldSex                = "sex"
	FieldCapitalGain        = "capital_gain"
	FieldCapitalLoss        = "capital_loss"
	FieldHoursWorkedPerWeek = "hours_worked_per_week"
	FieldNativeCountry      = "native_country"
)

// FieldOrder is the order fields are checked and reported in.
var FieldOrder = []string{
	FieldAge, FieldWorkclass, FieldEducation, FieldEducationYears, FieldMaritalStatus,
	FieldOccupation, FieldRelationship, FieldRace, FieldSex, FieldCapitalGain,
	FieldCapitalLoss, FieldHoursWorkedPerWeek, FieldNativeCountry,
}

// ContinuousFields are integer-valued and scaled.
var ContinuousFields = []string{
	FieldAge, FieldEducationYears, FieldCapitalGain, FieldCapitalLoss, FieldHoursWorkedPerWeek,
}

// SkewedFields get ln(x+1) before scaling.
var SkewedFields = []string{FieldCapitalGain, FieldCapitalLoss}

// CategoricalFields are one-hot encoded, in encoding order.
var CategoricalFields = []string{
	FieldWorkclass, FieldEducation, FieldMaritalStatus, FieldOccupation,
	FieldRelationship, FieldRace, FieldSex, FieldNativeCountry,
}

// RawRecord is one parsed form submission.
type RawRecord struct {
	Age                int    `json:"age"`
	Workclass          string `json:"workclass"`
	Education          string `json:"education"`
	EducationYears     int    `json:"education_years"`
	MaritalStatus      string `json:"marital_status"`
	Occupation         string `json:"occupation"`
	Relationship       string `json:"relationship"`
	Race               string `json:"race"`
	Sex                string `json:"sex"`
	CapitalGain        int    `json:"capital_gain"`
	CapitalLoss        int    `json:"capital_loss"`
	HoursWorkedPerWeek int    `json:"hours_worked_per_week"`
	NativeCountry      string `json:"native_country"`
}

// Continuous returns the continuous values keyed by field name.
func (r RawRecord) Continuous() map[string]int {
	return map[string]int{
		FieldAge:                r.Age,
		FieldEducationYears:     r.EducationYears,
		FieldCapitalGain:        r.CapitalGain,
		FieldCapitalLoss:        r.CapitalLoss,
		FieldHoursWorkedPerWeek: r.HoursWorkedPerWeek,
	}
}

// Categorical returns the categorical values keyed by field name.
func (r RawRecord) Categorical() map[string]string {
	return map[string]string{
		FieldWorkclass:     r.Workclass,
		FieldEducation:     r.Education,
		FieldMaritalStatus: r.MaritalStatus,
		FieldOccupation:    r.Occupation,
		FieldRelationship:  r.Relationship,
		FieldRace:          r.Race,
		FieldSex:           r.Sex,
		FieldNativeCountry: r.NativeCountry,
	}
}

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// Reasons reported in FieldError.
const (
	ReasonMissing     = "missing"
	ReasonNotInteger  = "not_an_integer"
	ReasonOutOfDomain = "out_of_domain"
	ReasonNotText     = "not_text"
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

func (e FieldError) String() string {
	switch e.Reason {
	case ReasonMissing:
		return fmt.Sprintf("%s is required", e.Field)
	case ReasonNotInteger:
		return fmt.Sprintf("%s must be a whole number, got %q", e.Field, e.Value)
	case ReasonOutOfDomain:
		return fmt.Sprintf("%s is out of range: %s", e.Field, e.Value)
	case ReasonNotText:
		return fmt.Sprintf("%s must be a string or number, got %s", e.Field, e.Value)
	default:
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
}

// ValidationError collects every bad field of one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ByField indexes messages for form rendering.
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.String()
		}
	}
	return out
}

func (e *ValidationError) add(field, reason, value string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason, Value: value})
}

// ParseForm builds a record from a form submission.
func ParseForm(form url.Values) (RawRecord, error) {
	return ParseRecord(form)
}

// ParseRecord builds a record from text key/value pairs. The first value of
// each key is used.
func ParseRecord(values map[string][]string) (RawRecord, error) {
	text := make(map[string]string, len(FieldOrder))
	for _, f := range FieldOrder {
		if vs, ok := values[f]; ok && len(vs) > 0 {
			text[f] = vs[0]
		}
	}
	return parseText(text, nil)
}

// parseText converts text values field by field. Fields in rejected already
// failed decoding and are reported as they are.
func parseText(text map[string]string, rejected map[string]FieldError) (RawRecord, error) {
	verr := &ValidationError{}
	ints := map[string]int{}
	strs := map[string]string{}
	for _, f := range FieldOrder {
		if fe, bad := rejected[f]; bad {
			verr.Fields = append(verr.Fields, fe)
			continue
		}
		v, ok := text[f]
		if !ok {
			verr.add(f, ReasonMissing, "")
			continue
		}
		if !isContinuous(f) {
			strs[f] = v
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			verr.add(f, ReasonNotInteger, v)
			continue
		}
		ints[f] = n
	}
	if len(verr.Fields) > 0 {
		return RawRecord{}, verr
	}
	return RawRecord{
		Age:                ints[FieldAge],
		Workclass:          strs[FieldWorkclass],
		Education:          strs[FieldEducation],
		EducationYears:     ints[FieldEducationYears],
		MaritalStatus:      strs[FieldMaritalStatus],
		Occupation:         strs[FieldOccupation],
		Relationship:       strs[FieldRelationship],
		Race:               strs[FieldRace],
		Sex:                strs[FieldSex],
		CapitalGain:        ints[FieldCapitalGain],
		CapitalLoss:        ints[FieldCapitalLoss],
		HoursWorkedPerWeek: ints[FieldHoursWorkedPerWeek],
		NativeCountry:      strs[FieldNativeCountry],
	}, nil
}

// RecordFromJSON decodes a JSON object. Continuous fields may be integral
// numbers or strings holding integers. Categorical fields must be strings or
// numbers; booleans, arrays and objects are rejected.
func RecordFromJSON(data []byte) (RawRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawRecord{}, fmt.Errorf("decode record: %w", err)
	}
	text := make(map[string]string, len(raw))
	rejected := map[string]FieldError{}
	for _, f := range FieldOrder {
		msg, ok := raw[f]
		if !ok || string(msg) == "null" {
			continue
		}
		if s, ok := jsonScalar(msg); ok {
			text[f] = s
			continue
		}
		if isContinuous(f) {
			// the raw token fails integer parsing and is reported as such
			text[f] = string(msg)
			continue
		}
		rejected[f] = FieldError{Field: f, Reason: ReasonNotText, Value: string(msg)}
	}
	return parseText(text, rejected)
}

// jsonScalar returns a JSON string as is and a JSON number in its shortest
// decimal form. Integral numbers print without a fraction.
func jsonScalar(msg json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", false
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	f, err := n.Float64()
	if err != nil {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return strconv.FormatFloat(f, 'g', -1, 64), true
}

func isContinuous(field string) bool {
	for _, c := range ContinuousFields {
		if c == field {
			return true
		}
	}
	return false
}
