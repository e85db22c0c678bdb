package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/mind-engage/income-predictor/internal/features"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var fieldLabels = map[string]string{
	features.FieldAge:                "Age",
	features.FieldWorkclass:          "Workclass",
	features.FieldEducation:          "Education",
	features.FieldEducationYears:     "Years of education",
	features.FieldMaritalStatus:      "Marital status",
	features.FieldOccupation:         "Occupation",
	features.FieldRelationship:       "Relationship",
	features.FieldRace:               "Race",
	features.FieldSex:                "Sex",
	features.FieldCapitalGain:        "Capital gain",
	features.FieldCapitalLoss:        "Capital loss",
	features.FieldHoursWorkedPerWeek: "Hours worked per week",
	features.FieldNativeCountry:      "Native country",
}

type fieldView struct {
	Name    string
	Label   string
	Value   string
	Options []string
	Error   string
}

type formView struct {
	Token   string
	Message string
	Fields  []fieldView
}

type resultView struct {
	Prediction     int
	Probability    float64
	HasProbability bool
	SchemaVersion  string
	RequestID      string
}

type errorView struct {
	Code    string
	Message string
}

// newFormView lays out the 13 inputs. Select options come from the schema so
// the form only offers categories the model knows; values and errors echo a
// rejected submission.
func newFormView(schema *features.Schema, token string, values map[string]string, errs map[string]string) formView {
	fv := formView{Token: token}
	for _, f := range features.FieldOrder {
		v := fieldView{Name: f, Label: fieldLabels[f], Value: values[f], Error: errs[f]}
		if !isContinuousField(f) {
			if schema != nil {
				v.Options = schema.CategoriesFor(f)
			}
			if len(v.Options) == 0 {
				v.Options = features.Categories[f]
			}
		}
		fv.Fields = append(fv.Fields, v)
	}
	return fv
}

func isContinuousField(f string) bool {
	for _, c := range features.ContinuousFields {
		if c == f {
			return true
		}
	}
	return false
}

// render executes a template into a buffer so a failure can still become a
// plain 500 instead of a partial page.
func render(w http.ResponseWriter, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
