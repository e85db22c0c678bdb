package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "github.com/mind-engage/income-predictor/internal/auth/middleware"
	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/predict"
	"github.com/mind-engage/income-predictor/internal/storage"
)

var sampleSources = predict.Sources{ScalerKey: "scaler.json", ModelKey: "model.json", SchemaKey: "clean_features.csv"}

func samplePipeline(t *testing.T) *predict.Pipeline {
	t.Helper()
	store, err := storage.NewFSStore("../../../artifacts")
	require.NoError(t, err)
	p, err := predict.Load(context.Background(), store, sampleSources, nil)
	require.NoError(t, err)
	return p
}

type failingProvider struct{ err error }

func (f failingProvider) Pipeline(context.Context) (*predict.Pipeline, error) { return nil, f.err }

func newTestRouter(t *testing.T, withTokens bool) (http.Handler, *authmw.FormTokens) {
	t.Helper()
	d := Deps{Provider: predict.Static{P: samplePipeline(t)}}
	if withTokens {
		tokens, err := authmw.NewFormTokens("test-secret", time.Hour)
		require.NoError(t, err)
		d.Tokens = tokens
	}
	return NewRouter(d, RouterOptions{CORSOrigins: []string{"http://localhost:3000"}}), d.Tokens
}

func censusForm() url.Values {
	return url.Values{
		"age":                   {"39"},
		"workclass":             {"Private"},
		"education":             {"Bachelors"},
		"education_years":       {"13"},
		"marital_status":        {"Never-married"},
		"occupation":            {"Tech-support"},
		"relationship":          {"Not-in-family"},
		"race":                  {"White"},
		"sex":                   {"Male"},
		"capital_gain":          {"0"},
		"capital_loss":          {"0"},
		"hours_worked_per_week": {"40"},
		"native_country":        {"United-States"},
	}
}

func postForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/result", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

var (
	tokenRE        = regexp.MustCompile(`name="form_token" value="([^"]+)"`)
	firstEducation = regexp.MustCompile(`(?s)<select id="education" name="education">\s*<option value="([^"]*)"`)
)

func TestIndex(t *testing.T) {
	h, _ := newTestRouter(t, true)
	for _, path := range []string{"/", "/index"} {
		rec := get(h, path)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Regexp(t, tokenRE, body)
		assert.Contains(t, body, `name="hours_worked_per_week"`)
		assert.Contains(t, body, `<option value="Tech-support">`)

		m := firstEducation.FindStringSubmatch(body)
		require.Len(t, m, 2)
		assert.Equal(t, "10th", m[1])
		assert.NotContains(t, body, `<option value="years">`)
	}
}

func TestResult_WithToken(t *testing.T) {
	h, _ := newTestRouter(t, true)
	m := tokenRE.FindStringSubmatch(get(h, "/").Body.String())
	require.Len(t, m, 2)

	form := censusForm()
	form.Set("form_token", m[1])
	rec := postForm(h, form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Prediction: <strong>0</strong>")
	assert.Contains(t, rec.Body.String(), "Probability of class 1: 0.09")
}

func TestResult_TokenRejected(t *testing.T) {
	h, _ := newTestRouter(t, true)
	rec := postForm(h, censusForm())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrorCodeInvalidFormToken)
	assert.Contains(t, rec.Body.String(), "has no form token")

	form := censusForm()
	form.Set("form_token", "not-a-jwt")
	rec = postForm(h, form)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired or is not valid")
}

func TestResult_ValidationRerendersForm(t *testing.T) {
	h, tokens := newTestRouter(t, true)
	tok, err := tokens.Issue()
	require.NoError(t, err)

	form := censusForm()
	form.Set("form_token", tok)
	form.Set("age", "abc")
	form.Del("sex")
	rec := postForm(h, form)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please correct the highlighted fields.")
	assert.Contains(t, body, "age must be a whole number")
	assert.Contains(t, body, "sex is required")
	assert.Contains(t, body, `value="abc"`)
	assert.Regexp(t, tokenRE, body, "a fresh token is issued")
}

func TestResult_NoTokenMode(t *testing.T) {
	h, _ := newTestRouter(t, false)
	rec := postForm(h, censusForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotRegexp(t, tokenRE, get(h, "/").Body.String())
}

func TestResult_ArtifactFailure(t *testing.T) {
	err := errors.Join(predict.ErrArtifact, errors.New("open model.json"))
	h := NewRouter(Deps{Provider: failingProvider{err: err}}, RouterOptions{})
	rec := postForm(h, censusForm())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrorCodeArtifact)
	assert.NotContains(t, rec.Body.String(), "Prediction:")

	// the form still renders from the built-in vocabulary
	rec = get(h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="Tech-support">`)
}

func TestPredictAPI(t *testing.T) {
	h, _ := newTestRouter(t, true)
	body := `{"age":"39","workclass":"Private","education":"Bachelors","education_years":13,
		"marital_status":"Never-married","occupation":"Tech-support","relationship":"Not-in-family",
		"race":"White","sex":"Male","capital_gain":0,"capital_loss":0,"hours_worked_per_week":40,
		"native_country":"Narnia"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		ID             string   `json:"id"`
		RequestID      string   `json:"request_id"`
		Prediction     int      `json:"prediction"`
		Probability    float64  `json:"probability"`
		SchemaVersion  string   `json:"schema_version"`
		DroppedColumns []string `json:"dropped_columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.ID, 36)
	assert.NotEmpty(t, out.RequestID)
	assert.Contains(t, []int{0, 1}, out.Prediction)
	assert.Equal(t, "clean_features.csv", out.SchemaVersion)
	assert.Equal(t, []string{"native_country_Narnia"}, out.DroppedColumns)
}

func TestPredictAPI_Errors(t *testing.T) {
	h, _ := newTestRouter(t, true)
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{"age":`, http.StatusBadRequest, ErrorCodeInvalidJSON},
		{"missing age", `{"workclass":"Private"}`, http.StatusBadRequest, ErrorCodeValidation},
		{"non integer", `{"age":"abc"}`, http.StatusBadRequest, ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
			var apiErr APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.Equal(t, tc.code, apiErr.Code)
		})
	}
}

func TestPredictAPI_SchemaMismatch(t *testing.T) {
	err := errors.Join(predict.ErrSchemaMismatch, errors.New("width"))
	h := NewRouter(Deps{Provider: failingProvider{err: err}}, RouterOptions{})
	body, _ := json.Marshal(map[string]string{
		"age": "39", "workclass": "Private", "education": "Bachelors", "education_years": "13",
		"marital_status": "Never-married", "occupation": "Tech-support", "relationship": "Husband",
		"race": "White", "sex": "Male", "capital_gain": "0", "capital_loss": "0",
		"hours_worked_per_week": "40", "native_country": "United-States",
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(string(body))))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeSchemaMismatch, apiErr.Code)
}

func TestSchemaEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, false)
	rec := get(h, "/api/schema")
	require.Equal(t, http.StatusOK, rec.Code)
	var out schemaResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Columns, 103)
	assert.Equal(t, []string{"Female", "Male"}, out.Categories["sex"])
	assert.Equal(t, features.Categories[features.FieldEducation], out.Categories["education"])
	assert.NotContains(t, out.Categories["education"], "years")
}

func TestHealthAndReady(t *testing.T) {
	var ready atomic.Bool
	h := NewRouter(Deps{Provider: predict.Static{P: samplePipeline(t)}}, RouterOptions{Ready: &ready})
	assert.Equal(t, http.StatusOK, get(h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
	ready.Store(true)
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	status, code, _ := classify(context.DeadlineExceeded)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, ErrorCodeRequestTimeout, code)

	status, code, _ = classify(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrorCodeInternalServerError, code)
}

func TestRender_TemplateFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	err := render(rec, http.StatusOK, "missing.html", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// result.html needs a resultView
	rec = httptest.NewRecorder()
	err = render(rec, http.StatusOK, "result.html", errorView{Code: "X"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Prediction")
}
