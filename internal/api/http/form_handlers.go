package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mind-engage/income-predictor/internal/features"
)

// GET / and /index
func IndexHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := d.issueToken()
		if err != nil {
			d.Log.Error("issue form token", zap.Error(err))
			renderError(w, d.Log, http.StatusInternalServerError, ErrorCodeInternalServerError, "Form could not be prepared")
			return
		}
		fv := newFormView(d.schemaFor(r), token, nil, nil)
		if err := render(w, http.StatusOK, "index.html", fv); err != nil {
			d.Log.Error("render form", zap.Error(err))
		}
	}
}

// POST /result (form-encoded)
func ResultHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			renderError(w, d.Log, http.StatusBadRequest, ErrorCodeValidation, "Malformed form submission")
			return
		}
		res, err := d.predictValues(r.Context(), r.PostForm)
		if err != nil {
			var verr *features.ValidationError
			if errors.As(err, &verr) {
				d.Log.Info("rejected submission", zap.Error(err))
				d.rerenderForm(w, r, verr)
				return
			}
			status, code, msg := classify(err)
			d.Log.Error("prediction failed", zap.String("code", code), zap.Error(err))
			renderError(w, d.Log, status, code, msg)
			return
		}

		view := resultView{
			Prediction:    res.Label,
			SchemaVersion: res.SchemaVersion,
			RequestID:     middleware.GetReqID(r.Context()),
		}
		if res.Probability != nil {
			view.Probability, view.HasProbability = *res.Probability, true
		}
		d.logPrediction(r, res)
		if err := render(w, http.StatusOK, "result.html", view); err != nil {
			d.Log.Error("render result", zap.Error(err))
		}
	}
}

// rerenderForm shows the form again with the submitted values and one
// message per bad field.
func (d Deps) rerenderForm(w http.ResponseWriter, r *http.Request, verr *features.ValidationError) {
	values := make(map[string]string, len(features.FieldOrder))
	for _, f := range features.FieldOrder {
		values[f] = r.PostForm.Get(f)
	}
	token, err := d.issueToken()
	if err != nil {
		renderError(w, d.Log, http.StatusInternalServerError, ErrorCodeInternalServerError, "Form could not be prepared")
		return
	}
	fv := newFormView(d.schemaFor(r), token, values, verr.ByField())
	fv.Message = "Please correct the highlighted fields."
	if err := render(w, http.StatusBadRequest, "index.html", fv); err != nil {
		d.Log.Error("render form", zap.Error(err))
	}
}

func renderError(w http.ResponseWriter, log *zap.Logger, status int, code, msg string) {
	if err := render(w, status, "error.html", errorView{Code: code, Message: msg}); err != nil {
		log.Error("render error page", zap.Error(err))
	}
}
