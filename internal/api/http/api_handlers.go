package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/predict"
)

const maxBody = 64 << 10

type predictResp struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id,omitempty"`
	predict.Result
}

// POST /api/predict  { "age": 39, "workclass": "Private", ... }
func PredictAPIHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, ErrorCodeInvalidJSON, "Request body could not be read", map[string]string{"reason": err.Error()})
			return
		}
		rec, err := features.RecordFromJSON(body)
		if err != nil {
			var verr *features.ValidationError
			if errors.As(err, &verr) {
				RespondWithError(w, http.StatusBadRequest, ErrorCodeValidation, "Invalid input", verr.Fields)
				return
			}
			RespondWithError(w, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON payload", map[string]string{"reason": err.Error()})
			return
		}
		res, err := d.predict(r.Context(), rec)
		if err != nil {
			status, code, msg := classify(err)
			var verr *features.ValidationError
			if errors.As(err, &verr) {
				RespondWithError(w, status, code, msg, verr.Fields)
				return
			}
			d.Log.Error("prediction failed", zap.String("code", code), zap.Error(err))
			RespondWithError(w, status, code, msg, nil)
			return
		}
		d.logPrediction(r, res)
		writeJSON(w, http.StatusOK, predictResp{
			ID:        uuid.NewString(),
			RequestID: middleware.GetReqID(r.Context()),
			Result:    res,
		})
	}
}

type schemaResp struct {
	Version    string              `json:"version"`
	Columns    []string            `json:"columns"`
	Categories map[string][]string `json:"categories"`
}

// GET /api/schema
func SchemaHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Provider.Pipeline(r.Context())
		if err != nil {
			status, code, msg := classify(err)
			RespondWithError(w, status, code, msg, nil)
			return
		}
		s := p.Schema()
		cats := make(map[string][]string, len(features.CategoricalFields))
		for _, f := range features.CategoricalFields {
			cats[f] = s.CategoriesFor(f)
		}
		writeJSON(w, http.StatusOK, schemaResp{Version: s.Version, Columns: s.Columns(), Categories: cats})
	}
}
