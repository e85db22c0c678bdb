package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authmw "github.com/mind-engage/income-predictor/internal/auth/middleware"
	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/predict"
)

// Deps is everything the handlers share. All of it is read-only after
// startup.
type Deps struct {
	Provider predict.Provider
	Tokens   *authmw.FormTokens // nil disables form tokens
	Log      *zap.Logger
}

func (d Deps) issueToken() (string, error) {
	if d.Tokens == nil {
		return "", nil
	}
	return d.Tokens.Issue()
}

// schemaFor returns the live schema, or nil when the pipeline is unavailable.
func (d Deps) schemaFor(r *http.Request) *features.Schema {
	p, err := d.Provider.Pipeline(r.Context())
	if err != nil {
		d.Log.Warn("pipeline unavailable for form", zap.Error(err))
		return nil
	}
	return p.Schema()
}

func (d Deps) predictValues(ctx context.Context, values url.Values) (predict.Result, error) {
	rec, err := features.ParseForm(values)
	if err != nil {
		return predict.Result{}, err
	}
	return d.predict(ctx, rec)
}

func (d Deps) predict(ctx context.Context, rec features.RawRecord) (predict.Result, error) {
	p, err := d.Provider.Pipeline(ctx)
	if err != nil {
		return predict.Result{}, err
	}
	return p.Predict(ctx, rec)
}

func (d Deps) logPrediction(r *http.Request, res predict.Result) {
	d.Log.Info("prediction",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("form_token_id", authmw.TokenIDFromContext(r.Context())),
		zap.Int("label", res.Label),
		zap.Strings("dropped_columns", res.DroppedColumns),
	)
}
