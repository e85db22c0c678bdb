package predict

import (
	"context"

	"go.uber.org/zap"

	"github.com/mind-engage/income-predictor/internal/storage"
)

// Provider hands a pipeline to a request.
type Provider interface {
	Pipeline(ctx context.Context) (*Pipeline, error)
}

// Static serves one pipeline built at startup.
type Static struct{ P *Pipeline }

func (s Static) Pipeline(context.Context) (*Pipeline, error) { return s.P, nil }

// Reloading rebuilds the pipeline from the store on every call. Nothing is
// cached, so artifacts swapped on disk are picked up by the next request.
type Reloading struct {
	Store   storage.ArtifactStore
	Sources Sources
	Log     *zap.Logger
}

func (r Reloading) Pipeline(ctx context.Context) (*Pipeline, error) {
	return Load(ctx, r.Store, r.Sources, r.Log)
}
