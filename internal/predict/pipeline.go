package predict

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mind-engage/income-predictor/internal/classifier"
	"github.com/mind-engage/income-predictor/internal/features"
	"github.com/mind-engage/income-predictor/internal/storage"
)

var (
	// ErrArtifact wraps every failure to read or decode an artifact.
	ErrArtifact = errors.New("artifact error")
	// ErrSchemaMismatch wraps disagreements between schema, scaler and model.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Sources names the artifacts inside a store.
type Sources struct {
	ScalerKey string
	ModelKey  string
	SchemaKey string // empty: features.DefaultSchema
}

// Pipeline is immutable once built and safe for concurrent use.
type Pipeline struct {
	schema *features.Schema
	scaler features.FeatureScaler
	model  *classifier.Model
	log    *zap.Logger
}

// Result is one prediction.
type Result struct {
	Label          int      `json:"prediction"`
	Probability    *float64 `json:"probability,omitempty"`
	SchemaVersion  string   `json:"schema_version"`
	DroppedColumns []string `json:"dropped_columns,omitempty"`
}

// New checks that the pieces agree with each other.
func New(schema *features.Schema, scaler features.FittedScaler, model *classifier.Model, log *zap.Logger) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if schema.Len() != model.Width() {
		return nil, fmt.Errorf("%w: schema has %d columns, model expects %d", ErrSchemaMismatch, schema.Len(), model.Width())
	}
	if len(model.Features) > 0 {
		cols := schema.Columns()
		for i, f := range model.Features {
			if cols[i] != f {
				return nil, fmt.Errorf("%w: column %d is %q in schema, %q in model", ErrSchemaMismatch, i, cols[i], f)
			}
		}
	}
	names := scaler.FeatureNames()
	if len(names) != len(features.ContinuousFields) {
		return nil, fmt.Errorf("%w: scaler fitted on %d features, want %d", ErrSchemaMismatch, len(names), len(features.ContinuousFields))
	}
	seen := map[string]bool{}
	for _, n := range names {
		if !isContinuous(n) || seen[n] {
			return nil, fmt.Errorf("%w: scaler feature %q is not a distinct continuous field", ErrSchemaMismatch, n)
		}
		seen[n] = true
	}
	return &Pipeline{schema: schema, scaler: features.FeatureScaler{Scaler: scaler}, model: model, log: log}, nil
}

// Load reads all artifacts from the store and builds a pipeline.
func Load(ctx context.Context, store storage.ArtifactStore, src Sources, log *zap.Logger) (*Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema := features.DefaultSchema()
	if src.SchemaKey != "" {
		var err error
		schema, err = readArtifact(store, src.SchemaKey, func(r io.Reader) (*features.Schema, error) {
			return features.LoadSchemaCSV(r, src.SchemaKey)
		})
		if err != nil {
			return nil, err
		}
	}
	scaler, err := readArtifact(store, src.ScalerKey, features.LoadScaler)
	if err != nil {
		return nil, err
	}
	model, err := readArtifact(store, src.ModelKey, classifier.Load)
	if err != nil {
		return nil, err
	}
	p, err := New(schema, scaler, model, log)
	if err != nil {
		return nil, err
	}
	p.log.Info("pipeline loaded",
		zap.String("schema_version", schema.Version),
		zap.Int("columns", schema.Len()),
		zap.String("model_kind", model.Kind),
	)
	logArtifacts(p.log, store, src)
	return p, nil
}

// logArtifacts records size and modification time of each artifact so a
// swapped file shows up in the logs.
func logArtifacts(log *zap.Logger, store storage.ArtifactStore, src Sources) {
	for _, key := range []string{src.SchemaKey, src.ScalerKey, src.ModelKey} {
		if key == "" {
			continue
		}
		info, err := store.Stat(key)
		if err != nil {
			log.Warn("stat artifact", zap.String("key", key), zap.Error(err))
			continue
		}
		log.Debug("artifact",
			zap.String("key", info.Key),
			zap.Int64("bytes", info.Size),
			zap.Time("mod_time", info.ModTime),
		)
	}
}

func readArtifact[T any](store storage.ArtifactStore, key string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := store.Open(key)
	if err != nil {
		return zero, fmt.Errorf("%w: open %s: %w", ErrArtifact, key, err)
	}
	defer rc.Close()
	v, err := decode(rc)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrArtifact, key, err)
	}
	return v, nil
}

func (p *Pipeline) Schema() *features.Schema { return p.schema }

// Vector runs the scaler and the reconciler without inference.
func (p *Pipeline) Vector(rec features.RawRecord) (features.Vector, features.ReconcileReport, error) {
	row, err := p.scaler.Scale(rec)
	if err != nil {
		return features.Vector{}, features.ReconcileReport{}, err
	}
	vec, rep := features.Reconcile(row, p.schema)
	return vec, rep, nil
}

// Predict scales, reconciles and classifies one record. Any failure aborts
// the prediction; there is no fallback label.
func (p *Pipeline) Predict(ctx context.Context, rec features.RawRecord) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	vec, rep, err := p.Vector(rec)
	if err != nil {
		return Result{}, err
	}
	if len(rep.Dropped) > 0 {
		p.log.Debug("columns outside schema dropped", zap.Strings("columns", rep.Dropped))
	}
	label, err := p.model.Predict(vec.Values)
	if err != nil {
		if errors.Is(err, classifier.ErrWidthMismatch) {
			return Result{}, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
		}
		return Result{}, fmt.Errorf("predict: %w", err)
	}
	res := Result{Label: label, SchemaVersion: p.schema.Version, DroppedColumns: rep.Dropped}
	if prob, ok, err := p.model.Probability(vec.Values); err == nil && ok {
		res.Probability = &prob
	}
	return res, nil
}

func isContinuous(name string) bool {
	for _, f := range features.ContinuousFields {
		if f == name {
			return true
		}
	}
	return false
}
