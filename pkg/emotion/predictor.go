package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one prediction.
type Result struct {
	ID      string    `json:"id" yaml:"id"`
	File    string    `json:"file" yaml:"file"`
	Model   ModelID   `json:"model" yaml:"model"`
	Scheme  string    `json:"scheme" yaml:"scheme"`
	Label   string    `json:"label" yaml:"label"`
	Index   int       `json:"index" yaml:"index"`
	Scores  []float32 `json:"scores" yaml:"scores"`
	Frames  int       `json:"frames" yaml:"frames"`
	Timings Timings   `json:"timings" yaml:"timings"`
}

// Timings records how long each stage took.
type Timings struct {
	Load    time.Duration `json:"load" yaml:"load"`
	Extract time.Duration `json:"extract" yaml:"extract"`
	Decode  time.Duration `json:"decode" yaml:"decode"`
}

// Total returns the sum of all stages.
func (t Timings) Total() time.Duration { return t.Load + t.Extract + t.Decode }

// Predictor runs the resolve, acquire, extract and decode stages for one file.
type Predictor struct {
	extractor *Extractor
	registry  *Registry
}

// NewPredictor creates a Predictor. The registry is borrowed; the caller
// closes it.
func NewPredictor(extractor *Extractor, registry *Registry) *Predictor {
	return &Predictor{extractor: extractor, registry: registry}
}

// Predict classifies the WAV file at path with model id.
//
// ctx bounds the whole sequence: it is checked between stages and while
// waiting for a classifier load. A ctx error carries no [Kind]; it wraps
// context.Canceled or context.DeadlineExceeded.
func (p *Predictor) Predict(ctx context.Context, path string, id ModelID) (*Result, error) {
	log := slog.With("path", path, "model", id)

	start := time.Now()
	m, c, err := p.registry.Acquire(ctx, id)
	if err != nil {
		log.Warn("emotion: acquire failed", "error", err)
		return nil, err
	}
	res := &Result{
		ID:     uuid.NewString(),
		File:   path,
		Model:  m.ID,
		Scheme: m.Scheme.Name(),
	}
	res.Timings.Load = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("emotion: predict %s: before extraction: %w", path, err)
	}
	start = time.Now()
	features, err := p.extractor.Extract(path)
	if err != nil {
		log.Warn("emotion: extraction failed", "error", err)
		return nil, err
	}
	res.Timings.Extract = time.Since(start)
	res.Frames = features.Frames()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("emotion: predict %s: before decoding: %w", path, err)
	}
	start = time.Now()
	tensor, err := NewPredictionTensor(features)
	if err != nil {
		return nil, decodingError(-1, err)
	}
	d, err := Decode(tensor, c, m.Scheme)
	if err != nil {
		log.Warn("emotion: decoding failed", "error", err)
		return nil, err
	}
	res.Timings.Decode = time.Since(start)
	res.Label = d.Label
	res.Index = d.Index
	res.Scores = d.Scores

	log.Debug("emotion: predicted",
		"id", res.ID,
		"label", res.Label,
		"index", res.Index,
		"elapsed", res.Timings.Total())
	return res, nil
}
