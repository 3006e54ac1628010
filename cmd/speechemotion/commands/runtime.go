package commands

import (
	"fmt"

	"github.com/haivivi/speechemotion/cmd/speechemotion/internal/config"
	"github.com/haivivi/speechemotion/pkg/emotion"
	"github.com/haivivi/speechemotion/pkg/emotion/onnxmodel"
	"github.com/haivivi/speechemotion/pkg/onnx"
)

// newLoader builds the classifier loader for cfg and returns a cleanup
// function. Tests replace it to avoid the ONNX Runtime dependency.
var newLoader = func(cfg *config.Config) (emotion.Loader, func(), error) {
	store, err := cfg.Store()
	if err != nil {
		return nil, nil, fmt.Errorf("model store: %w", err)
	}
	env, err := onnx.NewEnv("speechemotion")
	if err != nil {
		return nil, nil, err
	}

	m := cfg.Models
	lc := onnxmodel.LoaderConfig{
		Extension: m.Extension,
		Options: []onnxmodel.Option{
			onnxmodel.WithInputName(m.InputName),
			onnxmodel.WithOutputName(m.OutputName),
		},
	}
	if m.IntraOpThreads > 0 {
		lc.SessionOptions = append(lc.SessionOptions, onnx.WithIntraOpThreads(m.IntraOpThreads))
	}
	if m.SerialRun {
		lc.Options = append(lc.Options, onnxmodel.WithSerialRun())
	}
	return onnxmodel.NewLoader(env, store, lc), func() { env.Close() }, nil
}

// openPredictor wires extractor, registry and loader. The returned close
// function releases the registry before the runtime environment.
func openPredictor() (*emotion.Predictor, func(), error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, nil, err
	}
	extractor, err := emotion.NewExtractor()
	if err != nil {
		return nil, nil, err
	}
	loader, cleanup, err := newLoader(cfg)
	if err != nil {
		return nil, nil, emotionLoadError(err)
	}
	registry := emotion.NewRegistry(loader)
	return emotion.NewPredictor(extractor, registry), func() {
		registry.Close()
		cleanup()
	}, nil
}

// emotionLoadError classifies runtime setup failures as model load failures.
func emotionLoadError(err error) error {
	return &emotion.Error{Kind: emotion.KindModelLoad, Index: -1, Err: err}
}
