// Package onnxmodel runs emotion classifiers exported to ONNX.
//
// A [Classifier] wraps one ONNX Runtime session and implements
// [emotion.Classifier]. [NewLoader] reads "<artifact><ext>" from a
// [storage.FileStore] and plugs into [emotion.NewRegistry].
//
// # Thread Safety
//
// Classifier is safe for concurrent use. ONNX Runtime sessions accept
// concurrent Run calls, so Predict only takes a read lock; Close waits for
// in-flight predictions. Use [WithSerialRun] to serialize Predict calls.
package onnxmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/haivivi/speechemotion/pkg/emotion"
	"github.com/haivivi/speechemotion/pkg/onnx"
	"github.com/haivivi/speechemotion/pkg/storage"
)

// DefaultExtension is appended to artifact names by the loader.
const DefaultExtension = ".onnx"

// maxArtifactSize bounds a single model file.
const maxArtifactSize = 512 << 20

// session is the subset of *onnx.Session used by Classifier.
type session interface {
	InputNames() []string
	OutputNames() []string
	Run(inputNames []string, inputs []*onnx.Tensor, outputNames []string) ([]*onnx.Tensor, error)
	Close() error
}

// Classifier implements [emotion.Classifier] on an ONNX Runtime session.
type Classifier struct {
	mu      sync.RWMutex
	session session
	closed  bool

	inputName  string
	outputName string
	serial     bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithInputName selects the input tensor. Default: the first model input.
func WithInputName(name string) Option {
	return func(c *Classifier) {
		if name != "" {
			c.inputName = name
		}
	}
}

// WithOutputName selects the score tensor. Default: the first model output.
func WithOutputName(name string) Option {
	return func(c *Classifier) {
		if name != "" {
			c.outputName = name
		}
	}
}

// WithSerialRun serializes Predict calls for runtimes whose Run is not
// reentrant.
func WithSerialRun() Option {
	return func(c *Classifier) {
		c.serial = true
	}
}

// New creates a Classifier from in-memory ONNX model data.
func New(env *onnx.Env, modelData []byte, sessionOpts []onnx.SessionOption, opts ...Option) (*Classifier, error) {
	s, err := env.NewSession(modelData, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: %w", err)
	}
	c, err := newClassifier(s, opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	return c, nil
}

func newClassifier(s session, opts []Option) (*Classifier, error) {
	c := &Classifier{session: s}
	for _, opt := range opts {
		opt(c)
	}

	inputs, outputs := s.InputNames(), s.OutputNames()
	if c.inputName == "" {
		if len(inputs) == 0 {
			return nil, fmt.Errorf("onnxmodel: model has no inputs")
		}
		c.inputName = inputs[0]
	} else if !contains(inputs, c.inputName) {
		return nil, fmt.Errorf("onnxmodel: model has no input %q (have %v)", c.inputName, inputs)
	}
	if c.outputName == "" {
		if len(outputs) == 0 {
			return nil, fmt.Errorf("onnxmodel: model has no outputs")
		}
		c.outputName = outputs[0]
	} else if !contains(outputs, c.outputName) {
		return nil, fmt.Errorf("onnxmodel: model has no output %q (have %v)", c.outputName, outputs)
	}
	return c, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// InputName returns the input tensor name in use.
func (c *Classifier) InputName() string { return c.inputName }

// OutputName returns the output tensor name in use.
func (c *Classifier) OutputName() string { return c.outputName }

// Predict runs the model on t and returns the flattened scores of the
// output tensor.
func (c *Classifier) Predict(t emotion.Tensor) ([]float32, error) {
	if c.serial {
		c.mu.Lock()
		defer c.mu.Unlock()
	} else {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	if c.closed {
		return nil, onnx.ErrClosed
	}

	input, err := onnx.NewTensor(t.Shape, t.Data)
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: input: %w", err)
	}
	defer input.Close()

	outputs, err := c.session.Run([]string{c.inputName}, []*onnx.Tensor{input}, []string{c.outputName})
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: run: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			o.Close()
		}
	}()

	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnxmodel: run returned no outputs")
	}
	data, err := outputs[0].FloatData()
	if err != nil {
		return nil, fmt.Errorf("onnxmodel: output: %w", err)
	}
	return data, nil
}

// Close releases the session. It is safe to call more than once.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.session.Close()
}

// LoaderConfig configures [NewLoader].
type LoaderConfig struct {
	// Extension is appended to the artifact name. Default: ".onnx".
	Extension string

	// SessionOptions are passed to every session.
	SessionOptions []onnx.SessionOption

	// Options are applied to every Classifier.
	Options []Option
}

// NewLoader returns an [emotion.Loader] that reads model artifacts from
// store and opens them in env.
func NewLoader(env *onnx.Env, store storage.FileStore, cfg LoaderConfig) emotion.Loader {
	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return emotion.LoaderFunc(func(ctx context.Context, m emotion.Model) (emotion.Classifier, error) {
		name := m.Artifact + ext
		data, err := storage.ReadFile(ctx, store, name, maxArtifactSize)
		if err != nil {
			return nil, fmt.Errorf("onnxmodel: read %s: %w", name, err)
		}
		c, err := New(env, data, cfg.SessionOptions, cfg.Options...)
		if err != nil {
			return nil, err
		}
		slog.Debug("onnxmodel: session created",
			"artifact", name,
			"bytes", len(data),
			"input", c.InputName(),
			"output", c.OutputName())
		return c, nil
	})
}

// Compile-time interface check.
var _ emotion.Classifier = (*Classifier)(nil)
