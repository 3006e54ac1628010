package onnxmodel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/haivivi/speechemotion/pkg/emotion"
	"github.com/haivivi/speechemotion/pkg/onnx"
	"github.com/haivivi/speechemotion/pkg/storage"
)

// fakeSession returns fixed scores and records the names it was run with.
type fakeSession struct {
	mu      sync.Mutex
	inputs  []string
	outputs []string
	scores  []float32
	runErr  error

	runs    int
	lastIn  []string
	lastOut []string
	closed  int
}

func (s *fakeSession) InputNames() []string  { return s.inputs }
func (s *fakeSession) OutputNames() []string { return s.outputs }

func (s *fakeSession) Run(inputNames []string, inputs []*onnx.Tensor, outputNames []string) ([]*onnx.Tensor, error) {
	s.mu.Lock()
	s.runs++
	s.lastIn = inputNames
	s.lastOut = outputNames
	s.mu.Unlock()
	if s.runErr != nil {
		return nil, s.runErr
	}
	out, err := onnx.NewTensor([]int64{1, int64(len(s.scores))}, s.scores)
	if err != nil {
		return nil, err
	}
	return []*onnx.Tensor{out}, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func predictionTensor() emotion.Tensor {
	return emotion.Tensor{Shape: []int64{1, 2, 2, 1}, Data: []float32{1, 2, 3, 4}}
}

func TestClassifierDefaultNames(t *testing.T) {
	s := &fakeSession{inputs: []string{"input_1", "mask"}, outputs: []string{"dense_2", "aux"}}
	c, err := newClassifier(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.InputName() != "input_1" || c.OutputName() != "dense_2" {
		t.Fatalf("names = %q, %q", c.InputName(), c.OutputName())
	}
}

func TestClassifierExplicitNames(t *testing.T) {
	s := &fakeSession{inputs: []string{"a", "b"}, outputs: []string{"x", "y"}}
	c, err := newClassifier(s, []Option{WithInputName("b"), WithOutputName("y")})
	if err != nil {
		t.Fatal(err)
	}
	if c.InputName() != "b" || c.OutputName() != "y" {
		t.Fatalf("names = %q, %q", c.InputName(), c.OutputName())
	}

	if _, err := newClassifier(s, []Option{WithInputName("nope")}); err == nil {
		t.Error("expected error for unknown input")
	}
	if _, err := newClassifier(s, []Option{WithOutputName("nope")}); err == nil {
		t.Error("expected error for unknown output")
	}
	if _, err := newClassifier(&fakeSession{outputs: []string{"x"}}, nil); err == nil {
		t.Error("expected error for model without inputs")
	}
	if _, err := newClassifier(&fakeSession{inputs: []string{"a"}}, nil); err == nil {
		t.Error("expected error for model without outputs")
	}
}

func TestClassifierPredict(t *testing.T) {
	s := &fakeSession{
		inputs:  []string{"in"},
		outputs: []string{"out"},
		scores:  []float32{0.1, 0.9, 0, 0, 0, 0},
	}
	c, err := newClassifier(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	scores, err := c.Predict(predictionTensor())
	if err != nil {
		t.Fatal(err)
	}
	d, err := emotion.DecodeScores(scores, emotion.CREMAD)
	if err != nil {
		t.Fatal(err)
	}
	if d.Label != "DIS" {
		t.Fatalf("label = %q, want DIS", d.Label)
	}
	if len(s.lastIn) != 1 || s.lastIn[0] != "in" || len(s.lastOut) != 1 || s.lastOut[0] != "out" {
		t.Fatalf("run names = %v, %v", s.lastIn, s.lastOut)
	}
}

func TestClassifierPredictErrors(t *testing.T) {
	cause := errors.New("run failed")
	s := &fakeSession{inputs: []string{"in"}, outputs: []string{"out"}, runErr: cause}
	c, err := newClassifier(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Predict(predictionTensor()); !errors.Is(err, cause) {
		t.Fatalf("expected run error, got %v", err)
	}

	bad := emotion.Tensor{Shape: []int64{1, 3}, Data: []float32{1}}
	if _, err := c.Predict(bad); err == nil {
		t.Fatal("expected error for mismatched tensor")
	}
}

func TestClassifierClose(t *testing.T) {
	s := &fakeSession{inputs: []string{"in"}, outputs: []string{"out"}, scores: []float32{1}}
	c, err := newClassifier(s, []Option{WithSerialRun()})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if s.closed != 1 {
		t.Fatalf("session closed %d times, want 1", s.closed)
	}
	if _, err := c.Predict(predictionTensor()); !errors.Is(err, onnx.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestClassifierConcurrentPredict(t *testing.T) {
	for _, serial := range []bool{false, true} {
		s := &fakeSession{inputs: []string{"in"}, outputs: []string{"out"}, scores: make([]float32, 8)}
		var opts []Option
		if serial {
			opts = append(opts, WithSerialRun())
		}
		c, err := newClassifier(s, opts)
		if err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := c.Predict(predictionTensor()); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()
		c.Close()

		if s.runs != 8 {
			t.Fatalf("serial=%v: %d runs, want 8", serial, s.runs)
		}
	}
}

func TestLoaderMissingArtifact(t *testing.T) {
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(nil, store, LoaderConfig{})

	m, _ := emotion.Resolve(emotion.ModelCREMAD)
	_, err = loader.Load(context.Background(), m)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoaderCorruptArtifact(t *testing.T) {
	env, err := onnx.NewEnv("onnxmodel-test")
	if err != nil {
		t.Skipf("onnx runtime unavailable: %v", err)
	}
	defer env.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "emotion_recognition_model_R.bin"), []byte("not onnx"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}

	r := emotion.NewRegistry(NewLoader(env, store, LoaderConfig{Extension: ".bin"}))
	defer r.Close()
	_, _, err = r.Acquire(context.Background(), emotion.ModelRAVDESS)
	if !errors.Is(err, emotion.KindModelLoad) {
		t.Fatalf("expected model load failure, got %v", err)
	}
}

// TestLoaderRealModel needs exported classifiers; SPEECHEMOTION_MODEL_DIR
// points at a directory holding emotion_recognition_model_{R,C}.onnx.
func TestLoaderRealModel(t *testing.T) {
	dir := os.Getenv("SPEECHEMOTION_MODEL_DIR")
	if dir == "" {
		t.Skip("SPEECHEMOTION_MODEL_DIR not set")
	}
	env, err := onnx.NewEnv("onnxmodel-test")
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	r := emotion.NewRegistry(NewLoader(env, store, LoaderConfig{}))
	defer r.Close()

	for _, m := range emotion.Models() {
		_, c, err := r.Acquire(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("%s: %v", m.ID, err)
		}
		tensor := emotion.Tensor{Shape: []int64{1, 108, 20, 1}, Data: make([]float32, 108*20)}
		d, err := emotion.Decode(tensor, c, m.Scheme)
		if err != nil {
			t.Fatalf("%s: %v", m.ID, err)
		}
		t.Logf("%s: silence -> %s %v", m.ID, d.Label, d.Scores)
	}
}
