package emotion

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/haivivi/speechemotion/pkg/audio/mfcc"
	"github.com/haivivi/speechemotion/pkg/audio/waveform"
)

// Feature extraction constants of the emotion classifiers.
const (
	SampleRate        = 22050
	FixedDuration     = 2.5 // seconds
	PreEmphasisCoef   = 0.97
	NumMFCC           = 20
	FixedSampleLength = 55125 // round(FixedDuration * SampleRate)
)

// Extractor converts audio files into feature matrices.
//
// An Extractor only holds read-only tables and is safe for concurrent use.
type Extractor struct {
	mfcc   *mfcc.Extractor
	length int
	coef   float64
	load   func(path string, sampleRate int) (*waveform.Clip, error)

	cfgOverride      *mfcc.Config
	durationOverride float64
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMFCCConfig replaces the MFCC parameters. The sample rate of cfg is
// also the rate audio is resampled to.
func WithMFCCConfig(cfg mfcc.Config) ExtractorOption {
	return func(e *Extractor) {
		e.cfgOverride = &cfg
	}
}

// WithFixedDuration sets the length every waveform is cut or padded to.
func WithFixedDuration(seconds float64) ExtractorOption {
	return func(e *Extractor) {
		if seconds > 0 {
			e.durationOverride = seconds
		}
	}
}

// NewExtractor creates an Extractor with the classifier defaults:
// 22050 Hz, 2.5 s, pre-emphasis 0.97, 20 MFCCs over 2048/512 Hamming frames.
func NewExtractor(opts ...ExtractorOption) (*Extractor, error) {
	e := &Extractor{
		coef: PreEmphasisCoef,
		load: waveform.Load,
	}
	for _, opt := range opts {
		opt(e)
	}

	cfg := mfcc.DefaultConfig()
	cfg.NumMFCC = NumMFCC
	if e.cfgOverride != nil {
		cfg = *e.cfgOverride
	}
	m, err := mfcc.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("emotion: %w", err)
	}
	e.mfcc = m

	duration := FixedDuration
	if e.durationOverride > 0 {
		duration = e.durationOverride
	}
	e.length = int(math.Round(duration * float64(cfg.SampleRate)))
	return e, nil
}

// SampleRate returns the rate audio is resampled to.
func (e *Extractor) SampleRate() int { return e.mfcc.Config().SampleRate }

// SampleLength returns the fixed waveform length in samples.
func (e *Extractor) SampleLength() int { return e.length }

// Frames returns the number of rows every feature matrix has.
func (e *Extractor) Frames() int { return e.mfcc.NumFrames(e.length) }

// Extract decodes the audio file at path and returns its (frames, 20)
// feature matrix. Any failure, including a panic in the signal pipeline,
// is returned as an [*Error] of kind [KindExtraction].
func (e *Extractor) Extract(path string) (m FeatureMatrix, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = extractionError(path, fmt.Errorf("panic: %v", r))
		}
	}()

	start := time.Now()
	clip, err := e.load(path, e.SampleRate())
	if err != nil {
		return nil, extractionError(path, err)
	}
	m, err = e.FromSamples(clip.Samples)
	if err != nil {
		return nil, extractionError(path, err)
	}
	slog.Debug("emotion: features extracted",
		"path", path,
		"duration", clip.Duration(),
		"frames", m.Frames(),
		"elapsed", time.Since(start))
	return m, nil
}

// FromSamples runs the feature pipeline on mono samples already at
// SampleRate(): fix length, pre-emphasis, MFCC, transpose.
func (e *Extractor) FromSamples(samples []float64) (FeatureMatrix, error) {
	x := mfcc.FixLength(samples, e.length)
	x = mfcc.PreEmphasize(x, e.coef)
	coeffs, err := e.mfcc.Extract(x)
	if err != nil {
		return nil, err
	}
	return FeatureMatrix(mfcc.Transpose(coeffs)), nil
}
