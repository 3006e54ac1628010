// Package mfcc computes Mel-Frequency Cepstral Coefficients from mono
// float audio.
//
// The pipeline follows the librosa conventions so that features match
// classifiers trained with librosa.feature.mfcc:
//
//  1. Centered framing (n_fft/2 zero padding on both sides)
//  2. Periodic Hamming window
//  3. Power spectrum |X|^2 via a real FFT
//  4. Slaney-normalized mel filterbank on the Slaney mel scale
//  5. power_to_db with ref=1.0, amin=1e-10, top_db=80
//  6. Orthonormal DCT-II over the mel axis, first NumMFCC coefficients
//
// Default parameters:
//
//	SampleRate: 22050
//	FFTSize:    2048
//	WindowSize: 2048
//	HopSize:    512
//	NumMels:    128
//	NumMFCC:    20
//	TopDB:      80
package mfcc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Config controls MFCC extraction parameters.
type Config struct {
	SampleRate int     // audio sample rate in Hz (default 22050)
	FFTSize    int     // FFT size (default 2048)
	WindowSize int     // analysis window length, <= FFTSize (default 2048)
	HopSize    int     // hop length in samples (default 512)
	NumMels    int     // number of mel bands (default 128)
	NumMFCC    int     // number of cepstral coefficients kept (default 20)
	LowFreq    float64 // lowest mel frequency (default 0)
	HighFreq   float64 // highest mel frequency, 0 means SampleRate/2
	Center     bool    // pad FFTSize/2 zeros on both sides before framing
	TopDB      float64 // dynamic range clamp in dB, 0 disables
}

// DefaultConfig returns the librosa.feature.mfcc configuration used by the
// emotion classifiers.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		FFTSize:    2048,
		WindowSize: 2048,
		HopSize:    512,
		NumMels:    128,
		NumMFCC:    20,
		Center:     true,
		TopDB:      80,
	}
}

const (
	// amin is the power floor applied before the log.
	amin = 1e-10
)

// Extractor computes MFCC matrices. It only holds precomputed tables, so a
// single Extractor is safe for concurrent use.
type Extractor struct {
	cfg     Config
	window  []float64   // length FFTSize, centered
	melBank [][]float64 // [NumMels][FFTSize/2+1]
	dct     [][]float64 // [NumMFCC][NumMels]
}

// New creates an Extractor for cfg.
func New(cfg Config) (*Extractor, error) {
	switch {
	case cfg.SampleRate <= 0:
		return nil, fmt.Errorf("mfcc: invalid sample rate %d", cfg.SampleRate)
	case cfg.FFTSize <= 0:
		return nil, fmt.Errorf("mfcc: invalid fft size %d", cfg.FFTSize)
	case cfg.WindowSize <= 0 || cfg.WindowSize > cfg.FFTSize:
		return nil, fmt.Errorf("mfcc: window size %d must be in (0, %d]", cfg.WindowSize, cfg.FFTSize)
	case cfg.HopSize <= 0:
		return nil, fmt.Errorf("mfcc: invalid hop size %d", cfg.HopSize)
	case cfg.NumMels <= 0:
		return nil, fmt.Errorf("mfcc: invalid mel band count %d", cfg.NumMels)
	case cfg.NumMFCC <= 0 || cfg.NumMFCC > cfg.NumMels:
		return nil, fmt.Errorf("mfcc: coefficient count %d must be in (0, %d]", cfg.NumMFCC, cfg.NumMels)
	}
	high := cfg.HighFreq
	if high <= 0 {
		high = float64(cfg.SampleRate) / 2
	}
	if cfg.LowFreq < 0 || cfg.LowFreq >= high {
		return nil, fmt.Errorf("mfcc: invalid frequency range [%g, %g]", cfg.LowFreq, high)
	}
	cfg.HighFreq = high

	return &Extractor{
		cfg:     cfg,
		window:  padCenter(hammingWindow(cfg.WindowSize), cfg.FFTSize),
		melBank: melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
		dct:     dctMatrix(cfg.NumMFCC, cfg.NumMels),
	}, nil
}

// Config returns the resolved configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// NumFrames returns the number of analysis frames produced for n samples.
func (e *Extractor) NumFrames(n int) int {
	if e.cfg.Center {
		n += 2 * (e.cfg.FFTSize / 2)
	}
	if n < e.cfg.FFTSize {
		return 0
	}
	return 1 + (n-e.cfg.FFTSize)/e.cfg.HopSize
}

// ErrTooShort is returned when the input cannot fill a single frame.
var ErrTooShort = errors.New("mfcc: audio too short for a single frame")

// Extract computes the MFCC matrix of samples.
// Output: [NumMFCC][T] float32, coefficient-major, where T = NumFrames(len(samples)).
func (e *Extractor) Extract(samples []float64) ([][]float32, error) {
	cfg := e.cfg
	if len(samples) == 0 {
		return nil, ErrTooShort
	}
	numFrames := e.NumFrames(len(samples))
	if numFrames == 0 {
		return nil, ErrTooShort
	}

	signal := samples
	if cfg.Center {
		pad := cfg.FFTSize / 2
		signal = make([]float64, len(samples)+2*pad)
		copy(signal[pad:], samples)
	}

	nfft := cfg.FFTSize
	halfFFT := nfft/2 + 1
	fft := fourier.NewFFT(nfft)

	// Working buffers
	frame := make([]float64, nfft)
	coeffs := make([]complex128, halfFFT)
	power := make([]float64, halfFFT)

	// Log-mel spectrogram, frame-major while building.
	logMel := make([][]float64, numFrames)
	maxDB := math.Inf(-1)
	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize
		for i := 0; i < nfft; i++ {
			frame[i] = signal[start+i] * e.window[i]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		for k, c := range coeffs {
			re, im := real(c), imag(c)
			power[k] = re*re + im*im
		}

		mel := make([]float64, cfg.NumMels)
		for m, filter := range e.melBank {
			sum := 0.0
			for k, w := range filter {
				if w != 0 {
					sum += w * power[k]
				}
			}
			db := 10 * math.Log10(math.Max(amin, sum))
			if db > maxDB {
				maxDB = db
			}
			mel[m] = db
		}
		logMel[t] = mel
	}

	if cfg.TopDB > 0 {
		floor := maxDB - cfg.TopDB
		for _, mel := range logMel {
			for m, v := range mel {
				if v < floor {
					mel[m] = floor
				}
			}
		}
	}

	out := make([][]float32, cfg.NumMFCC)
	for k := range out {
		out[k] = make([]float32, numFrames)
	}
	for t, mel := range logMel {
		for k, basis := range e.dct {
			sum := 0.0
			for m, b := range basis {
				sum += b * mel[m]
			}
			out[k][t] = float32(sum)
		}
	}
	return out, nil
}
