// Package audio is the umbrella for the signal-processing sub-packages:
//
//   - waveform: decode WAV files to mono float32 at a target rate
//   - resampler: sample-rate conversion for float32 signals
//   - mfcc: librosa-compatible mel-frequency cepstral coefficients
//
// Example usage:
//
//	import (
//	    "github.com/haivivi/speechemotion/pkg/audio/mfcc"
//	    "github.com/haivivi/speechemotion/pkg/audio/waveform"
//	)
//
//	clip, err := waveform.Load("clip.wav", 22050)
//	if err != nil {
//	    return err
//	}
//	m, err := mfcc.New(mfcc.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	coeffs, err := m.Extract(clip.Samples) // [coefficient][frame]
package audio
