// Package waveform loads audio files into mono float sample buffers.
//
// Load mirrors the usual "load as mono at a fixed rate" front-end of speech
// classifiers: the file is decoded, channels are averaged, integer PCM is
// scaled into [-1, 1), and the result is resampled to the requested rate.
//
// WAV (RIFF) is the supported container. Integer PCM 8/16/24/32-bit and
// 32-bit IEEE float decode, either as plain format tags or through
// WAVE_FORMAT_EXTENSIBLE; any other subformat fails with ErrUnsupported.
package waveform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/haivivi/speechemotion/pkg/audio/resampler"
)

// WAV format tags.
const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// ksDataFormatSuffix is the tail shared by the KSDATAFORMAT_SUBTYPE GUIDs;
// the first two bytes carry the plain format tag.
var ksDataFormatSuffix = []byte{
	0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00,
	0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71,
}

var (
	// ErrInvalid is returned when the input is not a readable WAV stream.
	ErrInvalid = errors.New("waveform: not a valid WAV file")

	// ErrUnsupported is returned for WAV encodings that cannot be decoded.
	ErrUnsupported = errors.New("waveform: unsupported WAV encoding")
)

// Clip is decoded mono audio.
type Clip struct {
	// Samples are amplitudes in [-1, 1).
	Samples []float64

	// SampleRate is the sample rate in Hz.
	SampleRate int
}

// Duration returns the length of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// Load decodes the WAV file at path and resamples it to sampleRate.
// A sampleRate <= 0 keeps the native rate.
func Load(path string, sampleRate int) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("waveform: open: %w", err)
	}
	defer f.Close()

	clip, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 || sampleRate == clip.SampleRate {
		return clip, nil
	}

	samples, err := resampler.Resample(clip.Samples, clip.SampleRate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("waveform: %w", err)
	}
	return &Clip{Samples: samples, SampleRate: sampleRate}, nil
}

// Decode reads a WAV stream and downmixes it to mono.
func Decode(r io.ReadSeeker) (*Clip, error) {
	tag, err := encoding(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("waveform: rewind: %w", err)
	}

	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrInvalid
	}

	bitDepth := int(d.BitDepth)
	var sample func(v int) float64
	switch tag {
	case formatPCM:
		switch bitDepth {
		case 8, 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupported, bitDepth)
		}
		sample = intSample(bitDepth)
	case formatFloat:
		if bitDepth != 32 {
			return nil, fmt.Errorf("%w: %d-bit float samples", ErrUnsupported, bitDepth)
		}
		// go-audio/wav hands 32-bit samples over as their int32 bit pattern.
		sample = func(v int) float64 {
			return float64(math.Float32frombits(uint32(int32(v))))
		}
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupported, tag)
	}

	channels := int(d.NumChans)
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupported, channels)
	}
	if d.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrInvalid)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("waveform: decode: %w", err)
	}

	return &Clip{
		Samples:    downmix(buf.Data, channels, sample),
		SampleRate: int(d.SampleRate),
	}, nil
}

// encoding scans the fmt chunk and returns the effective format tag,
// resolving WAVE_FORMAT_EXTENSIBLE to its subformat.
func encoding(r io.Reader) (uint16, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil || p.Format != riff.WavFormatID {
		return 0, ErrInvalid
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("%w: no fmt chunk", ErrInvalid)
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}

		if ch.Size < 16 {
			return 0, fmt.Errorf("%w: short fmt chunk", ErrInvalid)
		}
		fmtData := make([]byte, ch.Size)
		if _, err := io.ReadFull(ch, fmtData); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		tag := binary.LittleEndian.Uint16(fmtData[0:2])
		if tag != formatExtensible {
			return tag, nil
		}
		// cbSize(2) validBits(2) channelMask(4) subformat GUID(16)
		if len(fmtData) < 40 {
			return 0, fmt.Errorf("%w: truncated extensible fmt chunk", ErrInvalid)
		}
		guid := fmtData[24:40]
		if !bytes.Equal(guid[2:], ksDataFormatSuffix) {
			return 0, fmt.Errorf("%w: subformat %x", ErrUnsupported, guid)
		}
		return binary.LittleEndian.Uint16(guid[0:2]), nil
	}
}

// intSample scales an integer PCM sample into [-1, 1).
func intSample(bitDepth int) func(v int) float64 {
	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned with a 128 midpoint.
		offset = 128
	}
	return func(v int) float64 {
		return (float64(v) - offset) / scale
	}
}

// downmix averages interleaved frames into mono floats.
func downmix(data []int, channels int, sample func(v int) float64) []float64 {
	numFrames := len(data) / channels
	out := make([]float64, numFrames)
	for i := range out {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += sample(data[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}
