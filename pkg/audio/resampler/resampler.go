package resampler

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// quality is the preset used for every conversion.
const quality = resampling.QualityHigh

// offsets caches the alignment offset per rate pair.
var offsets sync.Map // map[[2]int]int

// OutputLen returns the number of samples Resample produces for n input
// samples.
func OutputLen(n, srcRate, dstRate int) int {
	if n <= 0 {
		return 0
	}
	if srcRate == dstRate {
		return n
	}
	return int(math.Ceil(float64(n) * float64(dstRate) / float64(srcRate)))
}

// Resample converts mono samples from srcRate to dstRate. The input is not
// modified. When the rates are equal the result is a copy of the input.
//
// The output is time-aligned with the input: an event at input time t lands
// at output index round(t*dstRate) within a sample.
func Resample(samples []float64, srcRate, dstRate int) ([]float64, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate || len(samples) == 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out, nil
	}

	off, err := offset(srcRate, dstRate)
	if err != nil {
		return nil, err
	}
	y, err := run(samples, srcRate, dstRate)
	if err != nil {
		return nil, err
	}

	out := make([]float64, OutputLen(len(samples), srcRate, dstRate))
	for j := range out {
		if k := j + off; k >= 0 && k < len(y) {
			out[j] = y[k]
		}
	}
	return out, nil
}

// leadIn is the silence, in input samples, placed around the signal. The
// engine's first output is centered half a filter length into its input, so
// the lead-in keeps the start of the clip from being cut.
func leadIn(srcRate int) int {
	return max(srcRate/10, 64)
}

// run pushes lead-in silence, the samples and trailing silence through a
// fresh engine and flushes it.
func run(samples []float64, srcRate, dstRate int) ([]float64, error) {
	r, err := resampling.NewEngine(float64(srcRate), float64(dstRate), quality)
	if err != nil {
		return nil, fmt.Errorf("resampler: create: %w", err)
	}

	pad := leadIn(srcRate)
	in := make([]float64, pad+len(samples)+pad)
	copy(in[pad:], samples)

	out, err := r.Process(in)
	if err != nil {
		return nil, fmt.Errorf("resampler: process: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resampler: flush: %w", err)
	}
	return append(out, tail...), nil
}

// offset returns the index in run's output that corresponds to input time
// zero. It is measured once per rate pair by locating the peak of a
// Gaussian pulse; the filters are linear phase, so every symmetric pulse is
// shifted by the same amount.
func offset(srcRate, dstRate int) (int, error) {
	key := [2]int{srcRate, dstRate}
	if v, ok := offsets.Load(key); ok {
		return v.(int), nil
	}

	n := max(srcRate/2, 256)
	center := n / 2
	sigma := math.Max(float64(srcRate)/1000, 2)
	pulse := make([]float64, n)
	for i := range pulse {
		d := (float64(i) - float64(center)) / sigma
		pulse[i] = math.Exp(-0.5 * d * d)
	}

	y, err := run(pulse, srcRate, dstRate)
	if err != nil {
		return 0, err
	}
	peak, ok := peakIndex(y)
	if !ok {
		return 0, fmt.Errorf("resampler: calibration pulse lost for %d -> %d", srcRate, dstRate)
	}
	want := float64(center) * float64(dstRate) / float64(srcRate)
	off := int(math.Round(peak - want))

	offsets.Store(key, off)
	return off, nil
}

// peakIndex returns the position of the maximum of y, refined with a
// parabola through its neighbours.
func peakIndex(y []float64) (float64, bool) {
	if len(y) == 0 {
		return 0, false
	}
	best := 0
	for i, v := range y {
		if v > y[best] {
			best = i
		}
	}
	if y[best] <= 0 {
		return 0, false
	}
	if best == 0 || best == len(y)-1 {
		return float64(best), true
	}
	a, b, c := y[best-1], y[best], y[best+1]
	den := a - 2*b + c
	if den == 0 {
		return float64(best), true
	}
	return float64(best) + 0.5*(a-c)/den, true
}
