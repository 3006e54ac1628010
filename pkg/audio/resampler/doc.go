// Package resampler converts mono float audio between sample rates using a
// pure Go SoX-style resampler (no CGO).
//
// Resample works on whole clips: it feeds the input, framed by silence,
// through a high quality resampler, flushes it, and returns exactly
// ceil(len(in) * dstRate / srcRate) samples aligned with the input. The
// engine's filter delay is measured once per rate pair and removed.
//
// Example usage:
//
//	out, err := resampler.Resample(samples, 44100, 22050)
//	if err != nil {
//	    return err
//	}
package resampler
