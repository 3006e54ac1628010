package mfcc

import "math"

// Slaney mel scale constants: linear below 1 kHz, logarithmic above.
const (
	melLinearStep = 200.0 / 3
	melMinLogHz   = 1000.0
	melMinLog     = melMinLogHz / melLinearStep // 15
)

var melLogStep = math.Log(6.4) / 27.0

// hammingWindow generates a periodic Hamming window of length n, the
// variant used for spectral analysis (scipy fftbins=True).
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// padCenter zero-pads w on both sides to length size.
func padCenter(w []float64, size int) []float64 {
	if len(w) == size {
		return w
	}
	out := make([]float64, size)
	copy(out[(size-len(w))/2:], w)
	return out
}

// hzToMel converts frequency in Hz to the Slaney mel scale.
func hzToMel(hz float64) float64 {
	if hz >= melMinLogHz {
		return melMinLog + math.Log(hz/melMinLogHz)/melLogStep
	}
	return hz / melLinearStep
}

// melToHz converts a Slaney mel value back to Hz.
func melToHz(mel float64) float64 {
	if mel >= melMinLog {
		return melMinLogHz * math.Exp(melLogStep*(mel-melMinLog))
	}
	return mel * melLinearStep
}

// melFilterBank creates the Slaney-normalized mel filterbank matrix.
// Returns [numMels][halfFFT] where halfFFT = fftSize/2 + 1.
func melFilterBank(numMels, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	halfFFT := fftSize/2 + 1

	// numMels + 2 equally spaced mel points, in Hz
	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)
	melHz := make([]float64, numMels+2)
	step := (highMel - lowMel) / float64(numMels+1)
	for i := range melHz {
		melHz[i] = melToHz(lowMel + float64(i)*step)
	}

	fftFreqs := make([]float64, halfFFT)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}

	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		left, center, right := melHz[m], melHz[m+1], melHz[m+2]
		norm := 2.0 / (right - left)
		filter := make([]float64, halfFFT)
		for k, f := range fftFreqs {
			lower := (f - left) / (center - left)
			upper := (right - f) / (right - center)
			if w := math.Min(lower, upper); w > 0 {
				filter[k] = w * norm
			}
		}
		bank[m] = filter
	}
	return bank
}

// dctMatrix returns the first numCoeffs rows of the orthonormal DCT-II
// basis of size n.
func dctMatrix(numCoeffs, n int) [][]float64 {
	basis := make([][]float64, numCoeffs)
	for k := range basis {
		scale := math.Sqrt(2.0 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(n))
		}
		row := make([]float64, n)
		for i := range row {
			row[i] = scale * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(n)))
		}
		basis[k] = row
	}
	return basis
}
