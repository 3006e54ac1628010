package mfcc

// FixLength returns a copy of x truncated or zero-padded at the end to
// exactly n samples.
func FixLength(x []float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	copy(out, x)
	return out
}

// PreEmphasize applies the first-order high-pass filter
// y[0] = x[0], y[i] = x[i] - coef*x[i-1] and returns the result as a new
// slice.
func PreEmphasize(x []float64, coef float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	y := make([]float64, len(x))
	y[0] = x[0]
	for i := 1; i < len(x); i++ {
		y[i] = x[i] - coef*x[i-1]
	}
	return y
}

// Transpose converts an [R][C] matrix to [C][R].
func Transpose(m [][]float32) [][]float32 {
	if len(m) == 0 {
		return nil
	}
	rows, cols := len(m), len(m[0])
	out := make([][]float32, cols)
	for c := range out {
		row := make([]float32, rows)
		for r := 0; r < rows; r++ {
			row[r] = m[r][c]
		}
		out[c] = row
	}
	return out
}
