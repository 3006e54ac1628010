package emotion

import "fmt"

// FeatureMatrix is an MFCC matrix of shape (frames, coefficients): one row
// per analysis frame.
type FeatureMatrix [][]float32

// Frames returns the number of rows.
func (m FeatureMatrix) Frames() int { return len(m) }

// Coefficients returns the row width, or 0 for an empty matrix.
func (m FeatureMatrix) Coefficients() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Tensor is a dense float32 tensor in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewPredictionTensor reshapes m to (1, frames, coefficients, 1), the input
// layout of the emotion classifiers.
func NewPredictionTensor(m FeatureMatrix) (Tensor, error) {
	frames, coeffs := m.Frames(), m.Coefficients()
	if frames == 0 || coeffs == 0 {
		return Tensor{}, fmt.Errorf("emotion: empty feature matrix")
	}
	data := make([]float32, 0, frames*coeffs)
	for i, row := range m {
		if len(row) != coeffs {
			return Tensor{}, fmt.Errorf("emotion: ragged feature matrix: row %d has %d values, want %d", i, len(row), coeffs)
		}
		data = append(data, row...)
	}
	return Tensor{
		Shape: []int64{1, int64(frames), int64(coeffs), 1},
		Data:  data,
	}, nil
}
