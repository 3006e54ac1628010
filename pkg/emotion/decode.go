package emotion

import (
	"errors"
	"fmt"
	"math"
)

// Classifier maps a prediction tensor to one score per class.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; the [Registry] hands the
// same Classifier to every caller of a model identifier.
type Classifier interface {
	// Predict runs the classifier on a (1, frames, coefficients, 1) tensor.
	Predict(t Tensor) ([]float32, error)

	// Close releases the underlying runtime resources.
	Close() error
}

// Decision is a decoded classifier output.
type Decision struct {
	Index  int       // selected class index
	Label  string    // emotion code for Index
	Scores []float32 // raw classifier scores
}

// Decode runs c on t and maps the result to a label under scheme.
func Decode(t Tensor, c Classifier, scheme LabelScheme) (Decision, error) {
	scores, err := c.Predict(t)
	if err != nil {
		return Decision{}, decodingError(-1, fmt.Errorf("classifier: %w", err))
	}
	return DecodeScores(scores, scheme)
}

// DecodeScores selects the highest score and looks its index up in scheme.
//
// Ties go to the lowest index. A score vector whose length differs from
// scheme.Len(), or that contains NaN, is a decoding failure.
func DecodeScores(scores []float32, scheme LabelScheme) (Decision, error) {
	if len(scores) != scheme.Len() {
		return Decision{}, decodingError(-1, fmt.Errorf(
			"%d scores for the %d-class %s scheme", len(scores), scheme.Len(), scheme.Name()))
	}
	idx, err := argmax(scores)
	if err != nil {
		return Decision{}, decodingError(-1, err)
	}
	label, ok := scheme.Label(idx)
	if !ok {
		return Decision{}, decodingError(idx, fmt.Errorf("index not in the %s scheme", scheme.Name()))
	}
	return Decision{Index: idx, Label: label, Scores: scores}, nil
}

var errNaNScore = errors.New("NaN score")

// argmax returns the index of the first maximum.
func argmax(v []float32) (int, error) {
	if len(v) == 0 {
		return -1, errors.New("no scores")
	}
	best := 0
	for i, x := range v {
		if math.IsNaN(float64(x)) {
			return -1, fmt.Errorf("%w at index %d", errNaNScore, i)
		}
		if x > v[best] {
			best = i
		}
	}
	return best, nil
}
