// Package emotion classifies short speech recordings into discrete emotion
// codes.
//
// # Architecture
//
// A prediction runs in four stages:
//
//  1. Resolve: model identifier → [Model] (label scheme + artifact name)
//  2. Registry.Acquire: model → loaded [Classifier], cached per identifier
//  3. Extractor.Extract: WAV file → [FeatureMatrix] of shape (frames, 20)
//  4. Decode: prediction tensor → classifier scores → [Decision]
//
// [Predictor] wires the stages together for a single file.
//
// # Label Schemes
//
// Two schemes exist and must never be cross-applied:
//
//	CREMA-D (6): ANG DIS FEA HAP NEU SAD
//	RAVDESS (8): NEU CAL HAP SAD ANG FEA DIS SUR
//
// The order is the training label order of each classifier, not an
// alphabetical one.
//
// # Errors
//
// Every failure is an [*Error] whose [Kind] tells the caller which stage
// failed. No stage retries and no placeholder label is ever returned.
package emotion

// LabelScheme is an immutable ordered mapping from class index to emotion
// code.
type LabelScheme struct {
	name   string
	labels []string
}

// Predefined schemes.
var (
	// CREMAD is the 6-class scheme of the CREMA-D trained classifier.
	CREMAD = LabelScheme{
		name:   "crema-d",
		labels: []string{"ANG", "DIS", "FEA", "HAP", "NEU", "SAD"},
	}

	// RAVDESS is the 8-class scheme of the RAVDESS trained classifier.
	RAVDESS = LabelScheme{
		name:   "ravdess",
		labels: []string{"NEU", "CAL", "HAP", "SAD", "ANG", "FEA", "DIS", "SUR"},
	}
)

// Name returns the scheme name ("crema-d" or "ravdess").
func (s LabelScheme) Name() string { return s.name }

// Len returns the number of classes.
func (s LabelScheme) Len() int { return len(s.labels) }

// Label returns the code for class index i.
// ok is false when i is outside the scheme.
func (s LabelScheme) Label(i int) (code string, ok bool) {
	if i < 0 || i >= len(s.labels) {
		return "", false
	}
	return s.labels[i], true
}

// Labels returns a copy of the codes in index order.
func (s LabelScheme) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s LabelScheme) String() string { return s.name }
