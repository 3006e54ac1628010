package emotion

import "fmt"

// ModelID identifies a trained emotion classifier.
type ModelID string

// Recognized model identifiers.
const (
	ModelRAVDESS ModelID = "emotion_recognition_model_R"
	ModelCREMAD  ModelID = "emotion_recognition_model_C"
)

// Model binds a model identifier to its label scheme and artifact name.
type Model struct {
	ID       ModelID
	Scheme   LabelScheme
	Artifact string // artifact base name, without extension
}

var models = []Model{
	{ID: ModelRAVDESS, Scheme: RAVDESS, Artifact: string(ModelRAVDESS)},
	{ID: ModelCREMAD, Scheme: CREMAD, Artifact: string(ModelCREMAD)},
}

// Resolve returns the Model for id. Unrecognized identifiers yield an
// [*Error] of kind [KindUnknownModel].
func Resolve(id ModelID) (Model, error) {
	for _, m := range models {
		if m.ID == id {
			return m, nil
		}
	}
	return Model{}, modelError(KindUnknownModel, string(id),
		fmt.Errorf("want %s or %s", ModelRAVDESS, ModelCREMAD))
}

// Models returns the recognized models in a stable order.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)
	return out
}
