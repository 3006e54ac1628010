package emotion

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a prediction failure. Kind implements error so callers
// can branch with errors.Is(err, emotion.KindDecoding).
type Kind int

const (
	// KindUnspecified is returned by [KindOf] for errors outside this package.
	KindUnspecified Kind = iota

	// KindExtraction means the audio could not be turned into features.
	KindExtraction

	// KindUnknownModel means the model identifier is not recognized.
	KindUnknownModel

	// KindModelLoad means a recognized classifier artifact failed to load.
	KindModelLoad

	// KindDecoding means the classifier output does not fit the label scheme.
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindUnspecified:
		return "unspecified"
	case KindExtraction:
		return "extraction failure"
	case KindUnknownModel:
		return "unknown model"
	case KindModelLoad:
		return "model load failure"
	case KindDecoding:
		return "decoding failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error implements error.
func (k Kind) Error() string { return "emotion: " + k.String() }

// Error is a prediction failure.
//
// Path is set for extraction failures, Model for model failures, and Index
// for decoding failures where a class index was selected (-1 otherwise).
type Error struct {
	Kind  Kind
	Path  string
	Model string
	Index int
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("emotion: ")
	b.WriteString(e.Kind.String())
	if e.Model != "" {
		fmt.Fprintf(&b, " (model %s)", e.Model)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (file %s)", e.Path)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " (index %d)", e.Index)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnspecified
}

func extractionError(path string, err error) *Error {
	return &Error{Kind: KindExtraction, Path: path, Index: -1, Err: err}
}

func modelError(kind Kind, id string, err error) *Error {
	return &Error{Kind: kind, Model: id, Index: -1, Err: err}
}

func decodingError(index int, err error) *Error {
	return &Error{Kind: KindDecoding, Index: index, Err: err}
}
