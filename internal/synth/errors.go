package synth

import (
	"errors"
	"strings"
)

// ErrGeneration is matched by every GenerationError.
var ErrGeneration = errors.New("dtogen: code generation failed")

// GenerationError reports a model that could not be rendered.
type GenerationError struct {
	Type     string // fully qualified source type
	Artifact string // hint name, when known
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("dtogen: generation error")
	if e.Type != "" {
		b.WriteString(" for ")
		b.WriteString(e.Type)
	}
	if e.Artifact != "" {
		b.WriteString(" (")
		b.WriteString(e.Artifact)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}
