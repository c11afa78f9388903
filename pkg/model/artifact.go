package model

import (
	"fmt"
)

// ArtifactKind distinguishes the two outputs of one model.
type ArtifactKind int

const (
	ArtifactTransfer ArtifactKind = iota
	ArtifactConversion
)

func (k ArtifactKind) String() string {
	if k == ArtifactConversion {
		return "conversion"
	}
	return "transfer"
}

// Artifact is one generated source file.
type Artifact struct {
	HintName  string // <Name>.g.go
	Namespace string
	Package   string
	Kind      ArtifactKind
	Source    string // fully qualified name of the original type
	Content   []byte
}

// Key identifies where the artifact lands; two artifacts with the same key collide.
func (a Artifact) Key() string {
	return a.Namespace + "/" + a.HintName
}

// HintName returns the deterministic artifact name for a generated type.
func HintName(typeName, ext string) string {
	return fmt.Sprintf("%s.g.%s", typeName, ext)
}

// Severity of a diagnostic. Only errors are produced today.
type Severity int

const (
	SeverityError Severity = iota
)

func (s Severity) String() string {
	return "error"
}

// Diagnostic is a structured, stable-coded configuration finding.
type Diagnostic struct {
	Code     string
	Title    string
	Category string
	Severity Severity
	Message  string
	Location Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Code, d.Message)
}
