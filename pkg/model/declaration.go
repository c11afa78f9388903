package model

import (
	"fmt"
)

// Location points at a position in the host's source.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return "-"
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Less orders locations by file, line and column.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Column < o.Column
}

// ConstantKind tells whether a marker argument resolved to a usable value.
type ConstantKind int

const (
	ConstantString ConstantKind = iota
	ConstantError               // the host could not evaluate the argument
)

// Constant is one marker argument value as evaluated by the host.
type Constant struct {
	Kind  ConstantKind
	Value string
}

// String returns a valid string constant.
func String(v string) Constant {
	return Constant{Kind: ConstantString, Value: v}
}

// Erroneous returns a constant the host failed to evaluate. raw is kept for logging.
func Erroneous(raw string) Constant {
	return Constant{Kind: ConstantError, Value: raw}
}

func (c Constant) IsError() bool {
	return c.Kind == ConstantError
}

// NamedArgument is a key=value marker argument.
type NamedArgument struct {
	Key   string
	Value Constant
}

// Marker is a declarative annotation attached to a declaration or member.
type Marker struct {
	Name     string // canonical marker identity, compared exactly
	TypeArgs []TypeRef
	Args     []Constant
	Named    []NamedArgument
	Location Location
}

// HasErrors reports whether any argument failed evaluation.
func (m Marker) HasErrors() bool {
	for _, a := range m.Args {
		if a.IsError() {
			return true
		}
	}
	for _, a := range m.Named {
		if a.Value.IsError() {
			return true
		}
	}
	return false
}

// Member is one field of a declaration.
type Member struct {
	Name     string
	Type     TypeRef
	Mutable  bool // has a setter; false for fields generated code cannot assign
	Location Location
	Markers  []Marker
}

// Declaration is one candidate type as described by the host.
type Declaration struct {
	Name      string
	Namespace string // import path
	Package   string // package name
	Abstract  bool
	Location  Location
	Markers   []Marker
	Members   []Member
}

// FullyQualifiedName returns namespace.name.
func (d Declaration) FullyQualifiedName() string {
	return d.Namespace + "." + d.Name
}

// Key identifies a declaration observation for deduplication.
func (d Declaration) Key() string {
	return d.FullyQualifiedName() + "@" + d.Location.String()
}
