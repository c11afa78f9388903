// Package classify decides whether a property type is primitive, a nested child
// type or a collection, and extracts collection element types.
package classify

import (
	"strings"

	"github.com/cmmoran/dtogen/pkg/model"
)

// Shape identifies a generic named collection type by import path and name,
// e.g. {"github.com/emirpasic/gods/v2/sets/hashset", "Set"}.
type Shape struct {
	Namespace string
	Name      string
}

// ParseShape parses "import/path.Name".
func ParseShape(s string) (Shape, bool) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Shape{}, false
	}
	// a dot inside the last path element belongs to the name
	if strings.Contains(s[i:], "/") {
		return Shape{}, false
	}
	return Shape{Namespace: s[:i], Name: s[i+1:]}, true
}

// Classification is the verdict for one type.
type Classification struct {
	Class    model.TypeClass
	Elements []model.ElementTypeRef
}

// Classifier is a pure function of the declared type plus its configuration.
type Classifier struct {
	shapes map[Shape]bool
	opaque []string
}

// New returns a Classifier recognizing the builtin slice, array and map shapes plus
// the given generic named shapes. Named types from opaque namespaces (prefix match
// on path elements) are never treated as child types.
func New(shapes []Shape, opaque []string) *Classifier {
	c := &Classifier{
		shapes: make(map[Shape]bool, len(shapes)),
		opaque: append([]string(nil), opaque...),
	}
	for _, s := range shapes {
		c.shapes[s] = true
	}
	return c
}

// Classify classifies t.
func (c *Classifier) Classify(t model.TypeRef) Classification {
	if c.isCollection(t) {
		return Classification{
			Class:    model.ClassCollection,
			Elements: elements(t.Args),
		}
	}

	base := t.Deref()
	if base.Kind == model.KindNamed && !base.IsPredeclared() && !c.isOpaque(base.Namespace) {
		return Classification{Class: model.ClassChildSingular}
	}
	return Classification{Class: model.ClassPrimitive}
}

func (c *Classifier) isCollection(t model.TypeRef) bool {
	switch t.Kind {
	case model.KindSlice, model.KindArray, model.KindMap:
		return len(t.Args) > 0
	case model.KindNamed:
		// only parametrized instantiations of a registered shape qualify
		return len(t.Args) > 0 && c.shapes[Shape{Namespace: t.Namespace, Name: t.Name}]
	}
	return false
}

func (c *Classifier) isOpaque(ns string) bool {
	if IsStandardLibrary(ns) {
		return true
	}
	for _, o := range c.opaque {
		if ns == o || strings.HasPrefix(ns, o+"/") {
			return true
		}
	}
	return false
}

func elements(args []model.TypeRef) []model.ElementTypeRef {
	out := make([]model.ElementTypeRef, 0, len(args))
	for _, a := range args {
		leaf := a.Leaf()
		out = append(out, model.ElementTypeRef{
			Name:      leaf.Name,
			Namespace: leaf.Namespace,
			Type:      a,
		})
	}
	return out
}

// IsStandardLibrary reports whether an import path belongs to the standard library:
// its first element has no dot.
func IsStandardLibrary(ns string) bool {
	if ns == "" {
		return true
	}
	first, _, _ := strings.Cut(ns, "/")
	return !strings.Contains(first, ".")
}
