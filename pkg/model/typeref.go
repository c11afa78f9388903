package model

import (
	"strings"
)

// Kind is the structural shape of a TypeRef.
type Kind int

const (
	KindNamed   Kind = iota // predeclared or declared type name, possibly generic
	KindPointer             // *T
	KindSlice               // []T
	KindArray               // [N]T
	KindMap                 // map[K]V
)

// TypeRef identifies a type by name and declaring namespace (Go import path).
//
// Composite shapes keep their operands in Args:
//
//	KindPointer, KindSlice, KindArray  -> Args[0] is the element
//	KindMap                            -> Args[0] key, Args[1] value
//	KindNamed                          -> type arguments of a generic instantiation
//
// A TypeRef is a value; none of its methods mutate it.
type TypeRef struct {
	Name      string
	Namespace string // "" for predeclared identifiers
	Kind      Kind
	Len       string // array length expression, KindArray only
	Args      []TypeRef
}

// Named returns a KindNamed reference.
func Named(namespace, name string, args ...TypeRef) TypeRef {
	return TypeRef{Name: name, Namespace: namespace, Kind: KindNamed, Args: args}
}

// Builtin returns a reference to a predeclared identifier such as string or int.
func Builtin(name string) TypeRef {
	return TypeRef{Name: name, Kind: KindNamed}
}

func PointerTo(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindPointer, Args: []TypeRef{elem}}
}

func SliceOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindSlice, Args: []TypeRef{elem}}
}

func ArrayOf(length string, elem TypeRef) TypeRef {
	return TypeRef{Kind: KindArray, Len: length, Args: []TypeRef{elem}}
}

func MapOf(key, value TypeRef) TypeRef {
	return TypeRef{Kind: KindMap, Args: []TypeRef{key, value}}
}

// IsZero reports whether t is the zero TypeRef.
func (t TypeRef) IsZero() bool {
	return t.Name == "" && t.Namespace == "" && t.Kind == KindNamed && len(t.Args) == 0
}

// IsPredeclared reports whether t names a universe-scope type (string, int, any, ...).
func (t TypeRef) IsPredeclared() bool {
	return t.Kind == KindNamed && t.Namespace == ""
}

// Elem returns the element of a pointer, slice or array, or the value of a map.
func (t TypeRef) Elem() (TypeRef, bool) {
	switch t.Kind {
	case KindPointer, KindSlice, KindArray:
		if len(t.Args) == 1 {
			return t.Args[0], true
		}
	case KindMap:
		if len(t.Args) == 2 {
			return t.Args[1], true
		}
	}
	return TypeRef{}, false
}

// Leaf strips pointers, slices, arrays and maps (following the value side) and
// returns the innermost named type.
func (t TypeRef) Leaf() TypeRef {
	cur := t
	for cur.Kind != KindNamed {
		next, ok := cur.Elem()
		if !ok {
			return cur
		}
		cur = next
	}
	return cur
}

// Deref strips pointer indirections only.
func (t TypeRef) Deref() TypeRef {
	cur := t
	for cur.Kind == KindPointer && len(cur.Args) == 1 {
		cur = cur.Args[0]
	}
	return cur
}

// QualifiedName returns namespace.name for named types and the bare name for
// predeclared ones.
func (t TypeRef) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// String renders the type with fully qualified named types, e.g.
// map[string][]*example.com/app/model.Detail.
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case KindPointer:
		b.WriteString("*")
		writeArg(b, t.Args, 0)
	case KindSlice:
		b.WriteString("[]")
		writeArg(b, t.Args, 0)
	case KindArray:
		b.WriteString("[")
		b.WriteString(t.Len)
		b.WriteString("]")
		writeArg(b, t.Args, 0)
	case KindMap:
		b.WriteString("map[")
		writeArg(b, t.Args, 0)
		b.WriteString("]")
		writeArg(b, t.Args, 1)
	default:
		b.WriteString(t.QualifiedName())
		if len(t.Args) > 0 {
			b.WriteString("[")
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteString("]")
		}
	}
}

func writeArg(b *strings.Builder, args []TypeRef, i int) {
	if i < len(args) {
		args[i].write(b)
		return
	}
	b.WriteString("invalid")
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Name != o.Name || t.Namespace != o.Namespace || t.Kind != o.Kind || t.Len != o.Len || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Namespaces returns every non-empty namespace referenced by t, in first-seen order.
func (t TypeRef) Namespaces() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(TypeRef)
	walk = func(r TypeRef) {
		if r.Namespace != "" && !seen[r.Namespace] {
			seen[r.Namespace] = true
			out = append(out, r.Namespace)
		}
		for _, a := range r.Args {
			walk(a)
		}
	}
	walk(t)
	return out
}
