package model

// TypeClass is the Type Classifier verdict for a property type.
type TypeClass int

const (
	ClassPrimitive     TypeClass = iota // predeclared or opaque
	ClassChildSingular                  // a single nested user type
	ClassCollection                     // recognized parametrized collection shape
)

func (c TypeClass) String() string {
	switch c {
	case ClassChildSingular:
		return "child"
	case ClassCollection:
		return "collection"
	default:
		return "primitive"
	}
}

// ElementTypeRef is one type argument of a collection, with the namespace that
// declares its named leaf captured explicitly.
type ElementTypeRef struct {
	Name      string
	Namespace string
	Type      TypeRef
}

// QualifiedName returns namespace.name, or the bare name for predeclared types.
func (e ElementTypeRef) QualifiedName() string {
	if e.Namespace == "" {
		return e.Name
	}
	return e.Namespace + "." + e.Name
}

// AnnotatedProperty is one source member selected for generation.
type AnnotatedProperty struct {
	SourceName             string
	TargetName             string
	SourceType             TypeRef
	TargetType             TypeRef
	IsChildProperty        bool
	Class                  TypeClass
	CollectionElementTypes []ElementTypeRef
	Location               Location
}

// GenerationTargetDescriptor names a generated type.
type GenerationTargetDescriptor struct {
	Name      string
	Namespace string
	Package   string
}

// FullyQualifiedName is derived, never stored.
func (d GenerationTargetDescriptor) FullyQualifiedName() string {
	return d.Namespace + "." + d.Name
}

// ConversionTargetDescriptor names the conversion holder and its behavior.
type ConversionTargetDescriptor struct {
	GenerationTargetDescriptor
	Behavior GenerationBehavior
}

// ClassGenerationModel is the unit of work handed to the synthesizer.
type ClassGenerationModel struct {
	SourceClassName string
	SourceNamespace string
	SourcePackage   string
	Location        Location
	Transfer        GenerationTargetDescriptor
	Conversion      ConversionTargetDescriptor
	Properties      []AnnotatedProperty
}

// SourceFullyQualifiedName returns namespace.name of the original type.
func (m *ClassGenerationModel) SourceFullyQualifiedName() string {
	return m.SourceNamespace + "." + m.SourceClassName
}
