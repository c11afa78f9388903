// Package annotation describes the markers that drive DTO generation and resolves
// their arguments into overrides.
//
// Four marker kinds are recognized:
//
//   - property marker: selects a member; optional target name.
//   - child-property marker: selects a member whose value is itself a generated
//     type; its single type argument supplies the target type.
//   - transfer marker: attached to the type; Name and Namespace override the
//     transfer type descriptor.
//   - conversion marker: attached to the type; Name, Namespace and
//     GenerationBehavior configure the conversion holder.
//
// Marker identity is an exact comparison against the names held in a MarkerSet.
package annotation

// MarkerKind enumerates the recognized markers.
type MarkerKind int

const (
	KindNone MarkerKind = iota
	KindProperty
	KindChildProperty
	KindTransfer
	KindConversion
)

func (k MarkerKind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindChildProperty:
		return "child-property"
	case KindTransfer:
		return "transfer"
	case KindConversion:
		return "conversion"
	}
	return "none"
}

// Default marker names used by the Go host.
const (
	DefaultProperty      = "dto"
	DefaultChildProperty = "dtochild"
	DefaultTransfer      = "dtogen:transfer"
	DefaultConversion    = "dtogen:conversion"
)

// Named argument keys.
const (
	KeyName      = "Name"
	KeyNamespace = "Namespace"
	KeyBehavior  = "GenerationBehavior"
	KeyType      = "Type"
)

// MarkerSet names the four marker kinds. It is passed explicitly to every component
// that recognizes markers so several configurations can coexist.
type MarkerSet struct {
	Property      string `json:"property,omitempty" yaml:"property,omitempty" mapstructure:"property,omitempty"`
	ChildProperty string `json:"child_property,omitempty" yaml:"child_property,omitempty" mapstructure:"child_property,omitempty"`
	Transfer      string `json:"transfer,omitempty" yaml:"transfer,omitempty" mapstructure:"transfer,omitempty"`
	Conversion    string `json:"conversion,omitempty" yaml:"conversion,omitempty" mapstructure:"conversion,omitempty"`
}

// DefaultMarkers returns the marker names used when none are configured.
func DefaultMarkers() MarkerSet {
	return MarkerSet{
		Property:      DefaultProperty,
		ChildProperty: DefaultChildProperty,
		Transfer:      DefaultTransfer,
		Conversion:    DefaultConversion,
	}
}

// Normalize fills empty names with defaults.
func (s MarkerSet) Normalize() MarkerSet {
	d := DefaultMarkers()
	if s.Property == "" {
		s.Property = d.Property
	}
	if s.ChildProperty == "" {
		s.ChildProperty = d.ChildProperty
	}
	if s.Transfer == "" {
		s.Transfer = d.Transfer
	}
	if s.Conversion == "" {
		s.Conversion = d.Conversion
	}
	return s
}

// KindOf returns the kind identified by name. The comparison is exact.
func (s MarkerSet) KindOf(name string) MarkerKind {
	switch name {
	case "":
		return KindNone
	case s.Property:
		return KindProperty
	case s.ChildProperty:
		return KindChildProperty
	case s.Transfer:
		return KindTransfer
	case s.Conversion:
		return KindConversion
	}
	return KindNone
}

// IsMemberMarker reports whether name marks a member for generation.
func (s MarkerSet) IsMemberMarker(name string) bool {
	k := s.KindOf(name)
	return k == KindProperty || k == KindChildProperty
}
