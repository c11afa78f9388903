// Package synth renders a ClassGenerationModel into Go source: the transfer struct
// and, unless the behavior is NoGeneration, the conversion holder.
package synth

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"github.com/jinzhu/inflection"

	"github.com/cmmoran/dtogen/pkg/model"
)

// DefaultHeader is written at the top of every generated file.
const DefaultHeader = "Code generated by dtogen. DO NOT EDIT."

// JSON tag casing.
const (
	JSONTagsNone  = "none"
	JSONTagsCamel = "camel"
	JSONTagsSnake = "snake"
)

const (
	originalParam = "poco"
	transferParam = "dto"
)

// Options configure rendering. The zero value renders with defaults.
type Options struct {
	Suffix         string // To<Suffix>/From<Suffix>, default Dto
	OriginalSuffix string // To<OriginalSuffix>/From<OriginalSuffix>, default Poco
	Header         string
	JSONTags       string
	ListAlias      bool
	PackageNames   model.PackageNames
}

func (o Options) withDefaults() Options {
	if o.Suffix == "" {
		o.Suffix = "Dto"
	}
	if o.OriginalSuffix == "" {
		o.OriginalSuffix = "Poco"
	}
	if o.Header == "" {
		o.Header = DefaultHeader
	}
	if o.JSONTags == "" {
		o.JSONTags = JSONTagsNone
	}
	return o
}

// Output holds the artifacts of one model. Conversion is nil for NoGeneration.
type Output struct {
	Transfer   model.Artifact
	Conversion *model.Artifact
}

// Artifacts returns the non-nil artifacts, transfer first.
func (o Output) Artifacts() []model.Artifact {
	out := []model.Artifact{o.Transfer}
	if o.Conversion != nil {
		out = append(out, *o.Conversion)
	}
	return out
}

// Synthesize renders m. It is a pure function of m and opts.
func Synthesize(m *model.ClassGenerationModel, opts Options) (Output, error) {
	if m == nil || len(m.Properties) == 0 {
		var name string
		if m != nil {
			name = m.SourceFullyQualifiedName()
		}
		return Output{}, &GenerationError{Type: name, Message: "model has no properties"}
	}
	opts = opts.withDefaults()
	r := renderer{m: m, opts: opts}

	transfer, err := r.transfer()
	if err != nil {
		return Output{}, err
	}
	out := Output{Transfer: transfer}

	if m.Conversion.Behavior.EmitsConversion() {
		conv, err := r.conversion()
		if err != nil {
			return Output{}, err
		}
		out.Conversion = &conv
	}
	return out, nil
}

type renderer struct {
	m    *model.ClassGenerationModel
	opts Options
}

func (r renderer) newFile(d model.GenerationTargetDescriptor, refs ...model.TypeRef) *jen.File {
	pkg := d.Package
	if pkg == "" {
		pkg = r.opts.PackageNames.Lookup(d.Namespace)
	}
	f := jen.NewFilePathName(d.Namespace, pkg)
	f.HeaderComment(r.opts.Header)

	seen := map[string]bool{d.Namespace: true}
	for _, ref := range refs {
		for _, ns := range ref.Namespaces() {
			if seen[ns] {
				continue
			}
			seen[ns] = true
			name := r.opts.PackageNames.Lookup(ns)
			switch name {
			case originalParam, transferParam:
				// would be shadowed by the conversion parameters
				f.ImportAlias(ns, name+"pkg")
			default:
				f.ImportName(ns, name)
			}
		}
	}
	return f
}

func (r renderer) render(f *jen.File, d model.GenerationTargetDescriptor, kind model.ArtifactKind) (model.Artifact, error) {
	hint := model.HintName(d.Name, "go")
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return model.Artifact{}, &GenerationError{
			Type:     r.m.SourceFullyQualifiedName(),
			Artifact: hint,
			Message:  "render",
			Cause:    err,
		}
	}
	pkg := d.Package
	if pkg == "" {
		pkg = r.opts.PackageNames.Lookup(d.Namespace)
	}
	return model.Artifact{
		HintName:  hint,
		Namespace: d.Namespace,
		Package:   pkg,
		Kind:      kind,
		Source:    r.m.SourceFullyQualifiedName(),
		Content:   buf.Bytes(),
	}, nil
}

func (r renderer) transfer() (model.Artifact, error) {
	t := r.m.Transfer
	refs := make([]model.TypeRef, 0, len(r.m.Properties))
	fields := make([]jen.Code, 0, len(r.m.Properties))
	for _, p := range r.m.Properties {
		ft := fieldType(p)
		refs = append(refs, ft)
		field := jen.Id(p.TargetName).Add(TypeCode(ft))
		if tag := jsonName(p.TargetName, r.opts.JSONTags); tag != "" {
			field.Tag(map[string]string{"json": tag})
		}
		fields = append(fields, field)
	}

	f := r.newFile(t, refs...)
	f.Commentf("%s is the transfer representation of %s.", t.Name, r.m.SourceClassName)
	f.Type().Id(t.Name).Struct(fields...)

	if r.opts.ListAlias {
		if plural := inflection.Plural(t.Name); plural != t.Name {
			f.Line()
			f.Commentf("%s is a list of %s.", plural, t.Name)
			f.Type().Id(plural).Index().Op("*").Id(t.Name)
		}
	}
	return r.render(f, t, model.ArtifactTransfer)
}

func (r renderer) conversion() (model.Artifact, error) {
	c := r.m.Conversion
	source := model.Named(r.m.SourceNamespace, r.m.SourceClassName)
	transfer := model.Named(r.m.Transfer.Namespace, r.m.Transfer.Name)

	f := r.newFile(c.GenerationTargetDescriptor, source, transfer)
	f.Commentf("%s converts between %s and %s.", c.Name, r.m.SourceClassName, r.m.Transfer.Name)
	f.Type().Id(c.Name).Struct()

	fns := c.Behavior.Functions()
	if fns.Has(model.ToTransfer) {
		f.Line()
		r.toFunc(f, "To"+r.opts.Suffix, originalParam, source, transferParam, transfer, true)
	}
	if fns.Has(model.FromTransfer) {
		f.Line()
		r.fromFunc(f, "From"+r.opts.Suffix, originalParam, source, transferParam, transfer, false)
	}
	if fns.Has(model.ToOriginal) {
		f.Line()
		r.toFunc(f, "To"+r.opts.OriginalSuffix, transferParam, transfer, originalParam, source, false)
	}
	if fns.Has(model.FromOriginal) {
		f.Line()
		r.fromFunc(f, "From"+r.opts.OriginalSuffix, transferParam, transfer, originalParam, source, true)
	}
	return r.render(f, c.GenerationTargetDescriptor, model.ArtifactConversion)
}

// toFunc renders func (Holder) Name(in *In) *Out that allocates the result.
func (r renderer) toFunc(f *jen.File, name, in string, inType model.TypeRef, out string, outType model.TypeRef, toTransfer bool) {
	body := []jen.Code{
		jen.If(jen.Id(in).Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Id(out).Op(":=").Op("&").Add(TypeCode(outType)).Values(),
	}
	body = append(body, r.assignments(out, in, toTransfer)...)
	body = append(body, jen.Return(jen.Id(out)))

	f.Commentf("%s returns a new %s populated from %s, or nil when %s is nil.", name, outType.Name, in, in)
	f.Func().Params(jen.Id(r.m.Conversion.Name)).Id(name).
		Params(jen.Id(in).Op("*").Add(TypeCode(inType))).
		Op("*").Add(TypeCode(outType)).
		Block(body...)
}

// fromFunc renders func (Holder) Name(dst *Dst, src *Src) that populates dst.
func (r renderer) fromFunc(f *jen.File, name, dst string, dstType model.TypeRef, src string, srcType model.TypeRef, toTransfer bool) {
	body := []jen.Code{
		jen.If(jen.Id(dst).Op("==").Nil().Op("||").Id(src).Op("==").Nil()).Block(jen.Return()),
	}
	body = append(body, r.assignments(dst, src, toTransfer)...)

	f.Commentf("%s copies the marked fields of %s into %s.", name, src, dst)
	f.Func().Params(jen.Id(r.m.Conversion.Name)).Id(name).
		Params(
			jen.Id(dst).Op("*").Add(TypeCode(dstType)),
			jen.Id(src).Op("*").Add(TypeCode(srcType)),
		).
		Block(body...)
}

// assignments copies every property in declaration order. toTransfer selects
// direction: transfer.Target = original.Source, or the inverse.
func (r renderer) assignments(dst, src string, toTransfer bool) []jen.Code {
	out := make([]jen.Code, 0, len(r.m.Properties))
	for _, p := range r.m.Properties {
		dstField, srcField := p.SourceName, p.TargetName
		if toTransfer {
			dstField, srcField = p.TargetName, p.SourceName
		}
		out = append(out, jen.Id(dst).Dot(dstField).Op("=").Add(valueCode(p, jen.Id(src).Dot(srcField))))
	}
	return out
}

// fieldType is the transfer field type of p. Collection arguments are taken from
// the classified element types, each carrying its declaring namespace.
func fieldType(p model.AnnotatedProperty) model.TypeRef {
	t := p.TargetType
	if p.Class != model.ClassCollection || len(p.CollectionElementTypes) != len(t.Args) {
		return t
	}
	args := make([]model.TypeRef, len(p.CollectionElementTypes))
	for i, e := range p.CollectionElementTypes {
		args[i] = e.Type
	}
	t.Args = args
	return t
}

// valueCode copies builtin slice and map collections so the transfer value and
// the original never share backing storage. Everything else is assigned as is.
func valueCode(p model.AnnotatedProperty, v *jen.Statement) *jen.Statement {
	if p.Class != model.ClassCollection || p.IsChildProperty {
		return v
	}
	switch p.TargetType.Kind {
	case model.KindSlice:
		return jen.Qual("slices", "Clone").Call(v)
	case model.KindMap:
		return jen.Qual("maps", "Clone").Call(v)
	}
	return v
}

// TypeCode renders t with every named type qualified by its import path.
func TypeCode(t model.TypeRef) *jen.Statement {
	switch t.Kind {
	case model.KindPointer:
		return jen.Op("*").Add(argCode(t.Args, 0))
	case model.KindSlice:
		return jen.Index().Add(argCode(t.Args, 0))
	case model.KindArray:
		return jen.Index(jen.Op(t.Len)).Add(argCode(t.Args, 0))
	case model.KindMap:
		return jen.Map(argCode(t.Args, 0)).Add(argCode(t.Args, 1))
	}

	var s *jen.Statement
	if t.Namespace == "" {
		s = jen.Id(t.Name)
	} else {
		s = jen.Qual(t.Namespace, t.Name)
	}
	if len(t.Args) > 0 {
		args := make([]jen.Code, len(t.Args))
		for i, a := range t.Args {
			args[i] = TypeCode(a)
		}
		s = s.Types(args...)
	}
	return s
}

func argCode(args []model.TypeRef, i int) *jen.Statement {
	if i < len(args) {
		return TypeCode(args[i])
	}
	return jen.Id("any")
}

func jsonName(field, casing string) string {
	switch strings.ToLower(casing) {
	case JSONTagsCamel:
		return inflect.CamelizeDownFirst(field)
	case JSONTagsSnake:
		return inflect.Underscore(field)
	}
	return ""
}

// ValidJSONTags reports whether s names a supported JSON tag casing.
func ValidJSONTags(s string) error {
	switch strings.ToLower(s) {
	case "", JSONTagsNone, JSONTagsCamel, JSONTagsSnake:
		return nil
	}
	return fmt.Errorf("unsupported json tag casing %q (want %s, %s or %s)", s, JSONTagsNone, JSONTagsCamel, JSONTagsSnake)
}
