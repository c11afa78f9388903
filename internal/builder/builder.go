// Package builder turns one candidate declaration into a ClassGenerationModel,
// validating markers along the way.
package builder

import (
	"log/slog"

	"github.com/cmmoran/dtogen/internal/classify"
	"github.com/cmmoran/dtogen/internal/diagnostics"
	"github.com/cmmoran/dtogen/pkg/annotation"
	"github.com/cmmoran/dtogen/pkg/model"
)

// DefaultSuffix is appended to the source type name to name the transfer type.
const DefaultSuffix = "Dto"

// ExtensionsSuffix is appended to the source type name to name the conversion holder.
const ExtensionsSuffix = "Extensions"

// Options configure a Builder.
type Options struct {
	Markers      annotation.MarkerSet
	Suffix       string
	Classifier   *classify.Classifier
	PackageNames model.PackageNames
	Logger       *slog.Logger
}

// Builder is stateless between Build calls and safe for concurrent use.
type Builder struct {
	markers  annotation.MarkerSet
	suffix   string
	classify *classify.Classifier
	pkgNames model.PackageNames
	log      *slog.Logger
}

// New returns a Builder with defaults applied to zero options.
func New(opts Options) *Builder {
	b := &Builder{
		markers:  opts.Markers.Normalize(),
		suffix:   opts.Suffix,
		classify: opts.Classifier,
		pkgNames: opts.PackageNames,
		log:      opts.Logger,
	}
	if b.suffix == "" {
		b.suffix = DefaultSuffix
	}
	if b.classify == nil {
		b.classify = classify.New(nil, nil)
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	return b
}

// Build produces the model for decl, or false when the type is skipped. Every
// configuration problem is sent to r.
func (b *Builder) Build(decl model.Declaration, r diagnostics.Reporter) (*model.ClassGenerationModel, bool) {
	l := b.log.With("type", decl.FullyQualifiedName())

	if decl.Abstract {
		r.Report(diagnostics.New(diagnostics.AbstractClass, decl.Location, decl.Name))
		return nil, false
	}

	conversion, hasConversion := b.markers.ResolveConversion(decl)

	props := make([]model.AnnotatedProperty, 0, len(decl.Members))
	for _, m := range decl.Members {
		pm, ok := b.markers.ResolveProperty(m)
		if !ok {
			if b.hasMemberMarker(m) {
				l.Debug("member marker could not be resolved, skipping", "member", m.Name)
			}
			continue
		}

		if !m.Mutable {
			r.Report(diagnostics.New(diagnostics.ReadOnlyProperty, m.Location, m.Name))
			continue
		}

		if pm.Kind == annotation.KindChildProperty {
			if !hasConversion || !conversion.Behavior.Explicit || conversion.Behavior.Value != model.BehaviorNoGeneration {
				r.Report(diagnostics.New(
					diagnostics.UnsupportedExtensionsClassGenerationWithChildProperty,
					m.Location, b.markers.Conversion, decl.Name,
				))
				return nil, false
			}
		}

		props = append(props, b.property(l, m, pm))
	}

	if len(props) == 0 {
		l.Debug("no eligible properties")
		return nil, false
	}

	transferOverride, _ := b.markers.ResolveTransfer(decl)

	mdl := &model.ClassGenerationModel{
		SourceClassName: decl.Name,
		SourceNamespace: decl.Namespace,
		SourcePackage:   decl.Package,
		Location:        decl.Location,
		Transfer: b.descriptor(decl, transferOverride, model.GenerationTargetDescriptor{
			Name:      decl.Name + b.suffix,
			Namespace: decl.Namespace,
		}),
		Conversion: model.ConversionTargetDescriptor{
			GenerationTargetDescriptor: b.descriptor(decl, conversion.TargetOverride, model.GenerationTargetDescriptor{
				Name:      decl.Name + ExtensionsSuffix,
				Namespace: decl.Namespace,
			}),
			Behavior: model.BehaviorFull,
		},
		Properties: props,
	}
	if hasConversion {
		mdl.Conversion.Behavior = conversion.Behavior.Value
	}

	l.Debug("built model",
		"properties", len(props),
		"transfer", mdl.Transfer.FullyQualifiedName(),
		"conversion", mdl.Conversion.FullyQualifiedName(),
		"behavior", mdl.Conversion.Behavior.String(),
	)
	return mdl, true
}

func (b *Builder) property(l *slog.Logger, m model.Member, pm annotation.PropertyMarker) model.AnnotatedProperty {
	p := model.AnnotatedProperty{
		SourceName: m.Name,
		TargetName: pm.TargetName,
		SourceType: m.Type,
		TargetType: m.Type,
		Location:   m.Location,
	}
	if pm.Kind == annotation.KindChildProperty {
		p.IsChildProperty = true
		p.TargetType = pm.TargetType
	}

	c := b.classify.Classify(p.TargetType)
	p.Class = c.Class
	p.CollectionElementTypes = c.Elements

	elems := make([]string, 0, len(c.Elements))
	for _, e := range c.Elements {
		elems = append(elems, e.QualifiedName())
	}
	l.Debug("classified property", "member", m.Name, "class", c.Class.String(), "elements", elems)
	if c.Class == model.ClassChildSingular && !p.IsChildProperty {
		l.Debug("property shares a nested type with the transfer type", "member", m.Name, "type", p.TargetType.String())
	}
	return p
}

func (b *Builder) descriptor(decl model.Declaration, o annotation.TargetOverride, def model.GenerationTargetDescriptor) model.GenerationTargetDescriptor {
	d := def
	if o.Name != "" {
		d.Name = o.Name
	}
	if o.Namespace != "" {
		d.Namespace = o.Namespace
	}
	if d.Namespace == decl.Namespace && decl.Package != "" {
		d.Package = decl.Package
	} else {
		d.Package = b.pkgNames.Lookup(d.Namespace)
	}
	return d
}

func (b *Builder) hasMemberMarker(m model.Member) bool {
	for _, mk := range m.Markers {
		if b.markers.IsMemberMarker(mk.Name) {
			return true
		}
	}
	return false
}
