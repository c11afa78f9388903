package annotation

import (
	"go/token"
	"path"
	"strings"

	"golang.org/x/mod/module"

	"github.com/cmmoran/dtogen/pkg/model"
)

// PropertyMarker is the resolved marker of one member.
type PropertyMarker struct {
	Kind       MarkerKind // KindProperty or KindChildProperty
	TargetName string
	TargetType model.TypeRef // child properties only
	Marker     model.Marker
}

// TargetOverride holds explicit type-level overrides; empty fields keep defaults.
type TargetOverride struct {
	Name      string
	Namespace string
}

// ConversionOverride adds the generation behavior to the holder overrides.
type ConversionOverride struct {
	TargetOverride
	Behavior GenerationBehaviorSetting
}

// GenerationBehaviorSetting records whether the behavior was set explicitly.
type GenerationBehaviorSetting struct {
	Value    model.GenerationBehavior
	Explicit bool
}

// ResolveProperty finds the first member marker of m and resolves its arguments.
// A marker with erroneous arguments counts as no marker at all.
func (s MarkerSet) ResolveProperty(m model.Member) (PropertyMarker, bool) {
	for _, mk := range m.Markers {
		kind := s.KindOf(mk.Name)
		if kind != KindProperty && kind != KindChildProperty {
			continue
		}
		return resolveProperty(kind, mk, m.Name)
	}
	return PropertyMarker{}, false
}

func resolveProperty(kind MarkerKind, mk model.Marker, memberName string) (PropertyMarker, bool) {
	if mk.HasErrors() {
		return PropertyMarker{}, false
	}
	pm := PropertyMarker{
		Kind:       kind,
		TargetName: memberName,
		Marker:     mk,
	}

	// explicit positional > explicit named > default
	if v, ok := named(mk, KeyName); ok {
		pm.TargetName = v
	}
	if len(mk.Args) > 0 {
		pm.TargetName = mk.Args[0].Value
	}
	if !isExportedIdent(pm.TargetName) {
		return PropertyMarker{}, false
	}

	if kind == KindChildProperty {
		if len(mk.TypeArgs) != 1 || mk.TypeArgs[0].IsZero() {
			return PropertyMarker{}, false
		}
		pm.TargetType = mk.TypeArgs[0]
	}
	return pm, true
}

// HasPropertyMarker reports whether any member of d carries a property or
// child-property marker. It is the discovery filter for candidates.
func (s MarkerSet) HasPropertyMarker(d model.Declaration) bool {
	for _, m := range d.Members {
		for _, mk := range m.Markers {
			if s.IsMemberMarker(mk.Name) {
				return true
			}
		}
	}
	return false
}

// ResolveTransfer resolves the transfer marker of d.
func (s MarkerSet) ResolveTransfer(d model.Declaration) (TargetOverride, bool) {
	mk, ok := s.find(d, KindTransfer)
	if !ok {
		return TargetOverride{}, false
	}
	return resolveTarget(mk, d.Namespace)
}

// ResolveConversion resolves the conversion marker of d.
func (s MarkerSet) ResolveConversion(d model.Declaration) (ConversionOverride, bool) {
	mk, ok := s.find(d, KindConversion)
	if !ok {
		return ConversionOverride{}, false
	}
	target, ok := resolveTarget(mk, d.Namespace)
	if !ok {
		return ConversionOverride{}, false
	}
	co := ConversionOverride{
		TargetOverride: target,
		Behavior:       GenerationBehaviorSetting{Value: model.BehaviorFull},
	}
	v, ok := named(mk, KeyBehavior)
	if !ok {
		v, ok = named(mk, "Behavior")
	}
	if ok {
		b, err := model.ParseGenerationBehavior(v)
		if err != nil {
			return ConversionOverride{}, false
		}
		co.Behavior = GenerationBehaviorSetting{Value: b, Explicit: true}
	}
	return co, true
}

func (s MarkerSet) find(d model.Declaration, kind MarkerKind) (model.Marker, bool) {
	for _, mk := range d.Markers {
		if s.KindOf(mk.Name) == kind {
			return mk, true
		}
	}
	return model.Marker{}, false
}

func resolveTarget(mk model.Marker, ownerNamespace string) (TargetOverride, bool) {
	if mk.HasErrors() {
		return TargetOverride{}, false
	}
	var o TargetOverride
	if v, ok := named(mk, KeyName); ok {
		if !isExportedIdent(v) {
			return TargetOverride{}, false
		}
		o.Name = v
	}
	if v, ok := named(mk, KeyNamespace); ok {
		ns, err := ResolveNamespace(ownerNamespace, v)
		if err != nil {
			return TargetOverride{}, false
		}
		o.Namespace = ns
	}
	return o, true
}

// ResolveNamespace resolves ns against the owner's import path. Values starting
// with ./ or ../ are relative; anything else must be a valid import path.
func ResolveNamespace(owner, ns string) (string, error) {
	ns = strings.TrimSpace(ns)
	if ns == "." {
		return owner, nil
	}
	if strings.HasPrefix(ns, "./") || strings.HasPrefix(ns, "../") {
		ns = path.Join(owner, ns)
	}
	if err := module.CheckImportPath(ns); err != nil {
		return "", err
	}
	return ns, nil
}

func named(mk model.Marker, key string) (string, bool) {
	for _, a := range mk.Named {
		if strings.EqualFold(a.Key, key) {
			return a.Value.Value, true
		}
	}
	return "", false
}

func isExportedIdent(name string) bool {
	return token.IsIdentifier(name) && token.IsExported(name)
}
