package parser

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cmmoran/dtogen/internal/classify"
	"github.com/cmmoran/dtogen/internal/synth"
	"github.com/cmmoran/dtogen/pkg/annotation"
	"github.com/cmmoran/dtogen/pkg/manifest"
)

// Options control loading and generation.
//
// InDir          – directory to load packages from.
// Patterns       – package patterns relative to InDir (default ./...).
// Tests          – also load _test.go files.
// Suffix         – appended to the source name for the transfer type and used in
// ToDto/FromDto style function names (default Dto).
// OriginalSuffix – used in ToPoco/FromPoco style function names (default Poco).
// JSONTags       – none, camel or snake json tags on transfer fields.
// ListAlias      – also emit a plural slice type for each transfer type.
// Workers        – concurrent candidates (default GOMAXPROCS).
// Manifest       – manifest path relative to the module root ("-" disables it).
// OpaquePackages – import path prefixes whose named types are never child types.
// Collections    – generic collection types, as import/path.Name.
// Markers        – marker names; empty fields keep defaults.
type Options struct {
	InDir          string               `json:"in_dir,omitempty" yaml:"in_dir,omitempty" toml:"in_dir,omitempty" mapstructure:"in_dir,omitempty"`
	Patterns       []string             `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty" mapstructure:"patterns,omitempty"`
	Tests          bool                 `json:"tests,omitempty" yaml:"tests,omitempty" toml:"tests,omitempty" mapstructure:"tests,omitempty"`
	Suffix         string               `json:"suffix,omitempty" yaml:"suffix,omitempty" toml:"suffix,omitempty" mapstructure:"suffix,omitempty"`
	OriginalSuffix string               `json:"original_suffix,omitempty" yaml:"original_suffix,omitempty" toml:"original_suffix,omitempty" mapstructure:"original_suffix,omitempty"`
	JSONTags       string               `json:"json_tags,omitempty" yaml:"json_tags,omitempty" toml:"json_tags,omitempty" mapstructure:"json_tags,omitempty"`
	ListAlias      bool                 `json:"list_alias,omitempty" yaml:"list_alias,omitempty" toml:"list_alias,omitempty" mapstructure:"list_alias,omitempty"`
	Workers        int                  `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty" mapstructure:"workers,omitempty"`
	Manifest       string               `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty" mapstructure:"manifest,omitempty"`
	OpaquePackages []string             `json:"opaque_packages,omitempty" yaml:"opaque_packages,omitempty" toml:"opaque_packages,omitempty" mapstructure:"opaque_packages,omitempty"`
	Collections    []string             `json:"collections,omitempty" yaml:"collections,omitempty" toml:"collections,omitempty" mapstructure:"collections,omitempty"`
	Markers        annotation.MarkerSet `json:"markers,omitempty" yaml:"markers,omitempty" toml:"markers,omitempty" mapstructure:"markers,omitempty"`
}

// ManifestDisabled turns off manifest bookkeeping when used as Options.Manifest.
const ManifestDisabled = "-"

func NewOptions() *Options {
	return &Options{
		InDir:          ".",
		Patterns:       []string{"./..."},
		Suffix:         "Dto",
		OriginalSuffix: "Poco",
		JSONTags:       synth.JSONTagsNone,
		Workers:        runtime.GOMAXPROCS(0),
		Manifest:       manifest.DefaultFile,
		Markers:        annotation.DefaultMarkers(),
	}
}

// Normalize fills defaults for empty fields.
func (o *Options) Normalize() {
	if len(o.InDir) == 0 {
		o.InDir = "."
	}
	if !filepath.IsAbs(o.InDir) {
		if abs, err := filepath.Abs(o.InDir); err == nil {
			o.InDir = abs
		}
	}
	if len(o.Patterns) == 0 {
		o.Patterns = []string{"./..."}
	}
	if o.Suffix == "" {
		o.Suffix = "Dto"
	}
	if o.OriginalSuffix == "" {
		o.OriginalSuffix = "Poco"
	}
	o.JSONTags = strings.ToLower(strings.TrimSpace(o.JSONTags))
	if o.JSONTags == "" {
		o.JSONTags = synth.JSONTagsNone
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Manifest == "" {
		o.Manifest = manifest.DefaultFile
	}
	o.Markers = o.Markers.Normalize()
}

// Validate reports configuration values that cannot work.
func (o *Options) Validate() error {
	if err := synth.ValidJSONTags(o.JSONTags); err != nil {
		return err
	}
	if _, err := o.collectionShapes(); err != nil {
		return err
	}
	m := o.Markers.Normalize()
	names := map[string]string{}
	for _, kv := range [][2]string{
		{"property", m.Property},
		{"child_property", m.ChildProperty},
		{"transfer", m.Transfer},
		{"conversion", m.Conversion},
	} {
		if other, ok := names[kv[1]]; ok {
			return fmt.Errorf("markers %s and %s share the name %q", other, kv[0], kv[1])
		}
		names[kv[1]] = kv[0]
	}
	return nil
}

func (o *Options) collectionShapes() ([]classify.Shape, error) {
	shapes := make([]classify.Shape, 0, len(o.Collections))
	for _, c := range o.Collections {
		s, ok := classify.ParseShape(strings.TrimSpace(c))
		if !ok {
			return nil, fmt.Errorf("invalid collection type %q (want import/path.Name)", c)
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}

// ManifestEnabled reports whether a manifest should be read and written.
func (o *Options) ManifestEnabled() bool {
	return o.Manifest != ManifestDisabled
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithInDir(d string) Option                 { return func(o *Options) { o.InDir = d } }
func WithPatterns(p ...string) Option           { return func(o *Options) { o.Patterns = p } }
func WithTests() Option                         { return func(o *Options) { o.Tests = true } }
func WithSuffix(s string) Option                { return func(o *Options) { o.Suffix = s } }
func WithOriginalSuffix(s string) Option        { return func(o *Options) { o.OriginalSuffix = s } }
func WithJSONTags(casing string) Option         { return func(o *Options) { o.JSONTags = casing } }
func WithListAlias() Option                     { return func(o *Options) { o.ListAlias = true } }
func WithWorkers(n int) Option                  { return func(o *Options) { o.Workers = n } }
func WithManifest(path string) Option           { return func(o *Options) { o.Manifest = path } }
func WithoutManifest() Option                   { return func(o *Options) { o.Manifest = ManifestDisabled } }
func WithMarkers(m annotation.MarkerSet) Option { return func(o *Options) { o.Markers = m } }
func WithOpaquePackages(paths ...string) Option {
	return func(o *Options) {
		for _, p := range paths {
			o.OpaquePackages = append(o.OpaquePackages, strings.TrimSpace(p))
		}
	}
}
func WithCollections(types ...string) Option {
	return func(o *Options) {
		for _, t := range types {
			o.Collections = append(o.Collections, strings.TrimSpace(t))
		}
	}
}
