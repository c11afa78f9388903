// Package parser is the library entry point: it loads Go packages, finds the
// declarations marked for DTO generation and renders their transfer types and
// conversion holders.
package parser

import (
	"context"
	"log/slog"

	"github.com/cmmoran/dtogen/internal/builder"
	"github.com/cmmoran/dtogen/internal/classify"
	"github.com/cmmoran/dtogen/internal/driver"
	loader "github.com/cmmoran/dtogen/internal/parser"
	"github.com/cmmoran/dtogen/internal/synth"
	"github.com/cmmoran/dtogen/pkg/model"
)

// Result is the outcome of a Parse.
type Result struct {
	Declarations []model.Declaration
	Models       []*model.ClassGenerationModel
	Artifacts    []model.Artifact
	Diagnostics  []model.Diagnostic
	PackageNames model.PackageNames
	// Dirs maps loaded package import paths to their directories.
	Dirs   map[string]string
	Module string
	// Imports holds the imports of the loaded hand-written files.
	Imports model.Imports
}

// HasErrors reports whether any diagnostic was produced.
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Parser holds the options of a run.
type Parser struct {
	Opts Options
	log  *slog.Logger
}

// New returns a Parser configured by opts.
func New(opts ...Option) (*Parser, error) {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}

	return NewWithOpts(o)
}

func NewWithOpts(opts *Options) (*Parser, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Parser{
		Opts: *opts,
		log:  slog.Default(),
	}, nil
}

// WithLogger replaces the logger, which defaults to slog.Default().
func (p *Parser) WithLogger(l *slog.Logger) *Parser {
	if l != nil {
		p.log = l
	}
	return p
}

// Parse loads the packages under Opts.InDir and generates artifacts for them.
func (p *Parser) Parse(ctx context.Context) (*Result, error) {
	loaded, err := loader.Load(ctx, loader.Config{
		Dir:      p.Opts.InDir,
		Patterns: p.Opts.Patterns,
		Tests:    p.Opts.Tests,
		Markers:  p.Opts.Markers,
		Logger:   p.log,
	})
	if err != nil {
		return nil, err
	}

	res, err := p.generate(ctx, loaded.Declarations, loaded.PackageNames, loaded.Imports)
	if err != nil {
		return nil, err
	}
	res.Dirs = loaded.Dirs
	res.Module = loaded.Module
	res.Imports = loaded.Imports
	return res, nil
}

// Generate runs discovery and synthesis over declarations supplied by any host.
// names maps import paths to package names; missing entries are derived from
// the path. Import cycles are judged from the member types of decls.
func (p *Parser) Generate(ctx context.Context, decls []model.Declaration, names model.PackageNames) (*Result, error) {
	return p.generate(ctx, decls, names, nil)
}

func (p *Parser) generate(ctx context.Context, decls []model.Declaration, names model.PackageNames, imports model.Imports) (*Result, error) {
	shapes, err := p.Opts.collectionShapes()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = model.PackageNames{}
	}

	d := driver.New(driver.Options{
		Builder: builder.Options{
			Markers:      p.Opts.Markers,
			Suffix:       p.Opts.Suffix,
			Classifier:   classify.New(shapes, p.Opts.OpaquePackages),
			PackageNames: names,
		},
		Synth: synth.Options{
			Suffix:         p.Opts.Suffix,
			OriginalSuffix: p.Opts.OriginalSuffix,
			JSONTags:       p.Opts.JSONTags,
			ListAlias:      p.Opts.ListAlias,
			PackageNames:   names,
		},
		Workers: p.Opts.Workers,
		Logger:  p.log,
		Imports: imports,
	})

	out, err := d.Run(ctx, decls)
	if err != nil {
		return nil, err
	}
	return &Result{
		Declarations: decls,
		Models:       out.Models,
		Artifacts:    out.Artifacts,
		Diagnostics:  out.Diagnostics,
		PackageNames: names,
	}, nil
}
