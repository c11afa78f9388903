// Package driver runs discovery, model building and synthesis over a set of
// declarations and merges the results deterministically.
package driver

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cmmoran/dtogen/internal/builder"
	"github.com/cmmoran/dtogen/internal/diagnostics"
	"github.com/cmmoran/dtogen/internal/synth"
	"github.com/cmmoran/dtogen/pkg/annotation"
	"github.com/cmmoran/dtogen/pkg/model"
)

// Options configure a Driver.
type Options struct {
	Builder builder.Options
	Synth   synth.Options
	Workers int
	Logger  *slog.Logger
	// Imports seeds import cycle detection; when nil the member types of the
	// declarations passed to Run stand in for the source imports.
	Imports model.Imports
}

// Result is the merged output of one run.
type Result struct {
	Models      []*model.ClassGenerationModel
	Artifacts   []model.Artifact
	Diagnostics []model.Diagnostic
}

// HasErrors reports whether any diagnostic was produced.
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Driver is safe to reuse; every Run starts from a clean slate.
type Driver struct {
	markers annotation.MarkerSet
	builder *builder.Builder
	synth   synth.Options
	workers int
	imports model.Imports
	log     *slog.Logger
}

// New returns a Driver.
func New(opts Options) *Driver {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	bo := opts.Builder
	if bo.Logger == nil {
		bo.Logger = l
	}
	if opts.Synth.PackageNames == nil {
		opts.Synth.PackageNames = bo.PackageNames
	}
	if opts.Synth.Suffix == "" {
		opts.Synth.Suffix = bo.Suffix
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Driver{
		markers: bo.Markers.Normalize(),
		builder: builder.New(bo),
		synth:   opts.Synth,
		workers: workers,
		imports: opts.Imports,
		log:     l,
	}
}

type slot struct {
	model     *model.ClassGenerationModel
	artifacts []model.Artifact
}

// Candidates filters decls to those with a property or child-property marker on
// some member, drops repeated observations of the same declaration and orders
// the rest by fully qualified name, then location.
func (d *Driver) Candidates(decls []model.Declaration) []model.Declaration {
	seen := make(map[string]bool, len(decls))
	out := make([]model.Declaration, 0, len(decls))
	for _, decl := range decls {
		if !d.markers.HasPropertyMarker(decl) {
			continue
		}
		key := decl.Key()
		if seen[key] {
			d.log.Debug("duplicate declaration", "key", key)
			continue
		}
		seen[key] = true
		out = append(out, decl)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FullyQualifiedName() != b.FullyQualifiedName() {
			return a.FullyQualifiedName() < b.FullyQualifiedName()
		}
		return a.Location.Less(b.Location)
	})
	return out
}

// Run processes decls. Configuration problems become diagnostics in the result;
// the returned error is reserved for cancellation and rendering failures.
func (d *Driver) Run(ctx context.Context, decls []model.Declaration) (*Result, error) {
	candidates := d.Candidates(decls)
	d.log.Debug("candidates discovered", "declarations", len(decls), "candidates", len(candidates))

	var (
		bag   diagnostics.Bag
		slots = make([]slot, len(candidates))
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(d.workers)
	for i, decl := range candidates {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mdl, ok := d.builder.Build(decl, &bag)
			if !ok {
				return nil
			}
			out, err := synth.Synthesize(mdl, d.synth)
			if err != nil {
				return errors.Wrapf(err, "synthesize %s", decl.FullyQualifiedName())
			}
			slots[i] = slot{model: mdl, artifacts: out.Artifacts()}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// the loop above may stop early without any task observing cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	owners := make(map[string]string)
	graph := newImportGraph(d.imports, decls)
	for _, s := range slots {
		if s.model == nil {
			continue
		}
		// a model whose artifacts collide with an earlier model is dropped whole
		collided := false
		for _, a := range s.artifacts {
			if owner, dup := owners[a.Key()]; dup {
				bag.Report(diagnostics.New(
					diagnostics.DuplicateGenerationTarget, s.model.Location,
					s.model.SourceFullyQualifiedName(), a.Namespace+"."+a.HintName, owner,
				))
				collided = true
			}
		}
		if collided {
			continue
		}
		// models are accepted in order, so the later model closing a cycle is dropped
		edges := modelEdges(s.model)
		if cycle := graph.cycle(edges); cycle != nil {
			bag.Report(diagnostics.New(
				diagnostics.CyclicNamespaceConfiguration, s.model.Location,
				s.model.SourceFullyQualifiedName(), strings.Join(cycle, " -> "),
			))
			continue
		}
		for _, e := range edges {
			graph.add(e)
		}
		for _, a := range s.artifacts {
			owners[a.Key()] = a.Source
		}
		res.Models = append(res.Models, s.model)
		res.Artifacts = append(res.Artifacts, s.artifacts...)
	}
	sort.SliceStable(res.Artifacts, func(i, j int) bool {
		a, b := res.Artifacts[i], res.Artifacts[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.HintName < b.HintName
	})
	res.Diagnostics = bag.Sorted()

	d.log.Debug("generation finished",
		"models", len(res.Models),
		"artifacts", len(res.Artifacts),
		"diagnostics", len(res.Diagnostics),
	)
	return res, nil
}
