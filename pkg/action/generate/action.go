package generate

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/dtogen/internal/layout"
	"github.com/cmmoran/dtogen/internal/synth"
	"github.com/cmmoran/dtogen/pkg/manifest"
	"github.com/cmmoran/dtogen/pkg/model"
	"github.com/cmmoran/dtogen/pkg/parser"
)

// File is one artifact placed on disk.
type File struct {
	Path     string // absolute
	Rel      string // relative to the module root, slash separated
	Artifact model.Artifact
}

// Plan is the set of files a run produces.
type Plan struct {
	Layout       *layout.Layout
	Files        []File
	Diagnostics  []model.Diagnostic
	ManifestPath string // empty when the manifest is disabled
}

// Summary reports what Generate changed.
type Summary struct {
	Written     []string
	Unchanged   []string
	Removed     []string
	Diagnostics []model.Diagnostic
}

// NewPlan parses the packages selected by opts and places every artifact in the
// directory of its namespace.
func NewPlan(ctx context.Context, opts *parser.Options) (*Plan, error) {
	par, err := parser.NewWithOpts(opts)
	if err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	res, err := par.Parse(ctx)
	if err != nil {
		return nil, err
	}

	lay, err := layout.Discover(par.Opts.InDir)
	if err != nil {
		return nil, err
	}
	lay.AddPackages(res.Dirs)

	plan := &Plan{
		Layout:      lay,
		Files:       make([]File, 0, len(res.Artifacts)),
		Diagnostics: res.Diagnostics,
	}
	if par.Opts.ManifestEnabled() {
		plan.ManifestPath = par.Opts.Manifest
		if !filepath.IsAbs(plan.ManifestPath) {
			plan.ManifestPath = filepath.Join(lay.Root, plan.ManifestPath)
		}
	}
	for _, a := range res.Artifacts {
		dir, err := lay.Dir(a.Namespace)
		if err != nil {
			return nil, errors.Wrapf(err, "place %s generated for %s", a.HintName, a.Source)
		}
		p := filepath.Join(dir, a.HintName)
		plan.Files = append(plan.Files, File{Path: p, Rel: lay.Rel(p), Artifact: a})
	}
	return plan, nil
}

// Entries returns the manifest entries for the planned files.
func (p *Plan) Entries() []manifest.Entry {
	out := make([]manifest.Entry, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, manifest.Entry{
			File:      f.Rel,
			Namespace: f.Artifact.Namespace,
			Hint:      f.Artifact.HintName,
			Source:    f.Artifact.Source,
			SHA256:    manifest.Sum(f.Artifact.Content),
		})
	}
	return out
}

// Generate writes every planned file whose content changed, removes files a
// previous run produced that are no longer generated and records the manifest.
func Generate(ctx context.Context, opts *parser.Options) (*Summary, error) {
	l := slog.Default()

	plan, err := NewPlan(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range plan.Diagnostics {
		l.With("code", d.Code, "location", d.Location.String()).Error(d.Message)
	}

	sum := &Summary{Diagnostics: plan.Diagnostics}
	for _, f := range plan.Files {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		changed, err := writeFile(f.Path, f.Artifact.Content)
		if err != nil {
			return nil, err
		}
		if !changed {
			sum.Unchanged = append(sum.Unchanged, f.Rel)
			continue
		}
		sum.Written = append(sum.Written, f.Rel)
		l.With("file", f.Rel, "namespace", f.Artifact.Namespace, "source", f.Artifact.Source).Info("wrote generated file")
	}

	if plan.ManifestPath == "" {
		return sum, nil
	}
	m, err := manifest.Load(plan.ManifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", plan.ManifestPath)
	}
	for _, stale := range m.Replace(plan.Entries()) {
		removed, err := removeStale(plan.Layout.Root, stale)
		if err != nil {
			return nil, err
		}
		if removed {
			sum.Removed = append(sum.Removed, stale.File)
			l.With("file", stale.File, "source", stale.Source).Info("removed stale generated file")
		}
	}
	if err = m.Save(plan.ManifestPath); err != nil {
		return nil, errors.Wrapf(err, "save %s", plan.ManifestPath)
	}
	return sum, nil
}

func writeFile(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrapf(err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	return true, nil
}

// removeStale deletes a previously generated file unless it was hand edited
// into something that no longer looks generated.
func removeStale(root string, e manifest.Entry) (bool, error) {
	path := filepath.Join(root, filepath.FromSlash(e.File))
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "read %s", path)
	}
	if manifest.Sum(content) != e.SHA256 && !IsGenerated(content) {
		slog.Default().With("file", e.File).Warn("keeping stale file that no longer carries the generated header")
		return false, nil
	}
	if err = os.Remove(path); err != nil {
		return false, errors.Wrapf(err, "remove %s", path)
	}
	return true, nil
}

// IsGenerated reports whether content starts with the dtogen header.
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte("// "+synth.DefaultHeader))
}
