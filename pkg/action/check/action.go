package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/dtogen/pkg/action/generate"
	"github.com/cmmoran/dtogen/pkg/manifest"
	"github.com/cmmoran/dtogen/pkg/model"
	"github.com/cmmoran/dtogen/pkg/parser"
)

// Drift describes one file that is not what generation would produce.
type Drift struct {
	File    string
	Missing bool   // generated content has no file on disk
	Stale   bool   // file is recorded in the manifest but no longer generated
	Diff    string // cmp.Diff(on disk, generated) for changed files
}

func (d Drift) String() string {
	switch {
	case d.Missing:
		return fmt.Sprintf("%s: missing", d.File)
	case d.Stale:
		return fmt.Sprintf("%s: stale", d.File)
	}
	return fmt.Sprintf("%s: out of date\n%s", d.File, d.Diff)
}

// Report is the outcome of Check.
type Report struct {
	Drift       []Drift
	Diagnostics []model.Diagnostic
}

// Clean reports whether the tree is current and no diagnostics were produced.
func (r *Report) Clean() bool {
	return len(r.Drift) == 0 && len(r.Diagnostics) == 0
}

// Check regenerates in memory and compares the result with the files on disk.
func Check(ctx context.Context, opts *parser.Options) (*Report, error) {
	plan, err := generate.NewPlan(ctx, opts)
	if err != nil {
		return nil, err
	}

	rep := &Report{Diagnostics: plan.Diagnostics}
	for _, f := range plan.Files {
		current, err := os.ReadFile(f.Path)
		if errors.Is(err, os.ErrNotExist) {
			rep.Drift = append(rep.Drift, Drift{File: f.Rel, Missing: true})
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", f.Rel)
		}
		if diff := cmp.Diff(string(current), string(f.Artifact.Content)); diff != "" {
			rep.Drift = append(rep.Drift, Drift{File: f.Rel, Diff: diff})
		}
	}

	if plan.ManifestPath == "" {
		return rep, nil
	}
	m, err := manifest.Load(plan.ManifestPath)
	if err != nil {
		return nil, errors.Wrap(err, "load manifest")
	}
	for _, stale := range m.Stale(plan.Entries()) {
		if _, err := os.Stat(filepath.Join(plan.Layout.Root, filepath.FromSlash(stale.File))); err == nil {
			rep.Drift = append(rep.Drift, Drift{File: stale.File, Stale: true})
		}
	}
	return rep, nil
}
