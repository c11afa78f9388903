// Package layout maps import paths to directories on disk using the main
// module's go.mod.
package layout

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/mod/modfile"
)

var (
	// ErrNoModule is returned when no go.mod is found above a directory.
	ErrNoModule = errors.New("no go.mod found")
	// ErrOutsideModule is returned for import paths no writable module owns.
	ErrOutsideModule = errors.New("import path is outside the main module")
)

// Layout resolves import paths of the main module and its local replacements.
type Layout struct {
	Module string // main module path
	Root   string // directory containing go.mod

	roots map[string]string // module path -> directory, main module and local replaces
	known map[string]string // package import path -> directory, from loaded packages
}

// Discover walks up from dir until it finds go.mod and parses it.
func Discover(dir string) (*Layout, error) {
	from, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}
	for {
		if _, err = os.Stat(filepath.Join(from, "go.mod")); err == nil {
			return Open(from)
		}
		parent := filepath.Dir(from)
		if parent == from {
			return nil, errors.WithHint(
				errors.Wrapf(ErrNoModule, "searching from %s", dir),
				"run dtogen inside a Go module or pass --input-directory",
			)
		}
		from = parent
	}
}

// Open parses the go.mod in modDir.
func Open(modDir string) (*Layout, error) {
	file := filepath.Join(modDir, "go.mod")
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "read go.mod")
	}
	mf, err := modfile.Parse(file, data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "parse go.mod")
	}
	if mf.Module == nil || mf.Module.Mod.Path == "" {
		return nil, errors.Newf("%s has no module directive", file)
	}

	l := &Layout{
		Module: mf.Module.Mod.Path,
		Root:   modDir,
		roots:  map[string]string{mf.Module.Mod.Path: modDir},
		known:  map[string]string{},
	}
	for _, r := range mf.Replace {
		// only directory replacements are writable
		if r.New.Version != "" || !modfile.IsDirectoryPath(r.New.Path) {
			continue
		}
		dir := r.New.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(modDir, filepath.FromSlash(dir))
		}
		l.roots[r.Old.Path] = dir
	}
	return l, nil
}

// AddPackages registers directories of packages the loader already found.
func (l *Layout) AddPackages(dirs map[string]string) {
	for p, d := range dirs {
		l.known[p] = d
	}
}

// Dir returns the directory for importPath. The directory need not exist yet.
func (l *Layout) Dir(importPath string) (string, error) {
	if d, ok := l.known[importPath]; ok {
		return d, nil
	}
	if mod, ok := l.owner(importPath); ok {
		rel := strings.TrimPrefix(strings.TrimPrefix(importPath, mod), "/")
		return filepath.Join(l.roots[mod], filepath.FromSlash(rel)), nil
	}
	return "", errors.WithHint(
		errors.Wrapf(ErrOutsideModule, "%s (module %s)", importPath, l.Module),
		"point the namespace at a package inside the main module or a local replace directive",
	)
}

// owner returns the longest module path that is a prefix of importPath.
func (l *Layout) owner(importPath string) (string, bool) {
	mods := make([]string, 0, len(l.roots))
	for m := range l.roots {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return len(mods[i]) > len(mods[j]) })
	for _, m := range mods {
		if importPath == m || strings.HasPrefix(importPath, m+"/") {
			return m, true
		}
	}
	return "", false
}

// Rel returns p relative to the module root with forward slashes, or p itself
// when it lies outside.
func (l *Layout) Rel(p string) string {
	rel, err := filepath.Rel(l.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return path.Clean(filepath.ToSlash(rel))
}
