// Package parser loads Go packages and describes their struct declarations as
// model.Declaration values: struct tags become member markers and doc
// directives become type markers.
package parser

import (
	"context"
	"go/ast"
	"go/token"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	rawmodel "github.com/cmmoran/dtogen/internal/model"
	"github.com/cmmoran/dtogen/pkg/annotation"
	"github.com/cmmoran/dtogen/pkg/model"
)

// ErrNoPackages is returned when the patterns match nothing.
var ErrNoPackages = errors.New("no packages matched")

// Config controls a load.
type Config struct {
	Dir      string
	Patterns []string // default ./...
	Tests    bool
	Markers  annotation.MarkerSet
	Logger   *slog.Logger
	// Overlay replaces file contents by absolute path, see packages.Config.
	Overlay map[string][]byte
}

// Result is what the loader found.
type Result struct {
	Declarations []model.Declaration
	PackageNames model.PackageNames
	// Dirs maps each loaded package's import path to its directory.
	Dirs map[string]string
	// Module is the main module path, when known.
	Module string
	// Imports holds the imports of each package's hand-written files.
	Imports model.Imports
}

// Parser holds state of a load run.
type Parser struct {
	cfg  Config
	dir  string
	fset *token.FileSet
	log  *slog.Logger

	names    model.PackageNames
	dirs     map[string]string
	module   string
	raws     []*rawmodel.RawStruct
	declared map[string]map[string]bool // import path -> declared type names
	imports  map[string]map[string]bool
}

// New returns a Parser for cfg.
func New(cfg Config) (*Parser, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{"./..."}
	}
	cfg.Markers = cfg.Markers.Normalize()
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Parser{
		cfg:  cfg,
		dir:  abs,
		fset: token.NewFileSet(),
		log:  l,
	}, nil
}

// Load is New followed by Parse.
func Load(ctx context.Context, cfg Config) (*Result, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx)
}

// Parse loads the configured packages and returns their declarations.
func (p *Parser) Parse(ctx context.Context) (*Result, error) {
	p.reset()
	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedImports | packages.NeedDeps | packages.NeedModule,
		Dir:     p.dir,
		Fset:    p.fset,
		Tests:   p.cfg.Tests,
		Overlay: p.cfg.Overlay,
	}, p.cfg.Patterns...)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "load packages %v", p.cfg.Patterns),
			"check that the directory is inside a Go module and that `go list` succeeds there",
		)
	}
	if len(pkgs) == 0 {
		return nil, errors.Wrapf(ErrNoPackages, "patterns %v in %s", p.cfg.Patterns, p.dir)
	}

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if pkg.Name != "" {
			p.names[pkg.PkgPath] = pkg.Name
		}
	})

	for _, pkg := range pkgs {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		for _, e := range pkg.Errors {
			p.log.With("package", pkg.PkgPath, "error", e.Error()).Warn("package has errors")
		}
		if pkg.Module != nil && pkg.Module.Main && p.module == "" {
			p.module = pkg.Module.Path
		}
		if len(pkg.GoFiles) > 0 {
			if _, ok := p.dirs[pkg.PkgPath]; !ok {
				p.dirs[pkg.PkgPath] = filepath.Dir(pkg.GoFiles[0])
			}
		}
		for _, file := range pkg.Syntax {
			p.collectStructs(pkg.PkgPath, pkg.Name, file)
			// generated files are rewritten by the run that reads them
			if !ast.IsGenerated(file) {
				p.collectImports(pkg.PkgPath, file)
			}
		}
	}

	res := &Result{
		Declarations: make([]model.Declaration, 0, len(p.raws)),
		PackageNames: p.names,
		Dirs:         p.dirs,
		Module:       p.module,
		Imports:      make(model.Imports, len(p.imports)),
	}
	for path, set := range p.imports {
		list := make([]string, 0, len(set))
		for imp := range set {
			list = append(list, imp)
		}
		sort.Strings(list)
		res.Imports[path] = list
	}
	for _, raw := range p.raws {
		res.Declarations = append(res.Declarations, p.declaration(raw))
	}
	sort.SliceStable(res.Declarations, func(i, j int) bool {
		return res.Declarations[i].Key() < res.Declarations[j].Key()
	})

	p.log.Debug("packages loaded",
		"packages", len(pkgs),
		"structs", len(res.Declarations),
		"module", p.module,
	)
	return res, nil
}

func (p *Parser) reset() {
	p.names = make(model.PackageNames)
	p.dirs = make(map[string]string)
	p.module = ""
	p.raws = nil
	p.declared = make(map[string]map[string]bool)
	p.imports = make(map[string]map[string]bool)
}

func (p *Parser) collectImports(pkgPath string, file *ast.File) {
	set := p.imports[pkgPath]
	if set == nil {
		set = make(map[string]bool)
		p.imports[pkgPath] = set
	}
	for _, imp := range file.Imports {
		if path, err := strconv.Unquote(imp.Path.Value); err == nil {
			set[path] = true
		}
	}
}

func (p *Parser) declare(pkgPath, name string) {
	set := p.declared[pkgPath]
	if set == nil {
		set = make(map[string]bool)
		p.declared[pkgPath] = set
	}
	set[name] = true
}

func (p *Parser) collectStructs(pkgPath, pkgName string, file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}

		var genDirectives []rawmodel.Directive
		// a doc comment on a grouped declaration does not apply to its members
		if len(gen.Specs) == 1 {
			genDirectives = directives(gen.Doc)
		}

		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			p.declare(pkgPath, ts.Name.Name)

			// Skip true aliases: type X = Y
			if ts.Assign.IsValid() {
				continue
			}

			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}

			dirs := append([]rawmodel.Directive(nil), genDirectives...)
			dirs = append(dirs, directives(ts.Doc)...)

			raw := &rawmodel.RawStruct{
				Name:       ts.Name.Name,
				Directives: dirs,
				TypeParams: typeParams(ts.TypeParams),
				Fields:     []*rawmodel.RawField{},
				PkgPath:    pkgPath,
				PkgName:    pkgName,
				File:       file,
				Pos:        ts.Name.Pos(),
			}

			for _, fld := range st.Fields.List {
				raw.Fields = append(raw.Fields, parseRawFields(fld)...)
			}

			p.raws = append(p.raws, raw)
		}
	}
}

func typeParams(fl *ast.FieldList) []string {
	if fl == nil {
		return nil
	}
	var out []string
	for _, fp := range fl.List {
		for _, n := range fp.Names {
			out = append(out, n.Name)
		}
	}
	return out
}

func parseRawFields(f *ast.Field) []*rawmodel.RawField {
	if f == nil {
		return nil
	}

	// Embedded field: the name comes from the type expression.
	if len(f.Names) == 0 {
		name := embeddedFieldName(f.Type)
		return []*rawmodel.RawField{{
			Name:     name,
			IsExport: ast.IsExported(name),
			TypeExpr: f.Type,
			TagLit:   f.Tag,
			Pos:      f.Type.Pos(),
		}}
	}

	// one field spec may declare several names: X, Y string
	out := make([]*rawmodel.RawField, 0, len(f.Names))
	for _, id := range f.Names {
		out = append(out, &rawmodel.RawField{
			Name:     id.Name,
			IsExport: ast.IsExported(id.Name),
			TypeExpr: f.Type,
			TagLit:   f.Tag,
			Pos:      id.Pos(),
		})
	}
	return out
}

// declaration resolves a raw struct against its file's imports.
func (p *Parser) declaration(raw *rawmodel.RawStruct) model.Declaration {
	r := p.resolver(raw)
	d := model.Declaration{
		Name:      raw.Name,
		Namespace: raw.PkgPath,
		Package:   raw.PkgName,
		Abstract:  raw.IsGeneric(),
		Location:  p.location(raw.Pos),
	}
	for _, dir := range raw.Directives {
		switch p.cfg.Markers.KindOf(dir.Name) {
		case annotation.KindTransfer, annotation.KindConversion:
			d.Markers = append(d.Markers, directiveMarker(dir, p.location(dir.Pos)))
		}
	}

	for _, rf := range raw.Fields {
		if rf.Name == "" {
			continue
		}
		loc := p.location(rf.Pos)
		m := model.Member{
			Name:     rf.Name,
			Mutable:  rf.IsExport,
			Location: loc,
		}
		t, typeErr := r.typeRef(rf.TypeExpr)
		if typeErr == nil {
			m.Type = t
		}
		m.Markers = p.fieldMarkers(r, rf.TagLit, loc)
		if typeErr != nil && len(m.Markers) > 0 {
			p.log.Debug("unsupported field type",
				"type", raw.PkgPath+"."+raw.Name, "field", rf.Name, "error", typeErr)
			for i := range m.Markers {
				m.Markers[i].Args = append(m.Markers[i].Args, model.Erroneous(typeErr.Error()))
			}
		}
		d.Members = append(d.Members, m)
	}
	return d
}

func (p *Parser) location(pos token.Pos) model.Location {
	if !pos.IsValid() {
		return model.Location{}
	}
	position := p.fset.Position(pos)
	file := position.Filename
	if rel, err := filepath.Rel(p.dir, file); err == nil && !strings.HasPrefix(rel, "..") {
		file = rel
	}
	return model.Location{
		File:   filepath.ToSlash(file),
		Line:   position.Line,
		Column: position.Column,
	}
}

// helpers
func embeddedFieldName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.StarExpr:
		return embeddedFieldName(t.X)
	case *ast.IndexExpr:
		return embeddedFieldName(t.X)
	case *ast.IndexListExpr:
		return embeddedFieldName(t.X)
	}
	return ""
}
