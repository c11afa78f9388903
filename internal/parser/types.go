package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	rawmodel "github.com/cmmoran/dtogen/internal/model"
	"github.com/cmmoran/dtogen/pkg/model"
)

// resolver converts type expressions of one declaration into TypeRefs.
type resolver struct {
	raw        *rawmodel.RawStruct
	imports    map[string]string // file-local qualifier -> import path
	byName     map[string]string // package name -> import path, unique names only
	declared   map[string]bool   // type names declared by the package
	dotImports []string
}

func (p *Parser) resolver(raw *rawmodel.RawStruct) *resolver {
	r := &resolver{
		raw:        raw,
		imports:    make(map[string]string),
		byName:     make(map[string]string),
		declared:   p.declared[raw.PkgPath],
		dotImports: raw.DotImports(),
	}
	if raw.File != nil {
		for _, imp := range raw.File.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			alias := p.names.Lookup(path)
			if imp.Name != nil {
				if imp.Name.Name == "_" || imp.Name.Name == "." {
					continue
				}
				alias = imp.Name.Name
			}
			r.imports[alias] = path
		}
	}

	dup := map[string]bool{}
	for path, name := range p.names {
		if prev, ok := r.byName[name]; ok && prev != path {
			dup[name] = true
		}
		r.byName[name] = path
	}
	for name := range dup {
		delete(r.byName, name)
	}
	return r
}

// typeRef converts expr. Function, channel, struct literal and non-empty
// interface types are not representable and return an error.
func (r *resolver) typeRef(expr ast.Expr) (model.TypeRef, error) {
	switch t := expr.(type) {
	case *ast.ParenExpr:
		return r.typeRef(t.X)
	case *ast.Ident:
		return r.ident(t.Name)
	case *ast.SelectorExpr:
		return r.selector(t)
	case *ast.StarExpr:
		elem, err := r.typeRef(t.X)
		if err != nil {
			return model.TypeRef{}, err
		}
		return model.PointerTo(elem), nil
	case *ast.ArrayType:
		elem, err := r.typeRef(t.Elt)
		if err != nil {
			return model.TypeRef{}, err
		}
		if t.Len == nil {
			return model.SliceOf(elem), nil
		}
		lit, ok := t.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return model.TypeRef{}, fmt.Errorf("array length %s must be an integer literal", exprString(t.Len))
		}
		return model.ArrayOf(lit.Value, elem), nil
	case *ast.MapType:
		key, err := r.typeRef(t.Key)
		if err != nil {
			return model.TypeRef{}, err
		}
		val, err := r.typeRef(t.Value)
		if err != nil {
			return model.TypeRef{}, err
		}
		return model.MapOf(key, val), nil
	case *ast.IndexExpr:
		return r.generic(t.X, []ast.Expr{t.Index})
	case *ast.IndexListExpr:
		return r.generic(t.X, t.Indices)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return model.Builtin("any"), nil
		}
	}
	return model.TypeRef{}, fmt.Errorf("unsupported field type %s", exprString(expr))
}

func (r *resolver) ident(name string) (model.TypeRef, error) {
	if r.raw.HasTypeParam(name) {
		return model.Builtin(name), nil
	}
	if obj, ok := types.Universe.Lookup(name).(*types.TypeName); ok && obj != nil {
		return model.Builtin(name), nil
	}
	// without type information a dot-imported name is indistinguishable from a
	// local one, so only names the package declares are trusted
	if len(r.dotImports) > 0 && !r.declared[name] {
		return model.TypeRef{}, fmt.Errorf("%s is not declared in %s and may come from dot import %s",
			name, r.raw.PkgPath, strings.Join(r.dotImports, ", "))
	}
	return model.Named(r.raw.PkgPath, name), nil
}

func (r *resolver) selector(sel *ast.SelectorExpr) (model.TypeRef, error) {
	pkgIdent, ok := sel.X.(*ast.Ident)
	if !ok {
		return model.TypeRef{}, fmt.Errorf("unsupported qualifier in %s", exprString(sel))
	}
	if path, ok := r.imports[pkgIdent.Name]; ok {
		return model.Named(path, sel.Sel.Name), nil
	}
	// marker type arguments may name a loaded package the file does not import
	if path, ok := r.byName[pkgIdent.Name]; ok {
		return model.Named(path, sel.Sel.Name), nil
	}
	return model.TypeRef{}, fmt.Errorf("unknown package qualifier %q", pkgIdent.Name)
}

func (r *resolver) generic(x ast.Expr, indices []ast.Expr) (model.TypeRef, error) {
	base, err := r.typeRef(x)
	if err != nil {
		return model.TypeRef{}, err
	}
	if base.Kind != model.KindNamed || len(base.Args) > 0 {
		return model.TypeRef{}, fmt.Errorf("unsupported generic instantiation of %s", exprString(x))
	}
	for _, idx := range indices {
		arg, err := r.typeRef(idx)
		if err != nil {
			return model.TypeRef{}, err
		}
		base.Args = append(base.Args, arg)
	}
	return base, nil
}

// parseTypeString parses a type written inside a struct tag.
func (r *resolver) parseTypeString(s string) (model.TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.TypeRef{}, fmt.Errorf("empty type")
	}
	expr, err := parser.ParseExpr(s)
	if err != nil {
		return model.TypeRef{}, fmt.Errorf("parse type %q: %w", s, err)
	}
	return r.typeRef(expr)
}

func exprString(e ast.Expr) string {
	return types.ExprString(e)
}
