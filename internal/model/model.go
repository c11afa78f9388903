// Package model holds the loader's raw view of Go struct declarations before they
// are resolved into host-agnostic declarations.
package model

import (
	"go/ast"
	"go/token"
	"strconv"
)

type RawField struct {
	Name     string        // Go identifier, or the type name for embedded fields
	TypeExpr ast.Expr      // AST for the type (pointer, slice, selector, …)
	TagLit   *ast.BasicLit // the raw `…` literal
	IsExport bool          // ast.IsExported(Name)
	Pos      token.Pos
}

// Directive is one //name args comment attached to a type declaration.
type Directive struct {
	Name string
	Args string
	Pos  token.Pos
}

type RawStruct struct {
	Name       string // type name
	Directives []Directive
	TypeParams []string
	Fields     []*RawField
	PkgPath    string    // e.g. "github.com/you/project/model"
	PkgName    string    // e.g. "model"
	File       *ast.File // to resolve import qualifiers
	Pos        token.Pos
}

// IsGeneric reports whether the declaration has type parameters.
func (r *RawStruct) IsGeneric() bool {
	return len(r.TypeParams) > 0
}

// HasTypeParam reports whether name is one of the declaration's type parameters.
func (r *RawStruct) HasTypeParam(name string) bool {
	for _, p := range r.TypeParams {
		if p == name {
			return true
		}
	}
	return false
}

// DotImports returns the paths the declaring file imports with a "." name.
func (r *RawStruct) DotImports() []string {
	if r.File == nil {
		return nil
	}
	var out []string
	for _, imp := range r.File.Imports {
		if imp.Name == nil || imp.Name.Name != "." {
			continue
		}
		if path, err := strconv.Unquote(imp.Path.Value); err == nil {
			out = append(out, path)
		}
	}
	return out
}
