package model

import (
	"path"
	"strings"
	"unicode"
)

// Imports maps an import path to the import paths its hand-written files import.
type Imports map[string][]string

// PackageNames maps import paths to package names known from loaded sources.
type PackageNames map[string]string

// Lookup returns the known package name for ns or a name derived from its path.
func (p PackageNames) Lookup(ns string) string {
	if n, ok := p[ns]; ok && n != "" {
		return n
	}
	return DerivePackageName(ns)
}

// DerivePackageName guesses a package name from an import path: the last element,
// skipping a /vN major version suffix, with characters invalid in identifiers
// replaced and a gopkg.in style .vN suffix dropped.
func DerivePackageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 && isDigits(base[i+2:]) {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")

	var b strings.Builder
	for i, r := range base {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r) && i > 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "pkg"
	}
	return b.String()
}

func isMajorVersion(s string) bool {
	return len(s) > 1 && s[0] == 'v' && isDigits(s[1:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
