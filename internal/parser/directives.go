package parser

import (
	"go/ast"
	"strconv"
	"strings"

	rawmodel "github.com/cmmoran/dtogen/internal/model"
	"github.com/cmmoran/dtogen/pkg/model"
)

// isDirectiveComment reports whether c is a //tool:name directive, following the
// convention of //go:generate: no space after the slashes, a lowercase
// alphanumeric prefix and a colon.
func isDirectiveComment(c string) bool {
	body, ok := strings.CutPrefix(c, "//")
	if !ok {
		return false
	}
	colon := strings.Index(body, ":")
	if colon <= 0 || colon == len(body)-1 {
		return false
	}
	for _, r := range body[:colon] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	next := body[colon+1]
	return next >= 'a' && next <= 'z' || next >= '0' && next <= '9'
}

func directives(cg *ast.CommentGroup) []rawmodel.Directive {
	if cg == nil {
		return nil
	}
	var out []rawmodel.Directive
	for _, c := range cg.List {
		if !isDirectiveComment(c.Text) {
			continue
		}
		name, args, _ := strings.Cut(strings.TrimPrefix(c.Text, "//"), " ")
		out = append(out, rawmodel.Directive{
			Name: name,
			Args: strings.TrimSpace(args),
			Pos:  c.Pos(),
		})
	}
	return out
}

// directiveMarker turns `key=value key2="quoted value" positional` into a marker.
func directiveMarker(d rawmodel.Directive, loc model.Location) model.Marker {
	mk := model.Marker{Name: d.Name, Location: loc}
	for _, tok := range splitDirectiveArgs(d.Args) {
		if key, val, ok := strings.Cut(tok, "="); ok && isArgKey(key) {
			mk.Named = append(mk.Named, model.NamedArgument{Key: key, Value: unquoteArg(val)})
			continue
		}
		mk.Args = append(mk.Args, unquoteArg(tok))
	}
	return mk
}

// splitDirectiveArgs splits on spaces outside double or back quotes.
func splitDirectiveArgs(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\' && quote == '"':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '`'):
			quote = r
		case quote == 0 && (r == ' ' || r == '\t'):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

func unquoteArg(v string) model.Constant {
	if v == "" {
		return model.String("")
	}
	if v[0] == '"' || v[0] == '`' {
		s, err := strconv.Unquote(v)
		if err != nil {
			return model.Erroneous(v)
		}
		return model.String(s)
	}
	if strings.ContainsAny(v, "\"`") {
		return model.Erroneous(v)
	}
	return model.String(v)
}

func isArgKey(k string) bool {
	if k == "" {
		return false
	}
	for i, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
