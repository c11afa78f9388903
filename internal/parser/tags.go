package parser

import (
	"go/ast"
	"strconv"
	"strings"

	"github.com/cmmoran/dtogen/pkg/annotation"
	"github.com/cmmoran/dtogen/pkg/model"
)

type tagPair struct {
	Key   string
	Value string
}

// fieldMarkers returns the member markers found in a field tag, in tag order.
func (p *Parser) fieldMarkers(r *resolver, lit *ast.BasicLit, loc model.Location) []model.Marker {
	if lit == nil {
		return nil
	}
	tag, err := strconv.Unquote(lit.Value)
	if err != nil {
		return nil
	}

	var out []model.Marker
	for _, kv := range structTagPairs(tag) {
		kind := p.cfg.Markers.KindOf(kv.Key)
		if kind != annotation.KindProperty && kind != annotation.KindChildProperty {
			continue
		}
		out = append(out, tagMarker(r, kind, kv, loc))
	}
	return out
}

func tagMarker(r *resolver, kind annotation.MarkerKind, kv tagPair, loc model.Location) model.Marker {
	mk := model.Marker{Name: kv.Key, Location: loc}
	for _, part := range splitTagParts(kv.Value) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok || !isArgKey(strings.TrimSpace(key)) {
			mk.Args = append(mk.Args, model.String(part))
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if kind == annotation.KindChildProperty && strings.EqualFold(key, annotation.KeyType) {
			t, err := r.parseTypeString(val)
			if err != nil {
				mk.Named = append(mk.Named, model.NamedArgument{Key: key, Value: model.Erroneous(val)})
				continue
			}
			mk.TypeArgs = append(mk.TypeArgs, t)
			continue
		}
		mk.Named = append(mk.Named, model.NamedArgument{Key: key, Value: model.String(val)})
	}
	return mk
}

// structTagPairs splits a struct tag into ordered key/value pairs following the
// reflect.StructTag conventions. Parsing stops at the first malformed pair.
func structTagPairs(tag string) []tagPair {
	var out []tagPair
	for tag != "" {
		tag = strings.TrimLeft(tag, " \t")
		if tag == "" {
			break
		}
		i := 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		key := tag[:i]
		tag = tag[i+1:]

		qv, err := strconv.QuotedPrefix(tag)
		if err != nil {
			break
		}
		tag = tag[len(qv):]
		val, err := strconv.Unquote(qv)
		if err != nil {
			break
		}
		out = append(out, tagPair{Key: key, Value: val})
	}
	return out
}

// splitTagParts splits a tag value on commas that are not nested inside
// brackets or parentheses, so generic type arguments stay intact.
func splitTagParts(v string) []string {
	if v == "" {
		return nil
	}
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range v {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, v[start:i])
				start = i + 1
			}
		}
	}
	return append(out, v[start:])
}
