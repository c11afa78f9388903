package driver

import (
	"sort"

	"github.com/cmmoran/dtogen/internal/classify"
	"github.com/cmmoran/dtogen/pkg/model"
)

// edge is one import: from imports to.
type edge struct{ from, to string }

// importGraph tracks imports between non-standard-library packages, seeded with
// the hand-written sources and grown by every accepted model's artifacts.
type importGraph map[string]map[string]bool

// newImportGraph seeds the graph from imports when the host supplied them, and
// otherwise from the member types of decls.
func newImportGraph(imports model.Imports, decls []model.Declaration) importGraph {
	g := importGraph{}
	if imports != nil {
		for from, tos := range imports {
			for _, to := range tos {
				g.add(edge{from, to})
			}
		}
		return g
	}
	for _, d := range decls {
		for _, m := range d.Members {
			for _, ns := range m.Type.Namespaces() {
				g.add(edge{d.Namespace, ns})
			}
		}
	}
	return g
}

func (g importGraph) add(e edge) {
	if e.from == e.to || classify.IsStandardLibrary(e.from) || classify.IsStandardLibrary(e.to) {
		return
	}
	set := g[e.from]
	if set == nil {
		set = make(map[string]bool)
		g[e.from] = set
	}
	set[e.to] = true
}

// modelEdges lists the imports the artifacts of m introduce. The conversion
// holder imports the source and transfer packages; the transfer type imports
// the packages of its field types.
func modelEdges(m *model.ClassGenerationModel) []edge {
	var out []edge
	for _, p := range m.Properties {
		for _, ns := range p.TargetType.Namespaces() {
			out = append(out, edge{m.Transfer.Namespace, ns})
		}
	}
	if m.Conversion.Behavior.EmitsConversion() {
		out = append(out,
			edge{m.Conversion.Namespace, m.SourceNamespace},
			edge{m.Conversion.Namespace, m.Transfer.Namespace},
		)
	}
	return out
}

// cycle returns the import cycle adding edges would close, as a path that
// starts and ends with the same package, or nil.
func (g importGraph) cycle(edges []edge) []string {
	trial := g.with(edges)
	for _, e := range edges {
		if _, ok := trial[e.from][e.to]; !ok {
			continue
		}
		if back := trial.path(e.to, e.from); back != nil {
			return append([]string{e.from}, back...)
		}
	}
	return nil
}

// with returns a copy of g that also holds edges; g is not modified.
func (g importGraph) with(edges []edge) importGraph {
	out := make(importGraph, len(g))
	for from, set := range g {
		out[from] = set
	}
	copied := map[string]bool{}
	for _, e := range edges {
		if !copied[e.from] {
			set := make(map[string]bool, len(out[e.from])+1)
			for to := range out[e.from] {
				set[to] = true
			}
			out[e.from] = set
			copied[e.from] = true
		}
		out.add(e)
	}
	return out
}

// path returns the shortest import path from..to, visiting neighbors in sorted
// order so the reported cycle is stable.
func (g importGraph) path(from, to string) []string {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			var out []string
			for n := to; n != ""; n = prev[n] {
				out = append(out, n)
			}
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
			return out
		}
		next := make([]string, 0, len(g[cur]))
		for n := range g[cur] {
			next = append(next, n)
		}
		sort.Strings(next)
		for _, n := range next {
			if _, seen := prev[n]; !seen {
				prev[n] = cur
				queue = append(queue, n)
			}
		}
	}
	return nil
}
