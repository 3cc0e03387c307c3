package compiler

import (
	"sort"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/index"
	"github.com/jward/groovyls/internal/resolve"
)

// Graph is one analysis generation: the source units, the class table built
// from them, the node index and a resolver over both. A published Graph is
// never mutated; the next update builds a new one.
type Graph struct {
	Generation int
	Table      *frontend.ClassTable
	Index      *index.Index
	Resolver   *resolve.Resolver

	units map[string]*frontend.SourceUnit
	uris  []string
}

func newGraph(gen int, units map[string]*frontend.SourceUnit, table *frontend.ClassTable, ix *index.Index) *Graph {
	uris := sortedKeys(units)
	return &Graph{
		Generation: gen,
		Table:      table,
		Index:      ix,
		Resolver:   resolve.New(ix, table),
		units:      units,
		uris:       uris,
	}
}

// URIs returns the URIs of every unit, sorted.
func (g *Graph) URIs() []string { return g.uris }

// Unit returns the source unit of uri, or nil.
func (g *Graph) Unit(uri string) *frontend.SourceUnit { return g.units[uri] }

// Text returns the text uri was compiled from.
func (g *Graph) Text(uri string) (string, bool) {
	u, ok := g.units[uri]
	if !ok {
		return "", false
	}
	return u.Text, true
}

// Modules returns the module of every unit in URI order, skipping units that
// failed to convert.
func (g *Graph) Modules() []*ast.ModuleNode {
	return modulesOf(g.units, g.uris)
}

func modulesOf(units map[string]*frontend.SourceUnit, uris []string) []*ast.ModuleNode {
	out := make([]*ast.ModuleNode, 0, len(uris))
	for _, uri := range uris {
		if u := units[uri]; u != nil && u.Module != nil {
			out = append(out, u.Module)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
