// Package index answers point and ancestry queries over the syntax trees of
// one analysis generation. Nodes are keyed by reference identity: two
// structurally equal nodes are distinct entries.
package index

import (
	"sort"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/ranges"
)

// file holds the entries owned by one URI. A file entry is immutable once
// built, so generations share entries of untouched files.
type file struct {
	uri   string
	nodes []ast.Node
	// decls lists the positioned declarations: classes and their members.
	decls   []ast.Node
	classes []*ast.ClassNode
	parents map[ast.Node]ast.Node
}

// Index is the node index of one generation.
type Index struct {
	files   map[string]*file
	uris    []string
	parents map[ast.Node]ast.Node
	owners  map[ast.Node]string
	classes map[string]*ast.ClassNode
}

// New returns an empty index.
func New() *Index {
	return &Index{
		files:   make(map[string]*file),
		parents: make(map[ast.Node]ast.Node),
		owners:  make(map[ast.Node]string),
		classes: make(map[string]*ast.ClassNode),
	}
}

// Build indexes modules from scratch.
func Build(modules []*ast.ModuleNode) *Index {
	ix := New()
	ix.Reindex(modules, nil)
	return ix
}

// Clone returns a copy of ix that shares every file entry. Reindexing the
// clone leaves ix untouched.
func (ix *Index) Clone() *Index {
	c := &Index{
		files:   make(map[string]*file, len(ix.files)),
		uris:    append([]string(nil), ix.uris...),
		parents: make(map[ast.Node]ast.Node, len(ix.parents)),
		owners:  make(map[ast.Node]string, len(ix.owners)),
		classes: make(map[string]*ast.ClassNode, len(ix.classes)),
	}
	for k, v := range ix.files {
		c.files[k] = v
	}
	for k, v := range ix.parents {
		c.parents[k] = v
	}
	for k, v := range ix.owners {
		c.owners[k] = v
	}
	for k, v := range ix.classes {
		c.classes[k] = v
	}
	return c
}

// Reindex updates the index from modules. A nil dirty set rebuilds every
// file. Otherwise only entries owned by dirty URIs are dropped, and the
// modules of dirty URIs are walked again; a dirty URI without a module is
// removed.
func (ix *Index) Reindex(modules []*ast.ModuleNode, dirty map[string]bool) {
	if dirty == nil {
		ix.files = make(map[string]*file, len(modules))
		ix.parents = make(map[ast.Node]ast.Node)
		ix.owners = make(map[ast.Node]string)
	} else {
		for uri := range dirty {
			ix.drop(uri)
		}
	}
	for _, m := range modules {
		if m == nil || (dirty != nil && !dirty[m.URI]) {
			continue
		}
		ix.drop(m.URI)
		f := walkModule(m)
		ix.files[m.URI] = f
		for n, p := range f.parents {
			ix.parents[n] = p
			ix.owners[n] = m.URI
		}
	}
	ix.uris = ix.uris[:0]
	for uri := range ix.files {
		ix.uris = append(ix.uris, uri)
	}
	sort.Strings(ix.uris)

	// Duplicate class names resolve to the file whose URI sorts first, the
	// same rule the class table applies.
	ix.classes = make(map[string]*ast.ClassNode)
	for _, uri := range ix.uris {
		for _, cls := range ix.files[uri].classes {
			if _, ok := ix.classes[cls.FullName()]; !ok {
				ix.classes[cls.FullName()] = cls
			}
		}
	}
}

func (ix *Index) drop(uri string) {
	f, ok := ix.files[uri]
	if !ok {
		return
	}
	for n := range f.parents {
		delete(ix.parents, n)
		delete(ix.owners, n)
	}
	delete(ix.files, uri)
}

func synthetic(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.MethodNode:
		return n.Synthetic
	case *ast.ClassNode:
		return n.Synthetic
	}
	return false
}

func isDeclaration(n ast.Node) bool {
	switch n.(type) {
	case *ast.ClassNode, *ast.MethodNode, *ast.ConstructorNode, *ast.FieldNode, *ast.PropertyNode:
		return n.Pos().HasPosition()
	}
	return false
}

// walkModule collects the entries of one module. The module node itself is
// not indexed; its imports and classes have no parent. Synthetic nodes and
// their subtrees are skipped.
func walkModule(m *ast.ModuleNode) *file {
	f := &file{uri: m.URI, parents: make(map[ast.Node]ast.Node)}
	ast.Walk(m, func(n, parent ast.Node) bool {
		if n == ast.Node(m) {
			return true
		}
		if synthetic(n) {
			return false
		}
		if parent == ast.Node(m) {
			parent = nil
		}
		f.nodes = append(f.nodes, n)
		f.parents[n] = parent
		if isDeclaration(n) {
			f.decls = append(f.decls, n)
		}
		if cls, ok := n.(*ast.ClassNode); ok {
			f.classes = append(f.classes, cls)
		}
		return true
	})
	return f
}

// NodeAt returns the most specific indexed node of uri whose range contains
// pos, or nil.
func (ix *Index) NodeAt(uri string, pos ranges.Position) ast.Node {
	f, ok := ix.files[uri]
	if !ok {
		return nil
	}
	var best ast.Node
	var bestRange ranges.Range
	for _, n := range f.nodes {
		r, ok := ranges.FromSpan(n.Pos())
		if !ok || !ranges.Contains(r, pos) {
			continue
		}
		if best == nil || ix.before(n, r, best, bestRange) {
			best, bestRange = n, r
		}
	}
	return best
}

// before reports whether a sorts ahead of b: later start, then earlier end,
// then the deeper of two nodes sharing a range. A constructor beats its
// class when their ranges coincide.
func (ix *Index) before(a ast.Node, ra ranges.Range, b ast.Node, rb ranges.Range) bool {
	if c := ranges.Compare(ra.Start, rb.Start); c != 0 {
		return c > 0
	}
	if c := ranges.Compare(ra.End, rb.End); c != 0 {
		return c < 0
	}
	_, aCtor := a.(*ast.ConstructorNode)
	_, bCtor := b.(*ast.ConstructorNode)
	_, aClass := a.(*ast.ClassNode)
	_, bClass := b.(*ast.ClassNode)
	switch {
	case aCtor && bClass:
		return true
	case aClass && bCtor:
		return false
	case ix.Contains(b, a):
		return true
	}
	return false
}

// ParentOf returns the parent of n, or nil for roots and unindexed nodes.
func (ix *Index) ParentOf(n ast.Node) ast.Node {
	return ix.parents[n]
}

// Contains reports whether ancestor is a proper ancestor of n.
func (ix *Index) Contains(ancestor, n ast.Node) bool {
	for cur := ix.parents[n]; cur != nil; cur = ix.parents[cur] {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// AncestorOfKind returns the nearest node, starting with n itself, whose kind
// is one of kinds.
func (ix *Index) AncestorOfKind(n ast.Node, kinds ...ast.Kind) ast.Node {
	for cur := n; cur != nil; cur = ix.parents[cur] {
		k := cur.Kind()
		for _, want := range kinds {
			if k == want {
				return cur
			}
		}
	}
	return nil
}

// EnclosingClass returns the class that contains n, or n when it is a class.
func (ix *Index) EnclosingClass(n ast.Node) *ast.ClassNode {
	if c, ok := ix.AncestorOfKind(n, ast.KindClass).(*ast.ClassNode); ok {
		return c
	}
	return nil
}

// URIOf returns the URI owning n.
func (ix *Index) URIOf(n ast.Node) (string, bool) {
	uri, ok := ix.owners[n]
	return uri, ok
}

// Has reports whether n is indexed.
func (ix *Index) Has(n ast.Node) bool {
	_, ok := ix.owners[n]
	return ok
}

// URIs returns the indexed URIs in sorted order.
func (ix *Index) URIs() []string {
	return append([]string(nil), ix.uris...)
}

// NodesIn returns the nodes of uri in depth-first source order.
func (ix *Index) NodesIn(uri string) []ast.Node {
	if f, ok := ix.files[uri]; ok {
		return f.nodes
	}
	return nil
}

// TopLevelIn returns the positioned declarations of uri: classes and their
// methods, constructors, fields and properties.
func (ix *Index) TopLevelIn(uri string) []ast.Node {
	if f, ok := ix.files[uri]; ok {
		return f.decls
	}
	return nil
}

// AllNodes returns every indexed node, files in URI order.
func (ix *Index) AllNodes() []ast.Node {
	var out []ast.Node
	for _, uri := range ix.uris {
		out = append(out, ix.files[uri].nodes...)
	}
	return out
}

// AllTopLevel returns the declarations of every file, files in URI order.
func (ix *Index) AllTopLevel() []ast.Node {
	var out []ast.Node
	for _, uri := range ix.uris {
		out = append(out, ix.files[uri].decls...)
	}
	return out
}

// ClassNodes returns every indexed class, files in URI order.
func (ix *Index) ClassNodes() []*ast.ClassNode {
	var out []*ast.ClassNode
	for _, uri := range ix.uris {
		out = append(out, ix.files[uri].classes...)
	}
	return out
}

// ClassByName returns the indexed class with the given binary name.
func (ix *Index) ClassByName(fqn string) *ast.ClassNode {
	return ix.classes[fqn]
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int { return len(ix.owners) }
