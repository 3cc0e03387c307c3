package groovyls

import (
	"context"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/render"
)

// Hover renders the signature and groovydoc of the declaration the node at
// pos refers to. It returns nil when there is nothing to show.
func (s *Session) Hover(ctx context.Context, uri string, pos Position) (*Hover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil || n == nil {
		return nil, err
	}
	r := g.Resolver
	def := r.Definition(n, false)
	if def == nil {
		return nil, nil
	}
	var inferred *ast.ClassNode
	if v, ok := def.(ast.Variable); ok && v.DeclaredType() == nil {
		inferred = r.TypeOf(v)
	}
	sig, ok := render.Signature(def, inferred)
	if !ok {
		return nil, nil
	}
	var doc string
	if d, ok := def.(ast.Documented); ok {
		doc = d.Groovydoc()
	}
	h := &Hover{Contents: render.Hover(sig, doc)}
	if rng, ok := ranges.FromSpan(n.Pos()); ok {
		h.Range = &rng
	}
	return h, nil
}
