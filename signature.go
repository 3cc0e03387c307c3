package groovyls

import (
	"context"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/render"
)

func noSignatures() *SignatureHelp {
	return &SignatureHelp{Signatures: []SignatureInformation{}, ActiveSignature: -1, ActiveParameter: -1}
}

// SignatureHelp lists the overloads of the call whose argument list holds
// pos. The active parameter is the first argument ending at or after pos;
// the active signature is the overload the arguments select.
func (s *Session) SignatureHelp(ctx context.Context, uri string, pos Position) (*SignatureHelp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return noSignatures(), nil
	}
	ix, r := g.Index, g.Resolver

	args, ok := ix.AncestorOfKind(n, ast.KindArgumentList).(*ast.ArgumentListExpression)
	if !ok {
		return noSignatures(), nil
	}
	var callExpr ast.Expression
	switch call := ix.ParentOf(args).(type) {
	case *ast.MethodCallExpression:
		callExpr = call
	case *ast.ConstructorCallExpression:
		callExpr = call
	default:
		return noSignatures(), nil
	}

	active := activeArgument(args.Args, pos)
	overloads := r.Overloads(callExpr)
	if len(overloads) == 0 {
		return noSignatures(), nil
	}
	best := r.MethodFor(callExpr, active)

	help := &SignatureHelp{ActiveSignature: -1, ActiveParameter: active}
	for i, m := range overloads {
		info := SignatureInformation{
			Label:         render.Method(m),
			Documentation: render.Markdown(m.Groovydoc()),
			Parameters:    make([]ParameterInformation, 0, len(m.Params())),
		}
		for _, p := range m.Params() {
			info.Parameters = append(info.Parameters, ParameterInformation{Label: render.Parameter(p)})
		}
		help.Signatures = append(help.Signatures, info)
		if m == best {
			help.ActiveSignature = i
		}
	}
	return help, nil
}

// activeArgument returns the index of the first argument that ends at or
// after pos, or len(args) when pos is past them all.
func activeArgument(args []ast.Expression, pos Position) int {
	for i, a := range args {
		r, ok := ranges.FromSpan(a.Pos())
		if !ok {
			continue
		}
		if ranges.Compare(pos, r.End) <= 0 {
			return i
		}
	}
	return len(args)
}
