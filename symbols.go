package groovyls

import (
	"context"
	"fmt"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/render"
	"github.com/jward/groovyls/internal/store"
)

// DocumentSymbols returns the outline of uri: its classes with their members
// as children. Top-level script methods are roots.
func (s *Session) DocumentSymbols(ctx context.Context, uri string) ([]DocumentSymbol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.current(ctx)
	if err != nil || g == nil {
		return nil, err
	}
	text, _ := s.text(g, uri)

	type entry struct {
		sym      DocumentSymbol
		children []ast.Node
	}
	entries := make(map[ast.Node]*entry)
	var roots []ast.Node
	for _, n := range g.Index.TopLevelIn(uri) {
		sym, ok := documentSymbol(text, n)
		if !ok {
			continue
		}
		entries[n] = &entry{sym: sym}
		parent := g.Index.ParentOf(n)
		for parent != nil && entries[parent] == nil {
			parent = g.Index.ParentOf(parent)
		}
		if parent == nil {
			roots = append(roots, n)
		} else {
			entries[parent].children = append(entries[parent].children, n)
		}
	}

	var build func(n ast.Node) DocumentSymbol
	build = func(n ast.Node) DocumentSymbol {
		e := entries[n]
		sym := e.sym
		for _, c := range e.children {
			sym.Children = append(sym.Children, build(c))
		}
		return sym
	}
	out := make([]DocumentSymbol, 0, len(roots))
	for _, n := range roots {
		out = append(out, build(n))
	}
	return out, nil
}

func documentSymbol(text string, n ast.Node) (DocumentSymbol, bool) {
	full, ok := ranges.FromSpan(n.Pos())
	if !ok {
		return DocumentSymbol{}, false
	}
	sym := DocumentSymbol{Range: full, SelectionRange: full}
	switch n := n.(type) {
	case *ast.ClassNode:
		sym.Name, sym.Kind, sym.Detail = n.Name, classSymbolKind(n), render.Class(n)
	case *ast.MethodNode:
		sym.Name, sym.Kind, sym.Detail = n.Name, SymbolKindMethod, render.Method(n)
	case *ast.ConstructorNode:
		sym.Name, sym.Kind, sym.Detail = n.MemberName(), SymbolKindConstructor, render.Method(n)
	case *ast.FieldNode:
		sym.Name, sym.Kind, sym.Detail = n.Name, SymbolKindField, render.Variable(n, nil)
	case *ast.PropertyNode:
		sym.Name, sym.Kind, sym.Detail = n.Name, SymbolKindField, render.Variable(n, nil)
	default:
		return DocumentSymbol{}, false
	}
	if sel, ok := nameRange(text, n, sym.Name); ok {
		sym.SelectionRange = sel
	}
	return sym, true
}

func classSymbolKind(cls *ast.ClassNode) SymbolKind {
	switch {
	case cls.IsInterface():
		return SymbolKindInterface
	case cls.IsEnum():
		return SymbolKindEnum
	}
	return SymbolKindClass
}

// storeSymbolKinds maps the kinds recorded in the symbol store.
var storeSymbolKinds = map[string]SymbolKind{
	store.KindClass:       SymbolKindClass,
	store.KindTrait:       SymbolKindClass,
	store.KindAnnotation:  SymbolKindInterface,
	store.KindInterface:   SymbolKindInterface,
	store.KindEnum:        SymbolKindEnum,
	store.KindMethod:      SymbolKindMethod,
	store.KindConstructor: SymbolKindConstructor,
	store.KindField:       SymbolKindField,
	store.KindProperty:    SymbolKindField,
}

// WorkspaceSymbols returns the declarations whose name contains query,
// ignoring case. An empty query matches everything.
func (s *Session) WorkspaceSymbols(ctx context.Context, query string) ([]SymbolInformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.current(ctx); err != nil {
		return nil, err
	}
	matches, err := s.store.SearchSymbols(query, 0)
	if err != nil {
		return nil, fmt.Errorf("groovyls: workspace symbols: %w", err)
	}
	out := make([]SymbolInformation, 0, len(matches))
	for _, m := range matches {
		kind, ok := storeSymbolKinds[m.Kind]
		if !ok {
			continue
		}
		out = append(out, SymbolInformation{
			Name: m.Name,
			Kind: kind,
			Location: Location{
				URI: m.Path,
				Range: Range{
					Start: Position{Line: m.StartLine, Character: m.StartCol},
					End:   Position{Line: m.EndLine, Character: m.EndCol},
				},
			},
			ContainerName: m.Container,
		})
	}
	return out, nil
}
