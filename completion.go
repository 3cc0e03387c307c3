package groovyls

import (
	"context"
	"regexp"
	"strings"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/compiler"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/render"
	"github.com/jward/groovyls/internal/resolve"
)

var importPrefix = regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.$]*)$`)

// Completion proposes the names that may be typed at pos:
//
//   - after `receiver.`, the members of the receiver's type (statics only for
//     a class receiver);
//   - on a name or statement, the variables in scope, the members of the
//     enclosing class and class names;
//   - in an import, qualified class names.
//
// Names are filtered by the part of the word before the cursor and the list
// is cut at the configured maximum.
func (s *Session) Completion(ctx context.Context, uri string, pos Position) (*CompletionList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, err := s.nodeAt(ctx, uri, pos)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return &CompletionList{Items: []CompletionItem{}}, nil
	}

	c := &completer{graph: g, r: g.Resolver}
	if text, ok := s.text(g, uri); ok {
		if m := importPrefix.FindStringSubmatch(lineBefore(text, pos)); m != nil {
			c.imports(m[1])
			return c.list(s.cfg.MaxCompletionItems()), nil
		}
	}
	if n == nil {
		return c.list(s.cfg.MaxCompletionItems()), nil
	}
	parent := g.Index.ParentOf(n)

	if pe := propertyAccess(n, parent); pe != nil {
		c.members(g.Resolver.MembersOf(pe.Object), memberPrefix(pe.PropertyName(), pe.Property.Pos(), pos))
	} else if mc := memberCall(n, parent); mc != nil {
		prefix := memberPrefix(mc.MethodName(), mc.Method.Pos(), pos)
		if mc.Object == nil {
			c.scope(n, prefix)
		} else {
			c.members(g.Resolver.MembersOf(mc.Object), prefix)
		}
	} else {
		switch n := n.(type) {
		case *ast.VariableExpression:
			c.scope(n, memberPrefix(n.Name, n.Pos(), pos))
		case *ast.MethodNode, *ast.ConstructorNode, ast.Statement:
			c.scope(n, "")
		}
	}
	return c.list(s.cfg.MaxCompletionItems()), nil
}

func propertyAccess(n, parent ast.Node) *ast.PropertyExpression {
	if pe, ok := n.(*ast.PropertyExpression); ok {
		return pe
	}
	if pe, ok := parent.(*ast.PropertyExpression); ok && pe.Property != nil && ast.Node(pe.Property) == n {
		return pe
	}
	return nil
}

func memberCall(n, parent ast.Node) *ast.MethodCallExpression {
	if mc, ok := n.(*ast.MethodCallExpression); ok {
		return mc
	}
	if mc, ok := parent.(*ast.MethodCallExpression); ok && mc.Method != nil && ast.Node(mc.Method) == n {
		return mc
	}
	return nil
}

// memberPrefix returns the part of name typed before pos, where sp is the
// span of the name. It is "" when pos is not inside the name's first line.
func memberPrefix(name string, sp ast.Span, pos Position) string {
	r, ok := ranges.FromSpan(sp)
	if !ok || pos.Line != r.Start.Line || pos.Character <= r.Start.Character {
		return ""
	}
	length := pos.Character - r.Start.Character
	if length > len(name) {
		return ""
	}
	return name[:length]
}

func lineBefore(text string, pos Position) string {
	line, ok := ranges.Substring(text, Range{Start: Position{Line: pos.Line}, End: pos}, 1)
	if !ok {
		return ""
	}
	return line
}

// completer accumulates items, deduplicating variables (locals, properties,
// fields) and methods by name separately.
type completer struct {
	graph   *compiler.Graph
	r       *resolve.Resolver
	items   []CompletionItem
	vars    map[string]bool
	methods map[string]bool
	classes map[string]bool
}

func (c *completer) add(set *map[string]bool, item CompletionItem) {
	if *set == nil {
		*set = make(map[string]bool)
	}
	if (*set)[item.Label] {
		return
	}
	(*set)[item.Label] = true
	c.items = append(c.items, item)
}

func (c *completer) members(m resolve.Members, prefix string) {
	for _, p := range m.Properties {
		if strings.HasPrefix(p.Name, prefix) {
			c.add(&c.vars, variableItem(p, CompletionKindField))
		}
	}
	for _, f := range m.Fields {
		if strings.HasPrefix(f.Name, prefix) {
			c.add(&c.vars, variableItem(f, CompletionKindField))
		}
	}
	for _, meth := range m.Methods {
		if strings.HasPrefix(meth.Name, prefix) {
			c.add(&c.methods, CompletionItem{
				Label:         meth.Name,
				Kind:          CompletionKindMethod,
				Detail:        render.Method(meth),
				Documentation: render.Markdown(meth.Doc),
			})
		}
	}
}

// scope adds the variables visible at n, innermost first, then the members
// of the enclosing class and class names.
func (c *completer) scope(n ast.Node, prefix string) {
	for _, v := range c.r.ScopeVariables(n) {
		if strings.HasPrefix(v.VariableName(), prefix) {
			c.add(&c.vars, variableItem(v, CompletionKindVariable))
		}
	}
	c.members(c.r.ClassMembers(c.graph.Index.EnclosingClass(n)), prefix)
	c.classNames(prefix)
}

func (c *completer) classNames(prefix string) {
	for _, cls := range c.graph.Table.AllClasses() {
		if cls.Script || cls.Outer != nil || !strings.HasPrefix(cls.Name, prefix) {
			continue
		}
		c.add(&c.classes, CompletionItem{
			Label:  cls.Name,
			Kind:   classCompletionKind(cls),
			Detail: cls.FullName(),
		})
	}
}

// imports adds the qualified names of classes that extend the typed part of
// an import statement.
func (c *completer) imports(prefix string) {
	for _, cls := range c.graph.Table.AllClasses() {
		if cls.Script {
			continue
		}
		name := strings.ReplaceAll(cls.FullName(), "$", ".")
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		c.add(&c.classes, CompletionItem{
			Label:  name,
			Kind:   classCompletionKind(cls),
			Detail: render.Class(cls),
		})
	}
}

func (c *completer) list(limit int) *CompletionList {
	out := &CompletionList{Items: c.items}
	if out.Items == nil {
		out.Items = []CompletionItem{}
	}
	if limit > 0 && len(out.Items) > limit {
		out.Items = out.Items[:limit]
		out.IsIncomplete = true
	}
	return out
}

func variableItem(v ast.Variable, kind CompletionItemKind) CompletionItem {
	item := CompletionItem{Label: v.VariableName(), Kind: kind, Detail: render.Variable(v, nil)}
	if d, ok := v.(ast.Documented); ok {
		item.Documentation = render.Markdown(d.Groovydoc())
	}
	return item
}

func classCompletionKind(cls *ast.ClassNode) CompletionItemKind {
	switch {
	case cls.IsInterface():
		return CompletionKindInterface
	case cls.IsEnum():
		return CompletionKindEnum
	}
	return CompletionKindClass
}
