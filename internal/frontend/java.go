package frontend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/ranges"
)

var (
	javaGrammar     *sitter.Language
	javaGrammarOnce sync.Once
)

func javaLanguage() *sitter.Language {
	javaGrammarOnce.Do(func() {
		javaGrammar = java.GetLanguage()
	})
	return javaGrammar
}

// javaConverter maps a tree-sitter Java tree onto the shared syntax tree.
// Method bodies are converted for the statement and expression forms that
// navigation needs; anything else is dropped.
type javaConverter struct {
	unit  *SourceUnit
	src   []byte
	lines []int
	pkg   string
}

// parseJava runs the Parsing and Conversion phases for one Java unit.
func parseJava(ctx context.Context, u *SourceUnit) error {
	src := []byte(u.Text)
	parser := sitter.NewParser()
	parser.SetLanguage(javaLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("frontend: parse java %s: %w", u.URI, err)
	}
	defer tree.Close()

	c := &javaConverter{unit: u, src: src, lines: lineStarts(src)}
	root := tree.RootNode()
	u.advance(PhaseParsing)
	c.collectErrors(root, 0)
	u.Module = c.program(root)
	u.advance(PhaseConversion)
	return nil
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (c *javaConverter) point(pt sitter.Point) (int, int) {
	row := int(pt.Row)
	if row >= len(c.lines) {
		return row + 1, 1
	}
	start := c.lines[row]
	end := start + int(pt.Column)
	if end > len(c.src) {
		end = len(c.src)
	}
	return row + 1, ranges.UTF16Len(string(c.src[start:end])) + 1
}

func (c *javaConverter) span(n *sitter.Node) ast.Span {
	line, col := c.point(n.StartPoint())
	lastLine, lastCol := c.point(n.EndPoint())
	return ast.Span{Line: line, Column: col, LastLine: lastLine, LastColumn: lastCol}
}

func (c *javaConverter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

const maxJavaErrors = 50

func (c *javaConverter) collectErrors(n *sitter.Node, depth int) {
	if depth > 1000 || len(c.unit.Messages) >= maxJavaErrors {
		return
	}
	if n.IsMissing() {
		c.unit.addError(c.span(n), true, "missing '%s'", n.Type())
		return
	}
	if n.IsError() {
		found := strings.TrimSpace(c.text(n))
		if i := strings.IndexByte(found, '\n'); i >= 0 {
			found = found[:i]
		}
		if len(found) > 40 {
			found = found[:40]
		}
		c.unit.addError(c.span(n), true, "unexpected input '%s'", found)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.collectErrors(n.Child(i), depth+1)
	}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func (c *javaConverter) program(root *sitter.Node) *ast.ModuleNode {
	mod := &ast.ModuleNode{URI: c.unit.URI, Span: c.span(root)}
	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "package_declaration":
			for _, ch := range namedChildren(n) {
				if ch.Type() == "scoped_identifier" || ch.Type() == "identifier" {
					c.pkg = c.text(ch)
				}
			}
			mod.Package = c.pkg
		case "import_declaration":
			mod.Imports = append(mod.Imports, c.importDecl(n))
		case "class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration":
			mod.Classes = append(mod.Classes, c.typeDecl(n, nil))
		}
	}
	return mod
}

func (c *javaConverter) importDecl(n *sitter.Node) *ast.ImportNode {
	imp := &ast.ImportNode{Span: c.span(n)}
	var name *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		switch ch.Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Star = true
		case "scoped_identifier", "identifier":
			name = ch
		}
	}
	if name == nil {
		return imp
	}
	full := c.text(name)
	sp := c.span(name)
	switch {
	case imp.Static && imp.Star:
		imp.Type = &ast.TypeRef{Span: sp, Name: full}
	case imp.Static:
		i := strings.LastIndexByte(full, '.')
		if i < 0 {
			imp.Type = &ast.TypeRef{Span: sp, Name: full}
			break
		}
		imp.Member = full[i+1:]
		cls := name.ChildByFieldName("scope")
		if cls != nil {
			sp = c.span(cls)
		}
		imp.Type = &ast.TypeRef{Span: sp, Name: full[:i]}
	case imp.Star:
		imp.Package = full
	default:
		imp.Type = &ast.TypeRef{Span: sp, Name: full}
	}
	return imp
}

// javadoc returns the doc comment immediately preceding n.
func (c *javaConverter) javadoc(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil {
		return ""
	}
	if prev.Type() != "block_comment" && prev.Type() != "comment" {
		return ""
	}
	text := c.text(prev)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return text
}

func (c *javaConverter) modifiers(n *sitter.Node) ast.Modifiers {
	var mods ast.Modifiers
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if m := n.NamedChild(i); m.Type() == "modifiers" {
			for j := 0; j < int(m.ChildCount()); j++ {
				mods |= ast.ModifierByKeyword[m.Child(j).Type()]
			}
		}
	}
	return mods
}

func (c *javaConverter) typeDecl(n *sitter.Node, outer *ast.ClassNode) *ast.ClassNode {
	cls := &ast.ClassNode{
		Span:      c.span(n),
		Package:   c.pkg,
		Modifiers: c.modifiers(n),
		Outer:     outer,
		Doc:       c.javadoc(n),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.Name = c.text(name)
	}
	switch n.Type() {
	case "interface_declaration":
		cls.ClassKind = ast.ClassKindInterface
		cls.Modifiers |= ast.ModAbstract
	case "annotation_type_declaration":
		cls.ClassKind = ast.ClassKindAnnotation
		cls.Modifiers |= ast.ModAbstract
	case "enum_declaration":
		cls.ClassKind = ast.ClassKindEnum
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		for _, p := range namedChildren(tp) {
			if id := p.NamedChild(0); id != nil {
				cls.TypeParameters = append(cls.TypeParameters, c.text(id))
			}
		}
	}
	if sup := n.ChildByFieldName("superclass"); sup != nil && sup.NamedChildCount() > 0 {
		cls.SuperClass = c.typeRef(sup.NamedChild(0))
	}
	if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
		cls.Interfaces = append(cls.Interfaces, c.typeList(ifs)...)
	}
	for _, ch := range namedChildren(n) {
		if ch.Type() == "extends_interfaces" {
			cls.Interfaces = append(cls.Interfaces, c.typeList(ch)...)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		c.classBody(cls, body)
	}
	return cls
}

func (c *javaConverter) typeList(n *sitter.Node) []*ast.TypeRef {
	var out []*ast.TypeRef
	for _, ch := range namedChildren(n) {
		if ch.Type() == "type_list" {
			out = append(out, c.typeList(ch)...)
			continue
		}
		if t := c.typeRef(ch); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (c *javaConverter) classBody(cls *ast.ClassNode, body *sitter.Node) {
	for _, m := range namedChildren(body) {
		switch m.Type() {
		case "enum_constant":
			f := &ast.FieldNode{
				Span:         c.span(m),
				Modifiers:    ast.ModPublic | ast.ModStatic | ast.ModFinal,
				Type:         &ast.TypeRef{Span: ast.NoSpan, Name: cls.Name},
				Owner:        cls,
				EnumConstant: true,
				Doc:          c.javadoc(m),
			}
			if name := m.ChildByFieldName("name"); name != nil {
				f.Name = c.text(name)
			}
			cls.Fields = append(cls.Fields, f)
		case "enum_body_declarations":
			c.classBody(cls, m)
		case "field_declaration", "constant_declaration":
			c.field(cls, m)
		case "method_declaration":
			cls.Methods = append(cls.Methods, c.method(cls, m))
		case "constructor_declaration", "compact_constructor_declaration":
			cls.Constructors = append(cls.Constructors, c.constructor(cls, m))
		case "class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration":
			cls.Inner = append(cls.Inner, c.typeDecl(m, cls))
		case "static_initializer", "block":
			if b := c.firstOfType(m, "block"); b != nil {
				cls.Initializers = append(cls.Initializers, c.block(b))
			} else if m.Type() == "block" {
				cls.Initializers = append(cls.Initializers, c.block(m))
			}
		}
	}
}

func (c *javaConverter) firstOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, ch := range namedChildren(n) {
		if ch.Type() == typ {
			return ch
		}
	}
	return nil
}

func (c *javaConverter) field(cls *ast.ClassNode, n *sitter.Node) {
	mods := c.modifiers(n)
	if cls.IsInterface() {
		mods |= ast.ModPublic | ast.ModStatic | ast.ModFinal
	}
	doc := c.javadoc(n)
	typNode := n.ChildByFieldName("type")
	first := true
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		var typ *ast.TypeRef
		if typNode != nil {
			typ = c.typeRef(typNode)
			if !first {
				typ = copyTypeRef(typ)
			}
		}
		first = false
		f := &ast.FieldNode{Span: c.span(n), Modifiers: mods, Type: typ, Owner: cls, Doc: doc}
		if name := d.ChildByFieldName("name"); name != nil {
			f.Name = c.text(name)
		}
		if v := d.ChildByFieldName("value"); v != nil {
			f.Initial = c.expr(v)
		}
		cls.Fields = append(cls.Fields, f)
	}
}

func (c *javaConverter) method(cls *ast.ClassNode, n *sitter.Node) *ast.MethodNode {
	m := &ast.MethodNode{Span: c.span(n), Modifiers: c.modifiers(n), Owner: cls, Doc: c.javadoc(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		m.Name = c.text(name)
	}
	if t := n.ChildByFieldName("type"); t != nil {
		m.ReturnType = c.typeRef(t)
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		for _, p := range namedChildren(tp) {
			if id := p.NamedChild(0); id != nil {
				m.TypeParameters = append(m.TypeParameters, c.text(id))
			}
		}
	}
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		m.Parameters = c.parameters(ps)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.Code = c.block(body)
	} else if cls.IsInterface() && !m.Modifiers.Has(ast.ModStatic) && !m.Modifiers.Has(ast.ModDefault) {
		m.Modifiers |= ast.ModAbstract
	}
	if cls.IsInterface() && m.Modifiers&ast.ModPrivate == 0 {
		m.Modifiers |= ast.ModPublic
	}
	return m
}

func (c *javaConverter) constructor(cls *ast.ClassNode, n *sitter.Node) *ast.ConstructorNode {
	ctor := &ast.ConstructorNode{Span: c.span(n), Modifiers: c.modifiers(n), Owner: cls, Doc: c.javadoc(n)}
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		ctor.Parameters = c.parameters(ps)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		ctor.Code = c.block(body)
	}
	return ctor
}

func (c *javaConverter) parameters(n *sitter.Node) []*ast.Parameter {
	var out []*ast.Parameter
	for _, p := range namedChildren(n) {
		switch p.Type() {
		case "formal_parameter", "receiver_parameter":
			out = append(out, c.parameter(p, false))
		case "spread_parameter":
			out = append(out, c.parameter(p, true))
		}
	}
	return out
}

func (c *javaConverter) parameter(n *sitter.Node, varargs bool) *ast.Parameter {
	param := &ast.Parameter{Span: c.span(n), VarArgs: varargs}
	typNode := n.ChildByFieldName("type")
	var nameNode *sitter.Node
	for _, ch := range namedChildren(n) {
		switch ch.Type() {
		case "variable_declarator":
			nameNode = ch.ChildByFieldName("name")
		case "identifier":
			nameNode = ch
		case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
			"integral_type", "floating_point_type", "boolean_type":
			if typNode == nil {
				typNode = ch
			}
		}
	}
	if nameNode == nil {
		nameNode = n.ChildByFieldName("name")
	}
	if nameNode != nil {
		param.Name = c.text(nameNode)
	}
	if typNode != nil {
		param.Type = c.typeRef(typNode)
		if varargs {
			param.Type.Dims++
		}
	}
	return param
}

func (c *javaConverter) typeRef(n *sitter.Node) *ast.TypeRef {
	switch n.Type() {
	case "type_identifier", "scoped_type_identifier", "integral_type", "floating_point_type",
		"boolean_type", "void_type":
		return &ast.TypeRef{Span: c.span(n), Name: c.text(n)}
	case "generic_type":
		t := &ast.TypeRef{Span: c.span(n)}
		for _, ch := range namedChildren(n) {
			switch ch.Type() {
			case "type_arguments":
				for _, a := range namedChildren(ch) {
					if a.Type() == "wildcard" {
						if a.NamedChildCount() > 0 {
							if bound := c.typeRef(a.NamedChild(int(a.NamedChildCount())-1)); bound != nil {
								t.Args = append(t.Args, bound)
							}
						}
						continue
					}
					if arg := c.typeRef(a); arg != nil {
						t.Args = append(t.Args, arg)
					}
				}
			default:
				if t.Name == "" {
					t.Name = c.text(ch)
				}
			}
		}
		return t
	case "array_type":
		elem := n.ChildByFieldName("element")
		if elem == nil {
			return nil
		}
		t := c.typeRef(elem)
		if t == nil {
			return nil
		}
		t.Span = c.span(n)
		if dims := n.ChildByFieldName("dimensions"); dims != nil {
			t.Dims += strings.Count(c.text(dims), "[")
		}
		return t
	}
	return nil
}

// ---------------------------------------------------------------------------
// bodies

func (c *javaConverter) block(n *sitter.Node) *ast.BlockStatement {
	b := &ast.BlockStatement{Span: c.span(n)}
	for _, ch := range namedChildren(n) {
		b.Statements = append(b.Statements, c.stmt(ch)...)
	}
	return b
}

func (c *javaConverter) stmt(n *sitter.Node) []ast.Statement {
	switch n.Type() {
	case "block", "constructor_body":
		return []ast.Statement{c.block(n)}
	case "local_variable_declaration":
		return c.localDecl(n)
	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return nil
		}
		e := c.expr(n.NamedChild(0))
		if e == nil {
			return nil
		}
		return []ast.Statement{&ast.ExpressionStatement{Span: e.Pos(), Expr: e}}
	case "explicit_constructor_invocation":
		call := &ast.ConstructorCallExpression{Span: c.span(n)}
		if ctor := n.ChildByFieldName("constructor"); ctor != nil {
			call.Super = ctor.Type() == "super"
			call.This = ctor.Type() == "this"
			call.Type = &ast.TypeRef{Span: ast.NoSpan, Name: ctor.Type()}
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			call.Arguments = c.arguments(args)
		}
		return []ast.Statement{&ast.ExpressionStatement{Span: call.Span, Expr: call}}
	case "return_statement":
		r := &ast.ReturnStatement{Span: c.span(n)}
		if n.NamedChildCount() > 0 {
			r.Expr = c.expr(n.NamedChild(0))
		}
		return []ast.Statement{r}
	case "throw_statement":
		t := &ast.ThrowStatement{Span: c.span(n)}
		if n.NamedChildCount() > 0 {
			t.Expr = c.expr(n.NamedChild(0))
		}
		return []ast.Statement{t}
	case "if_statement":
		s := &ast.IfStatement{Span: c.span(n)}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			s.Cond = c.expr(cond)
		}
		if then := n.ChildByFieldName("consequence"); then != nil {
			s.Then = c.single(then)
		}
		if els := n.ChildByFieldName("alternative"); els != nil {
			s.Else = c.single(els)
		}
		return []ast.Statement{s}
	case "while_statement":
		s := &ast.WhileStatement{Span: c.span(n)}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			s.Cond = c.expr(cond)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			s.Body = c.single(body)
		}
		return []ast.Statement{s}
	case "enhanced_for_statement":
		s := &ast.ForStatement{Span: c.span(n)}
		param := &ast.Parameter{}
		if t := n.ChildByFieldName("type"); t != nil {
			param.Type = c.typeRef(t)
		}
		if name := n.ChildByFieldName("name"); name != nil {
			param.Name = c.text(name)
			param.Span = c.span(name)
			if param.Type != nil {
				param.Span = param.Type.Span.To(param.Span)
			}
		}
		s.Var = param
		if v := n.ChildByFieldName("value"); v != nil {
			s.Collection = c.expr(v)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			s.Body = c.single(body)
		}
		return []ast.Statement{s}
	case "for_statement":
		s := &ast.ForStatement{Span: c.span(n)}
		for _, ch := range namedChildren(n) {
			if ch.Type() == "local_variable_declaration" {
				for _, st := range c.localDecl(ch) {
					if es, ok := st.(*ast.ExpressionStatement); ok {
						s.Init = append(s.Init, es.Expr)
					}
				}
			}
		}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			s.Cond = c.expr(cond)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			s.Body = c.single(body)
		}
		return []ast.Statement{s}
	case "try_statement", "try_with_resources_statement":
		s := &ast.TryCatchStatement{Span: c.span(n)}
		if body := n.ChildByFieldName("body"); body != nil {
			s.Try = c.block(body)
		}
		for _, ch := range namedChildren(n) {
			switch ch.Type() {
			case "catch_clause":
				s.Catches = append(s.Catches, c.catchClause(ch))
			case "finally_clause":
				if b := c.firstOfType(ch, "block"); b != nil {
					s.Finally = c.block(b)
				}
			}
		}
		return []ast.Statement{s}
	}
	return nil
}

// single converts a statement that must produce exactly one node.
func (c *javaConverter) single(n *sitter.Node) ast.Statement {
	stmts := c.stmt(n)
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.BlockStatement{Span: c.span(n), Statements: stmts}
}

func (c *javaConverter) catchClause(n *sitter.Node) *ast.CatchStatement {
	cs := &ast.CatchStatement{Span: c.span(n)}
	if p := c.firstOfType(n, "catch_formal_parameter"); p != nil {
		param := &ast.Parameter{Span: c.span(p)}
		if name := p.ChildByFieldName("name"); name != nil {
			param.Name = c.text(name)
		}
		if ct := c.firstOfType(p, "catch_type"); ct != nil {
			for i, t := range namedChildren(ct) {
				ref := c.typeRef(t)
				if ref == nil {
					continue
				}
				if i == 0 {
					param.Type = ref
				} else {
					cs.Alternatives = append(cs.Alternatives, ref)
				}
			}
		}
		cs.Param = param
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cs.Code = c.block(body)
	}
	return cs
}

func (c *javaConverter) localDecl(n *sitter.Node) []ast.Statement {
	typNode := n.ChildByFieldName("type")
	mods := c.modifiers(n)
	var out []ast.Statement
	first := true
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		v := &ast.VariableExpression{}
		if name := d.ChildByFieldName("name"); name != nil {
			v.Name = c.text(name)
			v.Span = c.span(name)
		}
		if typNode != nil && c.text(typNode) != "var" {
			v.Type = c.typeRef(typNode)
			if v.Type != nil && !first {
				v.Type = copyTypeRef(v.Type)
			}
		}
		first = false
		v.Accessed = v
		decl := &ast.DeclarationExpression{Span: c.span(d), Variable: v, Modifiers: mods}
		if v.Type != nil && v.Type.HasPosition() {
			decl.Span = v.Type.Span.To(decl.Span)
		}
		if val := d.ChildByFieldName("value"); val != nil {
			decl.Init = c.expr(val)
		}
		out = append(out, &ast.ExpressionStatement{Span: decl.Span, Expr: decl})
	}
	return out
}

func (c *javaConverter) arguments(n *sitter.Node) *ast.ArgumentListExpression {
	args := &ast.ArgumentListExpression{Span: c.span(n)}
	for _, a := range namedChildren(n) {
		if e := c.expr(a); e != nil {
			args.Args = append(args.Args, e)
		}
	}
	return args
}

func (c *javaConverter) expr(n *sitter.Node) ast.Expression {
	sp := c.span(n)
	switch n.Type() {
	case "identifier":
		return &ast.VariableExpression{Span: sp, Name: c.text(n)}
	case "this":
		return &ast.VariableExpression{Span: sp, Name: "this"}
	case "super":
		return &ast.VariableExpression{Span: sp, Name: "super"}
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return c.expr(n.NamedChild(0))
		}
	case "string_literal", "text_block":
		text := c.text(n)
		text = strings.Trim(text, `"`)
		return &ast.ConstantExpression{Span: sp, Value: text, Text: text, LiteralType: "java.lang.String"}
	case "character_literal":
		return &ast.ConstantExpression{Span: sp, Value: c.text(n), Text: c.text(n), LiteralType: "char"}
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		ce := numberConstant(token{kind: tInt, text: c.text(n), sp: sp})
		if ce.LiteralType == "java.math.BigInteger" {
			ce.LiteralType = "int"
		}
		return ce
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		ce := numberConstant(token{kind: tFloat, text: c.text(n), sp: sp})
		if ce.LiteralType == "java.math.BigDecimal" {
			ce.LiteralType = "double"
		}
		return ce
	case "true", "false":
		return &ast.ConstantExpression{Span: sp, Value: n.Type() == "true", Text: n.Type(), LiteralType: "boolean"}
	case "null_literal":
		return &ast.ConstantExpression{Span: sp, Text: "null"}
	case "method_invocation":
		call := &ast.MethodCallExpression{Span: sp}
		if obj := n.ChildByFieldName("object"); obj != nil {
			call.Object = c.expr(obj)
		}
		if call.Object == nil {
			call.ImplicitThis = true
		}
		if name := n.ChildByFieldName("name"); name != nil {
			call.Method = &ast.ConstantExpression{Span: c.span(name), Text: c.text(name), Value: c.text(name)}
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			call.Arguments = c.arguments(args)
		}
		return call
	case "object_creation_expression":
		call := &ast.ConstructorCallExpression{Span: sp}
		if t := n.ChildByFieldName("type"); t != nil {
			call.Type = c.typeRef(t)
		}
		if call.Type == nil {
			return nil
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			call.Arguments = c.arguments(args)
		}
		return call
	case "field_access":
		pe := &ast.PropertyExpression{Span: sp}
		if obj := n.ChildByFieldName("object"); obj != nil {
			pe.Object = c.expr(obj)
		}
		if f := n.ChildByFieldName("field"); f != nil {
			pe.Property = &ast.ConstantExpression{Span: c.span(f), Text: c.text(f), Value: c.text(f)}
		}
		if pe.Object == nil || pe.Property == nil {
			return nil
		}
		return pe
	case "assignment_expression", "binary_expression":
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		op := n.ChildByFieldName("operator")
		if left == nil || right == nil {
			return nil
		}
		l, r := c.expr(left), c.expr(right)
		if l == nil || r == nil {
			return nil
		}
		be := &ast.BinaryExpression{Span: sp, Left: l, Right: r}
		if op != nil {
			be.Op = op.Type()
		}
		return be
	case "array_access":
		arr, idx := n.ChildByFieldName("array"), n.ChildByFieldName("index")
		if arr == nil || idx == nil {
			return nil
		}
		l, r := c.expr(arr), c.expr(idx)
		if l == nil || r == nil {
			return nil
		}
		return &ast.BinaryExpression{Span: sp, Left: l, Right: r, Op: "["}
	case "cast_expression":
		t, v := n.ChildByFieldName("type"), n.ChildByFieldName("value")
		if t == nil || v == nil {
			return nil
		}
		typ, val := c.typeRef(t), c.expr(v)
		if typ == nil || val == nil {
			return nil
		}
		return &ast.CastExpression{Span: sp, Type: typ, Expr: val}
	case "unary_expression", "update_expression":
		if n.NamedChildCount() == 0 {
			return nil
		}
		operand := c.expr(n.NamedChild(0))
		if operand == nil {
			return nil
		}
		op := ""
		if n.ChildCount() > 0 {
			op = n.Child(0).Type()
		}
		return &ast.UnaryExpression{Span: sp, Op: op, Operand: operand}
	case "ternary_expression":
		cond := n.ChildByFieldName("condition")
		then := n.ChildByFieldName("consequence")
		els := n.ChildByFieldName("alternative")
		if cond == nil || then == nil || els == nil {
			return nil
		}
		ce, te, ee := c.expr(cond), c.expr(then), c.expr(els)
		if ce == nil || te == nil || ee == nil {
			return nil
		}
		return &ast.TernaryExpression{Span: sp, Cond: ce, Then: te, Else: ee}
	case "class_literal":
		if n.NamedChildCount() == 0 {
			return nil
		}
		if typ := c.typeRef(n.NamedChild(0)); typ != nil {
			return &ast.ClassExpression{Span: sp, Type: typ}
		}
	}
	return nil
}
