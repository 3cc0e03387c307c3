package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jward/groovyls/internal/ast"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "&=": true, "|=": true, "^=": true, "<<=": true, ">>>=": true,
}

func (p *parser) expression() ast.Expression {
	left := p.ternary()
	t := p.tok()
	if t.kind == tOp && assignOps[t.text] && !p.newlineBefore() {
		p.advance()
		right := p.expression()
		return &ast.BinaryExpression{Span: spanOf(left.Pos(), right.Pos()), Left: left, Right: right, Op: t.text}
	}
	return left
}

func (p *parser) ternary() ast.Expression {
	cond := p.binary(0)
	switch {
	case p.at("?:") && !p.newlineBefore():
		p.advance()
		els := p.ternary()
		return &ast.TernaryExpression{Span: spanOf(cond.Pos(), els.Pos()), Cond: cond, Else: els, Elvis: true}
	case p.at("?") && !p.newlineBefore():
		p.advance()
		p.pushNL(false)
		then := p.ternary()
		p.expect(":")
		p.popNL()
		els := p.ternary()
		return &ast.TernaryExpression{Span: spanOf(cond.Pos(), els.Pos()), Cond: cond, Then: then, Else: els}
	}
	return cond
}

// binaryLevels lists binary operators from loosest to tightest.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!=", "<=>", "=~", "==~"},
	{"<", "<=", ">", ">=", "instanceof", "in", "as"},
	{"<<", ">>", ">>>", "..", "..<"},
	{"+", "-"},
	{"*", "/", "%"},
	{"**"},
}

const relationalLevel = 6
const shiftLevel = 7

// binaryOp returns the operator at the current position for the given level
// and the number of tokens it spans. Shifts right are lexed as adjacent '>'.
func (p *parser) binaryOp(level int) (string, int) {
	t := p.tok()
	if p.newlineBefore() {
		return "", 0
	}
	adjacent := func(a, b token) bool {
		return b.is(">") && a.sp.LastLine == b.sp.Line && a.sp.LastColumn == b.sp.Column
	}
	if t.is(">") && adjacent(t, p.peek(1)) {
		if level != shiftLevel {
			return "", 0
		}
		if adjacent(p.peek(1), p.peek(2)) {
			return ">>>", 3
		}
		return ">>", 2
	}
	for _, op := range binaryLevels[level] {
		switch op {
		case "instanceof", "in", "as":
			if t.isIdent(op) {
				return op, 1
			}
		default:
			if t.is(op) {
				return op, 1
			}
		}
	}
	if level == relationalLevel && t.is("!") && !p.peek(1).nl {
		if n := p.peek(1); n.isIdent("instanceof") || n.isIdent("in") {
			return "!" + n.text, 2
		}
	}
	return "", 0
}

func (p *parser) binary(level int) ast.Expression {
	if level == len(binaryLevels) {
		return p.unary()
	}
	left := p.binary(level + 1)
	for {
		op, n := p.binaryOp(level)
		if n == 0 {
			return left
		}
		for i := 0; i < n; i++ {
			p.advance()
		}
		switch op {
		case "instanceof", "!instanceof":
			typ := p.parseType(false)
			right := &ast.ClassExpression{Span: typ.Span, Type: typ}
			left = &ast.BinaryExpression{Span: spanOf(left.Pos(), typ.Span), Left: left, Right: right, Op: op}
		case "as":
			typ := p.parseType(false)
			left = &ast.CastExpression{Span: spanOf(left.Pos(), typ.Span), Type: typ, Expr: left, Coerce: true}
		case "..", "..<":
			right := p.binary(level + 1)
			left = &ast.RangeExpression{Span: spanOf(left.Pos(), right.Pos()), From: left, To: right, Exclusive: op == "..<"}
		default:
			right := p.binary(level + 1)
			left = &ast.BinaryExpression{Span: spanOf(left.Pos(), right.Pos()), Left: left, Right: right, Op: op}
		}
	}
}

func (p *parser) unary() ast.Expression {
	t := p.tok()
	if t.kind == tOp {
		switch t.text {
		case "!", "~", "-", "+", "++", "--":
			p.advance()
			operand := p.unary()
			return &ast.UnaryExpression{Span: spanOf(t.sp, operand.Pos()), Op: t.text, Operand: operand}
		case "(":
			if typ, ok := p.castPrefix(); ok {
				operand := p.unary()
				return &ast.CastExpression{Span: spanOf(t.sp, operand.Pos()), Type: typ, Expr: operand}
			}
		}
	}
	return p.postfix(p.primary())
}

// castPrefix consumes `(Type)` when it starts a cast.
func (p *parser) castPrefix() (*ast.TypeRef, bool) {
	j := p.skipType(p.pos + 1)
	if j < 0 || !p.tokAt(j).is(")") {
		return nil, false
	}
	first := p.tokAt(p.pos + 1)
	next := p.tokAt(j + 1)
	if next.nl && p.nlSignificant() {
		return nil, false
	}
	if !primitiveTypes[first.text] {
		last := p.tokAt(j - 1)
		if last.kind == tIdent && !startsUpper(last.text) {
			return nil, false
		}
		switch next.kind {
		case tIdent:
			if isKeyword(next.text) && next.text != "new" && next.text != "this" && next.text != "super" &&
				next.text != "true" && next.text != "false" && next.text != "null" {
				return nil, false
			}
		case tInt, tFloat, tString, tGString:
		case tOp:
			if !next.is("(") && !next.is("[") && !next.is("!") && !next.is("~") {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	p.advance()
	typ := p.parseType(false)
	p.expect(")")
	return typ, true
}

func (p *parser) postfix(e ast.Expression) ast.Expression {
	for {
		t := p.tok()
		switch {
		case t.is(".") || t.is("?.") || t.is("*.") || t.is(".@") || t.is(".&") || t.is("::"):
			// leading-dot chaining continues across line breaks
			p.advance()
			e = p.selector(e, t)
		case t.is("(") && !p.newlineBefore():
			args := p.arguments()
			e = p.callOn(e, args)
		case t.is("[") && !p.newlineBefore():
			p.advance()
			p.pushNL(false)
			idx := p.expression()
			for p.accept(",") {
				idx = p.expression()
			}
			p.popNL()
			p.expect("]")
			e = &ast.BinaryExpression{Span: spanOf(e.Pos(), p.last().sp), Left: e, Right: idx, Op: "["}
		case t.is("{") && !p.newlineBefore() && p.closureCallable(e):
			cl := p.closure()
			e = p.appendClosure(e, cl)
		case (t.is("++") || t.is("--")) && !p.newlineBefore():
			p.advance()
			e = &ast.UnaryExpression{Span: spanOf(e.Pos(), t.sp), Op: t.text, Operand: e, Postfix: true}
		default:
			return e
		}
	}
}

func (p *parser) closureCallable(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.MethodCallExpression:
		return true
	case *ast.VariableExpression:
		return !x.IsThis() && !x.IsSuper()
	case *ast.PropertyExpression:
		return true
	}
	return false
}

func (p *parser) selector(obj ast.Expression, op token) ast.Expression {
	name := p.tok()
	switch name.kind {
	case tIdent, tString:
		p.advance()
	case tGString:
		p.advance()
		name.text = ""
	default:
		if name.is("(") && op.is(".") {
			// obj.(args) is shorthand for obj.call(args)
			args := p.arguments()
			return p.callOn(obj, args)
		}
		if name.kind == tEOF || name.is("}") || name.is(")") || name.is(";") || name.is("]") {
			// incomplete member access such as `obj.` while typing
			p.report(name.sp, fmt.Sprintf("unexpected token '%s'", describe(name)))
			at := ast.Span{Line: op.sp.LastLine, Column: op.sp.LastColumn, LastLine: op.sp.LastLine, LastColumn: op.sp.LastColumn}
			empty := &ast.ConstantExpression{Span: at, Text: "", Value: ""}
			return &ast.PropertyExpression{Span: spanOf(obj.Pos(), at), Object: obj, Property: empty, Safe: op.is("?.")}
		}
		p.failf(name, "unexpected token '%s'", describe(name))
	}
	cname := &ast.ConstantExpression{Span: name.sp, Text: name.text, Value: name.text}
	safe := op.is("?.")
	spread := op.is("*.")
	if p.at("(") && !p.newlineBefore() && !op.is(".&") && !op.is("::") {
		args := p.arguments()
		return &ast.MethodCallExpression{
			Span: spanOf(obj.Pos(), args.Span), Object: obj, Method: cname, Arguments: args, Safe: safe, Spread: spread,
		}
	}
	return &ast.PropertyExpression{Span: spanOf(obj.Pos(), name.sp), Object: obj, Property: cname, Safe: safe, Spread: spread}
}

// callOn turns `e(args)` into a method call.
func (p *parser) callOn(e ast.Expression, args *ast.ArgumentListExpression) ast.Expression {
	switch x := e.(type) {
	case *ast.VariableExpression:
		if x.IsThis() || x.IsSuper() {
			// this(...) and super(...) delegate to another constructor
			return &ast.ConstructorCallExpression{
				Span:      spanOf(x.Span, args.Span),
				Type:      &ast.TypeRef{Span: ast.NoSpan, Name: x.Name},
				Arguments: args,
				Super:     x.IsSuper(),
				This:      x.IsThis(),
			}
		}
		return &ast.MethodCallExpression{
			Span:         spanOf(x.Span, args.Span),
			Method:       &ast.ConstantExpression{Span: x.Span, Text: x.Name, Value: x.Name},
			Arguments:    args,
			ImplicitThis: true,
		}
	case *ast.PropertyExpression:
		return &ast.MethodCallExpression{
			Span: spanOf(x.Span, args.Span), Object: x.Object, Method: x.Property, Arguments: args, Safe: x.Safe, Spread: x.Spread,
		}
	}
	return &ast.MethodCallExpression{
		Span:      spanOf(e.Pos(), args.Span),
		Object:    e,
		Method:    &ast.ConstantExpression{Span: ast.NoSpan, Text: "call", Value: "call"},
		Arguments: args,
	}
}

func (p *parser) appendClosure(e ast.Expression, cl *ast.ClosureExpression) ast.Expression {
	if call, ok := e.(*ast.MethodCallExpression); ok {
		if call.Arguments == nil {
			call.Arguments = &ast.ArgumentListExpression{Span: cl.Span}
		}
		call.Arguments.Args = append(call.Arguments.Args, cl)
		call.Arguments.Span = spanOf(call.Arguments.Span, cl.Span)
		call.Span = spanOf(call.Span, cl.Span)
		return call
	}
	args := &ast.ArgumentListExpression{Span: cl.Span, Args: []ast.Expression{cl}}
	return p.callOn(e, args)
}

// arguments parses a parenthesized argument list. Named arguments are
// collected into a leading map.
func (p *parser) arguments() *ast.ArgumentListExpression {
	start := p.expect("(")
	p.pushNL(false)
	args := &ast.ArgumentListExpression{}
	var named *ast.MapExpression
	for !p.at(")") && !p.atEOF() {
		if entry := p.namedArgument(); entry != nil {
			if named == nil {
				named = &ast.MapExpression{}
				args.Args = append(args.Args, named)
			}
			named.Entries = append(named.Entries, entry)
			named.Span = spanOf(named.Entries[0].Span, entry.Span)
		} else if p.at("*") {
			st := p.advance()
			operand := p.expression()
			args.Args = append(args.Args, &ast.UnaryExpression{Span: spanOf(st.sp, operand.Pos()), Op: "*", Operand: operand})
		} else {
			args.Args = append(args.Args, p.expression())
		}
		if !p.accept(",") {
			break
		}
	}
	p.popNL()
	p.expect(")")
	args.Span = p.spanFrom(start)
	return args
}

// namedArgument parses `name: value` when present.
func (p *parser) namedArgument() *ast.MapEntryExpression {
	t := p.tok()
	if !(t.kind == tIdent || t.kind == tString) || !p.peek(1).is(":") {
		return nil
	}
	p.advance()
	p.advance()
	key := &ast.ConstantExpression{Span: t.sp, Text: t.text, Value: t.text, LiteralType: "java.lang.String"}
	val := p.expression()
	return &ast.MapEntryExpression{Span: spanOf(t.sp, val.Pos()), Key: key, Value: val}
}

func (p *parser) primary() ast.Expression {
	t := p.tok()
	switch t.kind {
	case tInt, tFloat:
		p.advance()
		return numberConstant(t)
	case tString:
		p.advance()
		return &ast.ConstantExpression{Span: t.sp, Value: t.text, Text: t.text, LiteralType: "java.lang.String"}
	case tGString:
		p.advance()
		return p.gstring(t)
	case tIllegal:
		p.failf(t, "unexpected token '%s'", describe(t))
	case tIdent:
		switch t.text {
		case "true", "false":
			p.advance()
			return &ast.ConstantExpression{Span: t.sp, Value: t.text == "true", Text: t.text, LiteralType: "boolean"}
		case "null":
			p.advance()
			return &ast.ConstantExpression{Span: t.sp, Text: "null"}
		case "this", "super":
			p.advance()
			return &ast.VariableExpression{Span: t.sp, Name: t.text}
		case "new":
			return p.creator()
		}
		if primitiveTypes[t.text] {
			typ := p.parseType(false)
			return &ast.ClassExpression{Span: typ.Span, Type: typ}
		}
		if isKeyword(t.text) {
			p.failf(t, "unexpected token '%s'", describe(t))
		}
		p.advance()
		return &ast.VariableExpression{Span: t.sp, Name: t.text}
	case tOp:
		switch t.text {
		case "(":
			p.advance()
			p.pushNL(false)
			e := p.expression()
			p.popNL()
			p.expect(")")
			return e
		case "[":
			return p.listOrMap()
		case "{":
			return p.closure()
		}
	}
	p.failf(t, "unexpected token '%s'", describe(t))
	return nil
}

func numberConstant(t token) *ast.ConstantExpression {
	text := strings.ReplaceAll(t.text, "_", "")
	c := &ast.ConstantExpression{Span: t.sp, Text: t.text}
	radix := strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") ||
		strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B")
	suffix := byte(0)
	if n := len(text); n > 0 {
		switch c := text[n-1] | 0x20; c {
		case 'l', 'i', 'g':
			suffix = c
		case 'd', 'f':
			if !radix {
				suffix = c
			}
		}
		if suffix != 0 {
			text = text[:n-1]
		}
	}
	if t.kind == tInt && suffix != 'd' && suffix != 'f' {
		v, _ := strconv.ParseInt(text, 0, 64)
		c.Value = v
		switch suffix {
		case 'l':
			c.LiteralType = "long"
		case 'g':
			c.LiteralType = "java.math.BigInteger"
		default:
			c.LiteralType = "int"
		}
		return c
	}
	v, _ := strconv.ParseFloat(text, 64)
	c.Value = v
	switch suffix {
	case 'd':
		c.LiteralType = "double"
	case 'f':
		c.LiteralType = "float"
	default:
		c.LiteralType = "java.math.BigDecimal"
	}
	return c
}

func (p *parser) gstring(t token) ast.Expression {
	g := &ast.GStringExpression{Span: t.sp}
	for _, part := range t.parts {
		if !part.expr {
			g.Strings = append(g.Strings, part.lit)
			continue
		}
		sub := p.subParser(part.src, part.line, part.col)
		if e := sub.embedded(part.closure); e != nil {
			g.Values = append(g.Values, e)
		}
	}
	return g
}

// embedded parses the expression of a ${...} or $name segment.
func (p *parser) embedded(block bool) (e ast.Expression) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			e = nil
		}
	}()
	if p.atEOF() {
		return nil
	}
	if !block {
		return p.postfix(p.primary())
	}
	p.pushNL(true)
	var stmts []ast.Statement
	for !p.atEOF() {
		stmts = p.blockStatement(stmts)
	}
	for i := len(stmts) - 1; i >= 0; i-- {
		if es, ok := stmts[i].(*ast.ExpressionStatement); ok {
			return es.Expr
		}
	}
	return nil
}

func (p *parser) listOrMap() ast.Expression {
	start := p.expect("[")
	p.pushNL(false)
	if p.at(":") && p.peek(1).is("]") {
		p.advance()
		p.popNL()
		p.advance()
		return &ast.MapExpression{Span: p.spanFrom(start)}
	}
	var elems []ast.Expression
	var entries []*ast.MapEntryExpression
	for !p.at("]") && !p.atEOF() {
		if entry := p.mapEntry(); entry != nil {
			entries = append(entries, entry)
		} else if p.at("*") {
			st := p.advance()
			operand := p.expression()
			elems = append(elems, &ast.UnaryExpression{Span: spanOf(st.sp, operand.Pos()), Op: "*", Operand: operand})
		} else {
			elems = append(elems, p.expression())
		}
		if !p.accept(",") {
			break
		}
	}
	p.popNL()
	p.expect("]")
	if len(entries) > 0 {
		return &ast.MapExpression{Span: p.spanFrom(start), Entries: entries}
	}
	return &ast.ListExpression{Span: p.spanFrom(start), Elements: elems}
}

// mapEntry parses `key: value`. Bare identifier keys are strings.
func (p *parser) mapEntry() *ast.MapEntryExpression {
	if e := p.namedArgument(); e != nil {
		return e
	}
	var key ast.Expression
	m := p.mark()
	if p.at("(") || p.tok().kind == tInt || p.tok().kind == tFloat || p.tok().kind == tGString {
		if !p.speculate(true, func() { key = p.ternary() }) || !p.at(":") {
			p.reset(m)
			return nil
		}
		p.advance()
		val := p.expression()
		return &ast.MapEntryExpression{Span: spanOf(key.Pos(), val.Pos()), Key: key, Value: val}
	}
	return nil
}

// closure parses `{ [params ->] statements }`.
func (p *parser) closure() *ast.ClosureExpression {
	start := p.expect("{")
	p.pushNL(true)
	cl := &ast.ClosureExpression{}
	explicit := false
	if p.at("->") {
		p.advance()
		explicit = true
	} else {
		var params []*ast.Parameter
		if p.speculate(true, func() { params = p.closureParameters() }) {
			cl.Parameters = params
			explicit = true
		}
	}
	if !explicit {
		cl.ImplicitIt = &ast.Parameter{Span: ast.NoSpan, Name: "it"}
	}
	bodyStart := p.tok()
	var stmts []ast.Statement
	for !p.at("}") && !p.atEOF() {
		stmts = p.blockStatement(stmts)
	}
	p.popNL()
	end := p.expect("}")
	code := &ast.BlockStatement{Statements: stmts}
	if len(stmts) > 0 {
		code.Span = spanOf(stmts[0].Pos(), stmts[len(stmts)-1].Pos())
	} else {
		code.Span = spanOf(bodyStart.sp, end.sp)
	}
	cl.Code = code
	cl.Span = p.spanFrom(start)
	return cl
}

func (p *parser) closureParameters() []*ast.Parameter {
	p.pushNL(false)
	var params []*ast.Parameter
	for {
		params = append(params, p.parameter())
		if !p.accept(",") {
			break
		}
	}
	p.popNL()
	if !p.at("->") {
		p.failf(p.tok(), "expecting '->'")
	}
	p.advance()
	return params
}

// creator parses `new T(args)`, `new T[n]` and `new T[] {...}`.
func (p *parser) creator() ast.Expression {
	start := p.advance()
	typStart := p.tok()
	if typStart.kind != tIdent {
		p.failf(typStart, "unexpected token '%s'", describe(typStart))
	}
	p.advance()
	name := typStart.text
	for p.at(".") && p.peek(1).kind == tIdent {
		p.advance()
		name += "." + p.advance().text
	}
	typ := &ast.TypeRef{Name: name}
	if p.at("<") {
		typ.Args = p.typeArguments()
	}
	typ.Span = p.spanFrom(typStart)

	if p.at("[") {
		arr := &ast.ArrayExpression{Element: typ}
		dims := 0
		for p.at("[") {
			p.advance()
			if !p.at("]") {
				p.pushNL(false)
				arr.Sizes = append(arr.Sizes, p.expression())
				p.popNL()
			}
			p.expect("]")
			dims++
		}
		if p.at("{") {
			p.advance()
			p.pushNL(false)
			for !p.at("}") && !p.atEOF() {
				arr.Init = append(arr.Init, p.expression())
				if !p.accept(",") {
					break
				}
			}
			p.popNL()
			p.expect("}")
		}
		arr.Span = p.spanFrom(start)
		return arr
	}

	args := p.arguments()
	call := &ast.ConstructorCallExpression{Type: typ, Arguments: args}
	if p.at("{") && !p.newlineBefore() {
		// anonymous inner class body
		p.pos = p.skipBalanced(p.pos)
	}
	call.Span = p.spanFrom(start)
	return call
}
