package frontend

import (
	"unicode"

	"github.com/jward/groovyls/internal/ast"
)

func (p *parser) block() *ast.BlockStatement {
	start := p.expect("{")
	p.pushNL(true)
	var stmts []ast.Statement
	for !p.at("}") && !p.atEOF() {
		stmts = p.blockStatement(stmts)
	}
	p.popNL()
	p.expect("}")
	return &ast.BlockStatement{Span: p.spanFrom(start), Statements: stmts}
}

func (p *parser) blockStatement(out []ast.Statement) (res []ast.Statement) {
	res = out
	defer p.recoverStatement(p.mark())
	res = p.statement(out)
	p.endStatement()
	return res
}

// atStatementEnd reports whether the current statement cannot continue.
func (p *parser) atStatementEnd() bool {
	return p.at(";") || p.at("}") || p.atEOF() || p.newlineBefore()
}

func (p *parser) statement(out []ast.Statement) []ast.Statement {
	t := p.tok()
	switch {
	case t.is("{"):
		return append(out, p.block())
	case t.is(";"):
		return out
	case t.kind == tIdent:
		switch t.text {
		case "if":
			return append(out, p.ifStatement())
		case "for":
			return append(out, p.forStatement())
		case "while":
			return append(out, p.whileStatement())
		case "do":
			return append(out, p.doWhileStatement())
		case "try":
			return append(out, p.tryStatement())
		case "switch":
			return append(out, p.switchStatement())
		case "return":
			start := p.advance()
			ret := &ast.ReturnStatement{}
			if !p.atStatementEnd() {
				ret.Expr = p.expression()
			}
			ret.Span = p.spanFrom(start)
			return append(out, ret)
		case "break", "continue":
			start := p.advance()
			label := ""
			if p.tok().kind == tIdent && !p.tok().nl && !isKeyword(p.tok().text) {
				label = p.advance().text
			}
			if start.text == "break" {
				return append(out, &ast.BreakStatement{Span: p.spanFrom(start), Label: label})
			}
			return append(out, &ast.ContinueStatement{Span: p.spanFrom(start), Label: label})
		case "throw":
			start := p.advance()
			e := p.expression()
			return append(out, &ast.ThrowStatement{Span: p.spanFrom(start), Expr: e})
		case "assert":
			start := p.advance()
			as := &ast.AssertStatement{Cond: p.expression()}
			if p.accept(":") || p.accept(",") {
				as.Message = p.expression()
			}
			as.Span = p.spanFrom(start)
			return append(out, as)
		}
		if !isKeyword(t.text) && p.peek(1).is(":") && !p.peek(1).nl {
			// labeled statement
			p.advance()
			p.advance()
			return p.statement(out)
		}
		if p.atTypeDeclaration() {
			p.failf(t, "local type declarations are not supported")
		}
	}
	if p.atLocalDeclaration() {
		return p.localDeclaration(out)
	}
	e := p.statementExpression()
	return append(out, &ast.ExpressionStatement{Span: e.Pos(), Expr: e})
}

// bodyStatement parses the body of a control statement.
func (p *parser) bodyStatement() ast.Statement {
	if p.at("{") {
		return p.block()
	}
	start := p.tok()
	stmts := p.statement(nil)
	if len(stmts) == 1 {
		return stmts[0]
	}
	return &ast.BlockStatement{Span: p.spanFrom(start), Statements: stmts}
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// atLocalDeclaration decides between a local variable declaration and an
// expression. `Type name` declares; `name arg` with a lower-case first word
// is a command call.
func (p *parser) atLocalDeclaration() bool {
	j := p.pos
	mods := false
	for {
		if k := p.skipAnnotation(j); k != j {
			j = k
			mods = true
			continue
		}
		if p.tokAt(j).isIdent("final") {
			j++
			mods = true
			continue
		}
		break
	}
	t := p.tokAt(j)
	if t.isIdent("def") || t.isIdent("var") {
		next := p.tokAt(j + 1)
		return (next.kind == tIdent && !isKeyword(next.text)) || next.is("(")
	}
	if mods && t.kind == tIdent && p.tokAt(j+1).is("=") {
		return true
	}
	k := p.skipType(j)
	if k < 0 {
		return false
	}
	name := p.tokAt(k)
	if name.kind != tIdent || isKeyword(name.text) || softKeywords[name.text] || name.nl {
		return false
	}
	after := p.tokAt(k + 1)
	if !(after.is("=") || after.is(";") || after.is(",") || after.is("}") || after.is(")") || after.kind == tEOF || after.nl) {
		return false
	}
	if last := p.tokAt(k - 1); last.kind == tIdent && !primitiveTypes[last.text] && !startsUpper(last.text) {
		return false
	}
	return true
}

func (p *parser) localDeclaration(out []ast.Statement) []ast.Statement {
	m := p.modifiers()
	start := p.declStart(m)
	var typ *ast.TypeRef
	switch {
	case p.atIdent("def") || p.atIdent("var"):
		p.advance()
	case m.any && p.peek(1).is("="):
	case !m.any && p.tok().kind == tIdent && p.peek(1).is("="):
		// annotated untyped declaration
	default:
		typ = p.parseType(false)
	}
	if typ == nil && p.at("(") {
		return p.multipleAssignment(out, m.mods)
	}
	for {
		name := p.expectName()
		v := &ast.VariableExpression{Span: name.sp, Name: name.text, Type: typ}
		v.Accessed = v
		decl := &ast.DeclarationExpression{Variable: v, Modifiers: m.mods}
		if p.accept("=") {
			decl.Init = p.expression()
		}
		decl.Span = p.spanFrom(start)
		out = append(out, &ast.ExpressionStatement{Span: decl.Span, Expr: decl})
		if !p.accept(",") {
			return out
		}
		if typ != nil {
			typ = copyTypeRef(typ)
		}
		start = p.tok()
	}
}

// multipleAssignment parses `def (a, b) = expr`.
func (p *parser) multipleAssignment(out []ast.Statement, mods ast.Modifiers) []ast.Statement {
	p.expect("(")
	p.pushNL(false)
	var decls []*ast.DeclarationExpression
	for !p.at(")") {
		var typ *ast.TypeRef
		if p.peek(1).kind == tIdent {
			typ = p.parseType(false)
		}
		name := p.expectName()
		v := &ast.VariableExpression{Span: name.sp, Name: name.text, Type: typ}
		v.Accessed = v
		sp := name.sp
		if typ != nil {
			sp = spanOf(typ.Span, name.sp)
		}
		decls = append(decls, &ast.DeclarationExpression{Span: sp, Variable: v, Modifiers: mods})
		if !p.accept(",") {
			break
		}
	}
	p.popNL()
	p.expect(")")
	p.expect("=")
	init := p.expression()
	for _, d := range decls {
		out = append(out, &ast.ExpressionStatement{Span: d.Span, Expr: d})
	}
	return append(out, &ast.ExpressionStatement{Span: init.Pos(), Expr: init})
}

// statementExpression parses an expression statement, including command
// calls such as `println x` and `obj.method a, b`.
func (p *parser) statementExpression() ast.Expression {
	e := p.expression()
	if !p.startsCommandArgument() {
		return e
	}
	var call *ast.MethodCallExpression
	switch x := e.(type) {
	case *ast.VariableExpression:
		if x.IsThis() || x.IsSuper() {
			return e
		}
		call = &ast.MethodCallExpression{
			Method:       &ast.ConstantExpression{Span: x.Span, Text: x.Name, Value: x.Name},
			ImplicitThis: true,
		}
	case *ast.PropertyExpression:
		call = &ast.MethodCallExpression{Object: x.Object, Method: x.Property, Safe: x.Safe, Spread: x.Spread}
	default:
		return e
	}
	call.Arguments = p.commandArguments()
	call.Span = spanOf(e.Pos(), call.Arguments.Span)
	return call
}

func (p *parser) startsCommandArgument() bool {
	t := p.tok()
	if t.nl {
		return false
	}
	switch t.kind {
	case tInt, tFloat, tString, tGString:
		return true
	case tIdent:
		switch t.text {
		case "this", "super", "new", "true", "false", "null":
			return true
		case "in", "as", "instanceof":
			return false
		}
		return !isKeyword(t.text)
	}
	return false
}

func (p *parser) commandArguments() *ast.ArgumentListExpression {
	first := p.tok()
	args := &ast.ArgumentListExpression{}
	var named *ast.MapExpression
	for {
		if entry := p.namedArgument(); entry != nil {
			if named == nil {
				named = &ast.MapExpression{}
				args.Args = append(args.Args, named)
			}
			named.Entries = append(named.Entries, entry)
			named.Span = spanOf(named.Entries[0].Span, entry.Span)
		} else {
			args.Args = append(args.Args, p.expression())
		}
		if !p.accept(",") {
			break
		}
	}
	args.Span = p.spanFrom(first)
	return args
}

func (p *parser) ifStatement() *ast.IfStatement {
	start := p.advance()
	p.expect("(")
	p.pushNL(false)
	cond := p.expression()
	p.popNL()
	p.expect(")")
	st := &ast.IfStatement{Cond: cond, Then: p.bodyStatement()}
	save := p.pos
	p.accept(";")
	if p.acceptIdent("else") {
		st.Else = p.bodyStatement()
	} else {
		p.pos = save
	}
	st.Span = p.spanFrom(start)
	return st
}

func (p *parser) forStatement() *ast.ForStatement {
	start := p.advance()
	p.expect("(")
	p.pushNL(false)
	st := &ast.ForStatement{}
	var v *ast.Parameter
	if p.speculate(true, func() { v = p.forInVariable() }) {
		st.Var = v
		st.Collection = p.expression()
	} else {
		if !p.at(";") {
			if p.atLocalDeclaration() {
				for _, s := range p.localDeclaration(nil) {
					st.Init = append(st.Init, s.(*ast.ExpressionStatement).Expr)
				}
			} else {
				st.Init = append(st.Init, p.expression())
				for p.accept(",") {
					st.Init = append(st.Init, p.expression())
				}
			}
		}
		p.expect(";")
		if !p.at(";") {
			st.Cond = p.expression()
		}
		p.expect(";")
		if !p.at(")") {
			st.Update = append(st.Update, p.expression())
			for p.accept(",") {
				st.Update = append(st.Update, p.expression())
			}
		}
	}
	p.popNL()
	p.expect(")")
	st.Body = p.bodyStatement()
	st.Span = p.spanFrom(start)
	return st
}

// forInVariable parses `[final] [def|Type] name (in|:)`.
func (p *parser) forInVariable() *ast.Parameter {
	m := p.modifiers()
	start := p.declStart(m)
	param := &ast.Parameter{}
	switch {
	case p.atIdent("def") || p.atIdent("var"):
		p.advance()
	case p.tok().kind == tIdent && (p.peek(1).isIdent("in") || p.peek(1).is(":")):
	default:
		param.Type = p.parseType(false)
	}
	name := p.expectName()
	param.Name = name.text
	param.Span = p.spanFrom(start)
	if !p.acceptIdent("in") && !p.accept(":") {
		p.failf(p.tok(), "expecting 'in', found '%s'", describe(p.tok()))
	}
	return param
}

func (p *parser) whileStatement() *ast.WhileStatement {
	start := p.advance()
	p.expect("(")
	p.pushNL(false)
	cond := p.expression()
	p.popNL()
	p.expect(")")
	body := p.bodyStatement()
	return &ast.WhileStatement{Span: p.spanFrom(start), Cond: cond, Body: body}
}

func (p *parser) doWhileStatement() *ast.DoWhileStatement {
	start := p.advance()
	body := p.bodyStatement()
	p.accept(";")
	p.expectKeyword("while")
	p.expect("(")
	p.pushNL(false)
	cond := p.expression()
	p.popNL()
	p.expect(")")
	return &ast.DoWhileStatement{Span: p.spanFrom(start), Body: body, Cond: cond}
}

func (p *parser) tryStatement() *ast.TryCatchStatement {
	start := p.advance()
	st := &ast.TryCatchStatement{}
	if p.at("(") {
		p.advance()
		p.pushNL(false)
		for !p.at(")") && !p.atEOF() {
			for _, s := range p.localDeclaration(nil) {
				if d, ok := s.(*ast.ExpressionStatement).Expr.(*ast.DeclarationExpression); ok {
					st.Resources = append(st.Resources, d)
				}
			}
			if !p.accept(";") {
				break
			}
		}
		p.popNL()
		p.expect(")")
	}
	st.Try = p.block()
	for p.atIdent("catch") {
		cstart := p.advance()
		p.expect("(")
		p.pushNL(false)
		m := p.modifiers()
		pstart := p.declStart(m)
		param := &ast.Parameter{}
		c := &ast.CatchStatement{Param: param}
		if !(p.tok().kind == tIdent && p.peek(1).is(")")) {
			param.Type = p.parseType(false)
			for p.accept("|") {
				c.Alternatives = append(c.Alternatives, p.parseType(false))
			}
		}
		param.Name = p.expectName().text
		param.Span = p.spanFrom(pstart)
		p.popNL()
		p.expect(")")
		c.Code = p.block()
		c.Span = p.spanFrom(cstart)
		st.Catches = append(st.Catches, c)
	}
	if p.acceptIdent("finally") {
		st.Finally = p.block()
	}
	st.Span = p.spanFrom(start)
	return st
}

func (p *parser) switchStatement() *ast.SwitchStatement {
	start := p.advance()
	p.expect("(")
	p.pushNL(false)
	st := &ast.SwitchStatement{Expr: p.expression()}
	p.popNL()
	p.expect(")")
	p.expect("{")
	p.pushNL(true)
	for !p.at("}") && !p.atEOF() {
		switch {
		case p.atIdent("case"):
			cstart := p.advance()
			c := &ast.CaseStatement{Expr: p.ternary()}
			p.expect(":")
			c.Code = p.caseBody()
			c.Span = p.spanFrom(cstart)
			st.Cases = append(st.Cases, c)
		case p.atIdent("default"):
			p.advance()
			p.expect(":")
			st.Default = p.caseBody()
		default:
			p.failf(p.tok(), "expecting 'case', found '%s'", describe(p.tok()))
		}
	}
	p.popNL()
	p.expect("}")
	st.Span = p.spanFrom(start)
	return st
}

func (p *parser) caseBody() *ast.BlockStatement {
	var stmts []ast.Statement
	for !p.atIdent("case") && !p.atIdent("default") && !p.at("}") && !p.atEOF() {
		stmts = p.blockStatement(stmts)
	}
	b := &ast.BlockStatement{Span: ast.NoSpan, Statements: stmts}
	if len(stmts) > 0 {
		b.Span = spanOf(stmts[0].Pos(), stmts[len(stmts)-1].Pos())
	}
	return b
}
