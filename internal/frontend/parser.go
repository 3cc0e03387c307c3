package frontend

import (
	"fmt"
	"strings"

	"github.com/jward/groovyls/internal/ast"
)

// bailout unwinds the parser to the nearest recovery point.
type bailout struct{}

type mark struct {
	pos int
	nl  int
}

type parser struct {
	unit *SourceUnit
	toks []token
	pos  int

	// nl is a stack of contexts; true where line breaks end statements.
	nl []bool

	pkg         string
	speculating int
	errLines    map[int]bool
}

// parseGroovy runs the Parsing and Conversion phases for one Groovy unit.
func parseGroovy(u *SourceUnit) {
	toks, errs := lex(u.Text)
	p := &parser{unit: u, toks: toks, errLines: make(map[int]bool)}
	for _, e := range errs {
		p.report(e.sp, e.msg)
	}
	u.advance(PhaseParsing)
	u.Module = p.compilationUnit()
	u.advance(PhaseConversion)
}

// subParser parses an expression embedded in a string literal.
func (p *parser) subParser(src string, line, col int) *parser {
	toks, errs := lexAt(src, line, col)
	sp := &parser{unit: p.unit, toks: toks, pkg: p.pkg, errLines: p.errLines, speculating: p.speculating}
	for _, e := range errs {
		sp.report(e.sp, e.msg)
	}
	return sp
}

// ---------------------------------------------------------------------------
// token access

func (p *parser) tok() token { return p.toks[p.pos] }

func (p *parser) peek(n int) token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) at(op string) bool { return p.tok().is(op) }

func (p *parser) atIdent(name string) bool { return p.tok().isIdent(name) }

func (p *parser) atEOF() bool { return p.tok().kind == tEOF }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// last returns the most recently consumed token.
func (p *parser) last() token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *parser) accept(op string) bool {
	if p.at(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) acceptIdent(name string) bool {
	if p.atIdent(name) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(op string) token {
	if !p.at(op) {
		p.failf(p.tok(), "expecting '%s', found '%s'", op, describe(p.tok()))
	}
	return p.advance()
}

// expectName consumes an identifier usable as a declaration name.
func (p *parser) expectName() token {
	t := p.tok()
	if t.kind != tIdent || isKeyword(t.text) {
		p.failf(t, "unexpected token '%s'", describe(t))
	}
	return p.advance()
}

func describe(t token) string {
	switch t.kind {
	case tEOF:
		return "end of file"
	case tString, tGString:
		return "string literal"
	}
	return t.text
}

func (p *parser) report(sp ast.Span, msg string) {
	if p.speculating > 0 {
		return
	}
	if p.errLines[sp.Line] {
		return
	}
	p.errLines[sp.Line] = true
	p.unit.addError(sp, true, "%s", msg)
}

func (p *parser) failf(t token, format string, args ...any) {
	p.report(t.sp, fmt.Sprintf(format, args...))
	panic(bailout{})
}

// ---------------------------------------------------------------------------
// newline contexts

func (p *parser) pushNL(significant bool) { p.nl = append(p.nl, significant) }

func (p *parser) popNL() {
	if len(p.nl) > 0 {
		p.nl = p.nl[:len(p.nl)-1]
	}
}

func (p *parser) nlSignificant() bool {
	return len(p.nl) == 0 || p.nl[len(p.nl)-1]
}

// newlineBefore reports whether the current token starts a new statement
// line in a context where line breaks terminate statements.
func (p *parser) newlineBefore() bool {
	return p.tok().nl && p.nlSignificant()
}

// ---------------------------------------------------------------------------
// recovery

func (p *parser) mark() mark { return mark{pos: p.pos, nl: len(p.nl)} }

func (p *parser) reset(m mark) {
	p.pos = m.pos
	p.nl = p.nl[:m.nl]
}

// recoverStatement is deferred around statement and member parsing. It
// resynchronizes at the next line break, ';' or closing brace.
func (p *parser) recoverStatement(m mark) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(bailout); !ok {
		panic(r)
	}
	p.nl = p.nl[:m.nl]
	if p.pos == m.pos {
		p.advance()
	}
	depth := 0
	for !p.atEOF() {
		t := p.tok()
		if depth == 0 {
			if t.is(";") {
				p.advance()
				return
			}
			if t.is("}") {
				return
			}
			if t.nl && p.pos > m.pos+1 {
				return
			}
		}
		switch {
		case t.is("{"), t.is("("), t.is("["):
			depth++
		case t.is("}"), t.is(")"), t.is("]"):
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

// speculate runs fn without reporting errors and rewinds unless keep is
// set and fn succeeded.
func (p *parser) speculate(keep bool, fn func()) (ok bool) {
	m := p.mark()
	p.speculating++
	defer func() {
		p.speculating--
		r := recover()
		if r != nil {
			if _, isBail := r.(bailout); !isBail {
				panic(r)
			}
			ok = false
		}
		if !ok || !keep {
			p.reset(m)
		}
	}()
	fn()
	return true
}

// ---------------------------------------------------------------------------
// spans

func (p *parser) spanFrom(start token) ast.Span {
	end := p.last()
	if p.pos == 0 {
		end = start
	}
	return ast.Span{Line: start.sp.Line, Column: start.sp.Column, LastLine: end.sp.LastLine, LastColumn: end.sp.LastColumn}
}

func spanOf(start, end ast.Span) ast.Span {
	return ast.Span{Line: start.Line, Column: start.Column, LastLine: end.LastLine, LastColumn: end.LastColumn}
}

// ---------------------------------------------------------------------------
// lookahead over token indexes

func (p *parser) tokAt(i int) token {
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

// skipAnnotation returns the index after an annotation starting at i, or i.
func (p *parser) skipAnnotation(i int) int {
	if !p.tokAt(i).is("@") || p.tokAt(i+1).isIdent("interface") {
		return i
	}
	j := i + 1
	if p.tokAt(j).kind != tIdent {
		return i
	}
	j++
	for p.tokAt(j).is(".") && p.tokAt(j+1).kind == tIdent {
		j += 2
	}
	if p.tokAt(j).is("(") && !p.tokAt(j).nl {
		j = p.skipBalanced(j)
	}
	return j
}

// skipBalanced returns the index after the bracket group opening at i.
func (p *parser) skipBalanced(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		t := p.toks[j]
		switch {
		case t.is("("), t.is("["), t.is("{"):
			depth++
		case t.is(")"), t.is("]"), t.is("}"):
			depth--
			if depth == 0 {
				return j + 1
			}
		case t.kind == tEOF:
			return j
		}
	}
	return len(p.toks) - 1
}

func isModifierToken(t token) bool {
	if t.kind != tIdent {
		return false
	}
	_, ok := ast.ModifierByKeyword[t.text]
	return ok
}

// skipModifiers returns the index after annotations and modifier keywords.
func (p *parser) skipModifiers(i int) int {
	for {
		if j := p.skipAnnotation(i); j != i {
			i = j
			continue
		}
		t := p.tokAt(i)
		if isModifierToken(t) && !(t.text == "default" && p.tokAt(i+1).is(":")) {
			i++
			continue
		}
		return i
	}
}

// skipType returns the index after a type starting at i, or -1.
func (p *parser) skipType(i int) int {
	t := p.tokAt(i)
	if t.kind != tIdent || (isKeyword(t.text) && !primitiveTypes[t.text]) || softKeywords[t.text] {
		return -1
	}
	j := i + 1
	for p.tokAt(j).is(".") && p.tokAt(j+1).kind == tIdent && !isKeyword(p.tokAt(j+1).text) {
		j += 2
	}
	if p.tokAt(j).is("<") {
		j = p.skipTypeArgs(j)
		if j < 0 {
			return -1
		}
	}
	for p.tokAt(j).is("[") && p.tokAt(j+1).is("]") {
		j += 2
	}
	if p.tokAt(j).is("...") {
		j++
	}
	return j
}

func (p *parser) skipTypeArgs(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		t := p.toks[j]
		switch {
		case t.is("<"):
			depth++
		case t.is(">"):
			depth--
			if depth == 0 {
				return j + 1
			}
		case t.is(","), t.is("?"), t.is("."), t.is("&"), t.is("["), t.is("]"):
		case t.kind == tIdent && (!isKeyword(t.text) || primitiveTypes[t.text] || t.text == "extends" || t.text == "super"):
		default:
			return -1
		}
	}
	return -1
}

func (p *parser) atTypeDeclaration() bool {
	j := p.skipModifiers(p.pos)
	t := p.tokAt(j)
	if t.is("@") && p.tokAt(j+1).isIdent("interface") {
		return true
	}
	if t.kind != tIdent {
		return false
	}
	switch t.text {
	case "class", "interface", "enum":
		return true
	case "trait":
		return p.tokAt(j+1).kind == tIdent
	}
	return false
}

// atMethodDeclaration reports whether a method header starts here. At the
// top level of a script the body is mandatory.
func (p *parser) atMethodDeclaration(requireBody bool) bool {
	j := p.skipModifiers(p.pos)
	mods := j != p.pos
	if p.tokAt(j).is("<") {
		j = p.skipTypeArgs(j)
		if j < 0 {
			return false
		}
	}
	switch {
	case p.tokAt(j).isIdent("def"):
		j++
	case p.tokAt(j).kind == tIdent && p.tokAt(j+1).is("(") && mods:
		// modifiers with dynamic return type: `static main(args)`
	default:
		j = p.skipType(j)
		if j < 0 {
			return false
		}
	}
	name := p.tokAt(j)
	if name.kind != tIdent && name.kind != tString {
		return false
	}
	if name.kind == tIdent && isKeyword(name.text) {
		return false
	}
	if !p.tokAt(j + 1).is("(") {
		return false
	}
	if !requireBody {
		return true
	}
	k := p.skipBalanced(j + 1)
	if p.tokAt(k).isIdent("throws") {
		k++
		for p.tokAt(k).kind == tIdent || p.tokAt(k).is(".") || p.tokAt(k).is(",") {
			k++
		}
	}
	return p.tokAt(k).is("{")
}

// ---------------------------------------------------------------------------
// compilation unit

func (p *parser) compilationUnit() *ast.ModuleNode {
	mod := &ast.ModuleNode{URI: p.unit.URI}
	first := p.tok()
	var scriptStmts []ast.Statement
	var scriptMethods []*ast.MethodNode

	for p.accept(";") {
	}
	if j := p.skipModifiers(p.pos); p.tokAt(j).isIdent("package") {
		p.pos = j
		p.packageDecl(mod)
	}

	for !p.atEOF() {
		p.topLevel(mod, &scriptStmts, &scriptMethods)
	}

	end := p.tok()
	mod.Span = ast.Span{Line: first.sp.Line, Column: first.sp.Column, LastLine: end.sp.LastLine, LastColumn: end.sp.LastColumn}
	if len(p.toks) == 1 {
		mod.Span = ast.Span{Line: 1, Column: 1, LastLine: 1, LastColumn: 1}
	}

	if len(scriptStmts) > 0 || len(scriptMethods) > 0 {
		cls := &ast.ClassNode{
			Span:       ast.NoSpan,
			Name:       scriptClassName(p.unit.URI),
			Package:    p.pkg,
			Modifiers:  ast.ModPublic,
			Script:     true,
			SuperClass: &ast.TypeRef{Span: ast.NoSpan, Name: "groovy.lang.Script"},
		}
		for _, m := range scriptMethods {
			m.Owner = cls
		}
		run := &ast.MethodNode{
			Span:       ast.NoSpan,
			Name:       "run",
			Modifiers:  ast.ModPublic,
			ReturnType: &ast.TypeRef{Span: ast.NoSpan, Name: "java.lang.Object"},
			Code:       &ast.BlockStatement{Span: ast.NoSpan, Statements: scriptStmts},
			Owner:      cls,
			ScriptBody: true,
		}
		cls.Methods = append(scriptMethods, run)
		mod.Classes = append(mod.Classes, cls)
		mod.Script = cls
	}
	return mod
}

func (p *parser) packageDecl(mod *ast.ModuleNode) {
	defer p.recoverStatement(p.mark())
	p.advance()
	name, _ := p.qualifiedName()
	mod.Package = name
	p.pkg = name
	p.endStatement()
}

func (p *parser) qualifiedName() (string, ast.Span) {
	start := p.expectName()
	parts := []string{start.text}
	for p.at(".") && p.peek(1).kind == tIdent && !p.peek(1).nl {
		p.advance()
		parts = append(parts, p.advance().text)
	}
	return strings.Join(parts, "."), p.spanFrom(start)
}

func (p *parser) topLevel(mod *ast.ModuleNode, stmts *[]ast.Statement, methods *[]*ast.MethodNode) {
	defer p.recoverStatement(p.mark())
	switch {
	case p.at(";"):
		p.advance()
	case p.atIdent("import"):
		mod.Imports = append(mod.Imports, p.importDecl())
		p.endStatement()
	case p.atTypeDeclaration():
		mod.Classes = append(mod.Classes, p.typeDeclaration(nil))
	case p.atMethodDeclaration(true):
		*methods = append(*methods, p.methodDeclaration(nil))
	default:
		*stmts = p.statement(*stmts)
		p.endStatement()
	}
}

func (p *parser) importDecl() *ast.ImportNode {
	start := p.advance()
	imp := &ast.ImportNode{}
	if p.acceptIdent("static") {
		imp.Static = true
	}
	nameStart := p.expectName()
	parts := []string{nameStart.text}
	for p.at(".") {
		p.advance()
		if p.accept("*") {
			imp.Star = true
			break
		}
		parts = append(parts, p.expectName().text)
	}
	nameEnd := p.last()
	if imp.Star {
		// the span of the type covers the package or class part only
		nameEnd = p.toks[p.pos-3]
	}
	typeSpan := ast.Span{Line: nameStart.sp.Line, Column: nameStart.sp.Column, LastLine: nameEnd.sp.LastLine, LastColumn: nameEnd.sp.LastColumn}

	switch {
	case imp.Static && imp.Star:
		imp.Type = &ast.TypeRef{Span: typeSpan, Name: strings.Join(parts, ".")}
	case imp.Static:
		imp.Member = parts[len(parts)-1]
		cls := parts[:len(parts)-1]
		imp.Type = &ast.TypeRef{Span: typeSpan, Name: strings.Join(cls, ".")}
	case imp.Star:
		imp.Package = strings.Join(parts, ".")
	default:
		imp.Type = &ast.TypeRef{Span: typeSpan, Name: strings.Join(parts, ".")}
	}
	if p.acceptIdent("as") {
		imp.Alias = p.expectName().text
	}
	imp.Span = p.spanFrom(start)
	return imp
}

// endStatement requires a statement terminator: ';', a line break, '}' or
// the end of input.
func (p *parser) endStatement() {
	switch {
	case p.accept(";"):
	case p.at("}"), p.atEOF(), p.tok().nl:
	default:
		p.failf(p.tok(), "unexpected token '%s'", describe(p.tok()))
	}
}

// ---------------------------------------------------------------------------
// declarations

type modifiers struct {
	mods ast.Modifiers
	// start indexes the first token after any leading annotations.
	start int
	doc   string
	any   bool
}

func (p *parser) modifiers() modifiers {
	m := modifiers{start: -1, doc: p.tok().doc}
	for {
		if p.at("@") && !p.peek(1).isIdent("interface") {
			j := p.skipAnnotation(p.pos)
			if j == p.pos {
				p.failf(p.tok(), "unexpected token '@'")
			}
			p.pos = j
			continue
		}
		t := p.tok()
		if m.start < 0 {
			m.start = p.pos
		}
		if m.doc == "" && t.doc != "" {
			m.doc = t.doc
		}
		if isModifierToken(t) && !(t.text == "default" && p.peek(1).is(":")) {
			m.mods |= ast.ModifierByKeyword[t.text]
			m.any = true
			p.advance()
			continue
		}
		break
	}
	return m
}

// declStart returns the token that starts a declaration's span: the first
// modifier or type token after annotations.
func (p *parser) declStart(m modifiers) token {
	if m.start < 0 {
		return p.tok()
	}
	return p.toks[m.start]
}

func (p *parser) typeDeclaration(outer *ast.ClassNode) *ast.ClassNode {
	m := p.modifiers()
	start := p.declStart(m)
	kind := ast.ClassKindClass
	switch {
	case p.at("@"):
		p.advance()
		p.advance()
		kind = ast.ClassKindAnnotation
	case p.atIdent("interface"):
		p.advance()
		kind = ast.ClassKindInterface
	case p.atIdent("enum"):
		p.advance()
		kind = ast.ClassKindEnum
	case p.atIdent("trait"):
		p.advance()
		kind = ast.ClassKindTrait
	default:
		p.expectKeyword("class")
	}
	name := p.expectName()
	mods := m.mods
	if mods&(ast.ModPrivate|ast.ModProtected) == 0 {
		mods |= ast.ModPublic
	}
	if kind == ast.ClassKindInterface || kind == ast.ClassKindAnnotation {
		mods |= ast.ModAbstract
	}
	cls := &ast.ClassNode{
		Name:      name.text,
		Package:   p.pkg,
		Modifiers: mods,
		ClassKind: kind,
		Outer:     outer,
		Doc:       m.doc,
	}
	if p.at("<") {
		cls.TypeParameters = p.typeParameters()
	}
	if p.acceptIdent("extends") {
		types := p.typeList()
		if kind == ast.ClassKindInterface || kind == ast.ClassKindTrait {
			cls.Interfaces = append(cls.Interfaces, types...)
		} else if len(types) > 0 {
			cls.SuperClass = types[0]
		}
	}
	if p.acceptIdent("implements") {
		cls.Interfaces = append(cls.Interfaces, p.typeList()...)
	}
	p.classBody(cls)
	cls.Span = p.spanFrom(start)
	return cls
}

func (p *parser) expectKeyword(kw string) token {
	if !p.atIdent(kw) {
		p.failf(p.tok(), "expecting '%s', found '%s'", kw, describe(p.tok()))
	}
	return p.advance()
}

func (p *parser) typeList() []*ast.TypeRef {
	types := []*ast.TypeRef{p.parseType(false)}
	for p.accept(",") {
		types = append(types, p.parseType(false))
	}
	return types
}

func (p *parser) typeParameters() []string {
	p.expect("<")
	var names []string
	for {
		names = append(names, p.expectName().text)
		if p.acceptIdent("extends") {
			p.parseType(false)
			for p.accept("&") {
				p.parseType(false)
			}
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return names
}

func (p *parser) classBody(cls *ast.ClassNode) {
	p.expect("{")
	p.pushNL(true)
	if cls.ClassKind == ast.ClassKindEnum {
		p.enumConstants(cls)
	}
	for !p.at("}") && !p.atEOF() {
		p.member(cls)
	}
	p.popNL()
	if p.atEOF() {
		// an unclosed body keeps the members parsed so far
		p.report(p.tok().sp, fmt.Sprintf("expecting '}', found '%s'", describe(p.tok())))
		return
	}
	p.expect("}")
}

func (p *parser) enumConstants(cls *ast.ClassNode) {
	defer p.recoverStatement(p.mark())
	for {
		for p.at("@") {
			p.pos = p.skipAnnotation(p.pos)
		}
		if p.tok().kind != tIdent || isKeyword(p.tok().text) || p.peek(1).kind == tIdent {
			return
		}
		name := p.advance()
		f := &ast.FieldNode{
			Name:         name.text,
			Modifiers:    ast.ModPublic | ast.ModStatic | ast.ModFinal,
			Type:         &ast.TypeRef{Span: ast.NoSpan, Name: cls.Name},
			Owner:        cls,
			EnumConstant: true,
			Doc:          name.doc,
		}
		if p.at("(") {
			args := p.arguments()
			f.Initial = &ast.ConstructorCallExpression{
				Span:      args.Span,
				Type:      &ast.TypeRef{Span: ast.NoSpan, Name: cls.Name},
				Arguments: args,
			}
		}
		if p.at("{") {
			p.pos = p.skipBalanced(p.pos)
		}
		f.Span = p.spanFrom(name)
		cls.Fields = append(cls.Fields, f)
		if p.accept(",") {
			continue
		}
		p.accept(";")
		return
	}
}

func (p *parser) member(cls *ast.ClassNode) {
	defer p.recoverStatement(p.mark())
	if p.accept(";") {
		return
	}
	if p.at("{") {
		cls.Initializers = append(cls.Initializers, p.block())
		return
	}
	if p.atIdent("static") && p.peek(1).is("{") {
		p.advance()
		cls.Initializers = append(cls.Initializers, p.block())
		return
	}
	if p.atTypeDeclaration() {
		inner := p.typeDeclaration(cls)
		cls.Inner = append(cls.Inner, inner)
		return
	}
	j := p.skipModifiers(p.pos)
	if p.tokAt(j).isIdent(cls.Name) && p.tokAt(j+1).is("(") {
		cls.Constructors = append(cls.Constructors, p.constructorDeclaration(cls))
		return
	}
	if p.atMethodDeclaration(false) {
		cls.Methods = append(cls.Methods, p.methodDeclaration(cls))
		return
	}
	p.fieldDeclaration(cls)
	p.endStatement()
}

func (p *parser) methodDeclaration(owner *ast.ClassNode) *ast.MethodNode {
	m := p.modifiers()
	start := p.declStart(m)
	meth := &ast.MethodNode{Modifiers: m.mods, Owner: owner, Doc: m.doc}
	if p.at("<") {
		meth.TypeParameters = p.typeParameters()
	}
	if meth.Doc == "" {
		meth.Doc = p.tok().doc
	}
	switch {
	case p.atIdent("def"):
		p.advance()
	case (p.tok().kind == tIdent || p.tok().kind == tString) && p.peek(1).is("("):
		// dynamic return type
	default:
		meth.ReturnType = p.parseType(false)
	}
	name := p.advance()
	meth.Name = name.text
	meth.Parameters = p.parameters()
	p.throwsClause()
	if p.at("{") {
		meth.Code = p.block()
	} else {
		if owner == nil || (!owner.IsInterface() && !m.mods.Has(ast.ModAbstract)) {
			if !p.at(";") && !p.tok().nl && !p.at("}") {
				p.failf(p.tok(), "expecting '{', found '%s'", describe(p.tok()))
			}
		}
		if owner != nil && owner.IsInterface() && !m.mods.Has(ast.ModDefault) && !m.mods.Has(ast.ModStatic) {
			meth.Modifiers |= ast.ModAbstract
		}
		p.accept(";")
	}
	if meth.Modifiers&(ast.ModPrivate|ast.ModProtected) == 0 {
		meth.Modifiers |= ast.ModPublic
	}
	meth.Span = p.spanFrom(start)
	return meth
}

func (p *parser) constructorDeclaration(owner *ast.ClassNode) *ast.ConstructorNode {
	m := p.modifiers()
	start := p.declStart(m)
	ctor := &ast.ConstructorNode{Modifiers: m.mods, Owner: owner, Doc: m.doc}
	if ctor.Doc == "" {
		ctor.Doc = p.tok().doc
	}
	p.advance() // name
	ctor.Parameters = p.parameters()
	p.throwsClause()
	ctor.Code = p.block()
	if ctor.Modifiers&(ast.ModPrivate|ast.ModProtected) == 0 {
		ctor.Modifiers |= ast.ModPublic
	}
	ctor.Span = p.spanFrom(start)
	return ctor
}

func (p *parser) throwsClause() {
	if p.acceptIdent("throws") {
		p.typeList()
	}
}

func (p *parser) parameters() []*ast.Parameter {
	p.expect("(")
	p.pushNL(false)
	var params []*ast.Parameter
	for !p.at(")") {
		params = append(params, p.parameter())
		if !p.accept(",") {
			break
		}
	}
	p.popNL()
	p.expect(")")
	return params
}

func (p *parser) parameter() *ast.Parameter {
	m := p.modifiers()
	start := p.declStart(m)
	param := &ast.Parameter{}
	switch {
	case p.atIdent("def"):
		p.advance()
	case p.tok().kind == tIdent && (p.peek(1).is(",") || p.peek(1).is(")") || p.peek(1).is("=") || p.peek(1).is("->")):
		// untyped
	default:
		param.Type = p.parseType(true)
		if param.Type.Dims > 0 && p.last().is("...") {
			param.VarArgs = true
		}
	}
	name := p.expectName()
	param.Name = name.text
	if p.accept("=") {
		param.Default = p.expression()
	}
	param.Span = p.spanFrom(start)
	return param
}

// fieldDeclaration parses a field or property declaration with one or more
// declarators.
func (p *parser) fieldDeclaration(cls *ast.ClassNode) {
	m := p.modifiers()
	start := p.declStart(m)
	doc := m.doc
	var typ *ast.TypeRef
	switch {
	case p.atIdent("def") || p.atIdent("var"):
		if doc == "" {
			doc = p.tok().doc
		}
		p.advance()
	case p.tok().kind == tIdent && !isKeyword(p.tok().text) && (p.peek(1).is("=") || p.peek(1).is(",") || p.peek(1).is(";") || p.peek(1).is("}") || p.peek(1).nl) && m.any:
		// `static x = 1`
	default:
		if doc == "" {
			doc = p.tok().doc
		}
		typ = p.parseType(false)
	}
	// Trait members keep property semantics; interface fields are constants.
	iface := cls.ClassKind == ast.ClassKindInterface || cls.ClassKind == ast.ClassKindAnnotation
	isProperty := m.mods&(ast.ModPublic|ast.ModPrivate|ast.ModProtected) == 0 && !iface
	mods := m.mods
	if iface {
		mods |= ast.ModPublic | ast.ModStatic | ast.ModFinal
	}
	for {
		name := p.expectName()
		var init ast.Expression
		if p.accept("=") {
			init = p.expression()
		}
		sp := p.spanFrom(start)
		if isProperty {
			cls.Properties = append(cls.Properties, &ast.PropertyNode{
				Span: sp, Name: name.text, Modifiers: mods, Type: typ, Initial: init, Owner: cls, Doc: doc,
			})
		} else {
			cls.Fields = append(cls.Fields, &ast.FieldNode{
				Span: sp, Name: name.text, Modifiers: mods, Type: typ, Initial: init, Owner: cls, Doc: doc,
			})
		}
		if !p.accept(",") {
			break
		}
		// Later declarators get their own positionless copy so that no type
		// reference node has two parents.
		if typ != nil {
			typ = copyTypeRef(typ)
		}
	}
}

// copyTypeRef returns a positionless deep copy of t.
func copyTypeRef(t *ast.TypeRef) *ast.TypeRef {
	c := *t
	c.Span = ast.NoSpan
	c.Args = make([]*ast.TypeRef, len(t.Args))
	for i, a := range t.Args {
		c.Args[i] = copyTypeRef(a)
	}
	return &c
}

// parseType parses a type reference. varargs allows a trailing '...'.
func (p *parser) parseType(varargs bool) *ast.TypeRef {
	start := p.tok()
	if start.kind != tIdent || (isKeyword(start.text) && !primitiveTypes[start.text]) {
		p.failf(start, "unexpected token '%s'", describe(start))
	}
	p.advance()
	name := start.text
	for p.at(".") && p.peek(1).kind == tIdent && !isKeyword(p.peek(1).text) {
		p.advance()
		name += "." + p.advance().text
	}
	t := &ast.TypeRef{Name: name}
	if p.at("<") {
		t.Args = p.typeArguments()
	}
	for p.at("[") && p.peek(1).is("]") {
		p.advance()
		p.advance()
		t.Dims++
	}
	if varargs && p.at("...") {
		p.advance()
		t.Dims++
	}
	t.Span = p.spanFrom(start)
	return t
}

func (p *parser) typeArguments() []*ast.TypeRef {
	p.expect("<")
	var args []*ast.TypeRef
	if p.accept(">") {
		return nil
	}
	for {
		if p.accept("?") {
			if p.acceptIdent("extends") || p.acceptIdent("super") {
				args = append(args, p.parseType(false))
			}
		} else {
			args = append(args, p.parseType(false))
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return args
}
