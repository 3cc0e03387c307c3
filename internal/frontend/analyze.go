package frontend

import (
	"fmt"
	"strings"

	"github.com/jward/groovyls/internal/ast"
)

// defaultGroovyPackages are star-imported into every Groovy source.
var defaultGroovyPackages = []string{"java.lang", "java.util", "java.io", "java.net", "groovy.lang", "groovy.util"}

var defaultGroovyClasses = map[string]string{
	"BigInteger": "java.math.BigInteger",
	"BigDecimal": "java.math.BigDecimal",
}

// scope is one level of lexical variable visibility.
type scope struct {
	vars   map[string]ast.Variable
	parent *scope
}

func (s *scope) lookup(name string) ast.Variable {
	for ; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v
		}
	}
	return nil
}

// analyzer runs semantic analysis over one module: it resolves type
// references, links variable references to their declarations and turns
// names that denote classes into class expressions.
type analyzer struct {
	table *ClassTable
	unit  *SourceUnit
	mod   *ast.ModuleNode

	imports  map[string]string
	stars    []string
	defaults []string

	cls        *ast.ClassNode
	typeParams []map[string]bool
	scope      *scope
}

func analyzeUnit(t *ClassTable, u *SourceUnit) {
	if u.Module == nil {
		return
	}
	a := &analyzer{table: t, unit: u, mod: u.Module, imports: make(map[string]string)}
	if u.Language == LangGroovy {
		a.defaults = defaultGroovyPackages
	} else {
		a.defaults = []string{"java.lang"}
	}
	a.module()
	u.advance(PhaseSemanticAnalysis)
}

func (a *analyzer) errorf(sp ast.Span, format string, args ...any) {
	a.unit.addError(sp, false, format, args...)
}

func (a *analyzer) module() {
	for _, imp := range a.mod.Imports {
		a.importDecl(imp)
	}
	for _, cls := range a.mod.AllClasses() {
		name := cls.FullName()
		if owner, ok := a.table.Owner(name); ok && owner != a.mod.URI {
			a.errorf(cls.Span, "Invalid duplicate class definition of class %s : The sources %s and %s each contain a class with the name %s.",
				name, owner, a.mod.URI, name)
		}
	}
	for _, cls := range a.mod.Classes {
		a.class(cls)
	}
}

func (a *analyzer) importDecl(imp *ast.ImportNode) {
	switch {
	case imp.Star && !imp.Static:
		a.stars = append(a.stars, imp.Package)
	case imp.Type != nil:
		cls := a.qualified(imp.Type.Name)
		if cls == nil {
			a.errorf(imp.Type.Span, "unable to resolve class %s", imp.Type.Name)
			return
		}
		imp.Type.Resolved = cls.FullName()
		switch {
		case imp.Static && imp.Star:
			a.stars = append(a.stars, cls.FullName()+"$")
		case imp.Static:
		default:
			alias := imp.Alias
			if alias == "" {
				alias = imp.Type.SimpleName()
			}
			a.imports[alias] = cls.FullName()
		}
	}
}

// qualified resolves a dotted name as a package-qualified class, allowing
// nested classes to be written with dots.
func (a *analyzer) qualified(name string) *ast.ClassNode {
	if cls := a.table.Lookup(name); cls != nil {
		return cls
	}
	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i > 0; i-- {
		candidate := strings.Join(parts[:i], ".") + "$" + strings.Join(parts[i:], "$")
		if cls := a.table.Lookup(candidate); cls != nil {
			return cls
		}
	}
	return nil
}

func (a *analyzer) isTypeParam(name string) bool {
	for i := len(a.typeParams) - 1; i >= 0; i-- {
		if a.typeParams[i][name] {
			return true
		}
	}
	return false
}

func (a *analyzer) pushTypeParams(names []string) {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	a.typeParams = append(a.typeParams, m)
}

func (a *analyzer) popTypeParams() { a.typeParams = a.typeParams[:len(a.typeParams)-1] }

// lookupSimple resolves an unqualified class name in the current context.
func (a *analyzer) lookupSimple(name string) *ast.ClassNode {
	for c := a.cls; c != nil; c = c.Outer {
		if c.Name == name && !c.Script {
			return c
		}
		for _, in := range c.Inner {
			if in.Name == name {
				return in
			}
		}
	}
	if fqn, ok := a.imports[name]; ok {
		return a.table.Lookup(fqn)
	}
	if a.mod.Package != "" {
		if cls := a.table.Lookup(a.mod.Package + "." + name); cls != nil {
			return cls
		}
	} else if cls := a.table.Workspace(name); cls != nil {
		return cls
	}
	for _, pkg := range a.stars {
		fqn := pkg + "." + name
		if strings.HasSuffix(pkg, "$") {
			fqn = pkg + name
		}
		if cls := a.table.Lookup(fqn); cls != nil {
			return cls
		}
	}
	for _, pkg := range a.defaults {
		if cls := a.table.Lookup(pkg + "." + name); cls != nil {
			return cls
		}
	}
	if a.unit.Language == LangGroovy {
		if fqn, ok := defaultGroovyClasses[name]; ok {
			return a.table.Lookup(fqn)
		}
	}
	return a.table.Lookup(name)
}

// lookupClass resolves a class name as written in source.
func (a *analyzer) lookupClass(name string) *ast.ClassNode {
	if !strings.Contains(name, ".") {
		return a.lookupSimple(name)
	}
	if cls := a.qualified(name); cls != nil {
		return cls
	}
	head, rest, _ := strings.Cut(name, ".")
	if outer := a.lookupSimple(head); outer != nil {
		return a.table.Lookup(outer.FullName() + "$" + strings.ReplaceAll(rest, ".", "$"))
	}
	return nil
}

// typeRef resolves ref and its type arguments, reporting names that denote
// no class.
func (a *analyzer) typeRef(ref *ast.TypeRef) {
	if ref == nil {
		return
	}
	for _, arg := range ref.Args {
		a.typeRef(arg)
	}
	if ref.Resolved != "" {
		return
	}
	switch {
	case ast.IsPrimitive(ref.Name):
		ref.Resolved = ref.Name
	case a.isTypeParam(ref.Name):
		ref.Resolved = objectClass
	default:
		if cls := a.lookupClass(ref.Name); cls != nil {
			ref.Resolved = cls.FullName()
			return
		}
		sp := ref.Span
		if !sp.HasPosition() {
			return
		}
		a.errorf(sp, "unable to resolve class %s", ref.Name)
	}
}

func (a *analyzer) class(cls *ast.ClassNode) {
	outerCls, outerScope := a.cls, a.scope
	a.cls = cls
	a.pushTypeParams(cls.TypeParameters)
	defer func() {
		a.popTypeParams()
		a.cls, a.scope = outerCls, outerScope
	}()

	a.typeRef(cls.SuperClass)
	for _, i := range cls.Interfaces {
		a.typeRef(i)
	}
	if cls.IsEnum() {
		a.enumMethods(cls)
	}

	a.scope = &scope{vars: make(map[string]ast.Variable), parent: a.classScope(cls.Outer)}
	for _, f := range cls.Fields {
		a.scope.vars[f.Name] = f
	}
	for _, p := range cls.Properties {
		a.scope.vars[p.Name] = p
	}

	for _, p := range cls.Properties {
		a.typeRef(p.Type)
		p.Initial = a.expr(p.Initial)
	}
	for _, f := range cls.Fields {
		a.typeRef(f.Type)
		f.Initial = a.expr(f.Initial)
	}
	for _, ctor := range cls.Constructors {
		a.withParams(ctor.Parameters, func() { a.block(ctor.Code) })
	}
	for _, init := range cls.Initializers {
		a.block(init)
	}
	for _, m := range cls.Methods {
		if m.Synthetic {
			continue
		}
		a.pushTypeParams(m.TypeParameters)
		a.typeRef(m.ReturnType)
		a.withParams(m.Parameters, func() { a.block(m.Code) })
		a.popTypeParams()
	}
	for _, in := range cls.Inner {
		a.class(in)
	}
}

// classScope returns the member scope of cls and its outer classes.
func (a *analyzer) classScope(cls *ast.ClassNode) *scope {
	if cls == nil {
		return nil
	}
	s := &scope{vars: make(map[string]ast.Variable), parent: a.classScope(cls.Outer)}
	for _, f := range cls.Fields {
		s.vars[f.Name] = f
	}
	for _, p := range cls.Properties {
		s.vars[p.Name] = p
	}
	return s
}

func (a *analyzer) enumMethods(cls *ast.ClassNode) {
	name := cls.FullName()
	for _, m := range cls.Methods {
		if m.Synthetic {
			return
		}
	}
	cls.Methods = append(cls.Methods,
		&ast.MethodNode{
			Span:       ast.NoSpan,
			Name:       "values",
			Modifiers:  ast.ModPublic | ast.ModStatic,
			ReturnType: &ast.TypeRef{Span: ast.NoSpan, Name: cls.Name, Dims: 1, Resolved: name},
			Owner:      cls,
			Synthetic:  true,
		},
		&ast.MethodNode{
			Span:       ast.NoSpan,
			Name:       "valueOf",
			Modifiers:  ast.ModPublic | ast.ModStatic,
			ReturnType: &ast.TypeRef{Span: ast.NoSpan, Name: cls.Name, Resolved: name},
			Parameters: []*ast.Parameter{{
				Span: ast.NoSpan,
				Name: "name",
				Type: &ast.TypeRef{Span: ast.NoSpan, Name: "String", Resolved: "java.lang.String"},
			}},
			Owner:     cls,
			Synthetic: true,
		},
	)
}

func (a *analyzer) push() { a.scope = &scope{vars: make(map[string]ast.Variable), parent: a.scope} }
func (a *analyzer) pop()  { a.scope = a.scope.parent }

func (a *analyzer) declare(v ast.Variable) {
	if v.VariableName() == "" {
		return
	}
	a.scope.vars[v.VariableName()] = v
}

func (a *analyzer) withParams(params []*ast.Parameter, body func()) {
	a.push()
	defer a.pop()
	for _, p := range params {
		a.typeRef(p.Type)
		p.Default = a.expr(p.Default)
		a.declare(p)
	}
	body()
}

func (a *analyzer) block(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	a.push()
	defer a.pop()
	for _, s := range b.Statements {
		a.stmt(s)
	}
}

// body analyzes a statement that opens its own scope.
func (a *analyzer) body(s ast.Statement) {
	if s == nil {
		return
	}
	if b, ok := s.(*ast.BlockStatement); ok {
		a.block(b)
		return
	}
	a.push()
	a.stmt(s)
	a.pop()
}

func (a *analyzer) stmt(s ast.Statement) {
	switch s := s.(type) {
	case nil:
	case *ast.BlockStatement:
		a.block(s)
	case *ast.ExpressionStatement:
		s.Expr = a.expr(s.Expr)
	case *ast.ReturnStatement:
		s.Expr = a.expr(s.Expr)
	case *ast.IfStatement:
		s.Cond = a.expr(s.Cond)
		a.body(s.Then)
		a.body(s.Else)
	case *ast.ForStatement:
		a.push()
		for i, e := range s.Init {
			s.Init[i] = a.expr(e)
		}
		s.Collection = a.expr(s.Collection)
		if s.Var != nil {
			a.typeRef(s.Var.Type)
			a.declare(s.Var)
		}
		s.Cond = a.expr(s.Cond)
		for i, e := range s.Update {
			s.Update[i] = a.expr(e)
		}
		a.body(s.Body)
		a.pop()
	case *ast.WhileStatement:
		s.Cond = a.expr(s.Cond)
		a.body(s.Body)
	case *ast.DoWhileStatement:
		a.body(s.Body)
		s.Cond = a.expr(s.Cond)
	case *ast.TryCatchStatement:
		a.push()
		for _, r := range s.Resources {
			a.expr(r)
		}
		a.block(s.Try)
		a.pop()
		for _, c := range s.Catches {
			a.stmt(c)
		}
		a.block(s.Finally)
	case *ast.CatchStatement:
		a.push()
		if s.Param != nil {
			a.typeRef(s.Param.Type)
			a.declare(s.Param)
		}
		for _, alt := range s.Alternatives {
			a.typeRef(alt)
		}
		a.block(s.Code)
		a.pop()
	case *ast.ThrowStatement:
		s.Expr = a.expr(s.Expr)
	case *ast.SwitchStatement:
		s.Expr = a.expr(s.Expr)
		for _, c := range s.Cases {
			a.stmt(c)
		}
		a.block(s.Default)
	case *ast.CaseStatement:
		s.Expr = a.expr(s.Expr)
		a.block(s.Code)
	case *ast.BreakStatement, *ast.ContinueStatement:
	case *ast.AssertStatement:
		s.Cond = a.expr(s.Cond)
		s.Message = a.expr(s.Message)
	default:
		panic(fmt.Sprintf("frontend: unexpected statement %T", s))
	}
}

// classExpr returns a class expression for a name that denotes a class.
func (a *analyzer) classExpr(sp ast.Span, name string) *ast.ClassExpression {
	if name == "" || !startsUpper(name[strings.LastIndexByte(name, '.')+1:]) {
		return nil
	}
	cls := a.lookupClass(name)
	if cls == nil {
		return nil
	}
	return &ast.ClassExpression{Span: sp, Type: &ast.TypeRef{Span: sp, Name: name, Resolved: cls.FullName()}}
}

// dottedName returns the name spelled by a chain of unlinked variable and
// property accesses, e.g. java.util.List.
func (a *analyzer) dottedName(e ast.Expression) (string, bool) {
	switch x := e.(type) {
	case *ast.VariableExpression:
		if x.Accessed != nil || x.IsThis() || x.IsSuper() || a.scope.lookup(x.Name) != nil {
			return "", false
		}
		return x.Name, true
	case *ast.PropertyExpression:
		if x.Safe || x.Spread {
			return "", false
		}
		head, ok := a.dottedName(x.Object)
		if !ok {
			return "", false
		}
		return head + "." + x.PropertyName(), true
	}
	return "", false
}

func (a *analyzer) exprs(es []ast.Expression) {
	for i, e := range es {
		es[i] = a.expr(e)
	}
}

func (a *analyzer) args(l *ast.ArgumentListExpression) {
	if l != nil {
		a.exprs(l.Args)
	}
}

// expr analyzes e and returns the expression that replaces it.
func (a *analyzer) expr(e ast.Expression) ast.Expression {
	switch x := e.(type) {
	case nil:
		return nil
	case *ast.VariableExpression:
		if x.IsThis() || x.IsSuper() || x.Accessed != nil {
			return x
		}
		if v := a.scope.lookup(x.Name); v != nil {
			x.Accessed = v
			return x
		}
		if ce := a.classExpr(x.Span, x.Name); ce != nil {
			return ce
		}
		return x
	case *ast.DeclarationExpression:
		x.Init = a.expr(x.Init)
		if x.Variable != nil {
			a.typeRef(x.Variable.Type)
			a.declare(x.Variable)
		}
		return x
	case *ast.ConstantExpression:
		return x
	case *ast.GStringExpression:
		a.exprs(x.Values)
		return x
	case *ast.MethodCallExpression:
		x.Object = a.expr(x.Object)
		a.args(x.Arguments)
		return x
	case *ast.ConstructorCallExpression:
		switch {
		case x.This && a.cls != nil:
			x.Type.Resolved = a.cls.FullName()
		case x.Super && a.cls != nil:
			if sup := a.table.SuperClass(a.cls); sup != nil {
				x.Type.Resolved = sup.FullName()
			}
		default:
			a.typeRef(x.Type)
		}
		a.args(x.Arguments)
		return x
	case *ast.PropertyExpression:
		if name, ok := a.dottedName(x); ok && strings.Contains(name, ".") {
			if ce := a.classExpr(x.Span, name); ce != nil {
				return ce
			}
		}
		x.Object = a.expr(x.Object)
		if ce, ok := x.Object.(*ast.ClassExpression); ok && ce.Type.Resolved != "" && startsUpper(x.PropertyName()) {
			owner := a.table.Lookup(ce.Type.Resolved)
			if owner != nil && owner.Field(x.PropertyName()) == nil && owner.Property(x.PropertyName()) == nil {
				if inner := a.table.Lookup(ce.Type.Resolved + "$" + x.PropertyName()); inner != nil {
					name := ce.Type.Name + "." + x.PropertyName()
					return &ast.ClassExpression{Span: x.Span, Type: &ast.TypeRef{Span: x.Span, Name: name, Resolved: inner.FullName()}}
				}
			}
		}
		return x
	case *ast.ClassExpression:
		a.typeRef(x.Type)
		return x
	case *ast.BinaryExpression:
		x.Left = a.expr(x.Left)
		x.Right = a.expr(x.Right)
		return x
	case *ast.ArgumentListExpression:
		a.exprs(x.Args)
		return x
	case *ast.ClosureExpression:
		a.push()
		if x.ImplicitIt != nil {
			a.declare(x.ImplicitIt)
		}
		for _, p := range x.Parameters {
			a.typeRef(p.Type)
			p.Default = a.expr(p.Default)
			a.declare(p)
		}
		a.block(x.Code)
		a.pop()
		return x
	case *ast.ListExpression:
		a.exprs(x.Elements)
		return x
	case *ast.MapExpression:
		for _, entry := range x.Entries {
			a.expr(entry)
		}
		return x
	case *ast.MapEntryExpression:
		x.Key = a.expr(x.Key)
		x.Value = a.expr(x.Value)
		return x
	case *ast.TernaryExpression:
		x.Cond = a.expr(x.Cond)
		x.Then = a.expr(x.Then)
		x.Else = a.expr(x.Else)
		return x
	case *ast.UnaryExpression:
		x.Operand = a.expr(x.Operand)
		return x
	case *ast.CastExpression:
		a.typeRef(x.Type)
		x.Expr = a.expr(x.Expr)
		return x
	case *ast.RangeExpression:
		x.From = a.expr(x.From)
		x.To = a.expr(x.To)
		return x
	case *ast.ArrayExpression:
		a.typeRef(x.Element)
		a.exprs(x.Sizes)
		a.exprs(x.Init)
		return x
	}
	panic(fmt.Sprintf("frontend: unexpected expression %T", e))
}
