package resolve

import (
	"github.com/jward/groovyls/internal/ast"
)

// Score weights of overload resolution, per argument position.
const (
	scoreEqual    = 1000
	scoreSubtype  = 100
	scoreMismatch = 1
)

// TypeOf returns the class of the value n denotes, or nil when n is not a
// typed node. Dynamic declarations take the type of their initializer;
// untyped values are java.lang.Object.
func (r *Resolver) TypeOf(n ast.Node) *ast.ClassNode {
	return r.typeOf(n, 0)
}

func (r *Resolver) object() *ast.ClassNode { return r.table.Lookup(objectClass) }

// refType returns the class a declared type names; a missing type is
// java.lang.Object.
func (r *Resolver) refType(ref *ast.TypeRef) *ast.ClassNode {
	if ref == nil {
		return r.object()
	}
	if cls := r.table.ClassOf(ref); cls != nil {
		return cls
	}
	return r.object()
}

func (r *Resolver) typeOf(n ast.Node, depth int) *ast.ClassNode {
	if n == nil || depth > maxTypeDepth {
		return nil
	}
	depth++
	switch n := n.(type) {
	case *ast.ClassNode:
		return n
	case *ast.TypeRef:
		return r.table.ClassOf(n)
	case *ast.BinaryExpression:
		if n.IsIndex() {
			if left := r.typeOf(n.Left, depth); left != nil && left.IsArray() {
				return left.Component
			}
		}
		return r.object()
	case *ast.ClassExpression:
		return r.table.Lookup(n.Type.Resolved)
	case *ast.ConstructorCallExpression:
		if n.Type == nil {
			return nil
		}
		return r.table.Lookup(n.Type.Resolved)
	case *ast.MethodCallExpression:
		if m, ok := r.methodFor(n, -1, depth).(*ast.MethodNode); ok {
			return r.refType(m.ReturnType)
		}
		return r.object()
	case *ast.PropertyExpression:
		recv := r.typeOf(n.Object, depth)
		if recv == nil {
			return r.object()
		}
		if p := r.table.Property(recv, n.PropertyName()); p != nil {
			return r.typeOf(p, depth)
		}
		if f := r.table.Field(recv, n.PropertyName()); f != nil {
			return r.typeOf(f, depth)
		}
		return r.object()
	case *ast.VariableExpression:
		if n.IsThis() {
			return r.ix.EnclosingClass(n)
		}
		if n.IsSuper() {
			return r.table.SuperClass(r.ix.EnclosingClass(n))
		}
		v := r.variable(n)
		if v == nil {
			return r.object()
		}
		if v == ast.Variable(n) {
			if n.Type != nil {
				return r.refType(n.Type)
			}
			if decl, ok := r.ix.ParentOf(n).(*ast.DeclarationExpression); ok && decl.Init != nil {
				return r.typeOf(decl.Init, depth)
			}
			return r.object()
		}
		return r.typeOf(v, depth)
	case *ast.DeclarationExpression:
		if n.Variable == nil {
			return nil
		}
		return r.typeOf(n.Variable, depth)
	case *ast.FieldNode:
		return r.declared(n.Type, n.Initial, depth)
	case *ast.PropertyNode:
		return r.declared(n.Type, n.Initial, depth)
	case *ast.Parameter:
		return r.declared(n.Type, n.Default, depth)
	case *ast.CastExpression:
		return r.refType(n.Type)
	case *ast.ConstantExpression:
		if n.LiteralType != "" {
			return r.table.Lookup(n.LiteralType)
		}
		return r.object()
	case *ast.GStringExpression:
		return r.table.Lookup("groovy.lang.GString")
	case *ast.ListExpression:
		return r.table.Lookup("java.util.List")
	case *ast.MapExpression:
		return r.table.Lookup("java.util.Map")
	case *ast.ClosureExpression:
		return r.table.Lookup("groovy.lang.Closure")
	case *ast.RangeExpression:
		return r.table.Lookup("groovy.lang.Range")
	case *ast.ArrayExpression:
		elem := r.refType(n.Element)
		if elem == nil {
			return nil
		}
		dims := len(n.Sizes)
		if dims == 0 {
			dims = 1
		}
		for i := 0; i < dims; i++ {
			elem = r.table.ArrayOf(elem)
		}
		return elem
	case *ast.TernaryExpression:
		if n.Elvis {
			return r.typeOf(n.Cond, depth)
		}
		return r.typeOf(n.Then, depth)
	case *ast.ExpressionStatement:
		return r.typeOf(n.Expr, depth)
	case ast.Expression:
		return r.object()
	}
	return nil
}

// declared returns the declared type, or for a dynamic declaration the type of
// its initializer.
func (r *Resolver) declared(ref *ast.TypeRef, init ast.Expression, depth int) *ast.ClassNode {
	if ref != nil {
		return r.refType(ref)
	}
	if init != nil {
		if cls := r.typeOf(init, depth); cls != nil {
			return cls
		}
	}
	return r.object()
}

// receiver returns the type a method call is dispatched on. Implicit-this
// calls dispatch on the enclosing class.
func (r *Resolver) receiver(call *ast.MethodCallExpression, depth int) *ast.ClassNode {
	if call.Object == nil {
		return r.ix.EnclosingClass(call)
	}
	return r.typeOf(call.Object, depth)
}

// Overloads returns the candidates of a method call (methods of the receiver
// type, own first) or of a constructor call (declared constructors).
func (r *Resolver) Overloads(call ast.Expression) []ast.Member {
	return r.overloads(call, 0)
}

func (r *Resolver) overloads(call ast.Expression, depth int) []ast.Member {
	var out []ast.Member
	switch c := call.(type) {
	case *ast.MethodCallExpression:
		recv := r.receiver(c, depth)
		if recv == nil {
			return nil
		}
		for _, m := range r.table.Methods(recv, c.MethodName()) {
			out = append(out, m)
		}
	case *ast.ConstructorCallExpression:
		if c.Type == nil {
			return nil
		}
		cls := r.canonical(c.Type.Resolved, false)
		if cls == nil {
			return nil
		}
		for _, ctor := range cls.Constructors {
			out = append(out, ctor)
		}
	}
	return out
}

func arguments(call ast.Expression) []ast.Expression {
	var args *ast.ArgumentListExpression
	switch c := call.(type) {
	case *ast.MethodCallExpression:
		args = c.Arguments
	case *ast.ConstructorCallExpression:
		args = c.Arguments
	}
	if args == nil {
		return nil
	}
	return args.Args
}

// MethodFor selects the overload a call invokes. argIndex names the argument
// being typed (signature help) and -1 otherwise; positions up to it count
// even when no argument is written there yet. Ties go to the first
// candidate.
func (r *Resolver) MethodFor(call ast.Expression, argIndex int) ast.Member {
	return r.methodFor(call, argIndex, 0)
}

func (r *Resolver) methodFor(call ast.Expression, argIndex, depth int) ast.Member {
	if depth > maxTypeDepth {
		return nil
	}
	candidates := r.overloads(call, depth)
	if len(candidates) == 0 {
		return nil
	}
	args := arguments(call)
	argTypes := make([]*ast.ClassNode, len(args))
	for i, a := range args {
		argTypes[i] = r.typeOf(a, depth)
	}
	var best ast.Member
	bestScore := -1
	for _, m := range candidates {
		if s := r.score(m.Params(), argTypes, argIndex); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best
}

func (r *Resolver) score(params []*ast.Parameter, args []*ast.ClassNode, argIndex int) int {
	score := 0
	argsCount := len(args)
	if argIndex >= argsCount {
		argsCount = argIndex + 1
	}
	n := min(len(params), argsCount)
	if n == 0 && len(params) == argsCount {
		score++
	}
	for i := 0; i < n; i++ {
		var arg *ast.ClassNode
		if i < len(args) {
			arg = args[i]
		}
		param := r.refType(params[i].Type)
		switch {
		case arg == nil || param == nil:
			// A position with a parameter but no argument counts like a
			// mismatch.
			if param != nil {
				score += scoreMismatch
			}
		case arg.FullName() == param.FullName():
			score += scoreEqual
		case r.table.IsSubtype(arg, param):
			score += scoreSubtype
		default:
			score += scoreMismatch
		}
	}
	return score
}
