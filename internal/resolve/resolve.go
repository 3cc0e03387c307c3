// Package resolve answers definition, type and reference questions about the
// nodes of one analysis generation. It holds no symbol table of its own: every
// answer is computed from the node index and the class table.
package resolve

import (
	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/index"
)

const (
	objectClass  = "java.lang.Object"
	maxTypeDepth = 32
)

// Resolver resolves nodes against one index and class table.
type Resolver struct {
	ix    *index.Index
	table *frontend.ClassTable
}

// New returns a resolver over ix and table.
func New(ix *index.Index, table *frontend.ClassTable) *Resolver {
	return &Resolver{ix: ix, table: table}
}

// Index returns the node index the resolver reads.
func (r *Resolver) Index() *index.Index { return r.ix }

// Table returns the class table the resolver reads.
func (r *Resolver) Table() *frontend.ClassTable { return r.table }

// nodeOf converts a possibly nil concrete pointer into a Node, so that callers
// never see a non-nil interface holding a nil pointer.
func nodeOf[T any, P interface {
	*T
	ast.Node
}](p P) ast.Node {
	if p == nil {
		return nil
	}
	return p
}

// canonical returns the indexed class named fqn. Unless strict, a class known
// only to the class table (external or unindexed) is accepted.
func (r *Resolver) canonical(fqn string, strict bool) *ast.ClassNode {
	if fqn == "" {
		return nil
	}
	if cls := r.ix.ClassByName(fqn); cls != nil {
		return cls
	}
	if strict {
		return nil
	}
	return r.table.Lookup(fqn)
}

// Definition returns the declaration n refers to, or nil. In strict mode a
// class must be indexed to count as a definition.
func (r *Resolver) Definition(n ast.Node, strict bool) ast.Node {
	if n == nil {
		return nil
	}
	parent := r.ix.ParentOf(n)
	if s, ok := n.(*ast.ExpressionStatement); ok {
		if s.Expr == nil {
			return nil
		}
		n = s.Expr
	}
	switch n := n.(type) {
	case *ast.ClassNode:
		if cls := r.ix.ClassByName(n.FullName()); cls != nil {
			return cls
		}
		if strict {
			return nil
		}
		return n
	case *ast.TypeRef:
		return nodeOf(r.canonical(n.Resolved, strict))
	case *ast.ConstructorCallExpression:
		if m := r.MethodFor(n, -1); m != nil {
			return m
		}
		if n.Type == nil {
			return nil
		}
		return nodeOf(r.canonical(n.Type.Resolved, strict))
	case *ast.DeclarationExpression:
		if n.Variable == nil {
			return nil
		}
		if n.Variable.Type == nil {
			return nodeOf(r.canonical(objectClass, strict))
		}
		return nodeOf(r.canonical(n.Variable.Type.Resolved, strict))
	case *ast.ClassExpression:
		return nodeOf(r.canonical(n.Type.Resolved, strict))
	case *ast.ImportNode:
		if n.Type == nil {
			return nil
		}
		return nodeOf(r.canonical(n.Type.Resolved, strict))
	case *ast.MethodNode, *ast.ConstructorNode, *ast.FieldNode, *ast.PropertyNode, *ast.Parameter:
		return n
	case *ast.ConstantExpression:
		switch p := parent.(type) {
		case *ast.MethodCallExpression:
			if p.Method == n {
				return r.MethodFor(p, -1)
			}
		case *ast.PropertyExpression:
			if p.Property == n {
				if prop := r.PropertyOf(p); prop != nil {
					return prop
				}
				return nodeOf(r.FieldOf(p))
			}
		}
		return nil
	case *ast.VariableExpression:
		if v := r.variable(n); v != nil {
			return v
		}
		return nil
	case *ast.ModuleNode, *ast.BlockStatement, *ast.ExpressionStatement, *ast.ReturnStatement,
		*ast.IfStatement, *ast.ForStatement, *ast.WhileStatement, *ast.DoWhileStatement,
		*ast.TryCatchStatement, *ast.CatchStatement, *ast.ThrowStatement, *ast.SwitchStatement,
		*ast.CaseStatement, *ast.BreakStatement, *ast.ContinueStatement, *ast.AssertStatement,
		*ast.GStringExpression, *ast.MethodCallExpression, *ast.PropertyExpression,
		*ast.BinaryExpression, *ast.ArgumentListExpression, *ast.ClosureExpression,
		*ast.ListExpression, *ast.MapExpression, *ast.MapEntryExpression, *ast.TernaryExpression,
		*ast.UnaryExpression, *ast.CastExpression, *ast.RangeExpression, *ast.ArrayExpression:
		return nil
	}
	return nil
}

// variable returns the declaration a variable expression accesses. A name the
// front end could not link falls back to a property or field of the
// enclosing class hierarchy.
func (r *Resolver) variable(v *ast.VariableExpression) ast.Variable {
	if v.Accessed != nil {
		return v.Accessed
	}
	if v.IsThis() || v.IsSuper() {
		return nil
	}
	cls := r.ix.EnclosingClass(v)
	if cls == nil {
		return nil
	}
	if p := r.table.Property(cls, v.Name); p != nil {
		return p
	}
	if f := r.table.Field(cls, v.Name); f != nil {
		return f
	}
	return nil
}

// TypeDefinition returns the indexed class of the type of the declaration n
// refers to, or nil.
func (r *Resolver) TypeDefinition(n ast.Node) *ast.ClassNode {
	def := r.Definition(n, false)
	if def == nil {
		return nil
	}
	var cls *ast.ClassNode
	switch d := def.(type) {
	case *ast.MethodNode:
		cls = r.refType(d.ReturnType)
	case ast.Variable:
		cls = r.TypeOf(d)
	default:
		return nil
	}
	if cls == nil {
		return nil
	}
	for cls.Component != nil {
		cls = cls.Component
	}
	return r.canonical(cls.FullName(), true)
}

// PropertyOf returns the property a property expression selects on its
// receiver type.
func (r *Resolver) PropertyOf(pe *ast.PropertyExpression) *ast.PropertyNode {
	cls := r.TypeOf(pe.Object)
	if cls == nil {
		return nil
	}
	return r.table.Property(cls, pe.PropertyName())
}

// FieldOf returns the field a property expression selects on its receiver
// type.
func (r *Resolver) FieldOf(pe *ast.PropertyExpression) *ast.FieldNode {
	cls := r.TypeOf(pe.Object)
	if cls == nil {
		return nil
	}
	return r.table.Field(cls, pe.PropertyName())
}

// References returns every positioned indexed node whose definition is the
// definition of n. The declaring node is included.
func (r *Resolver) References(n ast.Node) []ast.Node {
	def := r.Definition(n, true)
	if def == nil {
		return nil
	}
	var out []ast.Node
	for _, other := range r.ix.AllNodes() {
		if !other.Pos().HasPosition() {
			continue
		}
		if r.Definition(other, false) == def {
			out = append(out, other)
		}
	}
	return out
}
