package resolve

import (
	"github.com/jward/groovyls/internal/ast"
)

// Members lists the members visible on a receiver, own members first.
type Members struct {
	Properties []*ast.PropertyNode
	Fields     []*ast.FieldNode
	Methods    []*ast.MethodNode
}

// MembersOf returns the members that may follow `receiver.`. A class
// receiver offers its static members, any other receiver its instance
// members.
func (r *Resolver) MembersOf(receiver ast.Expression) Members {
	cls := r.TypeOf(receiver)
	if cls == nil {
		return Members{}
	}
	_, statics := receiver.(*ast.ClassExpression)
	var m Members
	for _, p := range r.table.AllProperties(cls) {
		if p.IsStatic() == statics {
			m.Properties = append(m.Properties, p)
		}
	}
	for _, f := range r.table.AllFields(cls) {
		if f.IsStatic() == statics {
			m.Fields = append(m.Fields, f)
		}
	}
	for _, meth := range r.table.AllMethods(cls) {
		if meth.IsStatic() == statics {
			m.Methods = append(m.Methods, meth)
		}
	}
	return m
}

// ClassMembers returns every member visible inside cls, static or not.
func (r *Resolver) ClassMembers(cls *ast.ClassNode) Members {
	if cls == nil {
		return Members{}
	}
	return Members{
		Properties: r.table.AllProperties(cls),
		Fields:     r.table.AllFields(cls),
		Methods:    r.table.AllMethods(cls),
	}
}

// ScopeVariables returns the local variables and parameters visible at n,
// innermost scope first. The walk stops at the enclosing method or
// constructor.
func (r *Resolver) ScopeVariables(n ast.Node) []ast.Variable {
	var out []ast.Variable
	for cur := n; cur != nil; cur = r.ix.ParentOf(cur) {
		switch c := cur.(type) {
		case *ast.BlockStatement:
			for _, s := range c.Statements {
				es, ok := s.(*ast.ExpressionStatement)
				if !ok {
					continue
				}
				if decl, ok := es.Expr.(*ast.DeclarationExpression); ok && decl.Variable != nil {
					out = append(out, decl.Variable)
				}
			}
		case *ast.ClosureExpression:
			for _, p := range c.Parameters {
				out = append(out, p)
			}
			if c.ImplicitIt != nil {
				out = append(out, c.ImplicitIt)
			}
		case *ast.ForStatement:
			if c.Var != nil {
				out = append(out, c.Var)
			}
		case *ast.CatchStatement:
			if c.Param != nil {
				out = append(out, c.Param)
			}
		case *ast.MethodNode:
			for _, p := range c.Parameters {
				out = append(out, p)
			}
			return out
		case *ast.ConstructorNode:
			for _, p := range c.Parameters {
				out = append(out, p)
			}
			return out
		}
	}
	return out
}
