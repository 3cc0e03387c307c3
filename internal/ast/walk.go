package ast

import "fmt"

type nodePtr[T any] interface {
	*T
	Node
}

func addPtr[T any, P nodePtr[T]](out []Node, p P) []Node {
	if p == nil {
		return out
	}
	return append(out, p)
}

func addAll[T any, P nodePtr[T]](out []Node, ps []P) []Node {
	for _, p := range ps {
		out = addPtr(out, p)
	}
	return out
}

func addExpr(out []Node, e Expression) []Node {
	if e == nil {
		return out
	}
	return append(out, e)
}

func addExprs(out []Node, es []Expression) []Node {
	for _, e := range es {
		out = addExpr(out, e)
	}
	return out
}

func addStmt(out []Node, s Statement) []Node {
	if s == nil {
		return out
	}
	return append(out, s)
}

// Children returns the direct children of n in source order. It panics on a
// node type it does not know, which keeps the switch exhaustive as the node
// set grows.
func Children(n Node) []Node {
	var out []Node
	switch n := n.(type) {
	case *ModuleNode:
		out = addAll(out, n.Imports)
		out = addAll(out, n.Classes)
	case *ImportNode:
	case *ClassNode:
		out = addPtr(out, n.SuperClass)
		out = addAll(out, n.Interfaces)
		out = addAll(out, n.Properties)
		out = addAll(out, n.Fields)
		out = addAll(out, n.Constructors)
		out = addAll(out, n.Initializers)
		out = addAll(out, n.Methods)
		out = addAll(out, n.Inner)
	case *ConstructorNode:
		out = addAll(out, n.Parameters)
		out = addPtr(out, n.Code)
	case *MethodNode:
		out = addPtr(out, n.ReturnType)
		out = addAll(out, n.Parameters)
		out = addPtr(out, n.Code)
	case *FieldNode:
		out = addPtr(out, n.Type)
		out = addExpr(out, n.Initial)
	case *PropertyNode:
		out = addPtr(out, n.Type)
		out = addExpr(out, n.Initial)
	case *Parameter:
		out = addPtr(out, n.Type)
		out = addExpr(out, n.Default)
	case *TypeRef:
		out = addAll(out, n.Args)

	case *BlockStatement:
		for _, s := range n.Statements {
			out = addStmt(out, s)
		}
	case *ExpressionStatement:
		out = addExpr(out, n.Expr)
	case *ReturnStatement:
		out = addExpr(out, n.Expr)
	case *IfStatement:
		out = addExpr(out, n.Cond)
		out = addStmt(out, n.Then)
		out = addStmt(out, n.Else)
	case *ForStatement:
		out = addPtr(out, n.Var)
		out = addExpr(out, n.Collection)
		out = addExprs(out, n.Init)
		out = addExpr(out, n.Cond)
		out = addExprs(out, n.Update)
		out = addStmt(out, n.Body)
	case *WhileStatement:
		out = addExpr(out, n.Cond)
		out = addStmt(out, n.Body)
	case *DoWhileStatement:
		out = addStmt(out, n.Body)
		out = addExpr(out, n.Cond)
	case *TryCatchStatement:
		out = addAll(out, n.Resources)
		out = addPtr(out, n.Try)
		out = addAll(out, n.Catches)
		out = addPtr(out, n.Finally)
	case *CatchStatement:
		out = addPtr(out, n.Param)
		out = addAll(out, n.Alternatives)
		out = addPtr(out, n.Code)
	case *ThrowStatement:
		out = addExpr(out, n.Expr)
	case *SwitchStatement:
		out = addExpr(out, n.Expr)
		out = addAll(out, n.Cases)
		out = addPtr(out, n.Default)
	case *CaseStatement:
		out = addExpr(out, n.Expr)
		out = addPtr(out, n.Code)
	case *BreakStatement, *ContinueStatement:
	case *AssertStatement:
		out = addExpr(out, n.Cond)
		out = addExpr(out, n.Message)

	case *VariableExpression:
		// Only a declaring occurrence owns its type reference.
		if n.Accessed == nil || n.Accessed == Variable(n) {
			out = addPtr(out, n.Type)
		}
	case *DeclarationExpression:
		out = addPtr(out, n.Variable)
		out = addExpr(out, n.Init)
	case *ConstantExpression:
	case *GStringExpression:
		out = addExprs(out, n.Values)
	case *MethodCallExpression:
		out = addExpr(out, n.Object)
		out = addPtr(out, n.Method)
		out = addPtr(out, n.Arguments)
	case *ConstructorCallExpression:
		out = addPtr(out, n.Type)
		out = addPtr(out, n.Arguments)
	case *PropertyExpression:
		out = addExpr(out, n.Object)
		out = addPtr(out, n.Property)
	case *ClassExpression:
		// The class expression is itself the reference; its TypeRef shares
		// the range and is not a separate child.
	case *BinaryExpression:
		out = addExpr(out, n.Left)
		out = addExpr(out, n.Right)
	case *ArgumentListExpression:
		out = addExprs(out, n.Args)
	case *ClosureExpression:
		out = addAll(out, n.Parameters)
		out = addPtr(out, n.Code)
	case *ListExpression:
		out = addExprs(out, n.Elements)
	case *MapExpression:
		out = addAll(out, n.Entries)
	case *MapEntryExpression:
		out = addExpr(out, n.Key)
		out = addExpr(out, n.Value)
	case *TernaryExpression:
		out = addExpr(out, n.Cond)
		out = addExpr(out, n.Then)
		out = addExpr(out, n.Else)
	case *UnaryExpression:
		out = addExpr(out, n.Operand)
	case *CastExpression:
		out = addPtr(out, n.Type)
		out = addExpr(out, n.Expr)
	case *RangeExpression:
		out = addExpr(out, n.From)
		out = addExpr(out, n.To)
	case *ArrayExpression:
		out = addPtr(out, n.Element)
		out = addExprs(out, n.Sizes)
		out = addExprs(out, n.Init)
	default:
		panic(fmt.Sprintf("ast: Children: unknown node %T", n))
	}
	return out
}

// Walk calls fn for n and its descendants in depth-first source order, with
// the parent of each node (nil for n itself). fn returning false prunes the
// subtree.
func Walk(n Node, fn func(n, parent Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent Node, fn func(n, parent Node) bool) {
	if !fn(n, parent) {
		return
	}
	for _, c := range Children(n) {
		walk(c, n, fn)
	}
}
