package ast

// VariableExpression names a variable. A declaring occurrence accesses
// itself; a reference accesses its declaration, or nothing when the name
// could not be linked within the file.
type VariableExpression struct {
	Span
	Name     string
	Type     *TypeRef
	Accessed Variable
}

func (v *VariableExpression) VariableName() string   { return v.Name }
func (v *VariableExpression) DeclaredType() *TypeRef { return v.Type }

// IsThis reports whether the expression is the implicit receiver.
func (v *VariableExpression) IsThis() bool { return v.Name == "this" }

// IsSuper reports whether the expression names the superclass receiver.
func (v *VariableExpression) IsSuper() bool { return v.Name == "super" }

// DeclarationExpression declares a local variable, e.g. `def x = 1`.
type DeclarationExpression struct {
	Span
	Variable  *VariableExpression
	Init      Expression
	Modifiers Modifiers
}

// ConstantExpression is a literal or an identifier-like name used as a
// method or property selector.
type ConstantExpression struct {
	Span
	Value any
	// Text is the literal as written, or the selector name.
	Text string
	// LiteralType names the class of the literal ("java.lang.String",
	// "int", ...), empty for selector names.
	LiteralType string
}

// GStringExpression is an interpolated string.
type GStringExpression struct {
	Span
	Strings []string
	Values  []Expression
}

// MethodCallExpression invokes a method on Object, or on the implicit
// receiver when ImplicitThis is set.
type MethodCallExpression struct {
	Span
	Object       Expression
	Method       *ConstantExpression
	Arguments    *ArgumentListExpression
	Safe         bool
	Spread       bool
	ImplicitThis bool
}

// MethodName returns the selector text.
func (m *MethodCallExpression) MethodName() string {
	if m.Method == nil {
		return ""
	}
	return m.Method.Text
}

// ConstructorCallExpression is `new T(args)`.
type ConstructorCallExpression struct {
	Span
	Type      *TypeRef
	Arguments *ArgumentListExpression
	// Super and This mark explicit constructor delegation calls.
	Super bool
	This  bool
}

// PropertyExpression is `object.property`.
type PropertyExpression struct {
	Span
	Object   Expression
	Property *ConstantExpression
	Safe     bool
	Spread   bool
}

// PropertyName returns the selector text.
func (p *PropertyExpression) PropertyName() string {
	if p.Property == nil {
		return ""
	}
	return p.Property.Text
}

// ClassExpression is a class used as a value, e.g. the receiver of a static
// call.
type ClassExpression struct {
	Span
	Type *TypeRef
}

// BinaryExpression covers arithmetic, comparison, assignment and indexing.
// Op is "[" for `left[right]`.
type BinaryExpression struct {
	Span
	Left  Expression
	Right Expression
	Op    string
}

// IsIndex reports whether the expression is a subscript.
func (b *BinaryExpression) IsIndex() bool { return b.Op == "[" }

// ArgumentListExpression is the argument list of a call. Its span covers
// the parentheses when present.
type ArgumentListExpression struct {
	Span
	Args []Expression
}

// ClosureExpression is `{ params -> code }`.
type ClosureExpression struct {
	Span
	Parameters []*Parameter
	Code       *BlockStatement
	// ImplicitIt is the positionless `it` parameter of a closure that declares
	// no parameters.
	ImplicitIt *Parameter
}

type ListExpression struct {
	Span
	Elements []Expression
}

type MapExpression struct {
	Span
	Entries []*MapEntryExpression
}

type MapEntryExpression struct {
	Span
	Key   Expression
	Value Expression
}

// TernaryExpression is `c ? a : b`, or `a ?: b` when Elvis is set (Then is
// nil in that case).
type TernaryExpression struct {
	Span
	Cond  Expression
	Then  Expression
	Else  Expression
	Elvis bool
}

type UnaryExpression struct {
	Span
	Op      string
	Operand Expression
	Postfix bool
}

// CastExpression is `(T) e` or `e as T`.
type CastExpression struct {
	Span
	Type   *TypeRef
	Expr   Expression
	Coerce bool
}

type RangeExpression struct {
	Span
	From      Expression
	To        Expression
	Exclusive bool
}

// ArrayExpression is `new T[n]` or `new T[] { ... }`.
type ArrayExpression struct {
	Span
	Element *TypeRef
	Sizes   []Expression
	Init    []Expression
}
