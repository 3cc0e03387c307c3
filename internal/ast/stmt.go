package ast

type BlockStatement struct {
	Span
	Statements []Statement
}

// ExpressionStatement wraps an expression evaluated for its effect.
type ExpressionStatement struct {
	Span
	Expr Expression
}

type ReturnStatement struct {
	Span
	Expr Expression
}

type IfStatement struct {
	Span
	Cond Expression
	Then Statement
	Else Statement
}

// ForStatement is either a for-in loop (Var and Collection set) or a classic
// three-clause loop (Init, Cond, Update).
type ForStatement struct {
	Span
	Var        *Parameter
	Collection Expression
	Init       []Expression
	Cond       Expression
	Update     []Expression
	Body       Statement
}

type WhileStatement struct {
	Span
	Cond Expression
	Body Statement
}

type DoWhileStatement struct {
	Span
	Body Statement
	Cond Expression
}

type TryCatchStatement struct {
	Span
	Resources []*DeclarationExpression
	Try       *BlockStatement
	Catches   []*CatchStatement
	Finally   *BlockStatement
}

type CatchStatement struct {
	Span
	Param *Parameter
	// Alternatives lists additional types of a multi-catch.
	Alternatives []*TypeRef
	Code         *BlockStatement
}

type ThrowStatement struct {
	Span
	Expr Expression
}

type SwitchStatement struct {
	Span
	Expr    Expression
	Cases   []*CaseStatement
	Default *BlockStatement
}

type CaseStatement struct {
	Span
	Expr Expression
	Code *BlockStatement
}

type BreakStatement struct {
	Span
	Label string
}

type ContinueStatement struct {
	Span
	Label string
}

type AssertStatement struct {
	Span
	Cond    Expression
	Message Expression
}
