package ast

// Kind tags a node with its variant.
type Kind int

const (
	KindInvalid Kind = iota

	// Declarations.
	KindModule
	KindImport
	KindClass
	KindConstructor
	KindMethod
	KindField
	KindProperty
	KindParameter

	// References.
	KindTypeRef

	// Statements.
	KindBlock
	KindExpressionStatement
	KindReturn
	KindIf
	KindFor
	KindWhile
	KindDoWhile
	KindTryCatch
	KindCatch
	KindThrow
	KindSwitch
	KindCase
	KindBreak
	KindContinue
	KindAssert

	// Expressions.
	KindVariable
	KindDeclaration
	KindConstant
	KindGString
	KindMethodCall
	KindConstructorCall
	KindPropertyAccess
	KindClassExpression
	KindBinary
	KindArgumentList
	KindClosure
	KindList
	KindMap
	KindMapEntry
	KindTernary
	KindUnary
	KindCast
	KindRange
	KindArray
)

var kindNames = map[Kind]string{
	KindModule:              "module",
	KindImport:              "import",
	KindClass:               "class",
	KindConstructor:         "constructor",
	KindMethod:              "method",
	KindField:               "field",
	KindProperty:            "property",
	KindParameter:           "parameter",
	KindTypeRef:             "type-ref",
	KindBlock:               "block",
	KindExpressionStatement: "expression-statement",
	KindReturn:              "return",
	KindIf:                  "if",
	KindFor:                 "for",
	KindWhile:               "while",
	KindDoWhile:             "do-while",
	KindTryCatch:            "try-catch",
	KindCatch:               "catch",
	KindThrow:               "throw",
	KindSwitch:              "switch",
	KindCase:                "case",
	KindBreak:               "break",
	KindContinue:            "continue",
	KindAssert:              "assert",
	KindVariable:            "variable",
	KindDeclaration:         "declaration",
	KindConstant:            "constant",
	KindGString:             "gstring",
	KindMethodCall:          "method-call",
	KindConstructorCall:     "constructor-call",
	KindPropertyAccess:      "property-access",
	KindClassExpression:     "class-expression",
	KindBinary:              "binary",
	KindArgumentList:        "argument-list",
	KindClosure:             "closure",
	KindList:                "list",
	KindMap:                 "map",
	KindMapEntry:            "map-entry",
	KindTernary:             "ternary",
	KindUnary:               "unary",
	KindCast:                "cast",
	KindRange:               "range",
	KindArray:               "array",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// IsStatement reports whether k is a statement kind.
func (k Kind) IsStatement() bool {
	return k >= KindBlock && k <= KindAssert
}

// IsExpression reports whether k is an expression kind.
func (k Kind) IsExpression() bool {
	return k >= KindVariable && k <= KindArray
}

func (*ModuleNode) Kind() Kind      { return KindModule }
func (*ImportNode) Kind() Kind      { return KindImport }
func (*ClassNode) Kind() Kind       { return KindClass }
func (*ConstructorNode) Kind() Kind { return KindConstructor }
func (*MethodNode) Kind() Kind      { return KindMethod }
func (*FieldNode) Kind() Kind       { return KindField }
func (*PropertyNode) Kind() Kind    { return KindProperty }
func (*Parameter) Kind() Kind       { return KindParameter }
func (*TypeRef) Kind() Kind         { return KindTypeRef }

func (*BlockStatement) Kind() Kind      { return KindBlock }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*ReturnStatement) Kind() Kind     { return KindReturn }
func (*IfStatement) Kind() Kind         { return KindIf }
func (*ForStatement) Kind() Kind        { return KindFor }
func (*WhileStatement) Kind() Kind      { return KindWhile }
func (*DoWhileStatement) Kind() Kind    { return KindDoWhile }
func (*TryCatchStatement) Kind() Kind   { return KindTryCatch }
func (*CatchStatement) Kind() Kind      { return KindCatch }
func (*ThrowStatement) Kind() Kind      { return KindThrow }
func (*SwitchStatement) Kind() Kind     { return KindSwitch }
func (*CaseStatement) Kind() Kind       { return KindCase }
func (*BreakStatement) Kind() Kind      { return KindBreak }
func (*ContinueStatement) Kind() Kind   { return KindContinue }
func (*AssertStatement) Kind() Kind     { return KindAssert }

func (*VariableExpression) Kind() Kind        { return KindVariable }
func (*DeclarationExpression) Kind() Kind     { return KindDeclaration }
func (*ConstantExpression) Kind() Kind        { return KindConstant }
func (*GStringExpression) Kind() Kind         { return KindGString }
func (*MethodCallExpression) Kind() Kind      { return KindMethodCall }
func (*ConstructorCallExpression) Kind() Kind { return KindConstructorCall }
func (*PropertyExpression) Kind() Kind        { return KindPropertyAccess }
func (*ClassExpression) Kind() Kind           { return KindClassExpression }
func (*BinaryExpression) Kind() Kind          { return KindBinary }
func (*ArgumentListExpression) Kind() Kind    { return KindArgumentList }
func (*ClosureExpression) Kind() Kind         { return KindClosure }
func (*ListExpression) Kind() Kind            { return KindList }
func (*MapExpression) Kind() Kind             { return KindMap }
func (*MapEntryExpression) Kind() Kind        { return KindMapEntry }
func (*TernaryExpression) Kind() Kind         { return KindTernary }
func (*UnaryExpression) Kind() Kind           { return KindUnary }
func (*CastExpression) Kind() Kind            { return KindCast }
func (*RangeExpression) Kind() Kind           { return KindRange }
func (*ArrayExpression) Kind() Kind           { return KindArray }

func (*ModuleNode) node()      {}
func (*ImportNode) node()      {}
func (*ClassNode) node()       {}
func (*ConstructorNode) node() {}
func (*MethodNode) node()      {}
func (*FieldNode) node()       {}
func (*PropertyNode) node()    {}
func (*Parameter) node()       {}
func (*TypeRef) node()         {}

func (*BlockStatement) node()      {}
func (*ExpressionStatement) node() {}
func (*ReturnStatement) node()     {}
func (*IfStatement) node()         {}
func (*ForStatement) node()        {}
func (*WhileStatement) node()      {}
func (*DoWhileStatement) node()    {}
func (*TryCatchStatement) node()   {}
func (*CatchStatement) node()      {}
func (*ThrowStatement) node()      {}
func (*SwitchStatement) node()     {}
func (*CaseStatement) node()       {}
func (*BreakStatement) node()      {}
func (*ContinueStatement) node()   {}
func (*AssertStatement) node()     {}

func (*BlockStatement) stmt()      {}
func (*ExpressionStatement) stmt() {}
func (*ReturnStatement) stmt()     {}
func (*IfStatement) stmt()         {}
func (*ForStatement) stmt()        {}
func (*WhileStatement) stmt()      {}
func (*DoWhileStatement) stmt()    {}
func (*TryCatchStatement) stmt()   {}
func (*CatchStatement) stmt()      {}
func (*ThrowStatement) stmt()      {}
func (*SwitchStatement) stmt()     {}
func (*CaseStatement) stmt()       {}
func (*BreakStatement) stmt()      {}
func (*ContinueStatement) stmt()   {}
func (*AssertStatement) stmt()     {}

func (*VariableExpression) node()        {}
func (*DeclarationExpression) node()     {}
func (*ConstantExpression) node()        {}
func (*GStringExpression) node()         {}
func (*MethodCallExpression) node()      {}
func (*ConstructorCallExpression) node() {}
func (*PropertyExpression) node()        {}
func (*ClassExpression) node()           {}
func (*BinaryExpression) node()          {}
func (*ArgumentListExpression) node()    {}
func (*ClosureExpression) node()         {}
func (*ListExpression) node()            {}
func (*MapExpression) node()             {}
func (*MapEntryExpression) node()        {}
func (*TernaryExpression) node()         {}
func (*UnaryExpression) node()           {}
func (*CastExpression) node()            {}
func (*RangeExpression) node()           {}
func (*ArrayExpression) node()           {}

func (*VariableExpression) expr()        {}
func (*DeclarationExpression) expr()     {}
func (*ConstantExpression) expr()        {}
func (*GStringExpression) expr()         {}
func (*MethodCallExpression) expr()      {}
func (*ConstructorCallExpression) expr() {}
func (*PropertyExpression) expr()        {}
func (*ClassExpression) expr()           {}
func (*BinaryExpression) expr()          {}
func (*ArgumentListExpression) expr()    {}
func (*ClosureExpression) expr()         {}
func (*ListExpression) expr()            {}
func (*MapExpression) expr()             {}
func (*MapEntryExpression) expr()        {}
func (*TernaryExpression) expr()         {}
func (*UnaryExpression) expr()           {}
func (*CastExpression) expr()            {}
func (*RangeExpression) expr()           {}
func (*ArrayExpression) expr()           {}
