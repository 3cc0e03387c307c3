package store

import "time"

// File is one indexed source file. Path holds the document URI.
type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LastIndexed time.Time
}

// Symbol kinds.
const (
	KindClass       = "class"
	KindInterface   = "interface"
	KindEnum        = "enum"
	KindTrait       = "trait"
	KindAnnotation  = "annotation"
	KindMethod      = "method"
	KindConstructor = "constructor"
	KindField       = "field"
	KindProperty    = "property"
)

// IsClassKind reports whether kind names a class-like declaration.
func IsClassKind(kind string) bool {
	switch kind {
	case KindClass, KindInterface, KindEnum, KindTrait, KindAnnotation:
		return true
	}
	return false
}

// Symbol is a declaration. Positions are 0-based LSP line/character pairs.
type Symbol struct {
	ID             int64
	FileID         *int64
	Name           string
	FQN            string
	Kind           string
	Visibility     string
	Modifiers      []string
	Detail         string
	SignatureHash  string
	StartLine      int
	StartCol       int
	EndLine        int
	EndCol         int
	ParentSymbolID *int64
}

// TypeReference records that a file mentions a class by simple name.
type TypeReference struct {
	ID     int64
	FileID int64
	Name   string
}

// TypeMember is the part of a member that contributes to its class's
// signature hash.
type TypeMember struct {
	Name       string
	Kind       string
	TypeExpr   string
	Visibility string
}

// SymbolMatch is a search hit joined with its file and container.
type SymbolMatch struct {
	Symbol
	Path string
	// Container is the qualified name of the enclosing symbol, if any.
	Container string
}
