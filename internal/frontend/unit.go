// Package frontend turns Groovy and Java source text into positioned syntax
// trees and runs semantic analysis over a set of trees. It is driven in
// phases; callers stop at PhaseSemanticAnalysis.
package frontend

import (
	"errors"
	"fmt"

	"github.com/jward/groovyls/internal/ast"
)

// Phase is a compilation phase. Phases only move forward within one unit.
type Phase int

const (
	PhaseInitial Phase = iota
	PhaseParsing
	PhaseConversion
	PhaseSemanticAnalysis
	PhaseCanonicalization
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseParsing:
		return "parsing"
	case PhaseConversion:
		return "conversion"
	case PhaseSemanticAnalysis:
		return "semantic-analysis"
	case PhaseCanonicalization:
		return "canonicalization"
	}
	return "unknown"
}

// Severity of a compiler message.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

// Message is a diagnostic produced while compiling a unit.
type Message struct {
	Span     ast.Span
	Severity Severity
	Text     string
	// Fatal marks syntax errors; the tree around them is partial.
	Fatal bool
}

// ErrCompilationFailed is returned when at least one unit produced an error
// message. The trees are still usable.
var ErrCompilationFailed = errors.New("compilation failed")

// CompilationError carries the number of error messages of a failed compile.
type CompilationError struct {
	Count int
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%d error(s): %v", e.Count, ErrCompilationFailed)
}

func (e *CompilationError) Unwrap() error { return ErrCompilationFailed }

// SourceUnit is one file of the analysis graph.
type SourceUnit struct {
	URI      string
	Language string
	Text     string
	Module   *ast.ModuleNode
	Phase    Phase
	Messages []Message
}

// NewSourceUnit returns a unit that has not been parsed yet.
func NewSourceUnit(uri, language, text string) *SourceUnit {
	return &SourceUnit{URI: uri, Language: language, Text: text}
}

func (u *SourceUnit) advance(p Phase) {
	if p > u.Phase {
		u.Phase = p
	}
}

func (u *SourceUnit) addError(sp ast.Span, fatal bool, format string, args ...any) {
	u.Messages = append(u.Messages, Message{
		Span:     sp,
		Severity: SeverityError,
		Text:     fmt.Sprintf(format, args...),
		Fatal:    fatal,
	})
}

// ErrorCount returns the number of error-severity messages.
func (u *SourceUnit) ErrorCount() int {
	n := 0
	for _, m := range u.Messages {
		if m.Severity == SeverityError {
			n++
		}
	}
	return n
}
