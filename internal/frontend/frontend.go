package frontend

import (
	"context"

	"github.com/jward/groovyls/internal/ast"
)

// Parse runs the Parsing and Conversion phases on u. Units that are already
// converted are left untouched. Syntax errors become messages on u; the
// returned error reports failures of the parser itself.
func Parse(ctx context.Context, u *SourceUnit) error {
	if u.Phase >= PhaseConversion {
		return nil
	}
	if u.Language == LangJava {
		return parseJava(ctx, u)
	}
	parseGroovy(u)
	return nil
}

// Analyze runs SemanticAnalysis on a converted unit.
func Analyze(t *ClassTable, u *SourceUnit) {
	if u.Phase >= PhaseConversion && u.Phase < PhaseSemanticAnalysis {
		analyzeUnit(t, u)
	}
}

// Compile drives every unit to SemanticAnalysis and returns the class table
// built from them. When any unit carries error messages the returned error
// is a *CompilationError; the table and trees are still usable.
func Compile(ctx context.Context, ext *Externals, units []*SourceUnit) (*ClassTable, error) {
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := Parse(ctx, u); err != nil {
			return nil, err
		}
	}
	modules := make([]*ast.ModuleNode, 0, len(units))
	for _, u := range units {
		modules = append(modules, u.Module)
	}
	table := NewClassTable(ext, modules)
	for _, u := range units {
		Analyze(table, u)
	}
	return table, Failed(units)
}

// Failed returns a *CompilationError counting the error messages of units,
// or nil when there are none.
func Failed(units []*SourceUnit) error {
	n := 0
	for _, u := range units {
		n += u.ErrorCount()
	}
	if n == 0 {
		return nil
	}
	return &CompilationError{Count: n}
}
