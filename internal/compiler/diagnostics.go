package compiler

import (
	"sort"

	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/ranges"
)

// Diagnostic is one compiler message in protocol coordinates.
type Diagnostic struct {
	Range    ranges.Range
	Severity frontend.Severity
	Message  string
}

// FileDiagnostics is the full diagnostic list of one file. An empty list
// clears what was published before.
type FileDiagnostics struct {
	URI         string
	Diagnostics []Diagnostic
}

func toDiagnostic(m frontend.Message) Diagnostic {
	r, ok := ranges.FromSpan(m.Span)
	if !ok {
		r = ranges.Range{}
	}
	return Diagnostic{Range: r, Severity: m.Severity, Message: m.Text}
}

// collectDiagnostics returns the diagnostics of every unit with messages,
// plus an empty list for each URI in published that is clean now. It also
// returns the new published set.
func collectDiagnostics(units map[string]*frontend.SourceUnit, published map[string]bool) ([]FileDiagnostics, map[string]bool) {
	next := make(map[string]bool)
	var out []FileDiagnostics
	for uri, u := range units {
		if len(u.Messages) == 0 {
			continue
		}
		diags := make([]Diagnostic, 0, len(u.Messages))
		for _, m := range u.Messages {
			diags = append(diags, toDiagnostic(m))
		}
		out = append(out, FileDiagnostics{URI: uri, Diagnostics: diags})
		next[uri] = true
	}
	for uri := range published {
		if !next[uri] {
			out = append(out, FileDiagnostics{URI: uri, Diagnostics: []Diagnostic{}})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, next
}
