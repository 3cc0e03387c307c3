package main

import "github.com/jward/groovyls"

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLILocation is a range in a workspace file.
type CLILocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// CLISymbol is a JSON-friendly symbol. Document symbols are flattened;
// Depth records how deep the symbol was nested.
type CLISymbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	Container string `json:"container,omitempty"`
	Depth     int    `json:"depth,omitempty"`
	File      string `json:"file,omitempty"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// CLIHover is the hover text at a position.
type CLIHover struct {
	Contents string       `json:"contents"`
	Range    *CLILocation `json:"range,omitempty"`
}

var symbolKindNames = map[groovyls.SymbolKind]string{
	groovyls.SymbolKindClass:       "class",
	groovyls.SymbolKindMethod:      "method",
	groovyls.SymbolKindProperty:    "property",
	groovyls.SymbolKindField:       "field",
	groovyls.SymbolKindConstructor: "constructor",
	groovyls.SymbolKindEnum:        "enum",
	groovyls.SymbolKindInterface:   "interface",
	groovyls.SymbolKindVariable:    "variable",
}

func kindName(k groovyls.SymbolKind) string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// CLIDiagnostic is one compiler message.
type CLIDiagnostic struct {
	CLILocation
	Severity string `json:"severity"`
	Message  string `json:"message"`
}
