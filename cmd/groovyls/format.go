package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// formatLocationsText formats CLILocation results as "file:line:col" lines.
func formatLocationsText(w io.Writer, locs []CLILocation) {
	for _, loc := range locs {
		fmt.Fprintf(w, "%s:%d:%d\n", loc.File, loc.StartLine, loc.StartCol)
	}
}

// formatSymbolsText formats CLISymbol results as aligned columns. Nested
// document symbols are indented by depth.
func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tCONTAINER\tFILE\tLINE")
	for _, s := range syms {
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%d\n",
			strings.Repeat("  ", s.Depth), s.Name, s.Kind, s.Container, s.File, s.StartLine)
	}
	tw.Flush()
}

// formatDiagnosticsText formats CLIDiagnostic results the way compilers
// print them: "file:line:col: severity: message".
func formatDiagnosticsText(w io.Writer, diags []CLIDiagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.File, d.StartLine, d.StartCol, d.Severity, d.Message)
	}
}

func formatHoverText(w io.Writer, h CLIHover) {
	fmt.Fprintln(w, h.Contents)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(result CLIResult) error {
	w := stdout

	switch v := result.Results.(type) {
	case []CLILocation:
		formatLocationsText(w, v)
	case []CLISymbol:
		formatSymbolsText(w, v)
	case []CLIDiagnostic:
		formatDiagnosticsText(w, v)
	case CLIHover:
		formatHoverText(w, v)
	case nil:
		// No output for nil results (e.g., hover over whitespace).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}

	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLILocation:
		return len(r)
	case []CLISymbol:
		return len(r)
	case []CLIDiagnostic:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
