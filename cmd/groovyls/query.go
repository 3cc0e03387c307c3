package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jward/groovyls"
	"github.com/jward/groovyls/internal/contents"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an indexed workspace",
	Long:  "Run editor queries against an indexed workspace. All line and column numbers are 0-based; columns count UTF-16 code units.",
}

var flagIncludeDeclaration bool

var definitionCmd = &cobra.Command{
	Use:   "definition <file> <line> <col>",
	Short: "Find where the symbol at a position is declared",
	Args:  cobra.ExactArgs(3),
	RunE:  positionQuery("definition", (*groovyls.Session).Definition),
}

var typeDefinitionCmd = &cobra.Command{
	Use:   "type-definition <file> <line> <col>",
	Short: "Find the class of the expression at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  positionQuery("type-definition", (*groovyls.Session).TypeDefinition),
}

var referencesCmd = &cobra.Command{
	Use:   "references <file> <line> <col>",
	Short: "Find every reference to the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE: positionQuery("references", func(s *groovyls.Session, ctx context.Context, uri string, pos groovyls.Position) ([]groovyls.Location, error) {
		return s.References(ctx, uri, pos, flagIncludeDeclaration)
	}),
}

var hoverCmd = &cobra.Command{
	Use:   "hover <file> <line> <col>",
	Short: "Show the declaration and documentation of the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runHover,
}

var documentSymbolsCmd = &cobra.Command{
	Use:   "document-symbols <file>",
	Short: "List the classes and members declared in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSymbols,
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols <query>",
	Short: "Search workspace symbols by case-insensitive substring",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSymbols,
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "List compiler errors and warnings of the workspace",
	Args:  cobra.NoArgs,
	RunE:  runDiagnostics,
}

func init() {
	referencesCmd.Flags().BoolVar(&flagIncludeDeclaration, "include-declaration", false, "include the declaration itself")

	queryCmd.AddCommand(definitionCmd)
	queryCmd.AddCommand(typeDefinitionCmd)
	queryCmd.AddCommand(referencesCmd)
	queryCmd.AddCommand(hoverCmd)
	queryCmd.AddCommand(documentSymbolsCmd)
	queryCmd.AddCommand(symbolsCmd)
	queryCmd.AddCommand(diagnosticsCmd)
}

type locationsFunc func(*groovyls.Session, context.Context, string, groovyls.Position) ([]groovyls.Location, error)

// positionQuery builds the RunE of a <file> <line> <col> command that
// answers with locations.
func positionQuery(command string, query locationsFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := ctxOf(cmd)
		sess, _, err := openSession(ctx)
		if err != nil {
			return outputError(command, err)
		}
		defer sess.Close()

		uri, pos, err := parsePosition(args)
		if err != nil {
			return outputError(command, err)
		}
		locs, err := query(sess, ctx, uri, pos)
		if err != nil {
			return outputError(command, err)
		}
		results := make([]CLILocation, 0, len(locs))
		for _, l := range locs {
			results = append(results, locationToCLI(l.URI, l.Range))
		}
		total := len(results)
		return outputResult(CLIResult{Command: command, Results: results, TotalCount: &total})
	}
}

func runHover(cmd *cobra.Command, args []string) error {
	ctx := ctxOf(cmd)
	sess, _, err := openSession(ctx)
	if err != nil {
		return outputError("hover", err)
	}
	defer sess.Close()

	uri, pos, err := parsePosition(args)
	if err != nil {
		return outputError("hover", err)
	}
	h, err := sess.Hover(ctx, uri, pos)
	if err != nil {
		return outputError("hover", err)
	}
	if h == nil {
		return outputResult(CLIResult{Command: "hover"})
	}
	out := CLIHover{Contents: h.Contents}
	if h.Range != nil {
		loc := locationToCLI(uri, *h.Range)
		out.Range = &loc
	}
	return outputResult(CLIResult{Command: "hover", Results: out})
}

func runDocumentSymbols(cmd *cobra.Command, args []string) error {
	ctx := ctxOf(cmd)
	sess, _, err := openSession(ctx)
	if err != nil {
		return outputError("document-symbols", err)
	}
	defer sess.Close()

	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("document-symbols", err)
	}
	uri := contents.URIFromPath(file)
	syms, err := sess.DocumentSymbols(ctx, uri)
	if err != nil {
		return outputError("document-symbols", err)
	}
	var results []CLISymbol
	var walk func(syms []groovyls.DocumentSymbol, container string, depth int)
	walk = func(syms []groovyls.DocumentSymbol, container string, depth int) {
		for _, sym := range syms {
			loc := locationToCLI(uri, sym.SelectionRange)
			results = append(results, CLISymbol{
				Name:      sym.Name,
				Kind:      kindName(sym.Kind),
				Detail:    sym.Detail,
				Container: container,
				Depth:     depth,
				File:      loc.File,
				StartLine: loc.StartLine,
				StartCol:  loc.StartCol,
				EndLine:   loc.EndLine,
				EndCol:    loc.EndCol,
			})
			walk(sym.Children, sym.Name, depth+1)
		}
	}
	walk(syms, "", 0)
	if results == nil {
		results = []CLISymbol{}
	}
	total := len(results)
	return outputResult(CLIResult{Command: "document-symbols", Results: results, TotalCount: &total})
}

func runSymbols(cmd *cobra.Command, args []string) error {
	ctx := ctxOf(cmd)
	sess, _, err := openSession(ctx)
	if err != nil {
		return outputError("symbols", err)
	}
	defer sess.Close()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	syms, err := sess.WorkspaceSymbols(ctx, query)
	if err != nil {
		return outputError("symbols", err)
	}
	results := make([]CLISymbol, 0, len(syms))
	for _, sym := range syms {
		loc := locationToCLI(sym.Location.URI, sym.Location.Range)
		results = append(results, CLISymbol{
			Name:      sym.Name,
			Kind:      kindName(sym.Kind),
			Container: sym.ContainerName,
			File:      loc.File,
			StartLine: loc.StartLine,
			StartCol:  loc.StartCol,
			EndLine:   loc.EndLine,
			EndCol:    loc.EndCol,
		})
	}
	total := len(results)
	return outputResult(CLIResult{Command: "symbols", Results: results, TotalCount: &total})
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	sess, res, err := openSession(ctxOf(cmd))
	if err != nil {
		return outputError("diagnostics", err)
	}
	defer sess.Close()
	results := []CLIDiagnostic{}
	for _, fd := range res.Diagnostics {
		for _, d := range fd.Diagnostics {
			severity := "warning"
			if d.Severity == frontend.SeverityError {
				severity = "error"
			}
			results = append(results, CLIDiagnostic{
				CLILocation: locationToCLI(fd.URI, d.Range),
				Severity:    severity,
				Message:     d.Message,
			})
		}
	}
	total := len(results)
	return outputResult(CLIResult{Command: "diagnostics", Results: results, TotalCount: &total})
}

// --- Helpers ---

// openSession opens the indexed workspace of the current directory and
// compiles it. The database must exist; sources changed since indexing are
// recompiled.
func openSession(ctx context.Context) (*groovyls.Session, *groovyls.CompileResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("database not found: %s (run 'groovyls index' first)", dbPath)
	}

	sess, err := newSession(repoRoot, dbPath)
	if err != nil {
		return nil, nil, err
	}
	res, err := sess.Compile(ctx)
	if err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("compiling: %w", err)
	}
	return sess, res, nil
}

// parsePosition converts <file> <line> <col> arguments to a document URI and
// position.
func parsePosition(args []string) (string, groovyls.Position, error) {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return "", groovyls.Position{}, err
	}
	line, err := parseIntArg(args[1], "line")
	if err != nil {
		return "", groovyls.Position{}, err
	}
	col, err := parseIntArg(args[2], "col")
	if err != nil {
		return "", groovyls.Position{}, err
	}
	return contents.URIFromPath(file), groovyls.Position{Line: line, Character: col}, nil
}

// resolveFilePath converts a file argument to an absolute path.
// If the path is already absolute, it's returned as-is.
// Otherwise, it's resolved relative to the current working directory.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// locationToCLI reports file URIs as local paths.
func locationToCLI(uri string, r groovyls.Range) CLILocation {
	file := uri
	if p, ok := contents.PathFromURI(uri); ok {
		file = p
	}
	return CLILocation{
		File:      file,
		StartLine: r.Start.Line,
		StartCol:  r.Start.Character,
		EndLine:   r.End.Line,
		EndCol:    r.End.Character,
	}
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
