// Package groovyls provides the intelligence of a Groovy language server:
// compilation of a workspace into a navigable AST, diagnostics, and the
// position-based queries an editor asks for.
//
// # Pipeline
//
// A [Session] owns one workspace. Every document notification and query
// brings the analysis up to date first:
//
//  1. Compile: the changed sources, and the sources whose resolution they can
//     affect, are parsed and analyzed against the classpath. The other units
//     are reused from the previous generation.
//
//  2. Index: the new ASTs are indexed by position and parent, and their
//     declarations are written to the SQLite symbol store used by workspace
//     symbol search.
//
// A compile that fails keeps the previous generation and is logged, so queries
// keep working while a file is broken.
//
// # Usage
//
// Create a Session for a workspace folder, feed it document events, and query:
//
//	s, err := groovyls.New(groovyls.WithRoot("path/to/project"))
//	if err != nil { ... }
//	defer s.Close()
//
//	ctx := context.Background()
//	diags, err := s.OpenDocument(ctx, uri, text)
//	locs, err := s.Definition(ctx, uri, groovyls.Position{Line: 10, Character: 5})
//
// Editors run the groovyls command instead: "groovyls serve" speaks LSP on
// stdio, and "groovyls index" / "groovyls query" answer the same queries from
// the shell.
//
// # Queries
//
// Positions and ranges are 0-based with UTF-16 columns, as in LSP.
//
//   - [Session.Hover]: signature and groovydoc of the referenced declaration.
//   - [Session.Definition] and [Session.TypeDefinition]: where a name, or the
//     class of its value, is declared.
//   - [Session.References]: every use of a declaration.
//   - [Session.Rename]: a workspace edit renaming a declaration and its uses.
//   - [Session.DocumentSymbols] and [Session.WorkspaceSymbols]: outlines and
//     symbol search.
//   - [Session.SignatureHelp]: overloads of the call being typed.
//   - [Session.Completion]: members, scope names and import paths.
//
// # Configuration
//
// Settings come from .groovyls.yaml in the workspace root and from the
// client's workspace/didChangeConfiguration notifications; see
// [Session.ApplySettings]. A classpath change recompiles everything, as does a
// jar change observed by [Session.WatchClasspath].
package groovyls
