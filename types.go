package groovyls

import (
	"github.com/jward/groovyls/internal/compiler"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/store"
)

// Public aliases for the coordinate and diagnostic types of the internal
// packages. They are identical to the internal types, so no conversion is
// needed at the package boundary.

type Position = ranges.Position
type Range = ranges.Range
type Diagnostic = compiler.Diagnostic
type FileDiagnostics = compiler.FileDiagnostics

// Location is a range inside a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// SymbolKind uses the protocol's numbering.
type SymbolKind int

const (
	SymbolKindClass       SymbolKind = 5
	SymbolKindMethod      SymbolKind = 6
	SymbolKindProperty    SymbolKind = 7
	SymbolKindField       SymbolKind = 8
	SymbolKindConstructor SymbolKind = 9
	SymbolKindEnum        SymbolKind = 10
	SymbolKindInterface   SymbolKind = 11
	SymbolKindVariable    SymbolKind = 13
)

// CompletionItemKind uses the protocol's numbering.
type CompletionItemKind int

const (
	CompletionKindMethod      CompletionItemKind = 2
	CompletionKindConstructor CompletionItemKind = 4
	CompletionKindField       CompletionItemKind = 5
	CompletionKindVariable    CompletionItemKind = 6
	CompletionKindClass       CompletionItemKind = 7
	CompletionKindInterface   CompletionItemKind = 8
	CompletionKindProperty    CompletionItemKind = 10
	CompletionKindEnum        CompletionItemKind = 13
)

// Hover is the markdown shown for the symbol under the cursor.
type Hover struct {
	Contents string `json:"contents"`
	Range    *Range `json:"range,omitempty"`
}

// DocumentSymbol is one declaration of a document outline. Children holds
// the members of a class.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolInformation is a workspace symbol search hit.
type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Location      Location   `json:"location"`
	ContainerName string     `json:"containerName,omitempty"`
}

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// TextDocumentEdit groups the edits of one document. Version is nil when
// the edit applies to whatever version the client has.
type TextDocumentEdit struct {
	URI     string     `json:"uri"`
	Version *int       `json:"version"`
	Edits   []TextEdit `json:"edits"`
}

// RenameFile moves OldURI to NewURI.
type RenameFile struct {
	OldURI string `json:"oldUri"`
	NewURI string `json:"newUri"`
}

// DocumentChange is either a text document edit or a file rename.
type DocumentChange struct {
	Edit   *TextDocumentEdit `json:"edit,omitempty"`
	Rename *RenameFile       `json:"rename,omitempty"`
}

// WorkspaceEdit is the result of a rename: text edits first, then file
// renames.
type WorkspaceEdit struct {
	DocumentChanges []DocumentChange `json:"documentChanges"`
}

// ParameterInformation labels one parameter of a signature.
type ParameterInformation struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

// SignatureInformation describes one overload.
type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation string                 `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters"`
}

// SignatureHelp lists the overloads of the call around the cursor. The
// active indexes are -1 when nothing is selected.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// CompletionItem is one completion proposal.
type CompletionItem struct {
	Label         string             `json:"label"`
	Kind          CompletionItemKind `json:"kind"`
	Detail        string             `json:"detail,omitempty"`
	Documentation string             `json:"documentation,omitempty"`
	InsertText    string             `json:"insertText,omitempty"`
}

// CompletionList is the result of a completion request. IsIncomplete is set
// when the list was cut at the configured maximum.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// Store is the SQLite symbol store a Session writes declarations to.
type Store = store.Store
