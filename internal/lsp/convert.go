package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jward/groovyls"
)

// diagnosticSource labels every published diagnostic.
const diagnosticSource = "groovy"

func fromPosition(p protocol.Position) groovyls.Position {
	return groovyls.Position{Line: int(p.Line), Character: int(p.Character)}
}

func fromRange(r protocol.Range) groovyls.Range {
	return groovyls.Range{Start: fromPosition(r.Start), End: fromPosition(r.End)}
}

func toPosition(p groovyls.Position) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(max(p.Line, 0)), Character: protocol.UInteger(max(p.Character, 0))}
}

func toRange(r groovyls.Range) protocol.Range {
	return protocol.Range{Start: toPosition(r.Start), End: toPosition(r.End)}
}

func toLocation(l groovyls.Location) protocol.Location {
	return protocol.Location{URI: l.URI, Range: toRange(l.Range)}
}

func toLocations(locs []groovyls.Location) []protocol.Location {
	out := make([]protocol.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocation(l))
	}
	return out
}

func toPublishDiagnostics(fd groovyls.FileDiagnostics) *protocol.PublishDiagnosticsParams {
	source := diagnosticSource
	out := &protocol.PublishDiagnosticsParams{URI: fd.URI, Diagnostics: make([]protocol.Diagnostic, 0, len(fd.Diagnostics))}
	for _, d := range fd.Diagnostics {
		severity := protocol.DiagnosticSeverity(d.Severity)
		out.Diagnostics = append(out.Diagnostics, protocol.Diagnostic{
			Range:    toRange(d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func toHover(h *groovyls.Hover) *protocol.Hover {
	if h == nil {
		return nil
	}
	out := &protocol.Hover{Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: h.Contents}}
	if h.Range != nil {
		r := toRange(*h.Range)
		out.Range = &r
	}
	return out
}

func toDocumentSymbols(syms []groovyls.DocumentSymbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(syms))
	for _, sym := range syms {
		ds := protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           protocol.SymbolKind(sym.Kind),
			Range:          toRange(sym.Range),
			SelectionRange: toRange(sym.SelectionRange),
		}
		if sym.Detail != "" {
			detail := sym.Detail
			ds.Detail = &detail
		}
		if len(sym.Children) > 0 {
			ds.Children = toDocumentSymbols(sym.Children)
		}
		out = append(out, ds)
	}
	return out
}

func toSymbolInformation(syms []groovyls.SymbolInformation) []protocol.SymbolInformation {
	out := make([]protocol.SymbolInformation, 0, len(syms))
	for _, sym := range syms {
		si := protocol.SymbolInformation{
			Name:     sym.Name,
			Kind:     protocol.SymbolKind(sym.Kind),
			Location: toLocation(sym.Location),
		}
		if sym.ContainerName != "" {
			container := sym.ContainerName
			si.ContainerName = &container
		}
		out = append(out, si)
	}
	return out
}

func toWorkspaceEdit(we *groovyls.WorkspaceEdit) *protocol.WorkspaceEdit {
	if we == nil {
		return nil
	}
	out := &protocol.WorkspaceEdit{DocumentChanges: make([]any, 0, len(we.DocumentChanges))}
	for _, ch := range we.DocumentChanges {
		switch {
		case ch.Edit != nil:
			edits := make([]any, 0, len(ch.Edit.Edits))
			for _, e := range ch.Edit.Edits {
				edits = append(edits, protocol.TextEdit{Range: toRange(e.Range), NewText: e.NewText})
			}
			doc := protocol.TextDocumentEdit{
				TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: ch.Edit.URI},
				},
				Edits: edits,
			}
			if ch.Edit.Version != nil {
				v := protocol.Integer(*ch.Edit.Version)
				doc.TextDocument.Version = &v
			}
			out.DocumentChanges = append(out.DocumentChanges, doc)
		case ch.Rename != nil:
			out.DocumentChanges = append(out.DocumentChanges, protocol.RenameFile{
				Kind:   "rename",
				OldURI: ch.Rename.OldURI,
				NewURI: ch.Rename.NewURI,
			})
		}
	}
	return out
}

func toSignatureHelp(h *groovyls.SignatureHelp) *protocol.SignatureHelp {
	out := &protocol.SignatureHelp{Signatures: make([]protocol.SignatureInformation, 0, len(h.Signatures))}
	for _, sig := range h.Signatures {
		info := protocol.SignatureInformation{
			Label:      sig.Label,
			Parameters: make([]protocol.ParameterInformation, 0, len(sig.Parameters)),
		}
		if sig.Documentation != "" {
			info.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: sig.Documentation}
		}
		for _, p := range sig.Parameters {
			pi := protocol.ParameterInformation{Label: p.Label}
			if p.Documentation != "" {
				pi.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: p.Documentation}
			}
			info.Parameters = append(info.Parameters, pi)
		}
		out.Signatures = append(out.Signatures, info)
	}
	if h.ActiveSignature >= 0 {
		out.ActiveSignature = ptr(protocol.UInteger(h.ActiveSignature))
	}
	if h.ActiveParameter >= 0 {
		out.ActiveParameter = ptr(protocol.UInteger(h.ActiveParameter))
	}
	return out
}

func toCompletionList(list *groovyls.CompletionList) *protocol.CompletionList {
	out := &protocol.CompletionList{IsIncomplete: list.IsIncomplete, Items: make([]protocol.CompletionItem, 0, len(list.Items))}
	for _, it := range list.Items {
		item := protocol.CompletionItem{
			Label: it.Label,
			Kind:  ptr(protocol.CompletionItemKind(it.Kind)),
		}
		if it.Detail != "" {
			item.Detail = ptr(it.Detail)
		}
		if it.Documentation != "" {
			item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: it.Documentation}
		}
		if it.InsertText != "" {
			item.InsertText = ptr(it.InsertText)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
