package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	h, err := sess.Hover(s.ctx, params.TextDocument.URI, fromPosition(params.Position))
	if err != nil {
		return nil, err
	}
	return toHover(h), nil
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	locs, err := sess.Definition(s.ctx, params.TextDocument.URI, fromPosition(params.Position))
	if err != nil {
		return nil, err
	}
	return toLocations(locs), nil
}

func (s *Server) textDocumentTypeDefinition(ctx *glsp.Context, params *protocol.TypeDefinitionParams) (any, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	locs, err := sess.TypeDefinition(s.ctx, params.TextDocument.URI, fromPosition(params.Position))
	if err != nil {
		return nil, err
	}
	return toLocations(locs), nil
}

func (s *Server) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	locs, err := sess.References(s.ctx, params.TextDocument.URI, fromPosition(params.Position), params.Context.IncludeDeclaration)
	if err != nil {
		return nil, err
	}
	return toLocations(locs), nil
}

func (s *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	syms, err := sess.DocumentSymbols(s.ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return toDocumentSymbols(syms), nil
}

func (s *Server) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	syms, err := sess.WorkspaceSymbols(s.ctx, params.Query)
	if err != nil {
		return nil, err
	}
	return toSymbolInformation(syms), nil
}

func (s *Server) textDocumentRename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	we, err := sess.Rename(s.ctx, params.TextDocument.URI, fromPosition(params.Position), params.NewName)
	if err != nil {
		return nil, err
	}
	return toWorkspaceEdit(we), nil
}

func (s *Server) textDocumentSignatureHelp(ctx *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	h, err := sess.SignatureHelp(s.ctx, params.TextDocument.URI, fromPosition(params.Position))
	if err != nil {
		return nil, err
	}
	return toSignatureHelp(h), nil
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	list, err := sess.Completion(s.ctx, params.TextDocument.URI, fromPosition(params.Position))
	if err != nil {
		return nil, err
	}
	return toCompletionList(list), nil
}
