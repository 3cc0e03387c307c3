package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jward/groovyls"
)

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	diags, err := sess.OpenDocument(s.ctx, params.TextDocument.URI, params.TextDocument.Text)
	if err != nil {
		return err
	}
	s.publish(ctx.Notify, diags)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	changes := make([]groovyls.TextChange, 0, len(params.ContentChanges))
	for _, raw := range params.ContentChanges {
		ch, err := toTextChange(raw)
		if err != nil {
			return err
		}
		changes = append(changes, ch)
	}
	diags, err := sess.ChangeDocument(s.ctx, params.TextDocument.URI, changes)
	if err != nil {
		return err
	}
	s.publish(ctx.Notify, diags)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	diags, err := sess.CloseDocument(s.ctx, params.TextDocument.URI)
	if err != nil {
		return err
	}
	s.publish(ctx.Notify, diags)
	return nil
}

// textDocumentDidSave has nothing to do: the editor's copy is already
// compiled, and the disk copy only matters once the document closes.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	return nil
}

func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	diags, err := sess.ApplySettings(s.ctx, params.Settings)
	if err != nil {
		return err
	}
	s.publish(ctx.Notify, diags)
	return nil
}

func (s *Server) workspaceDidChangeWatchedFiles(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	uris := make([]string, 0, len(params.Changes))
	for _, ev := range params.Changes {
		uris = append(uris, ev.URI)
	}
	diags, err := sess.WatchedFilesChanged(s.ctx, uris)
	if err != nil {
		return err
	}
	s.publish(ctx.Notify, diags)
	return nil
}

// toTextChange converts one element of contentChanges, which glsp decodes as
// either a ranged or a whole-document event.
func toTextChange(raw any) (groovyls.TextChange, error) {
	switch ev := raw.(type) {
	case protocol.TextDocumentContentChangeEvent:
		return rangedChange(ev), nil
	case *protocol.TextDocumentContentChangeEvent:
		return rangedChange(*ev), nil
	case protocol.TextDocumentContentChangeEventWhole:
		return groovyls.TextChange{Text: ev.Text}, nil
	case *protocol.TextDocumentContentChangeEventWhole:
		return groovyls.TextChange{Text: ev.Text}, nil
	}
	return groovyls.TextChange{}, fmt.Errorf("lsp: unexpected content change %T", raw)
}

func rangedChange(ev protocol.TextDocumentContentChangeEvent) groovyls.TextChange {
	ch := groovyls.TextChange{Text: ev.Text}
	if ev.Range != nil {
		r := fromRange(*ev.Range)
		ch.Range = &r
	}
	return ch
}
