// Package lsp serves a groovyls Session over the Language Server Protocol.
// It converts protocol_3_16 parameters to session calls and session results
// back to protocol types; all analysis lives in the groovyls package.
package lsp

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/jward/groovyls"
	"github.com/jward/groovyls/internal/contents"
)

// Name is the server name reported to clients.
const Name = "groovyls"

// ErrNotInitialized is returned by requests that arrive before initialize.
var ErrNotInitialized = errors.New("lsp: server not initialized")

// Server holds the session of the workspace the client opened.
type Server struct {
	mu      sync.Mutex
	version string
	opts    []groovyls.Option
	session *groovyls.Session
	notify  glsp.NotifyFunc
	ctx     context.Context
	cancel  context.CancelFunc
	handler protocol.Handler
}

// New creates a server. opts are applied to the session created on
// initialize, after the workspace root.
func New(version string, opts ...groovyls.Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{version: version, opts: opts, ctx: ctx, cancel: cancel}
	s.handler = protocol.Handler{
		Initialize:                      s.initialize,
		Initialized:                     s.initialized,
		Shutdown:                        s.shutdown,
		SetTrace:                        s.setTrace,
		TextDocumentDidOpen:             s.textDocumentDidOpen,
		TextDocumentDidChange:           s.textDocumentDidChange,
		TextDocumentDidClose:            s.textDocumentDidClose,
		TextDocumentDidSave:             s.textDocumentDidSave,
		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,
		WorkspaceDidChangeWatchedFiles:  s.workspaceDidChangeWatchedFiles,
		TextDocumentHover:               s.textDocumentHover,
		TextDocumentDefinition:          s.textDocumentDefinition,
		TextDocumentTypeDefinition:      s.textDocumentTypeDefinition,
		TextDocumentReferences:          s.textDocumentReferences,
		TextDocumentDocumentSymbol:      s.textDocumentDocumentSymbol,
		WorkspaceSymbol:                 s.workspaceSymbol,
		TextDocumentRename:              s.textDocumentRename,
		TextDocumentSignatureHelp:       s.textDocumentSignatureHelp,
		TextDocumentCompletion:          s.textDocumentCompletion,
	}
	return s
}

// Handler returns the protocol handler.
func (s *Server) Handler() *protocol.Handler { return &s.handler }

// RunStdio serves the protocol on stdin and stdout until the client exits.
func (s *Server) RunStdio() error {
	defer s.close()
	return server.NewServer(&s.handler, Name, false).RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := workspaceRoot(params)
	opts := []groovyls.Option{groovyls.WithRebuildHandler(s.rebuilt)}
	if root != "" {
		opts = append(opts, groovyls.WithRoot(root))
	}
	opts = append(opts, s.opts...)

	sess, err := groovyls.New(opts...)
	if err != nil {
		return nil, err
	}
	if params.InitializationOptions != nil {
		if _, err := sess.ApplySettings(s.ctx, params.InitializationOptions); err != nil {
			slog.Warn("ignoring initialization options", slog.String("error", err.Error()))
		}
	}

	s.mu.Lock()
	prev := s.session
	s.session = sess
	s.notify = ctx.Notify
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	slog.Info("initialized", slog.String("root", root), slog.String("version", s.version))

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    ptr(protocol.TextDocumentSyncKindIncremental),
		Save:      &protocol.SaveOptions{IncludeText: &protocol.False},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{TriggerCharacters: []string{"."}}
	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{TriggerCharacters: []string{"(", ","}}

	version := s.version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo:   &protocol.InitializeResultServerInfo{Name: Name, Version: &version},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	sess, err := s.current()
	if err != nil {
		return err
	}
	if err := sess.WatchClasspath(s.ctx); err != nil {
		slog.Warn("classpath watcher not started", slog.String("error", err.Error()))
	}
	// the first compile publishes the diagnostics of the whole workspace
	res, err := sess.Compile(s.ctx)
	if err != nil {
		return err
	}
	s.publish(ctx.Notify, res.Diagnostics)
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	s.close()
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) close() {
	s.cancel()
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()
	if sess == nil {
		return
	}
	if err := sess.Close(); err != nil {
		slog.Warn("close session", slog.String("error", err.Error()))
	}
}

func (s *Server) current() (*groovyls.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNotInitialized
	}
	return s.session, nil
}

// rebuilt publishes the diagnostics of a rebuild the client did not ask for.
func (s *Server) rebuilt(diags []groovyls.FileDiagnostics) {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	s.publish(notify, diags)
}

func (s *Server) publish(notify glsp.NotifyFunc, diags []groovyls.FileDiagnostics) {
	if notify == nil {
		return
	}
	for _, fd := range diags {
		notify(protocol.ServerTextDocumentPublishDiagnostics, toPublishDiagnostics(fd))
	}
}

// workspaceRoot picks the folder to compile: the first workspace folder,
// then rootUri, then rootPath.
func workspaceRoot(params *protocol.InitializeParams) string {
	if len(params.WorkspaceFolders) > 0 {
		if p, ok := contents.PathFromURI(params.WorkspaceFolders[0].URI); ok {
			return p
		}
	}
	if params.RootURI != nil {
		if p, ok := contents.PathFromURI(*params.RootURI); ok {
			return p
		}
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}

func ptr[T any](v T) *T { return &v }
