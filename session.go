package groovyls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/compiler"
	"github.com/jward/groovyls/internal/config"
	"github.com/jward/groovyls/internal/contents"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/ranges"
	"github.com/jward/groovyls/internal/store"
)

// TextChange is one edit of a didChange notification. A nil Range replaces
// the whole document.
type TextChange = contents.Change

// RebuildHandler receives the diagnostics of a rebuild that no document
// notification asked for, such as one triggered by a classpath jar change.
type RebuildHandler func([]FileDiagnostics)

// Session owns the state of one workspace: the document tracker, the
// compilation manager, the symbol store and the configuration. Every method
// is serialized by one lock, so at most one compile-and-reindex cycle runs at
// a time and requests always see a complete generation.
type Session struct {
	mu        sync.Mutex
	root      string
	cfg       config.Config
	cfgSet    bool
	tracker   *contents.Tracker
	store     *store.Store
	manager   *compiler.Manager
	watcher   *compiler.Watcher
	watchCtx  context.Context
	onRebuild RebuildHandler
	closed    bool
}

// Option configures a Session.
type Option func(*Session)

// WithRoot sets the workspace folder scanned for sources. Without a root
// only open documents are compiled.
func WithRoot(root string) Option {
	return func(s *Session) {
		s.root = root
	}
}

// WithConfig replaces the configuration that would otherwise be loaded from
// the workspace root.
func WithConfig(cfg config.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
		s.cfgSet = true
	}
}

// WithRebuildHandler registers a callback for unsolicited rebuilds.
func WithRebuildHandler(fn RebuildHandler) Option {
	return func(s *Session) {
		s.onRebuild = fn
	}
}

// New creates a Session. The configuration comes from WithConfig, or from
// .groovyls.yaml under the root. The symbol database is opened (relative
// paths resolve against the root) and migrated.
func New(opts ...Option) (*Session, error) {
	s := &Session{tracker: contents.NewTracker()}
	for _, opt := range opts {
		opt(s)
	}
	if !s.cfgSet {
		cfg := config.Default()
		if s.root != "" {
			var err error
			cfg, err = config.LoadWorkspace(s.root)
			if err != nil {
				return nil, fmt.Errorf("groovyls: load config: %w", err)
			}
		}
		s.cfg = cfg
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("groovyls: %w", err)
	}

	dbPath := s.cfg.Database
	if dbPath != "" {
		if !filepath.IsAbs(dbPath) && s.root != "" {
			dbPath = filepath.Join(s.root, dbPath)
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("groovyls: create database directory: %w", err)
		}
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("groovyls: create store: %w", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("groovyls: migrate: %w", err)
	}
	s.store = st

	m, err := compiler.NewManager(compiler.Options{
		Root:    s.root,
		Config:  s.cfg,
		Tracker: s.tracker,
		Store:   st,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("groovyls: %w", err)
	}
	s.manager = m
	return s, nil
}

// Close stops the classpath watcher and releases the database.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	return errors.Join(s.manager.Close(), s.store.Close())
}

// Root returns the workspace folder, or "".
func (s *Session) Root() string { return s.root }

// Config returns the effective configuration.
func (s *Session) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Store returns the symbol store.
func (s *Session) Store() *Store { return s.store }

// OpenDocument records the text of a newly opened document and recompiles.
func (s *Session) OpenDocument(ctx context.Context, uri, text string) ([]FileDiagnostics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Open(uri, text)
	return s.rebuild(ctx)
}

// ChangeDocument applies edits to an open document, in order, and
// recompiles.
func (s *Session) ChangeDocument(ctx context.Context, uri string, changes []TextChange) ([]FileDiagnostics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Change(uri, changes)
	return s.rebuild(ctx)
}

// CloseDocument forgets the editor's copy of uri; its text falls back to
// disk.
func (s *Session) CloseDocument(ctx context.Context, uri string) ([]FileDiagnostics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Close(uri)
	return s.rebuild(ctx)
}

// WatchedFilesChanged marks files changed on disk as dirty and recompiles.
// Open documents are skipped: the editor's copy wins.
func (s *Session) WatchedFilesChanged(ctx context.Context, uris []string) ([]FileDiagnostics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, uri := range uris {
		if !s.tracker.IsOpen(uri) {
			s.tracker.ForceChanged(uri)
		}
	}
	return s.rebuild(ctx)
}

// ApplySettings merges an LSP settings blob into the configuration. A
// classpath change forces a full rebuild and moves the classpath watcher.
func (s *Session) ApplySettings(ctx context.Context, raw any) ([]FileDiagnostics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.cfg.MergeSettings(raw)
	if err != nil {
		return nil, fmt.Errorf("groovyls: apply settings: %w", err)
	}
	s.cfg = cfg
	if s.manager.SetConfig(cfg) {
		slog.Info("classpath changed, full rebuild",
			slog.Int("entries", len(cfg.Classpath)),
			slog.String("library_folders", cfg.LibraryFolders))
		if s.watcher != nil {
			if err := s.watchLocked(); err != nil {
				slog.Warn("restart classpath watcher", slog.String("error", err.Error()))
			}
		}
	}
	return s.rebuild(ctx)
}

// CompileResult summarizes one explicit compile.
type CompileResult struct {
	Mode        string
	Files       int
	Dirty       []string
	Diagnostics []FileDiagnostics
}

// Compile brings the analysis up to date and reports what was rebuilt.
func (s *Session) Compile(ctx context.Context) (*CompileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.manager.Update(ctx)
	if err != nil {
		return nil, fmt.Errorf("groovyls: compile: %w", err)
	}
	out := &CompileResult{Mode: res.Mode.String(), Dirty: res.Dirty, Diagnostics: res.Diagnostics}
	if res.Graph != nil {
		out.Files = len(res.Graph.URIs())
	}
	return out, nil
}

// WatchClasspath starts watching the classpath for jar changes until ctx is
// done or the session closes. A change triggers a full rebuild whose
// diagnostics go to the rebuild handler.
func (s *Session) WatchClasspath(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchCtx = ctx
	return s.watchLocked()
}

func (s *Session) watchLocked() error {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	entries := slices.Concat(s.cfg.Classpath, frontend.SplitLibraryFolders(s.cfg.LibraryFolders))
	if len(entries) == 0 {
		return nil
	}
	ctx := s.watchCtx
	w, err := compiler.NewWatcher(entries, func(jars []string) {
		slog.Info("classpath jars changed", slog.Int("jars", len(jars)))
		s.jarsChanged(ctx)
	}, compiler.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("groovyls: watch classpath: %w", err)
	}
	w.Start(ctx)
	s.watcher = w
	return nil
}

// Watching returns the folders the classpath watcher observes.
func (s *Session) Watching() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Watched()
}

func (s *Session) jarsChanged(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.manager.Invalidate()
	diags, err := s.rebuild(ctx)
	if err != nil {
		slog.Warn("rebuild after classpath change", slog.String("error", err.Error()))
		return
	}
	if s.onRebuild != nil {
		s.onRebuild(diags)
	}
}

// rebuild runs one update and returns its diagnostics. Callers hold s.mu.
func (s *Session) rebuild(ctx context.Context) ([]FileDiagnostics, error) {
	res, err := s.manager.Update(ctx)
	if err != nil {
		return nil, fmt.Errorf("groovyls: compile: %w", err)
	}
	return res.Diagnostics, nil
}

// current returns an up-to-date generation. Diagnostics of a rebuild it
// triggers go to the rebuild handler. Callers hold s.mu.
func (s *Session) current(ctx context.Context) (*compiler.Graph, error) {
	res, err := s.manager.Update(ctx)
	if err != nil {
		return nil, fmt.Errorf("groovyls: compile: %w", err)
	}
	if len(res.Diagnostics) > 0 && s.onRebuild != nil {
		s.onRebuild(res.Diagnostics)
	}
	return res.Graph, nil
}

// nodeAt returns the generation and the most specific node at pos.
func (s *Session) nodeAt(ctx context.Context, uri string, pos Position) (*compiler.Graph, ast.Node, error) {
	g, err := s.current(ctx)
	if err != nil || g == nil {
		return nil, nil, err
	}
	return g, g.Index.NodeAt(uri, pos), nil
}

// text returns the live text of uri: the editor's copy, the disk, or the
// text it was compiled from.
func (s *Session) text(g *compiler.Graph, uri string) (string, bool) {
	if t, ok := s.tracker.Contents(uri); ok {
		return t, true
	}
	return g.Text(uri)
}

func locationOf(g *compiler.Graph, n ast.Node) (Location, bool) {
	if n == nil {
		return Location{}, false
	}
	uri, ok := g.Index.URIOf(n)
	if !ok {
		return Location{}, false
	}
	r, ok := ranges.FromSpan(n.Pos())
	if !ok {
		return Location{}, false
	}
	return Location{URI: uri, Range: r}, true
}
