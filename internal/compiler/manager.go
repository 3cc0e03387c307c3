// Package compiler owns the analysis graph of a workspace. It drives the
// front end over every source, keeps generations immutable, recompiles only
// what an edit can affect and turns compiler messages into diagnostics.
package compiler

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jward/groovyls/internal/config"
	"github.com/jward/groovyls/internal/contents"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/index"
	"github.com/jward/groovyls/internal/store"
)

// State is the lifecycle state of a Manager.
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Mode says how an update produced its graph.
type Mode int

const (
	// ModeNone means nothing changed and the current graph was returned.
	ModeNone Mode = iota
	ModeFull
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeIncremental:
		return "incremental"
	}
	return "none"
}

// Options configures a Manager.
type Options struct {
	// Root is the workspace folder scanned on full builds. Empty means only
	// open documents are compiled.
	Root    string
	Config  config.Config
	Tracker *contents.Tracker
	// Store receives extracted symbols. Nil opens a private in-memory store.
	Store *store.Store
}

// Result is the outcome of one Update.
type Result struct {
	Graph *Graph
	Mode  Mode
	// Dirty lists the URIs recompiled by this update, sorted.
	Dirty       []string
	Diagnostics []FileDiagnostics
}

// Manager builds analysis generations. It is safe for concurrent use;
// updates are serialized.
type Manager struct {
	mu        sync.Mutex
	root      string
	cfg       config.Config
	tracker   *contents.Tracker
	store     *store.Store
	ownsStore bool

	ext        *frontend.Externals
	graph      *Graph
	state      State
	published  map[string]bool
	generation int
}

// NewManager returns an empty manager.
func NewManager(opts Options) (*Manager, error) {
	m := &Manager{
		root:      opts.Root,
		cfg:       opts.Config,
		tracker:   opts.Tracker,
		store:     opts.Store,
		published: make(map[string]bool),
	}
	if m.tracker == nil {
		m.tracker = contents.NewTracker()
	}
	if m.store == nil {
		s, err := store.NewStore("")
		if err != nil {
			return nil, fmt.Errorf("compiler: open store: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("compiler: migrate store: %w", err)
		}
		m.store = s
		m.ownsStore = true
	}
	return m, nil
}

// Close releases the private store, if any.
func (m *Manager) Close() error {
	if m.ownsStore {
		return m.store.Close()
	}
	return nil
}

// Store returns the symbol store the manager writes to.
func (m *Manager) Store() *store.Store { return m.store }

// Graph returns the current generation, or nil before the first build.
func (m *Manager) Graph() *Graph {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graph
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetConfig replaces the configuration. A change to the classpath, library
// folders or ignore patterns drops the graph so the next update is a full
// build; SetConfig reports whether that happened.
func (m *Manager) SetConfig(cfg config.Config) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	invalidate := !m.cfg.ClasspathEqual(cfg) || !slices.Equal(m.cfg.Ignore, cfg.Ignore)
	m.cfg = cfg
	if invalidate {
		m.invalidateLocked()
	}
	return invalidate
}

// Invalidate drops the graph and the loaded classpath.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateLocked()
}

func (m *Manager) invalidateLocked() {
	m.ext = nil
	m.graph = nil
	m.state = StateEmpty
}

// Jars returns the jar files of the loaded classpath.
func (m *Manager) Jars() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ext == nil {
		return nil
	}
	return m.ext.Jars()
}

func (m *Manager) externals() (*frontend.Externals, error) {
	if m.ext != nil {
		return m.ext, nil
	}
	entries := append(slices.Clone(m.cfg.Classpath), frontend.SplitLibraryFolders(m.cfg.LibraryFolders)...)
	ext, err := frontend.NewExternals(frontend.ExpandClasspath(entries))
	if err != nil {
		return nil, fmt.Errorf("load classpath: %w", err)
	}
	m.ext = ext
	return ext, nil
}

// pending is a built but unpublished generation.
type pending struct {
	units   map[string]*frontend.SourceUnit
	table   *frontend.ClassTable
	index   *index.Index
	batch   *store.BatchedStore
	dirty   map[string]bool
	removed []string
	parsed  int
}

// Update brings the graph up to date with the tracker. Without a graph it
// compiles the whole workspace; otherwise it recompiles the changed files and
// the files whose resolution they can affect. A recovered front-end fault is
// logged, the previous generation stays current and no error is returned.
func (m *Manager) Update(ctx context.Context) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := m.tracker.ChangedURIs()
	if m.graph != nil && len(changed) == 0 {
		return &Result{Graph: m.graph, Mode: ModeNone}, nil
	}
	mode := ModeFull
	if m.graph != nil {
		mode = ModeIncremental
	}

	ctx, span := startCompileSpan(ctx, mode, len(changed))
	defer span.End()
	start := time.Now()
	prevState := m.state
	m.state = StateBuilding

	batch := store.NewBatchedStore(m.store)
	var next *pending
	err := guard(func() error {
		var err error
		if mode == ModeFull {
			next, err = m.fullBuild(ctx, batch)
		} else {
			next, err = m.incrementalBuild(ctx, batch, changed)
		}
		return err
	})

	parsed := 0
	if next != nil {
		parsed = next.parsed
	}
	recordCompileMetrics(ctx, mode, time.Since(start), parsed, err == nil)
	setCompileSpanResult(span, parsed, err == nil)

	if err != nil {
		m.state = prevState
		span.RecordError(err)
		if derr := m.store.DiscardBatch(batch); derr != nil {
			slog.Warn("discard batch", slog.String("error", derr.Error()))
		}
		if errors.Is(err, errFrontendFault) {
			recordFrontendFault(ctx)
			slog.Error("compile failed, keeping previous generation",
				slog.String("mode", mode.String()),
				slog.Int("generation", m.generation),
				slog.String("error", err.Error()))
			return &Result{Graph: m.graph, Mode: mode}, nil
		}
		return nil, fmt.Errorf("compiler: update: %w", err)
	}

	m.commit(next)
	m.generation++
	m.graph = newGraph(m.generation, next.units, next.table, next.index)
	m.state = StateReady
	m.tracker.ResetChangedFiles()

	diags, published := collectDiagnostics(next.units, m.published)
	m.published = published

	slog.Debug("compiled",
		slog.String("mode", mode.String()),
		slog.Int("generation", m.generation),
		slog.Int("files", len(next.units)),
		slog.Int("parsed", next.parsed),
		slog.Duration("elapsed", time.Since(start)))

	return &Result{
		Graph:       m.graph,
		Mode:        mode,
		Dirty:       sortedKeys(next.dirty),
		Diagnostics: diags,
	}, nil
}

// fullBuild compiles every workspace source and open document.
//
//	Phase A (serial):   create units and file records.
//	Phase B (parallel): parse, convert and extract symbols per unit.
//	Phase C (serial):   build the class table, analyze and index.
func (m *Manager) fullBuild(ctx context.Context, batch *store.BatchedStore) (*pending, error) {
	ext, err := m.externals()
	if err != nil {
		return nil, err
	}
	uris, err := Scan(m.root, m.cfg.Ignore)
	if err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}
	for _, uri := range m.tracker.OpenURIs() {
		if _, ok := frontend.LanguageForFile(uri); ok && !slices.Contains(uris, uri) {
			uris = append(uris, uri)
		}
	}

	// ---- Phase A: Serial unit preparation ----
	p := &pending{
		units: make(map[string]*frontend.SourceUnit, len(uris)),
		batch: batch,
	}
	var items []workItem
	for _, uri := range uris {
		text, ok := m.tracker.Contents(uri)
		if !ok {
			continue
		}
		u := m.newUnit(uri, text)
		p.units[uri] = u
		items = append(items, m.prepare(p.batch, u))
	}

	// ---- Phase B: Parallel parsing ----
	if err := m.parse(ctx, items); err != nil {
		return nil, err
	}
	p.parsed = len(items)

	// ---- Phase C: Serial analysis ----
	modules := modulesOf(p.units, sortedKeys(p.units))
	p.table = frontend.NewClassTable(ext, modules)
	for _, uri := range sortedKeys(p.units) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frontend.Analyze(p.table, p.units[uri])
	}
	p.index = index.Build(modules)
	p.dirty = make(map[string]bool, len(p.units))
	for uri := range p.units {
		p.dirty[uri] = true
	}

	files, err := m.store.Files()
	if err != nil {
		slog.Warn("list stored files", slog.String("error", err.Error()))
	}
	for _, f := range files {
		if _, ok := p.units[f.Path]; !ok {
			p.removed = append(p.removed, f.Path)
		}
	}
	return p, nil
}

// incrementalBuild derives the next generation from the current one. Changed
// files are re-read from the tracker; files referring to a class whose
// signature changed are re-parsed from their retained text and analyzed
// again. Every other unit is shared with the previous generation.
func (m *Manager) incrementalBuild(ctx context.Context, batch *store.BatchedStore, changed map[string]bool) (*pending, error) {
	ext, err := m.externals()
	if err != nil {
		return nil, err
	}
	prev := m.graph
	p := &pending{
		units: maps.Clone(prev.units),
		batch: batch,
		dirty: make(map[string]bool),
	}

	var items []workItem
	for _, uri := range sortedKeys(changed) {
		if _, ok := frontend.LanguageForFile(uri); !ok {
			continue
		}
		text, ok := m.tracker.Contents(uri)
		if !ok {
			if _, known := p.units[uri]; known {
				delete(p.units, uri)
				p.removed = append(p.removed, uri)
				p.dirty[uri] = true
			}
			continue
		}
		u := m.newUnit(uri, text)
		p.units[uri] = u
		p.dirty[uri] = true
		items = append(items, m.prepare(p.batch, u))
	}
	if err := m.parse(ctx, items); err != nil {
		return nil, err
	}
	p.parsed = len(items)

	var radius []workItem
	for _, uri := range m.blastRadius(p, items) {
		old, ok := p.units[uri]
		if !ok || p.dirty[uri] {
			continue
		}
		u := frontend.NewSourceUnit(uri, old.Language, old.Text)
		p.units[uri] = u
		p.dirty[uri] = true
		radius = append(radius, workItem{unit: u})
	}
	if err := m.parse(ctx, radius); err != nil {
		return nil, err
	}
	p.parsed += len(radius)

	uris := sortedKeys(p.units)
	p.table = frontend.NewClassTable(ext, modulesOf(p.units, uris))
	for _, uri := range uris {
		if !p.dirty[uri] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frontend.Analyze(p.table, p.units[uri])
	}
	p.index = prev.Index.Clone()
	p.index.Reindex(modulesOf(p.units, uris), p.dirty)
	return p, nil
}

// blastRadius returns the files that mention a class added, removed or
// changed by this update, comparing stored signature hashes against the
// batch.
func (m *Manager) blastRadius(p *pending, items []workItem) []string {
	var names []string
	for _, item := range items {
		if item.fileID == 0 {
			continue
		}
		before, err := m.store.ClassHashes(item.fileID)
		if err != nil {
			slog.Warn("read class hashes", slog.String("uri", item.unit.URI), slog.String("error", err.Error()))
			continue
		}
		after, err := p.batch.ClassHashes(item.fileID)
		if err != nil {
			continue
		}
		names = append(names, store.ChangedClasses(before, after)...)
	}
	for _, uri := range p.removed {
		f, err := m.store.FileByPath(uri)
		if err != nil {
			continue
		}
		before, err := m.store.ClassHashes(f.ID)
		if err != nil {
			continue
		}
		names = append(names, store.ChangedClasses(before, nil)...)
	}
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	names = slices.Compact(names)
	paths, err := m.store.FilesReferencingNames(names)
	if err != nil {
		slog.Warn("blast radius lookup", slog.String("error", err.Error()))
		return nil
	}
	return paths
}

func (m *Manager) newUnit(uri, text string) *frontend.SourceUnit {
	lang, _ := frontend.LanguageForFile(uri)
	return frontend.NewSourceUnit(uri, lang, text)
}

// prepare creates the file record of u and registers it with the batch. Store
// failures are logged and leave the unit without symbol extraction. A record
// created here is removed again if the build is abandoned.
func (m *Manager) prepare(batch *store.BatchedStore, u *frontend.SourceUnit) workItem {
	f, err := batch.EnsureFile(u.URI, u.Language)
	if err != nil {
		slog.Warn("record file", slog.String("uri", u.URI), slog.String("error", err.Error()))
		return workItem{unit: u}
	}
	batch.ReplaceFile(f.ID, fmt.Sprintf("%x", sha256.Sum256([]byte(u.Text))))
	return workItem{unit: u, fileID: f.ID, batch: batch}
}

// parse runs phase B. Faults and cancellation abort the build; other per-file
// failures are logged and the affected units stay unconverted.
func (m *Manager) parse(ctx context.Context, items []workItem) error {
	if len(items) == 0 {
		return nil
	}
	err := parseAll(ctx, items, m.cfg.Parallel)
	if err == nil {
		return nil
	}
	if errors.Is(err, errFrontendFault) || ctx.Err() != nil {
		return err
	}
	slog.Warn("some files could not be parsed", slog.String("error", err.Error()))
	return nil
}

// commit persists the batch of a published generation.
func (m *Manager) commit(p *pending) {
	if err := m.store.CommitBatch(p.batch); err != nil {
		slog.Warn("commit symbols", slog.String("error", err.Error()))
	}
	for _, uri := range p.removed {
		if err := m.store.DeleteFile(uri); err != nil {
			slog.Warn("delete stored file", slog.String("uri", uri), slog.String("error", err.Error()))
		}
	}
}
