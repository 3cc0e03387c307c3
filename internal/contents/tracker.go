// Package contents tracks the live text of files open in the editor and the
// set of files changed since the last rebuild.
package contents

import (
	"os"
	"sort"
	"sync"

	"github.com/jward/groovyls/internal/ranges"
)

// Change is one content change of a didChange notification. A nil Range
// replaces the whole document.
type Change struct {
	Range *ranges.Range
	Text  string
}

// Tracker holds open-file text and dirty URIs.
type Tracker struct {
	mu      sync.RWMutex
	open    map[string]string
	changed map[string]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		open:    make(map[string]string),
		changed: make(map[string]bool),
	}
}

// Open records the text of a newly opened document.
func (t *Tracker) Open(uri, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open[uri] = text
	t.changed[uri] = true
}

// Change applies edits in order to an open document. Changes to a document
// that is not open start from its disk contents.
func (t *Tracker) Change(uri string, changes []Change) {
	t.mu.Lock()
	defer t.mu.Unlock()
	text, ok := t.open[uri]
	if !ok {
		text, _ = readDisk(uri)
	}
	for _, c := range changes {
		text = apply(text, c)
	}
	t.open[uri] = text
	t.changed[uri] = true
}

func apply(text string, c Change) string {
	if c.Range == nil {
		return c.Text
	}
	start := ranges.Offset(text, c.Range.Start)
	end := ranges.Offset(text, c.Range.End)
	if start < 0 {
		start = len(text)
	}
	if end < 0 {
		end = len(text)
	}
	if end < start {
		start, end = end, start
	}
	return text[:start] + c.Text + text[end:]
}

// Close forgets the document text; later reads fall back to disk.
func (t *Tracker) Close(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.open, uri)
	t.changed[uri] = true
}

// Contents returns the live text of uri: the editor's copy when open,
// otherwise the file on disk.
func (t *Tracker) Contents(uri string) (string, bool) {
	t.mu.RLock()
	text, ok := t.open[uri]
	t.mu.RUnlock()
	if ok {
		return text, true
	}
	return readDisk(uri)
}

func readDisk(uri string) (string, bool) {
	path, ok := PathFromURI(uri)
	if !ok {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (t *Tracker) IsOpen(uri string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.open[uri]
	return ok
}

// OpenURIs returns the open documents in sorted order.
func (t *Tracker) OpenURIs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.open))
	for uri := range t.open {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// ForceChanged marks uri dirty without touching its text.
func (t *Tracker) ForceChanged(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changed[uri] = true
}

// ChangedURIs returns a copy of the dirty set.
func (t *Tracker) ChangedURIs() map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]bool, len(t.changed))
	for uri := range t.changed {
		out[uri] = true
	}
	return out
}

// ResetChangedFiles empties the dirty set after a successful rebuild.
func (t *Tracker) ResetChangedFiles() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changed = make(map[string]bool)
}
