package compiler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last jar event before the
// handler runs.
const DefaultDebounce = 250 * time.Millisecond

// JarChangeHandler receives the deduplicated jar paths of one debounced
// batch, sorted.
type JarChangeHandler func(jars []string)

// Watcher watches classpath folders for jars being added, replaced or
// removed. Folders are watched non-recursively, as the classpath only looks
// one level deep.
type Watcher struct {
	watcher  *fsnotify.Watcher
	handler  JarChangeHandler
	debounce time.Duration

	changes  chan string
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the folders that hold the given classpath entries. A
// jar entry watches its parent folder. Missing folders are skipped.
func NewWatcher(entries []string, handler JarChangeHandler, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		watcher:  fw,
		handler:  handler,
		debounce: debounce,
		changes:  make(chan string, 256),
		done:     make(chan struct{}),
	}
	for _, dir := range watchDirs(entries) {
		if err := fw.Add(dir); err != nil {
			slog.Warn("cannot watch classpath folder", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}
	return w, nil
}

func watchDirs(entries []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entry = strings.TrimRight(strings.TrimSuffix(entry, "*"), `/\`)
		info, err := os.Stat(entry)
		if err != nil {
			continue
		}
		dir := entry
		if !info.IsDir() {
			dir = filepath.Dir(entry)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Watched returns the folders being watched.
func (w *Watcher) Watched() []string {
	dirs := w.watcher.WatchList()
	sort.Strings(dirs)
	return dirs
}

// Start runs the event and debounce loops until ctx is done or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) {
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
}

// Stop closes the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".jar") || event.Op == fsnotify.Chmod {
				continue
			}
			select {
			case w.changes <- event.Name:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("classpath watcher", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) > 0 && w.handler != nil {
			w.handler(sortedKeys(pending))
		}
		clear(pending)
		timerC = nil
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case path := <-w.changes:
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			flush()
		}
	}
}
