package rdf

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	// Paths are the files or directories to watch. Directories are watched recursively.
	Paths []string

	// Format overrides extension-based format detection when set.
	Format Format

	// DebounceDelay is how long to wait for more changes before reloading
	DebounceDelay time.Duration

	Logger *slog.Logger
}

// WatchOperation indicates the type of file operation
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// WatchEvent reports a changed RDF document.
type WatchEvent struct {
	Path      string
	Operation WatchOperation

	// Graph is the reloaded document (nil for deletes and failures)
	Graph *Graph

	Error error
}

// Watcher watches RDF documents and emits reloaded graphs when their content changes.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	started bool
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	hashMu sync.RWMutex
	hashes map[string]string // path → content hash

	events chan WatchEvent
	done   chan struct{}
}

// NewWatcher creates a new file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 200 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan WatchEvent, 100),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel of watch events
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start registers the watches and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.config.Paths {
		if err := w.addWatches(path); err != nil {
			return err
		}
	}

	w.started = true
	go func() {
		defer close(w.done)
		w.processEvents(ctx)
	}()

	w.logger.Info("File watcher started",
		"paths", w.config.Paths,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher and closes the event channel once processing has ended.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	if w.started {
		<-w.done
	}
	close(w.events)
	return err
}

// Seed records the current content hash of a file so that an unchanged rewrite
// does not trigger a reload.
func (w *Watcher) Seed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.SetHash(path, ContentHash(data))
	return nil
}

// SetHash records the hash for a file
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded hash for a file
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

// ContentHash returns the hex xxhash64 digest of a document.
func ContentHash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

func (w *Watcher) addWatches(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		// Editors replace files on save, so watch the parent directory instead.
		return w.watcher.Add(filepath.Dir(root))
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		}
		return nil
	})
}

// watched reports whether a path is an RDF document covered by the configuration.
func (w *Watcher) watched(path string) bool {
	if w.config.Format == "" {
		if _, err := FormatForPath(path); err != nil {
			return false
		}
	}
	for _, root := range w.config.Paths {
		if filepath.Clean(root) == filepath.Clean(path) {
			return true
		}
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.watched(filepath.Join(path, "x.ttl")) {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.watched(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		"path", path,
		"op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		event := WatchEvent{Path: path}

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			w.hashMu.Lock()
			delete(w.hashes, path)
			w.hashMu.Unlock()
			event.Operation = OpDelete
			w.sendEvent(event)
			continue
		}
		if err != nil {
			event.Error = err
			w.sendEvent(event)
			continue
		}

		hash := ContentHash(data)
		oldHash, hadHash := w.GetHash(path)
		if hadHash && oldHash == hash {
			continue
		}
		w.SetHash(path, hash)

		if hadHash {
			event.Operation = OpModify
		} else {
			event.Operation = OpCreate
		}

		format := w.config.Format
		if format == "" {
			format, _ = FormatForPath(path)
		}
		event.Graph, event.Error = Decode(bytes.NewReader(data), format)

		w.sendEvent(event)
	}
}

func (w *Watcher) sendEvent(event WatchEvent) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path)
	}
}
