package compilation

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"i18nc-go/packages/i18nc/manifest"
)

// DefaultDebounce batches rapid saves into one rebuild
const DefaultDebounce = 200 * time.Millisecond

// BuildFunc receives the outcome of every watch rebuild
type BuildFunc func(report *Report, err error)

// Watcher rebuilds a project when its sources or dictionaries change. Every
// rebuild runs in a fresh build context; generated modules are rewritten in
// the compiler's registry only when their content changed.
type Watcher struct {
	mu       sync.Mutex
	compiler *Compiler
	watcher  *fsnotify.Watcher
	root     string
	outDir   string
	debounce time.Duration
	onBuild  BuildFunc
	logger   *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a Watcher for root. debounce <= 0 selects DefaultDebounce.
func (c *Compiler) NewWatcher(root string, debounce time.Duration, onBuild BuildFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onBuild == nil {
		onBuild = func(*Report, error) {}
	}
	return &Watcher{
		compiler: c,
		watcher:  fw,
		root:     root,
		outDir:   c.OutDir(root),
		debounce: debounce,
		onBuild:  onBuild,
		logger:   c.logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start runs an initial build, watches the project tree and returns. Builds
// triggered by changes run on the watcher's goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.build(ctx)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing watcher", zap.Error(err))
	}
	w.logger.Debug("watcher stopped", zap.String("root", w.root))
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			w.build(ctx)
		}
	}
}

func (w *Watcher) build(ctx context.Context) {
	report, err := w.compiler.Compile(ctx, w.root)
	if err == nil {
		err = w.compiler.Emit(w.root, report)
	}
	if err != nil {
		w.logger.Error("rebuild failed", zap.String("root", w.root), zap.Error(err))
	}
	w.onBuild(report, err)
}

// relevant reports whether event should trigger a rebuild, watching newly
// created directories on the way
func (w *Watcher) relevant(event fsnotify.Event) bool {
	path := event.Name
	if w.skipped(path) {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("dir", path), zap.Error(err))
			}
			return true
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.compiler.opts.HasExtension(path) {
		return true
	}
	return filepath.Base(filepath.Dir(path)) == manifest.DirectoryName
}

func (w *Watcher) skipped(path string) bool {
	if path == w.outDir || strings.HasPrefix(path, w.outDir+string(filepath.Separator)) {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if skipDirs[part] || (part != "." && strings.HasPrefix(part, ".")) {
			return true
		}
	}
	return false
}

// addTree watches dir and its subdirectories; non-directories are ignored
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipped(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}
