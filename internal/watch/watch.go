// Package watch regenerates the site configuration when the docs tree or the
// repository's HEAD changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/kbsite/internal/logfields"
	"git.home.luguber.info/inful/kbsite/internal/revision"
)

// DefaultDebounce coalesces bursts of editor saves into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a docs tree and its git directory.
type Watcher struct {
	docsDir  string
	gitDir   string
	debounce time.Duration
	ignore   map[string]struct{}
	logger   *slog.Logger
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips events for the given files, typically the output path.
func WithIgnore(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				w.ignore[abs] = struct{}{}
			}
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Watcher for docsDir. The enclosing repository's .git
// directory is watched as well when there is one.
func New(docsDir string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(docsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve docs dir: %w", err)
	}
	w := &Watcher{
		docsDir:  abs,
		debounce: DefaultDebounce,
		ignore:   map[string]struct{}{},
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if gitDir, err := revision.GitDir(abs); err == nil {
		w.gitDir = gitDir
	} else {
		w.logger.Debug("No repository found, watching docs only", logfields.Path(abs), logfields.Error(err))
	}
	return w, nil
}

// Ready is closed once Run has registered all watches.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run blocks until ctx is done, calling rebuild after each quiet period that
// follows a relevant change. rebuild runs on the watch goroutine, so builds
// never overlap.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(fw, w.docsDir); err != nil {
		return err
	}
	if w.gitDir != "" {
		w.addGit(fw)
	}
	w.logger.Info("Watching for changes", logfields.Path(w.docsDir), slog.String("git_dir", w.gitDir))
	close(w.ready)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fw, event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", logfields.Error(err))
		case <-timer.C:
			rebuild(ctx)
		}
	}
}

func (w *Watcher) relevant(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if _, skip := w.ignore[ev.Name]; skip {
		return false
	}
	if w.gitDir != "" && within(w.gitDir, ev.Name) {
		return gitRelevant(w.gitDir, ev.Name)
	}

	rel, err := filepath.Rel(w.docsDir, ev.Name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skipDir(part) {
			return false
		}
	}
	if ev.Has(fsnotify.Create) {
		// New directories need their own watch; a failure here only loses
		// events below that directory.
		if err := w.addTree(fw, ev.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
		}
	}
	if strings.EqualFold(filepath.Ext(ev.Name), ".md") {
		return true
	}
	// Directory renames and removals reshape the sidebar too.
	return filepath.Ext(ev.Name) == "" && (ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename))
}

// addTree adds root and every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.docsDir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// addGit watches the git directory (for HEAD and packed-refs) and refs/heads.
func (w *Watcher) addGit(fw *fsnotify.Watcher) {
	for _, p := range []string{w.gitDir, filepath.Join(w.gitDir, "refs", "heads")} {
		if err := fw.Add(p); err != nil {
			w.logger.Warn("Failed to watch git directory", logfields.Path(p), logfields.Error(err))
		}
	}
}

func gitRelevant(gitDir, name string) bool {
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	rel, err := filepath.Rel(gitDir, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "HEAD" || rel == "packed-refs" || strings.HasPrefix(rel, "refs/heads/")
}

func within(dir, name string) bool {
	rel, err := filepath.Rel(dir, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

func skipDir(name string) bool {
	return (strings.HasPrefix(name, ".") && name != "." && name != "..") || name == "node_modules"
}
