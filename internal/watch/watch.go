// Package watch reports when a working tree settles after changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/thiagokokada/gitsplit/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Run watches root and its .git directory, calling onChange once events stop
// arriving for delay. It blocks until ctx is done.
func Run(ctx context.Context, root string, delay time.Duration, onChange func()) error {
	if delay <= 0 {
		delay = DefaultDelay
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	dirs, err := watchDirs(root)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		slog.Debug("adding path to FS watcher", slog.String("path", dir))
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	d := debounce.New(delay, onChange)
	defer d.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnore(root, ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				addIfDir(watcher, ev.Name)
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			d.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func addIfDir(w *fsnotify.Watcher, name string) {
	info, err := os.Lstat(name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.Add(name); err != nil {
		slog.Warn("watch new directory", slog.String("path", name), slog.Any("error", err))
	}
}

// watchDirs lists root, every non-ignored directory beneath it outside .git,
// and the .git directory itself (HEAD and index updates land there).
func watchDirs(root string) ([]string, error) {
	if root == "" {
		return nil, errors.New("watch: empty root")
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		slog.Debug("read ignore patterns", slog.Any("error", err))
	}
	matcher := gitignore.NewMatcher(patterns)
	var dirs []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			dirs = append(dirs, path)
			return filepath.SkipDir
		}
		if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
			if matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), true) {
				return filepath.SkipDir
			}
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return dirs, nil
}

// shouldIgnore drops lock files and object database writes, which follow
// every git command and carry no working tree change on their own.
func shouldIgnore(root, name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".lock" || ext == ".ipc" {
		return true
	}
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return strings.HasPrefix(rel, ".git/objects/") || strings.HasPrefix(rel, ".git/logs/")
}
