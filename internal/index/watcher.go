package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/vaultmeta/internal/models"
	"github.com/starford/vaultmeta/internal/storage"
)

// EventCallback is called after a watcher-driven change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Invalidator drops cached entries for a vault path. The frontmatter store
// satisfies it.
type Invalidator interface {
	Invalidate(path string)
}

type ignorer interface {
	Ignored(rel string) bool
}

// Watcher follows vault changes: Markdown documents are reindexed, .mdx
// documents have their cached headers invalidated.
type Watcher struct {
	DB       MetadataIndex
	Store    storage.Provider
	Root     string
	Cache    Invalidator
	Logger   *slog.Logger
	OnChange EventCallback

	// Debounce delays rename reconciliation. Zero means 200ms.
	Debounce time.Duration
}

// Run starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.Root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w.Logger.Info("watcher: started", slog.String("root", w.Root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(debounce)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			w.Logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.Logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					w.indexNewDir(ev.Name)
					continue
				}
			}
			if w.handle(ev) {
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one file event and reports whether a reconciliation
// pass is needed.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	rel, ok := w.relPath(ev.Name)
	if !ok {
		return false
	}

	switch models.Extension(rel) {
	case models.ExtMDX:
		if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
			return false
		}
		if w.Cache != nil {
			w.Cache.Invalidate(rel)
		}
		w.Logger.Debug("watcher: invalidated", slog.String("path", rel))
		w.notify(kindOf(ev.Op), rel)
		return false

	case models.ExtMarkdown:
	default:
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		changed, err := w.reindex(rel)
		if err != nil {
			w.Logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		if !changed {
			return false
		}
		w.Logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kindOf(ev.Op)))
		w.notify(kindOf(ev.Op), rel)

	case ev.Op&fsnotify.Remove != 0:
		if err := w.DB.DeleteDocument(rel); err != nil {
			w.Logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		w.notify("deleted", rel)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports only the old path; the new one arrives as Create.
		if err := w.DB.DeleteDocument(rel); err != nil {
			w.Logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		} else {
			w.notify("deleted", rel)
		}
		return true
	}
	return false
}

// reindex upserts rel unless the stored checksum already matches its
// content. Editors often emit several writes per save.
func (w *Watcher) reindex(rel string) (bool, error) {
	doc, err := w.Store.Stat(rel)
	if err != nil {
		return false, err
	}
	data, err := w.Store.Read(rel)
	if err != nil {
		return false, err
	}
	stored, err := w.DB.GetChecksum(rel)
	if err != nil {
		return false, err
	}
	if stored == storage.Checksum(data) {
		return false, nil
	}
	return true, indexDocument(w.DB, rel, data, doc.ModTime)
}

// reconcile removes index entries without a file on disk and indexes
// on-disk documents that are missing or changed.
func (w *Watcher) reconcile() {
	checksums, err := w.DB.AllChecksums()
	if err != nil {
		w.Logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	docs, err := w.Store.List("")
	if err != nil {
		w.Logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]models.Document, len(docs))
	for _, d := range docs {
		if d.Extension == models.ExtMarkdown {
			disk[d.Path] = d
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := w.DB.DeleteDocument(p); err == nil {
				w.notify("deleted", p)
			}
		}
	}
	for p, d := range disk {
		if checksums[p] == d.Checksum {
			continue
		}
		data, err := w.Store.Read(p)
		if err != nil {
			continue
		}
		if err := indexDocument(w.DB, p, data, d.ModTime); err == nil {
			w.notify("created", p)
		}
	}
}

// indexNewDir handles documents already present in a newly created directory.
func (w *Watcher) indexNewDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		w.handle(fsnotify.Event{Name: path, Op: fsnotify.Create})
		return nil
	})
}

func (w *Watcher) relPath(abs string) (string, bool) {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if ig, ok := w.Store.(ignorer); ok && ig.Ignored(rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) notify(kind, path string) {
	if w.OnChange != nil {
		w.OnChange(kind, path)
	}
}

func kindOf(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "created"
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return "deleted"
	default:
		return "updated"
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
