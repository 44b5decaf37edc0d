package intake

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/storage"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "extracted", "removed".
type EventCallback func(kind string, source string)

// Watch starts an fsnotify watcher on the intake root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful catalog mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// catalog entries whose archives no longer exist on disk.
func Watch(ctx context.Context, db catalog.Store, store storage.Provider, ex *extract.Extractor, intakeRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, intakeRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", intakeRoot))

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcileAfterRename(db, store, ex, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// --- Handle new directories: add to watcher ---
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Extract any archives already in the new directory.
					extractNewDir(db, store, ex, intakeRoot, absPath, logger, cb)
					continue
				}
			}

			// Only process .env archives from here on.
			if !strings.HasSuffix(absPath, ArchiveSuffix) {
				continue
			}

			rel, relErr := filepath.Rel(intakeRoot, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				if procErr := processArchive(db, ex, rel, data); procErr != nil {
					logger.Warn("watcher: extract failed", slog.String("path", rel), slog.String("error", procErr.Error()))
					continue
				}
				logger.Debug("watcher: extracted", slog.String("path", rel))
				if cb != nil {
					cb("extracted", rel)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteArchive(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("path", rel))
				if cb != nil {
					cb("removed", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event (if it
				// stays within a watched dir). We delete the old entry
				// immediately and schedule a short reconciliation pass
				// to catch any stragglers.
				if delErr := db.DeleteArchive(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old removed", slog.String("path", rel))
					if cb != nil {
						cb("removed", rel)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileAfterRename does a lightweight sync using batch lookups:
// finds catalog entries without a corresponding archive on disk and removes
// them, and extracts on-disk archives that are missing or stale.
func reconcileAfterRename(db catalog.Store, store storage.Provider, ex *extract.Extractor, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		if strings.HasSuffix(m.Path, ArchiveSuffix) {
			disk[m.Path] = m.Checksum
		}
	}

	for src := range checksums {
		if _, ok := disk[src]; !ok {
			if delErr := db.DeleteArchive(src); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", src))
				if cb != nil {
					cb("removed", src)
				}
			}
		}
	}

	for src, cs := range disk {
		if checksums[src] == cs {
			continue
		}
		data, readErr := store.Read(src)
		if readErr != nil {
			continue
		}
		if procErr := processArchive(db, ex, src, data); procErr == nil {
			logger.Debug("reconcile: extracted new", slog.String("path", src))
			if cb != nil {
				cb("extracted", src)
			}
		}
	}
}

// extractNewDir extracts any archives found in a newly created directory.
func extractNewDir(db catalog.Store, store storage.Provider, ex *extract.Extractor, intakeRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ArchiveSuffix) {
			return nil
		}
		rel, relErr := filepath.Rel(intakeRoot, path)
		if relErr != nil {
			return nil
		}
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		if procErr := processArchive(db, ex, rel, data); procErr == nil {
			logger.Debug("watcher: extracted from new dir", slog.String("path", rel))
			if cb != nil {
				cb("extracted", rel)
			}
		}
		return nil
	})
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
