// Package intake keeps the catalog in sync with a watched directory of
// incoming .env archives: new or changed archives are extracted and
// cataloged, removed archives are dropped.
package intake

import (
	"log/slog"
	"strings"

	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/storage"
)

// ArchiveSuffix is the file suffix processed from the intake directory.
const ArchiveSuffix = ".env"

// Sync walks the intake directory and brings the catalog up to date:
//   - new/changed archives are extracted and upserted
//   - archives removed from disk are deleted from the catalog
func Sync(db catalog.Store, store storage.Provider, ex *extract.Extractor, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if !strings.HasSuffix(m.Path, ArchiveSuffix) {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := processArchive(db, ex, m.Path, data); err != nil {
			logger.Warn("sync: extract failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: extracted", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for src := range checksums {
		if _, ok := disk[src]; !ok {
			if err := db.DeleteArchive(src); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", src), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", src))
			}
		}
	}

	return nil
}

// processArchive extracts data and upserts the result into the catalog.
// The intake-relative path doubles as the catalog source key.
func processArchive(db catalog.Store, ex *extract.Extractor, path string, data []byte) error {
	sum, err := ex.Extract(data, path)
	if err != nil {
		return err
	}
	return db.UpsertArchive(models.ArchiveMetadata{
		Source:      path,
		Checksum:    sum.Checksum,
		ExtractedAt: sum.ExtractedAt,
	}, sum.Files)
}
