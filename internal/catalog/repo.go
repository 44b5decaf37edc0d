package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/models"
)

// SearchResult represents one record search hit.
type SearchResult struct {
	Archive string `json:"archive"`
	Name    string `json:"name"`
	GUID    string `json:"guid,omitempty"`
	Type    string `json:"type"`
}

// UpsertArchive replaces an archive row and its records within a transaction.
func (db *DB) UpsertArchive(meta models.ArchiveMetadata, files []models.ExtractedFile) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO archives (source, checksum, record_count, extracted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			checksum     = excluded.checksum,
			record_count = excluded.record_count,
			extracted_at = excluded.extracted_at
	`, meta.Source, meta.Checksum, len(files), meta.ExtractedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert archive: %w", err)
	}

	// Replace records: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM records WHERE archive = ?`, meta.Source)
	ftsDelete(tx, meta.Source)
	if len(files) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO records (archive, name, guid, type, size, sha1)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("catalog: prepare record insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range files {
			if _, err := stmt.Exec(meta.Source, f.Name, f.GUID, f.Type, f.SizeBytes, f.SHA1); err != nil {
				return fmt.Errorf("catalog: insert record: %w", err)
			}
			if err := ftsUpsert(tx, meta.Source, f.Name, f.GUID, f.Type); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteArchive removes an archive and its records.
func (db *DB) DeleteArchive(source string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, source)
	_, _ = tx.Exec(`DELETE FROM records WHERE archive = ?`, source)
	_, _ = tx.Exec(`DELETE FROM archives WHERE source = ?`, source)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an archive, or empty string
// if the archive is not cataloged.
func (db *DB) GetChecksum(source string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM archives WHERE source = ?`, source).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetArchive returns one archive's metadata.
func (db *DB) GetArchive(source string) (*models.ArchiveMetadata, error) {
	var m models.ArchiveMetadata
	err := db.conn.QueryRow(`
		SELECT source, checksum, record_count, extracted_at
		FROM archives WHERE source = ?
	`, source).Scan(&m.Source, &m.Checksum, &m.RecordCount, &m.ExtractedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get archive: %w", err)
	}
	return &m, nil
}

// ListArchives returns every cataloged archive, newest first.
func (db *DB) ListArchives() ([]models.ArchiveMetadata, error) {
	rows, err := db.conn.Query(`
		SELECT source, checksum, record_count, extracted_at
		FROM archives
		ORDER BY extracted_at DESC, source
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list archives: %w", err)
	}
	defer rows.Close()

	var out []models.ArchiveMetadata
	for rows.Next() {
		var m models.ArchiveMetadata
		if err := rows.Scan(&m.Source, &m.Checksum, &m.RecordCount, &m.ExtractedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListRecords returns the extracted records of one archive in insertion order.
func (db *DB) ListRecords(source string) ([]models.ExtractedFile, error) {
	rows, err := db.conn.Query(`
		SELECT name, guid, type, size, sha1
		FROM records
		WHERE archive = ?
		ORDER BY rowid
	`, source)
	if err != nil {
		return nil, fmt.Errorf("catalog: list records: %w", err)
	}
	defer rows.Close()

	var out []models.ExtractedFile
	for rows.Next() {
		var f models.ExtractedFile
		if err := rows.Scan(&f.Name, &f.GUID, &f.Type, &f.SizeBytes, &f.SHA1); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AllChecksums returns every cataloged archive source with its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT source, checksum FROM archives`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var src, cs string
		if err := rows.Scan(&src, &cs); err != nil {
			return nil, err
		}
		out[src] = cs
	}
	return out, rows.Err()
}
