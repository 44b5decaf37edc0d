// Package models defines the domain types shared by the extraction
// pipeline, the catalog, and the API.
package models

import "time"

// ExtractedFile describes one file written out of an archive. It is the
// unit of the metadata listing and the catalog.
type ExtractedFile struct {
	Name      string `json:"filename"`
	Type      string `json:"type"`
	GUID      string `json:"guid,omitempty"`
	SizeBytes int    `json:"size_bytes"`
	SHA1      string `json:"sha1"`
}

// ArchiveSummary is the per-input result of an extraction run.
type ArchiveSummary struct {
	Source      string          `json:"source"`
	Checksum    string          `json:"checksum"`
	Files       []ExtractedFile `json:"files"`
	Tags        []string        `json:"tags"`
	Warnings    []string        `json:"warnings,omitempty"`
	ExtractedAt time.Time       `json:"extracted_at"`
}

// FileMetadata describes one file under a storage root.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArchiveMetadata is a lightweight representation returned by catalog list
// operations.
type ArchiveMetadata struct {
	Source      string    `json:"source"`
	Checksum    string    `json:"checksum"`
	RecordCount int       `json:"record_count"`
	ExtractedAt time.Time `json:"extracted_at"`
}
