// Package storage defines the rooted file-system abstraction used for the
// extraction output directory and the intake directory.
package storage

import "github.com/starford/perthro/internal/models"

// Provider is the interface for rooted file operations. All paths are
// relative to the provider's root; anything escaping it is rejected.
type Provider interface {
	// List returns metadata for every regular file under dir (relative to root).
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// WriteChunks atomically writes the concatenation of chunks to path.
	WriteChunks(path string, chunks [][]byte) error
	// Delete removes the file at path (relative to root).
	Delete(path string) error
}
