package catalog

import "github.com/starford/perthro/internal/models"

// Store defines the interface for catalog operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type Store interface {
	UpsertArchive(meta models.ArchiveMetadata, files []models.ExtractedFile) error
	DeleteArchive(source string) error
	GetChecksum(source string) (string, error)
	GetArchive(source string) (*models.ArchiveMetadata, error)
	ListArchives() ([]models.ArchiveMetadata, error)
	ListRecords(source string) ([]models.ExtractedFile, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
