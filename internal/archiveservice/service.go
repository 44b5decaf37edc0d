// Package archiveservice coordinates the catalog and the extraction output
// directory for the API and MCP layers.
package archiveservice

import (
	"context"
	"errors"
	"os"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/storage"
)

// ArchiveDetail is the full representation of a cataloged archive.
type ArchiveDetail struct {
	models.ArchiveMetadata
	Records []models.ExtractedFile `json:"records"`
}

// Service coordinates catalog and output-directory operations.
type Service struct {
	store storage.Provider
	db    catalog.Store
}

// NewService creates a new archive service.
func NewService(store storage.Provider, db catalog.Store) *Service {
	return &Service{store: store, db: db}
}

// ListArchives returns every cataloged archive.
func (s *Service) ListArchives(_ context.Context) ([]models.ArchiveMetadata, error) {
	return s.db.ListArchives()
}

// GetArchive returns one archive with its records.
func (s *Service) GetArchive(_ context.Context, source string) (*ArchiveDetail, error) {
	meta, err := s.db.GetArchive(source)
	if err != nil {
		return nil, err
	}
	records, err := s.db.ListRecords(source)
	if err != nil {
		return nil, err
	}
	return &ArchiveDetail{
		ArchiveMetadata: *meta,
		Records:         nonNilSlice(records),
	}, nil
}

// ListRecords returns the records of one archive.
func (s *Service) ListRecords(_ context.Context, source string) ([]models.ExtractedFile, error) {
	if _, err := s.db.GetArchive(source); err != nil {
		return nil, err
	}
	records, err := s.db.ListRecords(source)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(records), nil
}

// Search delegates record search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ReadRecord returns the payload bytes of an extracted file from the
// output directory.
func (s *Service) ReadRecord(_ context.Context, name string) ([]byte, error) {
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// TagListing returns the discovered-tag sidecar written by the last
// extraction, empty when none exists yet.
func (s *Service) TagListing(_ context.Context) (string, error) {
	data, err := s.store.Read(extract.TagsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
