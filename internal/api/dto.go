package api

import (
	"github.com/starford/perthro/internal/archiveservice"
	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/models"
)

// ArchiveDetail is the full archive response type (aliased from the domain layer).
type ArchiveDetail = archiveservice.ArchiveDetail

// ArchiveListResponse wraps archive listings.
type ArchiveListResponse struct {
	Archives []models.ArchiveMetadata `json:"archives"`
	Total    int                      `json:"total"`
}

// RecordListResponse wraps the records of one archive.
type RecordListResponse struct {
	Records []models.ExtractedFile `json:"records"`
	Total   int                    `json:"total"`
}

// SearchResponse wraps record search results.
type SearchResponse struct {
	Results []catalog.SearchResult `json:"results"`
}
