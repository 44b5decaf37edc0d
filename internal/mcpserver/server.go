// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Perthro tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/perthro/internal/catalog"
	"github.com/starford/perthro/internal/envfmt"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/storage"
)

// Server wraps the MCP server with Perthro tools.
type Server struct {
	mcp        *server.MCPServer
	store      storage.Provider
	db         catalog.Store
	ex         *extract.Extractor
	intakeRoot string
}

// New creates a new MCP server with all Perthro tools registered.
func New(store storage.Provider, db catalog.Store, ex *extract.Extractor, intakeRoot string) *Server {
	s := &Server{store: store, db: db, ex: ex, intakeRoot: intakeRoot}

	s.mcp = server.NewMCPServer(
		"Perthro",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_archives",
		mcp.WithDescription("List every archive that has been extracted into the catalog."),
	), s.listArchives)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List the extracted records of one archive."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Archive source path as shown by list_archives")),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Search extracted records by file name, GUID or type."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("read_record",
		mcp.WithDescription("Read the payload of an extracted record. Binary payloads are returned base64-encoded."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Extracted file name (e.g. homer-simpson.jpg)")),
	), s.readRecord)

	s.mcp.AddTool(mcp.NewTool("extract_archive",
		mcp.WithDescription("Extract a .env archive from disk into the output directory and catalog it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the archive file on disk")),
	), s.extractArchive)

	s.mcp.AddTool(mcp.NewTool("import_archive",
		mcp.WithDescription("Import raw archive bytes (base64) into the intake directory, extract and catalog them. "+
			"Read the perthro://env-format resource for the tag layout the bytes must follow."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64-encoded archive bytes")),
		mcp.WithString("name", mcp.Description("Optional file name; a generated name is used when empty")),
	), s.importArchive)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the description of the tag-delimited archive format Perthro understands."),
	), s.getFormatContract)

	// Resource: archive format contract.
	s.mcp.AddResource(
		mcp.NewResource("perthro://env-format", "Archive Format Contract",
			mcp.WithResourceDescription("Layout of the tag-delimited binary archive format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listArchives(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	archives, err := s.db.ListArchives()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(archives, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := s.db.ListRecords(source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("no records found"), nil
	}
	out, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	if envfmt.Sniff(data) == "TEXT" || strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".json") {
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(data)), nil
}

func (s *Server) extractArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.ex.ExtractFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.catalogSummary(sum); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) importArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	encoded, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return mcp.NewToolResultError("data is not valid base64"), nil
	}

	name := ""
	if n, nameErr := req.RequireString("name"); nameErr == nil {
		name = extract.CleanFilename(n)
	}
	if name == "" {
		name = "upload-" + uuid.NewString() + ".env"
	}
	if filepath.Ext(name) == "" {
		name += ".env"
	}

	path := filepath.Join(s.intakeRoot, name)
	if err := os.MkdirAll(s.intakeRoot, 0o755); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sum, err := s.ex.Extract(data, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.catalogSummary(sum); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) catalogSummary(sum *models.ArchiveSummary) error {
	return s.db.UpsertArchive(models.ArchiveMetadata{
		Source:      sum.Source,
		Checksum:    sum.Checksum,
		RecordCount: len(sum.Files),
		ExtractedAt: sum.ExtractedAt,
	}, sum.Files)
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EnvFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "perthro://env-format",
			MIMEType: "text/markdown",
			Text:     EnvFormatContract,
		},
	}, nil
}
