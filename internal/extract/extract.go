// Package extract turns parsed .env archives into files on disk, plus the
// metadata.json and all_tags.txt sidecars the recovery workflow expects.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/checksum"
	"github.com/starford/perthro/internal/envfmt"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/storage"
)

// Sidecar files written next to the recovered payloads.
const (
	MetadataFile = "metadata.json"
	TagsFile     = "all_tags.txt"
)

// Extractor writes recovered records into an output directory.
type Extractor struct {
	store  storage.Provider
	logger *slog.Logger
}

// New creates an Extractor writing through store.
func New(store storage.Provider, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{store: store, logger: logger}
}

// Run extracts every input path. Inputs are independent buffers, so they
// are processed in parallel, bounded by jobs workers. All inputs are
// attempted even when some fail; the returned error joins the per-input
// failures (unreadable files) and the summaries of failed inputs are nil.
func (e *Extractor) Run(ctx context.Context, inputs []string, jobs int) ([]*models.ArchiveSummary, error) {
	if jobs <= 0 {
		jobs = 1
	}
	summaries := make([]*models.ArchiveSummary, len(inputs))
	errs := make([]error, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			sum, err := e.ExtractFile(input)
			summaries[i], errs[i] = sum, err
			return nil
		})
	}
	_ = g.Wait()

	return summaries, errors.Join(errs...)
}

// ExtractFile reads one archive from disk and extracts it.
func (e *Extractor) ExtractFile(path string) (*models.ArchiveSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("input unreadable", slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("extract: read input %s: %w (%w)", path, err, apperr.ErrUnreadableInput)
	}
	return e.Extract(data, filepath.Base(path))
}

// Extract parses an already-read buffer and writes its records, the tag
// listing, and the metadata file into the output directory. Per-record
// problems degrade to warnings; only output-directory write failures are
// errors.
func (e *Extractor) Extract(data []byte, source string) (*models.ArchiveSummary, error) {
	a := envfmt.Parse(data, source)

	sum := &models.ArchiveSummary{
		Source:      source,
		Checksum:    checksum.Sum(data),
		Tags:        a.Tags,
		ExtractedAt: time.Now().UTC(),
	}
	for _, d := range a.Diagnostics {
		e.logger.Warn("parse diagnostic",
			slog.String("source", source),
			slog.Int("offset", d.Offset),
			slog.String("message", d.Message))
		sum.Warnings = append(sum.Warnings, d.String())
	}

	if err := e.store.Write(TagsFile, []byte(strings.Join(a.Tags, "\n"))); err != nil {
		return nil, fmt.Errorf("extract: write tag listing: %w", err)
	}

	for i := range a.Records {
		rec := &a.Records[i]
		name, label := resolveName(rec, len(sum.Files))
		chunks := rec.Chunks()

		if err := e.store.WriteChunks(name, chunks); err != nil {
			return nil, fmt.Errorf("extract: write %s: %w", name, err)
		}

		guid, _ := rec.Meta.GUID()
		sum.Files = append(sum.Files, models.ExtractedFile{
			Name:      name,
			Type:      label,
			GUID:      guid,
			SizeBytes: rec.Size(),
			SHA1:      checksum.SumChunks(chunks),
		})
		e.logger.Info("saved",
			slog.String("source", source),
			slog.String("file", name),
			slog.Int("bytes", rec.Size()),
			slog.String("type", label))
	}

	meta, err := json.MarshalIndent(sum.Files, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("extract: marshal metadata: %w", err)
	}
	if err := e.store.Write(MetadataFile, meta); err != nil {
		return nil, fmt.Errorf("extract: write metadata: %w", err)
	}

	e.logger.Info("archive extracted",
		slog.String("source", source),
		slog.Int("files", len(sum.Files)))
	return sum, nil
}

// resolveName picks the output filename and type label for a record:
// sanitized FILENAME, else GUID, else a positional placeholder; an
// extension is appended when the chosen name has none.
func resolveName(rec *envfmt.FileRecord, ordinal int) (name, label string) {
	declared := ""
	if v, ok := rec.Meta.Ext(); ok && v != "" {
		declared = v
	} else if v, ok := rec.Meta.DeclaredType(); ok && v != "" {
		declared = v
	}
	ext, label := envfmt.DetectType(rec.Head(), declared)

	raw := ""
	if v, ok := rec.Meta.Filename(); ok && v != "" {
		raw = v
	} else if v, ok := rec.Meta.GUID(); ok && v != "" {
		raw = v
	} else {
		raw = fmt.Sprintf("file_%d", ordinal)
	}

	name = strings.TrimRight(CleanFilename(raw), ".")
	if name == "" {
		name = fmt.Sprintf("file_%d", ordinal)
	}
	if filepath.Ext(name) == "" {
		name += ext
	}
	return name, label
}

// CleanFilename makes a recovered filename filesystem safe: CR/LF removed,
// reserved-character runs collapsed to a single underscore, surrounding
// whitespace trimmed.
func CleanFilename(name string) string {
	name = strings.NewReplacer("\r", "", "\n", "").Replace(name)
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name))
	inRun := false
	for _, r := range name {
		if strings.ContainsRune(`\/:"*?<>|`, r) {
			if !inRun {
				b.WriteByte('_')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}
