package interfaces

import (
	"context"

	"github.com/notesink/notesink/internal/models"
)

// ContentFetcher retrieves and extracts readable content from a URL via the
// backend extraction endpoint.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (*models.PageContent, error)
}

// NoteIngestor creates notes from extracted content. IngestPDF triggers
// server-side PDF ingestion; the authoritative note id is created
// asynchronously and is not returned.
type NoteIngestor interface {
	IngestContent(ctx context.Context, sub *models.NoteSubmission) (*models.IngestResult, error)
	IngestPDF(ctx context.Context, url, title string) (*models.IngestResult, error)
}
