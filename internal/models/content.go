package models

import "time"

// PageContent is the payload returned by the content-extraction endpoint for
// a fetched URL. Content negotiation and readability extraction are that
// endpoint's responsibility; the queue only routes the result.
type PageContent struct {
	Title         string   `json:"title"`
	TextContent   string   `json:"text_content"`
	Content       string   `json:"content"` // fallback when text_content is absent
	FinalURL      string   `json:"final_url"`
	SiteName      string   `json:"site_name"`
	Byline        string   `json:"byline"`
	PublishedTime string   `json:"published_time"`
	Links         []string `json:"links"`
}

// Text returns the extracted text, preferring text_content over content.
func (p *PageContent) Text() string {
	if p.TextContent != "" {
		return p.TextContent
	}
	return p.Content
}

// NoteSubmission is the request body for the content-ingestion endpoint.
type NoteSubmission struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	SiteName      string `json:"site_name,omitempty"`
	Byline        string `json:"byline,omitempty"`
	PublishedTime string `json:"published_time,omitempty"`
}

// IngestResult is the payload of a completed ingestion call. For PDF URLs the
// note is created asynchronously server-side, so NoteID is empty and Status
// reports "processing".
type IngestResult struct {
	NoteID     string `json:"note_id,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

// LedgerEntry is one completed ingestion recorded for display.
type LedgerEntry struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	NoteID      string    `json:"note_id,omitempty"`
	ChunkCount  int       `json:"chunk_count,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
