package notesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/notesink/notesink/internal/common"
	"github.com/notesink/notesink/internal/models"
	"github.com/ternarybob/arbor"
)

// Client talks to the notes backend, which owns content fetching,
// readability extraction, and note creation. It implements both
// interfaces.ContentFetcher and interfaces.NoteIngestor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewClient creates a backend client from configuration.
func NewClient(cfg common.BackendConfig, logger arbor.ILogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: common.Duration(cfg.RequestTimeout, 30*time.Second),
		},
		logger: logger,
	}
}

// FetchContent asks the backend to fetch and extract a URL.
func (c *Client) FetchContent(ctx context.Context, url string) (*models.PageContent, error) {
	var page models.PageContent
	err := c.postJSON(ctx, "/api/fetch-url", map[string]string{"url": url}, &page)
	if err != nil {
		return nil, fmt.Errorf("fetch content for %s: %w", url, err)
	}

	c.logger.Debug().
		Str("url", url).
		Str("title", page.Title).
		Int("links", len(page.Links)).
		Msg("Content fetched")

	return &page, nil
}

// IngestContent creates a note from extracted page content.
func (c *Client) IngestContent(ctx context.Context, sub *models.NoteSubmission) (*models.IngestResult, error) {
	var result models.IngestResult
	if err := c.postJSON(ctx, "/api/notes/from-url", sub, &result); err != nil {
		return nil, fmt.Errorf("ingest content for %s: %w", sub.URL, err)
	}

	c.logger.Debug().
		Str("url", sub.URL).
		Str("note_id", result.NoteID).
		Int("chunks", result.ChunkCount).
		Msg("Note created")

	return &result, nil
}

// IngestPDF triggers server-side PDF ingestion. The note is created
// asynchronously, so the result carries no note id.
func (c *Client) IngestPDF(ctx context.Context, url, title string) (*models.IngestResult, error) {
	body := map[string]string{"url": url, "title": title}
	if err := c.postJSON(ctx, "/api/notes/from-pdf", body, nil); err != nil {
		return nil, fmt.Errorf("ingest PDF %s: %w", url, err)
	}

	c.logger.Debug().Str("url", url).Msg("PDF ingestion accepted")

	return &models.IngestResult{Title: title, Status: "processing"}, nil
}

// postJSON issues a POST with a JSON body and decodes the JSON response into
// out when out is non-nil. Non-2xx responses become errors carrying the
// status and a trimmed body excerpt.
func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
