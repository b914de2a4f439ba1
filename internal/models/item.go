package models

import (
	"context"
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusPending    Status = "pending"
	StatusFetching   Status = "fetching"
	StatusExtracting Status = "extracting"
	StatusUploading  Status = "uploading"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusPaused     Status = "paused"
	StatusCanceled   Status = "canceled"
)

// Progress checkpoints per pipeline stage. Progress is monotonically
// non-decreasing within a single attempt and resets to ProgressPending
// at the start of each retry.
const (
	ProgressPending    = 10
	ProgressFetching   = 20
	ProgressExtracting = 45
	ProgressUploading  = 65
	ProgressComplete   = 100
)

// DefaultMaxRetries is the retry budget applied to new items.
const DefaultMaxRetries = 3

var allStatuses = []Status{
	StatusQueued,
	StatusPending,
	StatusFetching,
	StatusExtracting,
	StatusUploading,
	StatusSuccess,
	StatusError,
	StatusPaused,
	StatusCanceled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// activeStatuses are the statuses counted against the concurrency limit.
var activeStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusFetching:   {},
	StatusExtracting: {},
	StatusUploading:  {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsActiveStatus reports whether a status reflects an in-flight attempt.
func IsActiveStatus(status Status) bool {
	_, ok := activeStatuses[status]
	return ok
}

// QueueItem is one URL's ingestion lifecycle record. The URL is the
// deduplication key; exactly one item per distinct URL lives in the store.
type QueueItem struct {
	ID         string        `json:"id"`
	URL        string        `json:"url"`
	Status     Status        `json:"status"`
	Progress   int           `json:"progress"`
	RetryCount int           `json:"retry_count"`
	MaxRetries int           `json:"max_retries"`
	Error      string        `json:"error,omitempty"`
	Title      string        `json:"title,omitempty"`
	SiteName   string        `json:"site_name,omitempty"`
	Result     *IngestResult `json:"result,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Cancel aborts the in-flight attempt's network operation. It is set by
	// the worker when an attempt starts and cleared when the item leaves the
	// active set. Never serialized.
	Cancel context.CancelCauseFunc `json:"-"`
}

// IsActive reports whether the item is in-flight and counts against the
// concurrency limit.
func (i *QueueItem) IsActive() bool {
	return IsActiveStatus(i.Status)
}

// IsTerminal reports whether no further automatic transition can occur.
// Error is terminal in practice only once the retry budget is exhausted;
// the worker only ever sets StatusError at that point.
func (i *QueueItem) IsTerminal() bool {
	switch i.Status {
	case StatusSuccess, StatusCanceled, StatusError:
		return true
	default:
		return false
	}
}

// SetStage updates status and progress together for a pipeline stage.
// Use this instead of setting the fields individually.
func (i *QueueItem) SetStage(status Status, progress int) {
	i.Status = status
	i.Progress = progress
	i.UpdatedAt = time.Now()
}

// SetFailed marks the item as terminally failed with the given message.
func (i *QueueItem) SetFailed(message string) {
	i.Status = StatusError
	i.Error = message
	i.Cancel = nil
	i.UpdatedAt = time.Now()
}

// SetSuccess records the ingestion result and completes the item.
func (i *QueueItem) SetSuccess(result *IngestResult) {
	i.Status = StatusSuccess
	i.Progress = ProgressComplete
	i.Result = result
	i.Error = ""
	i.Cancel = nil
	i.UpdatedAt = time.Now()
}
