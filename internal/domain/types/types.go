// Package types contains request and report shapes shared by the service,
// the HTTP API and the CLI.
package types

import "github.com/okian/tally/internal/domain/model"

// SummaryQuery narrows a summary view.
type SummaryQuery struct {
	From       string
	To         string
	Event      string
	Department string
	// Limit caps records per participant. Negative uses the service default;
	// zero disables the cap.
	Limit int
	// Search matches name, position or department after ranking.
	Search string
}

// DefaultQuery is the unfiltered view with the default per-person cap.
func DefaultQuery() SummaryQuery {
	return SummaryQuery{Limit: -1}
}

// SubmitRequest asks to record one participant at one event.
type SubmitRequest struct {
	PSCode string `json:"psCode"`
	// Event is the event id or, failing that, its exact name.
	Event string `json:"event"`
}

// SubmitResult echoes what was sent and the backend's message.
type SubmitResult struct {
	Submission model.Submission `json:"submission"`
	Message    string           `json:"message,omitempty"`
}

// LoadResult describes how one collection settled during a refresh.
type LoadResult struct {
	Collection string `json:"collection"`
	// Source is remote, cache or empty when nothing replaced the current copy.
	Source   string `json:"source,omitempty"`
	Count    int    `json:"count"`
	Accepted bool   `json:"accepted"`
	// CachedAt is when a cache copy was written, set only when Source is cache.
	CachedAt string `json:"cachedAt,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RefreshReport is the outcome of one refresh.
type RefreshReport struct {
	Events     LoadResult `json:"events"`
	Users      LoadResult `json:"users"`
	Records    LoadResult `json:"records"`
	DurationMS float64    `json:"durationMs"`
}
