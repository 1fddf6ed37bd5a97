// Package model contains domain models passed between layers.
package model

import "strings"

// RemoteRecord is a raw row as returned by the spreadsheet backend.
// Keys are column headers and may carry stray whitespace or casing drift.
type RemoteRecord map[string]any

// Status is the lifecycle state of an event.
type Status string

// Known event statuses. StatusNone is a row with no status column value
// after defaults were applied by a caller that skips them.
const (
	StatusActive    Status = "active"
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNone      Status = ""
)

// Canonical trims s and folds it to lower case.
func (s Status) Canonical() Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

// Available reports whether attendance may still be submitted against an
// event in this status. Case and surrounding space are ignored.
func (s Status) Available() bool {
	switch s.Canonical() {
	case StatusActive, StatusOngoing, StatusUpcoming, StatusNone:
		return true
	default:
		return false
	}
}

// Event is a normalized event row.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	Date        string `json:"date"`
	Organizer   string `json:"organizer"`
	Status      Status `json:"status"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// EventStats counts events per status.
type EventStats struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}
