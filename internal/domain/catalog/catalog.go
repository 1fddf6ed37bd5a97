// Package catalog filters and summarizes the event list.
package catalog

import (
	"sort"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// Filter narrows an event list. Zero values match everything.
type Filter struct {
	Status   model.Status
	Category string
	// Query matches name, description or organizer, case-insensitively.
	Query string
}

// Match reports whether ev passes f.
func (f Filter) Match(ev model.Event) bool {
	if f.Status != "" && !strings.EqualFold(string(ev.Status), string(f.Status)) {
		return false
	}
	if f.Category != "" && ev.Category != f.Category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(ev.Name), q) ||
		strings.Contains(strings.ToLower(ev.Description), q) ||
		strings.Contains(strings.ToLower(ev.Organizer), q)
}

// Apply returns the events that pass f, in input order.
func Apply(events []model.Event, f Filter) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if f.Match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Available returns events that still accept attendance.
func Available(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Status.Available() {
			out = append(out, ev)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(events []model.Event) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, ev := range events {
		if ev.Category == "" {
			continue
		}
		if _, ok := seen[ev.Category]; ok {
			continue
		}
		seen[ev.Category] = struct{}{}
		out = append(out, ev.Category)
	}
	sort.Strings(out)
	return out
}

// Stats counts events per status.
func Stats(events []model.Event) model.EventStats {
	st := model.EventStats{Total: len(events)}
	for _, ev := range events {
		switch ev.Status.Canonical() {
		case model.StatusUpcoming:
			st.Upcoming++
		case model.StatusOngoing:
			st.Ongoing++
		case model.StatusCompleted:
			st.Completed++
		case model.StatusCancelled:
			st.Cancelled++
		}
	}
	return st
}

// Find returns the first event with id.
func Find(events []model.Event, id string) (model.Event, int, bool) {
	for i, ev := range events {
		if ev.ID == id {
			return ev, i, true
		}
	}
	return model.Event{}, -1, false
}

// FindByName returns the first event named name.
func FindByName(events []model.Event, name string) (model.Event, bool) {
	for _, ev := range events {
		if ev.Name == name {
			return ev, true
		}
	}
	return model.Event{}, false
}
