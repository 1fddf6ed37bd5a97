package summary

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// ErrParticipantNotFound is returned when a named participant has no summary.
var ErrParticipantNotFound = errors.New("participant not found")

// Stats are headline numbers for a summary view.
type Stats struct {
	Participants  int     `json:"participants"`
	Events        int     `json:"events"`
	Records       int     `json:"records"`
	AveragePoints float64 `json:"averagePoints"`
}

// Statistics computes headline numbers. Events and records count the full
// collections, participants and the average cover the summaries given.
func Statistics(summaries []model.ParticipantSummary, events []model.Event, records []model.AttendanceRecord) Stats {
	st := Stats{
		Participants: len(summaries),
		Events:       len(events),
		Records:      len(records),
	}
	if st.Participants == 0 {
		return st
	}
	var total float64
	for _, p := range summaries {
		total += p.TotalPoints
	}
	st.AveragePoints = math.Round(total/float64(st.Participants)*10) / 10
	return st
}

// Search keeps summaries whose name, position or department contains term,
// case-insensitively. An empty term returns the input unchanged.
func Search(summaries []model.ParticipantSummary, term string) []model.ParticipantSummary {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return summaries
	}
	out := make([]model.ParticipantSummary, 0, len(summaries))
	for _, p := range summaries {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Position), term) ||
			strings.Contains(strings.ToLower(p.Department), term) {
			out = append(out, p)
		}
	}
	return out
}

// Participant returns one summary with its events ordered by date, newest first.
func Participant(summaries []model.ParticipantSummary, name string, opts Options) (model.ParticipantSummary, error) {
	cal := opts.calendar()
	for _, p := range summaries {
		if p.Name != name {
			continue
		}
		events := make([]model.EventEntry, len(p.Events))
		copy(events, p.Events)
		sort.SliceStable(events, func(i, j int) bool {
			return cal.CompareDates(events[i].Date, events[j].Date) > 0
		})
		p.Events = events
		return p, nil
	}
	return model.ParticipantSummary{}, ErrParticipantNotFound
}

// DetailedRecords returns the filtered records with their resolved points and
// date, newest timestamp first. The per-person limit does not apply.
func DetailedRecords(records []model.AttendanceRecord, events []model.Event, opts Options) []model.DetailedRecord {
	rows := qualify(records, events, opts)
	sortNewestFirst(rows, opts.calendar())
	out := make([]model.DetailedRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.DetailedRecord{
			AttendanceRecord: r.AttendanceRecord,
			EventPoints:      r.points,
			EventDate:        r.date,
		})
	}
	return out
}

// FilterChoices lists the values a caller may filter on.
type FilterChoices struct {
	Events      []string `json:"events"`
	Departments []string `json:"departments"`
}

// FilterOptions returns distinct event names in event order and distinct
// non-empty departments in record order.
func FilterOptions(events []model.Event, records []model.AttendanceRecord) FilterChoices {
	fc := FilterChoices{Events: []string{}, Departments: []string{}}
	seen := make(map[string]struct{})
	for _, ev := range events {
		if _, ok := seen[ev.Name]; ok {
			continue
		}
		seen[ev.Name] = struct{}{}
		fc.Events = append(fc.Events, ev.Name)
	}
	seen = make(map[string]struct{})
	for _, r := range records {
		if r.Department == "" {
			continue
		}
		if _, ok := seen[r.Department]; ok {
			continue
		}
		seen[r.Department] = struct{}{}
		fc.Departments = append(fc.Departments, r.Department)
	}
	return fc
}
