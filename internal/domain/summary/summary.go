// Package summary joins attendance records to events and aggregates
// per-participant totals.
//
// Every call rebuilds the result from its inputs; nothing is cached between
// calls and no package state is shared.
package summary

import (
	"sort"

	"github.com/okian/tally/internal/domain/caldate"
	"github.com/okian/tally/internal/domain/model"
)

// Options controls filtering and limiting. The zero value aggregates everything.
type Options struct {
	// DateFrom and DateTo bound the resolved event date, inclusive. Empty is open.
	DateFrom string
	DateTo   string
	// Event keeps only records of this exact event name.
	Event string
	// Department keeps only records of this exact department.
	Department string
	// PerPersonLimit caps how many of a participant's most recent records
	// contribute. Zero or negative means unlimited.
	PerPersonLimit int
	// Calendar resolves dates and timestamps. Nil means UTC.
	Calendar *caldate.Calendar
}

func (o Options) calendar() *caldate.Calendar {
	if o.Calendar == nil {
		return caldate.New(nil)
	}
	return o.Calendar
}

// resolved is a record joined to its event.
type resolved struct {
	model.AttendanceRecord
	points float64
	date   string
}

// eventIndex maps an event name to the first event carrying it.
type eventIndex map[string]model.Event

func indexEvents(events []model.Event) eventIndex {
	idx := make(eventIndex, len(events))
	for _, ev := range events {
		if _, ok := idx[ev.Name]; !ok {
			idx[ev.Name] = ev
		}
	}
	return idx
}

func (idx eventIndex) resolve(r model.AttendanceRecord) resolved {
	if ev, ok := idx[r.Event]; ok {
		return resolved{AttendanceRecord: r, points: float64(ev.Points), date: ev.Date}
	}
	return resolved{AttendanceRecord: r, date: r.Date}
}

// qualify joins and filters records. Records without a name or an event are dropped.
func qualify(records []model.AttendanceRecord, events []model.Event, opts Options) []resolved {
	cal := opts.calendar()
	idx := indexEvents(events)

	out := make([]resolved, 0, len(records))
	for _, r := range records {
		if r.Name == "" || r.Event == "" {
			continue
		}
		rr := idx.resolve(r)
		if !cal.InRange(rr.date, opts.DateFrom, opts.DateTo) {
			continue
		}
		if opts.Event != "" && r.Event != opts.Event {
			continue
		}
		if opts.Department != "" && r.Department != opts.Department {
			continue
		}
		out = append(out, rr)
	}
	return out
}

// sortNewestFirst orders rs by timestamp descending, keeping input order on ties.
func sortNewestFirst(rs []resolved, cal *caldate.Calendar) {
	sort.SliceStable(rs, func(i, j int) bool {
		return cal.CompareTimestamps(rs[i].Timestamp, rs[j].Timestamp) > 0
	})
}

// Build returns participant summaries ranked by total points descending,
// then name ascending. It never fails: malformed rows simply do not qualify.
func Build(records []model.AttendanceRecord, events []model.Event, opts Options) []model.ParticipantSummary {
	cal := opts.calendar()
	rows := qualify(records, events, opts)
	if opts.PerPersonLimit > 0 {
		sortNewestFirst(rows, cal)
	}

	byName := make(map[string]*model.ParticipantSummary)
	order := make([]string, 0)
	for _, r := range rows {
		p, ok := byName[r.Name]
		if !ok {
			p = &model.ParticipantSummary{
				Name:       r.Name,
				Position:   r.Position,
				Department: r.Department,
				Events:     []model.EventEntry{},
			}
			byName[r.Name] = p
			order = append(order, r.Name)
		}
		if opts.PerPersonLimit > 0 && len(p.Events) >= opts.PerPersonLimit {
			continue
		}
		p.Events = append(p.Events, model.EventEntry{
			EventName: r.Event,
			Date:      r.date,
			Points:    r.points,
			Timestamp: r.Timestamp,
		})
		p.AttendanceCount++
		p.TotalPoints += r.points
		if r.date != "" && (p.LastAttendance == "" || cal.CompareDates(r.date, p.LastAttendance) > 0) {
			p.LastAttendance = r.date
		}
	}

	out := make([]model.ParticipantSummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	Rank(out)
	return out
}

// Rank sorts summaries by total points descending, then name ascending.
func Rank(s []model.ParticipantSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].TotalPoints != s[j].TotalPoints {
			return s[i].TotalPoints > s[j].TotalPoints
		}
		return s[i].Name < s[j].Name
	})
}
