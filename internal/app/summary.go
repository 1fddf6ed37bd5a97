package service

import (
	"io"
	"strconv"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/summary"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/metrics"
)

func (s *Service) options(q types.SummaryQuery) (summary.Options, error) {
	limit := q.Limit
	if limit < 0 {
		limit = s.perPersonLimit
	}
	if limit > s.maxLimit {
		return summary.Options{}, model.Invalid("limit", "must not exceed "+strconv.Itoa(s.maxLimit))
	}
	return summary.Options{
		DateFrom:       q.From,
		DateTo:         q.To,
		Event:          q.Event,
		Department:     q.Department,
		PerPersonLimit: limit,
		Calendar:       s.calendar,
	}, nil
}

// collections returns copies of events and records for lock-free computation.
func (s *Service) collections() ([]model.Event, []model.AttendanceRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.view(), s.records.view()
}

// Summary builds the ranked participant summaries for q.
func (s *Service) Summary(q types.SummaryQuery) ([]model.ParticipantSummary, error) {
	opts, err := s.options(q)
	if err != nil {
		return nil, err
	}
	events, records := s.collections()

	start := time.Now()
	out := summary.Build(records, events, opts)
	metrics.RecordSummaryBuild(float64(time.Since(start).Microseconds())/1000, len(out))

	return summary.Search(out, q.Search), nil
}

// Participant returns one participant's summary with events newest first.
func (s *Service) Participant(name string, q types.SummaryQuery) (model.ParticipantSummary, error) {
	q.Search = ""
	all, err := s.Summary(q)
	if err != nil {
		return model.ParticipantSummary{}, err
	}
	opts, _ := s.options(q)
	return summary.Participant(all, name, opts)
}

// Stats returns headline numbers for the summary selected by q.
func (s *Service) Stats(q types.SummaryQuery) (summary.Stats, error) {
	list, err := s.Summary(q)
	if err != nil {
		return summary.Stats{}, err
	}
	events, records := s.collections()
	return summary.Statistics(list, events, records), nil
}

// DetailedRecords returns the filtered attendance rows, newest first.
func (s *Service) DetailedRecords(q types.SummaryQuery) ([]model.DetailedRecord, error) {
	opts, err := s.options(q)
	if err != nil {
		return nil, err
	}
	events, records := s.collections()
	return summary.DetailedRecords(records, events, opts), nil
}

// Records returns the normalized attendance rows as loaded.
func (s *Service) Records() []model.AttendanceRecord {
	_, records := s.collections()
	return records
}

// FilterOptions lists the event names and departments a caller may filter on.
func (s *Service) FilterOptions() summary.FilterChoices {
	events, records := s.collections()
	return summary.FilterOptions(events, records)
}

// WriteSummaryCSV writes the summary selected by q as CSV.
func (s *Service) WriteSummaryCSV(w io.Writer, q types.SummaryQuery) error {
	list, err := s.Summary(q)
	if err != nil {
		return err
	}
	opts, _ := s.options(q)
	return summary.WriteCSV(w, list, opts)
}
