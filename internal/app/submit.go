package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/domain/catalog"
	"github.com/okian/tally/internal/domain/dedupe"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// LookupUser resolves a participant by PS code.
func (s *Service) LookupUser(code string) (model.User, error) {
	s.mu.RLock()
	dir := s.directory
	s.mu.RUnlock()
	return dir.Lookup(code)
}

// SubmitRecord validates the request, resolves the participant and an event
// still open for attendance, and appends one attendance row to the backend.
// Repeating the same (name, event, date) within the dedupe window returns
// ErrDuplicateSubmission without a remote call.
func (s *Service) SubmitRecord(ctx context.Context, req types.SubmitRequest) (types.SubmitResult, error) {
	code := strings.TrimSpace(req.PSCode)
	if code == "" {
		return types.SubmitResult{}, model.Invalid("psCode", "required")
	}
	eventRef := strings.TrimSpace(req.Event)
	if eventRef == "" {
		return types.SubmitResult{}, model.Invalid("event", "required")
	}

	user, err := s.LookupUser(code)
	if err != nil {
		return types.SubmitResult{}, goerr.Wrap(err, "lookup participant", goerr.V("psCode", code))
	}
	if strings.TrimSpace(user.Name) == "" {
		return types.SubmitResult{}, model.Invalid("name", "participant has no name")
	}

	ev, ok := s.resolveEvent(eventRef)
	if !ok {
		return types.SubmitResult{}, goerr.Wrap(ErrEventNotFound, "resolve event", goerr.V("event", eventRef))
	}
	if !ev.Status.Available() {
		return types.SubmitResult{}, goerr.Wrap(model.Invalid("event", "not open for attendance"), "resolve event",
			goerr.V("event", eventRef), goerr.V("status", string(ev.Status)))
	}

	date := s.calendar.Canonical(ev.Date)
	if date == "" {
		date = s.calendar.Format(s.now())
	}
	sub := model.Submission{
		Name:       user.Name,
		Position:   user.Position,
		Department: user.Department,
		Event:      ev.Name,
		Points:     ev.Points,
		Date:       date,
	}

	if s.backend == nil {
		return types.SubmitResult{}, ErrNoBackend
	}

	key := dedupe.Key(sub.Name, sub.Event, sub.Date)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordSubmission(metrics.OutcomeDuplicate)
		s.logger.Debug(ctx, "duplicate submission suppressed", logger.String("key", key))
		return types.SubmitResult{Submission: sub}, goerr.Wrap(ErrDuplicateSubmission, "submit", goerr.V("name", sub.Name), goerr.V("event", sub.Event))
	}

	res, err := s.backend.AddRecord(ctx, sub)
	if err != nil {
		switch {
		case errors.Is(err, sheets.ErrDuplicate):
			// The row exists remotely; keep the key so repeats stay local.
			metrics.RecordSubmission(metrics.OutcomeDuplicate)
		case errors.Is(err, sheets.ErrRejected):
			s.deduper.Unrecord(ctx, key)
			metrics.RecordSubmission(metrics.OutcomeRejected)
		default:
			s.deduper.Unrecord(ctx, key)
			metrics.RecordSubmission(metrics.OutcomeTransport)
		}
		s.logger.Warn(ctx, "submission failed",
			logger.String("name", sub.Name),
			logger.String("event", sub.Event),
			logger.Error(err),
		)
		return types.SubmitResult{Submission: sub}, err
	}

	metrics.RecordSubmission(metrics.OutcomeSuccess)
	s.appendRecord(model.AttendanceRecord{
		Name:       sub.Name,
		Position:   sub.Position,
		Department: sub.Department,
		Event:      sub.Event,
		Points:     float64(sub.Points),
		Date:       sub.Date,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	})
	s.logger.Info(ctx, "attendance recorded",
		logger.String("name", sub.Name),
		logger.String("event", sub.Event),
		logger.String("date", sub.Date),
	)
	return types.SubmitResult{Submission: sub, Message: res.Message}, nil
}

// resolveEvent matches ref against event ids first, then names.
func (s *Service) resolveEvent(ref string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ev, _, ok := catalog.Find(s.events.items, ref); ok {
		return ev, true
	}
	return catalog.FindByName(s.events.items, ref)
}

// appendRecord adds a confirmed row locally until the next refresh replaces it.
func (s *Service) appendRecord(r model.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.AttendanceRecord, len(s.records.items), len(s.records.items)+1)
	copy(items, s.records.items)
	s.records.items = append(items, r)
}
