package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/domain/catalog"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/normalize"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Events returns the events passing f.
func (s *Service) Events(f catalog.Filter) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Apply(s.events.items, f)
}

// AvailableEvents returns events that still accept attendance.
func (s *Service) AvailableEvents() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Available(s.events.items)
}

// EventStats counts events by status.
func (s *Service) EventStats() model.EventStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Stats(s.events.items)
}

// Categories lists the distinct event categories.
func (s *Service) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Categories(s.events.items)
}

// Event returns one event by id.
func (s *Service) Event(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, _, ok := catalog.Find(s.events.items, id)
	if !ok {
		return model.Event{}, goerr.Wrap(ErrEventNotFound, "get event", goerr.V("id", id))
	}
	return ev, nil
}

func validateEvent(ev model.Event) error {
	if strings.TrimSpace(ev.Name) == "" {
		return model.Invalid("name", "required")
	}
	if ev.Points < 0 {
		return model.Invalid("points", "must not be negative")
	}
	return nil
}

func (s *Service) recordEventWrite(ctx context.Context, op string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, sheets.ErrRejected):
		outcome = metrics.OutcomeRejected
	case errors.Is(err, sheets.ErrMalformedResponse):
		outcome = metrics.OutcomeMalformed
	default:
		outcome = metrics.OutcomeTransport
	}
	metrics.RecordEventWrite(op, outcome)
	if err != nil {
		s.logger.Warn(ctx, "event write failed", logger.String("op", op), logger.Error(err))
	}
}

// CreateEvent adds an event remotely and, on success, to the local copy and
// cache. The backend's id is kept; a UUID is used when none comes back.
func (s *Service) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	ev.Name = strings.TrimSpace(ev.Name)
	if err := validateEvent(ev); err != nil {
		return model.Event{}, err
	}
	ev.Status = ev.Status.Canonical()
	if ev.Status == model.StatusNone {
		ev.Status = model.StatusActive
	}
	if strings.TrimSpace(ev.Category) == "" {
		ev.Category = normalize.DefaultCategory
	}
	if strings.TrimSpace(ev.Organizer) == "" {
		ev.Organizer = normalize.DefaultOrganizer
	}
	if s.backend == nil {
		return model.Event{}, ErrNoBackend
	}

	res, err := s.backend.AddEvent(ctx, ev)
	s.recordEventWrite(ctx, "create", err)
	if err != nil {
		return model.Event{}, err
	}

	ev.ID = res.ID
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	s.commitEvents(ctx, true, func(items []model.Event) ([]model.Event, bool) {
		return append(items, ev), true
	})

	s.logger.Info(ctx, "event created", logger.String("id", ev.ID), logger.String("name", ev.Name))
	return ev, nil
}

// UpdateEvent rewrites an existing event remotely and locally.
func (s *Service) UpdateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	ev.Name = strings.TrimSpace(ev.Name)
	ev.Status = ev.Status.Canonical()
	if strings.TrimSpace(ev.ID) == "" {
		return model.Event{}, model.Invalid("id", "required")
	}
	if err := validateEvent(ev); err != nil {
		return model.Event{}, err
	}
	if _, err := s.Event(ev.ID); err != nil {
		return model.Event{}, err
	}
	if s.backend == nil {
		return model.Event{}, ErrNoBackend
	}

	_, err := s.backend.UpdateEvent(ctx, ev)
	s.recordEventWrite(ctx, "update", err)
	if err != nil {
		return model.Event{}, err
	}
	ev.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	s.commitEvents(ctx, true, func(items []model.Event) ([]model.Event, bool) {
		_, idx, ok := catalog.Find(items, ev.ID)
		if ok {
			items[idx] = ev
		}
		return items, ok
	})

	s.logger.Info(ctx, "event updated", logger.String("id", ev.ID))
	return ev, nil
}

// DeleteEvent removes an event from the local copy and cache only. The next
// remote refresh restores it if the sheet still holds it.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	removed := s.commitEvents(ctx, false, func(items []model.Event) ([]model.Event, bool) {
		_, idx, ok := catalog.Find(items, id)
		if !ok {
			return nil, false
		}
		return append(items[:idx], items[idx+1:]...), true
	})
	if !removed {
		return goerr.Wrap(ErrEventNotFound, "delete event", goerr.V("id", id))
	}
	metrics.RecordEventWrite("delete", metrics.OutcomeSuccess)
	s.logger.Info(ctx, "event deleted locally", logger.String("id", id))
	return nil
}
