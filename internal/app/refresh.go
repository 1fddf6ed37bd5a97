package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/tally/internal/adapters/cache"
	"github.com/okian/tally/internal/domain/directory"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/normalize"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Collection names used in reports, metrics and logs.
const (
	CollectionEvents  = "events"
	CollectionUsers   = "users"
	CollectionRecords = "records"
)

// Refresh loads events, users and records concurrently. Each collection
// degrades on its own: a failed remote load falls back to the cache and
// otherwise keeps the current copy. Only caller cancellation is an error.
func (s *Service) Refresh(ctx context.Context) (types.RefreshReport, error) {
	start := s.now()
	var report types.RefreshReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Events = loadCollection(gctx, s, CollectionEvents, cache.KeyEvents, s.fetchEvents, s.acceptEvents)
		return nil
	})
	g.Go(func() error {
		report.Users = loadCollection(gctx, s, CollectionUsers, cache.KeyUsers, s.fetchUsers, s.acceptUsers)
		return nil
	})
	g.Go(func() error {
		report.Records = loadCollection(gctx, s, CollectionRecords, "", s.fetchRecords, s.acceptRecords)
		return nil
	})
	_ = g.Wait()

	report.DurationMS = float64(s.now().Sub(start).Microseconds()) / 1000
	metrics.RecordRefreshDuration(report.DurationMS)

	s.mu.Lock()
	s.lastSync = s.now()
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	s.logger.Info(ctx, "refresh complete",
		logger.Int("events", report.Events.Count),
		logger.Int("users", report.Users.Count),
		logger.Int("records", report.Records.Count),
		logger.Float64("ms", report.DurationMS),
	)
	return report, nil
}

// loadCollection runs one remote fetch with cache fallback. cacheKey is empty
// for collections that are not cached.
func loadCollection[T any](
	ctx context.Context,
	s *Service,
	name, cacheKey string,
	fetch func(context.Context) ([]T, error),
	accept func([]T, string, uint64) bool,
) types.LoadResult {
	res := types.LoadResult{Collection: name}
	seq := s.seq.Add(1)

	var (
		items []T
		err   = ErrNoBackend
	)
	if s.backend != nil {
		items, err = fetch(ctx)
	}
	if err == nil && len(items) > 0 {
		res.Source, res.Count = metrics.SourceRemote, len(items)
		s.persist.Lock()
		res.Accepted = accept(items, metrics.SourceRemote, seq)
		if res.Accepted && cacheKey != "" {
			if cerr := cache.Save(ctx, s.store, cacheKey, items); cerr != nil {
				metrics.RecordCacheError(name, "write")
				s.logger.Warn(ctx, "cache write failed", logger.String("collection", name), logger.Error(cerr))
			}
		}
		s.persist.Unlock()
		if !res.Accepted {
			s.logger.Debug(ctx, "stale fetch discarded", logger.String("collection", name))
		}
		metrics.UpdateCollectionSize(name, metrics.SourceRemote, len(items))
		return res
	}
	if err != nil {
		res.Error = err.Error()
		s.logger.Warn(ctx, "remote load failed", logger.String("collection", name), logger.Error(err))
	}

	if cacheKey != "" {
		cached, cerr := cache.Load[T](ctx, s.store, cacheKey)
		switch {
		case cerr == nil && len(cached) > 0:
			metrics.RecordCacheFallback(name)
			res.Source, res.Count = metrics.SourceCache, len(cached)
			res.Accepted = accept(cached, metrics.SourceCache, seq)
			if at, aerr := s.store.UpdatedAt(ctx, cacheKey); aerr == nil {
				res.CachedAt = at.UTC().Format(time.RFC3339)
				s.logger.Info(ctx, "serving cached copy",
					logger.String("collection", name),
					logger.String("cachedAt", res.CachedAt),
				)
			}
			metrics.UpdateCollectionSize(name, metrics.SourceCache, len(cached))
			return res
		case cerr != nil && !errors.Is(cerr, cache.ErrNotFound):
			metrics.RecordCacheError(name, "read")
			s.logger.Warn(ctx, "cache read failed", logger.String("collection", name), logger.Error(cerr))
		}
	}

	// A remote answer with no rows is still authoritative.
	if err == nil {
		res.Source = metrics.SourceRemote
		res.Accepted = accept(items, metrics.SourceRemote, seq)
		metrics.UpdateCollectionSize(name, metrics.SourceRemote, 0)
	}
	return res
}

func (s *Service) fetchEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.backend.Events(ctx)
	if err != nil {
		return nil, err
	}
	return normalize.Events(rows), nil
}

func (s *Service) fetchUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.backend.Users(ctx)
	if err != nil {
		return nil, err
	}
	return normalize.Users(rows), nil
}

func (s *Service) fetchRecords(ctx context.Context) ([]model.AttendanceRecord, error) {
	rows, err := s.backend.Records(ctx)
	if err != nil {
		return nil, err
	}
	return normalize.Records(rows), nil
}

func (s *Service) acceptEvents(items []model.Event, source string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.accept(items, source, seq)
}

func (s *Service) acceptUsers(items []model.User, source string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users.accept(items, source, seq) {
		return false
	}
	s.directory = directory.New(items)
	return true
}

func (s *Service) acceptRecords(items []model.AttendanceRecord, source string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.accept(items, source, seq)
}

// warm seeds events and users from the cache without touching the backend.
func (s *Service) warm(ctx context.Context) {
	seq := s.seq.Add(1)
	if events, err := cache.Load[model.Event](ctx, s.store, cache.KeyEvents); err == nil {
		s.acceptEvents(events, metrics.SourceCache, seq)
		metrics.UpdateCollectionSize(CollectionEvents, metrics.SourceCache, len(events))
	} else if !errors.Is(err, cache.ErrNotFound) {
		metrics.RecordCacheError(CollectionEvents, "read")
		s.logger.Warn(ctx, "cache warm failed", logger.String("collection", CollectionEvents), logger.Error(err))
	}
	if users, err := cache.Load[model.User](ctx, s.store, cache.KeyUsers); err == nil {
		s.acceptUsers(users, metrics.SourceCache, seq)
		metrics.UpdateCollectionSize(CollectionUsers, metrics.SourceCache, len(users))
	} else if !errors.Is(err, cache.ErrNotFound) {
		metrics.RecordCacheError(CollectionUsers, "read")
		s.logger.Warn(ctx, "cache warm failed", logger.String("collection", CollectionUsers), logger.Error(err))
	}
}

// commitEvents applies a local change to the events and caches the result.
// The new list takes a fresh sequence number, so a refresh that fetched
// before the change is discarded rather than dropping it. confirmed marks a
// change the backend acknowledged. change reports false to abort.
func (s *Service) commitEvents(ctx context.Context, confirmed bool, change func([]model.Event) ([]model.Event, bool)) bool {
	s.persist.Lock()
	defer s.persist.Unlock()

	s.mu.Lock()
	items, ok := change(s.events.view())
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.events.items = items
	s.events.seq = s.seq.Add(1)
	if confirmed {
		s.events.source = metrics.SourceRemote
	}
	s.mu.Unlock()

	if err := cache.Save(ctx, s.store, cache.KeyEvents, items); err != nil {
		metrics.RecordCacheError(CollectionEvents, "write")
		s.logger.Warn(ctx, "cache write failed", logger.String("collection", CollectionEvents), logger.Error(err))
	}
	return true
}
