// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tally/internal/adapters/cache"
	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/domain/caldate"
	"github.com/okian/tally/internal/domain/dedupe"
	"github.com/okian/tally/internal/domain/directory"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
)

// Backend is the spreadsheet web app. *sheets.Client implements it.
type Backend interface {
	Events(ctx context.Context) ([]model.RemoteRecord, error)
	Users(ctx context.Context) ([]model.RemoteRecord, error)
	Records(ctx context.Context) ([]model.RemoteRecord, error)
	AddRecord(ctx context.Context, s model.Submission) (sheets.WriteResult, error)
	AddEvent(ctx context.Context, ev model.Event) (sheets.WriteResult, error)
	UpdateEvent(ctx context.Context, ev model.Event) (sheets.WriteResult, error)
	Test(ctx context.Context) (json.RawMessage, error)
}

// Service holds the reconciled collections and serves every read and write.
type Service struct {
	mu sync.RWMutex
	// persist orders every change to a cached collection with its cache write.
	persist sync.Mutex

	// Core components
	backend  Backend
	store    cache.Store
	deduper  dedupe.Deduper
	calendar *caldate.Calendar

	// Configuration
	perPersonLimit  int
	maxLimit        int
	refreshInterval time.Duration
	dedupeSize      int
	dedupeWindow    time.Duration
	now             func() time.Time

	// State
	events    snapshot[model.Event]
	users     snapshot[model.User]
	records   snapshot[model.AttendanceRecord]
	directory *directory.Directory
	seq       atomic.Uint64
	lastSync  time.Time

	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the local cache. Defaults to an in-memory store.
func WithStore(store cache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCalendar sets the location used to resolve dates.
func WithCalendar(cal *caldate.Calendar) Option {
	return func(s *Service) {
		if cal != nil {
			s.calendar = cal
		}
	}
}

// WithPerPersonLimit sets the default cap on records counted per participant.
func WithPerPersonLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.perPersonLimit = n
		}
	}
}

// WithMaxSummaryLimit bounds the per-person limit a caller may ask for.
func WithMaxSummaryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithRefreshInterval enables a periodic refresh after Start.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithDedupeSize sets the size of the submission tracker.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDedupeWindow sets how long a submission key suppresses repeats.
func WithDedupeWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.dedupeWindow = d
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over backend. A nil backend leaves the service
// serving whatever the cache holds.
func New(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend:        backend,
		calendar:       caldate.New(nil),
		perPersonLimit: 25,
		maxLimit:       1000,
		dedupeSize:     10_000,
		dedupeWindow:   time.Minute,
		now:            time.Now,
		directory:      directory.New(nil),
		logger:         logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = cache.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
		dedupe.WithWindow(s.dedupeWindow),
		dedupe.WithClock(s.now),
	)
	return s
}

// Start warms the collections from the cache and, when configured, begins
// the periodic refresh loop. It does not contact the backend.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting tally service...")
	s.warm(ctx)

	if s.refreshInterval > 0 {
		loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.mu.Lock()
		s.cancel = cancel
		s.mu.Unlock()
		s.wg.Add(1)
		go s.refreshLoop(loopCtx)
	}

	s.logger.Info(ctx, "tally service started",
		logger.Int("perPersonLimit", s.perPersonLimit),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("refreshInterval", s.refreshInterval.String()),
	)
	return nil
}

// Stop ends the refresh loop and closes the cache.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping tally service...")
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "close cache", logger.Error(err))
	}
	s.logger.Info(context.Background(), "tally service stopped")
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn(ctx, "periodic refresh failed", logger.Error(err))
			}
		}
	}
}

// Ping performs the backend connectivity test.
func (s *Service) Ping(ctx context.Context) (json.RawMessage, error) {
	if s.backend == nil {
		return nil, ErrNoBackend
	}
	return s.backend.Test(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"events":         len(s.events.items),
		"eventsSource":   s.events.source,
		"users":          len(s.users.items),
		"usersSource":    s.users.source,
		"records":        len(s.records.items),
		"recordsSource":  s.records.source,
		"perPersonLimit": s.perPersonLimit,
		"dedupeEntries":  s.deduper.Size(),
	}
	if !s.lastSync.IsZero() {
		stats["lastRefresh"] = s.lastSync.UTC().Format(time.RFC3339)
	}
	return stats
}
