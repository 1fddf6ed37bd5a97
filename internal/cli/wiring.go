package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/okian/tally/internal/adapters/cache"
	"github.com/okian/tally/internal/adapters/jsonp"
	"github.com/okian/tally/internal/adapters/sheets"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/caldate"
)

// openService builds the cache, bridge, client and service from the loaded
// config. With no script_url the service runs from the cache alone.
func (e *env) openService(ctx context.Context) (*service.Service, error) {
	cfg := e.cfg
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var store cache.Store
	if cfg.CachePath == "" {
		store = cache.NewMemoryStore()
	} else {
		sq, err := cache.OpenSQLite(ctx, cfg.CachePath)
		if err != nil {
			return nil, goerr.Wrap(err, "open cache", goerr.V("path", cfg.CachePath))
		}
		store = sq
	}

	var backend service.Backend
	if cfg.ScriptURL != "" {
		bridge := jsonp.New(jsonp.NewHTTPLoader(nil),
			jsonp.WithDefaultTimeout(cfg.ReadTimeout()),
			jsonp.WithLogger(e.log.Named("jsonp")),
		)
		backend = sheets.New(cfg.ScriptURL, bridge,
			sheets.WithReadTimeout(cfg.ReadTimeout()),
			sheets.WithWriteTimeout(cfg.WriteTimeout()),
			sheets.WithTestTimeout(cfg.TestTimeout()),
			sheets.WithLogger(e.log.Named("sheets")),
		)
	} else {
		e.log.Warn(ctx, "script_url is empty; serving from the local cache only")
	}

	return service.New(backend,
		service.WithStore(store),
		service.WithCalendar(caldate.New(loc)),
		service.WithPerPersonLimit(cfg.PerPersonLimit),
		service.WithMaxSummaryLimit(cfg.MaxSummaryLimit),
		service.WithRefreshInterval(cfg.RefreshInterval()),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithDedupeWindow(cfg.DedupeWindow()),
		service.WithLogger(e.log.Named("service")),
	), nil
}

// loaded starts a service and performs one refresh. The caller must Stop it.
func (e *env) loaded(ctx context.Context) (*service.Service, error) {
	svc, err := e.openService(ctx)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		return nil, goerr.Wrap(err, "start service")
	}
	if _, err := svc.Refresh(ctx); err != nil {
		svc.Stop()
		return nil, goerr.Wrap(err, "refresh")
	}
	return svc, nil
}
