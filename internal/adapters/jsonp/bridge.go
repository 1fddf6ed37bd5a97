// Package jsonp implements the callback-wrapped request bridge used by the
// spreadsheet web app, which answers `<callback>(<json>)` instead of plain JSON.
//
// Every Request registers a one-shot handler under a unique callback name,
// loads the resource with `callback=<name>` appended, and resolves with the
// payload the resource hands to that handler. The registry belongs to the
// Bridge value; there is no process-wide state.
package jsonp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// DefaultTimeout applies when neither the call nor the Bridge sets one.
const DefaultTimeout = 15 * time.Second

// CallbackPrefix starts every generated callback name.
const CallbackPrefix = "jsonp_callback_"

type handler func(json.RawMessage)

type outcome struct {
	payload json.RawMessage
	err     error
}

// Bridge issues one-shot callback-wrapped requests.
type Bridge struct {
	loader  Loader
	timeout time.Duration
	log     logger.Logger
	newID   func() string

	mu        sync.Mutex
	callbacks map[string]handler            // registered callback names
	inflight  map[string]context.CancelFunc // resources still loading
}

// New constructs a Bridge over loader.
func New(loader Loader, opts ...Option) *Bridge {
	b := &Bridge{
		loader:    loader,
		timeout:   DefaultTimeout,
		log:       logger.Nop(),
		newID:     newCallbackID,
		callbacks: make(map[string]handler),
		inflight:  make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newCallbackID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", CallbackPrefix, time.Now().UnixNano(), suffix)
}

// WithCallback appends callback=<id> to rawURL, choosing '&' when a query already exists.
func WithCallback(rawURL, id string) string {
	sep := "?"
	switch {
	case strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&"):
		sep = ""
	case strings.Contains(rawURL, "?"):
		sep = "&"
	}
	return rawURL + sep + "callback=" + id
}

// Request loads rawURL with a fresh callback and returns the payload handed to it.
// A non-positive timeout uses the Bridge default. The registration and the
// in-flight load are released before Request returns, whatever the outcome.
func (b *Bridge) Request(ctx context.Context, rawURL string, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = b.timeout
	}

	result := make(chan outcome, 1)
	var once sync.Once
	resolve := func(o outcome) {
		once.Do(func() { result <- o })
	}

	loadCtx, cancel := context.WithCancel(ctx)
	id := b.register(func(p json.RawMessage) { resolve(outcome{payload: p}) }, cancel)
	defer b.release(id)

	target := WithCallback(rawURL, id)
	b.log.Debug(ctx, "bridge request", logger.String("callback", id))
	go b.load(loadCtx, id, target, resolve)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-result:
		return o.payload, o.err
	case <-timer.C:
		b.log.Warn(ctx, "bridge request timed out", logger.String("callback", id), logger.Any("timeout", timeout))
		return nil, goerr.Wrap(ErrTimeout, "no callback invocation", goerr.V("callback", id), goerr.V("timeout", timeout.String()))
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, goerr.Wrap(ErrTimeout, "caller deadline exceeded", goerr.V("callback", id))
		}
		return nil, goerr.Wrap(ctx.Err(), "bridge request canceled", goerr.V("callback", id))
	}
}

func (b *Bridge) load(ctx context.Context, id, target string, resolve func(outcome)) {
	body, err := b.loader.Load(ctx, target)
	if ctx.Err() != nil {
		// released or canceled by the caller; Request reports why
		return
	}
	if err != nil {
		resolve(outcome{err: goerr.Wrap(ErrTransport, "resource load failed", goerr.V("callback", id), goerr.V("cause", err.Error()))})
		return
	}
	payload, ok := invocation(body, id)
	if !ok {
		resolve(outcome{err: goerr.Wrap(ErrTransport, "resource did not invoke the callback", goerr.V("callback", id))})
		return
	}
	b.Deliver(id, payload)
}

// Deliver invokes the handler registered under id, as the loaded resource
// would. The handler runs at most once; a delivery for an unknown or already
// released id is dropped and reported false.
func (b *Bridge) Deliver(id string, payload json.RawMessage) bool {
	b.mu.Lock()
	h, ok := b.callbacks[id]
	if ok {
		delete(b.callbacks, id)
		if cancel, loading := b.inflight[id]; loading {
			cancel()
			delete(b.inflight, id)
		}
	}
	pending := len(b.callbacks)
	b.mu.Unlock()

	if !ok {
		metrics.RecordBridgeLateDelivery()
		b.log.Debug(context.Background(), "dropping late callback delivery", logger.String("callback", id))
		return false
	}
	metrics.UpdateBridgePending(pending)
	h(payload)
	return true
}

// register stores h under a fresh, unused id and tracks the load cancel func.
func (b *Bridge) register(h handler, cancel context.CancelFunc) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.newID()
	for _, taken := b.callbacks[id]; taken; _, taken = b.callbacks[id] {
		id = b.newID()
	}
	b.callbacks[id] = h
	b.inflight[id] = cancel
	metrics.UpdateBridgePending(len(b.callbacks))
	return id
}

// release deregisters id and aborts its load if still running.
func (b *Bridge) release(id string) {
	b.mu.Lock()
	delete(b.callbacks, id)
	cancel, loading := b.inflight[id]
	delete(b.inflight, id)
	pending := len(b.callbacks)
	b.mu.Unlock()

	if loading {
		cancel()
	}
	metrics.UpdateBridgePending(pending)
}

// Pending returns the number of callback registrations awaiting a payload.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.callbacks)
}

// InFlight returns the number of resource loads not yet released.
func (b *Bridge) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}
