// Package cache keeps the last good copy of remote collections on local storage.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Well-known keys.
const (
	KeyEvents = "events"
	KeyUsers  = "users"
)

// Store is a key-value store of JSON documents.
type Store interface {
	// Get returns the document under key or ErrNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Put replaces the document under key.
	Put(ctx context.Context, key string, value json.RawMessage) error
	// UpdatedAt reports when key was last written or ErrNotFound.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
	Close() error
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return goerr.Wrap(ErrInvalidKey, "empty key")
	}
	return nil
}

// Load decodes the document under key into a slice of T.
func Load[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, goerr.Wrap(ErrStore, "decode cached document", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return out, nil
}

// Save encodes items as a JSON array under key.
func Save[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return goerr.Wrap(ErrStore, "encode document", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return s.Put(ctx, key, raw)
}
