package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrNotFound   = errors.New("cache key not found")
	ErrInvalidKey = errors.New("invalid cache key")
	ErrStore      = errors.New("cache store failure")
)
