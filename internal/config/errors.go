package config

import "errors"

var (
	// ErrInvalidConfig marks a value rejected by Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, environment or decode failure while layering sources.
	ErrLoadConfig = errors.New("load config failed")
)
