package cli

import "errors"

// ErrUnknownFormat is returned for a --format outside table, csv and json.
var ErrUnknownFormat = errors.New("unknown output format")
