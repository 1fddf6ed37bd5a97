package sheets

import (
	"errors"
)

// Sentinel error kinds returned by the spreadsheet client.
var (
	// ErrMalformedResponse means the payload matched none of the known envelopes.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrRejected means the backend answered but refused the write.
	ErrRejected = errors.New("backend rejected request")
	// ErrDuplicate means the backend already holds an identical attendance row.
	ErrDuplicate = errors.New("duplicate attendance record")
)
