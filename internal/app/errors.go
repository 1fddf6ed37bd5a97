package service

import "errors"

// Sentinel kinds returned by the Service.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrDuplicateSubmission = errors.New("submission already recorded")
	ErrNoBackend           = errors.New("no backend configured")
)
