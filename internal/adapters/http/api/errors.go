package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/tally/internal/adapters/jsonp"
	"github.com/okian/tally/internal/adapters/sheets"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/directory"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/summary"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// WrapKind tags err with op and a sentinel kind; both stay matchable with errors.Is.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns a kind-only error for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// classify maps an error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, directory.ErrUserNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, summary.ErrParticipantNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, sheets.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, sheets.ErrRejected):
		return http.StatusUnprocessableEntity, "rejected"
	case errors.Is(err, jsonp.ErrTimeout):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, jsonp.ErrTransport),
		errors.Is(err, sheets.ErrMalformedResponse):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, service.ErrNoBackend):
		return http.StatusServiceUnavailable, "no_backend"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
