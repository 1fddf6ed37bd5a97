package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
)

// RecordDependencies covers the directory and attendance submission.
type RecordDependencies interface {
	LookupUser(code string) (model.User, error)
	Records() []model.AttendanceRecord
	SubmitRecord(ctx context.Context, req types.SubmitRequest) (types.SubmitResult, error)
}

// RecordsHandler handles directory and attendance requests.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleUser handles GET /users/{code} requests.
func (h *RecordsHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.LookupUser(pathParam(r, "code"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleList handles GET /records requests.
func (h *RecordsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Records())
}

// HandleSubmit handles POST /records requests.
func (h *RecordsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_record"
	var req types.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.SubmitRecord(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
