package api

import (
	"io"
	"net/http"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/summary"
	"github.com/okian/tally/internal/domain/types"
)

// SummaryDependencies covers the aggregated views.
type SummaryDependencies interface {
	Summary(q types.SummaryQuery) ([]model.ParticipantSummary, error)
	Participant(name string, q types.SummaryQuery) (model.ParticipantSummary, error)
	DetailedRecords(q types.SummaryQuery) ([]model.DetailedRecord, error)
	FilterOptions() summary.FilterChoices
	WriteSummaryCSV(w io.Writer, q types.SummaryQuery) error
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleSummary handles GET /summary requests.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := summaryQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	list, err := h.deps.Summary(q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleParticipant handles GET /participants/{name} requests.
func (h *SummaryHandler) HandleParticipant(w http.ResponseWriter, r *http.Request) {
	q, err := summaryQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.Participant(pathParam(r, "name"), q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRecords handles GET /summary/records requests.
func (h *SummaryHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	q, err := summaryQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows, err := h.deps.DetailedRecords(q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleFilters handles GET /summary/filters requests.
func (h *SummaryHandler) HandleFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.FilterOptions())
}

// HandleCSV handles GET /summary.csv requests.
func (h *SummaryHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	q, err := summaryQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if _, err := h.deps.Summary(q); err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-summary.csv"`)
	// The query was validated above; a write error means the client went away.
	_ = h.deps.WriteSummaryCSV(w, q)
}
