package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tally/internal/domain/summary"
	"github.com/okian/tally/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// OpsDependencies covers refresh, connectivity and headline numbers.
type OpsDependencies interface {
	Refresh(ctx context.Context) (types.RefreshReport, error)
	Ping(ctx context.Context) (json.RawMessage, error)
	Stats(q types.SummaryQuery) (summary.Stats, error)
}

// StatsHandler handles stats, refresh and ping requests.
type StatsHandler struct {
	statsProvider StatsProvider
	ops           OpsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, ops OpsDependencies) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, ops: ops}
}

type statsResponse struct {
	Service map[string]any `json:"service"`
	Summary summary.Stats  `json:"summary"`
}

// HandleStats handles GET /stats requests. Summary filters apply to the
// headline numbers.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	q, err := summaryQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	st, err := h.ops.Stats(q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Service: h.statsProvider.GetStats(), Summary: st})
}

// HandleRefresh handles POST /refresh requests.
func (h *StatsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.ops.Refresh(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandlePing handles GET /ping requests by relaying the backend test payload.
func (h *StatsHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	raw, err := h.ops.Ping(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"backend": raw})
}
