package api

import "net/http"

// StatsProvider exposes a snapshot of service counters for /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service statistics snapshot.
type StatsHandler struct {
	provider StatsProvider
}

func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
