package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
)

// CalculationsHandler handles calculation requests, sync and async.
type CalculationsHandler struct {
	deps        Dependencies
	syncTimeout time.Duration
}

// NewCalculationsHandler creates a new calculations handler.
func NewCalculationsHandler(deps Dependencies, syncTimeout time.Duration) *CalculationsHandler {
	if syncTimeout <= 0 {
		syncTimeout = defaultSyncTimeout
	}
	return &CalculationsHandler{deps: deps, syncTimeout: syncTimeout}
}

// decodeRequest reads and sanity-checks one calculation envelope. Domain
// validation stays in the engine; only transport-level problems are
// rejected here.
func decodeRequest(r *http.Request) (calc.Request, error) {
	var req calc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return calc.Request{}, err
	}
	if !req.Type.Valid() {
		return calc.Request{}, errors.New("unknown calculation type " + string(req.Type))
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return req, nil
}

// HandleCalculate handles POST /calculations requests: the request rides
// the same queue as async work, but the handler waits for the reply.
func (h *CalculationsHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Buffered so a worker replying after the deadline never blocks.
	reply := make(chan calc.Response, 1)
	if ok := h.deps.Submit(r.Context(), req, reply); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	select {
	case resp := <-reply:
		writeJSON(w, http.StatusOK, resp)
	case <-time.After(h.syncTimeout):
		writeError(w, http.StatusGatewayTimeout, "timeout", NewKind(op, ErrTimeout))
	case <-r.Context().Done():
		// Client went away; the late reply lands in the buffer and is
		// collected with the channel.
	}
}

// HandleSubmitAsync handles POST /calculations/async requests.
func (h *CalculationsHandler) HandleSubmitAsync(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_async"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.ID) {
		writeJSON(w, http.StatusOK, ackResponse{ID: req.ID, Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Submit(r.Context(), req, nil); !ok {
		// Roll back the "seen" status since enqueue failed.
		h.deps.Unrecord(r.Context(), req.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{ID: req.ID, Status: "accepted"})
}

// HandleGetCalculation handles GET /calculations/{id} requests. A pending,
// unknown, or evicted id all read as 404; callers retry until the result
// appears or they give up.
func (h *CalculationsHandler) HandleGetCalculation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_calculation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/calculations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	resp, err := h.deps.Result(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
