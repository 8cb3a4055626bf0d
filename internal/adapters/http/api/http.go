// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
	"github.com/venuelab/stagecraft/internal/domain/dedupe"
)

// defaultSyncTimeout bounds a synchronous calculation when no option
// overrides it.
const defaultSyncTimeout = 10 * time.Second

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Submit pushes a calculation into the queue. A non-nil reply channel
	// receives the response when the caller is waiting; a nil one routes
	// the response to the result store. Returns false on backpressure.
	Submit(ctx context.Context, req calc.Request, reply chan<- calc.Response) bool

	// Result returns a stored async response by request id.
	Result(ctx context.Context, id string) (calc.Response, error)
}

// Server wires HTTP routes for the calculation API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	calculationsHandler *CalculationsHandler
	wsHandler           *WSHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{syncTimeout: defaultSyncTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		calculationsHandler: NewCalculationsHandler(deps, cfg.syncTimeout),
		wsHandler:           NewWSHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/calculations", MetricsMiddleware(s.calculationsHandler.HandleCalculate, "calculations"))
	mux.HandleFunc("/calculations/async", MetricsMiddleware(s.calculationsHandler.HandleSubmitAsync, "calculations_async"))
	mux.HandleFunc("/calculations/", MetricsMiddleware(s.calculationsHandler.HandleGetCalculation, "calculations_get"))
	mux.HandleFunc("/ws", s.wsHandler.HandleWS)
}

// serverConfig collects option-tunable server settings.
type serverConfig struct {
	syncTimeout time.Duration
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

// WithSyncTimeout bounds how long POST /calculations waits for a result.
func WithSyncTimeout(d time.Duration) ServerOption {
	return func(c *serverConfig) {
		if d > 0 {
			c.syncTimeout = d
		}
	}
}

type ackResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
