package healthprobe

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// HealthChecker provides health and readiness checks driven by scan cycles.
type HealthChecker struct {
	startTime  time.Time
	staleAfter time.Duration
	now        func() time.Time
	ready      atomic.Bool
	lastCycle  atomic.Int64 // unix nanos of the last completed cycle, 0 = none
	cycles     atomic.Uint64
}

// New creates a new HealthChecker. A zero staleAfter disables staleness checks.
func New(staleAfter time.Duration) *HealthChecker {
	return &HealthChecker{
		startTime:  time.Now(),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// MarkCycle records a completed scan cycle and marks the application ready.
func (h *HealthChecker) MarkCycle(at time.Time) {
	h.lastCycle.Store(at.UnixNano())
	h.cycles.Add(1)
	h.ready.Store(true)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string     `json:"status"`
	Uptime    string     `json:"uptime"`
	Cycles    uint64     `json:"cycles"`
	LastCycle *time.Time `json:"last_cycle,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Returns 503 when no cycle has completed within staleAfter.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.snapshot("healthy")

		status := http.StatusOK
		if h.stale() {
			resp.Status = "stale"
			resp.Message = "no scan cycle completed within " + h.staleAfter.String()
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK after the first completed cycle, 503 Service Unavailable before.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			resp := h.snapshot("not_ready")
			resp.Message = "first scan cycle has not completed"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		writeJSON(w, http.StatusOK, h.snapshot("ready"))
	}
}

func (h *HealthChecker) stale() bool {
	if h.staleAfter <= 0 {
		return false
	}

	since := h.startTime
	if nanos := h.lastCycle.Load(); nanos != 0 {
		since = time.Unix(0, nanos)
	}

	return h.now().Sub(since) > h.staleAfter
}

func (h *HealthChecker) snapshot(status string) HealthResponse {
	resp := HealthResponse{
		Status: status,
		Uptime: h.now().Sub(h.startTime).Round(time.Second).String(),
		Cycles: h.cycles.Load(),
	}
	if nanos := h.lastCycle.Load(); nanos != 0 {
		last := time.Unix(0, nanos).UTC()
		resp.LastCycle = &last
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
