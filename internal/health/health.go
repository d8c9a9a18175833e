// Package health serves the liveness and readiness probes. Liveness is
// unconditional; readiness runs the named checkers wired by the app, which
// for this server are the contract store and, when archiving is enabled,
// the audit database.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// readinessTimeout bounds each individual checker per /readyz request.
const readinessTimeout = 5 * time.Second

// Checker is one named readiness probe. Check returns nil when the
// dependency can serve traffic and must honour ctx cancellation.
type Checker struct {
	// Name keys the checker's entry in the /readyz response, e.g.
	// "contract" or "audit".
	Name  string
	Check func(ctx context.Context) error
}

// report is the response body of both probes: an overall status plus the
// per-checker outcomes on /readyz.
type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler answers /healthz and /readyz. The checker set is fixed at
// construction, so the handler is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New builds a handler over the given checkers, evaluated in order.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Register mounts both probe routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz reports liveness. A process able to answer HTTP is alive.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report{Status: "ok"})
}

// Readyz runs every checker and reports 200 only when all pass. Failures
// return 503 with each checker's outcome, so a probe log names the broken
// dependency directly.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	rep, ready := h.evaluate(r.Context())
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, rep)
}

func (h *Handler) evaluate(ctx context.Context) (report, bool) {
	checks := make(map[string]string, len(h.checkers))
	ready := true
	for _, c := range h.checkers {
		cctx, cancel := context.WithTimeout(ctx, readinessTimeout)
		err := c.Check(cctx)
		cancel()
		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			ready = false
			continue
		}
		checks[c.Name] = "ok"
	}
	rep := report{Status: "ok", Checks: checks}
	if !ready {
		rep.Status = "fail"
	}
	return rep, ready
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
