// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a plain ping function.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Handler serves liveness and readiness probes. Readiness pings every
// registered dependency and reports 503 once draining starts.
type Handler struct {
	checkers map[string]Checker
	draining atomic.Bool
	now      func() time.Time
}

func NewHandler(checkers map[string]Checker) *Handler {
	return &Handler{
		checkers: checkers,
		now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "draining",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.runChecks(ctx)

	status, code := "ok", http.StatusOK
	for _, check := range checks {
		if !check.Healthy {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, code, ReadinessResponse{Status: status, Checks: checks})
}

// SetDraining makes readiness fail so load balancers stop routing new
// traffic before the server shuts down.
func (h *Handler) SetDraining(draining bool) {
	h.draining.Store(draining)
}

func (h *Handler) runChecks(ctx context.Context) []Check {
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make([]Check, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = h.check(ctx, name, h.checkers[name])
		}()
	}
	wg.Wait()

	return checks
}

func (h *Handler) check(ctx context.Context, name string, c Checker) Check {
	check := Check{Name: name, Healthy: true}
	if c == nil {
		check.Healthy = false
		check.Message = "not configured"
		return check
	}

	start := h.now()
	err := c.Ping(ctx)
	check.Latency = h.now().Sub(start).String()
	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}

	return check
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string  `json:"status"`
	Checks []Check `json:"checks"`
}

type Check struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
