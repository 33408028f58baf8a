// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Dependency is one backing service probed by /readyz.
type Dependency struct {
	Name    string
	Checker Checker
}

type phase int32

const (
	phaseServing phase = iota
	phaseNotReady
	phaseDraining
)

var phaseStatus = map[phase]string{
	phaseNotReady: "not_ready",
	phaseDraining: "shutting_down",
}

// Handler answers liveness and readiness probes. Once draining it never
// reports ready again.
type Handler struct {
	deps  []Dependency
	phase atomic.Int32
}

func NewHandler(deps ...Dependency) *Handler {
	return &Handler{deps: deps}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) current() phase {
	return phase(h.phase.Load())
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.current() == phaseDraining {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: phaseStatus[phaseDraining]})
		return
	}
	writeStatus(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Readiness fails while draining or when any dependency does not answer a
// ping, so the load balancer stops routing ad traffic here.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if p := h.current(); p != phaseServing {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: phaseStatus[p]})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: h.runChecks(ctx)}
	code := http.StatusOK
	if slices.ContainsFunc(resp.Checks, func(c HealthCheck) bool { return !c.Healthy }) {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeStatus(w, code, resp)
}

func (h *Handler) runChecks(ctx context.Context) []HealthCheck {
	var wg sync.WaitGroup
	checks := make([]HealthCheck, len(h.deps))
	for i, dep := range h.deps {
		wg.Go(func() { checks[i] = probe(ctx, dep) })
	}
	wg.Wait()
	return checks
}

func probe(ctx context.Context, dep Dependency) HealthCheck {
	if dep.Checker == nil {
		return HealthCheck{Name: dep.Name, Message: dep.Name + " checker not configured"}
	}

	start := time.Now()
	err := dep.Checker.Ping(ctx)
	check := HealthCheck{
		Name:    dep.Name,
		Healthy: err == nil,
		Latency: time.Since(start).String(),
	}
	if err != nil {
		check.Message = "ping failed"
	}
	return check
}

// SetReady toggles readiness. It has no effect once draining has begun.
func (h *Handler) SetReady(ready bool) {
	from, to := phaseNotReady, phaseServing
	if !ready {
		from, to = phaseServing, phaseNotReady
	}
	h.phase.CompareAndSwap(int32(from), int32(to))
}

func (h *Handler) SetShutdown(shutdown bool) {
	if shutdown {
		h.phase.Store(int32(phaseDraining))
		return
	}
	h.phase.Store(int32(phaseServing))
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	core.JSON(w, status, data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
