// Package health exposes liveness and readiness probes plus a status summary
// that reports on the directory snapshot.
package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"huntboard/pkg/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc probes one dependency. It returns nil when the dependency is
// usable.
type CheckFunc func() error

// InfoFunc contributes a section to the status summary.
type InfoFunc func() any

type namedCheck struct {
	name  string
	check CheckFunc
}

// Handler serves the probe endpoints.
type Handler struct {
	startTime   time.Time
	environment string

	mu     sync.RWMutex
	checks []namedCheck
	info   map[string]InfoFunc
}

// New creates a health handler for the given environment.
func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		info:        make(map[string]InfoFunc),
	}
}

// RegisterCheck adds a named readiness check. Checks run in registration
// order.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// RegisterInfo adds a named section to the status summary.
func (h *Handler) RegisterInfo(name string, info InfoFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info[name] = info
}

// Register mounts the probe routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// HandleLiveness answers as long as the process serves requests.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessResponse reports each registered dependency.
type ReadinessResponse struct {
	Status  string   `json:"status"`
	Failing []string `json:"failing,omitempty"`
}

// HandleReadiness runs every registered check and returns 503 when any
// dependency is down.
func (h *Handler) HandleReadiness(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	checks := make([]namedCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	resp := ReadinessResponse{Status: "ready"}
	for _, c := range checks {
		if err := c.check(); err != nil {
			resp.Failing = append(resp.Failing, c.name+": "+err.Error())
		}
	}
	if len(resp.Failing) > 0 {
		resp.Status = "not_ready"
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// StatusResponse is the human-facing health summary.
type StatusResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Environment   string         `json:"environment"`
	UptimeSeconds int64          `json:"uptimeSeconds"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
}

// HandleStatus returns version, uptime and the registered info sections,
// such as the directory refresh state.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	var details map[string]any
	if len(h.info) > 0 {
		details = make(map[string]any, len(h.info))
		for name, fn := range h.info {
			details[name] = fn()
		}
	}
	h.mu.RUnlock()

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC(),
		Details:       details,
	})
}
