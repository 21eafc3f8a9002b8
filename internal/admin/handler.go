// Package admin exposes the HTTP surface of the admin console: login,
// the user directory, aggregate stats, refresh control, and exports.
package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"huntboard/internal/admintoken"
	"huntboard/internal/directory/export"
	"huntboard/internal/directory/models"
	"huntboard/internal/directory/service"
	"huntboard/internal/notify"
	"huntboard/internal/platform/metrics"
	"huntboard/internal/platform/middleware"
	dErrors "huntboard/pkg/domain-errors"
	"huntboard/pkg/httputil"
	"huntboard/pkg/stringutil"
)

// Handler handles admin console endpoints.
type Handler struct {
	directory    *service.Service
	exporter     *export.Exporter
	tokens       *admintoken.Service
	notifier     *notify.LogNotifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
	passwordHash string
	adminEmail   string
	clock        func() time.Time
}

// Option configures the Handler.
type Option func(*Handler)

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) { h.clock = clock }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithNotifier attaches the notifier whose recent notifications are served
// on /admin/notifications.
func WithNotifier(n *notify.LogNotifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// New creates a new admin handler.
func New(directory *service.Service, exporter *export.Exporter, tokens *admintoken.Service, adminEmail, passwordHash string, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		directory:    directory,
		exporter:     exporter,
		tokens:       tokens,
		logger:       logger,
		passwordHash: passwordHash,
		adminEmail:   adminEmail,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterPublic registers the routes that do not require a bearer token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/admin/login", h.HandleLogin)
}

// Register registers the protected admin routes with the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/users", h.HandleGetUsers)
	r.Get("/admin/stats", h.HandleGetStats)
	r.Get("/admin/refresh", h.HandleGetRefreshState)
	r.Post("/admin/refresh", h.HandleRefresh)
	r.Get("/admin/notifications", h.HandleGetNotifications)
	r.Get("/admin/export/users", h.HandleExportUsers)
	r.Get("/admin/export/analytics", h.HandleExportAnalytics)
}

// HandleLogin verifies admin credentials and issues a bearer token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	stringutil.TrimStrings(&req.Email)

	if h.passwordHash == "" {
		// bcrypt against an empty hash can never match; say so instead of
		// reporting bad credentials forever.
		h.logger.WarnContext(ctx, "admin login attempted but no password hash is configured",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin login is not configured"))
		return
	}

	if req.Email != h.adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)) != nil {
		h.logger.WarnContext(ctx, "admin login rejected",
			"request_id", requestID,
			"email", req.Email,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	token, err := h.tokens.Generate(req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue admin token",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "admin logged in",
		"request_id", requestID,
		"email", req.Email,
	)

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
	})
}

// HandleGetUsers returns the user directory, filtered and sorted by the
// search, status, and sort query parameters.
func (h *Handler) HandleGetUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := h.clock()

	q := queryFromRequest(r)
	users := h.directory.Users(q)

	h.logger.InfoContext(ctx, "admin users list retrieved",
		"request_id", requestID,
		"count", len(users),
		"search", q.Search,
		"status", string(q.Status),
		"sort", string(q.Sort),
	)
	h.observeLatency("admin_users", start)

	httputil.WriteJSON(w, http.StatusOK, toUsersListResponse(users))
}

// HandleGetStats returns aggregate directory statistics.
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := h.clock()

	stats := h.directory.Stats()

	h.logger.InfoContext(ctx, "admin stats retrieved",
		"request_id", requestID,
	)
	h.observeLatency("admin_stats", start)

	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleGetRefreshState reports the current refresh state.
func (h *Handler) HandleGetRefreshState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.directory.RefreshState())
}

// HandleRefresh triggers a data refresh. With ?force=true the refresh runs
// even when another one is in flight; otherwise it is debounced.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	force := r.URL.Query().Get("force") == "true"
	if !force {
		h.directory.RequestRefresh()
		h.logger.InfoContext(ctx, "admin refresh requested",
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusAccepted, h.directory.RefreshState())
		return
	}

	if err := h.directory.Refresh(ctx, true); err != nil {
		h.logger.ErrorContext(ctx, "forced refresh failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "forced refresh completed",
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, h.directory.RefreshState())
}

// HandleGetNotifications returns recent notifications, newest last.
func (h *Handler) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	var recent []notify.Notification
	if h.notifier != nil {
		recent = h.notifier.Recent()
	}
	if recent == nil {
		recent = []notify.Notification{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"notifications": recent,
		"total":         len(recent),
	})
}

// HandleExportUsers serves the full user directory as a downloadable JSON
// document.
func (h *Handler) HandleExportUsers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	now := h.clock()

	doc := h.exporter.BuildUserExport(
		h.directory.Snapshot(),
		h.directory.Stats(),
		h.directory.RefreshState(),
		now,
	)
	h.serveExport(w, r, "users", doc, now, requestID)
}

// HandleExportAnalytics serves aggregated application analytics as a
// downloadable JSON document.
func (h *Handler) HandleExportAnalytics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	now := h.clock()

	doc := h.exporter.BuildAnalyticsExport(
		h.directory.Applications(),
		h.directory.Stats(),
		h.directory.RefreshState(),
		r.URL.Query().Get("timeRange"),
		now,
	)
	h.serveExport(w, r, "analytics", doc, now, requestID)
}

func (h *Handler) serveExport(w http.ResponseWriter, r *http.Request, subject string, doc any, now time.Time, requestID string) {
	ctx := r.Context()

	data, err := export.Marshal(doc)
	if err != nil {
		h.logger.ErrorContext(ctx, "export serialization failed",
			"error", err,
			"request_id", requestID,
			"subject", subject,
		)
		if h.metrics != nil {
			h.metrics.IncrementExportFailures()
		}
		if h.notifier != nil {
			h.notifier.Notify(ctx, notify.LevelError, "Export failed. Please try again.", 5*time.Second)
		}
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementExports(subject)
	}
	h.logger.InfoContext(ctx, "export generated",
		"request_id", requestID,
		"subject", subject,
		"bytes", len(data),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(subject, now)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) observeLatency(endpoint string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveEndpointLatency(endpoint, h.clock().Sub(start).Seconds())
}

func queryFromRequest(r *http.Request) models.DirectoryQuery {
	q := models.DirectoryQuery{
		Search: r.URL.Query().Get("search"),
		Status: models.FilterAll,
		Sort:   models.SortByLastActive,
	}
	switch models.StatusFilter(r.URL.Query().Get("status")) {
	case models.FilterActive:
		q.Status = models.FilterActive
	case models.FilterInactive:
		q.Status = models.FilterInactive
	case models.FilterNew:
		q.Status = models.FilterNew
	}
	switch models.SortKey(r.URL.Query().Get("sort")) {
	case models.SortByJoinDate:
		q.Sort = models.SortByJoinDate
	case models.SortByApplications:
		q.Sort = models.SortByApplications
	}
	return q
}
