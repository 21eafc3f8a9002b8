// Package service owns the directory snapshot lifecycle: loading, enrichment,
// refresh coalescing and the read side consumed by the admin transport.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"huntboard/internal/directory/enrich"
	"huntboard/internal/directory/engine"
	"huntboard/internal/directory/loader"
	"huntboard/internal/directory/models"
	"huntboard/internal/platform/metrics"
	"huntboard/internal/notify"
	"huntboard/pkg/debounce"
	dErrors "huntboard/pkg/domain-errors"
)

// DataLoader supplies one complete raw load.
type DataLoader interface {
	Load(ctx context.Context) (loader.Result, error)
}

// ErrClosed is returned when the service has been shut down.
var ErrClosed = dErrors.New(dErrors.CodeUnavailable, "directory service is closed")

// maxRetainedErrors bounds the refresh error history.
const maxRetainedErrors = 5

// Config carries the refresh policy for the service.
type Config struct {
	RefreshDebounce     time.Duration
	AutoRefreshEnabled  bool
	AutoRefreshInterval time.Duration
}

// Service maintains the enriched user snapshot and its refresh state.
// The snapshot is replaced wholesale on every successful load; readers always
// observe a consistent collection.
type Service struct {
	loader   DataLoader
	enricher *enrich.Enricher
	cfg      Config

	logger   *slog.Logger
	metrics  *metrics.Metrics
	notifier notify.Notifier
	clock    func() time.Time
	tracer   trace.Tracer

	// loadMu serializes loads; TryLock implements the single-flight rule.
	loadMu sync.Mutex

	mu     sync.RWMutex
	users  []models.UserRecord
	apps   []models.RawApplication
	state  models.RefreshState
	closed bool

	debouncer *debounce.Debouncer[struct{}]
	stopAuto  chan struct{}
	autoOnce  sync.Once
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithNotifier attaches a transient notification sink.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithEnricher overrides the default enricher.
func WithEnricher(e *enrich.Enricher) Option {
	return func(s *Service) { s.enricher = e }
}

// New constructs the directory service. The snapshot starts empty; callers
// trigger the first load via Refresh or RequestRefresh.
func New(dataLoader DataLoader, cfg Config, opts ...Option) *Service {
	s := &Service{
		loader:   dataLoader,
		cfg:      cfg,
		clock:    time.Now,
		stopAuto: make(chan struct{}),
		state: models.RefreshState{
			Status:              models.RefreshIdle,
			AutoRefreshEnabled:  cfg.AutoRefreshEnabled,
			AutoRefreshInterval: cfg.AutoRefreshInterval,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.enricher == nil {
		enrichOpts := []enrich.Option{enrich.WithLogger(s.logger)}
		if s.metrics != nil {
			enrichOpts = append(enrichOpts, enrich.WithDropCounter(s.metrics.IncrementRecordsDropped))
		}
		s.enricher = enrich.New(enrichOpts...)
	}
	s.tracer = otel.Tracer("huntboard/directory")
	s.debouncer = debounce.New(cfg.RefreshDebounce, func(struct{}) {
		// Trailing edge of a request burst; run the load off the
		// debouncer's goroutine so emission returns promptly.
		go func() {
			if err := s.Refresh(context.Background(), false); err != nil {
				s.logger.Warn("debounced refresh failed", "error", err)
			}
		}()
	})
	return s
}

// RequestRefresh coalesces bursts of refresh triggers: only the trailing
// request of a quiet interval starts a load.
func (s *Service) RequestRefresh() {
	s.debouncer.Set(struct{}{})
}

// Refresh performs a full load-enrich-replace cycle. While a load is in
// flight, non-forced calls are no-ops; forced calls wait for the current load
// and then run. A refresh never partially updates the snapshot.
func (s *Service) Refresh(ctx context.Context, force bool) error {
	if force {
		s.loadMu.Lock()
	} else if !s.loadMu.TryLock() {
		if s.metrics != nil {
			s.metrics.IncrementRefreshSkipped()
		}
		s.logger.Debug("refresh skipped, load already in flight")
		return nil
	}
	defer s.loadMu.Unlock()

	if s.isClosed() {
		return ErrClosed
	}
	return s.doRefresh(ctx)
}

func (s *Service) doRefresh(ctx context.Context) error {
	start := s.clock()
	ctx, span := s.tracer.Start(ctx, "directory.refresh")
	defer span.End()

	s.setRefreshing(true)

	result, err := s.loader.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.recordFailure(ctx, err)
		if s.metrics != nil {
			s.metrics.ObserveRefresh("error", s.clock().Sub(start).Seconds())
		}
		return err
	}

	now := s.clock()
	records := s.enricher.BuildAll(result.Users, result.Applications, now)
	span.SetAttributes(
		attribute.Int("users.raw", len(result.Users)),
		attribute.Int("users.enriched", len(records)),
		attribute.Int("applications", len(result.Applications)),
	)

	s.mu.Lock()
	if s.closed {
		// The hosting view went away mid-load; never apply a late result.
		s.mu.Unlock()
		return ErrClosed
	}
	s.users = records
	s.apps = result.Applications
	s.state.IsRefreshing = false
	s.state.LastRefresh = now
	s.state.Status = models.RefreshSuccess
	s.state.Errors = nil
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveRefresh("success", s.clock().Sub(start).Seconds())
		s.metrics.SetRecordsLoaded(len(records))
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, notify.LevelSuccess, "Directory refreshed", 3*time.Second)
	}
	s.logger.InfoContext(ctx, "directory refreshed",
		"users", len(records),
		"applications", len(result.Applications),
		"dropped", len(result.Users)-len(records),
	)
	return nil
}

func (s *Service) setRefreshing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsRefreshing = v
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.IsRefreshing = false
	s.state.Status = models.RefreshError
	s.state.Errors = append(s.state.Errors, err.Error())
	if len(s.state.Errors) > maxRetainedErrors {
		s.state.Errors = s.state.Errors[len(s.state.Errors)-maxRetainedErrors:]
	}
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Notify(ctx, notify.LevelError, err.Error(), 5*time.Second)
	}
	s.logger.ErrorContext(ctx, "directory refresh failed", "error", err)
}

// StartAutoRefresh begins the periodic background refresh if enabled.
// Subsequent calls are no-ops.
func (s *Service) StartAutoRefresh() {
	if !s.cfg.AutoRefreshEnabled || s.cfg.AutoRefreshInterval <= 0 {
		return
	}
	s.autoOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(s.cfg.AutoRefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-s.stopAuto:
					return
				case <-ticker.C:
					if err := s.Refresh(context.Background(), false); err != nil {
						s.logger.Warn("auto refresh failed", "error", err)
					}
				}
			}
		}()
	})
}

// Close tears the service down: the debouncer will never emit again, the
// auto-refresh loop stops, and any in-flight load result is discarded.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	close(s.stopAuto)
}

func (s *Service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Users returns the records matching the query, computed over the current
// snapshot.
func (s *Service) Users(q models.DirectoryQuery) []models.UserRecord {
	s.mu.RLock()
	snapshot := s.users
	s.mu.RUnlock()
	return engine.Search(snapshot, q)
}

// Stats aggregates over the full, unfiltered snapshot.
func (s *Service) Stats() models.AggregateStats {
	s.mu.RLock()
	snapshot := s.users
	s.mu.RUnlock()
	return engine.Aggregate(snapshot, s.clock())
}

// Snapshot returns a copy of the full user collection.
func (s *Service) Snapshot() []models.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserRecord, len(s.users))
	copy(out, s.users)
	return out
}

// Applications returns a copy of the raw application collection from the
// last successful load.
func (s *Service) Applications() []models.RawApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RawApplication, len(s.apps))
	copy(out, s.apps)
	return out
}

// RefreshState returns the current refresh status snapshot. Errors is always
// a non-nil slice so the state serializes with an empty array, never null.
func (s *Service) RefreshState() models.RefreshState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	state.Errors = append([]string{}, s.state.Errors...)
	return state
}
