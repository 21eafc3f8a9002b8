// Package loader fetches raw user and application collections from a source
// of record, with bounded retries, increasing backoff and an overall
// wall-clock timeout.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"huntboard/internal/directory/models"
	dErrors "huntboard/pkg/domain-errors"
)

//go:generate mockgen -source=loader.go -destination=mocks/mocks.go -package=mocks Source

// Source is the system of record for raw directory data.
type Source interface {
	FetchUsers(ctx context.Context) ([]models.RawUser, error)
	FetchApplications(ctx context.Context) ([]models.RawApplication, error)
}

// Result is one complete raw load.
type Result struct {
	Users        []models.RawUser
	Applications []models.RawApplication
}

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultTimeout     = 15 * time.Second
)

// Loader wraps a Source with the retry policy.
type Loader struct {
	source      Source
	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithMaxAttempts bounds the number of fetch attempts per load.
func WithMaxAttempts(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithBackoffBase sets the first retry delay; each retry doubles it.
func WithBackoffBase(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.backoffBase = d
		}
	}
}

// WithTimeout bounds the wall-clock duration of a whole load including retries.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// New constructs a Loader around the given source.
func New(source Source, opts ...Option) *Loader {
	l := &Loader{
		source:      source,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		timeout:     defaultTimeout,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load fetches users and applications, retrying failed attempts with
// doubling backoff until the attempts or the wall-clock timeout run out.
// The returned error is a classified domain error.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var lastErr error
	backoff := l.backoffBase
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		result, err := l.fetchOnce(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		l.logger.Warn("directory load attempt failed",
			"attempt", attempt,
			"max_attempts", l.maxAttempts,
			"error", err,
		)

		if attempt == l.maxAttempts {
			break
		}
		if err := l.sleep(ctx, backoff); err != nil {
			// The wall-clock timeout elapsed while backing off.
			return Result{}, ClassifyError(ctx.Err())
		}
		backoff *= 2
	}
	return Result{}, ClassifyError(lastErr)
}

// fetchOnce pulls both collections concurrently; either failure aborts the
// attempt.
func (l *Loader) fetchOnce(ctx context.Context) (Result, error) {
	var result Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := l.source.FetchUsers(gctx)
		if err != nil {
			return err
		}
		result.Users = users
		return nil
	})
	g.Go(func() error {
		apps, err := l.source.FetchApplications(gctx)
		if err != nil {
			return err
		}
		result.Applications = apps
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ClassifyError maps a load failure onto a stable domain error by inspecting
// the error text for recognizable markers, falling back to a generic message.
// Source errors arrive from arbitrary drivers, so substring inspection is the
// only portable signal.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "loading timed out, please try again")
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline"):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "loading timed out, please try again")
	case containsAny(msg, "permission", "unauthorized", "forbidden", "denied"):
		return dErrors.Wrap(err, dErrors.CodeForbidden, "not permitted to load directory data")
	case containsAny(msg, "network", "connection", "refused", "unreachable", "no such host"):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "source of record is unreachable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load directory data")
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
