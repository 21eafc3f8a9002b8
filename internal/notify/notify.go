// Package notify delivers transient, toast-style notifications about
// operation outcomes. The admin UI polls these; the service side only needs
// fire-and-forget delivery.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level categorizes a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one transient message.
type Notification struct {
	Level     Level         `json:"type"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Notifier delivers transient notifications.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string, duration time.Duration)
}

// LogNotifier writes notifications to the structured log and retains a small
// ring of recent ones for the admin surface to read back.
type LogNotifier struct {
	logger *slog.Logger
	keep   int

	mu     sync.Mutex
	recent []Notification
}

// NewLogNotifier constructs a LogNotifier retaining the given number of
// recent notifications.
func NewLogNotifier(logger *slog.Logger, keep int) *LogNotifier {
	if keep <= 0 {
		keep = 20
	}
	return &LogNotifier{logger: logger, keep: keep}
}

// Notify records and logs one notification.
func (n *LogNotifier) Notify(ctx context.Context, level Level, message string, duration time.Duration) {
	n.logger.InfoContext(ctx, "notification",
		"level", string(level),
		"message", message,
		"duration_ms", duration.Milliseconds(),
	)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append(n.recent, Notification{
		Level:     level,
		Message:   message,
		Duration:  duration,
		CreatedAt: time.Now(),
	})
	if len(n.recent) > n.keep {
		n.recent = n.recent[len(n.recent)-n.keep:]
	}
}

// Recent returns the retained notifications, newest last.
func (n *LogNotifier) Recent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.recent))
	copy(out, n.recent)
	return out
}
