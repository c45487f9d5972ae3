// Package notify delivers transient user-facing notifications.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Notifier accepts fire-and-forget notifications.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string, severity Severity)

func (f NotifierFunc) Notify(ctx context.Context, message string, severity Severity) {
	f(ctx, message, severity)
}

// Notification is a single message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Timer is the subset of *time.Timer the tray needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d.
type AfterFunc func(d time.Duration, fn func()) Timer

func realAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// TrayOption configures a Tray.
type TrayOption func(*Tray)

// WithTTL overrides the visibility duration.
func WithTTL(ttl time.Duration) TrayOption {
	return func(t *Tray) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithAfterFunc replaces the timer scheduler, typically in tests.
func WithAfterFunc(fn AfterFunc) TrayOption {
	return func(t *Tray) {
		if fn != nil {
			t.afterFunc = fn
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) TrayOption {
	return func(t *Tray) {
		if now != nil {
			t.now = now
		}
	}
}

// Tray holds at most one visible notification. A new notification replaces
// the current one, and each is removed once its TTL elapses.
type Tray struct {
	mu        sync.Mutex
	current   *Notification
	timer     Timer
	ttl       time.Duration
	afterFunc AfterFunc
	now       func() time.Time
}

// NewTray constructs an empty tray.
func NewTray(options ...TrayOption) *Tray {
	t := &Tray{
		ttl:       DefaultTTL,
		afterFunc: realAfterFunc,
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Notify shows message, replacing whatever is visible.
func (t *Tray) Notify(_ context.Context, message string, severity Severity) {
	n := &Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: t.now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.current = n
	t.timer = t.afterFunc(t.ttl, func() { t.expire(n.ID) })
}

func (t *Tray) expire(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && t.current.ID == id {
		t.current = nil
		t.timer = nil
	}
}

// Active returns the visible notification, if any.
func (t *Tray) Active() (Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Notification{}, false
	}
	return *t.current, true
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, message string, severity Severity) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if severity == SeverityError {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "notification", "severity", string(severity), "message", message)
}

// Fanout forwards each notification to every non-nil notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, message string, severity Severity) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, message, severity)
		}
	}
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, string, Severity) {})
