package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/platform/scheduler"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Notifier shows a transient message; callers never inspect its state.
type Notifier interface {
	Notify(title, message string, severity Severity)
}

type NotifierFunc func(title, message string, severity Severity)

func (f NotifierFunc) Notify(title, message string, severity Severity) { f(title, message, severity) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(string, string, Severity) {})

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DefaultTTL   = 5 * time.Second
	dismissKey   = "notification.dismiss"
	historyLimit = 20
)

// Center is the per-client notification surface. A new notification replaces
// the visible one and restarts the auto-dismiss timer.
type Center struct {
	mu      sync.Mutex
	log     *logger.Logger
	tasks   scheduler.Tasks
	out     realtime.Broadcaster
	channel string
	ttl     time.Duration
	current *Notification
	history []Notification
}

func NewCenter(log *logger.Logger, tasks scheduler.Tasks, out realtime.Broadcaster, channel string, ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Center{
		log:     log.With("service", "NotificationCenter"),
		tasks:   tasks,
		out:     out,
		channel: channel,
		ttl:     ttl,
	}
}

func (c *Center) Notify(title, message string, severity Severity) {
	if c == nil {
		return
	}
	if !severity.Valid() {
		severity = SeverityInfo
	}
	n := Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	c.current = &n
	c.history = append(c.history, n)
	if len(c.history) > historyLimit {
		c.history = append([]Notification(nil), c.history[len(c.history)-historyLimit:]...)
	}
	c.mu.Unlock()

	c.log.Debug("notification shown", "title", title, "severity", severity)
	c.publish(realtime.SSEEventNotificationShown, n)
	if c.tasks != nil {
		c.tasks.After(dismissKey, c.ttl, func() { c.dismiss(n.ID) })
	}
}

// Hide dismisses the visible notification immediately.
func (c *Center) Hide() {
	if c == nil {
		return
	}
	if c.tasks != nil {
		c.tasks.Cancel(dismissKey)
	}
	c.mu.Lock()
	cur := c.current
	c.current = nil
	c.mu.Unlock()
	if cur != nil {
		c.publish(realtime.SSEEventNotificationDismissed, *cur)
	}
}

func (c *Center) dismiss(id string) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	cur := *c.current
	c.current = nil
	c.mu.Unlock()
	c.publish(realtime.SSEEventNotificationDismissed, cur)
}

func (c *Center) Current() (Notification, bool) {
	if c == nil {
		return Notification{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Recent returns the latest notifications, oldest first.
func (c *Center) Recent() []Notification {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.history...)
}

func (c *Center) publish(event realtime.SSEEvent, n Notification) {
	if c.out == nil || c.channel == "" {
		return
	}
	c.out.Broadcast(realtime.SSEMessage{Channel: c.channel, Event: event, Data: n})
}
