// Package ui holds the transient surfaces of the dashboard: one toast
// notification and one preview modal at a time.
package ui

import (
	"bytes"
	"html/template"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

const DefaultNotificationTTL = 4 * time.Second

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

type timer interface {
	Stop() bool
}

// AfterFunc matches time.AfterFunc; tests swap it for a manual clock.
type AfterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Notifier owns the single active notification. Showing a new one replaces
// the previous one; each expires after its TTL unless dismissed earlier.
type Notifier struct {
	mu      sync.Mutex
	current *Notification
	timer   timer
	ttl     time.Duration
	after   AfterFunc
	now     func() time.Time
}

type NotifierOption func(*Notifier)

func WithTTL(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.ttl = d
		}
	}
}

func WithAfterFunc(f AfterFunc) NotifierOption {
	return func(n *Notifier) { n.after = f }
}

func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		ttl:   DefaultNotificationTTL,
		after: realAfterFunc,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Show(message string, severity Severity) Notification {
	switch severity {
	case SeveritySuccess, SeverityError:
	default:
		severity = SeverityInfo
	}
	note := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: n.now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.current = &note
	id := note.ID
	n.timer = n.after(n.ttl, func() { n.Dismiss(id) })
	return note
}

// Dismiss removes the notification with the given id. A stale id is ignored.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.current.ID != id {
		return false
	}
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	return true
}

func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

var notificationTmpl = template.Must(template.New("notification").Parse(
	`<div class="notification notification-{{.Severity}}" data-id="{{.ID}}" role="status">{{.Message}}</div>`))

// Render returns the markup of the current notification, or "" when none is
// active.
func (n *Notifier) Render() template.HTML {
	note, ok := n.Current()
	if !ok {
		return ""
	}
	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, note); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
