// Package notify carries transient user notifications (the "toast" channel)
// from surfaces to whatever presents them.
package notify

import (
	"sync"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is a single emitted notification.
type Notification struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives notifications. Implementations must not block for long;
// surfaces call Notify inline. Slow sinks such as Webhook deliver in the
// background.
type Notifier interface {
	Notify(kind Kind, title, message string)
}

// Func adapts a plain function to Notifier.
type Func func(kind Kind, title, message string)

// Notify calls f.
func (f Func) Notify(kind Kind, title, message string) {
	f(kind, title, message)
}

// Discard drops every notification.
var Discard Notifier = Func(func(Kind, string, string) {})

// Multi fans a notification out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(kind Kind, title, message string) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(kind, title, message)
			}
		}
	})
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	got []Notification
}

// Notify records the notification.
func (r *Recorder) Notify(kind Kind, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, Notification{Kind: kind, Title: title, Message: message, Timestamp: time.Now().UTC()})
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.got))
	copy(out, r.got)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return Notification{}, false
	}
	return r.got[len(r.got)-1], true
}
