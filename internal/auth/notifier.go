// Package auth contains the session-change notifier. Components that care
// about sign-in/sign-out (audit logging, cache invalidation) subscribe a
// callback; the auth handlers fire events synchronously after the state
// change commits. No ordering is guaranteed between listeners.
package auth

import "sync"

// SessionEventType distinguishes the session transitions we report.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "signed_in"
	SessionRefreshed SessionEventType = "refreshed"
	SessionSignedOut SessionEventType = "signed_out"
)

// SessionEvent describes one auth-state change.
type SessionEvent struct {
	Type      SessionEventType
	ProfileID string
	Email     string
}

// SessionListener receives session events. Listeners must not block; the
// notifier invokes them inline on the request goroutine.
type SessionListener func(SessionEvent)

// Notifier holds the subscriber list. The zero value is ready to use.
type Notifier struct {
	mu        sync.Mutex
	listeners []SessionListener
}

// Subscribe registers a listener for all subsequent events.
func (n *Notifier) Subscribe(l SessionListener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Notify delivers ev to every registered listener, synchronously and in
// registration order. A nil Notifier is a no-op so callers need not guard.
func (n *Notifier) Notify(ev SessionEvent) {
	if n == nil {
		return
	}
	n.mu.Lock()
	ls := make([]SessionListener, len(n.listeners))
	copy(ls, n.listeners)
	n.mu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}
