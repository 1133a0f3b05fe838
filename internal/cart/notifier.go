package cart

import (
	"sync"
	"time"
)

// DefaultNotificationTTL is how long an add-to-cart acknowledgment stays visible.
const DefaultNotificationTTL = 2 * time.Second

// Notifier holds the latest acknowledgment message and clears it after a TTL.
// Each Show re-arms the timer; a timer that fires after being superseded is ignored.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	message string
	timer   *time.Timer
	gen     uint64
	closed  bool
}

// NewNotifier creates a notifier. A non-positive ttl uses DefaultNotificationTTL.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{ttl: ttl}
}

// Show replaces the current message and schedules its dismissal.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}

	n.gen++
	gen := n.gen
	n.message = message
	n.timer = time.AfterFunc(n.ttl, func() {
		n.dismiss(gen)
	})
}

// Current returns the visible message, if any.
func (n *Notifier) Current() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message, n.message != ""
}

// Dismiss clears the message immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.message = ""
}

// Close cancels any pending dismissal; later Show calls are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.closed = true
	n.message = ""
}

func (n *Notifier) dismiss(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.gen {
		return
	}
	n.message = ""
	n.timer = nil
}
