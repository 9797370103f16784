package watch

import "sync"

// Event is the outcome of reformatting one file after a change.
type Event struct {
	Path    string
	Changed bool
	Err     error
}

// Notifier fans events out to subscribers. A subscriber that falls behind
// misses events rather than blocking the watcher.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[chan Event]struct{})}
}

// Subscribe returns a channel receiving events. The caller must call
// Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 16)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends ev to every subscriber without blocking.
func (n *Notifier) Broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}
