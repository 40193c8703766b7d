package ledger

import (
	"sync"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// Notifier is a minimal publish-subscribe fanout for state changes.
// Subscribers run synchronously, after local persistence and before the
// remote push completes.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(domain.GameState)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(domain.GameState))}
}

// Subscribe registers an observer and returns its unsubscribe function.
func (n *Notifier) Subscribe(fn func(domain.GameState)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Publish delivers a snapshot to every subscriber.
func (n *Notifier) Publish(state domain.GameState) {
	n.mu.Lock()
	fns := make([]func(domain.GameState), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
