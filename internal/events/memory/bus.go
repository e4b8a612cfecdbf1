// Package memory is an in-process event log with subscriber fan-out.
// It is the default publisher when no broker is configured, and the
// recorder tests assert against.
package memory

import (
	"sync"

	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
)

// Envelope pairs a published event with its topic.
type Envelope struct {
	Topic string
	Event any
}

// Bus appends every published event to a log and fans it out to
// subscribers. Delivery is non-blocking: a subscriber that stops
// draining its channel misses events rather than stalling publishers.
type Bus struct {
	mu   sync.Mutex
	log  []Envelope
	subs []chan Envelope
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Publish(topic string, event any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	env := Envelope{Topic: topic, Event: event}
	b.log = append(b.log, env)
	for _, ch := range b.subs {
		select {
		case ch <- env:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel receiving every event published after
// this call.
func (b *Bus) Subscribe(buffer int) <-chan Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Envelope, buffer)
	b.subs = append(b.subs, ch)
	return ch
}

// Events returns a copy of the full publication log in emission order.
func (b *Bus) Events() []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Envelope, len(b.log))
	copy(out, b.log)
	return out
}

var _ interfaces.EventPublisher = (*Bus)(nil)
