package authsession

import (
	"sync"

	"github.com/google/uuid"
)

// StatusBroadcaster fans boolean auth-status changes out to subscribers.
//
// Publish never blocks: values are queued in emission order and a single background
// goroutine delivers them. Every subscriber receives every value published after it
// subscribed, in order; nothing published earlier is replayed. A subscriber that stops
// reading stalls delivery to the others until it is closed.
type StatusBroadcaster struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	queue  []statusEvent
	seq    uint64
	closed bool
	buffer int

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

type statusEvent struct {
	seq   uint64
	value bool
}

// Subscription is one listener on a StatusBroadcaster.
type Subscription struct {
	id    string
	since uint64
	ch    chan bool
	done  chan struct{}
	b     *StatusBroadcaster

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewStatusBroadcaster starts a broadcaster whose subscriber channels hold buffer values.
func NewStatusBroadcaster(buffer int) *StatusBroadcaster {
	if buffer < 0 {
		buffer = 0
	}
	b := &StatusBroadcaster{
		subs:   map[string]*Subscription{},
		buffer: buffer,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Subscribe registers a new listener. After Close the returned subscription's channel
// is already closed.
func (b *StatusBroadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		id:   uuid.NewString(),
		ch:   make(chan bool, b.buffer),
		done: make(chan struct{}),
		b:    b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.Close()
		return sub
	}
	sub.since = b.seq + 1
	b.subs[sub.id] = sub
	b.mu.Unlock()

	return sub
}

// Publish queues value for delivery. It is a no-op after Close.
func (b *StatusBroadcaster) Publish(value bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.seq++
	b.queue = append(b.queue, statusEvent{seq: b.seq, value: value})
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Subscribers reports the number of open subscriptions.
func (b *StatusBroadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close stops delivery and closes every subscription. Values still queued are dropped.
func (b *StatusBroadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.queue = nil
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	close(b.done)
	b.wg.Wait()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *StatusBroadcaster) run() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		for {
			b.mu.Lock()
			events := b.queue
			b.queue = nil
			subs := make([]*Subscription, 0, len(b.subs))
			for _, sub := range b.subs {
				subs = append(subs, sub)
			}
			b.mu.Unlock()

			if len(events) == 0 {
				break
			}
			for _, evt := range events {
				for _, sub := range subs {
					if sub.since > evt.seq {
						continue
					}
					select {
					case <-b.done:
						return
					default:
					}
					sub.deliver(evt.value)
				}
			}
		}
	}
}

func (b *StatusBroadcaster) remove(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// C returns the channel carrying status values. It is closed by Close.
func (s *Subscription) C() <-chan bool {
	return s.ch
}

// ID returns the subscription handle.
func (s *Subscription) ID() string {
	return s.id
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.b.remove(s.id)
		close(s.done)

		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

func (s *Subscription) deliver(value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- value:
	case <-s.done:
	case <-s.b.done:
	}
}
