package events

import (
	"context"
	"sync"
)

// Handler receives events of a subscription, one at a time in arrival order.
type Handler func(Event)

// Dispatcher allows event publication and subscription.
//
// The unsubscribe function returned by Subscribe is idempotent and synchronous: once it
// returns the handler is not invoked again. It must not be called from inside the handler.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, topic Topic, handler Handler) (func(), error)
}

const subscriberBuffer = 64

type subscription struct {
	topic   Topic
	events  chan Event
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	handler Handler
}

func (s *subscription) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case ev := <-s.events:
			select {
			case <-s.quit:
				return
			default:
			}
			s.handler(ev)
		}
	}
}

// inMemoryDispatcher fans events out to subscribers within the process.
type inMemoryDispatcher struct {
	mu   sync.RWMutex
	next int
	subs map[int]*subscription
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{subs: make(map[int]*subscription)}
}

// Publish queues the event for every subscriber of its topic. It blocks while a subscriber
// buffer is full, until the subscriber drains or unsubscribes or ctx ends.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	targets := make([]*subscription, 0, len(d.subs))
	for _, sub := range d.subs {
		if sub.topic == event.Topic {
			targets = append(targets, sub)
		}
	}
	d.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.events <- event:
		case <-sub.quit:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for the topic.
func (d *inMemoryDispatcher) Subscribe(_ context.Context, topic Topic, handler Handler) (func(), error) {
	sub := &subscription{
		topic:   topic,
		events:  make(chan Event, subscriberBuffer),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		handler: handler,
	}

	d.mu.Lock()
	id := d.next
	d.next++
	d.subs[id] = sub
	d.mu.Unlock()

	go sub.run()

	return func() {
		sub.once.Do(func() {
			close(sub.quit)
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
			<-sub.done
		})
	}, nil
}
