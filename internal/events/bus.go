package events

import (
	"sync"
	"time"
)

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus is an in-process pub/sub event bus. Handlers run on the dispatch
// goroutine in subscription order; slow consumers should hand off
// themselves.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]subscription
	nextID      SubscriptionID

	queue  chan Event
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewBus creates a bus with the given queue capacity and starts its
// dispatch goroutine.
func NewBus(bufferSize int) *Bus {
	bus := &Bus{
		subscribers: make(map[Type][]subscription),
		nextID:      1,
		queue:       make(chan Event, bufferSize),
		stopCh:      make(chan struct{}),
	}
	bus.wg.Add(1)
	go bus.run()
	return bus
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a subscription by ID.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish queues an event for dispatch. Events published after Stop are
// dropped.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case b.queue <- event:
	case <-b.stopCh:
	}
}

// Stop stops the bus after draining queued events.
func (b *Bus) Stop() {
	close(b.stopCh)
	b.wg.Wait()
}

func (b *Bus) run() {
	defer b.wg.Done()
	for {
		select {
		case event := <-b.queue:
			b.dispatch(event)
		case <-b.stopCh:
			for {
				select {
				case event := <-b.queue:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	subs := b.subscribers[event.Type]
	handlers := make([]Handler, len(subs))
	for i, sub := range subs {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() { recover() }()
			handler(event)
		}()
	}
}
