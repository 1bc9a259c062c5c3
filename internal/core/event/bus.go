package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by EventDispatchSystem.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]handlerEntry
	nextID   uint64
}

type handlerEntry struct {
	id uint64
	fn any
}

// Subscription removes its handler when Unsubscribe is called. Calling it
// more than once is harmless.
type Subscription struct {
	bus *Bus
	typ reflect.Type
	id  uint64
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]handlerEntry),
	}
}

// Emit queues an event into the back buffer (will be readable next tick).
// A nil bus drops the event.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.nextID++
	b.handlers[t] = append(b.handlers[t], handlerEntry{id: b.nextID, fn: fn})
	return Subscription{bus: b, typ: t, id: b.nextID}
}

func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	hs := b.handlers[s.typ]
	for i, h := range hs {
		if h.id == s.id {
			b.handlers[s.typ] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

// Pending returns how many events wait in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		b.mu.Lock()
		handlers := append([]handlerEntry(nil), b.handlers[t]...)
		b.mu.Unlock()
		for _, ev := range events {
			for _, h := range handlers {
				// Subscribe and Emit use the same type key, so the call is well-typed.
				callHandler(h.fn, ev)
			}
		}
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
