package event

import "reflect"

// Bus is a double-buffered event bus: events emitted during tick N
// land in the back buffer and become visible to handlers when the
// scheduler rotates buffers at the start of tick N+1. Single-goroutine
// use only — the simulation core is single-threaded by contract, so
// registration and emission both happen on the scheduler goroutine.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

// Emit queues an event for delivery next tick.
func Emit[T any](b *Bus, ev T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Rotate swaps back→front and clears the new back buffer. Called once
// at tick start, before Dispatch.
func (b *Bus) Rotate() {
	b.front, b.back = b.back, b.front
	for t := range b.back {
		b.back[t] = b.back[t][:0]
	}
}

// Dispatch delivers every front-buffer event to its handlers, in
// emission order per type.
func (b *Bus) Dispatch() {
	for t, events := range b.front {
		for _, ev := range events {
			for _, h := range b.handlers[t] {
				// Subscribe and Emit key on the same type, so the
				// dynamic call signature always matches.
				reflect.ValueOf(h).Call([]reflect.Value{reflect.ValueOf(ev)})
			}
		}
	}
}
