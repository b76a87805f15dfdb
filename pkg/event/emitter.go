package event

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Wildcard subscribes a listener to every event.
const Wildcard = "*"

// Listener reacts to an emitted event.
type Listener[E any] func(payload E) error

type subscription[E any] struct {
	fn   Listener[E]
	once bool
}

// Emitter is an ordered, synchronous event registry.
// The zero value is not usable; create one with New.
type Emitter[E any] struct {
	listeners map[string][]subscription[E]
	mu        sync.RWMutex
}

// New creates an empty Emitter.
func New[E any]() *Emitter[E] {
	return &Emitter[E]{listeners: make(map[string][]subscription[E])}
}

// Subscribe appends fn to the listeners of name.
func (em *Emitter[E]) Subscribe(name string, fn Listener[E]) error {
	return em.add(name, fn, false)
}

// SubscribeOnce appends fn to the listeners of name.
// The listener is removed after its first invocation.
func (em *Emitter[E]) SubscribeOnce(name string, fn Listener[E]) error {
	return em.add(name, fn, true)
}

// HasListeners reports whether name has at least one listener.
// Wildcard listeners are not counted.
func (em *Emitter[E]) HasListeners(name string) bool {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.listeners[name]) > 0
}

// Count returns the number of listeners subscribed to name.
func (em *Emitter[E]) Count(name string) int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.listeners[name])
}

// Forget removes every listener of name.
func (em *Emitter[E]) Forget(name string) {
	em.mu.Lock()
	defer em.mu.Unlock()
	delete(em.listeners, name)
}

// Emit calls the listeners of name in subscription order, then the wildcard
// listeners. Every listener runs even if an earlier one fails; the returned
// error joins all listener errors, each annotated with the event name.
// A listener that panics is not recovered.
func (em *Emitter[E]) Emit(name string, payload E) error {
	subs := em.snapshot(name)
	if name != Wildcard {
		subs = append(subs, em.snapshot(Wildcard)...)
	}

	var errs []error
	for _, sub := range subs {
		if err := sub.fn(payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (em *Emitter[E]) add(name string, fn Listener[E], once bool) error {
	if name == "" {
		return ErrEmptyName
	}
	if fn == nil {
		return ErrNilListener
	}

	em.mu.Lock()
	defer em.mu.Unlock()
	em.listeners[name] = append(em.listeners[name], subscription[E]{fn: fn, once: once})
	return nil
}

// snapshot copies the listeners of name and drops one-shot listeners from the
// registry so concurrent emits cannot run them twice.
func (em *Emitter[E]) snapshot(name string) []subscription[E] {
	em.mu.Lock()
	defer em.mu.Unlock()

	subs := em.listeners[name]
	if len(subs) == 0 {
		return nil
	}
	out := slices.Clone(subs)

	if slices.ContainsFunc(subs, func(s subscription[E]) bool { return s.once }) {
		kept := slices.DeleteFunc(slices.Clone(subs), func(s subscription[E]) bool { return s.once })
		if len(kept) == 0 {
			delete(em.listeners, name)
		} else {
			em.listeners[name] = kept
		}
	}
	return out
}
