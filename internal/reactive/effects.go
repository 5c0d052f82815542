package reactive

import "sync"

// effectsBuffer bounds how many undelivered one-shot notifications a single
// logical operation may queue for the attached observer.
const effectsBuffer = 16

// Effects is an ordered, at-most-once, unicast notification stream. At most
// one observer is attached at a time; emissions while no observer is attached
// are dropped. These carry UI hints (messages, navigation triggers), never
// state, so a dropped emission is acceptable.
type Effects[T any] struct {
	mu sync.Mutex
	ch chan T
}

func NewEffects[T any]() *Effects[T] {
	return &Effects[T]{}
}

// Attach registers the observer and returns its channel. Attaching replaces
// any previously attached observer; pending notifications queued for the old
// observer are discarded.
func (e *Effects[T]) Attach() <-chan T {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ch = make(chan T, effectsBuffer)
	return e.ch
}

// Detach removes the current observer. Subsequent emissions are dropped.
func (e *Effects[T]) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ch = nil
}

// Emit delivers v to the attached observer in emission order. It reports
// false when the notification was dropped, either because no observer is
// attached or because the observer's buffer is full.
func (e *Effects[T]) Emit(v T) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ch == nil {
		return false
	}
	select {
	case e.ch <- v:
		return true
	default:
		return false
	}
}
