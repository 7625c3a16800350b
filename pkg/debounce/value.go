package debounce

import "sync"

// Value holds a value that settles after a quiet period. OnSettle receives
// the last value set in each burst.
type Value[T any] struct {
	d        *Debouncer
	onSettle func(T)

	mu      sync.Mutex
	current T
	settled T
}

// NewValue wires a debounced value to onSettle.
func NewValue[T any](d *Debouncer, onSettle func(T)) *Value[T] {
	return &Value[T]{d: d, onSettle: onSettle}
}

// Set records v and restarts the quiet period.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.current = val
	v.mu.Unlock()

	v.d.Trigger(func() {
		v.mu.Lock()
		v.settled = val
		v.mu.Unlock()
		if v.onSettle != nil {
			v.onSettle(val)
		}
	})
}

// Current returns the latest value set, settled or not.
func (v *Value[T]) Current() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Settled returns the last value delivered to onSettle.
func (v *Value[T]) Settled() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settled
}
