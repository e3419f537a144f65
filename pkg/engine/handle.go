package engine

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// PanicError wraps a panic recovered from a spawned closure so it can
// be delivered as an ordinary error through the closure's Handle.
type PanicError struct {
	// Value is the value the closure panicked with.
	Value any

	// Stack is the goroutine stack captured at recovery.
	Stack []byte
}

// Error describes the captured panic.
func (e *PanicError) Error() string {
	return fmt.Sprintf("closure panicked: %v", e.Value)
}

// result carries a closure's value or its captured panic.
type result[T any] struct {
	value T
	err   error
}

// runTask executes f, converting a panic into a PanicError result so a
// failing closure reports a recoverable error instead of breaking the
// completion channel.
func runTask[T any](f func() T) (res result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res.err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	res.value = f()
	return
}

// Handle is the one-shot completion token returned by SpawnNet and
// SpawnCPU. It transitions from pending to ready exactly once and is
// consumed exactly once by Join.
type Handle[T any] struct {
	ch     chan result[T]
	joined atomic.Bool
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{ch: make(chan result[T], 1)}
}

// complete delivers the closure result. Called exactly once.
func (h *Handle[T]) complete(res result[T]) {
	h.ch <- res
}

// Join blocks until the spawned closure finishes and returns its
// value. If the closure panicked, Join returns a *PanicError instead.
// A Handle is consumed by Join; calling it a second time panics.
func (h *Handle[T]) Join() (T, error) {
	if h.joined.Swap(true) {
		panic("engine: handle joined twice")
	}
	res := <-h.ch
	return res.value, res.err
}
