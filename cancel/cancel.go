// Package cancel implements the cooperative cancellation model described in
// spec §4.6/§5: a shared flag a stream consults between yields, and a
// wrapper that drops the inner byte source once cancellation is observed.
package cancel

import "sync/atomic"

// Handle is a shared, cheaply-cloned cancellation flag. The zero value is
// not cancelled.
type Handle struct {
	flag atomic.Bool
}

// NewHandle returns a fresh, uncancelled Handle.
func NewHandle() *Handle {
	return &Handle{}
}

// Cancel requests cancellation. Idempotent.
func (h *Handle) Cancel() {
	h.flag.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool {
	return h.flag.Load()
}

// Dropper is closed to signal the underlying transport (HTTP body, SSE
// reader, ...) should be released.
type Dropper interface {
	Close() error
}

// Stream is the minimal pull interface a cancellable stream wraps.
type Stream[T any] interface {
	// Next returns the next item. ok is false once the stream is
	// exhausted; err is non-nil on a terminal failure.
	Next() (item T, ok bool, err error)
	Dropper
}

// CancellableStream wraps an inner Stream so that, between yields, it
// consults handle and terminates early without emitting further items.
// Its Close drops the inner stream, which signals the HTTP transport to
// close the connection (spec §4.6).
type CancellableStream[T any] struct {
	inner     Stream[T]
	handle    *Handle
	stopped   bool
	closeOnce bool
}

func NewCancellableStream[T any](inner Stream[T], handle *Handle) *CancellableStream[T] {
	return &CancellableStream[T]{inner: inner, handle: handle}
}

// Next returns the next item, or ok=false if the stream ended or was
// cancelled. Once cancelled, at most the item already in flight is
// delivered; no further items are emitted afterward (spec §3 invariant,
// testable property 4).
func (c *CancellableStream[T]) Next() (item T, ok bool, err error) {
	if c.stopped {
		return item, false, nil
	}
	if c.handle.Cancelled() {
		c.stopped = true
		_ = c.Close()
		return item, false, nil
	}
	item, ok, err = c.inner.Next()
	if !ok || err != nil {
		c.stopped = true
		return item, ok, err
	}
	if c.handle.Cancelled() {
		// Deliver the item already retrieved, then stop on the next call.
		c.stopped = true
	}
	return item, ok, err
}

// Close drops the inner stream's underlying byte source.
func (c *CancellableStream[T]) Close() error {
	if c.closeOnce {
		return nil
	}
	c.closeOnce = true
	return c.inner.Close()
}
