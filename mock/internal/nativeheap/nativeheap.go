// Package nativeheap mocks the memory that the native libraries allocate on
// behalf of their callers, so that tests can check that every buffer handed
// out is released exactly once.
package nativeheap

import (
	"sync"
	"unsafe"
)

// Heap keeps allocations alive until they are freed.
type Heap struct {
	live map[unsafe.Pointer]any

	freeCalls    int
	invalidFrees int

	mu sync.Mutex
}

// New creates an empty heap.
func New() *Heap {
	return &Heap{live: make(map[unsafe.Pointer]any)}
}

// String allocates a NUL-terminated copy of s.
func (h *Heap) String(s string) *byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return h.Bytes(buf)
}

// Bytes allocates a copy of buf as is. No terminator is added.
func (h *Heap) Bytes(buf []byte) *byte {
	if len(buf) == 0 {
		buf = []byte{0}
	}
	c := make([]byte, len(buf))
	copy(c, buf)

	h.track(unsafe.Pointer(&c[0]), c)
	return &c[0]
}

// Array allocates an array of pointers. An empty array is a nil pointer.
func (h *Heap) Array(elems []*byte) **byte {
	if len(elems) == 0 {
		return nil
	}
	c := make([]*byte, len(elems))
	copy(c, elems)

	h.track(unsafe.Pointer(&c[0]), c)
	return &c[0]
}

// Free releases an allocation. Freeing nil is a no-op, while freeing an
// unknown or already freed pointer is recorded as invalid.
func (h *Heap) Free(p unsafe.Pointer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.freeCalls++

	if p == nil {
		return
	}

	if _, ok := h.live[p]; !ok {
		h.invalidFrees++
		return
	}
	delete(h.live, p)
}

// FreeCalls is the number of calls to Free, nil pointers included.
func (h *Heap) FreeCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.freeCalls
}

// Outstanding is the number of allocations that were never freed.
func (h *Heap) Outstanding() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.live)
}

// InvalidFrees is the number of double frees and frees of foreign pointers.
func (h *Heap) InvalidFrees() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.invalidFrees
}

func (h *Heap) track(p unsafe.Pointer, owner any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.live[p] = owner
}
