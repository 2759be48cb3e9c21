// uartline/ringbuffer.go

package uartline

import "sync/atomic"

// DefaultBufferSize is the receive ring size used when Config.BufferSize is zero.
const DefaultBufferSize = 64

// RingBuffer is a fixed-size single-producer/single-consumer byte ring.
//
// Only the producer (the receive handler) moves head; only the consumer moves
// tail. One slot is kept free to tell full from empty, so a ring of size N
// holds at most N-1 bytes. The data byte is stored before head is published.
type RingBuffer struct {
	buf  []byte
	head atomic.Uint32
	tail atomic.Uint32
}

// NewRingBuffer returns a ring of DefaultBufferSize slots.
func NewRingBuffer() *RingBuffer {
	return NewRingBufferSize(DefaultBufferSize)
}

// NewRingBufferSize returns a ring with n slots (n-1 usable). Sizes below 2
// are raised to 2.
func NewRingBufferSize(n int) *RingBuffer {
	if n < 2 {
		n = 2
	}
	return &RingBuffer{buf: make([]byte, n)}
}

// Size returns the total number of slots, including the reserved one.
func (rb *RingBuffer) Size() int { return len(rb.buf) }

// Used returns how many bytes are waiting to be read.
func (rb *RingBuffer) Used() int {
	n := uint32(len(rb.buf))
	return int((n + rb.head.Load() - rb.tail.Load()) % n)
}

// Free returns how many more bytes Put will accept.
func (rb *RingBuffer) Free() int { return len(rb.buf) - 1 - rb.Used() }

// Available reports whether at least one byte can be read.
func (rb *RingBuffer) Available() bool {
	return rb.head.Load() != rb.tail.Load()
}

// Put stores a byte. If the ring is full the byte is dropped, head is left
// alone and false is returned. Producer side only.
func (rb *RingBuffer) Put(val byte) bool {
	h := rb.head.Load()
	next := (h + 1) % uint32(len(rb.buf))
	if next == rb.tail.Load() {
		return false
	}
	rb.buf[h] = val     // 1) write data
	rb.head.Store(next) // 2) publish
	return true
}

// Get returns the oldest byte. If the ring is empty it returns (0, false).
// Consumer side only.
func (rb *RingBuffer) Get() (byte, bool) {
	t := rb.tail.Load()
	if t == rb.head.Load() {
		return 0, false
	}
	v := rb.buf[t]                               // 1) read current element
	rb.tail.Store((t + 1) % uint32(len(rb.buf))) // 2) publish consumption
	return v, true
}

// Clear discards everything buffered by moving tail up to head. It is safe
// from the consumer side while the producer is running.
func (rb *RingBuffer) Clear() {
	rb.tail.Store(rb.head.Load())
}
