package tsar

import "sync/atomic"

// RingBuffer is a fixed capacity FIFO queue for exactly one producer goroutine
// and one consumer goroutine. The read and write indices only ever grow; the
// slot of an index is index % capacity. The producer owns the write index and
// the consumer owns the read index, so neither side takes a lock and neither
// side ever waits for the other.
type RingBuffer[T any] struct {
	buf   []T
	read  atomic.Uint64
	write atomic.Uint64
}

// NewRingBuffer creates a ring buffer holding at most capacity elements.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{buf: make([]T, capacity)}
}

func (r *RingBuffer[T]) Cap() int { return len(r.buf) }

// ReadSpace returns the number of elements available to the consumer.
func (r *RingBuffer[T]) ReadSpace() int {
	return int(r.write.Load() - r.read.Load())
}

// WriteSpace returns the number of free slots available to the producer.
func (r *RingBuffer[T]) WriteSpace() int {
	return len(r.buf) - r.ReadSpace()
}

// Write appends v. It returns false, leaving the buffer untouched, if the
// buffer is full. Only the producer may call Write.
func (r *RingBuffer[T]) Write(v T) bool {
	w := r.write.Load()
	if w-r.read.Load() >= uint64(len(r.buf)) {
		return false
	}
	r.buf[w%uint64(len(r.buf))] = v
	r.write.Store(w + 1) // publishes the element to the consumer
	return true
}

// Read removes and returns the oldest element. ok is false if the buffer is
// empty. Only the consumer may call Read.
func (r *RingBuffer[T]) Read() (v T, ok bool) {
	rd := r.read.Load()
	if rd == r.write.Load() {
		return v, false
	}
	i := rd % uint64(len(r.buf))
	v = r.buf[i]
	var zero T
	r.buf[i] = zero // drop the reference so the slot does not keep objects alive
	r.read.Store(rd + 1)
	return v, true
}
