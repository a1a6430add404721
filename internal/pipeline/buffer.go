package pipeline

import (
	"sync"
)

// RingBuffer is a growable circular FIFO. The spectrometer stages raw
// payload samples in one until a full FFT batch is available.
type RingBuffer[T any] struct {
	data     []T
	capacity int
	size     int
	readPos  int
	writePos int
	mu       sync.Mutex
}

// NewRingBuffer creates a ring buffer with the given initial capacity.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer[T]{
		data:     make([]T, capacity),
		capacity: capacity,
	}
}

// Write appends samples, growing the buffer if needed.
func (b *RingBuffer[T]) Write(samples []T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	needed := len(samples)
	if needed == 0 {
		return
	}

	if b.size+needed > b.capacity {
		b.grow(b.size + needed)
	}

	// At most two contiguous copies: up to the end, then from the start.
	n := copy(b.data[b.writePos:], samples)
	if n < needed {
		copy(b.data, samples[n:])
	}
	b.writePos = (b.writePos + needed) % b.capacity
	b.size += needed
}

// ReadInto moves up to len(dst) samples into dst and returns the count.
func (b *RingBuffer[T]) ReadInto(dst []T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(len(dst), b.size)
	if n == 0 {
		return 0
	}

	first := copy(dst[:n], b.data[b.readPos:])
	if first < n {
		copy(dst[first:n], b.data)
	}
	b.readPos = (b.readPos + n) % b.capacity
	b.size -= n

	return n
}

// Available returns the number of buffered samples.
func (b *RingBuffer[T]) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Clear drops all buffered samples.
func (b *RingBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.size = 0
	b.readPos = 0
	b.writePos = 0
}

// grow doubles the capacity until it holds minCapacity samples, unwrapping
// the contents to the front of the new storage.
func (b *RingBuffer[T]) grow(minCapacity int) {
	newCapacity := b.capacity
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	newData := make([]T, newCapacity)
	if b.size > 0 {
		n := copy(newData, b.data[b.readPos:min(b.readPos+b.size, b.capacity)])
		if n < b.size {
			copy(newData[n:b.size], b.data)
		}
	}

	b.data = newData
	b.capacity = newCapacity
	b.readPos = 0
	b.writePos = b.size % newCapacity
}
