package window

import "fmt"

// Accumulator buffers sample blocks into fixed-capacity analysis windows.
// Draining a full window keeps the trailing overlap fraction of it as the
// seed of the next window, so consecutive windows share audio across the
// boundary.
type Accumulator struct {
	capacity int
	retain   int
	buf      []float32
}

// NewAccumulator creates an accumulator for windows of capacity samples.
// overlap is the fraction of a drained window retained for the next one,
// in [0, 1).
func NewAccumulator(capacity int, overlap float64) (*Accumulator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("window capacity must be positive, got %d", capacity)
	}
	if overlap < 0 || overlap >= 1 {
		return nil, fmt.Errorf("overlap fraction must be in [0, 1), got %v", overlap)
	}
	return &Accumulator{
		capacity: capacity,
		retain:   int(float64(capacity) * overlap),
		buf:      make([]float32, 0, capacity*2),
	}, nil
}

// Push appends a sample block to the buffer.
func (a *Accumulator) Push(block []float32) {
	a.buf = append(a.buf, block...)
}

// Drain returns a copy of the oldest full window if one has accumulated.
// The buffer then keeps only the trailing retain samples of the drained
// window, plus whatever arrived beyond it.
func (a *Accumulator) Drain() ([]float32, bool) {
	if len(a.buf) < a.capacity {
		return nil, false
	}

	win := make([]float32, a.capacity)
	copy(win, a.buf[:a.capacity])

	// Discard everything before the overlap tail.
	cut := a.capacity - a.retain
	n := copy(a.buf, a.buf[cut:])
	a.buf = a.buf[:n]

	return win, true
}

// Len reports buffered samples not yet drained.
func (a *Accumulator) Len() int {
	return len(a.buf)
}

// Capacity reports the window size in samples.
func (a *Accumulator) Capacity() int {
	return a.capacity
}

// Reset discards all buffered samples.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
}
