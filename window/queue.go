package window

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// Queue is the bounded capture→processing hand-off. Blocks are stored in a
// byte ring with a length prefix; when the ring is full the oldest blocks
// are evicted so a transcriber slower than real time costs stale audio, not
// memory.
type Queue struct {
	mu      sync.Mutex
	rb      *ringbuffer.RingBuffer
	count   int
	dropped uint64
}

// NewQueue sizes the ring for roughly blocks sample blocks of blockSize
// samples each.
func NewQueue(blocks, blockSize int) *Queue {
	if blocks < 1 {
		blocks = 1
	}
	size := blocks * (4 + blockSize*4)
	return &Queue{
		rb: ringbuffer.New(size).SetBlocking(false),
	}
}

// Push enqueues a block, evicting the oldest entries when the ring is full.
// It never blocks.
func (q *Queue) Push(block []float32) {
	data := encodeBlock(block)

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(data) > q.rb.Capacity() {
		// A single oversized block can never fit; count it as dropped.
		q.dropped++
		return
	}
	for q.rb.Free() < len(data) {
		if !q.evictOldest() {
			q.rb.Reset()
			q.count = 0
			break
		}
		q.count--
		q.dropped++
	}

	q.rb.Write(data)
	q.count++
}

// Pop dequeues the oldest block, reporting false when the queue is empty.
func (q *Queue) Pop() ([]float32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.rb.IsEmpty() {
		return nil, false
	}

	sizeBytes := make([]byte, 4)
	if n, err := q.rb.Read(sizeBytes); err != nil || n != 4 {
		return nil, false
	}
	size := int(binary.LittleEndian.Uint32(sizeBytes))

	data := make([]byte, size)
	if n, err := q.rb.Read(data); err != nil || n != size {
		return nil, false
	}
	q.count--

	return decodeSamples(data), true
}

// Len reports the number of buffered blocks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Dropped reports how many blocks have been evicted since creation.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

func (q *Queue) evictOldest() bool {
	if q.rb.IsEmpty() {
		return false
	}
	sizeBytes := make([]byte, 4)
	if n, err := q.rb.Read(sizeBytes); err != nil || n != 4 {
		return false
	}
	size := int(binary.LittleEndian.Uint32(sizeBytes))
	skip := make([]byte, size)
	if n, err := q.rb.Read(skip); err != nil || n != size {
		return false
	}
	return true
}

func encodeBlock(block []float32) []byte {
	data := make([]byte, 4+len(block)*4)
	binary.LittleEndian.PutUint32(data, uint32(len(block)*4))
	for i, s := range block {
		binary.LittleEndian.PutUint32(data[4+i*4:], math.Float32bits(s))
	}
	return data
}

func decodeSamples(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
