package pixel

import "sync/atomic"

// DefaultCapacity is 256 Ki batches: several frames of video, since a
// 50 Hz frame at one batch per 2 MHz cycle is 40,000 batches.
const DefaultCapacity = 262144

// cacheLinePad is sized to separate the producer and consumer cursors
// onto distinct cache lines, matching the alignas(64) split in the
// reference implementation this queue is grounded on.
type cacheLinePad [64 - 8]byte

// Queue is a lock-free single-producer/single-consumer ring buffer of
// Batch values. Exactly one goroutine may call the Producer methods and
// exactly one (possibly different) goroutine may call the Consumer
// methods concurrently, without further synchronization.
type Queue struct {
	capacity uint64
	buf      []Batch

	readPos uint64
	_       cacheLinePad
	writePos uint64
	_        cacheLinePad
}

// NewQueue builds a Queue with room for capacity batches.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		capacity: uint64(capacity),
		buf:      make([]Batch, capacity),
	}
}

// Span is a contiguous window into the queue's backing array.
type Span struct {
	q     *Queue
	start uint64
	n     uint64
}

// Len reports the number of batches in the span.
func (s Span) Len() int { return int(s.n) }

// At returns a pointer to the i'th batch in the span for in-place
// writing (producer) or reading (consumer).
func (s Span) At(i int) *Batch {
	idx := (s.start + uint64(i)) % s.q.capacity
	return &s.q.buf[idx]
}

// ProducerBuffer is the (possibly wraparound) pair of spans the
// producer writes into before calling Produce.
type ProducerBuffer struct {
	A, B Span
}

// Total is the combined writable capacity across both spans.
func (p ProducerBuffer) Total() int { return p.A.Len() + p.B.Len() }

// Empty reports whether the queue had no free space.
func (p ProducerBuffer) Empty() bool { return p.Total() == 0 }

// AcquireProducer returns the writable region of the queue. The caller
// writes into A first, then B (B is non-empty only when the writable
// region wraps past the end of the backing array), then calls Produce
// with however many batches it actually wrote.
func (q *Queue) AcquireProducer() ProducerBuffer {
	readPos := atomic.LoadUint64(&q.readPos)
	writePos := atomic.LoadUint64(&q.writePos)

	used := writePos - readPos
	free := q.capacity - used
	if free == 0 {
		return ProducerBuffer{}
	}

	begin := writePos % q.capacity
	end := begin + free
	if end <= q.capacity {
		return ProducerBuffer{A: Span{q: q, start: begin, n: free}}
	}
	return ProducerBuffer{
		A: Span{q: q, start: begin, n: q.capacity - begin},
		B: Span{q: q, start: 0, n: end - q.capacity},
	}
}

// Produce commits n freshly written batches, making them visible to the
// consumer.
func (q *Queue) Produce(n int) {
	atomic.AddUint64(&q.writePos, uint64(n))
}

// Push writes a single batch, returning false if the queue is full.
func (q *Queue) Push(b Batch) bool {
	buf := q.AcquireProducer()
	if buf.Empty() {
		return false
	}
	*buf.A.At(0) = b
	q.Produce(1)
	return true
}

// Pop reads a single batch, returning false if the queue is empty.
func (q *Queue) Pop() (Batch, bool) {
	buf := q.AcquireConsumer()
	if buf.Empty() {
		return Batch{}, false
	}
	b := *buf.A.At(0)
	q.Consume(1)
	return b, true
}

// ConsumerBuffer is the (possibly wraparound) pair of spans the
// consumer reads from before calling Consume.
type ConsumerBuffer struct {
	A, B Span
}

// Total is the combined readable batch count across both spans.
func (c ConsumerBuffer) Total() int { return c.A.Len() + c.B.Len() }

// Empty reports whether the queue had no produced batches.
func (c ConsumerBuffer) Empty() bool { return c.Total() == 0 }

// AcquireConsumer returns the readable region of the queue. The caller
// reads A first, then B, then calls Consume with however many batches
// it actually consumed.
func (q *Queue) AcquireConsumer() ConsumerBuffer {
	readPos := atomic.LoadUint64(&q.readPos)
	writePos := atomic.LoadUint64(&q.writePos)

	used := writePos - readPos
	if used == 0 {
		return ConsumerBuffer{}
	}

	begin := readPos % q.capacity
	end := begin + used
	if end <= q.capacity {
		return ConsumerBuffer{A: Span{q: q, start: begin, n: used}}
	}
	return ConsumerBuffer{
		A: Span{q: q, start: begin, n: q.capacity - begin},
		B: Span{q: q, start: 0, n: end - q.capacity},
	}
}

// Consume releases n read batches, freeing their slots for the
// producer.
func (q *Queue) Consume(n int) {
	atomic.AddUint64(&q.readPos, uint64(n))
}

// Capacity returns the queue's fixed backing size.
func (q *Queue) Capacity() int { return int(q.capacity) }

// Size returns the number of batches currently queued.
func (q *Queue) Size() int {
	readPos := atomic.LoadUint64(&q.readPos)
	writePos := atomic.LoadUint64(&q.writePos)
	return int(writePos - readPos)
}

// Available returns the number of free slots.
func (q *Queue) Available() int { return q.Capacity() - q.Size() }

// Empty reports whether the queue holds no batches.
func (q *Queue) Empty() bool { return q.Size() == 0 }

// Full reports whether the queue has no free slots.
func (q *Queue) Full() bool { return q.Size() == q.Capacity() }

// Reset returns the queue to empty. Not safe to call concurrently with
// a producer or consumer; only use while the machine is paused.
func (q *Queue) Reset() {
	atomic.StoreUint64(&q.readPos, 0)
	atomic.StoreUint64(&q.writePos, 0)
}
