package loader

import (
	"sync"

	"image-viewer/internal/imageformat"
	"image-viewer/internal/metrics"
)

// Request describes one unit of decode work, consumed exactly once by a
// worker.
type Request struct {
	Path       string
	Format     imageformat.Format
	Thumbnail  bool
	TargetSize int
}

// requestQueue holds the two scheduling lanes behind a single mutex and a
// single wake signal, so a worker waiting for work can never miss an urgent
// enqueue while watching the background lane.
//
// Urgent requests form an unbounded FIFO. Background requests form a LIFO
// stack with a fixed cap: in a scrolling thumbnail grid the newest request
// is the one most likely still on-screen, so overflow drops the oldest
// entry, never the newest.
type requestQueue struct {
	mu         sync.Mutex
	urgent     []Request
	background []Request
	capacity   int

	// superseded counts background requests dropped on overflow. They
	// produce no event, so consumers balancing requests against results
	// reconcile through this counter.
	superseded int64

	// wake carries at most one pending signal; workers block on it with a
	// short timeout when both lanes are empty.
	wake chan struct{}
}

func newRequestQueue(backgroundCap int) *requestQueue {
	return &requestQueue{
		capacity: backgroundCap,
		wake:     make(chan struct{}, 1),
	}
}

func (q *requestQueue) pushUrgent(r Request) {
	q.mu.Lock()
	q.urgent = append(q.urgent, r)
	depth := len(q.urgent)
	q.mu.Unlock()

	metrics.LoaderQueueDepth.WithLabelValues("urgent").Set(float64(depth))
	q.signal()
}

func (q *requestQueue) pushBackground(r Request) {
	q.mu.Lock()
	if len(q.background) >= q.capacity {
		// Drop the single oldest entry; it represents the stalest scroll
		// position.
		copy(q.background, q.background[1:])
		q.background = q.background[:len(q.background)-1]
		q.superseded++
		metrics.LoaderBackgroundDropped.Inc()
	}
	q.background = append(q.background, r)
	depth := len(q.background)
	q.mu.Unlock()

	metrics.LoaderQueueDepth.WithLabelValues("background").Set(float64(depth))
	q.signal()
}

// pop returns the next request without blocking: urgent front first, then
// background top.
func (q *requestQueue) pop() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.urgent) > 0 {
		r := q.urgent[0]
		copy(q.urgent, q.urgent[1:])
		q.urgent = q.urgent[:len(q.urgent)-1]
		metrics.LoaderQueueDepth.WithLabelValues("urgent").Set(float64(len(q.urgent)))
		return r, true
	}

	if len(q.background) > 0 {
		r := q.background[len(q.background)-1]
		q.background = q.background[:len(q.background)-1]
		metrics.LoaderQueueDepth.WithLabelValues("background").Set(float64(len(q.background)))
		return r, true
	}

	return Request{}, false
}

func (q *requestQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *requestQueue) depths() (urgent, background int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.urgent), len(q.background)
}

func (q *requestQueue) supersededCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.superseded
}
