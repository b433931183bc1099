// Package queue implements the blocking priority queue feeding the
// loading workers. Requests are ordered by priority (highest first)
// and FIFO within one priority band.
package queue

import (
	"container/heap"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/streamgo/asset"
)

// ErrClosed is returned when pushing to a closed queue.
var ErrClosed = errors.New("queue: closed")

// Request is one pending load. It is consumed and discarded once a
// worker pops it; completion routing happens on the manager's per-asset
// bookkeeping, not on the request.
type Request struct {
	ID        string
	Priority  asset.Priority
	LOD       int
	Submitted time.Time

	seq   uint64 // FIFO tie-break within a priority band
	index int    // heap bookkeeping
}

// Compile time check to ensure requestHeap satisfies the heap interface.
var _ heap.Interface = (*requestHeap)(nil)

type requestHeap []*Request

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *requestHeap) Push(x any) {
	req, _ := x.(*Request)
	req.index = len(*h)
	*h = append(*h, req)
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	req := old[n-1]
	old[n-1] = nil // Avoid memory leak
	req.index = -1
	*h = old[:n-1]
	return req
}

// Queue is a mutex/condvar guarded priority queue. Pop blocks until a
// request is available or the queue is closed.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	heap   requestHeap
	seq    uint64
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a request and wakes one waiting worker.
func (q *Queue) Push(req *Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.seq++
	req.seq = q.seq
	heap.Push(&q.heap, req)
	q.cond.Signal()
	return nil
}

// Pop blocks until a request is available or the queue is closed.
// It returns ok=false once the queue is closed; remaining requests are
// abandoned at that point (shutdown does not drain).
func (q *Queue) Pop() (*Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return nil, false
		}
		if q.heap.Len() > 0 {
			req, _ := heap.Pop(&q.heap).(*Request)
			return req, true
		}
		q.cond.Wait()
	}
}

// TryPop pops the highest-priority request without blocking.
func (q *Queue) TryPop() (*Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.heap.Len() == 0 {
		return nil, false
	}
	req, _ := heap.Pop(&q.heap).(*Request)
	return req, true
}

// Remove removes all queued requests matching the predicate and
// returns them so the caller can resolve their waiters.
func (q *Queue) Remove(pred func(*Request) bool) []*Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	var removed []*Request
	kept := q.heap[:0]
	for _, req := range q.heap {
		if pred(req) {
			removed = append(removed, req)
		} else {
			kept = append(kept, req)
		}
	}
	// Zero the tail so removed requests are not pinned.
	for i := len(kept); i < len(q.heap); i++ {
		q.heap[i] = nil
	}
	q.heap = kept
	heap.Init(&q.heap)
	return removed
}

// UpdatePriority adjusts the priority of queued requests for id.
// Requests already popped by a worker are unaffected.
func (q *Queue) UpdatePriority(id string, p asset.Priority) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	found := false
	for _, req := range q.heap {
		if req.ID == id && req.Priority != p {
			req.Priority = p
			heap.Fix(&q.heap, req.index)
			found = true
		}
	}
	return found
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// Close marks the queue closed and wakes all waiting workers.
// Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
