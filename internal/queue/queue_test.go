package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamgo/asset"
)

func TestQueue_PriorityOrdering(t *testing.T) {
	q := New()

	// A (Critical, t=0), B (Medium, t=1), C (Critical, t=2)
	require.NoError(t, q.Push(&Request{ID: "A", Priority: asset.PriorityCritical}))
	require.NoError(t, q.Push(&Request{ID: "B", Priority: asset.PriorityMedium}))
	require.NoError(t, q.Push(&Request{ID: "C", Priority: asset.PriorityCritical}))

	var order []string
	for i := 0; i < 3; i++ {
		req, ok := q.TryPop()
		require.True(t, ok)
		order = append(order, req.ID)
	}

	assert.Equal(t, []string{"A", "C", "B"}, order)
}

func TestQueue_FIFOWithinBand(t *testing.T) {
	q := New()

	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, q.Push(&Request{ID: id, Priority: asset.PriorityLow}))
	}

	var order []string
	for i := 0; i < 3; i++ {
		req, ok := q.TryPop()
		require.True(t, ok)
		order = append(order, req.ID)
	}

	assert.Equal(t, []string{"x", "y", "z"}, order)
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := New()

	got := make(chan *Request, 1)
	go func() {
		req, ok := q.Pop()
		if ok {
			got <- req
		}
	}()

	// Give the popper a moment to block.
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Push(&Request{ID: "late", Priority: asset.PriorityMedium}))

	select {
	case req := <-got:
		assert.Equal(t, "late", req.ID)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on Push")
	}
}

func TestQueue_CloseWakesAllWaiters(t *testing.T) {
	q := New()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.Pop()
			assert.False(t, ok)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not wake on Close")
	}

	// Push after close is rejected.
	assert.ErrorIs(t, q.Push(&Request{ID: "nope"}), ErrClosed)
	// Close is idempotent.
	q.Close()
}

func TestQueue_Remove(t *testing.T) {
	q := New()

	require.NoError(t, q.Push(&Request{ID: "keep", Priority: asset.PriorityHigh}))
	require.NoError(t, q.Push(&Request{ID: "drop-1", Priority: asset.PriorityMedium}))
	require.NoError(t, q.Push(&Request{ID: "drop-2", Priority: asset.PriorityCritical}))

	removed := q.Remove(func(r *Request) bool {
		return r.ID == "drop-1" || r.ID == "drop-2"
	})
	assert.Len(t, removed, 2)
	assert.Equal(t, 1, q.Len())

	req, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, "keep", req.ID)
}

func TestQueue_UpdatePriority(t *testing.T) {
	q := New()

	require.NoError(t, q.Push(&Request{ID: "a", Priority: asset.PriorityBackground}))
	require.NoError(t, q.Push(&Request{ID: "b", Priority: asset.PriorityHigh}))

	// Promote "a" above "b".
	assert.True(t, q.UpdatePriority("a", asset.PriorityCritical))
	assert.False(t, q.UpdatePriority("missing", asset.PriorityCritical))

	req, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, "a", req.ID)
}
