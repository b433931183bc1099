package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Bound(t *testing.T) {
	const maxSize = 4
	c := NewLRU[int](maxSize)

	// Inserting maxSize+1 distinct keys leaves exactly maxSize entries,
	// with the least-recently-accessed key absent.
	for i := 0; i < maxSize+1; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}

	assert.Equal(t, maxSize, c.Len())
	assert.False(t, c.Contains("key-0"))
	for i := 1; i <= maxSize; i++ {
		assert.True(t, c.Contains(fmt.Sprintf("key-%d", i)))
	}
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	c := NewLRU[string](2)

	c.Put("a", "1")
	c.Put("b", "2")

	// Touch "a" so "b" becomes the eviction victim.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", "3")

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
}

func TestLRU_HitRate(t *testing.T) {
	c := NewLRU[int](8)
	assert.Equal(t, 0.0, c.HitRate())

	c.Put("x", 1)

	_, _ = c.Get("x")       // hit
	_, _ = c.Get("x")       // hit
	_, _ = c.Get("missing") // miss

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
	assert.InDelta(t, 2.0/3.0, c.HitRate(), 1e-9)
}

func TestLRU_AccessCount(t *testing.T) {
	c := NewLRU[int](8)

	c.Put("x", 1)
	_, _ = c.Get("x")
	_, _ = c.Get("x")

	assert.Equal(t, int64(3), c.AccessCount("x"))
	assert.Equal(t, int64(0), c.AccessCount("missing"))
}

func TestLRU_RemoveAndClear(t *testing.T) {
	c := NewLRU[int](8)

	c.Put("x", 1)
	c.Put("y", 2)

	assert.True(t, c.Remove("x"))
	assert.False(t, c.Remove("x"))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains("y"))
}

func TestLRU_PutExistingRefreshes(t *testing.T) {
	c := NewLRU[int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // refresh, not insert

	assert.Equal(t, 2, c.Len())

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	// "b" is now oldest.
	c.Put("c", 3)
	assert.False(t, c.Contains("b"))
}
