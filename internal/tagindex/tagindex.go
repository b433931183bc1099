// Package tagindex maintains an inverted index from tag key/value
// pairs to asset ordinals, backed by Roaring Bitmaps. The streaming
// manager uses it for batch operations over asset groups (load a
// scene's assets, cancel a scene's queued loads).
package tagindex

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index maps "key=value" tag pairs to bitmaps of asset ordinals.
// Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	bitmaps map[string]*roaring.Bitmap
}

// New creates an empty index.
func New() *Index {
	return &Index{
		bitmaps: make(map[string]*roaring.Bitmap),
	}
}

func tagKey(key, value string) string {
	return key + "=" + value
}

// Add indexes ordinal under every tag pair.
func (ix *Index) Add(ordinal uint32, tags map[string]string) {
	if len(tags) == 0 {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for k, v := range tags {
		tk := tagKey(k, v)
		bm, ok := ix.bitmaps[tk]
		if !ok {
			bm = roaring.New()
			ix.bitmaps[tk] = bm
		}
		bm.Add(ordinal)
	}
}

// Remove drops ordinal from every tag pair.
func (ix *Index) Remove(ordinal uint32, tags map[string]string) {
	if len(tags) == 0 {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for k, v := range tags {
		tk := tagKey(k, v)
		if bm, ok := ix.bitmaps[tk]; ok {
			bm.Remove(ordinal)
			if bm.IsEmpty() {
				delete(ix.bitmaps, tk)
			}
		}
	}
}

// Ordinals returns the ordinals indexed under key=value in ascending
// order. Returns nil when no asset carries the tag.
func (ix *Index) Ordinals(key, value string) []uint32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bm, ok := ix.bitmaps[tagKey(key, value)]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// OrdinalsAll returns ordinals carrying every given tag pair
// (bitmap intersection).
func (ix *Index) OrdinalsAll(tags map[string]string) []uint32 {
	if len(tags) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var acc *roaring.Bitmap
	for k, v := range tags {
		bm, ok := ix.bitmaps[tagKey(k, v)]
		if !ok {
			return nil
		}
		if acc == nil {
			acc = bm.Clone()
		} else {
			acc.And(bm)
		}
	}
	if acc == nil || acc.IsEmpty() {
		return nil
	}
	return acc.ToArray()
}

// Contains reports whether ordinal is indexed under key=value.
func (ix *Index) Contains(ordinal uint32, key, value string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bm, ok := ix.bitmaps[tagKey(key, value)]
	return ok && bm.Contains(ordinal)
}

// Cardinality returns the number of ordinals under key=value.
func (ix *Index) Cardinality(key, value string) uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if bm, ok := ix.bitmaps[tagKey(key, value)]; ok {
		return bm.GetCardinality()
	}
	return 0
}
