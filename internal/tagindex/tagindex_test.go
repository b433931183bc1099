package tagindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex_AddRemove(t *testing.T) {
	ix := New()

	ix.Add(1, map[string]string{"scene": "intro", "kind": "texture"})
	ix.Add(2, map[string]string{"scene": "intro", "kind": "audio"})
	ix.Add(3, map[string]string{"scene": "boss"})

	assert.Equal(t, []uint32{1, 2}, ix.Ordinals("scene", "intro"))
	assert.Equal(t, []uint32{3}, ix.Ordinals("scene", "boss"))
	assert.Nil(t, ix.Ordinals("scene", "outro"))

	assert.True(t, ix.Contains(1, "kind", "texture"))
	assert.False(t, ix.Contains(2, "kind", "texture"))
	assert.Equal(t, uint64(2), ix.Cardinality("scene", "intro"))

	ix.Remove(1, map[string]string{"scene": "intro", "kind": "texture"})
	assert.Equal(t, []uint32{2}, ix.Ordinals("scene", "intro"))
	assert.Nil(t, ix.Ordinals("kind", "texture"))
}

func TestIndex_OrdinalsAll(t *testing.T) {
	ix := New()

	ix.Add(1, map[string]string{"scene": "intro", "kind": "texture"})
	ix.Add(2, map[string]string{"scene": "intro", "kind": "audio"})
	ix.Add(3, map[string]string{"scene": "boss", "kind": "texture"})

	got := ix.OrdinalsAll(map[string]string{"scene": "intro", "kind": "texture"})
	assert.Equal(t, []uint32{1}, got)

	assert.Nil(t, ix.OrdinalsAll(map[string]string{"scene": "intro", "kind": "mesh"}))
	assert.Nil(t, ix.OrdinalsAll(nil))
}

func TestIndex_EmptyTags(t *testing.T) {
	ix := New()

	// Untagged assets are simply not indexed.
	ix.Add(9, nil)
	ix.Remove(9, nil)
	assert.Nil(t, ix.Ordinals("any", "thing"))
}
