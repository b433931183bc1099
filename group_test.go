package streamgo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamgo/asset"
)

func TestGroup_LoadBatch(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, map[string][]byte{
		"a.bin": []byte("aa"),
		"b.bin": []byte("bb"),
		"c.bin": []byte("cc"),
	})
	for _, id := range []string{"a", "b", "c"} {
		mustRegister(t, m, texture(id, id+".bin", 0))
	}

	var mu sync.Mutex
	var progress []int
	completed := make(chan int, 1)

	g := m.LoadBatch([]string{"a", "b", "c"}, asset.PriorityHigh,
		WithProgress(func(done, total int) {
			mu.Lock()
			progress = append(progress, done)
			mu.Unlock()
			assert.Equal(t, 3, total)
		}),
		WithOnComplete(func(failed int) { completed <- failed }),
	)
	require.NoError(t, g.Wait(ctx))

	assert.Equal(t, 0, <-completed)
	// Settles run on worker goroutines; each done count shows up once.
	mu.Lock()
	assert.ElementsMatch(t, []int{1, 2, 3}, progress)
	mu.Unlock()

	done, total := g.Progress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 3, total)

	handles := g.Handles()
	require.Len(t, handles, 3)
	for _, h := range handles {
		assert.True(t, h.IsValid())
	}

	// Closing the group unpins everything.
	g.Close()
	require.NoError(t, m.Unload("a"))
}

func TestGroup_PartialFailure(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, map[string][]byte{"a.bin": []byte("aa")})
	mustRegister(t, m, texture("a", "a.bin", 0))

	completed := make(chan int, 1)
	g := m.LoadBatch([]string{"a", "ghost"}, asset.PriorityMedium,
		WithOnComplete(func(failed int) { completed <- failed }),
	)
	defer g.Close()

	err := g.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, <-completed)

	// The registered member still loaded.
	handles := g.Handles()
	require.Len(t, handles, 1)
	assert.True(t, handles[0].IsValid())
}

func TestGroup_Empty(t *testing.T) {
	m := newTestManager(t, nil)

	completed := make(chan int, 1)
	g := m.LoadBatch(nil, asset.PriorityMedium,
		WithOnComplete(func(failed int) { completed <- failed }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.Wait(ctx))
	assert.Equal(t, 0, <-completed)
	assert.Empty(t, g.Handles())
}

func TestGroup_WaitContext(t *testing.T) {
	sl := &scriptedLoader{
		entered: make(chan string, 4),
		gate:    make(chan struct{}, 4),
	}
	m := newTestManager(t, map[string][]byte{"slow.rec": []byte("x")},
		WithWorkers(1))
	m.RegisterLoader(sl)
	mustRegister(t, m, asset.Metadata{ID: "slow", Path: "slow.rec", Type: "raw"})

	g := m.LoadBatch([]string{"slow"}, asset.PriorityMedium)
	defer g.Close()
	require.Equal(t, "slow", <-sl.entered)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)

	sl.gate <- struct{}{}
	require.NoError(t, g.Wait(context.Background()))
}
