package streamgo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/streamgo/asset"
	"github.com/hupe1980/streamgo/blobstore"
	"github.com/hupe1980/streamgo/eviction"
	"github.com/hupe1980/streamgo/internal/queue"
	"github.com/hupe1980/streamgo/loader"
)

// ioChunkSize is the slice size throttled payload reads are broken
// into. It bounds how far a single read can overshoot the rate limit.
const ioChunkSize = 256 << 10

type workerState struct {
	processed  atomic.Int64
	failed     atomic.Int64
	busyNanos  atomic.Int64
	lastActive atomic.Int64 // unix nanos
}

// runWorker is one loading worker's main loop. It exits when the queue
// closes.
func (m *Manager) runWorker(w *workerState) {
	defer m.wg.Done()

	for {
		req, ok := m.queue.Pop()
		if !ok {
			return
		}
		m.serveRequest(req, w)
	}
}

// serveRequest claims the request's entry and runs the load pipeline.
// Requests whose work evaporated while queued (canceled, unregistered,
// already resident, claimed by an inline load) are skipped; the claim
// guarantees at most one pipeline per asset at a time.
func (m *Manager) serveRequest(req *queue.Request, w *workerState) {
	start := m.now()

	m.mu.Lock()
	e, ok := m.registry[req.ID]
	if !ok || e.inflight {
		m.mu.Unlock()
		return
	}
	st := asset.State(e.state.Load())
	switch st {
	case asset.StateUnloading, asset.StateExpired:
		m.mu.Unlock()
		return
	case asset.StateLoaded:
		if e.loadedLOD == e.meta.CurrentLOD {
			m.mu.Unlock()
			m.completeLoad(e, nil)
			return
		}
		// LOD retarget: keep serving the old content while the new
		// level materializes.
	}
	e.inflight = true
	if st != asset.StateLoaded {
		e.state.Store(int32(asset.StateLoading))
	}
	m.mu.Unlock()

	err := m.runLoad(context.Background(), e, req.Priority)

	w.processed.Add(1)
	if err != nil {
		w.failed.Add(1)
	}
	now := m.now()
	w.busyNanos.Add(int64(now.Sub(start)))
	w.lastActive.Store(now.UnixNano())
}

// runLoad executes the load pipeline for a claimed entry: resolve the
// loader, reserve budget, read and decode the payload, settle the
// budget on the actual size and publish the content. The entry must
// have been claimed (inflight set) by the caller; runLoad releases the
// claim and notifies waiters.
func (m *Manager) runLoad(ctx context.Context, e *entry, prio asset.Priority) error {
	start := m.now()

	m.mu.Lock()
	meta := e.meta.Clone()
	wasLoaded := asset.State(e.state.Load()) == asset.StateLoaded
	m.mu.Unlock()

	target := meta.CurrentLOD
	path := meta.PathForLOD(target)
	a, usage, err := m.materialize(ctx, meta, target, path)
	dur := m.now().Sub(start)

	if m.opts.loadTimeout > 0 && dur > m.opts.loadTimeout {
		m.stalled.Add(1)
		m.logger.WarnContext(ctx, "load exceeded advisory timeout",
			"asset", e.id,
			"duration", dur,
			"timeout", m.opts.loadTimeout,
		)
	}

	var oldContent asset.Asset
	var oldUsage int64
	discard := false

	m.mu.Lock()
	if m.registry[e.id] != e {
		// Unregistered while loading; the content has no home.
		discard = true
		e.inflight = false
		m.mu.Unlock()
	} else {
		if err != nil {
			if !wasLoaded {
				e.state.Store(int32(asset.StateFailed))
			}
		} else {
			if wasLoaded {
				if box := e.content.Swap(&assetBox{a: a}); box != nil {
					oldContent = box.a
				}
				oldUsage = e.usage.Swap(usage)
			} else {
				e.content.Store(&assetBox{a: a})
				e.usage.Store(usage)
				e.state.Store(int32(asset.StateLoaded))
			}
			e.loadedLOD = target
			e.touch(m.now())
		}
		e.inflight = false
		m.mu.Unlock()
	}

	if discard && err == nil {
		a.Unload()
		m.budget.Release(meta.Type, usage)
		err = fmt.Errorf("load %q: %w", e.id, ErrCanceled)
	}
	if oldContent != nil {
		oldContent.Unload()
		m.budget.Release(meta.Type, oldUsage)
	}

	m.loads.Add(1)
	m.loadNanos.Add(int64(dur))
	if err != nil {
		m.loadFailures.Add(1)
		if _, ok := err.(*LoadError); !ok {
			err = &LoadError{ID: e.id, Path: path, Priority: prio, cause: err}
		}
	} else {
		m.cache.Put(e.id, e)
		m.policy.OnAssetLoaded(e.id, m.now())
	}

	m.metrics.RecordLoad(e.id, usage, dur, err)
	m.logger.LogLoad(ctx, e.id, prio, usage, dur, err)
	m.completeLoad(e, err)
	return err
}

// materialize turns a payload into resident content. Budget is
// reserved up front from the size estimate and settled against the
// actual resident size afterwards; a reservation that does not fit
// forces one eviction pass before the load fails with
// ErrBudgetExceeded.
func (m *Manager) materialize(ctx context.Context, meta asset.Metadata, level int, path string) (asset.Asset, int64, error) {
	l := m.loaderFor(path)
	if l == nil {
		return nil, 0, fmt.Errorf("%q: %w", path, ErrNoLoader)
	}

	reserve := meta.SizeForLOD(level)
	if !m.budget.TryAllocate(meta.Type, reserve) {
		m.evict(reserve)
		if !m.budget.TryAllocate(meta.Type, reserve) {
			return nil, 0, fmt.Errorf("reserve %d bytes: %w", reserve, ErrBudgetExceeded)
		}
	}

	blob, err := m.store.Open(ctx, path)
	if err != nil {
		m.budget.Release(meta.Type, reserve)
		return nil, 0, fmt.Errorf("open %q: %w", path, err)
	}
	defer func() { _ = blob.Close() }()

	rd := blobstore.Blob(blob)
	if m.limiter != nil {
		rd = &throttledBlob{Blob: blob, limiter: m.limiter}
	}

	a, err := safeLoad(ctx, l, meta, rd)
	if err != nil {
		m.budget.Release(meta.Type, reserve)
		return nil, 0, err
	}

	// Settle the reservation on what actually stays resident.
	actual := a.MemoryUsage()
	switch {
	case actual > reserve:
		extra := actual - reserve
		if !m.budget.TryAllocate(meta.Type, extra) {
			m.evict(extra)
			if !m.budget.TryAllocate(meta.Type, extra) {
				a.Unload()
				m.budget.Release(meta.Type, reserve)
				return nil, 0, fmt.Errorf("resident size %d exceeds reservation: %w", actual, ErrBudgetExceeded)
			}
		}
	case actual < reserve:
		m.budget.Release(meta.Type, reserve-actual)
	}
	return a, actual, nil
}

// loaderFor returns the first registered loader accepting path.
func (m *Manager) loaderFor(path string) loader.Loader {
	m.mu.Lock()
	loaders := m.loaders
	m.mu.Unlock()

	for _, l := range loaders {
		if l.CanLoad(path) {
			return l
		}
	}
	return nil
}

// safeLoad shields the pipeline from loader panics; a panicking loader
// fails the one load instead of killing the worker.
func safeLoad(ctx context.Context, l loader.Loader, meta asset.Metadata, b blobstore.Blob) (a asset.Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = fmt.Errorf("loader panic: %v", r)
		}
	}()
	return l.Load(ctx, meta, b)
}

// evict frees at least target bytes of unpinned resident content,
// policy-ordered. Returns the bytes actually freed, which can fall
// short when too much content is pinned.
func (m *Manager) evict(target int64) int64 {
	if target <= 0 {
		return 0
	}

	m.mu.Lock()
	candidates := make([]eviction.Candidate, 0, len(m.registry))
	for id, e := range m.registry {
		if e.inflight || asset.State(e.state.Load()) != asset.StateLoaded {
			continue
		}
		candidates = append(candidates, eviction.Candidate{
			ID:         id,
			Memory:     e.usage.Load(),
			LastAccess: time.Unix(0, e.lastAccess.Load()),
			Unloadable: e.refs.Load() == 0,
		})
	}
	m.mu.Unlock()

	selected := m.policy.SelectForEviction(candidates, target)

	var freed int64
	unloaded := 0
	for _, id := range selected {
		m.mu.Lock()
		e, ok := m.registry[id]
		if !ok || e.inflight || e.refs.Load() != 0 {
			m.mu.Unlock()
			continue
		}
		if !e.transition(asset.StateExpired) {
			m.mu.Unlock()
			continue
		}
		typ := e.meta.Type
		a, n, detached := m.detachLocked(e)
		m.mu.Unlock()
		if !detached {
			continue
		}

		a.Unload()
		m.budget.Release(typ, n)
		m.cache.Remove(id)
		m.policy.OnAssetUnloaded(id)
		m.metrics.RecordUnload(id, n, true)
		m.logger.LogUnload(context.Background(), id, n, true)
		m.evicted.Add(1)

		freed += n
		unloaded++
		if freed >= target {
			break
		}
	}

	m.metrics.RecordEviction(unloaded, freed)
	m.logger.LogEviction(context.Background(), unloaded, freed, target)
	return freed
}

// throttledBlob rate-limits payload reads across all workers.
type throttledBlob struct {
	blobstore.Blob
	limiter *rate.Limiter
}

// ReadAt implements blobstore.Blob, charging the limiter per chunk.
func (t *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := len(p)
		if chunk > ioChunkSize {
			chunk = ioChunkSize
		}
		if err := t.limiter.WaitN(ctx, chunk); err != nil {
			return total, err
		}
		n, err := t.Blob.ReadAt(ctx, p[:chunk], off)
		total += n
		if err != nil {
			return total, err
		}
		p = p[n:]
		off += int64(n)
	}
	return total, nil
}
