package streamgo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/streamgo/asset"
	"github.com/hupe1980/streamgo/blobstore"
	"github.com/hupe1980/streamgo/eviction"
	"github.com/hupe1980/streamgo/internal/budget"
	"github.com/hupe1980/streamgo/internal/cache"
	"github.com/hupe1980/streamgo/internal/queue"
	"github.com/hupe1980/streamgo/internal/tagindex"
	"github.com/hupe1980/streamgo/loader"
)

// Result is the terminal outcome of an asynchronous load.
// On success Handle is open and owned by the receiver, who must close
// it. On failure Handle is the zero value and Err explains why.
type Result struct {
	Handle Handle
	Err    error
}

// waiter is one party waiting for an asset's in-flight load to finish.
// Exactly one terminal notification is delivered per waiter.
type waiter struct {
	ch     chan Result
	onDone func(error)
}

type assetBox struct{ a asset.Asset }

// entry is the manager's per-asset bookkeeping. The atomic fields are
// readable without locks (handles use them); meta, waiters, loadedLOD
// and inflight are guarded by Manager.mu.
type entry struct {
	id      string
	ordinal uint32

	state      atomic.Int32
	refs       atomic.Int64
	usage      atomic.Int64
	lastAccess atomic.Int64 // unix nanos

	content atomic.Pointer[assetBox]

	// Guarded by Manager.mu.
	meta      asset.Metadata
	loadedLOD int
	waiters   []*waiter
	inflight  bool
}

func (e *entry) touch(at time.Time) {
	e.lastAccess.Store(at.UnixNano())
}

// transition moves the lifecycle state along a legal edge, spinning on
// concurrent movers. Returns false if the edge is illegal.
func (e *entry) transition(next asset.State) bool {
	for {
		cur := asset.State(e.state.Load())
		if cur == next {
			return true
		}
		if !cur.CanTransition(next) {
			return false
		}
		if e.state.CompareAndSwap(int32(cur), int32(next)) {
			return true
		}
	}
}

// Manager streams assets from a blob store under a memory budget.
//
// All methods are safe for concurrent use.
type Manager struct {
	store blobstore.Store
	opts  options

	logger  *Logger
	metrics MetricsCollector

	budget  *budget.Budget
	queue   *queue.Queue
	cache   *cache.LRU[*entry]
	policy  eviction.Policy
	tags    *tagindex.Index
	limiter *rate.Limiter // nil when IO is unthrottled

	now func() time.Time

	mu          sync.Mutex
	registry    map[string]*entry
	byOrdinal   map[uint32]*entry
	loaders     []loader.Loader
	nextOrdinal uint32

	workers []*workerState
	wg      sync.WaitGroup
	closed  atomic.Bool

	loads        atomic.Int64
	loadFailures atomic.Int64
	loadNanos    atomic.Int64
	stalled      atomic.Int64
	evicted      atomic.Int64
}

// New creates a streaming manager reading payloads from store and
// starts its loading workers.
//
// The manager ships with the built-in compressed and raw loaders;
// RegisterLoader adds format-specific ones in front of them.
func New(store blobstore.Store, optFns ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("streamgo: nil blob store")
	}

	opts := applyOptions(optFns)

	m := &Manager{
		store:     store,
		opts:      opts,
		logger:    opts.logger,
		metrics:   opts.metricsCollector,
		budget:    budget.New(opts.memoryBudget),
		queue:     queue.New(),
		cache:     cache.NewLRU[*entry](opts.cacheSize),
		policy:    opts.policy,
		tags:      tagindex.New(),
		now:       opts.now,
		registry:  make(map[string]*entry),
		byOrdinal: make(map[uint32]*entry),
		loaders:   []loader.Loader{loader.NewCompressed(), loader.NewRaw()},
	}

	for category, limit := range opts.categoryLimits {
		m.budget.SetCategoryLimit(category, limit)
	}

	if opts.ioBytesPerSecond > 0 {
		burst := int(opts.ioBytesPerSecond)
		if burst < ioChunkSize {
			burst = ioChunkSize
		}
		m.limiter = rate.NewLimiter(rate.Limit(opts.ioBytesPerSecond), burst)
	}

	for i := 0; i < opts.workers; i++ {
		w := &workerState{}
		m.workers = append(m.workers, w)
		m.wg.Add(1)
		go m.runWorker(w)
	}

	m.logger.Info("streaming manager started",
		"workers", opts.workers,
		"memory_budget", opts.memoryBudget,
	)
	return m, nil
}

// Close stops the workers, fails outstanding waiters with ErrClosed and
// unloads all resident content. Close is idempotent.
func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	m.queue.Close()
	m.wg.Wait()

	m.mu.Lock()
	entries := make([]*entry, 0, len(m.registry))
	for _, e := range m.registry {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	for _, e := range entries {
		m.completeLoad(e, ErrClosed)

		m.mu.Lock()
		if asset.State(e.state.Load()) == asset.StateQueued {
			e.state.Store(int32(asset.StateUnloaded))
		}
		typ := e.meta.Type
		a, freed, ok := m.detachLocked(e)
		m.mu.Unlock()

		if ok {
			a.Unload()
			m.budget.Release(typ, freed)
			m.policy.OnAssetUnloaded(e.id)
		}
	}
	m.cache.Clear()

	m.logger.Info("streaming manager closed",
		"memory_peak", m.budget.Peak(),
	)
	return nil
}

// RegisterLoader adds a payload loader. Loaders are consulted in
// registration order before the built-in compressed and raw loaders,
// first CanLoad match wins.
func (m *Manager) RegisterLoader(l loader.Loader) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders = append([]loader.Loader{l}, m.loaders...)
}

// Register makes an asset known to the manager. The payload must exist
// in the store; its size fills in a missing EstimatedSize. Registering
// an id again replaces the previous registration and unloads its
// content, unless handles are still open on it.
func (m *Manager) Register(ctx context.Context, meta asset.Metadata) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := meta.Validate(); err != nil {
		err = &ErrInvalidMetadata{ID: meta.ID, cause: err}
		m.logger.LogRegister(ctx, meta.ID, meta.EstimatedSize, err)
		return err
	}

	size, err := m.store.Stat(ctx, meta.Path)
	if err != nil {
		err = fmt.Errorf("register %q: stat %q: %w", meta.ID, meta.Path, err)
		m.logger.LogRegister(ctx, meta.ID, meta.EstimatedSize, err)
		return err
	}
	meta = meta.Clone()
	if meta.EstimatedSize == 0 {
		meta.EstimatedSize = size
	}
	meta.Priority = meta.Priority.Clamp()

	m.mu.Lock()
	prev := m.registry[meta.ID]
	m.mu.Unlock()
	if prev != nil {
		if prev.refs.Load() > 0 {
			return fmt.Errorf("register %q: %w", meta.ID, ErrStillReferenced)
		}
		if err := m.Unregister(meta.ID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	e := &entry{
		id:      meta.ID,
		ordinal: m.nextOrdinal,
		meta:    meta,
	}
	e.loadedLOD = meta.CurrentLOD
	m.nextOrdinal++
	m.registry[meta.ID] = e
	m.byOrdinal[e.ordinal] = e
	m.mu.Unlock()

	m.tags.Add(e.ordinal, meta.Tags)
	m.logger.LogRegister(ctx, meta.ID, meta.EstimatedSize, nil)
	return nil
}

// ImportAsset derives metadata for a payload via the first registered
// loader implementing loader.MetadataExtractor and registers it.
func (m *Manager) ImportAsset(ctx context.Context, path string) (asset.Metadata, error) {
	if m.closed.Load() {
		return asset.Metadata{}, ErrClosed
	}

	m.mu.Lock()
	loaders := m.loaders
	m.mu.Unlock()

	for _, l := range loaders {
		ex, ok := l.(loader.MetadataExtractor)
		if !ok || !l.CanLoad(path) {
			continue
		}
		meta, err := ex.ExtractMetadata(ctx, m.store, path)
		if err != nil {
			return asset.Metadata{}, fmt.Errorf("import %q: %w", path, err)
		}
		if err := m.Register(ctx, meta); err != nil {
			return asset.Metadata{}, err
		}
		return meta, nil
	}
	return asset.Metadata{}, fmt.Errorf("import %q: %w", path, ErrNoLoader)
}

// Unregister removes an asset, force-unloading resident content even
// when handles are open (they turn invalid). Queued loads are canceled
// and their waiters fail with ErrCanceled. Unregistering an unknown id
// is a no-op.
func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.registry, id)
	delete(m.byOrdinal, e.ordinal)
	tags := e.meta.Tags
	typ := e.meta.Type
	if asset.State(e.state.Load()) == asset.StateQueued {
		e.state.Store(int32(asset.StateUnloaded))
	}
	m.mu.Unlock()

	m.queue.Remove(func(r *queue.Request) bool { return r.ID == id })
	m.completeLoad(e, fmt.Errorf("unregister %q: %w", id, ErrCanceled))

	m.mu.Lock()
	a, freed, detached := m.detachLocked(e)
	m.mu.Unlock()
	if detached {
		a.Unload()
		m.budget.Release(typ, freed)
		m.metrics.RecordUnload(id, freed, false)
		m.logger.LogUnload(context.Background(), id, freed, false)
	}

	m.tags.Remove(e.ordinal, tags)
	m.cache.Remove(id)
	m.policy.OnAssetUnloaded(id)
	return nil
}

// Load loads an asset synchronously and returns an open handle.
// Already-resident assets return immediately; otherwise the load
// pipeline runs on the calling goroutine (or the call joins an
// in-flight load for the same id). ctx aborts the wait, not the load.
func (m *Manager) Load(ctx context.Context, id string, prio asset.Priority) (Handle, error) {
	if m.closed.Load() {
		return Handle{}, ErrClosed
	}
	prio = prio.Clamp()

	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		return Handle{}, fmt.Errorf("load %q: %w", id, ErrNotFound)
	}
	if asset.State(e.state.Load()) == asset.StateLoaded {
		h := newHandle(e)
		m.mu.Unlock()
		m.touchLoaded(e)
		return h, nil
	}

	ch := make(chan Result, 1)
	e.waiters = append(e.waiters, &waiter{ch: ch})
	runInline := !e.inflight
	if runInline {
		e.inflight = true
		e.state.Store(int32(asset.StateLoading))
	}
	m.mu.Unlock()

	if runInline {
		m.runLoad(ctx, e, prio)
	}

	select {
	case <-ctx.Done():
		// The load keeps going; reap the eventual handle so the
		// reference is not leaked.
		go func() {
			res := <-ch
			res.Handle.Close()
		}()
		return Handle{}, ctx.Err()
	case res := <-ch:
		return res.Handle, res.Err
	}
}

// LoadAsync queues a load and returns an open handle immediately. The
// handle reports Queued/Loading until the load settles; it pins the
// asset either way and must be closed. Optional onDone callbacks fire
// exactly once with the terminal error (nil on success), from the
// loading worker's goroutine.
func (m *Manager) LoadAsync(id string, prio asset.Priority, onDone ...func(error)) (Handle, error) {
	if m.closed.Load() {
		return Handle{}, ErrClosed
	}
	prio = prio.Clamp()

	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		return Handle{}, fmt.Errorf("load %q: %w", id, ErrNotFound)
	}
	h := newHandle(e)

	if asset.State(e.state.Load()) == asset.StateLoaded {
		m.mu.Unlock()
		m.touchLoaded(e)
		for _, cb := range onDone {
			cb(nil)
		}
		return h, nil
	}

	for _, cb := range onDone {
		e.waiters = append(e.waiters, &waiter{onDone: cb})
	}
	req := m.enqueueLocked(e, prio)
	m.mu.Unlock()

	if req != nil {
		if err := m.queue.Push(req); err != nil {
			h.Close()
			m.completeLoad(e, ErrClosed)
			return Handle{}, ErrClosed
		}
	} else {
		m.queue.UpdatePriority(id, prio)
	}
	return h, nil
}

// LoadFuture queues a load and returns a single-result channel. The
// Result's handle (on success) is owned by the receiver.
func (m *Manager) LoadFuture(id string, prio asset.Priority) <-chan Result {
	ch := make(chan Result, 1)

	if m.closed.Load() {
		ch <- Result{Err: ErrClosed}
		return ch
	}
	prio = prio.Clamp()

	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		ch <- Result{Err: fmt.Errorf("load %q: %w", id, ErrNotFound)}
		return ch
	}
	if asset.State(e.state.Load()) == asset.StateLoaded {
		h := newHandle(e)
		m.mu.Unlock()
		m.touchLoaded(e)
		ch <- Result{Handle: h}
		return ch
	}

	e.waiters = append(e.waiters, &waiter{ch: ch})
	req := m.enqueueLocked(e, prio)
	m.mu.Unlock()

	if req != nil {
		if err := m.queue.Push(req); err != nil {
			m.completeLoad(e, ErrClosed)
		}
	}
	return ch
}

// enqueueLocked transitions an idle entry to Queued and builds its
// request. Returns nil when a load is already queued or in flight.
// Caller holds m.mu.
func (m *Manager) enqueueLocked(e *entry, prio asset.Priority) *queue.Request {
	if e.inflight {
		return nil
	}
	st := asset.State(e.state.Load())
	if st == asset.StateQueued || st == asset.StateLoading {
		return nil
	}
	e.state.Store(int32(asset.StateQueued))
	return &queue.Request{
		ID:        e.id,
		Priority:  prio,
		LOD:       e.meta.CurrentLOD,
		Submitted: m.now(),
	}
}

// Preload loads ids synchronously in parallel, bounded by the worker
// count, and releases the handles so the content stays resident but
// unpinned. The first error aborts outstanding waits.
func (m *Manager) Preload(ctx context.Context, ids []string, prio asset.Priority) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			h, err := m.Load(ctx, id, prio)
			if err != nil {
				return err
			}
			h.Close()
			return nil
		})
	}
	return g.Wait()
}

// Unload tears down a loaded asset and returns its memory to the
// budget. Queued loads are canceled instead. Returns
// ErrStillReferenced while handles are open or a load is in flight;
// unloading an asset without resident content is a no-op.
func (m *Manager) Unload(id string) error {
	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unload %q: %w", id, ErrNotFound)
	}

	switch asset.State(e.state.Load()) {
	case asset.StateQueued:
		m.mu.Unlock()
		m.CancelQueued(id)
		return nil
	case asset.StateLoading:
		m.mu.Unlock()
		return fmt.Errorf("unload %q: load in flight: %w", id, ErrStillReferenced)
	case asset.StateLoaded:
		if e.refs.Load() > 0 {
			m.mu.Unlock()
			return fmt.Errorf("unload %q: %w", id, ErrStillReferenced)
		}
		typ := e.meta.Type
		a, freed, detached := m.detachLocked(e)
		m.mu.Unlock()
		if detached {
			a.Unload()
			m.budget.Release(typ, freed)
			m.cache.Remove(id)
			m.policy.OnAssetUnloaded(id)
			m.metrics.RecordUnload(id, freed, false)
			m.logger.LogUnload(context.Background(), id, freed, false)
		}
		return nil
	default:
		m.mu.Unlock()
		return nil
	}
}

// CancelQueued removes an asset's pending request from the queue and
// fails its waiters with ErrCanceled. Returns false when no load is
// queued (in-flight loads are never preempted).
func (m *Manager) CancelQueued(id string) bool {
	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok || e.inflight || asset.State(e.state.Load()) != asset.StateQueued {
		m.mu.Unlock()
		return false
	}
	e.state.Store(int32(asset.StateUnloaded))
	m.mu.Unlock()

	m.queue.Remove(func(r *queue.Request) bool { return r.ID == id })
	m.completeLoad(e, fmt.Errorf("load %q: %w", id, ErrCanceled))
	return true
}

// UpdatePriority changes the scheduling priority of an asset, both for
// a request already sitting in the queue and for future loads. Returns
// false for unknown ids.
func (m *Manager) UpdatePriority(id string, prio asset.Priority) bool {
	prio = prio.Clamp()

	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	e.meta.Priority = prio
	m.mu.Unlock()

	m.queue.UpdatePriority(id, prio)
	return true
}

// SetDistancePriority derives the asset's priority from the observer
// distance (see asset.DistancePriority).
func (m *Manager) SetDistancePriority(id string, distance, criticalDistance float64) bool {
	return m.UpdatePriority(id, asset.DistancePriority(distance, criticalDistance))
}

// SetVisibilityPriority derives the asset's priority from visibility
// state (see asset.VisibilityPriority).
func (m *Manager) SetVisibilityPriority(id string, visible, inFrustum bool) bool {
	return m.UpdatePriority(id, asset.VisibilityPriority(visible, inFrustum))
}

// RequestLOD retargets an asset to a detail level. Loaded assets are
// re-enqueued at their current priority and swap content when the new
// level is resident; idle assets simply load the level next time.
func (m *Manager) RequestLOD(id string, level int) error {
	if m.closed.Load() {
		return ErrClosed
	}

	m.mu.Lock()
	e, ok := m.registry[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("lod %q: %w", id, ErrNotFound)
	}
	if level != 0 && e.meta.LODFor(level) == nil {
		m.mu.Unlock()
		return &ErrInvalidLOD{ID: id, Level: level}
	}
	if e.meta.CurrentLOD == level {
		m.mu.Unlock()
		return nil
	}
	e.meta.CurrentLOD = level

	var req *queue.Request
	if asset.State(e.state.Load()) == asset.StateLoaded && !e.inflight {
		req = &queue.Request{
			ID:        id,
			Priority:  e.meta.Priority,
			LOD:       level,
			Submitted: m.now(),
		}
	}
	m.mu.Unlock()

	if req != nil {
		if err := m.queue.Push(req); err != nil {
			return ErrClosed
		}
	}
	return nil
}

// IDsByTag returns the ids of registered assets carrying the tag pair,
// in registration order.
func (m *Manager) IDsByTag(key, value string) []string {
	ordinals := m.tags.Ordinals(key, value)
	if len(ordinals) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(ordinals))
	for _, ord := range ordinals {
		if e, ok := m.byOrdinal[ord]; ok {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// CancelTag cancels all queued loads of assets carrying the tag pair
// and returns how many were canceled.
func (m *Manager) CancelTag(key, value string) int {
	n := 0
	for _, id := range m.IDsByTag(key, value) {
		if m.CancelQueued(id) {
			n++
		}
	}
	return n
}

// TriggerEviction runs an eviction pass trying to free targetBytes.
// A non-positive target uses the configured eviction target fraction
// of current usage. Returns the bytes actually freed.
func (m *Manager) TriggerEviction(targetBytes int64) int64 {
	if targetBytes <= 0 {
		targetBytes = int64(float64(m.budget.Used()) * m.opts.evictionTarget)
	}
	return m.evict(targetBytes)
}

// Update is the per-frame maintenance hook: it reports queue depth to
// the metrics collector and starts an eviction pass when budget usage
// crosses the configured trigger fraction.
func (m *Manager) Update(ctx context.Context) {
	if m.closed.Load() {
		return
	}

	m.metrics.RecordQueueDepth(m.queue.Len())

	total := m.budget.Total()
	if total <= 0 {
		return
	}
	used := m.budget.Used()
	if float64(used) >= float64(total)*m.opts.evictionTrigger {
		target := int64(float64(used) * m.opts.evictionTarget)
		m.evict(target)
	}
}

// Stats returns a point-in-time snapshot of the manager.
func (m *Manager) Stats() Stats {
	s := Stats{
		MemoryUsed:   m.budget.Used(),
		MemoryBudget: m.budget.Total(),
		MemoryPeak:   m.budget.Peak(),
		QueueDepth:   m.queue.Len(),
		Loads:        m.loads.Load(),
		LoadFailures: m.loadFailures.Load(),
		StalledLoads: m.stalled.Load(),
		Evictions:    m.evicted.Load(),
		CacheHitRate: m.cache.HitRate(),
	}
	if s.Loads > 0 {
		s.AvgLoadTime = time.Duration(m.loadNanos.Load() / s.Loads)
	}

	m.mu.Lock()
	s.RegisteredAssets = len(m.registry)
	for _, e := range m.registry {
		switch asset.State(e.state.Load()) {
		case asset.StateLoaded:
			s.LoadedAssets++
		case asset.StateQueued:
			s.QueuedAssets++
		case asset.StateLoading:
			s.LoadingAssets++
		case asset.StateFailed:
			s.FailedAssets++
		}
	}
	m.mu.Unlock()

	s.Workers = make([]WorkerStats, len(m.workers))
	for i, w := range m.workers {
		s.Workers[i] = WorkerStats{
			Processed: w.processed.Load(),
			Failed:    w.failed.Load(),
			Busy:      time.Duration(w.busyNanos.Load()),
		}
		if n := w.lastActive.Load(); n > 0 {
			s.Workers[i].LastActive = time.Unix(0, n)
		}
	}
	return s
}

// touchLoaded refreshes access bookkeeping after serving a resident
// asset.
func (m *Manager) touchLoaded(e *entry) {
	at := m.now()
	e.touch(at)
	m.cache.Get(e.id)
	m.policy.OnAssetAccessed(e.id, at)
}

// detachLocked strips a Loaded (or Expired) entry of its content and
// walks it to Unloaded, returning the content and its accounted size.
// The caller releases budget and calls Unload outside the lock.
// Caller holds m.mu.
func (m *Manager) detachLocked(e *entry) (asset.Asset, int64, bool) {
	st := asset.State(e.state.Load())
	if st != asset.StateLoaded && st != asset.StateExpired {
		return nil, 0, false
	}
	if !e.transition(asset.StateUnloading) {
		return nil, 0, false
	}
	box := e.content.Swap(nil)
	freed := e.usage.Swap(0)
	e.state.Store(int32(asset.StateUnloaded))
	if box == nil {
		return nil, freed, false
	}
	return box.a, freed, true
}

// completeLoad delivers the terminal outcome to every waiter collected
// so far. Future channels receive an owned handle on success.
func (m *Manager) completeLoad(e *entry, err error) {
	m.mu.Lock()
	ws := e.waiters
	e.waiters = nil
	m.mu.Unlock()

	for _, w := range ws {
		if w.ch != nil {
			res := Result{Err: err}
			if err == nil {
				res.Handle = newHandle(e)
			}
			w.ch <- res
		}
		if w.onDone != nil {
			w.onDone(err)
		}
	}
}
