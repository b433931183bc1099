// Package streamgo provides an embedded asset streaming manager for Go.
//
// Streamgo loads game/engine assets (textures, meshes, audio, raw
// blobs) on demand from a pluggable blob store, orders the work with a
// priority queue serviced by a worker pool, keeps resident content
// under a memory budget and evicts least-recently-used, unreferenced
// assets when the budget runs hot.
//
// # Quick Start
//
// Local payloads:
//
//	store, _ := blobstore.NewLocalStore("./assets")
//	m, _ := streamgo.New(store,
//	    streamgo.WithMemoryBudget(256<<20),
//	    streamgo.WithWorkers(4),
//	)
//	defer m.Close()
//
//	_ = m.Register(ctx, asset.Metadata{ID: "hero", Path: "textures/hero.png", Type: "texture"})
//
//	h, _ := m.Load(ctx, "hero", asset.PriorityHigh)
//	defer h.Close()
//	if a, ok := h.Asset(); ok {
//	    // use a
//	}
//
// Cloud payloads:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("assets/"))
//	m, _ := streamgo.New(s3Store)
//
// # Load Modes
//
// Three ways to get content:
//
//	// 1. SYNCHRONOUS — blocks until resident, runs on the caller.
//	h, err := m.Load(ctx, "hero", asset.PriorityCritical)
//
//	// 2. ASYNCHRONOUS — returns a pending handle immediately.
//	h, _ := m.LoadAsync("hero", asset.PriorityHigh)
//	// h.State() reports Queued/Loading until settled.
//
//	// 3. FUTURE — one-shot result channel.
//	res := <-m.LoadFuture("hero", asset.PriorityMedium)
//
// Batches load as a unit with progress reporting:
//
//	g := m.LoadTag("scene", "intro", asset.PriorityHigh,
//	    streamgo.WithProgress(func(done, total int) { ... }),
//	)
//	_ = g.Wait(ctx)
//
// # Memory Model
//
// Handles are counted references: while any handle on an asset is
// open, the asset is pinned and will not be evicted. Budget is
// reserved from the size estimate before a load starts and settled on
// the actual resident size afterwards; loads that cannot fit force one
// eviction pass and then fail with ErrBudgetExceeded.
//
// # Key Features
//
//   - Priority-banded load queue (background..critical, FIFO per band)
//   - Bounded worker pool with per-worker statistics
//   - Global + per-category memory budgets
//   - Pluggable eviction policies (LRU built in)
//   - Level-of-detail retargeting with in-place content swap
//   - Tag index for batch scene operations
//   - Local mmap, in-memory, S3 and MinIO payload stores
//   - Transparent zstd/lz4 payload decompression
package streamgo
