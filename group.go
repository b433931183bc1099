package streamgo

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/streamgo/asset"
)

// Group tracks a batch of asynchronous loads as one unit: a scene's
// assets, everything under a tag, a preload manifest. Progress and
// completion callbacks fire as members settle; Wait blocks until all
// of them have.
type Group struct {
	m     *Manager
	total int

	onProgress func(done, total int)
	onComplete func(failed int)

	mu        sync.Mutex
	ids       []string
	done      int
	failed    int
	errs      []error
	handles   []Handle
	submitted bool

	finished chan struct{}
}

// GroupOption configures a Group before its loads are submitted.
type GroupOption func(*Group)

// WithProgress sets a callback invoked after each member settles,
// successfully or not. Callbacks run on loading-worker goroutines and
// must not block.
func WithProgress(fn func(done, total int)) GroupOption {
	return func(g *Group) {
		g.onProgress = fn
	}
}

// WithOnComplete sets a callback invoked exactly once when the last
// member settles, with the number of failed members.
func WithOnComplete(fn func(failed int)) GroupOption {
	return func(g *Group) {
		g.onComplete = fn
	}
}

// LoadBatch queues asynchronous loads for all ids and returns a Group
// tracking them. The group owns one handle per successfully submitted
// member; they are released by Close.
func (m *Manager) LoadBatch(ids []string, prio asset.Priority, optFns ...GroupOption) *Group {
	g := &Group{
		m:        m,
		total:    len(ids),
		ids:      append([]string(nil), ids...),
		finished: make(chan struct{}),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(g)
		}
	}

	for _, id := range g.ids {
		h, err := m.LoadAsync(id, prio, func(err error) {
			g.settle(err)
		})
		if err != nil {
			g.settle(err)
			continue
		}
		g.mu.Lock()
		g.handles = append(g.handles, h)
		g.mu.Unlock()
	}
	g.finishSubmit()
	return g
}

// LoadTag queues asynchronous loads for every asset carrying the tag
// pair. Equivalent to LoadBatch(IDsByTag(key, value), ...).
func (m *Manager) LoadTag(key, value string, prio asset.Priority, optFns ...GroupOption) *Group {
	return m.LoadBatch(m.IDsByTag(key, value), prio, optFns...)
}

// settle records one member's terminal outcome and fires callbacks.
// The group finishes only once every member has settled AND the submit
// loop is done, so already-resident members (whose callbacks fire
// inside LoadAsync) cannot complete the group before its handles are
// in place.
func (g *Group) settle(err error) {
	g.mu.Lock()
	g.done++
	if err != nil {
		g.failed++
		g.errs = append(g.errs, err)
	}
	done, failed := g.done, g.failed
	last := g.submitted && done == g.total
	g.mu.Unlock()

	if g.onProgress != nil {
		g.onProgress(done, g.total)
	}
	if last {
		g.finish(failed)
	}
}

func (g *Group) finishSubmit() {
	g.mu.Lock()
	g.submitted = true
	last := g.done == g.total
	failed := g.failed
	g.mu.Unlock()

	if last {
		g.finish(failed)
	}
}

func (g *Group) finish(failed int) {
	if g.onComplete != nil {
		g.onComplete(failed)
	}
	close(g.finished)
}

// Wait blocks until every member has settled or ctx is done. It
// returns the members' errors joined (nil when all succeeded).
func (g *Group) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.finished:
	}
	return g.Err()
}

// Err returns the joined errors of settled members so far.
func (g *Group) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

// Progress returns how many members have settled out of the total.
func (g *Group) Progress() (done, total int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done, g.total
}

// Cancel removes members still sitting in the load queue; their
// waiters settle with ErrCanceled. In-flight and finished members are
// unaffected.
func (g *Group) Cancel() int {
	n := 0
	for _, id := range g.ids {
		if g.m.CancelQueued(id) {
			n++
		}
	}
	return n
}

// Handles returns the group's open handles. Valid once Wait has
// returned; the handles stay owned by the group.
func (g *Group) Handles() []Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Handle(nil), g.handles...)
}

// Close releases the group's handles. The loaded content stays
// resident but unpinned.
func (g *Group) Close() {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()

	for _, h := range handles {
		h.Close()
	}
}
