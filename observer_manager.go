package ecs

import (
	"context"
	"encoding/binary"
	"hash/crc32"
	"runtime"
	"sort"
	"sync"

	"github.com/kamstrup/intmap"
)

// key derives a stable filterKey for deduplication: the CRC-32 of the
// sorted Require ids followed by the sorted Exclude ids. Two Filter values
// built from the same component types, in any construction order, collapse
// to the same Observer.
func (f Filter) key() uint32 {
	req := idsOf(f.require)
	exc := idsOf(f.exclude)
	sort.Slice(req, func(i, j int) bool { return req[i] < req[j] })
	sort.Slice(exc, func(i, j int) bool { return exc[i] < exc[j] })

	buf := make([]byte, 4*(len(req)+len(exc)+1))
	off := 0
	for _, id := range req {
		binary.LittleEndian.PutUint32(buf[off:], uint32(id))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], 0xFFFFFFFF) // separator
	off += 4
	for _, id := range exc {
		binary.LittleEndian.PutUint32(buf[off:], uint32(id))
		off += 4
	}
	return crc32.ChecksumIEEE(buf)
}

func idsOf(accessors []componentAccessor) []ComponentTypeID {
	ids := make([]ComponentTypeID, len(accessors))
	for i, a := range accessors {
		ids[i] = a.id
	}
	return ids
}

// observerEntry pairs an Observer with the refcount of function
// registrations currently referencing its filter. When the count returns
// to zero the entry's refresh is skipped, so iteration order over the
// manager's entries stays stable but the work is elided.
type observerEntry struct {
	observer *Observer
	refcount int
}

// refreshJob is one Observer awaiting its Refresh call on a pool worker.
// done is closed by the worker once Refresh returns (or is skipped because
// the caller's ctx was already cancelled), letting refreshHandle.wait
// block on plain channel receive rather than a result payload — Refresh
// itself has no error to carry back.
type refreshJob struct {
	ctx      context.Context
	observer *Observer
	done     chan struct{}
}

// refreshHandle is returned by PrepareRefresh; Sync blocks on it.
type refreshHandle struct {
	done chan struct{}
}

func (h *refreshHandle) wait() {
	if h == nil || h.done == nil {
		return
	}
	<-h.done
}

// ObserverManager de-duplicates observers by filter identity and owns the
// fixed-size worker pool that refreshes every live observer between
// frames: N long-lived goroutines parked on a jobs channel receive, one
// refreshJob per acquired-and-referenced Observer per tick.
type ObserverManager struct {
	world *World

	mu      sync.Mutex
	entries *intmap.Map[uint32, *observerEntry]
	order   []*observerEntry

	jobs      chan refreshJob
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewObserverManager constructs a manager whose refresh pool has workers
// goroutines; workers <= 0 defaults to runtime.NumCPU(), matching the
// source's hardware_concurrency() default.
func NewObserverManager(w *World, workers int) *ObserverManager {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	m := &ObserverManager{
		world:   w,
		entries: intmap.New[uint32, *observerEntry](16),
		jobs:    make(chan refreshJob),
		closed:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.refreshWorker()
	}
	return m
}

func (m *ObserverManager) refreshWorker() {
	defer m.wg.Done()
	for {
		select {
		case job, ok := <-m.jobs:
			if !ok {
				return
			}
			m.runRefreshJob(job)
		case <-m.closed:
			return
		}
	}
}

func (m *ObserverManager) runRefreshJob(job refreshJob) {
	defer close(job.done)
	select {
	case <-job.ctx.Done():
	default:
		job.observer.Refresh()
	}
}

// Acquire returns the shared Observer for f, creating and refreshing it on
// first use, and increments its reference count.
func (m *ObserverManager) Acquire(f Filter) *Observer {
	key := f.key()

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries.Get(key); ok {
		entry.refcount++
		return entry.observer
	}

	entry := &observerEntry{observer: NewObserver(m.world, f), refcount: 1}
	m.entries.Put(key, entry)
	m.order = append(m.order, entry)
	return entry.observer
}

// Release decrements o's reference count. At zero, refresh work for o is
// elided until it is Acquired again.
func (m *ObserverManager) Release(o *Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.order {
		if entry.observer == o && entry.refcount > 0 {
			entry.refcount--
			return
		}
	}
}

// PrepareRefresh submits a refresh job for every observer with a positive
// refcount and returns their handles. Jobs go to the workers over an
// unbuffered channel, so it returns once every job has been taken by a
// worker (or run inline), not before: with more active observers than
// workers, the earlier refreshes have already finished by then. The caller
// (Registry.Prepare) may go on to do host work while the last refreshes
// run in the background, later blocking in Sync — the source's sync() spin.
func (m *ObserverManager) PrepareRefresh(ctx context.Context) []*refreshHandle {
	m.mu.Lock()
	active := make([]*observerEntry, 0, len(m.order))
	for _, entry := range m.order {
		if entry.refcount > 0 {
			active = append(active, entry)
		}
	}
	m.mu.Unlock()

	handles := make([]*refreshHandle, len(active))
	for i, entry := range active {
		handles[i] = m.submitRefresh(ctx, entry.observer)
	}
	return handles
}

// submitRefresh skips o's refresh when ctx is already done, otherwise hands
// it to a pool worker (blocking until one takes it), or runs it inline when
// the pool has been closed; either way the returned handle's done channel
// closes once o.Refresh has run or been skipped, so Sync always terminates.
func (m *ObserverManager) submitRefresh(ctx context.Context, o *Observer) *refreshHandle {
	done := make(chan struct{})
	select {
	case <-ctx.Done():
		close(done)
		return &refreshHandle{done: done}
	default:
	}

	job := refreshJob{ctx: ctx, observer: o, done: done}
	if m.trySend(job) {
		return &refreshHandle{done: done}
	}
	o.Refresh()
	close(done)
	return &refreshHandle{done: done}
}

func (m *ObserverManager) trySend(job refreshJob) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case <-m.closed:
		return false
	case m.jobs <- job:
		return true
	}
}

// Sync blocks until every handle returned by PrepareRefresh completes.
func (m *ObserverManager) Sync(handles []*refreshHandle) {
	for _, h := range handles {
		h.wait()
	}
}

// RefreshAll is PrepareRefresh immediately followed by Sync, useful for
// tests and for callers that have no host work to overlap with refresh.
func (m *ObserverManager) RefreshAll(ctx context.Context) {
	m.Sync(m.PrepareRefresh(ctx))
}

// Close tears down the refresh worker pool.
func (m *ObserverManager) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)
		close(m.jobs)
	})
	m.wg.Wait()
}
