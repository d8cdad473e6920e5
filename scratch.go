package ecs

import "sync"

// scratchPool hands out reusable []Entity buffers for the filter algebra's
// intermediate set operations, adapted from the same sync.Pool-backed
// acquire/return pattern used for command buffering elsewhere in this
// lineage: acquire, fill, return on scope exit, avoiding a per-frame
// allocation storm during observer refresh.
type scratchPool struct {
	pool sync.Pool
}

var globalScratch = newScratchPool()

func newScratchPool() *scratchPool {
	p := &scratchPool{}
	p.pool.New = func() any {
		buf := make([]Entity, 0, 64)
		return &buf
	}
	return p
}

// get retrieves a zero-length scratch buffer.
func (p *scratchPool) get() *[]Entity {
	buf := p.pool.Get().(*[]Entity)
	*buf = (*buf)[:0]
	return buf
}

// put returns a buffer to the pool.
func (p *scratchPool) put(buf *[]Entity) {
	if buf == nil {
		return
	}
	p.pool.Put(buf)
}
