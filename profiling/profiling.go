// Package profiling wraps github.com/pkg/profile scope markers for the
// hot sections callers most want a pprof trace of: a Registry.Exec tick,
// an observer refresh pass, a serializer round-trip.
package profiling

import "github.com/pkg/profile"

// Kind selects which pkg/profile mode a Scope records.
type Kind int

const (
	KindCPU Kind = iota
	KindMemAlloc
	KindMemHeap
	KindGoroutine
	KindBlock
	KindMutex
)

// Scope is an open pkg/profile session; Stop writes its profile to disk.
type Scope struct {
	p interface{ Stop() }
}

// Stop ends the profiling session, flushing its output file.
func (s Scope) Stop() {
	if s.p != nil {
		s.p.Stop()
	}
}

// Start begins a profiling session of the given kind, writing its output
// under dir. NoShutdownHook is set so the caller — not an os.Signal
// handler installed behind its back — controls when the profile is
// flushed via Stop.
func Start(kind Kind, dir string) Scope {
	opts := []func(*profile.Profile){
		profile.ProfilePath(dir),
		profile.NoShutdownHook,
	}
	switch kind {
	case KindMemAlloc:
		opts = append(opts, profile.MemProfileAllocs)
	case KindMemHeap:
		opts = append(opts, profile.MemProfileHeap)
	case KindGoroutine:
		opts = append(opts, profile.GoroutineProfile)
	case KindBlock:
		opts = append(opts, profile.BlockProfile)
	case KindMutex:
		opts = append(opts, profile.MutexProfile)
	default:
		opts = append(opts, profile.CPUProfile)
	}
	return Scope{p: profile.Start(opts...)}
}
