package ecs

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forgecs/ecs/ecslog"
)

// minJobPeriod is the smallest period RunParallelJob accepts.
const minJobPeriod = 100 * time.Millisecond

// System is anything the Registry can own: it is constructed by the
// caller, registered via AddSystem, and receives Setup/Stop calls at the
// registry's init/teardown boundaries.
type System interface {
	Setup(*Registry)
	Stop(*Registry)
}

type registeredFunction struct {
	id        string
	run       func()
	observers []*Observer
	lastExec  time.Duration
}

// FunctionInfo is one entry of Registry.RegisteredFunctionsInfo: the last
// measured execution time paired with the function's registration id.
type FunctionInfo struct {
	ExecTime time.Duration
	Name     string
}

// Registry is the per-tick scheduler: it owns the system registry, the
// function registry, the observer refresh handoff, and periodic background
// jobs. Between Prepare and Exec the caller may perform host work (e.g.
// render) in parallel with observer refresh.
type Registry struct {
	world     *World
	observers *ObserverManager

	functions        []*registeredFunction
	systems          map[reflect.Type]System
	initCallbacks    []func()
	cleanupCallbacks []func()

	pendingRefresh []*refreshHandle

	jobCtx    context.Context
	jobCancel context.CancelFunc
	jobGroup  *errgroup.Group
	jobStops  map[reflect.Type][]context.CancelFunc

	frameReady atomic.Bool

	log ecslog.Logger
}

// NewRegistry constructs a Registry bound to w, with an observer refresh
// pool sized to workers (<=0 defaults to runtime.NumCPU()). It logs
// nothing until SetLogger attaches a real sink; the zero-value default is
// ecslog.NoOp.
func NewRegistry(w *World, workers int) *Registry {
	jobCtx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(jobCtx)
	_ = groupCtx
	return &Registry{
		world:     w,
		observers: NewObserverManager(w, workers),
		systems:   make(map[reflect.Type]System),
		jobCtx:    jobCtx,
		jobCancel: cancel,
		jobGroup:  group,
		jobStops:  make(map[reflect.Type][]context.CancelFunc),
		log:       ecslog.NoOp(),
	}
}

// World returns the backing World.
func (r *Registry) World() *World { return r.world }

// Observers returns the ObserverManager used to acquire filtered views.
func (r *Registry) Observers() *ObserverManager { return r.observers }

// SetLogger attaches log as the sink for the scheduler's debug/warn/
// critical diagnostics (system and function register/unregister,
// duplicate registration). Passing nil restores the no-op default.
func (r *Registry) SetLogger(log ecslog.Logger) {
	if log == nil {
		log = ecslog.NoOp()
	}
	r.log = log
}

// AddSystem registers s, deferring its Setup call to the next
// InitNewSystems boundary. Registering the same system type twice panics.
func AddSystem[S System](r *Registry, s S) S {
	t := reflect.TypeOf(s)
	if _, exists := r.systems[t]; exists {
		r.log.Errorw("system already registered", "system", t.String())
		panic(ErrSystemAlreadyRegistered)
	}
	r.log.Debugw("system registered", "system", t.String())
	r.systems[t] = s
	r.initCallbacks = append(r.initCallbacks, func() {
		r.log.Debugw("system init", "system", t.String())
		s.Setup(r)
	})
	return s
}

// RemoveSystem enqueues a teardown that calls Stop, cancels the system's
// background jobs and erases it from the registry.
func RemoveSystem[S System](r *Registry) {
	var zero S
	t := reflect.TypeOf(zero)
	sys, exists := r.systems[t]
	if !exists {
		r.log.Errorw("system already unregistered", "system", t.String())
		panic(ErrSystemNotRegistered)
	}
	r.cleanupCallbacks = append(r.cleanupCallbacks, func() {
		sys.Stop(r)
		for _, stop := range r.jobStops[t] {
			stop()
		}
		delete(r.jobStops, t)
		delete(r.systems, t)
		r.log.Debugw("system removed", "system", t.String())
	})
}

// GetSystem looks up a registered system by type.
func GetSystem[S System](r *Registry) (S, bool) {
	var zero S
	t := reflect.TypeOf(zero)
	sys, ok := r.systems[t]
	if !ok {
		return zero, false
	}
	return sys.(S), true
}

// InitNewSystems drains pending Setup calls in FIFO order. Since Setup may
// itself add further systems, the queue is re-read each iteration.
func (r *Registry) InitNewSystems() {
	for len(r.initCallbacks) > 0 {
		init := r.initCallbacks[0]
		r.initCallbacks = r.initCallbacks[1:]
		init()
	}
}

func (r *Registry) hasFunction(id string) bool {
	for _, fn := range r.functions {
		if fn.id == id {
			return true
		}
	}
	return false
}

// RegisterFunction1 registers fn against filter f1, sharing the ObserverManager's cached Observer for f1.
func (r *Registry) RegisterFunction1(id string, f1 Filter, fn func(*Observer)) {
	if r.hasFunction(id) {
		r.log.Errorw("function already registered", "function", id)
		panic(ErrFunctionAlreadyRegistered)
	}
	o1 := r.observers.Acquire(f1)
	r.functions = append(r.functions, &registeredFunction{id: id, observers: []*Observer{o1}, run: func() { fn(o1) }})
	r.log.Debugw("function registered", "function", id)
}

// RegisterFunction2 registers fn against filters f1, f2.
func (r *Registry) RegisterFunction2(id string, f1, f2 Filter, fn func(*Observer, *Observer)) {
	if r.hasFunction(id) {
		r.log.Errorw("function already registered", "function", id)
		panic(ErrFunctionAlreadyRegistered)
	}
	o1, o2 := r.observers.Acquire(f1), r.observers.Acquire(f2)
	r.functions = append(r.functions, &registeredFunction{id: id, observers: []*Observer{o1, o2}, run: func() { fn(o1, o2) }})
	r.log.Debugw("function registered", "function", id)
}

// RegisterFunction3 registers fn against filters f1, f2, f3.
func (r *Registry) RegisterFunction3(id string, f1, f2, f3 Filter, fn func(*Observer, *Observer, *Observer)) {
	if r.hasFunction(id) {
		r.log.Errorw("function already registered", "function", id)
		panic(ErrFunctionAlreadyRegistered)
	}
	o1, o2, o3 := r.observers.Acquire(f1), r.observers.Acquire(f2), r.observers.Acquire(f3)
	r.functions = append(r.functions, &registeredFunction{id: id, observers: []*Observer{o1, o2, o3}, run: func() { fn(o1, o2, o3) }})
	r.log.Debugw("function registered", "function", id)
}

// UnregisterFunction enqueues a deferred erase of id and releases its
// observer references at the next cleanup boundary.
func (r *Registry) UnregisterFunction(id string) {
	if !r.hasFunction(id) {
		r.log.Errorw("function already unregistered", "function", id)
		panic(ErrFunctionNotRegistered)
	}
	r.cleanupCallbacks = append(r.cleanupCallbacks, func() {
		for i, fn := range r.functions {
			if fn.id != id {
				continue
			}
			for _, o := range fn.observers {
				r.observers.Release(o)
			}
			r.functions = append(r.functions[:i], r.functions[i+1:]...)
			r.log.Debugw("function unregistered", "function", id)
			return
		}
	})
}

// RegisteredFunctionsInfo returns each function's last execution time
// paired with its registration id, for debug/UI consumption.
func (r *Registry) RegisteredFunctionsInfo() []FunctionInfo {
	info := make([]FunctionInfo, len(r.functions))
	for i, fn := range r.functions {
		info[i] = FunctionInfo{ExecTime: fn.lastExec, Name: fn.id}
	}
	return info
}

// Prepare triggers the ObserverManager to refresh every live, referenced
// observer on its worker pool, returning once every refresh has been
// handed to a worker. The caller may perform other work before calling
// Exec, which blocks until refresh completes.
func (r *Registry) Prepare(ctx context.Context) {
	r.pendingRefresh = r.observers.PrepareRefresh(ctx)
}

// Exec blocks until the pending refresh completes, invokes every
// registered function in registration order, drains deferred system/
// function teardown, flushes deferred entity destruction and runs one
// storage's optimise pass.
func (r *Registry) Exec() {
	if len(r.initCallbacks) != 0 {
		panic("ecs: all systems must be initialized before Exec")
	}

	r.observers.Sync(r.pendingRefresh)
	r.pendingRefresh = nil

	for _, fn := range r.functions {
		start := time.Now()
		fn.run()
		fn.lastExec = time.Since(start)
	}

	r.drainCleanup()
	r.world.flush()
	r.world.optimise()

	r.frameReady.Store(true)
}

// FrameReady reports whether the most recent Exec has completed.
func (r *Registry) FrameReady() bool { return r.frameReady.Load() }

func (r *Registry) drainCleanup() {
	for len(r.cleanupCallbacks) > 0 {
		fn := r.cleanupCallbacks[0]
		r.cleanupCallbacks = r.cleanupCallbacks[1:]
		fn()
	}
}

// RunParallelJob spawns a supervised goroutine, owned by system type S,
// that invokes fn every period until fn returns false or the registry is
// closed. Removing S stops its jobs within one further period. Periods
// below 100ms are rejected.
func RunParallelJob[S System](r *Registry, fn func() bool, period time.Duration) {
	if period < minJobPeriod {
		panic(ErrJobPeriodTooSmall)
	}

	var zero S
	t := reflect.TypeOf(zero)
	ctx, cancel := context.WithCancel(r.jobCtx)
	r.jobStops[t] = append(r.jobStops[t], cancel)

	r.log.Debugw("job started", "system", t.String())
	r.jobGroup.Go(func() error {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if !fn() {
					return nil
				}
			}
		}
	})
}

// Close stops every background job, stops every registered system and
// drains any remaining cleanup callbacks, then closes the observer refresh
// pool.
func (r *Registry) Close() {
	r.jobCancel()
	_ = r.jobGroup.Wait()

	for t, sys := range r.systems {
		sys.Stop(r)
		delete(r.systems, t)
	}
	r.drainCleanup()
	r.observers.Close()
}
