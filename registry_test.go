package ecs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecs/ecs/ecslog"
)

// recordingLogger captures each call's message for assertions, standing in
// for a real ecslog.Logger in tests that need to observe what was logged.
type recordingLogger struct {
	debug, warn, errors []string
}

func (l *recordingLogger) Debugw(msg string, _ ...any) { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Infow(string, ...any)        {}
func (l *recordingLogger) Warnw(msg string, _ ...any)  { l.warn = append(l.warn, msg) }
func (l *recordingLogger) Errorw(msg string, _ ...any) { l.errors = append(l.errors, msg) }
func (l *recordingLogger) Sync() error                 { return nil }

var _ ecslog.Logger = (*recordingLogger)(nil)

type noopSystem struct {
	setupCalls int
	stopCalls  int
}

func (s *noopSystem) Setup(r *Registry) { s.setupCalls++ }
func (s *noopSystem) Stop(r *Registry)  { s.stopCalls++ }

func newTestRegistry() (*World, *Registry) {
	w := newTestWorld()
	return w, NewRegistry(w, 2)
}

func TestRegistryAddSystemRunsSetupOnInit(t *testing.T) {
	w, r := newTestRegistry()
	_ = w
	defer r.Close()

	sys := AddSystem(r, &noopSystem{})
	assert.Equal(t, 0, sys.setupCalls, "Setup is deferred to InitNewSystems")

	r.InitNewSystems()
	assert.Equal(t, 1, sys.setupCalls)
}

func TestRegistryAddSystemTwicePanics(t *testing.T) {
	_, r := newTestRegistry()
	defer r.Close()

	AddSystem(r, &noopSystem{})
	assert.PanicsWithValue(t, ErrSystemAlreadyRegistered, func() {
		AddSystem(r, &noopSystem{})
	})
}

func TestRegistrySetLoggerReceivesRegistrationDiagnostics(t *testing.T) {
	_, r := newTestRegistry()
	defer r.Close()

	log := &recordingLogger{}
	r.SetLogger(log)

	AddSystem(r, &noopSystem{})
	r.InitNewSystems()
	assert.Contains(t, log.debug, "system registered")
	assert.Contains(t, log.debug, "system init")

	assert.PanicsWithValue(t, ErrSystemAlreadyRegistered, func() {
		AddSystem(r, &noopSystem{})
	})
	assert.Contains(t, log.errors, "system already registered")

	RemoveSystem[*noopSystem](r)
	r.Exec()
	assert.Contains(t, log.debug, "system removed")
}

func TestRegistryRemoveSystemStopsIt(t *testing.T) {
	_, r := newTestRegistry()
	defer r.Close()

	sys := AddSystem(r, &noopSystem{})
	r.InitNewSystems()

	RemoveSystem[*noopSystem](r)
	r.Exec()
	assert.Equal(t, 1, sys.stopCalls)

	_, ok := GetSystem[*noopSystem](r)
	assert.False(t, ok)
}

func TestRegistryExecBeforeInitPanics(t *testing.T) {
	_, r := newTestRegistry()
	defer r.Close()

	AddSystem(r, &noopSystem{})
	assert.Panics(t, func() { r.Exec() })
}

func TestRegistryFunctionOrderingAndTiming(t *testing.T) {
	w, r := newTestRegistry()
	defer r.Close()

	var order []string
	r.RegisterFunction1("first", RunEveryFrame, func(*Observer) { order = append(order, "first") })
	r.RegisterFunction1("second", RunEveryFrame, func(*Observer) { order = append(order, "second") })

	r.Prepare(context.Background())
	r.Exec()

	assert.Equal(t, []string{"first", "second"}, order)
	_ = w

	info := r.RegisteredFunctionsInfo()
	require.Len(t, info, 2)
	assert.Equal(t, "first", info[0].Name)
}

func TestRegistryDuplicateFunctionIDPanics(t *testing.T) {
	_, r := newTestRegistry()
	defer r.Close()

	r.RegisterFunction1("dup", RunEveryFrame, func(*Observer) {})
	assert.PanicsWithValue(t, ErrFunctionAlreadyRegistered, func() {
		r.RegisterFunction1("dup", RunEveryFrame, func(*Observer) {})
	})
}

func TestRegistryFlushRunsAfterFunctions(t *testing.T) {
	w, r := newTestRegistry()
	defer r.Close()

	e := w.Create()
	Emplace(w, e, health{HP: 1})

	r.RegisterFunction1("destroyer", Require1[health](), func(o *Observer) {
		o.DestroyAll()
	})

	r.Prepare(context.Background())
	r.Exec()

	assert.False(t, w.IsAlive(e), "flush runs at the end of Exec")
}

func TestRunParallelJobRejectsShortPeriod(t *testing.T) {
	_, r := newTestRegistry()
	defer r.Close()

	assert.PanicsWithValue(t, ErrJobPeriodTooSmall, func() {
		RunParallelJob[*noopSystem](r, func() bool { return true }, time.Millisecond)
	})
}

func TestRunParallelJobRunsUntilFalseOrClose(t *testing.T) {
	_, r := newTestRegistry()

	var calls int32
	RunParallelJob[*noopSystem](r, func() bool {
		atomic.AddInt32(&calls, 1)
		return true
	}, minJobPeriod)

	time.Sleep(minJobPeriod * 3)
	r.Close()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
