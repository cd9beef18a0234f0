package core

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
)

var ErrStopped = errors.New("runtime stopped")

// Runtime owns a Topology on a single goroutine. Every access from other goroutines must go through Dispatch or DispatchWait,
// which makes each advertisement acceptance and its recomputation atomic to readers.
type Runtime struct {
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Log      *slog.Logger
	topo     *Topology
	dispatch chan func(t *Topology) error
	done     chan struct{}
	start    sync.Once
}

func NewRuntime(ctx context.Context, topo *Topology, log *slog.Logger) *Runtime {
	ctx, cancel := context.WithCancelCause(ctx)
	if log == nil {
		log = slog.Default()
	}
	return &Runtime{
		Context:  ctx,
		Cancel:   cancel,
		Log:      log,
		topo:     topo,
		dispatch: make(chan func(t *Topology) error, 128),
		done:     make(chan struct{}),
	}
}

// Start runs the main loop on a new goroutine. It has no effect after the first call or after Stop.
func (r *Runtime) Start() {
	r.start.Do(func() {
		go r.mainLoop()
	})
}

func (r *Runtime) mainLoop() {
	defer close(r.done)
	r.Log.Debug("started main loop")
	for {
		select {
		case fun := <-r.dispatch:
			start := time.Now()
			err := fun(r.topo)
			if err != nil {
				r.Log.Error("error occurred during dispatch: ", "error", err)
				r.Cancel(err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > time.Millisecond*50 {
				r.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(r.dispatch))
			}
		case <-r.Context.Done():
			r.Log.Debug("stopped main loop", "reason", context.Cause(r.Context).Error())
			return
		}
	}
}

// Dispatch Dispatches the function to run on the main loop without waiting for it to complete.
// An error returned by fun stops the runtime.
func (r *Runtime) Dispatch(fun func(t *Topology) error) {
	select {
	case r.dispatch <- fun:
	case <-r.Context.Done():
	}
}

// DispatchWait Dispatches the function to run on the main loop and waits for it to complete.
// Errors are handed back to the caller and do not stop the runtime.
func (r *Runtime) DispatchWait(fun func(t *Topology) (any, error)) (any, error) {
	ret := make(chan state.Pair[any, error], 1)
	select {
	case r.dispatch <- func(t *Topology) error {
		res, err := fun(t)
		ret <- state.Pair[any, error]{V1: res, V2: err}
		return nil
	}:
	case <-r.Context.Done():
		return nil, ErrStopped
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-r.Context.Done():
		return nil, ErrStopped
	}
}

// Stop cancels the runtime and waits for the main loop to exit
func (r *Runtime) Stop(cause error) {
	if cause == nil {
		cause = context.Canceled
	}
	r.Cancel(cause)
	// a runtime that never started has no loop to close done
	r.start.Do(func() {
		close(r.done)
	})
	<-r.done
}

func (r *Runtime) Done() <-chan struct{} {
	return r.done
}
