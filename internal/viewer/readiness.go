package viewer

import (
	"context"
	"fmt"
	"sync"
)

// State is the module readiness lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Readiness is a one-shot future resolved by the module runtime and awaited
// by the bootstrap. It is resolved at most once, either with a module handle
// or with an error. Cancellation of the underlying module start is not
// supported: a cancelled Wait only stops waiting.
type Readiness struct {
	mu     sync.Mutex
	state  State
	module Module
	err    error
	done   chan struct{}
}

func newReadiness() *Readiness {
	return &Readiness{done: make(chan struct{})}
}

func (r *Readiness) resolve(m Module, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateUninitialized {
		return fmt.Errorf("%w (state %s)", ErrAlreadySignaled, r.state)
	}
	if err == nil && m == nil {
		err = fmt.Errorf("%w: readiness signaled without a module handle", ErrModuleInit)
	}
	if err != nil {
		r.state = StateFailed
		r.err = err
	} else {
		r.state = StateReady
		r.module = m
	}
	close(r.done)
	return nil
}

// Done is closed once the future is resolved.
func (r *Readiness) Done() <-chan struct{} {
	return r.done
}

// State reports the current lifecycle state.
func (r *Readiness) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Result returns the resolved module or error. Before Done is closed it
// returns (nil, nil).
func (r *Readiness) Result() (Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.module, r.err
}

// Wait blocks until the future resolves or ctx is done. When ctx ends first
// the future is resolved as failed with ErrModuleInitTimeout, so a late
// readiness signal can no longer move it to StateReady.
func (r *Readiness) Wait(ctx context.Context) (Module, error) {
	select {
	case <-r.done:
		return r.Result()
	case <-ctx.Done():
	}

	// If the signal won the race, resolve reports ErrAlreadySignaled and the
	// signal's result stands.
	_ = r.resolve(nil, fmt.Errorf("%w: %w", ErrModuleInitTimeout, ctx.Err()))
	return r.Result()
}
