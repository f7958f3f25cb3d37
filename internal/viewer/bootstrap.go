package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Options configures a Bootstrap.
type Options struct {
	// CanvasID is the surface element id. Empty means DefaultCanvasID.
	CanvasID string

	// Diagnostics receives the module's output. Nil means NopSink.
	Diagnostics DiagnosticSink

	// Timeout bounds the wait for the readiness signal. Zero means no timeout.
	Timeout time.Duration

	// Startup commands run once, right after the module becomes ready.
	Startup Startup

	// OnReady runs once after the startup commands.
	OnReady func(Module) error
}

// Bootstrap drives one viewer start: surface, context, configuration,
// module start and the readiness handoff. A Bootstrap is single use.
type Bootstrap struct {
	opts Options

	mu      sync.Mutex
	started bool
	state   State
	cfg     *ModuleConfig
	module  Module
	opened  []ModelSource
	err     error
}

// New returns a Bootstrap for opts.
func New(opts Options) *Bootstrap {
	if opts.Diagnostics == nil {
		opts.Diagnostics = NopSink{}
	}
	return &Bootstrap{opts: opts}
}

// Run performs the bootstrap against doc, starting the module through rt,
// and blocks until the module is ready or the bootstrap has failed.
//
// Bootstrap failures (ErrSurfaceNotFound, ErrNoGraphicsContext,
// ErrModuleInit, ErrModuleInitTimeout) return a nil module and leave the
// state at StateFailed. A failing startup command or OnReady hook returns
// the ready module together with an error wrapping ErrStartupCommand.
func (b *Bootstrap) Run(ctx context.Context, doc Document, rt Runtime) (Module, error) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	b.started = true
	b.mu.Unlock()

	surface, err := ResolveSurface(doc, b.opts.CanvasID)
	if err != nil {
		return nil, b.fail(err)
	}

	gc, err := AcquireContext(surface, DefaultContextAttributes())
	if err != nil {
		return nil, b.fail(err)
	}

	cfg := BuildModuleConfig(surface,
		WithGraphicsContext(gc),
		WithDiagnostics(b.opts.Diagnostics),
	)
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()

	if rt == nil {
		return nil, b.fail(fmt.Errorf("%w: no runtime", ErrModuleInit))
	}
	if err := rt.Start(cfg); err != nil {
		return nil, b.fail(wrapInit(err))
	}
	Logger().Info("module starting", "surface", surface.ID(), "context", gc.Kind())

	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	m, err := cfg.Readiness().Wait(ctx)
	if err != nil {
		return nil, b.fail(wrapInit(err))
	}

	b.mu.Lock()
	b.state = StateReady
	b.module = m
	b.mu.Unlock()
	Logger().Info("module ready", "surface", surface.ID())

	return m, b.onModuleReady(m)
}

// onModuleReady runs exactly once per Bootstrap, because Run does.
func (b *Bootstrap) onModuleReady(m Module) error {
	opened, err := b.opts.Startup.Apply(m)
	b.mu.Lock()
	b.opened = opened
	b.mu.Unlock()
	if err != nil {
		b.report(err)
		return err
	}
	if b.opts.OnReady != nil {
		if err := b.opts.OnReady(m); err != nil {
			err = fmt.Errorf("%w: ready hook: %w", ErrStartupCommand, err)
			b.report(err)
			return err
		}
	}
	return nil
}

func (b *Bootstrap) fail(err error) error {
	b.mu.Lock()
	b.state = StateFailed
	b.err = err
	b.mu.Unlock()

	Logger().Error("viewer bootstrap failed", "error", err)
	b.opts.Diagnostics.PrintErr(err.Error())
	return err
}

func (b *Bootstrap) report(err error) {
	Logger().Error("viewer startup command failed", "error", err)
	b.opts.Diagnostics.PrintErr(err.Error())
}

func wrapInit(err error) error {
	if errors.Is(err, ErrModuleInit) || errors.Is(err, ErrModuleInitTimeout) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrModuleInit, err)
}

// State returns the lifecycle state of the bootstrap.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Err returns the terminal bootstrap error, if any.
func (b *Bootstrap) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Module returns the ready module, or nil before StateReady.
func (b *Bootstrap) Module() Module {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.module
}

// StartupModels returns the startup models that opened successfully. After
// a failing startup command these are the ones issued before the failure.
func (b *Bootstrap) StartupModels() []ModelSource {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ModelSource(nil), b.opened...)
}

// Config returns the module configuration once it has been built.
func (b *Bootstrap) Config() *ModuleConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}
