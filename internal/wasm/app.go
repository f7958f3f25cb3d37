//go:build js && wasm

package main

import (
	"context"
	"errors"
	"sync"
	"syscall/js"

	"github.com/eljojo/occtview/internal/project"
	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
	"github.com/eljojo/occtview/internal/viewer/dom"
)

// app is the page-side viewer: one bootstrap bound to the page document.
type app struct {
	boot      project.BootConfig
	doc       *dom.Document
	status    *dom.Status
	collector *viewer.Collector // nil unless diagnostics are collected
	bootstrap *viewer.Bootstrap

	readyOnce sync.Once

	mu     sync.Mutex
	opened []viewer.ModelSource // models opened so far, startup ones included
}

// loadBootConfig reads the occtviewConfig object embedded in the page.
func loadBootConfig() (project.BootConfig, error) {
	v := js.Global().Get("occtviewConfig")
	if !v.Truthy() {
		return project.ParseBootConfig([]byte("{}"))
	}
	data := js.Global().Get("JSON").Call("stringify", v).String()
	return project.ParseBootConfig([]byte(data))
}

func newApp(boot project.BootConfig) *app {
	a := &app{
		boot: boot,
		doc:  dom.NewDocument(),
	}
	a.status = dom.NewStatus(a.doc, boot.StatusID)

	sink := viewer.NewSink(boot.SinkKind(), 0)
	if c, ok := sink.(*viewer.Collector); ok {
		a.collector = c
		if boot.DiagnosticsURL != "" {
			dom.ForwardDiagnostics(c, boot.DiagnosticsURL)
		}
	}

	opts := boot.Options(sink)
	opts.OnReady = func(viewer.Module) error {
		a.markReady()
		return nil
	}
	a.bootstrap = viewer.New(opts)
	return a
}

func (a *app) t(key string, args ...any) string {
	return translations.T("viewer", a.boot.Language, key, args...)
}

// run drives the bootstrap to completion and reports the outcome on the
// page. It blocks until the module is ready or has failed.
func (a *app) run() {
	if s, ok := a.doc.Lookup(a.boot.CanvasID); ok {
		if c, ok := s.(*dom.Canvas); ok {
			c.FitToDisplay()
		}
	}
	a.status.Progress(a.t("starting_module"))

	m, err := a.bootstrap.Run(context.Background(), a.doc, dom.EmscriptenRuntime{Factory: a.boot.Factory})
	if m != nil {
		// Startup commands may have failed, but the module is usable.
		a.recordOpened(a.bootstrap.StartupModels())
		a.markReady()
	}
	if err != nil {
		if errors.Is(err, viewer.ErrStartupCommand) {
			a.status.Failed(a.t("error_startup", err), a.t("action_reload"))
			return
		}
		a.status.Failed(translations.DescribeFailure(a.boot.Language, err, a.boot.CanvasID, a.boot.Timeout()), a.t("action_reload"))
		return
	}
	a.status.Ready(a.t("ready"))
}

// markReady publishes readiness to the page exactly once.
func (a *app) markReady() {
	a.readyOnce.Do(func() {
		js.Global().Set("occtviewReady", true)
		if cb := js.Global().Get("onOcctviewReady"); cb.Type() == js.TypeFunction {
			cb.Invoke()
		}
	})
}

func (a *app) recordOpened(models []viewer.ModelSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range models {
		replaced := false
		for i := range a.opened {
			if a.opened[i].Name == m.Name {
				a.opened[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			a.opened = append(a.opened, m)
		}
	}
}

func (a *app) openedModels() []viewer.ModelSource {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]viewer.ModelSource, len(a.opened))
	copy(out, a.opened)
	return out
}

// module returns the ready module or an error naming the current state.
func (a *app) module() (viewer.Module, error) {
	m := a.bootstrap.Module()
	if m == nil {
		if err := a.bootstrap.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("viewer is not ready yet")
	}
	return m, nil
}

func (a *app) canvas() (*dom.Canvas, error) {
	cfg := a.bootstrap.Config()
	if cfg == nil {
		return nil, errors.New("viewer has no surface yet")
	}
	c, ok := cfg.Surface().(*dom.Canvas)
	if !ok {
		return nil, errors.New("surface is not a canvas")
	}
	return c, nil
}
