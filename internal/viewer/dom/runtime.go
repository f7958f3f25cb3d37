//go:build js && wasm

package dom

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/eljojo/occtview/internal/viewer"
)

// EmscriptenRuntime starts a MODULARIZE'd Emscripten build through its
// global factory function, e.g. createOcctViewerModule.
type EmscriptenRuntime struct {
	Factory string
}

// Start builds the module argument object from cfg and invokes the factory.
// The factory's promise settles the readiness future.
//
// The js.Func callbacks are never released: the module keeps calling print
// and printErr for as long as the page lives.
func (r EmscriptenRuntime) Start(cfg *viewer.ModuleConfig) (err error) {
	factory := js.Global().Get(r.Factory)
	if factory.Type() != js.TypeFunction {
		return fmt.Errorf("module factory %q is not defined", r.Factory)
	}
	canvas, ok := cfg.Surface().(*Canvas)
	if !ok {
		return fmt.Errorf("surface %q is not a DOM canvas", cfg.Surface().ID())
	}

	moduleArg := js.Global().Get("Object").New()
	moduleArg.Set("canvas", canvas.Value())
	moduleArg.Set("print", js.FuncOf(func(this js.Value, args []js.Value) any {
		cfg.Print(joinArgs(args))
		return nil
	}))
	moduleArg.Set("printErr", js.FuncOf(func(this js.Value, args []js.Value) any {
		cfg.PrintErr(joinArgs(args))
		return nil
	}))
	moduleArg.Set("onRuntimeInitialized", js.FuncOf(func(this js.Value, args []js.Value) any {
		viewer.Logger().Debug("module runtime initialized", "factory", r.Factory)
		return nil
	}))
	moduleArg.Set("onAbort", js.FuncOf(func(this js.Value, args []js.Value) any {
		_ = cfg.NotifyFailed(fmt.Errorf("%w: aborted: %s", viewer.ErrModuleInit, joinArgs(args)))
		return nil
	}))

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("invoking %s: %v", r.Factory, rec)
		}
	}()
	result := factory.Invoke(moduleArg)

	if result.Get("then").Type() != js.TypeFunction {
		// Non-modularized builds return the module synchronously.
		return cfg.NotifyReady(newJSModule(moduleArg, result))
	}

	result.Call("then",
		js.FuncOf(func(this js.Value, args []js.Value) any {
			var resolved js.Value
			if len(args) > 0 {
				resolved = args[0]
			}
			if err := cfg.NotifyReady(newJSModule(moduleArg, resolved)); err != nil {
				viewer.Logger().Warn("module resolved after readiness was settled", "error", err)
			}
			return nil
		}),
		js.FuncOf(func(this js.Value, args []js.Value) any {
			if err := cfg.NotifyFailed(fmt.Errorf("%w: %s", viewer.ErrModuleInit, joinArgs(args))); err != nil {
				viewer.Logger().Warn("module rejected after readiness was settled", "error", err)
			}
			return nil
		}),
	)
	return nil
}

// jsModule is the ready Emscripten module object.
type jsModule struct {
	v js.Value
}

// newJSModule picks the resolved module, falling back to the argument
// object, which Emscripten extends in place.
func newJSModule(moduleArg, resolved js.Value) *jsModule {
	if resolved.Type() == js.TypeObject {
		return &jsModule{v: resolved}
	}
	return &jsModule{v: moduleArg}
}

func (m *jsModule) SetCubemapBackground(src string) error {
	_, err := m.Call("setCubemapBackground", src)
	return err
}

func (m *jsModule) OpenFromURL(name, url string) error {
	_, err := m.Call("openFromUrl", name, url)
	return err
}

// Call invokes an exported module function. Thrown exceptions and aborts
// are returned as errors.
func (m *jsModule) Call(name string, args ...any) (result any, err error) {
	fn := m.v.Get(name)
	if fn.Type() != js.TypeFunction {
		return nil, fmt.Errorf("module has no function %q", name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", name, r)
		}
	}()
	v := m.v.Call(name, args...)
	switch v.Type() {
	case js.TypeBoolean:
		return v.Bool(), nil
	case js.TypeNumber:
		return v.Float(), nil
	case js.TypeString:
		return v.String(), nil
	default:
		return nil, nil
	}
}

// joinArgs renders callback arguments the way console.log would.
func joinArgs(args []js.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch a.Type() {
		case js.TypeString:
			parts[i] = a.String()
		case js.TypeObject:
			if msg := a.Get("message"); msg.Type() == js.TypeString {
				parts[i] = msg.String()
				continue
			}
			parts[i] = js.Global().Get("String").Invoke(a).String()
		default:
			parts[i] = js.Global().Get("String").Invoke(a).String()
		}
	}
	return strings.Join(parts, " ")
}
