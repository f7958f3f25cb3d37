// Package inspect examines WebAssembly binaries before they are published
// with a viewer page: what they import and export, and whether they look
// like something the page can start.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
)

// Flavor is the toolchain a module appears to come from, judged by its
// import namespaces.
type Flavor string

const (
	FlavorEmscripten Flavor = "emscripten"
	FlavorGo         Flavor = "go"
	FlavorUnknown    Flavor = "unknown"
)

// Import module namespaces.
const (
	moduleEnv  = "env"
	moduleWASI = "wasi_snapshot_preview1"
	moduleGo   = "gojs"
)

// pageSize is the WebAssembly linear memory page size.
const pageSize = 65536

// Function describes an imported or exported function.
type Function struct {
	Module  string   `json:"module,omitempty"`
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	Results []string `json:"results"`
}

// Signature renders the function type as (i32, i32) -> i32.
func (f Function) Signature() string {
	return "(" + strings.Join(f.Params, ", ") + ") -> (" + strings.Join(f.Results, ", ") + ")"
}

// Memory describes the module's linear memory.
type Memory struct {
	MinPages uint32 `json:"minPages"`
	MaxPages uint32 `json:"maxPages,omitempty"`
	HasMax   bool   `json:"hasMax"`
	Exported string `json:"exported,omitempty"` // export name, if exported
	Imported string `json:"imported,omitempty"` // module.name, if imported
}

// MinBytes returns the initial memory size in bytes.
func (m Memory) MinBytes() uint64 {
	return uint64(m.MinPages) * pageSize
}

// Report is the result of inspecting a module.
type Report struct {
	Size     int        `json:"size"`
	Flavor   Flavor     `json:"flavor"`
	Imports  []Function `json:"imports"`
	Exports  []Function `json:"exports"`
	Memory   *Memory    `json:"memory,omitempty"`
	Problems []string   `json:"problems,omitempty"`
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// ImportModules returns the distinct import namespaces, sorted.
func (r *Report) ImportModules() []string {
	seen := make(map[string]bool)
	var mods []string
	for _, f := range r.Imports {
		if !seen[f.Module] {
			seen[f.Module] = true
			mods = append(mods, f.Module)
		}
	}
	sort.Strings(mods)
	return mods
}

// Options adjusts the checks applied by Inspect.
type Options struct {
	// RequiredExports are function exports the module must have.
	RequiredExports []string

	// Expect, when set, flags a module of a different flavor.
	Expect Flavor
}

// Inspect compiles wasm without instantiating it and reports its imports,
// exports and memory. A module that fails to compile is an error; anything
// else questionable is listed in Report.Problems.
func Inspect(ctx context.Context, wasm []byte, opts Options) (*Report, error) {
	if len(wasm) == 0 {
		return nil, errors.New("module is empty")
	}

	cfg := wazero.NewRuntimeConfigInterpreter().
		WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
	r := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer r.Close(ctx)

	cm, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("compiling module: %w", err)
	}
	defer cm.Close(ctx)

	report := &Report{Size: len(wasm)}

	for _, def := range cm.ImportedFunctions() {
		mod, name, _ := def.Import()
		report.Imports = append(report.Imports, functionOf(mod, name, def))
	}
	sort.Slice(report.Imports, func(i, j int) bool {
		a, b := report.Imports[i], report.Imports[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Name < b.Name
	})

	for name, def := range cm.ExportedFunctions() {
		report.Exports = append(report.Exports, functionOf("", name, def))
	}
	sort.Slice(report.Exports, func(i, j int) bool {
		return report.Exports[i].Name < report.Exports[j].Name
	})

	report.Memory = memoryOf(cm)
	report.Flavor = flavorOf(report.ImportModules())
	report.Problems = check(report, opts)
	return report, nil
}

func functionOf(module, name string, def api.FunctionDefinition) Function {
	f := Function{
		Module:  module,
		Name:    name,
		Params:  make([]string, len(def.ParamTypes())),
		Results: make([]string, len(def.ResultTypes())),
	}
	for i, t := range def.ParamTypes() {
		f.Params[i] = api.ValueTypeName(t)
	}
	for i, t := range def.ResultTypes() {
		f.Results[i] = api.ValueTypeName(t)
	}
	return f
}

func memoryOf(cm wazero.CompiledModule) *Memory {
	for _, def := range cm.ImportedMemories() {
		mod, name, _ := def.Import()
		m := &Memory{MinPages: def.Min(), Imported: mod + "." + name}
		m.MaxPages, m.HasMax = def.Max()
		if names := def.ExportNames(); len(names) > 0 {
			m.Exported = names[0]
		}
		return m
	}

	exported := cm.ExportedMemories()
	names := make([]string, 0, len(exported))
	for name := range exported {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := exported[name]
		m := &Memory{MinPages: def.Min(), Exported: name}
		m.MaxPages, m.HasMax = def.Max()
		return m
	}
	return nil
}

func flavorOf(modules []string) Flavor {
	for _, m := range modules {
		if m == moduleGo {
			return FlavorGo
		}
	}
	for _, m := range modules {
		if m == moduleEnv || m == moduleWASI {
			return FlavorEmscripten
		}
	}
	return FlavorUnknown
}

func check(r *Report, opts Options) []string {
	var problems []string

	if r.Memory == nil {
		problems = append(problems, "module neither exports nor imports a linear memory")
	}

	if opts.Expect != "" && r.Flavor != opts.Expect {
		problems = append(problems, fmt.Sprintf("expected %s module, found %s", opts.Expect, r.Flavor))
	}

	if r.Flavor == FlavorEmscripten {
		for _, mod := range r.ImportModules() {
			if mod != moduleEnv && mod != moduleWASI {
				problems = append(problems, fmt.Sprintf("unexpected import module %q", mod))
			}
		}
	}

	exports := make(map[string]bool, len(r.Exports))
	for _, f := range r.Exports {
		exports[f.Name] = true
	}
	for _, name := range opts.RequiredExports {
		if !exports[name] {
			problems = append(problems, fmt.Sprintf("missing required export %q", name))
		}
	}

	return problems
}
