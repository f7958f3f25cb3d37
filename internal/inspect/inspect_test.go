package inspect

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func module(sections ...[]byte) []byte {
	out := append([]byte{}, header...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

var (
	// one type: () -> ()
	typeSection = []byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00}
	// one function of type 0
	funcSection = []byte{0x03, 0x02, 0x01, 0x00}
	// one empty body
	codeSection = []byte{0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b}
	// memory: min 1 page, no max
	memorySection = []byte{0x05, 0x03, 0x01, 0x00, 0x01}
	// export "main" -> func 0
	exportMain = []byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00}
	// export "main" -> func 0, "memory" -> memory 0
	exportMainMemory = []byte{
		0x07, 0x11, 0x02,
		0x04, 'm', 'a', 'i', 'n', 0x00, 0x00,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	// export "main" -> func 1 (after one imported function)
	exportMainAfterImport = []byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x01}
)

// importSection imports one function of type 0 and optionally a memory.
func importSection(mod, name string, withMemory bool) []byte {
	var body []byte
	count := byte(1)
	if withMemory {
		count = 2
	}
	body = append(body, count)
	body = append(body, byte(len(mod)))
	body = append(body, mod...)
	body = append(body, byte(len(name)))
	body = append(body, name...)
	body = append(body, 0x00, 0x00)
	if withMemory {
		body = append(body, byte(len(mod)))
		body = append(body, mod...)
		body = append(body, 0x06)
		body = append(body, "memory"...)
		body = append(body, 0x02, 0x00, 0x01)
	}
	return append([]byte{0x02, byte(len(body))}, body...)
}

func TestInspectMinimalModule(t *testing.T) {
	wasm := module(typeSection, funcSection, exportMain, codeSection)
	r, err := Inspect(context.Background(), wasm, Options{})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if r.Size != len(wasm) {
		t.Errorf("size: got %d, want %d", r.Size, len(wasm))
	}
	if len(r.Exports) != 1 || r.Exports[0].Name != "main" {
		t.Fatalf("exports: got %+v", r.Exports)
	}
	if got := r.Exports[0].Signature(); got != "() -> ()" {
		t.Errorf("signature: got %q", got)
	}
	if r.Memory != nil {
		t.Errorf("memory: got %+v, want none", r.Memory)
	}
	if r.Flavor != FlavorUnknown {
		t.Errorf("flavor: got %s", r.Flavor)
	}
	if r.OK() {
		t.Error("module without memory should report a problem")
	}
}

func TestInspectExportedMemory(t *testing.T) {
	wasm := module(typeSection, funcSection, memorySection, exportMainMemory, codeSection)
	r, err := Inspect(context.Background(), wasm, Options{RequiredExports: []string{"main"}})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if r.Memory == nil {
		t.Fatal("expected memory")
	}
	if r.Memory.Exported != "memory" || r.Memory.MinPages != 1 || r.Memory.HasMax {
		t.Errorf("memory: got %+v", r.Memory)
	}
	if r.Memory.MinBytes() != 65536 {
		t.Errorf("MinBytes: got %d", r.Memory.MinBytes())
	}
	if !r.OK() {
		t.Errorf("unexpected problems: %v", r.Problems)
	}
}

func TestInspectEmscriptenImports(t *testing.T) {
	wasm := module(typeSection, importSection("env", "emscripten_notify", true), funcSection, exportMainAfterImport, codeSection)
	r, err := Inspect(context.Background(), wasm, Options{Expect: FlavorEmscripten})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if r.Flavor != FlavorEmscripten {
		t.Errorf("flavor: got %s", r.Flavor)
	}
	want := []Function{{Module: "env", Name: "emscripten_notify", Params: []string{}, Results: []string{}}}
	if !reflect.DeepEqual(r.Imports, want) {
		t.Errorf("imports: got %+v, want %+v", r.Imports, want)
	}
	if r.Memory == nil || r.Memory.Imported != "env.memory" {
		t.Errorf("memory: got %+v", r.Memory)
	}
	if !r.OK() {
		t.Errorf("unexpected problems: %v", r.Problems)
	}
}

func TestInspectGoFlavor(t *testing.T) {
	wasm := module(typeSection, importSection("gojs", "runtime.wasmExit", true), funcSection, exportMainAfterImport, codeSection)
	r, err := Inspect(context.Background(), wasm, Options{Expect: FlavorEmscripten})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if r.Flavor != FlavorGo {
		t.Errorf("flavor: got %s", r.Flavor)
	}
	if r.OK() {
		t.Fatal("expected a flavor mismatch problem")
	}
	if !strings.Contains(r.Problems[0], "expected emscripten module, found go") {
		t.Errorf("problem: got %q", r.Problems[0])
	}
}

func TestInspectMissingExport(t *testing.T) {
	wasm := module(typeSection, funcSection, memorySection, exportMainMemory, codeSection)
	r, err := Inspect(context.Background(), wasm, Options{RequiredExports: []string{"main", "_start"}})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(r.Problems) != 1 || !strings.Contains(r.Problems[0], `"_start"`) {
		t.Errorf("problems: got %v", r.Problems)
	}
}

func TestInspectInvalid(t *testing.T) {
	tests := []struct {
		name string
		wasm []byte
	}{
		{"empty", nil},
		{"not wasm", []byte("hello world")},
		{"truncated", module(typeSection, funcSection)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Inspect(context.Background(), tt.wasm, Options{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
