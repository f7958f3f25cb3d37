package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Environment variables consulted when the asset flags are not given.
const (
	envBootstrapWASM = "OCCTVIEW_BOOTSTRAP_WASM"
	envWASMExec      = "OCCTVIEW_WASM_EXEC"
)

// pageAssets are the Go-side files embedded into every viewer page.
type pageAssets struct {
	bootstrapWASM []byte
	wasmExecJS    string
}

// loadPageAssets reads the bootstrap binary and its wasm_exec.js. An empty
// wasmExecPath falls back to the copy shipped with the Go toolchain.
func loadPageAssets(bootstrapPath, wasmExecPath string) (*pageAssets, error) {
	if bootstrapPath == "" {
		bootstrapPath = os.Getenv(envBootstrapWASM)
	}
	if bootstrapPath == "" {
		return nil, fmt.Errorf("bootstrap wasm not set (use --bootstrap-wasm or %s; build it with GOOS=js GOARCH=wasm go build ./internal/wasm)", envBootstrapWASM)
	}
	wasm, err := os.ReadFile(bootstrapPath)
	if err != nil {
		return nil, fmt.Errorf("reading bootstrap wasm: %w", err)
	}

	if wasmExecPath == "" {
		wasmExecPath = os.Getenv(envWASMExec)
	}
	if wasmExecPath == "" {
		wasmExecPath = toolchainWASMExec()
	}
	if wasmExecPath == "" {
		return nil, fmt.Errorf("wasm_exec.js not found (use --wasm-exec or %s)", envWASMExec)
	}
	execJS, err := os.ReadFile(wasmExecPath)
	if err != nil {
		return nil, fmt.Errorf("reading wasm_exec.js: %w", err)
	}

	return &pageAssets{bootstrapWASM: wasm, wasmExecJS: string(execJS)}, nil
}

// toolchainWASMExec locates wasm_exec.js in the Go installation. Go 1.24
// moved it from misc/wasm to lib/wasm.
func toolchainWASMExec() string {
	root := runtime.GOROOT()
	if root == "" {
		return ""
	}
	for _, dir := range []string{"lib", "misc"} {
		path := filepath.Join(root, dir, "wasm", "wasm_exec.js")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
