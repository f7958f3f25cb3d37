//go:build js && wasm

package main

import (
	"log/slog"
	"syscall/js"

	"github.com/eljojo/occtview/internal/viewer"
)

// version is set by the linker.
var version = "dev"

func main() {
	boot, err := loadBootConfig()
	if err != nil {
		js.Global().Get("console").Call("error", "occtview: "+err.Error())
		select {}
	}

	if js.Global().Get("occtviewDebug").Truthy() {
		viewer.SetLogger(slog.New(slog.NewTextHandler(consoleWriter{}, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	a := newApp(boot)

	// Register viewer functions on the global object
	js.Global().Set("occtviewState", js.FuncOf(a.stateJS))
	js.Global().Set("occtviewDiagnostics", js.FuncOf(a.diagnosticsJS))
	js.Global().Set("occtviewOpenModel", js.FuncOf(a.openModelJS))
	js.Global().Set("occtviewSetBackground", js.FuncOf(a.setBackgroundJS))
	js.Global().Set("occtviewCommand", js.FuncOf(a.commandJS))
	js.Global().Set("occtviewSnapshot", js.FuncOf(a.snapshotJS))
	js.Global().Set("occtviewSnapshotSheet", js.FuncOf(a.snapshotSheetJS))

	go a.run()

	// Keep the Go program running
	select {}
}

// consoleWriter sends log output to console.log.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}
