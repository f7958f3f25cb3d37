//go:build js && wasm

package main

import (
	"syscall/js"
	"time"

	"github.com/eljojo/occtview/internal/pdf"
	"github.com/eljojo/occtview/internal/project"
	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
	"github.com/eljojo/occtview/internal/viewer/dom"
)

// stateJS reports the bootstrap state and surface metrics.
// Returns: { state: string, canvasId: string, context: string|null,
// width: number, height: number, dpr: number, error: string|null }
func (a *app) stateJS(this js.Value, args []js.Value) any {
	result := map[string]any{
		"state":    a.bootstrap.State().String(),
		"canvasId": a.boot.CanvasID,
		"context":  nil,
		"error":    nil,
	}
	if err := a.bootstrap.Err(); err != nil {
		result["error"] = err.Error()
	}
	if cfg := a.bootstrap.Config(); cfg != nil {
		s := cfg.Surface()
		w, h := s.Size()
		result["width"] = w
		result["height"] = h
		result["dpr"] = s.DevicePixelRatio()
		if gc := cfg.GraphicsContext(); gc != nil {
			result["context"] = string(gc.Kind())
			result["glVersion"] = dom.ContextVersion(gc)
		}
	}
	return js.ValueOf(result)
}

// diagnosticsJS returns the collected module output.
// Returns: { lines: [{stream, text, at}], error: string|null }
func (a *app) diagnosticsJS(this js.Value, args []js.Value) any {
	if a.collector == nil {
		return errorResult("diagnostics are not collected (set diagnostics: collector)")
	}
	lines := a.collector.Lines()
	jsLines := make([]any, len(lines))
	for i, l := range lines {
		jsLines[i] = map[string]any{
			"stream": string(l.Stream),
			"text":   l.Text,
			"at":     l.At.Format(time.RFC3339Nano),
		}
	}
	return js.ValueOf(map[string]any{
		"lines": jsLines,
		"error": nil,
	})
}

// openModelJS opens a model from a URL under a symbolic name.
// Args: name (string), url (string)
// Returns: { error: string|null }
func (a *app) openModelJS(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("missing arguments (need name, url)")
	}
	name := project.NormalizeModelName(args[0].String())
	url := args[1].String()
	if name == "" || url == "" {
		return errorResult("name and url must not be empty")
	}

	m, err := a.module()
	if err != nil {
		return errorResult(err.Error())
	}
	a.status.Progress(a.t("opening_model", name))
	if err := m.OpenFromURL(name, url); err != nil {
		return errorResult(err.Error())
	}
	a.recordOpened([]viewer.ModelSource{{Name: name, URL: url}})
	a.status.Ready(a.t("ready"))

	return js.ValueOf(map[string]any{"error": nil})
}

// setBackgroundJS sets the cubemap background.
// Args: src (string)
// Returns: { error: string|null }
func (a *app) setBackgroundJS(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing src argument")
	}
	m, err := a.module()
	if err != nil {
		return errorResult(err.Error())
	}
	if err := m.SetCubemapBackground(args[0].String()); err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]any{"error": nil})
}

// commandJS issues a view command such as fitAllObjects or displayGround.
// Args: name (string), ...args (string|boolean)
// Returns: { result: any, error: string|null }
func (a *app) commandJS(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("missing command name")
	}
	m, err := a.module()
	if err != nil {
		return errorResult(err.Error())
	}

	name := args[0].String()
	cmdArgs := make([]any, 0, len(args)-1)
	for _, v := range args[1:] {
		switch v.Type() {
		case js.TypeBoolean:
			cmdArgs = append(cmdArgs, v.Bool())
		case js.TypeString:
			cmdArgs = append(cmdArgs, v.String())
		default:
			cmdArgs = append(cmdArgs, v.Type().String())
		}
	}

	result, err := viewer.RunCommand(m, name, cmdArgs...)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]any{
		"result": result,
		"error":  nil,
	})
}

// snapshotJS reads the current frame as PNG.
// Returns: { data: Uint8Array, error: string|null }
func (a *app) snapshotJS(this js.Value, args []js.Value) any {
	png, err := a.snapshot()
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]any{
		"data":  bytesToJS(png),
		"error": nil,
	})
}

// snapshotSheetJS renders the current frame into a printable PDF.
// Returns: { data: Uint8Array, filename: string, error: string|null }
func (a *app) snapshotSheetJS(this js.Value, args []js.Value) any {
	png, err := a.snapshot()
	if err != nil {
		return errorResult(err.Error())
	}

	data := pdf.SheetData{
		Title:     a.boot.Title,
		Snapshot:  png,
		Models:    a.openedModels(),
		ViewerURL: a.boot.ViewerURL,
		Version:   version,
		Created:   time.Now(),
		Language:  a.boot.Language,
	}
	if cfg := a.bootstrap.Config(); cfg != nil {
		data.Width, data.Height = cfg.Surface().Size()
		if gc := cfg.GraphicsContext(); gc != nil {
			data.Context = gc.Kind()
		}
	}

	pdfBytes, err := pdf.GenerateSheet(data)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]any{
		"data":     bytesToJS(pdfBytes),
		"filename": translations.SheetFilename(a.boot.Language),
		"error":    nil,
	})
}

func (a *app) snapshot() ([]byte, error) {
	if _, err := a.module(); err != nil {
		return nil, err
	}
	c, err := a.canvas()
	if err != nil {
		return nil, err
	}
	return c.Snapshot()
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func errorResult(msg string) any {
	return js.ValueOf(map[string]any{
		"error": msg,
	})
}
