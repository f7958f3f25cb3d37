//go:build js && wasm

package dom

import (
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/eljojo/occtview/internal/viewer"
)

// maxPending bounds lines buffered while the socket is connecting.
const maxPending = 256

// ForwardDiagnostics streams every line added to c to a websocket at url as
// one JSON object per message. Lines produced before the socket opens are
// queued; if it never opens they stay only in the collector.
func ForwardDiagnostics(c *viewer.Collector, url string) {
	ws := js.Global().Get("WebSocket").New(url)

	var (
		mu      sync.Mutex
		open    bool
		pending [][]byte
	)

	send := func(data []byte) {
		defer func() {
			if r := recover(); r != nil {
				viewer.Logger().Debug("diagnostics send failed", "error", r)
			}
		}()
		ws.Call("send", string(data))
	}

	ws.Call("addEventListener", "open", js.FuncOf(func(this js.Value, args []js.Value) any {
		mu.Lock()
		open = true
		queued := pending
		pending = nil
		mu.Unlock()
		for _, data := range queued {
			send(data)
		}
		return nil
	}))
	ws.Call("addEventListener", "close", js.FuncOf(func(this js.Value, args []js.Value) any {
		mu.Lock()
		open = false
		mu.Unlock()
		viewer.Logger().Info("diagnostics stream closed", "url", url)
		return nil
	}))

	c.Forward(func(l viewer.Line) {
		data, err := json.Marshal(l)
		if err != nil {
			return
		}
		mu.Lock()
		if !open {
			if len(pending) < maxPending {
				pending = append(pending, data)
			}
			mu.Unlock()
			return
		}
		mu.Unlock()
		send(data)
	})
}
