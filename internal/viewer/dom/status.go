//go:build js && wasm

package dom

import (
	"syscall/js"
)

// Status writes user-visible bootstrap state into a page element.
type Status struct {
	el js.Value
}

// NewStatus binds to the element with the given id. A missing element makes
// every method a no-op except for failures, which still reach the console.
func NewStatus(doc *Document, id string) *Status {
	return &Status{el: doc.Element(id)}
}

// Progress shows an in-flight message.
func (s *Status) Progress(text string) {
	s.set(text, "viewer-status")
}

// Ready shows the ready message; the stylesheet fades it out.
func (s *Status) Ready(text string) {
	s.set(text, "viewer-status ready")
}

// Failed shows a terminal failure with a reload button.
func (s *Status) Failed(text, reloadLabel string) {
	js.Global().Get("console").Call("error", text)
	if !s.el.Truthy() {
		return
	}
	s.set(text, "viewer-status error")

	doc := js.Global().Get("document")
	button := doc.Call("createElement", "button")
	button.Set("type", "button")
	button.Set("textContent", reloadLabel)
	button.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
		js.Global().Get("location").Call("reload")
		return nil
	}))
	s.el.Call("appendChild", button)
}

func (s *Status) set(text, class string) {
	if !s.el.Truthy() {
		return
	}
	s.el.Set("textContent", text)
	s.el.Set("className", class)
}
