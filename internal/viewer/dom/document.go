//go:build js && wasm

// Package dom binds the viewer bootstrap to the browser: canvas lookup,
// WebGL context creation and the Emscripten module factory.
package dom

import (
	"encoding/base64"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/eljojo/occtview/internal/viewer"
)

// Document looks up canvases in the page's document.
type Document struct {
	doc js.Value
}

// NewDocument wraps the global document.
func NewDocument() *Document {
	return &Document{doc: js.Global().Get("document")}
}

// Lookup returns the element with the given id if it is a canvas, i.e. it
// has a getContext method.
func (d *Document) Lookup(id string) (viewer.Surface, bool) {
	if !d.doc.Truthy() {
		return nil, false
	}
	el := d.doc.Call("getElementById", id)
	if !el.Truthy() || el.Get("getContext").Type() != js.TypeFunction {
		return nil, false
	}
	return &Canvas{id: id, el: el}, true
}

// Element returns the raw element with the given id, or a falsy value.
func (d *Document) Element(id string) js.Value {
	if !d.doc.Truthy() {
		return js.Null()
	}
	return d.doc.Call("getElementById", id)
}

// Canvas is an HTML canvas element.
type Canvas struct {
	id string
	el js.Value
}

func (c *Canvas) ID() string { return c.id }

// Value returns the underlying element.
func (c *Canvas) Value() js.Value { return c.el }

// Size returns the drawing buffer size in pixels.
func (c *Canvas) Size() (width, height int) {
	return c.el.Get("width").Int(), c.el.Get("height").Int()
}

// DevicePixelRatio returns window.devicePixelRatio, or 1 when unset.
func (c *Canvas) DevicePixelRatio() float64 {
	dpr := js.Global().Get("devicePixelRatio")
	if dpr.Type() != js.TypeNumber || dpr.Float() <= 0 {
		return 1
	}
	return dpr.Float()
}

// FitToDisplay sizes the drawing buffer to the element's CSS box times the
// device pixel ratio. It reports whether the size changed.
func (c *Canvas) FitToDisplay() bool {
	dpr := c.DevicePixelRatio()
	w := int(c.el.Get("clientWidth").Float() * dpr)
	h := int(c.el.Get("clientHeight").Float() * dpr)
	if w <= 0 || h <= 0 {
		return false
	}
	cw, ch := c.Size()
	if cw == w && ch == h {
		return false
	}
	c.el.Set("width", w)
	c.el.Set("height", h)
	return true
}

// GetContext calls getContext(kind, attrs). A null result means the kind is
// unsupported.
func (c *Canvas) GetContext(kind viewer.ContextKind, attrs viewer.ContextAttributes) (viewer.GraphicsContext, bool) {
	ctx, err := safeCall(c.el, "getContext", string(kind), js.ValueOf(attrs.Map()))
	if err != nil || !ctx.Truthy() {
		return nil, false
	}
	return &glContext{kind: kind, ctx: ctx}, true
}

// Snapshot reads the current drawing buffer as PNG bytes. It relies on the
// context having been created with preserveDrawingBuffer.
func (c *Canvas) Snapshot() ([]byte, error) {
	url, err := safeCall(c.el, "toDataURL", "image/png")
	if err != nil {
		return nil, fmt.Errorf("reading canvas: %w", err)
	}
	const prefix = "data:image/png;base64,"
	s := url.String()
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("unexpected canvas data url %.32q", s)
	}
	data, err := base64.StdEncoding.DecodeString(s[len(prefix):])
	if err != nil {
		return nil, fmt.Errorf("decoding canvas png: %w", err)
	}
	return data, nil
}

type glContext struct {
	kind viewer.ContextKind
	ctx  js.Value
}

func (g *glContext) Kind() viewer.ContextKind { return g.kind }

// Version returns the GL VERSION string.
func (g *glContext) Version() string {
	v := g.ctx.Call("getParameter", g.ctx.Get("VERSION"))
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

// ContextVersion returns the GL version string of gc when it is a browser
// context.
func ContextVersion(gc viewer.GraphicsContext) string {
	if g, ok := gc.(*glContext); ok {
		return g.Version()
	}
	return ""
}

// safeCall invokes method on v, turning a thrown JS exception into an error.
func safeCall(v js.Value, method string, args ...any) (result js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", method, r)
		}
	}()
	return v.Call(method, args...), nil
}
