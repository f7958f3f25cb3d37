package viewer

import (
	"fmt"
)

// DefaultCanvasID is the element id the external viewer module expects.
const DefaultCanvasID = "occtViewerCanvas"

// Document is the hosting page the surface is looked up in.
type Document interface {
	// Lookup returns the drawable element with the given id, or false when
	// no such element exists.
	Lookup(id string) (Surface, bool)
}

// Surface is a drawing target owned by the host document. The adapter never
// destroys it.
type Surface interface {
	ID() string
	Size() (width, height int)
	DevicePixelRatio() float64

	// GetContext requests a context of the given kind. It reports false when
	// the kind is unsupported on this surface.
	GetContext(kind ContextKind, attrs ContextAttributes) (GraphicsContext, bool)
}

// ResolveSurface finds the surface with the given id in doc. An empty id
// means DefaultCanvasID.
func ResolveSurface(doc Document, id string) (Surface, error) {
	if id == "" {
		id = DefaultCanvasID
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %q (no document)", ErrSurfaceNotFound, id)
	}

	s, ok := doc.Lookup(id)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: %q", ErrSurfaceNotFound, id)
	}

	w, h := s.Size()
	Logger().Info("surface resolved", "id", id, "width", w, "height", h, "dpr", s.DevicePixelRatio())
	return s, nil
}
