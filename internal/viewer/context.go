package viewer

import (
	"fmt"
)

// ContextKind names a graphics context type as understood by the host.
type ContextKind string

const (
	KindWebGL2 ContextKind = "webgl2"
	KindWebGL  ContextKind = "webgl"
)

// contextKinds is the negotiation order: preferred kind, then the single
// fallback. There is never a third attempt.
var contextKinds = [2]ContextKind{KindWebGL2, KindWebGL}

// ContextAttributes are the capability flags fixed at context creation.
type ContextAttributes struct {
	Alpha                 bool `json:"alpha"`
	Depth                 bool `json:"depth"`
	Antialias             bool `json:"antialias"`
	PreserveDrawingBuffer bool `json:"preserveDrawingBuffer"`
}

// DefaultContextAttributes returns the attributes the viewer module is
// built for. PreserveDrawingBuffer keeps the last frame readable for
// snapshots.
func DefaultContextAttributes() ContextAttributes {
	return ContextAttributes{
		Alpha:                 false,
		Depth:                 true,
		Antialias:             false,
		PreserveDrawingBuffer: true,
	}
}

// Map returns the attributes in the shape expected by getContext.
func (a ContextAttributes) Map() map[string]any {
	return map[string]any{
		"alpha":                 a.Alpha,
		"depth":                 a.Depth,
		"antialias":             a.Antialias,
		"preserveDrawingBuffer": a.PreserveDrawingBuffer,
	}
}

// GraphicsContext is a live context bound to a surface.
type GraphicsContext interface {
	Kind() ContextKind
}

// AcquireContext requests the preferred context kind on s and falls back to
// the secondary kind, with identical attributes, only when the first request
// yields nothing.
func AcquireContext(s Surface, attrs ContextAttributes) (GraphicsContext, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", ErrNoGraphicsContext)
	}

	for i, kind := range contextKinds {
		gc, ok := s.GetContext(kind, attrs)
		if ok && gc != nil {
			if i > 0 {
				Logger().Warn("preferred graphics context unavailable, using fallback",
					"surface", s.ID(), "preferred", contextKinds[0], "kind", kind)
			}
			Logger().Info("graphics context acquired", "surface", s.ID(), "kind", gc.Kind())
			return gc, nil
		}
		Logger().Debug("graphics context unavailable", "surface", s.ID(), "kind", kind)
	}

	return nil, fmt.Errorf("%w on surface %q (tried %s, %s)",
		ErrNoGraphicsContext, s.ID(), contextKinds[0], contextKinds[1])
}
