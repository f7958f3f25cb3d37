package translations

import (
	"errors"
	"time"

	"github.com/eljojo/occtview/internal/viewer"
)

// DescribeFailure returns the user-facing message for a bootstrap error.
func DescribeFailure(lang string, err error, canvasID string, timeout time.Duration) string {
	switch {
	case errors.Is(err, viewer.ErrSurfaceNotFound):
		if canvasID == "" {
			canvasID = viewer.DefaultCanvasID
		}
		return T("viewer", lang, "error_surface_not_found", canvasID)
	case errors.Is(err, viewer.ErrNoGraphicsContext):
		return T("viewer", lang, "error_no_webgl")
	case errors.Is(err, viewer.ErrModuleInitTimeout):
		return T("viewer", lang, "error_timeout", timeout)
	case errors.Is(err, viewer.ErrStartupCommand):
		return T("viewer", lang, "error_startup", err)
	default:
		return T("viewer", lang, "error_module_init", err)
	}
}
