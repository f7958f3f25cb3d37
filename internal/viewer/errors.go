package viewer

import "errors"

// Bootstrap failures. All of them are terminal: the viewer never reaches
// StateReady once one of these has been reported.
var (
	// ErrSurfaceNotFound means the hosting document has no drawable element
	// with the requested id.
	ErrSurfaceNotFound = errors.New("display surface not found")

	// ErrNoGraphicsContext means neither the preferred nor the secondary
	// context kind could be created on the surface.
	ErrNoGraphicsContext = errors.New("no graphics context available")

	// ErrModuleInit means the external module failed to start.
	ErrModuleInit = errors.New("module initialization failed")

	// ErrModuleInitTimeout means the readiness signal did not arrive before
	// the deadline (or the wait was cancelled).
	ErrModuleInitTimeout = errors.New("module initialization timed out")
)

var (
	// ErrAlreadySignaled is returned when readiness is reported a second time.
	ErrAlreadySignaled = errors.New("readiness already signaled")

	// ErrAlreadyStarted is returned when Run is called on a used Bootstrap.
	ErrAlreadyStarted = errors.New("bootstrap already started")

	// ErrStartupCommand wraps failures of the post-ready commands. The module
	// stays ready when one of them fails.
	ErrStartupCommand = errors.New("startup command failed")

	// ErrUnknownCommand is returned for view commands the module does not offer.
	ErrUnknownCommand = errors.New("unknown view command")
)
