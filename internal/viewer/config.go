package viewer

// ModuleConfig is the record handed to the external module's initializer:
// the target surface, the diagnostic output hooks and the readiness slot.
//
// A ModuleConfig is fixed at construction. Its fields are unexported and
// only readable through getters, so the values the runtime observes after
// the asynchronous handoff are the values it was built with. It must stay
// reachable for the module's whole lifetime; there is no teardown.
type ModuleConfig struct {
	surface   Surface
	context   GraphicsContext
	sink      DiagnosticSink
	readiness *Readiness
}

// ConfigOption customises BuildModuleConfig.
type ConfigOption func(*ModuleConfig)

// WithDiagnostics routes module output to sink. A nil sink means NopSink.
func WithDiagnostics(sink DiagnosticSink) ConfigOption {
	return func(c *ModuleConfig) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithGraphicsContext records the context negotiated on the surface.
func WithGraphicsContext(gc GraphicsContext) ConfigOption {
	return func(c *ModuleConfig) {
		c.context = gc
	}
}

// BuildModuleConfig creates the configuration for surface s.
func BuildModuleConfig(s Surface, opts ...ConfigOption) *ModuleConfig {
	c := &ModuleConfig{
		surface:   s,
		sink:      NopSink{},
		readiness: newReadiness(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Surface returns the target surface.
func (c *ModuleConfig) Surface() Surface { return c.surface }

// GraphicsContext returns the negotiated context, or nil if none was recorded.
func (c *ModuleConfig) GraphicsContext() GraphicsContext { return c.context }

// Diagnostics returns the configured sink.
func (c *ModuleConfig) Diagnostics() DiagnosticSink { return c.sink }

// Print is the module's standard output hook.
func (c *ModuleConfig) Print(line string) { c.sink.Print(line) }

// PrintErr is the module's standard error hook.
func (c *ModuleConfig) PrintErr(line string) { c.sink.PrintErr(line) }

// Readiness returns the one-shot readiness future.
func (c *ModuleConfig) Readiness() *Readiness { return c.readiness }

// NotifyReady is called by the runtime once the module finished starting.
// A second notification returns ErrAlreadySignaled and changes nothing.
func (c *ModuleConfig) NotifyReady(m Module) error {
	return c.readiness.resolve(m, nil)
}

// NotifyFailed is called by the runtime when the module could not start.
func (c *ModuleConfig) NotifyFailed(err error) error {
	if err == nil {
		err = ErrModuleInit
	}
	return c.readiness.resolve(nil, err)
}
