package viewer

import (
	"errors"
	"sync"
)

type fakeDoc struct {
	surfaces map[string]*fakeSurface
	lookups  []string
}

func newFakeDoc(surfaces ...*fakeSurface) *fakeDoc {
	d := &fakeDoc{surfaces: make(map[string]*fakeSurface)}
	for _, s := range surfaces {
		d.surfaces[s.id] = s
	}
	return d
}

func (d *fakeDoc) Lookup(id string) (Surface, bool) {
	d.lookups = append(d.lookups, id)
	s, ok := d.surfaces[id]
	if !ok {
		return nil, false
	}
	return s, true
}

type fakeSurface struct {
	id        string
	available map[ContextKind]bool

	mu       sync.Mutex
	attempts []ContextKind
	attrs    []ContextAttributes
}

func newFakeSurface(id string, kinds ...ContextKind) *fakeSurface {
	s := &fakeSurface{id: id, available: make(map[ContextKind]bool)}
	for _, k := range kinds {
		s.available[k] = true
	}
	return s
}

func (s *fakeSurface) ID() string                { return s.id }
func (s *fakeSurface) Size() (int, int)          { return 800, 600 }
func (s *fakeSurface) DevicePixelRatio() float64 { return 2 }

func (s *fakeSurface) GetContext(kind ContextKind, attrs ContextAttributes) (GraphicsContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, kind)
	s.attrs = append(s.attrs, attrs)
	if !s.available[kind] {
		return nil, false
	}
	return fakeContext{kind: kind}, true
}

func (s *fakeSurface) Attempts() []ContextKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ContextKind(nil), s.attempts...)
}

type fakeContext struct {
	kind ContextKind
}

func (c fakeContext) Kind() ContextKind { return c.kind }

type fakeModule struct {
	mu          sync.Mutex
	backgrounds []string
	opened      []ModelSource
	openErr     error
	bgErr       error
	failURL     string // OpenFromURL fails only for this url
}

func (m *fakeModule) SetCubemapBackground(src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bgErr != nil {
		return m.bgErr
	}
	m.backgrounds = append(m.backgrounds, src)
	return nil
}

func (m *fakeModule) OpenFromURL(name, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	if m.failURL != "" && url == m.failURL {
		return errors.New("404")
	}
	m.opened = append(m.opened, ModelSource{Name: name, URL: url})
	return nil
}

// asyncRuntime signals readiness from another goroutine, like a JS promise
// resolving on a later tick.
type asyncRuntime struct {
	module  Module
	failErr error
	started chan *ModuleConfig
}

func newAsyncRuntime(m Module) *asyncRuntime {
	return &asyncRuntime{module: m, started: make(chan *ModuleConfig, 1)}
}

func (r *asyncRuntime) Start(cfg *ModuleConfig) error {
	r.started <- cfg
	go func() {
		if r.failErr != nil {
			_ = cfg.NotifyFailed(r.failErr)
			return
		}
		_ = cfg.NotifyReady(r.module)
	}()
	return nil
}

// silentRuntime never signals.
type silentRuntime struct{}

func (silentRuntime) Start(*ModuleConfig) error { return nil }
