package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/eljojo/occtview/internal/viewer"
)

// StatusElementID is the page element the bootstrap writes its status into.
const StatusElementID = "occtviewStatus"

// BootConfig is the JSON document embedded in the viewer page and read by
// the WASM bootstrap at startup.
type BootConfig struct {
	Title          string         `json:"title"`
	CanvasID       string         `json:"canvasId"`
	StatusID       string         `json:"statusId"`
	Factory        string         `json:"factory"`
	Language       string         `json:"language"`
	Diagnostics    string         `json:"diagnostics"`
	DiagnosticsURL string         `json:"diagnosticsUrl,omitempty"` // websocket endpoint for forwarding collected lines
	TimeoutMillis  int64          `json:"timeoutMs"`
	ViewerURL      string         `json:"viewerUrl,omitempty"`
	Startup        viewer.Startup `json:"startup"`
}

// BootConfig derives the page boot configuration from the project.
func (p *Project) BootConfig() (BootConfig, error) {
	if err := p.Validate(); err != nil {
		return BootConfig{}, err
	}
	timeout, err := p.TimeoutDuration()
	if err != nil {
		return BootConfig{}, err
	}
	sink, _ := viewer.ParseSinkKind(p.Diagnostics)

	return BootConfig{
		Title:         p.Name,
		CanvasID:      p.CanvasID,
		StatusID:      StatusElementID,
		Factory:       p.Module.Factory,
		Language:      p.Language,
		Diagnostics:   string(sink),
		TimeoutMillis: timeout.Milliseconds(),
		ViewerURL:     p.ViewerURL,
		Startup: viewer.Startup{
			Background: p.Background,
			Models:     p.Models,
		},
	}, nil
}

// JSON encodes the boot configuration.
func (b BootConfig) JSON() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encoding boot config: %w", err)
	}
	return string(data), nil
}

// ParseBootConfig decodes a boot configuration and fills defaults.
func ParseBootConfig(data []byte) (BootConfig, error) {
	var b BootConfig
	if err := json.Unmarshal(data, &b); err != nil {
		return BootConfig{}, fmt.Errorf("parsing boot config: %w", err)
	}
	if b.CanvasID == "" {
		b.CanvasID = viewer.DefaultCanvasID
	}
	if b.StatusID == "" {
		b.StatusID = StatusElementID
	}
	if b.Factory == "" {
		b.Factory = DefaultFactory
	}
	if b.Language == "" {
		b.Language = "en"
	}
	if b.TimeoutMillis < 0 {
		return BootConfig{}, fmt.Errorf("timeoutMs must not be negative, got %d", b.TimeoutMillis)
	}
	if _, err := viewer.ParseSinkKind(b.Diagnostics); err != nil {
		return BootConfig{}, err
	}
	return b, nil
}

// Timeout returns the readiness timeout.
func (b BootConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMillis) * time.Millisecond
}

// SinkKind returns the configured diagnostics sink kind.
func (b BootConfig) SinkKind() viewer.SinkKind {
	kind, err := viewer.ParseSinkKind(b.Diagnostics)
	if err != nil {
		return viewer.SinkNone
	}
	return kind
}

// Options builds bootstrap options around the given sink.
func (b BootConfig) Options(sink viewer.DiagnosticSink) viewer.Options {
	return viewer.Options{
		CanvasID:    b.CanvasID,
		Diagnostics: sink,
		Timeout:     b.Timeout(),
		Startup:     b.Startup,
	}
}
