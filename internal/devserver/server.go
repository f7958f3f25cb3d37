// Package devserver serves a viewer project locally: the generated page,
// the project's files with WebAssembly-friendly content types, and a
// websocket that collects the module's diagnostic output.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eljojo/occtview/internal/html"
	"github.com/eljojo/occtview/internal/project"
	"github.com/eljojo/occtview/internal/viewer"
)

// Routes
const (
	DiagnosticsPath     = "/diagnostics"
	DiagnosticsJSONPath = "/diagnostics.json"
)

// maxMessageSize bounds one diagnostics message from the page.
const maxMessageSize = 64 << 10

// Config holds what the server needs to build and serve the page.
type Config struct {
	Project       *project.Project
	BootstrapWASM []byte
	WASMExecJS    string
	Version       string

	// Collector receives lines streamed from the page. Nil means a new
	// collector with the default limit.
	Collector *viewer.Collector

	// Logger defaults to viewer.Logger().
	Logger *slog.Logger
}

// Server is the development server.
type Server struct {
	cfg       Config
	collector *viewer.Collector
	log       *slog.Logger
	upgrader  websocket.Upgrader
	files     http.Handler
}

// New validates cfg and returns a server.
func New(cfg Config) (*Server, error) {
	if cfg.Project == nil {
		return nil, errors.New("project is required")
	}
	if err := cfg.Project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}
	if len(cfg.BootstrapWASM) == 0 {
		return nil, errors.New("bootstrap wasm is required")
	}
	s := &Server{
		cfg:       cfg,
		collector: cfg.Collector,
		log:       cfg.Logger,
		files:     http.FileServer(http.Dir(cfg.Project.Path)),
	}
	if s.collector == nil {
		s.collector = viewer.NewCollector(0)
	}
	if s.log == nil {
		s.log = viewer.Logger()
	}
	return s, nil
}

// Collector returns the collector fed by the diagnostics websocket.
func (s *Server) Collector() *viewer.Collector { return s.collector }

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /"+project.ViewerHTMLName, s.handlePage)
	mux.HandleFunc("GET "+DiagnosticsPath, s.handleDiagnostics)
	mux.HandleFunc("GET "+DiagnosticsJSONPath, s.handleDiagnosticsJSON)
	mux.HandleFunc("GET /", s.handleFile)
	return mux
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.log.Info("dev server listening", "addr", ln.Addr().String(), "project", s.cfg.Project.Name)
	return s.Serve(ctx, ln)
}

// handlePage renders the viewer page with diagnostics streamed back here.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	boot, err := s.cfg.Project.BootConfig()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	boot.Diagnostics = string(viewer.SinkCollector)
	boot.DiagnosticsURL = websocketURL(r, DiagnosticsPath)

	page, err := html.GenerateViewerHTML(html.ViewerPage{
		Boot:            boot,
		BootstrapWASM:   s.cfg.BootstrapWASM,
		WASMExecJS:      s.cfg.WASMExecJS,
		ModuleScriptURL: moduleScriptURL(s.cfg.Project.Module.Script),
		UnsafeEval:      s.cfg.Project.Module.UnsafeEval,
		Version:         s.cfg.Version,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(page))
}

// moduleScriptURL roots a project-relative script at the server; remote
// scripts are loaded from where they are.
func moduleScriptURL(script string) string {
	if project.IsRemoteURL(script) {
		return script
	}
	return path.Clean("/" + script)
}

// handleFile serves project files. The project file itself is not exposed.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(r.URL.Path)
	if path.Base(name) == project.ProjectFileName || strings.HasPrefix(path.Base(name), ".") {
		http.NotFound(w, r)
		return
	}
	if ct := contentType(name); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "no-cache")
	s.files.ServeHTTP(w, r)
}

// handleDiagnostics accepts a websocket carrying one viewer.Line per
// message and feeds the collector.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("diagnostics upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s.log.Info("diagnostics stream connected", "remote", r.RemoteAddr)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("diagnostics stream ended", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		var line viewer.Line
		if err := json.Unmarshal(msg, &line); err != nil {
			s.log.Warn("malformed diagnostics message", "error", err)
			continue
		}
		switch line.Stream {
		case viewer.StreamErr:
			s.collector.PrintErr(line.Text)
			s.log.Warn("module", "text", line.Text)
		default:
			s.collector.Print(line.Text)
			s.log.Info("module", "text", line.Text)
		}
	}
}

func (s *Server) handleDiagnosticsJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(s.collector.Lines()); err != nil {
		s.log.Warn("writing diagnostics", "error", err)
	}
}

// contentType returns the type for extensions that browsers are strict
// about, or "" to let the file server decide.
func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".wasm":
		return "application/wasm"
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".brep", ".step", ".stp", ".iges", ".igs":
		return "application/octet-stream"
	default:
		return ""
	}
}

func websocketURL(r *http.Request, p string) string {
	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	return scheme + "://" + r.Host + p
}
