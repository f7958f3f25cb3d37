package project

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/eljojo/occtview/internal/translations"
	"github.com/eljojo/occtview/internal/viewer"
)

const (
	ProjectFileName = "viewer.yml"
	OutputDir       = "output"
	ViewerHTMLName  = "viewer.html"
)

// Defaults for the Emscripten build of the viewer module.
const (
	DefaultFactory = "createOcctViewerModule"
	DefaultScript  = "occt-viewer.js"
	DefaultWASM    = "occt-viewer.wasm"
	DefaultTimeout = 60 * time.Second
)

// MaxModelNameLength bounds symbolic model names.
const MaxModelNameLength = 200

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Module describes the externally supplied viewer module.
type Module struct {
	Factory string `yaml:"factory"`        // global factory function, e.g. createOcctViewerModule
	Script  string `yaml:"script"`         // Emscripten glue script, relative to the project or an http(s) URL
	WASM    string `yaml:"wasm,omitempty"` // module binary, relative to the project or an http(s) URL

	// UnsafeEval adds 'unsafe-eval' to the page's script-src. Embind builds
	// its invokers with new Function unless the module was linked with
	// -sDYNAMIC_EXECUTION=0.
	UnsafeEval bool `yaml:"unsafe_eval,omitempty"`
}

// Project represents a viewer project configuration (viewer.yml).
type Project struct {
	Name        string               `yaml:"name"`
	Created     string               `yaml:"created"`
	CanvasID    string               `yaml:"canvas_id,omitempty"`
	Language    string               `yaml:"language,omitempty"` // UI language (e.g. "en", "es", "de", "fr")
	Module      Module               `yaml:"module"`
	Diagnostics string               `yaml:"diagnostics,omitempty"` // "none" or "collector"
	Timeout     string               `yaml:"timeout,omitempty"`     // Go duration, e.g. "45s"
	Background  string               `yaml:"background,omitempty"`
	Models      []viewer.ModelSource `yaml:"models,omitempty"`
	ViewerURL   string               `yaml:"viewer_url,omitempty"` // where the page will be published

	// Path is the directory containing this project (not serialized)
	Path string `yaml:"-"`
}

// Load reads a project from a directory.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}

	p.Path = dir
	p.applyDefaults()
	return &p, nil
}

// Save writes the project configuration to disk.
func (p *Project) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}

	path := filepath.Join(p.Path, ProjectFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}

	return nil
}

func (p *Project) applyDefaults() {
	if p.CanvasID == "" {
		p.CanvasID = viewer.DefaultCanvasID
	}
	if p.Module.Factory == "" {
		p.Module.Factory = DefaultFactory
	}
	if p.Module.Script == "" {
		p.Module.Script = DefaultScript
	}
	if p.Language == "" {
		p.Language = "en"
	}
	for i := range p.Models {
		p.Models[i].Name = NormalizeModelName(p.Models[i].Name)
		p.Models[i].URL = strings.TrimSpace(p.Models[i].URL)
	}
}

// Validate checks that the project configuration is valid.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if !validElementID(p.CanvasID) {
		return fmt.Errorf("invalid canvas id %q", p.CanvasID)
	}
	if !jsIdentifier.MatchString(p.Module.Factory) {
		return fmt.Errorf("module factory %q is not a JavaScript identifier", p.Module.Factory)
	}
	if p.Module.Script == "" {
		return fmt.Errorf("module script is required")
	}
	if err := checkModuleRef("module script", p.Module.Script); err != nil {
		return err
	}
	if p.Module.WASM != "" {
		if err := checkModuleRef("module wasm", p.Module.WASM); err != nil {
			return err
		}
	}
	if !validLanguage(p.Language) {
		return fmt.Errorf("unsupported language %q (supported: %s)", p.Language, strings.Join(translations.Languages, ", "))
	}
	if _, err := viewer.ParseSinkKind(p.Diagnostics); err != nil {
		return err
	}
	if _, err := p.TimeoutDuration(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(p.Models))
	for i, m := range p.Models {
		if m.Name == "" {
			return fmt.Errorf("model %d: name is required", i+1)
		}
		if len(m.Name) > MaxModelNameLength {
			return fmt.Errorf("model %d: name too long (%d > %d)", i+1, len(m.Name), MaxModelNameLength)
		}
		if m.URL == "" {
			return fmt.Errorf("model %q: url is required", m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("model %q: duplicate name", m.Name)
		}
		seen[m.Name] = true
	}

	return nil
}

// TimeoutDuration parses the readiness timeout. Empty means DefaultTimeout;
// "0" disables the timeout.
func (p *Project) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return DefaultTimeout, nil
	}
	if p.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return d, nil
}

// OutputPath returns the path to the output directory.
func (p *Project) OutputPath() string {
	return filepath.Join(p.Path, OutputDir)
}

// ViewerHTMLPath returns the path of the generated viewer page.
func (p *Project) ViewerHTMLPath() string {
	return filepath.Join(p.Path, OutputDir, ViewerHTMLName)
}

// checkModuleRef accepts an http(s) URL or a path inside the project.
func checkModuleRef(what, ref string) error {
	if IsRemoteURL(ref) || IsProjectRelative(ref) {
		return nil
	}
	return fmt.Errorf("%s %q must be a path inside the project or an http(s) URL", what, ref)
}

// IsRemoteURL reports whether ref is an absolute http or https URL.
func IsRemoteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsProjectRelative reports whether ref names a file inside the project,
// served next to the page. Absolute paths, scheme or host URLs and paths
// climbing out with ".." are not.
func IsProjectRelative(ref string) bool {
	if ref == "" {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	clean := path.Clean(u.Path)
	return !path.IsAbs(clean) && clean != ".." && !strings.HasPrefix(clean, "../")
}

// ModuleScriptPath returns the path to the module's glue script, or "" if
// the script is loaded from a remote URL.
func (p *Project) ModuleScriptPath() string {
	if !IsProjectRelative(p.Module.Script) {
		return ""
	}
	return filepath.Join(p.Path, filepath.FromSlash(p.Module.Script))
}

// ModuleWASMPath returns the path to the module binary, or "" if it is not
// configured or remote.
func (p *Project) ModuleWASMPath() string {
	if !IsProjectRelative(p.Module.WASM) {
		return ""
	}
	return filepath.Join(p.Path, filepath.FromSlash(p.Module.WASM))
}

// FindProjectDir searches up the directory tree for a viewer.yml file.
// Returns the directory containing the project, or an error if not found.
func FindProjectDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		projectPath := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(projectPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("no %s found in %s or any parent directory", ProjectFileName, startDir)
		}
		dir = parent
	}
}

// Options holds the settings for a new project.
type Options struct {
	CanvasID    string
	Language    string
	Module      Module
	Diagnostics string
	Timeout     string
	Background  string
	Models      []viewer.ModelSource
	ViewerURL   string
}

// New creates a new project with default module settings.
func New(dir, name string, models []viewer.ModelSource) (*Project, error) {
	return NewWithOptions(dir, name, Options{Models: models})
}

// NewWithOptions creates a new project with the given configuration.
func NewWithOptions(dir, name string, opts Options) (*Project, error) {
	p := &Project{
		Name:        name,
		Created:     time.Now().Format("2006-01-02"),
		CanvasID:    opts.CanvasID,
		Language:    opts.Language,
		Module:      opts.Module,
		Diagnostics: opts.Diagnostics,
		Timeout:     opts.Timeout,
		Background:  opts.Background,
		Models:      opts.Models,
		ViewerURL:   opts.ViewerURL,
		Path:        dir,
	}
	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}

	if err := p.Save(); err != nil {
		return nil, err
	}

	return p, nil
}

// NormalizeModelName trims and NFC-normalizes a symbolic model name so the
// same name typed on different systems maps to the same viewer object.
func NormalizeModelName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ModelNames returns a comma-separated list of model names.
func ModelNames(models []viewer.ModelSource) string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return strings.Join(names, ", ")
}

func validLanguage(lang string) bool {
	for _, l := range translations.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// validElementID accepts HTML ids without whitespace or quotes.
func validElementID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, " \t\r\n\"'<>")
}
