package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/eljojo/occtview/internal/project"
	"github.com/eljojo/occtview/internal/viewer"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		result := formatSize(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, result, tt.expected)
		}
	}
}

func TestTruncateHash(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sha256:abc", "sha256:abc"},
		{"sha256:abcdefghijklm", "sha256:abcdefghijklm"},
		{"sha256:abcdefghijklmnopqrstuvwxyz", "sha256:abcdefghijklm..."},
		{"short", "short"},
	}

	for _, tt := range tests {
		result := truncateHash(tt.input)
		if result != tt.expected {
			t.Errorf("truncateHash(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestColorsRespectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if got := green("ok"); got != "ok" {
		t.Errorf("green with NO_COLOR = %q", got)
	}
	t.Setenv("NO_COLOR", "")
	if got := yellow("warn"); !strings.HasPrefix(got, ansiYellow) || !strings.HasSuffix(got, ansiReset) {
		t.Errorf("yellow = %q, want ANSI wrapped", got)
	}
}

func TestParseModelFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    []viewer.ModelSource
		wantErr bool
	}{
		{
			name:  "single",
			flags: []string{"ball=samples/Ball.brep"},
			want:  []viewer.ModelSource{{Name: "ball", URL: "samples/Ball.brep"}},
		},
		{
			name:  "trimmed and url with equals",
			flags: []string{" gear = https://example.com/m?id=3 "},
			want:  []viewer.ModelSource{{Name: "gear", URL: "https://example.com/m?id=3"}},
		},
		{
			name:  "several",
			flags: []string{"a=a.step", "b=b.iges"},
			want:  []viewer.ModelSource{{Name: "a", URL: "a.step"}, {Name: "b", URL: "b.iges"}},
		},
		{name: "missing equals", flags: []string{"ball"}, wantErr: true},
		{name: "empty name", flags: []string{"=ball.brep"}, wantErr: true},
		{name: "empty url", flags: []string{"ball="}, wantErr: true},
		{name: "name too long", flags: []string{strings.Repeat("x", project.MaxModelNameLength+1) + "=a.brep"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModelFlags(tt.flags)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPageAssetPaths(t *testing.T) {
	p := &project.Project{
		Module:     project.Module{Script: "occt-viewer.js", WASM: "occt-viewer.wasm"},
		Background: "https://example.com/sky.jpg",
		Models: []viewer.ModelSource{
			{Name: "ball", URL: "samples/Ball.brep"},
			{Name: "remote", URL: "https://example.com/gear.step"},
		},
	}
	got := pageAssetPaths(p)
	want := []string{"occt-viewer.js", "occt-viewer.wasm", "samples/Ball.brep"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pageAssetPaths = %v, want %v", got, want)
	}

	p.Module = project.Module{Script: "https://cdn.example.com/occt-viewer.js", WASM: "../shared/occt-viewer.wasm"}
	p.Background = "cubemap.jpg"
	got = pageAssetPaths(p)
	want = []string{"cubemap.jpg", "samples/Ball.brep"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pageAssetPaths with remote module = %v, want %v", got, want)
	}
}

func TestCopyProjectAssetsRemoteModule(t *testing.T) {
	p, err := project.NewWithOptions(filepath.Join(t.TempDir(), "viewer"), "viewer", project.Options{
		Module: project.Module{
			Script: "https://cdn.example.com/occt-viewer.js",
			WASM:   "https://cdn.example.com/occt-viewer.wasm",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	copied, err := copyProjectAssets(p, p.OutputPath())
	if err != nil {
		t.Fatalf("copyProjectAssets with a remote module: %v", err)
	}
	if len(copied) != 0 {
		t.Errorf("nothing local to copy, got %v", copied)
	}
	files, err := readProjectAssets(p)
	if err != nil {
		t.Fatalf("readProjectAssets with a remote module: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("nothing local to bundle, got %d files", len(files))
	}
}

func TestCopyProjectAssetsStaysInOutput(t *testing.T) {
	base := t.TempDir()
	projectDir := filepath.Join(base, "proj")
	shared := filepath.Join(base, "shared")
	if err := os.MkdirAll(shared, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(shared, "m.js"), []byte("js"), 0644); err != nil {
		t.Fatal(err)
	}

	// Built by hand: Validate rejects this script path.
	p := &project.Project{
		Name:   "proj",
		Path:   projectDir,
		Module: project.Module{Factory: project.DefaultFactory, Script: "../shared/m.js"},
	}
	if err := p.Validate(); err == nil {
		t.Error("Validate should reject a module script outside the project")
	}

	copied, err := copyProjectAssets(p, p.OutputPath())
	if err != nil {
		t.Fatalf("copyProjectAssets: %v", err)
	}
	if len(copied) != 0 {
		t.Errorf("copied %v, want nothing", copied)
	}
	if _, err := os.Stat(filepath.Join(projectDir, "shared", "m.js")); !os.IsNotExist(err) {
		t.Errorf("file written outside the output directory (stat err: %v)", err)
	}
}

func TestCopyProjectAssets(t *testing.T) {
	dir := t.TempDir()
	p, err := project.New(filepath.Join(dir, "viewer"), "viewer", []viewer.ModelSource{
		{Name: "ball", URL: "samples/Ball.brep"},
		{Name: "gone", URL: "samples/missing.brep"},
	})
	if err != nil {
		t.Fatal(err)
	}
	p.Module.WASM = project.DefaultWASM

	files := map[string]string{
		project.DefaultScript: "function createOcctViewerModule() {}",
		project.DefaultWASM:   "\x00asm",
		"samples/Ball.brep":   "DBRep_DrawableShape",
	}
	for name, content := range files {
		full := filepath.Join(p.Path, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	copied, err := copyProjectAssets(p, p.OutputPath())
	if err != nil {
		t.Fatalf("copyProjectAssets: %v", err)
	}
	want := []string{project.DefaultScript, project.DefaultWASM, "samples/Ball.brep"}
	if !reflect.DeepEqual(copied, want) {
		t.Errorf("copied %v, want %v", copied, want)
	}
	for name, content := range files {
		got, err := os.ReadFile(filepath.Join(p.OutputPath(), filepath.FromSlash(name)))
		if err != nil {
			t.Errorf("%s not copied: %v", name, err)
			continue
		}
		if string(got) != content {
			t.Errorf("%s: content mismatch", name)
		}
	}
}

func TestCopyProjectAssetsMissingScript(t *testing.T) {
	p, err := project.New(filepath.Join(t.TempDir(), "viewer"), "viewer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := copyProjectAssets(p, p.OutputPath()); err == nil {
		t.Error("expected error when the module script is missing")
	}
}

func TestLoadPageAssets(t *testing.T) {
	dir := t.TempDir()
	wasmPath := filepath.Join(dir, "occtview.wasm")
	execPath := filepath.Join(dir, "wasm_exec.js")
	if err := os.WriteFile(wasmPath, []byte("\x00asm\x01\x00\x00\x00"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(execPath, []byte("globalThis.Go = class {};"), 0644); err != nil {
		t.Fatal(err)
	}

	assets, err := loadPageAssets(wasmPath, execPath)
	if err != nil {
		t.Fatalf("loadPageAssets: %v", err)
	}
	if len(assets.bootstrapWASM) != 8 || assets.wasmExecJS != "globalThis.Go = class {};" {
		t.Errorf("unexpected assets: %d bytes, %q", len(assets.bootstrapWASM), assets.wasmExecJS)
	}

	t.Setenv(envBootstrapWASM, wasmPath)
	t.Setenv(envWASMExec, execPath)
	if _, err := loadPageAssets("", ""); err != nil {
		t.Errorf("loadPageAssets from environment: %v", err)
	}

	t.Setenv(envBootstrapWASM, "")
	if _, err := loadPageAssets("", execPath); err == nil {
		t.Error("expected error without a bootstrap wasm")
	}
	if _, err := loadPageAssets(filepath.Join(dir, "missing.wasm"), execPath); err == nil {
		t.Error("expected error for a missing bootstrap wasm")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "moments"},
		{0.5, "30 minutes"},
		{1, "1 hour"},
		{49, "2 days"},
		{24 * 40, "1 month"},
		{24 * 800, "2 years"},
	}
	for _, tt := range tests {
		d := time.Duration(tt.hours * float64(time.Hour))
		if got := formatDuration(d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", d, got, tt.want)
		}
	}
}

func TestReadProjectAssets(t *testing.T) {
	p, err := project.New(filepath.Join(t.TempDir(), "viewer"), "viewer", []viewer.ModelSource{
		{Name: "ball", URL: "samples/Ball.brep"},
		{Name: "gone", URL: "samples/missing.brep"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := readProjectAssets(p); err == nil {
		t.Fatal("expected error while the module script is missing")
	}

	if err := os.WriteFile(p.ModuleScriptPath(), []byte("js"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(p.Path, "samples"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(p.Path, "samples", "Ball.brep"), []byte("brep"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := readProjectAssets(p)
	if err != nil {
		t.Fatalf("readProjectAssets: %v", err)
	}
	if len(files) != 2 || files[0].Name != project.DefaultScript || files[1].Name != "samples/Ball.brep" {
		t.Errorf("unexpected files: %+v", files)
	}
}
