package translations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/eljojo/occtview/internal/viewer"
)

func TestAllJSONFilesParseCorrectly(t *testing.T) {
	for _, component := range Components {
		for _, lang := range Languages {
			t.Run(fmt.Sprintf("%s/%s", component, lang), func(t *testing.T) {
				m, err := GetComponentTranslations(component, lang)
				if err != nil {
					t.Fatalf("failed to load %s/%s: %v", component, lang, err)
				}
				if len(m) == 0 {
					t.Errorf("%s/%s has no translation keys", component, lang)
				}
			})
		}
	}
}

func TestAllLanguagesHaveSameKeys(t *testing.T) {
	for _, component := range Components {
		t.Run(component, func(t *testing.T) {
			enKeys, err := GetComponentKeys(component)
			if err != nil {
				t.Fatalf("failed to load English keys for %s: %v", component, err)
			}

			for _, lang := range Languages {
				if lang == "en" {
					continue
				}
				t.Run(lang, func(t *testing.T) {
					m, err := GetComponentTranslations(component, lang)
					if err != nil {
						t.Fatalf("failed to load %s/%s: %v", component, lang, err)
					}

					langKeys := make([]string, 0, len(m))
					for k := range m {
						langKeys = append(langKeys, k)
					}
					sort.Strings(langKeys)

					for _, key := range enKeys {
						if _, ok := m[key]; !ok {
							t.Errorf("%s/%s: missing key %q", component, lang, key)
						}
					}

					enMap := make(map[string]bool)
					for _, k := range enKeys {
						enMap[k] = true
					}
					for _, key := range langKeys {
						if !enMap[key] {
							t.Errorf("%s/%s: extra key %q not present in English", component, lang, key)
						}
					}
				})
			}
		})
	}
}

func TestPlaceholdersMatchEnglish(t *testing.T) {
	for _, component := range Components {
		en, err := GetComponentTranslations(component, "en")
		if err != nil {
			t.Fatal(err)
		}
		for _, lang := range Languages {
			m, err := GetComponentTranslations(component, lang)
			if err != nil {
				t.Fatal(err)
			}
			for key, val := range en {
				for i := 0; i < 3; i++ {
					ph := fmt.Sprintf("{%d}", i)
					if strings.Contains(val, ph) != strings.Contains(m[key], ph) {
						t.Errorf("%s/%s/%s: placeholder %s mismatch", component, lang, key, ph)
					}
				}
			}
		}
	}
}

func TestGetTranslationsJS(t *testing.T) {
	js := GetTranslationsJS("viewer")

	trimmed := strings.TrimSpace(js)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		t.Errorf("GetTranslationsJS(viewer) should be wrapped in braces")
	}

	for _, lang := range Languages {
		if !strings.Contains(js, lang+": {") {
			t.Errorf("GetTranslationsJS(viewer) missing language %s", lang)
		}
	}
	if !strings.Contains(js, `"error_wasm_load": "Could not load the viewer: {0}"`) {
		t.Error("GetTranslationsJS(viewer) missing error_wasm_load entry")
	}
}

func TestGetTranslationsJSUnknownComponent(t *testing.T) {
	js := GetTranslationsJS("nonexistent")
	if js != "{}" {
		t.Errorf("expected {} for unknown component, got: %s", js)
	}
}

func TestTWithParameterSubstitution(t *testing.T) {
	tests := []struct {
		component string
		lang      string
		key       string
		args      []any
		want      string
	}{
		{"viewer", "en", "opening_model", []any{"gear"}, "Opening gear..."},
		{"viewer", "en", "error_timeout", []any{"1m0s"}, "The viewer module did not start within 1m0s."},
		{"viewer", "es", "opening_model", []any{"gear"}, "Abriendo gear..."},
		{"viewer", "en", "ready", nil, "Viewer ready"},
		{"sheet", "en", "context_line", []any{"webgl2", 800, 600}, "Rendered with webgl2 on a 800 x 600 canvas"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%s", tt.component, tt.lang, tt.key), func(t *testing.T) {
			got := T(tt.component, tt.lang, tt.key, tt.args...)
			if got != tt.want {
				t.Errorf("T(%q, %q, %q, %v) = %q, want %q", tt.component, tt.lang, tt.key, tt.args, got, tt.want)
			}
		})
	}
}

func TestTFallsBackToEnglish(t *testing.T) {
	got := T("viewer", "xx", "loading")
	want := "Preparing the viewer..."
	if got != want {
		t.Errorf("T with unknown language should fall back to English: got %q, want %q", got, want)
	}
}

func TestTFallsBackToKey(t *testing.T) {
	got := T("viewer", "en", "nonexistent_key_12345")
	if got != "nonexistent_key_12345" {
		t.Errorf("T with unknown key should return key itself: got %q", got)
	}
}

func TestGetStringSameKeyDifferentComponents(t *testing.T) {
	viewerTitle := GetString("viewer", "en", "title")
	sheetTitle := GetString("sheet", "en", "title")
	if viewerTitle == sheetTitle {
		t.Errorf("same key 'title' should have different values per component, both got %q", viewerTitle)
	}
}

func TestViewerHasExpectedKeys(t *testing.T) {
	expectedKeys := []string{
		"title", "loading", "starting_module", "ready", "opening_model",
		"error_surface_not_found", "error_no_webgl", "error_module_init",
		"error_timeout", "error_startup", "error_wasm_load",
		"action_reload", "noscript",
	}

	keys, err := GetComponentKeys("viewer")
	if err != nil {
		t.Fatalf("failed to get viewer keys: %v", err)
	}

	keyMap := make(map[string]bool)
	for _, k := range keys {
		keyMap[k] = true
	}

	for _, expected := range expectedKeys {
		if !keyMap[expected] {
			t.Errorf("viewer is missing expected key %q", expected)
		}
	}
}

func TestSheetFilename(t *testing.T) {
	if got := SheetFilename("en"); got != "viewer-sheet.pdf" {
		t.Errorf("SheetFilename(en) = %q", got)
	}
	if got := SheetFilename("es"); got != "hoja-del-visor.pdf" {
		t.Errorf("SheetFilename(es) = %q", got)
	}
	if !IsSheetFile("betrachter-blatt.pdf") {
		t.Error("IsSheetFile should accept the German filename")
	}
	if IsSheetFile("viewer.html") {
		t.Error("IsSheetFile should reject viewer.html")
	}
}

func TestDescribeFailure(t *testing.T) {
	tests := []struct {
		name string
		lang string
		err  error
		want string
	}{
		{"surface", "en", fmt.Errorf("%w: %q", viewer.ErrSurfaceNotFound, "x"), `The drawing area "occtViewerCanvas" was not found on this page.`},
		{"webgl", "fr", viewer.ErrNoGraphicsContext, "Ce navigateur ne peut pas créer de contexte de dessin WebGL."},
		{"timeout", "en", fmt.Errorf("%w: %w", viewer.ErrModuleInitTimeout, context.DeadlineExceeded), "The viewer module did not start within 30s."},
		{"startup", "en", viewer.ErrStartupCommand, "A startup command failed: startup command failed"},
		{"other", "en", errors.New("boom"), "The viewer module failed to start: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescribeFailure(tt.lang, tt.err, "", 30*time.Second)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
