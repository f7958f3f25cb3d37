// Package translations holds the localized strings of the viewer page and
// the snapshot sheet. Each component has one JSON file per language; English
// is the reference and the fallback.
package translations

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed viewer/*.json sheet/*.json
var files embed.FS

// Languages lists all supported language codes.
var Languages = []string{"en", "es", "de", "fr"}

// Components lists the translated components.
var Components = []string{"viewer", "sheet"}

// catalog maps lang -> key -> text for one component.
type catalog map[string]map[string]string

var (
	cacheMu sync.Mutex
	cache   = make(map[string]catalog)
)

func knownComponent(component string) bool {
	for _, c := range Components {
		if c == component {
			return true
		}
	}
	return false
}

func readLang(component, lang string) (map[string]string, error) {
	if !knownComponent(component) {
		return nil, fmt.Errorf("unknown component: %s", component)
	}
	data, err := files.ReadFile(component + "/" + lang + ".json")
	if err != nil {
		return nil, fmt.Errorf("language %s not found for component %s", lang, component)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON for %s/%s: %w", component, lang, err)
	}
	return m, nil
}

// load returns the component's catalog, reading it on first use. Broken
// language files are skipped here and caught by the package tests.
func load(component string) catalog {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if c, ok := cache[component]; ok {
		return c
	}
	c := make(catalog)
	for _, lang := range Languages {
		if m, err := readLang(component, lang); err == nil {
			c[lang] = m
		}
	}
	cache[component] = c
	return c
}

// GetTranslationsJS renders the component's catalog as a JavaScript object
// literal for the page: { en: {...}, es: {...}, ... } with sorted keys.
func GetTranslationsJS(component string) string {
	c := load(component)
	if len(c) == 0 {
		return "{}"
	}

	var parts []string
	for _, lang := range Languages {
		m, ok := c[lang]
		if !ok {
			continue
		}
		var entries []string
		for _, k := range sortedKeys(m) {
			keyJSON, _ := json.Marshal(k)
			valJSON, _ := json.Marshal(m[k])
			entries = append(entries, fmt.Sprintf("        %s: %s", keyJSON, valJSON))
		}
		parts = append(parts, fmt.Sprintf("      %s: {\n%s\n      }", lang, strings.Join(entries, ",\n")))
	}

	return "{\n" + strings.Join(parts, ",\n\n") + "\n    }"
}

// T returns the translated text with {0}, {1}, ... replaced by args.
func T(component, lang, key string, args ...any) string {
	text := GetString(component, lang, key)
	for i, arg := range args {
		text = strings.Replace(text, fmt.Sprintf("{%d}", i), fmt.Sprint(arg), 1)
	}
	return text
}

// GetString returns the raw text for key in lang, falling back to English
// and then to the key itself.
func GetString(component, lang, key string) string {
	c := load(component)
	if val, ok := c[lang][key]; ok {
		return val
	}
	if val, ok := c["en"][key]; ok {
		return val
	}
	return key
}

// GetComponentTranslations returns the translations map for a specific component and language.
func GetComponentTranslations(component, lang string) (map[string]string, error) {
	return readLang(component, lang)
}

// GetComponentKeys returns all translation keys for a component, using English as reference.
func GetComponentKeys(component string) ([]string, error) {
	m, err := readLang(component, "en")
	if err != nil {
		return nil, err
	}
	return sortedKeys(m), nil
}

// SheetFilename returns the translated snapshot sheet filename for a language.
// e.g. SheetFilename("es") returns "hoja-del-visor.pdf"
func SheetFilename(lang string) string {
	return GetString("sheet", lang, "sheet_filename") + ".pdf"
}

// IsSheetFile checks whether a filename matches any translated sheet filename.
func IsSheetFile(filename string) bool {
	for _, lang := range Languages {
		if filename == SheetFilename(lang) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
