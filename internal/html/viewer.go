package html

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/eljojo/occtview/internal/project"
	"github.com/eljojo/occtview/internal/translations"
)

// ViewerPage holds everything needed to render a self-contained viewer page.
type ViewerPage struct {
	Boot            project.BootConfig
	BootstrapWASM   []byte // js/wasm build of the bootstrap
	WASMExecJS      string // wasm_exec.js matching the Go version that built BootstrapWASM
	ModuleScriptURL string // Emscripten glue script, relative to the page or absolute
	UnsafeEval      bool   // module needs eval, e.g. embind with dynamic execution
	Version         string
}

// GenerateViewerHTML creates the viewer page with the bootstrap binary,
// styles and loader embedded. The module glue script is referenced by URL
// so its companion .wasm resolves next to it.
func GenerateViewerHTML(page ViewerPage) (string, error) {
	if len(page.BootstrapWASM) == 0 {
		return "", errors.New("bootstrap wasm is empty")
	}
	if strings.TrimSpace(page.WASMExecJS) == "" {
		return "", errors.New("wasm_exec.js is empty")
	}
	if page.ModuleScriptURL == "" {
		return "", errors.New("module script url is required")
	}

	boot, err := page.Boot.JSON()
	if err != nil {
		return "", err
	}
	lang := page.Boot.Language
	if lang == "" {
		lang = "en"
	}
	title := page.Boot.Title
	if title == "" {
		title = translations.T("viewer", lang, "title")
	}

	html := viewerHTMLTemplate

	html = strings.Replace(html, "{{LANG}}", stdhtml.EscapeString(lang), 1)
	html = strings.Replace(html, "{{TITLE}}", stdhtml.EscapeString(title), 1)
	html = strings.Replace(html, "{{VERSION}}", stdhtml.EscapeString(page.Version), 1)
	html = strings.Replace(html, "{{CANVAS_ID}}", stdhtml.EscapeString(page.Boot.CanvasID), 1)
	html = strings.Replace(html, "{{STATUS_ID}}", stdhtml.EscapeString(page.Boot.StatusID), 1)
	html = strings.Replace(html, "{{LOADING_TEXT}}", stdhtml.EscapeString(translations.T("viewer", lang, "loading")), 1)
	html = strings.Replace(html, "{{NOSCRIPT_TEXT}}", stdhtml.EscapeString(translations.T("viewer", lang, "noscript")), 1)
	html = strings.Replace(html, "{{MODULE_SCRIPT_URL}}", stdhtml.EscapeString(page.ModuleScriptURL), 1)

	// Embed styles
	html = strings.Replace(html, "{{STYLES}}", stylesCSS, 1)

	// json.Marshal escapes <, > and &, so the config cannot close the script tag.
	html = strings.Replace(html, "{{BOOT_CONFIG}}", boot, 1)

	// Embed translations
	html = strings.Replace(html, "{{TRANSLATIONS}}", translations.GetTranslationsJS("viewer"), 1)

	// Embed wasm_exec.js and the loader
	html = strings.Replace(html, "{{WASM_EXEC}}", page.WASMExecJS, 1)
	html = strings.Replace(html, "{{LOADER_JS}}", loaderJS, 1)

	// Embed WASM as gzip-compressed base64 (reduces size by ~70%)
	html = strings.Replace(html, "{{WASM_BASE64}}", compressAndEncode(page.BootstrapWASM), 1)

	// One nonce per page, shared by the policy and every inline tag
	nonce := generateCSPNonce()
	html = strings.Replace(html, "{{CSP}}", attrEscaper.Replace(contentSecurityPolicy(page, nonce)), 1)
	html = applyCSPNonce(html, nonce)

	return html, nil
}

// attrEscaper escapes a double-quoted attribute value and leaves the CSP
// keyword quotes readable.
var attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")

// EmbeddedSize reports how large the bootstrap binary becomes once embedded.
func EmbeddedSize(wasmBytes []byte) int {
	return len(compressAndEncode(wasmBytes))
}

// compressAndEncode gzip-compresses data and returns base64-encoded result.
func compressAndEncode(data []byte) string {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		panic("gzip.NewWriterLevel: " + err.Error())
	}
	if _, err := gz.Write(data); err != nil {
		panic("gzip.Write: " + err.Error())
	}
	if err := gz.Close(); err != nil {
		panic("gzip.Close: " + err.Error())
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// decodeEmbedded reverses compressAndEncode.
func decodeEmbedded(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer gz.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(gz); err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return out.Bytes(), nil
}

// ExtractBootstrapWASM returns the bootstrap binary embedded in a generated
// viewer page.
func ExtractBootstrapWASM(page string) ([]byte, error) {
	const open = `<script id="occtview-wasm" type="application/octet-stream">`
	start := strings.Index(page, open)
	if start < 0 {
		return nil, errors.New("no embedded bootstrap found")
	}
	rest := page[start+len(open):]
	end := strings.Index(rest, "</script>")
	if end < 0 {
		return nil, errors.New("unterminated bootstrap script")
	}
	return decodeEmbedded(strings.TrimSpace(rest[:end]))
}
