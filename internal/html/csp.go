package html

import (
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// generateCSPNonce returns a base64-encoded 16-byte random nonce for CSP script-src.
func generateCSPNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.StdEncoding.EncodeToString(b)
}

// applyCSPNonce replaces all {{CSP_NONCE}} placeholders with nonce.
func applyCSPNonce(html, nonce string) string {
	return strings.ReplaceAll(html, "{{CSP_NONCE}}", nonce)
}

// contentSecurityPolicy builds the policy for a viewer page. Inline scripts
// and styles run by nonce and WebAssembly compiles under 'wasm-unsafe-eval'.
// 'unsafe-eval' is added only when the page asks for it. Fetches may only
// reach the page origin plus the origins the page itself names.
func contentSecurityPolicy(page ViewerPage, nonce string) string {
	script := "script-src 'self' 'nonce-" + nonce + "' 'wasm-unsafe-eval'"
	if page.UnsafeEval {
		script += " 'unsafe-eval'"
	}
	scriptOrigins := newOriginSet(page.ModuleScriptURL)

	connect := newOriginSet(page.ModuleScriptURL, page.Boot.DiagnosticsURL, page.Boot.Startup.Background)
	for _, m := range page.Boot.Startup.Models {
		connect.add(m.URL)
	}
	images := newOriginSet(page.Boot.Startup.Background)

	directives := []string{
		"default-src 'self'",
		join(script, scriptOrigins),
		join("connect-src 'self' data: blob:", connect),
		join("img-src 'self' data: blob:", images),
		"style-src 'self' 'nonce-" + nonce + "'",
	}
	return strings.Join(directives, "; ")
}

// originSet collects scheme://host origins of absolute URLs.
type originSet map[string]bool

func newOriginSet(urls ...string) originSet {
	s := make(originSet)
	for _, u := range urls {
		s.add(u)
	}
	return s
}

func (s originSet) add(raw string) {
	if o := originOf(raw); o != "" {
		s[o] = true
	}
}

// originOf returns the origin of an absolute http(s) or ws(s) URL, or "" for
// relative URLs and other schemes.
func originOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return u.Scheme + "://" + u.Host
	default:
		return ""
	}
}

func join(directive string, origins originSet) string {
	if len(origins) == 0 {
		return directive
	}
	list := make([]string, 0, len(origins))
	for o := range origins {
		list = append(list, o)
	}
	sort.Strings(list)
	return directive + " " + strings.Join(list, " ")
}
