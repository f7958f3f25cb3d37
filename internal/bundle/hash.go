package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// HashString returns the SHA-256 hash of a string, prefixed with "sha256:".
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashBytes returns the SHA-256 hash of bytes, prefixed with "sha256:".
func HashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(h[:])
}

// SanitizeFilename turns a project name into a portable file name stem:
// lowercase ASCII letters and digits separated by single hyphens.
func SanitizeFilename(name string) string {
	// NFD decompose: split characters like "é" into "e" + combining accent,
	// then drop combining marks to keep only the base letter.
	var stripped []rune
	for _, r := range norm.NFD.String(name) {
		if !unicode.Is(unicode.Mn, r) {
			stripped = append(stripped, r)
		}
	}

	var b strings.Builder
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' || r == '.' {
			b.WriteRune('-')
		}
	}

	result := strings.ToLower(b.String())
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")
	if result == "" {
		return "viewer"
	}
	return result
}
