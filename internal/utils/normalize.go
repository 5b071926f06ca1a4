package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail trims and lowercases an address. It returns "" for input
// that would otherwise have to be rewritten to look valid: inner whitespace,
// characters that change under NFKC (fullwidth forms, ligatures), or anything
// without exactly one "@" with text on both sides, the same shape check the
// Admin SDK applies before calling the API.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return ""
	}
	if !norm.NFKC.IsNormalString(s) {
		return ""
	}
	s = strings.ToLower(s)
	parts := strings.Split(s, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return s
}
