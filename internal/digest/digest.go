// Package digest builds the human-readable identifiers used for entries
// and cached completions.
//
// An identifier is the text itself when it is short and single-line, or a
// whitespace-collapsed 80 character prefix followed by an MD5 hash of the
// full text otherwise. Optional parameters are appended in parentheses.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	maxDigestLen = 80
	headLen      = 160
)

// MD5Hex hashes s after lowercasing it and removing spaces and line breaks.
func MD5Hex(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "", "\n", "", "\r", "").Replace(s)
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Shorten returns the display form of text and whether it was shortened.
// Lengths are counted in characters, not bytes.
func Shorten(text string) (string, bool) {
	if !strings.Contains(text, "\n") && utf8.RuneCountInString(text) <= maxDigestLen {
		return text, false
	}
	head := strings.Join(strings.Fields(truncate(text, headLen)), " ")
	return strings.TrimSpace(truncate(head, maxDigestLen)), true
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Digest returns "text (p1, p2)" or "text (p1, p2, md5)".
//
// Empty parameters are dropped. The hash covers the full text followed by
// the concatenated hash params and is added when the text was shortened or
// hash params are present.
func Digest(text string, textParams, hashParams []string) string {
	short, truncated := Shorten(text)

	params := nonEmpty(textParams)
	hashInput := strings.Join(nonEmpty(hashParams), "")

	if truncated || hashInput != "" {
		params = append(params, MD5Hex(text+hashInput))
	}
	if len(params) == 0 {
		return short
	}
	return short + " (" + strings.Join(params, ", ") + ")"
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in)+1)
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeEOL converts \r\r\n and \r\n line endings to \n.
func NormalizeEOL(s string) string {
	s = strings.ReplaceAll(s, "\r\r\n", "\n")
	return strings.ReplaceAll(s, "\r\n", "\n")
}
