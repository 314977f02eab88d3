// Package util holds small text helpers shared by the loader and the
// synthesis pipeline.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var multiSpace = regexp.MustCompile(` +`)

// NormalizeText canonicalizes transcript text fetched from the data lake:
// Unicode NFC, BOM and zero-width format characters stripped, runs of
// spaces collapsed, line breaks normalized to \n.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimPrefix(s, "\ufeff")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Cf, r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
