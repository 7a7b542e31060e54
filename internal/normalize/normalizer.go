// Package normalize cleans extracted document text and computes the content
// hash used for idempotent-update detection.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	spaceRegex   = regexp.MustCompile(`[ \t]+`)
	newlineRegex = regexp.MustCompile(`\n{3,}`)
)

// Clean collapses runs of spaces and tabs to single spaces, collapses runs of
// blank lines to a single paragraph break, and trims leading/trailing
// whitespace.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRegex.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = newlineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Hash returns the hex-encoded SHA-256 digest of the given text. Identical
// cleaned text always produces identical hashes; this is the sole idempotence
// mechanism for detecting "no real change" between scrapes.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
