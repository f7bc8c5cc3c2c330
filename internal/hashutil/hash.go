// Package hashutil normalizes and hashes source text to stable digests.
//
// Normalization (spec §4.A) makes hashes invariant to blank lines,
// indentation, trailing whitespace and the width of whitespace runs inside
// a line: split on line terminators, trim each line, drop empty lines,
// collapse interior whitespace runs to a single space, rejoin with "\n".
// Line breaks between non-empty lines and comment text are kept, so
// reflowing code across lines or editing a comment changes the digest.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var interiorWhitespace = regexp.MustCompile(`[ \t]+`)

// Normalize applies the whitespace-invariance rules of spec §4.A.
func Normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, interiorWhitespace.ReplaceAllString(trimmed, " "))
	}
	return strings.Join(out, "\n")
}

// Hash returns the 64-hex SHA-256 digest of the normalized text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// HashParts concatenates the normalized parts with "\n" and hashes the
// result. Hash normalizes the joined text again, so an empty part leaves
// only an empty line that is dropped: HashParts("", sig, body) equals
// HashParts(sig, body), and the boundaries between parts are not recorded.
func HashParts(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = Normalize(p)
	}
	return Hash(strings.Join(normalized, "\n"))
}

// SemanticHash returns a 16-hex non-cryptographic digest of the normalized
// text, used for per-symbol stability checks where collision resistance is
// not required (spec §4.A).
func SemanticHash(text string) string {
	h := xxhash.Sum64([]byte(Normalize(text)))
	return hex.EncodeToString([]byte{
		byte(h >> 56), byte(h >> 48), byte(h >> 40), byte(h >> 32),
		byte(h >> 24), byte(h >> 16), byte(h >> 8), byte(h),
	})
}
