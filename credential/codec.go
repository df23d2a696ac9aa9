// Package credential decodes Basic authorization headers into (email,
// password) pairs. Every function collapses malformed input to a false ok,
// never an error: callers must not be able to distinguish a missing header
// from a corrupt one.
package credential

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

const basicPrefix = "Basic "

// ExtractEncoded returns the base64 payload of a Basic authorization header.
// No decoding is performed here.
func ExtractEncoded(header string) (string, bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return "", false
	}
	return header[len(basicPrefix):], true
}

// Decode base64-decodes encoded and returns it as UTF-8 text. Malformed
// base64 and invalid UTF-8 both report false; the empty payload decodes to
// the empty string.
func Decode(encoded string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// SplitCredentials splits decoded text into email and password on the FIRST
// colon only, so the password may itself contain colons.
func SplitCredentials(decoded string) (email, pwd string, ok bool) {
	email, pwd, ok = strings.Cut(decoded, ":")
	if !ok {
		return "", "", false
	}
	return email, pwd, true
}
