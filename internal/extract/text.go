package extract

import (
	"encoding/hex"
	"strings"
)

// CleanText collapses every whitespace run, non-breaking spaces included, to a
// single space and trims both ends. Empty input yields "".
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DecodeEmail reverses the data-cfemail obfuscation: the first hex byte is a
// XOR key applied to every following byte. Malformed input yields "".
func DecodeEmail(encoded string) string {
	raw, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil || len(raw) == 0 {
		return ""
	}
	key := raw[0]
	var b strings.Builder
	for _, c := range raw[1:] {
		b.WriteRune(rune(c ^ key))
	}
	return b.String()
}
