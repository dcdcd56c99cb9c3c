// Package codepage handles the Windows-1252 string encoding used throughout
// the TES3, TES4-family, and FO4 archive formats for file and directory names.
package codepage

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Encode converts a Go (UTF-8) string into its Windows-1252 byte
// representation. It returns an error if any rune has no Windows-1252
// mapping or is NUL.
func Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r == 0 {
			return nil, fmt.Errorf("codepage: rune at position %d is NUL", len(out))
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("codepage: rune %q has no Windows-1252 encoding", r)
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode converts a Windows-1252 byte slice into a Go (UTF-8) string.
func Decode(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = charmap.Windows1252.DecodeByte(c)
	}
	return string(runes)
}

// foldByte applies the upper->lower offsets for the Windows-1252 code points
// that fall outside the ASCII range but still have a case pair: Š/š (0x8A),
// Œ/œ (0x8C), Ž/ž (0x8E), and the Latin-1 block 0xC0-0xDE excluding the
// multiplication sign at 0xD7.
func foldByte(c byte) byte {
	switch {
	case c >= 'A' && c <= 'Z':
		return c + 0x20
	case c == 0x8A, c == 0x8C, c == 0x8E:
		return c + 0x10
	case c >= 0xC0 && c <= 0xDE && c != 0xD7:
		return c + 0x20
	default:
		return c
	}
}

// FoldLower lowercase-folds a Windows-1252 byte slice, returning a new
// slice and leaving b unmodified. Folding follows Windows-1252 casing rules rather
// than ASCII-only casing, matching the archive formats' hashing and
// comparison behavior.
func FoldLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = foldByte(c)
	}
	return out
}

// EqualFold reports whether a and b are equal under Windows-1252
// lowercase-folding.
func EqualFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}
