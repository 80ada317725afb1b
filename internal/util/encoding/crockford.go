package encoding

import (
	"encoding/base32"
	"strings"
)

const crockfordBase32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ" // Crockford's Base32 alphabet

//nolint:gochecknoglobals
var crockford = base32.NewEncoding(crockfordBase32Alphabet).WithPadding(base32.NoPadding)

// EncodeCrockfordB32LC encodes a byte slice using Crockford's Base32 alphabet and returns
// the result in lowercase, without padding.
func EncodeCrockfordB32LC(input []byte) string {
	return strings.ToLower(crockford.EncodeToString(input))
}

// NormalizeCrockfordB32LC normalizes a Crockford Base32 string by:
// - Removing all whitespace
// - Converting to lowercase
// - Replacing 'O' with '0'
// - Replacing 'I' and 'L' with '1'
// This helps handle common human transcription errors and variations in input.
func NormalizeCrockfordB32LC(input string) string {
	return strings.Map(func(char rune) rune {
		switch char {
		case ' ', '\t', '\n', '\r':
			return -1
		case 'O', 'o':
			return '0'
		case 'I', 'i', 'L', 'l':
			return '1'
		}

		if 'A' <= char && char <= 'Z' {
			return char + ('a' - 'A')
		}

		return char
	}, input)
}

// IsCrockfordB32LC reports whether s is non-empty and consists only of
// lowercase Crockford Base32 digits.
func IsCrockfordB32LC(s string) bool {
	if s == "" {
		return false
	}

	for _, char := range s {
		if 'a' <= char && char <= 'z' {
			char -= 'a' - 'A'
		}

		if !strings.ContainsRune(crockfordBase32Alphabet, char) {
			return false
		}
	}

	return true
}
