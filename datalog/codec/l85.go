// Package codec implements L85, a Base85 variant whose alphabet is in ASCII
// order so encoded strings sort like their input bytes.
package codec

import (
	"errors"
	"fmt"
)

// L85Alphabet lists the 85 digits in ascending byte order. It excludes
// space, quotes, '#', '*', '?', '\\', '^' and '|'.
const L85Alphabet = "!$%&()+,-./" +
	"0123456789:;<=>@" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ[]_`" +
	"abcdefghijklmnopqrstuvwxyz{}"

var (
	// l85Decode maps a digit to its value plus one; 0 marks invalid bytes
	l85Decode [256]byte

	// ErrInvalidCharacter indicates an invalid character in input
	ErrInvalidCharacter = errors.New("invalid L85 character")
)

func init() {
	for i, c := range L85Alphabet {
		l85Decode[byte(c)] = byte(i + 1)
	}
}

// IsDigit reports whether c belongs to the alphabet
func IsDigit(c byte) bool {
	return l85Decode[c] != 0
}

// EncodeL85 encodes each 4-byte group as 5 digits. A trailing group of n
// bytes becomes n+1 digits.
func EncodeL85(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	result := make([]byte, 0, len(src)*5/4+5)

	for i := 0; i+4 <= len(src); i += 4 {
		result = appendGroup(result, src[i:i+4], 5)
	}

	if remainder := len(src) % 4; remainder > 0 {
		result = appendGroup(result, src[len(src)-remainder:], remainder+1)
	}

	return string(result)
}

// appendGroup zero-pads group to 4 bytes, converts it to 5 big-endian
// digits and appends the first n of them
func appendGroup(dst, group []byte, n int) []byte {
	var padded [4]byte
	copy(padded[:], group)

	v := uint32(padded[0])<<24 | uint32(padded[1])<<16 |
		uint32(padded[2])<<8 | uint32(padded[3])

	var chars [5]byte
	for j := 4; j >= 0; j-- {
		chars[j] = L85Alphabet[v%85]
		v /= 85
	}
	return append(dst, chars[:n]...)
}

// DecodeL85 decodes L85 format back to bytes
func DecodeL85(src string) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	for i := 0; i < len(src); i++ {
		if !IsDigit(src[i]) {
			return nil, fmt.Errorf("%w at position %d: %q", ErrInvalidCharacter, i, src[i])
		}
	}

	result := make([]byte, 0, len(src)*4/5+4)

	for i := 0; i+5 <= len(src); i += 5 {
		result = appendBytes(result, src[i:i+5], 4)
	}

	if remainder := len(src) % 5; remainder > 0 {
		// 2 digits = 1 byte, 3 = 2, 4 = 3
		if remainder == 1 {
			return nil, errors.New("invalid L85 encoding: incomplete group")
		}

		// The encoder truncated a zero-padded group; padding with the highest
		// digit restores its top remainder-1 bytes
		padded := []byte(src[len(src)-remainder:])
		for len(padded) < 5 {
			padded = append(padded, L85Alphabet[len(L85Alphabet)-1])
		}
		result = appendBytes(result, string(padded), remainder-1)
	}

	return result, nil
}

// appendBytes converts 5 digits to a big-endian uint32 and appends its
// first n bytes
func appendBytes(dst []byte, digits string, n int) []byte {
	v := uint32(0)
	for j := 0; j < 5; j++ {
		v = v*85 + uint32(l85Decode[digits[j]]-1)
	}

	b := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return append(dst, b[:n]...)
}
