package codec

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL85RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte("a")},
		{"three bytes", []byte("abc")},
		{"full group", []byte("abcd")},
		{"constant", []byte("node_42")},
		{"all zeros", bytes.Repeat([]byte{0x00}, 20)},
		{"all ones", bytes.Repeat([]byte{0xFF}, 20)},
		{"with NUL", []byte{'a', 0x00, 'b'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeL85(tt.input)
			assert.Len(t, encoded, len(tt.input)/4*5+rem(len(tt.input)%4))

			decoded, err := DecodeL85(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.input, decoded)
		})
	}
}

func TestL85PartialGroupKeepsLastByte(t *testing.T) {
	for n := 1; n <= 3; n++ {
		for b := 0; b < 256; b++ {
			input := bytes.Repeat([]byte{0xA5}, n-1)
			input = append(input, byte(b))

			decoded, err := DecodeL85(EncodeL85(input))
			require.NoError(t, err)
			if !bytes.Equal(input, decoded) {
				t.Fatalf("%d-byte group ending in %#x decoded as %x", n, b, decoded)
			}
		}
	}
}

func rem(n int) int {
	if n == 0 {
		return 0
	}
	return n + 1
}

func TestL85PreservesOrder(t *testing.T) {
	inputs := []string{
		"a", "b", "c", "aa", "ab", "ba", "bb",
		"alice", "bob", "charlie", "diana", "eve",
		"test1", "test2", "test10", "test20",
	}

	byInput := append([]string(nil), inputs...)
	sort.Strings(byInput)

	byEncoded := append([]string(nil), inputs...)
	sort.Slice(byEncoded, func(i, j int) bool {
		return EncodeL85([]byte(byEncoded[i])) < EncodeL85([]byte(byEncoded[j]))
	})

	assert.Equal(t, byInput, byEncoded)
}

func TestL85Alphabet(t *testing.T) {
	require.Len(t, L85Alphabet, 85)

	sorted := []byte(L85Alphabet)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	assert.Equal(t, L85Alphabet, string(sorted))

	assert.False(t, IsDigit(' '))
	assert.True(t, IsDigit('!'))
}

func TestL85DecodeErrors(t *testing.T) {
	_, err := DecodeL85("ab cd")
	assert.ErrorIs(t, err, ErrInvalidCharacter)

	_, err = DecodeL85("abcdef")
	assert.Error(t, err, "single trailing digit")
}
