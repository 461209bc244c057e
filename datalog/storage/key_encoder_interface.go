package storage

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// KeyEncoder builds and parses snapshot keys from facts
type KeyEncoder interface {
	// EncodeKey creates a fact key
	EncodeKey(f datalog.Fact) []byte

	// DecodeKey rebuilds the fact from a key produced by EncodeKey
	DecodeKey(key []byte) (datalog.Fact, error)

	// EncodePrefix creates the key prefix shared by all facts of predicate
	EncodePrefix(predicate string) []byte

	// EncodePrefixRange creates start and end keys for a predicate scan
	EncodePrefixRange(predicate string) (start, end []byte)
}

// KeyEncodingStrategy represents different encoding strategies
type KeyEncodingStrategy int

const (
	// BinaryStrategy length-prefixes every component
	BinaryStrategy KeyEncodingStrategy = iota

	// TextStrategy separates components with NUL so keys stay readable in
	// raw dumps. Constants produced by the parser never contain NUL.
	TextStrategy

	// L85Strategy keeps keys printable and accepts any constant bytes
	L85Strategy
)

// NewKeyEncoder creates a key encoder with the specified strategy
func NewKeyEncoder(strategy KeyEncodingStrategy) KeyEncoder {
	switch strategy {
	case TextStrategy:
		return &TextKeyEncoder{}
	case L85Strategy:
		return &L85KeyEncoder{}
	default:
		return &BinaryKeyEncoder{}
	}
}

// ParseKeyEncoding accepts "binary", "text" or "l85". Empty means binary.
func ParseKeyEncoding(s string) (KeyEncodingStrategy, error) {
	switch strings.ToLower(s) {
	case "", "binary":
		return BinaryStrategy, nil
	case "text":
		return TextStrategy, nil
	case "l85":
		return L85Strategy, nil
	default:
		return 0, fmt.Errorf("unknown key encoding %q (want binary, text or l85)", s)
	}
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)

	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	// All bytes are 0xFF: no upper bound
	return nil
}
