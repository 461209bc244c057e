package storage

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// BinaryKeyEncoder implements KeyEncoder with uvarint length prefixes:
//
//	ns | len(pred) pred | len(arg0) arg0 | len(arg1) arg1 ...
type BinaryKeyEncoder struct{}

// EncodeKey creates a binary fact key
func (e *BinaryKeyEncoder) EncodeKey(f datalog.Fact) []byte {
	key := e.EncodePrefix(f.Predicate)
	for _, arg := range f.Args {
		key = appendComponent(key, string(arg))
	}
	return key
}

// DecodeKey extracts the fact from a binary key
func (e *BinaryKeyEncoder) DecodeKey(key []byte) (datalog.Fact, error) {
	if len(key) < 1 {
		return datalog.Fact{}, fmt.Errorf("key too short")
	}
	if KeyNamespace(key[0]) != FactNamespace {
		return datalog.Fact{}, fmt.Errorf("not a fact key: namespace %d", key[0])
	}
	key = key[1:]

	pred, key, err := readComponent(key)
	if err != nil {
		return datalog.Fact{}, fmt.Errorf("bad predicate: %w", err)
	}

	fact := datalog.Fact{Predicate: datalog.InternSymbol(pred), Args: datalog.Tuple{}}
	for len(key) > 0 {
		var arg string
		arg, key, err = readComponent(key)
		if err != nil {
			return datalog.Fact{}, fmt.Errorf("bad argument %d of %s: %w", len(fact.Args), pred, err)
		}
		fact.Args = append(fact.Args, datalog.InternConstant(arg))
	}
	return fact, nil
}

// EncodePrefix creates the binary prefix for a predicate
func (e *BinaryKeyEncoder) EncodePrefix(predicate string) []byte {
	return appendComponent([]byte{byte(FactNamespace)}, predicate)
}

// EncodePrefixRange creates start and end keys for a predicate scan
func (e *BinaryKeyEncoder) EncodePrefixRange(predicate string) (start, end []byte) {
	start = e.EncodePrefix(predicate)
	return start, prefixEnd(start)
}

func appendComponent(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

func readComponent(b []byte) (string, []byte, error) {
	n, size := binary.Uvarint(b)
	if size <= 0 {
		return "", nil, fmt.Errorf("invalid length prefix")
	}
	b = b[size:]
	if uint64(len(b)) < n {
		return "", nil, fmt.Errorf("component truncated: want %d bytes, have %d", n, len(b))
	}
	return string(b[:n]), b[n:], nil
}

// TextKeyEncoder implements KeyEncoder with NUL separators:
//
//	ns | pred NUL arg0 NUL arg1 ...
type TextKeyEncoder struct{}

const textSeparator = 0x00

// EncodeKey creates a text fact key
func (e *TextKeyEncoder) EncodeKey(f datalog.Fact) []byte {
	key := e.EncodePrefix(f.Predicate)
	for i, arg := range f.Args {
		if i > 0 {
			key = append(key, textSeparator)
		}
		key = append(key, arg...)
	}
	return key
}

// DecodeKey extracts the fact from a text key
func (e *TextKeyEncoder) DecodeKey(key []byte) (datalog.Fact, error) {
	if len(key) < 2 {
		return datalog.Fact{}, fmt.Errorf("key too short")
	}
	if KeyNamespace(key[0]) != FactNamespace {
		return datalog.Fact{}, fmt.Errorf("not a fact key: namespace %d", key[0])
	}

	pred, rest, found := strings.Cut(string(key[1:]), string(rune(textSeparator)))
	if !found {
		return datalog.Fact{}, fmt.Errorf("missing predicate separator")
	}

	fact := datalog.Fact{Predicate: datalog.InternSymbol(pred), Args: datalog.Tuple{}}
	// rest is "" both for arity 0 and for a single empty constant; the
	// parser cannot produce empty constants, so treat it as arity 0
	if rest == "" {
		return fact, nil
	}
	for _, arg := range strings.Split(rest, string(rune(textSeparator))) {
		fact.Args = append(fact.Args, datalog.InternConstant(arg))
	}
	return fact, nil
}

// EncodePrefix creates the text prefix for a predicate
func (e *TextKeyEncoder) EncodePrefix(predicate string) []byte {
	key := make([]byte, 0, len(predicate)+2)
	key = append(key, byte(FactNamespace))
	key = append(key, predicate...)
	return append(key, textSeparator)
}

// EncodePrefixRange creates start and end keys for a predicate scan
func (e *TextKeyEncoder) EncodePrefixRange(predicate string) (start, end []byte) {
	start = e.EncodePrefix(predicate)
	return start, prefixEnd(start)
}
