package storage

import (
	"bytes"
	"fmt"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/codec"
)

// L85KeyEncoder implements KeyEncoder with printable keys: every component
// is L85-encoded and components are separated by a space, which sorts below
// every L85 digit.
//
//	ns | L85(pred) SP | L85(arg0) SP L85(arg1) ...
//
// Unlike TextKeyEncoder, constants may contain any byte.
type L85KeyEncoder struct{}

const l85Separator = ' '

// EncodeKey creates an L85 fact key
func (e *L85KeyEncoder) EncodeKey(f datalog.Fact) []byte {
	key := e.EncodePrefix(f.Predicate)
	for i, arg := range f.Args {
		if i > 0 {
			key = append(key, l85Separator)
		}
		key = append(key, codec.EncodeL85([]byte(arg))...)
	}
	return key
}

// DecodeKey extracts the fact from an L85 key
func (e *L85KeyEncoder) DecodeKey(key []byte) (datalog.Fact, error) {
	if len(key) < 2 {
		return datalog.Fact{}, fmt.Errorf("key too short")
	}
	if KeyNamespace(key[0]) != FactNamespace {
		return datalog.Fact{}, fmt.Errorf("not a fact key: namespace %d", key[0])
	}

	encPred, rest, found := bytes.Cut(key[1:], []byte{l85Separator})
	if !found {
		return datalog.Fact{}, fmt.Errorf("missing predicate separator")
	}

	pred, err := codec.DecodeL85(string(encPred))
	if err != nil {
		return datalog.Fact{}, fmt.Errorf("bad predicate: %w", err)
	}

	fact := datalog.Fact{Predicate: datalog.InternSymbol(string(pred)), Args: datalog.Tuple{}}
	// Empty rest is arity 0, as in TextKeyEncoder
	if len(rest) == 0 {
		return fact, nil
	}
	for i, enc := range bytes.Split(rest, []byte{l85Separator}) {
		arg, err := codec.DecodeL85(string(enc))
		if err != nil {
			return datalog.Fact{}, fmt.Errorf("bad argument %d of %s: %w", i, pred, err)
		}
		fact.Args = append(fact.Args, datalog.InternConstant(string(arg)))
	}
	return fact, nil
}

// EncodePrefix creates the L85 prefix for a predicate
func (e *L85KeyEncoder) EncodePrefix(predicate string) []byte {
	return concatBytes(
		[]byte{byte(FactNamespace)},
		[]byte(codec.EncodeL85([]byte(predicate))),
		[]byte{l85Separator},
	)
}

// EncodePrefixRange creates start and end keys for a predicate scan
func (e *L85KeyEncoder) EncodePrefixRange(predicate string) (start, end []byte) {
	start = e.EncodePrefix(predicate)
	return start, prefixEnd(start)
}
