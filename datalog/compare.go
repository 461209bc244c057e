package datalog

import (
	"strings"
)

// CompareConstants compares two constants by their spelling and returns:
//
//	-1 if left < right
//	 0 if left == right
//	 1 if left > right
//
// Constants carry no numeric meaning, so "10" sorts before "9".
func CompareConstants(left, right Constant) int {
	return strings.Compare(string(left), string(right))
}

// CompareTuples imposes a total order on tuples: shorter tuples first, then
// element-wise by CompareConstants. Storage and output rely on this order
// being stable.
func CompareTuples(left, right Tuple) int {
	if len(left) != len(right) {
		if len(left) < len(right) {
			return -1
		}
		return 1
	}
	for i := range left {
		if c := CompareConstants(left[i], right[i]); c != 0 {
			return c
		}
	}
	return 0
}

// TupleLess is CompareTuples expressed as a strict weak ordering
func TupleLess(left, right Tuple) bool {
	return CompareTuples(left, right) < 0
}

// CompareFacts orders facts by predicate name and then by tuple
func CompareFacts(left, right Fact) int {
	if c := strings.Compare(left.Predicate, right.Predicate); c != 0 {
		return c
	}
	return CompareTuples(left.Args, right.Args)
}
