package datalog

import (
	"sort"
	"strings"
)

// Substitution binds variables to constants. A variable is bound at most
// once; Extend refuses to rebind it to a different constant.
type Substitution map[Variable]Constant

// Lookup returns the binding of v
func (s Substitution) Lookup(v Variable) (Constant, bool) {
	c, ok := s[v]
	return c, ok
}

// Extend returns a substitution that additionally binds v to c. The receiver
// is left untouched. If v is already bound to c the receiver itself is
// returned; if it is bound to something else the extension fails.
func (s Substitution) Extend(v Variable, c Constant) (Substitution, bool) {
	if existing, ok := s[v]; ok {
		return s, existing == c
	}
	next := make(Substitution, len(s)+1)
	for k, val := range s {
		next[k] = val
	}
	next[v] = c
	return next, true
}

// Clone returns an independent copy
func (s Substitution) Clone() Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both substitutions bind the same variables to the
// same constants
func (s Substitution) Equal(other Substitution) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the bindings sorted by variable name: {X=a, Y=b}
func (s Substitution) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(string(s[Variable(k)]))
	}
	sb.WriteByte('}')
	return sb.String()
}
