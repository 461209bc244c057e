package executor

import (
	"errors"
	"fmt"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// ErrInternal marks conditions that safety checking rules out. Seeing it
// means a bug, not bad input.
var ErrInternal = errors.New("internal evaluation error")

// Lookup resolves a predicate to its tuples. A nil relation means the
// predicate is unknown and matches nothing. *storage.Database satisfies it.
type Lookup interface {
	Relation(predicate string) *storage.Relation
}

// JoinStats counts join work. A candidate is one (substitution, tuple) pair
// considered for extension.
//
// A JoinStats is not safe for concurrent use; parallel rule evaluation gives
// every rule its own.
type JoinStats struct {
	Candidates int64
}

// Join evaluates a rule body against lookup and returns every substitution
// that satisfies all atoms.
func Join(body []datalog.Atom, lookup Lookup) []datalog.Substitution {
	var stats JoinStats
	return stats.Join(body, lookup)
}

// JoinDelta is Join with the atom at deltaPos read from delta, atoms before it
// read from old and atoms after it read from full. old must be full minus
// delta. Running it for every deltaPos finds each substitution that uses a
// delta fact exactly once, at the position of its first delta fact.
func JoinDelta(body []datalog.Atom, deltaPos int, old, delta, full Lookup) []datalog.Substitution {
	var stats JoinStats
	return stats.JoinDelta(body, deltaPos, old, delta, full)
}

// Join is the counting form of the package-level Join
func (s *JoinStats) Join(body []datalog.Atom, lookup Lookup) []datalog.Substitution {
	sources := make([]Lookup, len(body))
	for i := range sources {
		sources[i] = lookup
	}
	return s.fold(body, sources)
}

// JoinDelta is the counting form of the package-level JoinDelta. The delta
// atom is joined first; the resulting substitution set does not depend on
// atom order, and the delta is usually the smallest input.
func (s *JoinStats) JoinDelta(body []datalog.Atom, deltaPos int, old, delta, full Lookup) []datalog.Substitution {
	atoms := make([]datalog.Atom, 0, len(body))
	sources := make([]Lookup, 0, len(body))

	atoms = append(atoms, body[deltaPos])
	sources = append(sources, delta)
	for i, atom := range body {
		if i == deltaPos {
			continue
		}
		atoms = append(atoms, atom)
		if i < deltaPos {
			sources = append(sources, old)
		} else {
			sources = append(sources, full)
		}
	}
	return s.fold(atoms, sources)
}

// fold extends the candidate set one atom at a time. Reaching an atom with
// no surviving candidates ends the join.
func (s *JoinStats) fold(atoms []datalog.Atom, sources []Lookup) []datalog.Substitution {
	current := []datalog.Substitution{{}}

	for i, atom := range atoms {
		rel := sources[i].Relation(atom.Predicate)
		if rel.IsEmpty() {
			return nil
		}

		var next []datalog.Substitution
		for _, subst := range current {
			rel.Ascend(func(t datalog.Tuple) bool {
				s.Candidates++
				if extended, ok := unify(atom, subst, t); ok {
					next = append(next, extended)
				}
				return true
			})
		}

		if len(next) == 0 {
			return nil
		}
		current = next
	}

	return current
}

// unify matches one tuple against an atom under subst. The input
// substitution is never modified; it is returned as is when the tuple binds
// nothing new.
func unify(atom datalog.Atom, subst datalog.Substitution, t datalog.Tuple) (datalog.Substitution, bool) {
	// Arity mismatch never matches
	if len(t) != len(atom.Terms) {
		return nil, false
	}

	var out datalog.Substitution
	for i, term := range atom.Terms {
		c := t[i]
		if term.IsConstant() {
			if term.Constant() != c {
				return nil, false
			}
			continue
		}

		v := term.Variable()
		bindings := subst
		if out != nil {
			bindings = out
		}
		if bound, ok := bindings[v]; ok {
			if bound != c {
				return nil, false
			}
			continue
		}

		if out == nil {
			out = subst.Clone()
		}
		out[v] = c
	}

	if out == nil {
		return subst, true
	}
	return out, true
}

// Project instantiates head under subst. An unbound head variable cannot
// happen for a safe rule and is reported as ErrInternal.
func Project(head datalog.Atom, subst datalog.Substitution) (datalog.Fact, error) {
	args := make(datalog.Tuple, len(head.Terms))
	for i, term := range head.Terms {
		if term.IsConstant() {
			args[i] = term.Constant()
			continue
		}
		c, ok := subst.Lookup(term.Variable())
		if !ok {
			return datalog.Fact{}, fmt.Errorf("%w: head variable %s of %s is unbound", ErrInternal, term.Variable(), head.Predicate)
		}
		args[i] = c
	}
	return datalog.Fact{Predicate: head.Predicate, Args: args}, nil
}
