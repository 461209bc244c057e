// Package safety performs the static checks that must pass before a program
// is evaluated. A program that passes has only ground facts and
// range-restricted rules, which together guarantee a finite least model.
package safety

import (
	"errors"
	"fmt"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// ErrUnsafeProgram is matched by every error returned from this package
var ErrUnsafeProgram = errors.New("safety rule violation")

// UngroundFactError reports a fact that contains a variable
type UngroundFactError struct {
	Predicate string
	Variable  datalog.Variable
}

func (e *UngroundFactError) Error() string {
	return fmt.Sprintf("safety rule violation: fact %s has variable %s as a term", e.Predicate, e.Variable)
}

func (e *UngroundFactError) Is(target error) bool { return target == ErrUnsafeProgram }

// UnsafeRuleError reports a head variable that never occurs in the body
type UnsafeRuleError struct {
	Predicate string
	Variable  datalog.Variable
}

func (e *UnsafeRuleError) Error() string {
	return fmt.Sprintf("safety rule violation: variable %s in head of rule %s does not occur in the body", e.Variable, e.Predicate)
}

func (e *UnsafeRuleError) Is(target error) bool { return target == ErrUnsafeProgram }

// EmptyBodyError reports a rule built without body atoms. The parser never
// produces one; it can only come from constructing a Rule directly.
type EmptyBodyError struct {
	Predicate string
}

func (e *EmptyBodyError) Error() string {
	return fmt.Sprintf("safety rule violation: rule for %s has an empty body", e.Predicate)
}

func (e *EmptyBodyError) Is(target error) bool { return target == ErrUnsafeProgram }

// ArityMismatchError reports a predicate used with more than one arity.
// Only produced when Options.StrictArity is set.
type ArityMismatchError struct {
	Predicate string
	Expected  int
	Got       int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("safety rule violation: predicate %s used with arity %d, previously %d", e.Predicate, e.Got, e.Expected)
}

func (e *ArityMismatchError) Is(target error) bool { return target == ErrUnsafeProgram }

// Options enables checks beyond the required two
type Options struct {
	// StrictArity rejects programs that use one predicate with different
	// arities. Off by default: mismatched atoms simply never match.
	StrictArity bool
}

// Check validates facts and rules. It inspects the whole program and returns
// the first violation in program order, facts before rules, or nil.
func Check(facts []datalog.Atom, rules []datalog.Rule) error {
	return CheckWithOptions(facts, rules, Options{})
}

// CheckWithOptions is Check with optional extra validation
func CheckWithOptions(facts []datalog.Atom, rules []datalog.Rule, opts Options) error {
	for _, fact := range facts {
		if err := checkFact(fact); err != nil {
			return err
		}
	}

	for _, rule := range rules {
		if err := checkRule(rule); err != nil {
			return err
		}
	}

	if opts.StrictArity {
		return checkArity(facts, rules)
	}
	return nil
}

// checkFact requires every term of a fact to be a constant
func checkFact(fact datalog.Atom) error {
	for _, term := range fact.Terms {
		if term.IsVariable() {
			return &UngroundFactError{Predicate: fact.Predicate, Variable: term.Variable()}
		}
	}
	return nil
}

// checkRule requires a non-empty body and enforces range restriction: each
// head variable must be bound by some body atom
func checkRule(rule datalog.Rule) error {
	if len(rule.Body) == 0 {
		return &EmptyBodyError{Predicate: rule.Head.Predicate}
	}

	bound := make(map[datalog.Variable]bool)
	for _, v := range rule.BodyVariables() {
		bound[v] = true
	}

	for _, v := range rule.HeadVariables() {
		if !bound[v] {
			return &UnsafeRuleError{Predicate: rule.Head.Predicate, Variable: v}
		}
	}
	return nil
}

// checkArity walks atoms in program order and fails on the first predicate
// whose arity differs from its first use
func checkArity(facts []datalog.Atom, rules []datalog.Rule) error {
	arity := make(map[string]int)
	visit := func(atom datalog.Atom) error {
		expected, seen := arity[atom.Predicate]
		if !seen {
			arity[atom.Predicate] = atom.Arity()
			return nil
		}
		if expected != atom.Arity() {
			return &ArityMismatchError{Predicate: atom.Predicate, Expected: expected, Got: atom.Arity()}
		}
		return nil
	}

	for _, fact := range facts {
		if err := visit(fact); err != nil {
			return err
		}
	}
	for _, rule := range rules {
		if err := visit(rule.Head); err != nil {
			return err
		}
		for _, atom := range rule.Body {
			if err := visit(atom); err != nil {
				return err
			}
		}
	}
	return nil
}
