package datalog

import (
	"fmt"
	"strings"
)

// TermKind tags a Term as either a constant or a variable.
type TermKind uint8

const (
	ConstantTerm TermKind = iota
	VariableTerm
)

// String returns the kind name
func (k TermKind) String() string {
	switch k {
	case ConstantTerm:
		return "constant"
	case VariableTerm:
		return "variable"
	default:
		return fmt.Sprintf("TermKind(%d)", uint8(k))
	}
}

// Constant is an opaque atomic symbol. Equality is exact string equality.
type Constant string

// Variable is a name scoped to a single rule.
type Variable string

// Term is an argument of an atom. The tag is fixed at construction time;
// nothing downstream of the parser looks at the spelling to decide the kind.
type Term struct {
	Kind TermKind
	Name string
}

// NewConstant creates a constant term
func NewConstant(name string) Term {
	return Term{Kind: ConstantTerm, Name: name}
}

// NewVariable creates a variable term
func NewVariable(name string) Term {
	return Term{Kind: VariableTerm, Name: name}
}

// ParseTerm applies the lexical convention of program text: a leading
// upper-case letter makes a variable, anything else is a constant.
// Only the parser boundary and tests should call this.
func ParseTerm(s string) Term {
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		return NewVariable(s)
	}
	return NewConstant(s)
}

// IsVariable reports whether the term is a variable
func (t Term) IsVariable() bool { return t.Kind == VariableTerm }

// IsConstant reports whether the term is a constant
func (t Term) IsConstant() bool { return t.Kind == ConstantTerm }

// Constant returns the term as a Constant. Only meaningful for constants.
func (t Term) Constant() Constant { return Constant(t.Name) }

// Variable returns the term as a Variable. Only meaningful for variables.
func (t Term) Variable() Variable { return Variable(t.Name) }

// String returns the term's spelling
func (t Term) String() string { return t.Name }

// Atom is a predicate applied to an ordered sequence of terms
type Atom struct {
	Predicate string
	Terms     []Term
}

// NewAtom creates an atom
func NewAtom(predicate string, terms ...Term) Atom {
	return Atom{Predicate: predicate, Terms: terms}
}

// Arity returns the number of terms
func (a Atom) Arity() int { return len(a.Terms) }

// IsGround reports whether the atom contains no variables
func (a Atom) IsGround() bool {
	for _, t := range a.Terms {
		if t.IsVariable() {
			return false
		}
	}
	return true
}

// Variables returns the distinct variables of the atom in order of first
// occurrence
func (a Atom) Variables() []Variable {
	var vars []Variable
	seen := make(map[Variable]bool, len(a.Terms))
	for _, t := range a.Terms {
		if !t.IsVariable() {
			continue
		}
		v := t.Variable()
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	return vars
}

// Equal reports structural equality: same predicate, same arity and the same
// terms in the same order
func (a Atom) Equal(other Atom) bool {
	if a.Predicate != other.Predicate || len(a.Terms) != len(other.Terms) {
		return false
	}
	for i := range a.Terms {
		if a.Terms[i] != other.Terms[i] {
			return false
		}
	}
	return true
}

// Ground converts the atom to a Fact. It returns false if any term is a
// variable.
func (a Atom) Ground() (Fact, bool) {
	args := make(Tuple, len(a.Terms))
	for i, t := range a.Terms {
		if t.IsVariable() {
			return Fact{}, false
		}
		args[i] = t.Constant()
	}
	return Fact{Predicate: a.Predicate, Args: args}, true
}

// String renders the atom as pred(t1, t2)
func (a Atom) String() string {
	var sb strings.Builder
	sb.WriteString(a.Predicate)
	sb.WriteByte('(')
	for i, t := range a.Terms {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Tuple is an ordered sequence of constants: the stored form of a fact's
// arguments
type Tuple []Constant

// Equal reports element-wise equality
func (t Tuple) Equal(other Tuple) bool {
	return CompareTuples(t, other) == 0
}

// String renders the tuple as (a, b)
func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = string(c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Fact is a ground atom. Facts are never mutated after creation.
type Fact struct {
	Predicate string
	Args      Tuple
}

// NewFact creates a fact from constant spellings
func NewFact(predicate string, args ...string) Fact {
	tuple := make(Tuple, len(args))
	for i, a := range args {
		tuple[i] = Constant(a)
	}
	return Fact{Predicate: predicate, Args: tuple}
}

// Atom returns the fact as a ground atom
func (f Fact) Atom() Atom {
	terms := make([]Term, len(f.Args))
	for i, c := range f.Args {
		terms[i] = NewConstant(string(c))
	}
	return Atom{Predicate: f.Predicate, Terms: terms}
}

// String renders the canonical output form: pred(a, b).
func (f Fact) String() string {
	var sb strings.Builder
	sb.WriteString(f.Predicate)
	sb.WriteByte('(')
	for i, c := range f.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(c))
	}
	sb.WriteString(").")
	return sb.String()
}

// Rule derives facts for the predicate of its head from a conjunction of
// body atoms
type Rule struct {
	Head Atom
	Body []Atom
}

// NewRule creates a rule
func NewRule(head Atom, body ...Atom) Rule {
	return Rule{Head: head, Body: body}
}

// HeadVariables returns the distinct variables of the head
func (r Rule) HeadVariables() []Variable {
	return r.Head.Variables()
}

// BodyVariables returns the distinct variables appearing anywhere in the body,
// in order of first occurrence
func (r Rule) BodyVariables() []Variable {
	var vars []Variable
	seen := make(map[Variable]bool)
	for _, atom := range r.Body {
		for _, v := range atom.Variables() {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	return vars
}

// String renders the rule in program syntax
func (r Rule) String() string {
	parts := make([]string, len(r.Body))
	for i, atom := range r.Body {
		parts[i] = atom.String()
	}
	return fmt.Sprintf("%s :- %s.", r.Head, strings.Join(parts, ", "))
}
