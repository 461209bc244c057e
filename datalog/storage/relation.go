package storage

import (
	"github.com/google/btree"
	"github.com/wbrown/janus-fixpoint/datalog"
)

// relationDegree is the btree node degree used for every relation
const relationDegree = 32

// Relation is the set of tuples known for one predicate. Tuples are kept in
// datalog.CompareTuples order, so iteration is deterministic and duplicates
// are impossible.
//
// A nil *Relation behaves as an empty relation for every read method, which
// lets lookups for unknown predicates return nil.
//
// Read methods may be called concurrently as long as nothing writes.
type Relation struct {
	predicate string
	tree      *btree.BTreeG[datalog.Tuple]
}

// NewRelation creates an empty relation
func NewRelation(predicate string) *Relation {
	return &Relation{
		predicate: predicate,
		tree:      btree.NewG(relationDegree, datalog.TupleLess),
	}
}

// Predicate returns the predicate name
func (r *Relation) Predicate() string {
	if r == nil {
		return ""
	}
	return r.predicate
}

// Add inserts a tuple and reports whether it was new
func (r *Relation) Add(t datalog.Tuple) bool {
	_, replaced := r.tree.ReplaceOrInsert(t)
	return !replaced
}

// Has reports whether the tuple is present
func (r *Relation) Has(t datalog.Tuple) bool {
	if r == nil {
		return false
	}
	return r.tree.Has(t)
}

// Len returns the number of tuples
func (r *Relation) Len() int {
	if r == nil {
		return 0
	}
	return r.tree.Len()
}

// IsEmpty reports whether the relation has no tuples
func (r *Relation) IsEmpty() bool {
	return r.Len() == 0
}

// Ascend calls fn for each tuple in order until fn returns false.
// The tuples passed to fn must not be modified.
func (r *Relation) Ascend(fn func(datalog.Tuple) bool) {
	if r == nil {
		return
	}
	r.tree.Ascend(func(t datalog.Tuple) bool {
		return fn(t)
	})
}

// Tuples returns all tuples in order
func (r *Relation) Tuples() []datalog.Tuple {
	if r == nil {
		return nil
	}
	out := make([]datalog.Tuple, 0, r.tree.Len())
	r.tree.Ascend(func(t datalog.Tuple) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Clone returns a relation with the same tuples. The copy is lazy
// (copy-on-write), so cloning a large relation is cheap.
func (r *Relation) Clone() *Relation {
	if r == nil {
		return nil
	}
	return &Relation{predicate: r.predicate, tree: r.tree.Clone()}
}

// Union adds every tuple of other and returns how many were new
func (r *Relation) Union(other *Relation) int {
	added := 0
	other.Ascend(func(t datalog.Tuple) bool {
		if r.Add(t) {
			added++
		}
		return true
	})
	return added
}

// Difference returns a new relation with the tuples of r that are not in other
func (r *Relation) Difference(other *Relation) *Relation {
	out := NewRelation(r.Predicate())
	r.Ascend(func(t datalog.Tuple) bool {
		if !other.Has(t) {
			out.Add(t)
		}
		return true
	})
	return out
}

// SubsetOf reports whether every tuple of r is in other
func (r *Relation) SubsetOf(other *Relation) bool {
	if r.Len() > other.Len() {
		return false
	}
	subset := true
	r.Ascend(func(t datalog.Tuple) bool {
		if !other.Has(t) {
			subset = false
		}
		return subset
	})
	return subset
}

// Equal reports set equality
func (r *Relation) Equal(other *Relation) bool {
	return r.Len() == other.Len() && r.SubsetOf(other)
}
