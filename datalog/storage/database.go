package storage

import (
	"sort"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// Database maps predicate names to relations. It is the fact store that
// evaluation accumulates into and joins against; a Delta is also a Database.
//
// A Database is owned by one evaluation at a time. Writes are not
// synchronised; concurrent readers are fine between writes.
type Database struct {
	relations map[string]*Relation
}

// NewDatabase creates an empty database
func NewDatabase() *Database {
	return &Database{relations: make(map[string]*Relation)}
}

// FromFacts creates a database holding the given facts
func FromFacts(facts []datalog.Fact) *Database {
	db := NewDatabase()
	for _, f := range facts {
		db.Add(f)
	}
	return db
}

// Relation returns the relation for a predicate, or nil if the predicate has
// never been added. A nil relation reads as empty.
func (d *Database) Relation(predicate string) *Relation {
	if d == nil {
		return nil
	}
	return d.relations[predicate]
}

// ensure returns the relation for predicate, creating it if needed
func (d *Database) ensure(predicate string) *Relation {
	rel, ok := d.relations[predicate]
	if !ok {
		rel = NewRelation(predicate)
		d.relations[predicate] = rel
	}
	return rel
}

// Add inserts a fact and reports whether it was new
func (d *Database) Add(f datalog.Fact) bool {
	return d.ensure(f.Predicate).Add(f.Args)
}

// AddTuple inserts a tuple for predicate and reports whether it was new
func (d *Database) AddTuple(predicate string, t datalog.Tuple) bool {
	return d.ensure(predicate).Add(t)
}

// Contains reports whether the fact is present
func (d *Database) Contains(f datalog.Fact) bool {
	return d.Relation(f.Predicate).Has(f.Args)
}

// Merge folds every tuple of other into d and returns how many were new
func (d *Database) Merge(other *Database) int {
	if other == nil {
		return 0
	}
	added := 0
	for pred, rel := range other.relations {
		if rel.IsEmpty() {
			continue
		}
		added += d.ensure(pred).Union(rel)
	}
	return added
}

// Difference returns a new database with the tuples of d absent from other
func (d *Database) Difference(other *Database) *Database {
	out := NewDatabase()
	for pred, rel := range d.relations {
		diff := rel.Difference(other.Relation(pred))
		if !diff.IsEmpty() {
			out.relations[pred] = diff
		}
	}
	return out
}

// Len returns the total number of tuples across all predicates
func (d *Database) Len() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, rel := range d.relations {
		n += rel.Len()
	}
	return n
}

// IsEmpty reports whether the database has no tuples
func (d *Database) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, rel := range d.relations {
		if !rel.IsEmpty() {
			return false
		}
	}
	return true
}

// Predicates returns the names of predicates with at least one tuple, sorted
func (d *Database) Predicates() []string {
	if d == nil {
		return nil
	}
	preds := make([]string, 0, len(d.relations))
	for pred, rel := range d.relations {
		if !rel.IsEmpty() {
			preds = append(preds, pred)
		}
	}
	sort.Strings(preds)
	return preds
}

// Ascend calls fn for every fact, ordered by predicate and then tuple, until
// fn returns false
func (d *Database) Ascend(fn func(datalog.Fact) bool) {
	for _, pred := range d.Predicates() {
		cont := true
		d.relations[pred].Ascend(func(t datalog.Tuple) bool {
			cont = fn(datalog.Fact{Predicate: pred, Args: t})
			return cont
		})
		if !cont {
			return
		}
	}
}

// Facts returns every fact ordered by predicate and then tuple
func (d *Database) Facts() []datalog.Fact {
	facts := make([]datalog.Fact, 0, d.Len())
	d.Ascend(func(f datalog.Fact) bool {
		facts = append(facts, f)
		return true
	})
	return facts
}

// Clone returns an independent copy
func (d *Database) Clone() *Database {
	out := NewDatabase()
	if d == nil {
		return out
	}
	for pred, rel := range d.relations {
		out.relations[pred] = rel.Clone()
	}
	return out
}

// SubsetOf reports whether every fact of d is also in other
func (d *Database) SubsetOf(other *Database) bool {
	for pred, rel := range d.relations {
		if !rel.SubsetOf(other.Relation(pred)) {
			return false
		}
	}
	return true
}

// Equal reports whether both databases hold exactly the same facts. Empty
// relations are ignored.
func (d *Database) Equal(other *Database) bool {
	return d.Len() == other.Len() && d.SubsetOf(other)
}
