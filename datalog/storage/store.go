package storage

// KeyNamespace separates the kinds of records kept in a snapshot store.
// It is the first byte of every key.
type KeyNamespace uint8

const (
	FactNamespace KeyNamespace = iota + 1 // predicate + arguments, empty value
	MetaNamespace                         // run metadata, string values
)

// SnapshotStore persists an evaluated database so it can be inspected or
// reloaded without re-running the fixpoint. Evaluation itself never reads
// from a SnapshotStore.
type SnapshotStore interface {
	// SaveDatabase replaces all stored facts with the contents of db
	SaveDatabase(db *Database) error

	// LoadDatabase reads every stored fact
	LoadDatabase() (*Database, error)

	// LoadRelation reads the facts of a single predicate
	LoadRelation(predicate string) (*Relation, error)

	// CountFacts counts stored facts without decoding them
	CountFacts() (int64, error)

	// SetMeta and Meta store and fetch run metadata such as the strategy
	SetMeta(key, value string) error
	Meta(key string) (string, bool, error)

	Close() error
}
