package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/janus-fixpoint/datalog"
)

func graphDatabase() *Database {
	return FromFacts([]datalog.Fact{
		datalog.NewFact("edge", "b", "c"),
		datalog.NewFact("edge", "a", "b"),
		datalog.NewFact("node", "a"),
	})
}

func TestDatabaseAddContains(t *testing.T) {
	db := graphDatabase()

	assert.Equal(t, 3, db.Len())
	assert.True(t, db.Contains(datalog.NewFact("edge", "a", "b")))
	assert.False(t, db.Contains(datalog.NewFact("edge", "c", "a")))
	assert.False(t, db.Contains(datalog.NewFact("missing", "a")))

	assert.False(t, db.Add(datalog.NewFact("node", "a")))
	assert.True(t, db.AddTuple("node", tuple("b")))
	assert.Equal(t, 4, db.Len())
}

func TestDatabaseFactsAreOrdered(t *testing.T) {
	db := graphDatabase()

	assert.Equal(t, []string{"edge", "node"}, db.Predicates())
	assert.Equal(t, []datalog.Fact{
		datalog.NewFact("edge", "a", "b"),
		datalog.NewFact("edge", "b", "c"),
		datalog.NewFact("node", "a"),
	}, db.Facts())
}

func TestDatabaseMergeDifference(t *testing.T) {
	db := graphDatabase()
	delta := FromFacts([]datalog.Fact{
		datalog.NewFact("edge", "a", "b"),
		datalog.NewFact("path", "a", "c"),
	})

	fresh := delta.Difference(db)
	assert.Equal(t, []datalog.Fact{datalog.NewFact("path", "a", "c")}, fresh.Facts())
	assert.Equal(t, []string{"path"}, fresh.Predicates(), "empty differences leave no relation")

	assert.Equal(t, 1, db.Merge(delta))
	assert.Equal(t, 0, db.Merge(delta), "merge is idempotent")
	assert.True(t, delta.SubsetOf(db))
	assert.Equal(t, 4, db.Len())
}

func TestDatabaseCloneEqual(t *testing.T) {
	db := graphDatabase()
	clone := db.Clone()
	assert.True(t, db.Equal(clone))

	clone.Add(datalog.NewFact("node", "z"))
	assert.False(t, db.Equal(clone))
	assert.True(t, db.SubsetOf(clone))
	assert.Equal(t, 3, db.Len())
}

func TestEmptyDatabase(t *testing.T) {
	db := NewDatabase()
	assert.True(t, db.IsEmpty())
	assert.Empty(t, db.Facts())

	// A relation emptied by difference still counts as empty
	db.Add(datalog.NewFact("p", "a"))
	assert.True(t, db.Difference(db.Clone()).IsEmpty())

	var nilDB *Database
	assert.True(t, nilDB.IsEmpty())
	assert.Nil(t, nilDB.Relation("p"))
}

func TestWriteText(t *testing.T) {
	db := graphDatabase()
	db.Add(datalog.NewFact("flag"))

	expected := "edge(a, b).\nedge(b, c).\nflag().\nnode(a).\n"
	assert.Equal(t, expected, FormatText(db))
	assert.Equal(t, "", FormatText(NewDatabase()))
}

func TestWriteTextFiltered(t *testing.T) {
	db := graphDatabase()

	var sb strings.Builder
	err := WriteTextFiltered(&sb, db, func(pred string) bool { return pred == "node" })
	assert.NoError(t, err)
	assert.Equal(t, "node(a).\n", sb.String())
}
