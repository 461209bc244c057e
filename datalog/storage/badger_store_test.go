package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-fixpoint/datalog"
)

func TestBadgerStore(t *testing.T) {
	for _, strategy := range []struct {
		name     string
		strategy KeyEncodingStrategy
	}{
		{"Binary", BinaryStrategy},
		{"Text", TextStrategy},
		{"L85", L85Strategy},
	} {
		t.Run(strategy.name, func(t *testing.T) {
			store, err := NewBadgerStore(t.TempDir(), NewKeyEncoder(strategy.strategy))
			require.NoError(t, err)
			defer store.Close()

			db := graphDatabase()
			db.Add(datalog.NewFact("path", "a", "c"))
			db.Add(datalog.NewFact("flag"))
			require.NoError(t, store.SaveDatabase(db))

			t.Run("LoadDatabase", func(t *testing.T) {
				loaded, err := store.LoadDatabase()
				require.NoError(t, err)
				assert.True(t, db.Equal(loaded), "got %v", loaded.Facts())
			})

			t.Run("LoadRelation", func(t *testing.T) {
				edges, err := store.LoadRelation("edge")
				require.NoError(t, err)
				assert.Equal(t, []datalog.Tuple{tuple("a", "b"), tuple("b", "c")}, edges.Tuples())

				missing, err := store.LoadRelation("nothing")
				require.NoError(t, err)
				assert.True(t, missing.IsEmpty())
			})

			t.Run("CountFacts", func(t *testing.T) {
				count, err := store.CountFacts()
				require.NoError(t, err)
				assert.Equal(t, int64(5), count)
			})

			t.Run("SaveReplaces", func(t *testing.T) {
				smaller := FromFacts([]datalog.Fact{
					datalog.NewFact("edge", "a", "b"),
					datalog.NewFact("node", "q"),
				})
				require.NoError(t, store.SaveDatabase(smaller))

				loaded, err := store.LoadDatabase()
				require.NoError(t, err)
				assert.True(t, smaller.Equal(loaded), "got %v", loaded.Facts())
			})
		})
	}
}

func TestBadgerStoreMeta(t *testing.T) {
	store, err := NewBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Meta("strategy")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetMeta("strategy", "seminaive"))
	value, ok, err := store.Meta("strategy")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "seminaive", value)

	// Meta keys are not facts
	count, err := store.CountFacts()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
