package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/annotations"
	"github.com/wbrown/janus-fixpoint/datalog/parser"
	"github.com/wbrown/janus-fixpoint/datalog/safety"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
	"github.com/wbrown/janus-fixpoint/datalog/workload"
)

const transitiveClosure = `
edge(a, b).
edge(b, c).
path(X, Y) :- edge(X, Y).
path(X, Z) :- path(X, Y), edge(Y, Z).
`

func mustParse(t testing.TB, src string) *parser.Program {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)
	return prog
}

func mustBuild(t testing.TB, cfg workload.Config) *parser.Program {
	t.Helper()
	prog, err := workload.Build(cfg)
	require.NoError(t, err)
	return prog
}

func strategies() []Strategy {
	return []Strategy{Naive, SemiNaive}
}

func TestTransitiveClosure(t *testing.T) {
	prog := mustParse(t, transitiveClosure)

	for _, strategy := range strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			result, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
			require.NoError(t, err)

			assert.Equal(t,
				"edge(a, b).\nedge(b, c).\npath(a, b).\npath(a, c).\npath(b, c).\n",
				storage.FormatText(result.Database))
			assert.Equal(t, 3, result.Stats.Rounds)
			assert.Equal(t, 3, result.Stats.Derived)
			assert.Equal(t, strategy, result.Stats.Strategy)
			assert.Equal(t, []string{"edge"}, result.EDB)
			assert.Equal(t, []string{"path"}, result.IDB)
		})
	}
}

func TestUngroundFactRejected(t *testing.T) {
	prog := mustParse(t, "p(X).")

	for _, strategy := range strategies() {
		result, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
		assert.Nil(t, result)

		var unground *safety.UngroundFactError
		assert.True(t, errors.As(err, &unground), "got %v", err)
		assert.True(t, errors.Is(err, safety.ErrUnsafeProgram))
	}
}

func TestUnsafeRuleRejected(t *testing.T) {
	prog := mustParse(t, "p(a).\nq(X, Y) :- p(X).")

	for _, strategy := range strategies() {
		result, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
		assert.Nil(t, result)

		var unsafe *safety.UnsafeRuleError
		assert.True(t, errors.As(err, &unsafe), "got %v", err)
	}
}

func TestEmptyBodyRuleRejected(t *testing.T) {
	rules := []datalog.Rule{datalog.NewRule(datalog.NewAtom("n"))}

	for _, strategy := range strategies() {
		result, err := Evaluate(nil, rules, Options{Strategy: strategy})
		assert.Nil(t, result)

		var empty *safety.EmptyBodyError
		assert.True(t, errors.As(err, &empty), "got %v", err)
	}
}

func TestFactsOnly(t *testing.T) {
	prog := mustParse(t, "a(1).\nb(2).")

	for _, strategy := range strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			var deltas []int
			opts := Options{
				Strategy: strategy,
				Observer: func(info RoundInfo) { deltas = append(deltas, info.DeltaSize) },
			}
			result, err := Evaluate(prog.Facts, prog.Rules, opts)
			require.NoError(t, err)

			assert.Equal(t, "a(1).\nb(2).\n", storage.FormatText(result.Database))
			assert.Equal(t, 1, result.Stats.Rounds)
			assert.Equal(t, 0, result.Stats.Derived)
			assert.Equal(t, []int{0}, deltas)
			assert.Empty(t, result.IDB)
		})
	}
}

func TestInconsistentBindingsDeriveNothing(t *testing.T) {
	prog := mustParse(t, "p(1).\nq(2).\nr(X) :- p(X), q(X).")

	for _, strategy := range strategies() {
		result, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
		require.NoError(t, err)

		assert.True(t, result.Database.Relation("r").IsEmpty())
		assert.Equal(t, 2, result.Database.Len())
		assert.True(t, result.IsIDB("r"))
		assert.False(t, result.IsIDB("p"))
	}
}

func TestStrategiesAgree(t *testing.T) {
	tests := []struct {
		name string
		cfg  workload.Config
	}{
		{"chain", workload.Config{Shape: workload.Chain, Size: 15}},
		{"cycle", workload.Config{Shape: workload.Cycle, Size: 8}},
		{"grid", workload.Config{Shape: workload.Grid, Size: 4}},
		{"random", workload.Config{Shape: workload.Random, Size: 30, EdgesPerNode: 2, Seed: 3}},
		{"nonlinear", workload.Config{Shape: workload.Chain, Size: 12, Rules: workload.NonlinearClosure}},
		{"same generation", workload.Config{Shape: workload.Grid, Size: 3, Rules: workload.SameGeneration}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustBuild(t, tt.cfg)

			naive, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: Naive})
			require.NoError(t, err)
			semi, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: SemiNaive})
			require.NoError(t, err)

			assert.True(t, naive.Database.Equal(semi.Database))
			assert.Equal(t, naive.Stats.Derived, semi.Stats.Derived)
		})
	}
}

func TestChainClosureSize(t *testing.T) {
	prog := mustBuild(t, workload.DefaultConfig())

	result, err := Evaluate(prog.Facts, prog.Rules, DefaultOptions())
	require.NoError(t, err)

	// n nodes in a chain have n(n-1)/2 paths
	assert.Equal(t, 190, result.Database.Relation("path").Len())
	assert.Equal(t, 19, result.Database.Relation("edge").Len())
}

func TestCycleTerminates(t *testing.T) {
	prog := mustBuild(t, workload.Config{Shape: workload.Cycle, Size: 6})

	for _, strategy := range strategies() {
		result, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
		require.NoError(t, err)

		// Every node reaches every node, itself included
		assert.Equal(t, 36, result.Database.Relation("path").Len())
	}
}

func TestFixpointIsIdempotent(t *testing.T) {
	prog := mustBuild(t, workload.Config{Shape: workload.Grid, Size: 3})

	for _, strategy := range strategies() {
		first, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
		require.NoError(t, err)

		var atoms []datalog.Atom
		for _, f := range first.Database.Facts() {
			atoms = append(atoms, f.Atom())
		}

		second, err := Evaluate(atoms, prog.Rules, Options{Strategy: strategy})
		require.NoError(t, err)

		assert.True(t, first.Database.Equal(second.Database))
		assert.Equal(t, 0, second.Stats.Derived)
	}
}

func TestRoundsAreMonotone(t *testing.T) {
	prog := mustBuild(t, workload.Config{Shape: workload.Chain, Size: 8})

	for _, strategy := range strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			var previous *storage.Database
			var rounds int
			opts := Options{
				Strategy: strategy,
				Observer: func(info RoundInfo) {
					rounds++
					if previous != nil {
						assert.True(t, previous.SubsetOf(info.Database), "round %d lost facts", info.Round)
						assert.Equal(t, previous.Len()+info.DeltaSize, info.DatabaseSize)
					}
					assert.True(t, info.Delta.SubsetOf(info.Database))
					previous = info.Database.Clone()
				},
			}

			result, err := Evaluate(prog.Facts, prog.Rules, opts)
			require.NoError(t, err)
			assert.Equal(t, result.Stats.Rounds, rounds)
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	prog := mustBuild(t, workload.Config{Shape: workload.Random, Size: 40, EdgesPerNode: 2, Seed: 11})

	for _, strategy := range strategies() {
		sequential, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy})
		require.NoError(t, err)
		parallel, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: strategy, Parallel: true, MaxWorkers: 4})
		require.NoError(t, err)

		assert.True(t, sequential.Database.Equal(parallel.Database))
		assert.Equal(t, sequential.Stats.Rounds, parallel.Stats.Rounds)
		assert.Equal(t, sequential.Stats.Candidates, parallel.Stats.Candidates)
	}
}

func TestSemiNaiveDoesLessWork(t *testing.T) {
	prog := mustBuild(t, workload.Config{Shape: workload.Chain, Size: 30})

	naive, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: Naive})
	require.NoError(t, err)
	semi, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: SemiNaive})
	require.NoError(t, err)

	assert.Less(t, semi.Stats.Candidates, naive.Stats.Candidates)
	assert.Equal(t, naive.Stats.Rounds, semi.Stats.Rounds)
}

func TestSemiNaiveDoesLessWorkNonlinear(t *testing.T) {
	prog := mustBuild(t, workload.Config{Shape: workload.Chain, Size: 12, Rules: workload.NonlinearClosure})

	naive, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: Naive})
	require.NoError(t, err)
	semi, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: SemiNaive})
	require.NoError(t, err)

	assert.True(t, naive.Database.Equal(semi.Database))
	assert.Equal(t, 66, semi.Database.Relation("path").Len())
	assert.LessOrEqual(t, semi.Stats.Candidates, naive.Stats.Candidates)
}

func TestArityMismatchIsPermissive(t *testing.T) {
	prog := mustParse(t, "p(a).\np(a, b).\nq(X, Y) :- p(X, Y).")

	result, err := Evaluate(prog.Facts, prog.Rules, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Database.Relation("q").Len())

	_, err = Evaluate(prog.Facts, prog.Rules, Options{Strategy: SemiNaive, StrictArity: true})
	var mismatch *safety.ArityMismatchError
	assert.True(t, errors.As(err, &mismatch), "got %v", err)
}

func TestRecursionThroughConstants(t *testing.T) {
	prog := mustParse(t, `
		parent(tom, bob).
		parent(bob, ann).
		ancestor(X, Y) :- parent(X, Y).
		ancestor(X, Z) :- parent(X, Y), ancestor(Y, Z).
		tomline(Y) :- ancestor(tom, Y).
	`)

	result, err := Evaluate(prog.Facts, prog.Rules, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, result.Database.Contains(datalog.NewFact("tomline", "bob")))
	assert.True(t, result.Database.Contains(datalog.NewFact("tomline", "ann")))
	assert.Equal(t, 2, result.Database.Relation("tomline").Len())
}

func TestUnknownStrategy(t *testing.T) {
	prog := mustParse(t, transitiveClosure)
	_, err := Evaluate(prog.Facts, prog.Rules, Options{Strategy: "magic"})
	assert.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"naive", Naive},
		{"NAIVE", Naive},
		{"seminaive", SemiNaive},
		{"semi-naive", SemiNaive},
		{" Semi_Naive ", SemiNaive},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStrategy("magic")
	assert.EqualError(t, err, `unknown evaluation strategy "magic" (want naive or seminaive)`)

	assert.Equal(t, "Semi-naive", SemiNaive.Title())
	assert.Equal(t, "Naive", Naive.Title())
}

func TestNewEvaluatorDefaultsToSemiNaive(t *testing.T) {
	_, ok := NewEvaluator(Options{}).(*SemiNaiveEvaluator)
	assert.True(t, ok)
	_, ok = NewEvaluator(Options{Strategy: Naive}).(*NaiveEvaluator)
	assert.True(t, ok)
}

func TestAnnotatedEvaluation(t *testing.T) {
	prog := mustParse(t, transitiveClosure)

	for _, strategy := range strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			var seen int
			ctx := NewContext(func(annotations.Event) { seen++ })

			result, err := NewEvaluator(Options{Strategy: strategy}).EvaluateWithContext(ctx, prog.Facts, prog.Rules)
			require.NoError(t, err)

			c := ctx.Collector()
			require.NotNil(t, c)
			assert.Len(t, c.EventsNamed(annotations.EvalBegin), 1)
			assert.Len(t, c.EventsNamed(annotations.RoundBegin), result.Stats.Rounds)
			assert.Len(t, c.EventsNamed(annotations.RoundComplete), result.Stats.Rounds)
			assert.Equal(t, len(c.Events()), seen)

			complete := c.EventsNamed(annotations.EvalComplete)
			require.Len(t, complete, 1)
			assert.Equal(t, true, complete[0].Data["success"])
			assert.Equal(t, 5, complete[0].Data["database.count"])

			fired := c.EventsNamed(annotations.RuleFired)
			for _, e := range fired {
				assert.Contains(t, e.Data["rule"], ":-")
			}
			if strategy == Naive {
				// Both rules fire in each of the three rounds
				assert.Len(t, fired, 6)
			}
		})
	}
}

func TestAnnotatedSafetyRejection(t *testing.T) {
	prog := mustParse(t, "p(X).")
	ctx := NewContext(func(annotations.Event) {})

	_, err := NewEvaluator(DefaultOptions()).EvaluateWithContext(ctx, prog.Facts, prog.Rules)
	require.Error(t, err)

	c := ctx.Collector()
	assert.Len(t, c.EventsNamed(annotations.ErrorSafety), 1)
	assert.Empty(t, c.EventsNamed(annotations.RoundBegin))

	complete := c.EventsNamed(annotations.EvalComplete)
	require.Len(t, complete, 1)
	assert.Equal(t, false, complete[0].Data["success"])
}

func TestNilHandlerUsesBaseContext(t *testing.T) {
	ctx := NewContext(nil)
	_, ok := ctx.(*BaseContext)
	assert.True(t, ok)
	assert.Nil(t, ctx.Collector())
}
