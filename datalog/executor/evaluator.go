package executor

import (
	"fmt"
	"sort"
	"time"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/safety"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// Evaluator computes the least fixpoint of a program
type Evaluator interface {
	Evaluate(facts []datalog.Atom, rules []datalog.Rule) (*Result, error)
	EvaluateWithContext(ctx Context, facts []datalog.Atom, rules []datalog.Rule) (*Result, error)
}

// Result is the outcome of one evaluation
type Result struct {
	// Database holds every EDB fact and every derived fact
	Database *storage.Database

	// EDB lists predicates with base facts, IDB predicates that head some
	// rule. A predicate can be in both. Both are sorted.
	EDB []string
	IDB []string

	Stats Stats
}

// IsIDB reports whether predicate heads some rule
func (r *Result) IsIDB(predicate string) bool {
	i := sort.SearchStrings(r.IDB, predicate)
	return i < len(r.IDB) && r.IDB[i] == predicate
}

// RoundStats describes one fixpoint round
type RoundStats struct {
	Round        int
	RulesFired   int
	Candidates   int64
	Derived      int // new facts this round
	DatabaseSize int // facts after the round's fold
	Elapsed      time.Duration
}

// Stats describes a whole evaluation
type Stats struct {
	Strategy   Strategy
	Rounds     int
	Candidates int64
	Derived    int
	Elapsed    time.Duration
	PerRound   []RoundStats
}

func (s *Stats) record(rs RoundStats) {
	s.Rounds++
	s.Candidates += rs.Candidates
	s.Derived += rs.Derived
	s.PerRound = append(s.PerRound, rs)
}

// NewEvaluator returns the evaluator selected by opts.Strategy. An empty
// strategy selects semi-naive.
func NewEvaluator(opts Options) Evaluator {
	if opts.Strategy == Naive {
		return NewNaiveEvaluator(opts)
	}
	return NewSemiNaiveEvaluator(opts)
}

// Evaluate runs one evaluation with the given options
func Evaluate(facts []datalog.Atom, rules []datalog.Rule, opts Options) (*Result, error) {
	switch opts.Strategy {
	case "", Naive, SemiNaive:
	default:
		return nil, fmt.Errorf("unknown evaluation strategy %q", opts.Strategy)
	}
	return NewEvaluator(opts).Evaluate(facts, rules)
}

// prepare runs the safety checks and loads the EDB. Nothing is evaluated
// unless the whole program passes.
func prepare(ctx Context, facts []datalog.Atom, rules []datalog.Rule, opts Options) (*storage.Database, error) {
	err := safety.CheckWithOptions(facts, rules, safety.Options{StrictArity: opts.StrictArity})
	if err != nil {
		ctx.SafetyRejected(err)
		return nil, err
	}

	db := storage.NewDatabase()
	for _, atom := range facts {
		fact, ok := atom.Ground()
		if !ok {
			return nil, fmt.Errorf("%w: fact %s is not ground", ErrInternal, atom)
		}
		db.Add(fact)
	}
	return db, nil
}

// newResult assembles the Result of a finished evaluation
func newResult(db *storage.Database, facts []datalog.Atom, rules []datalog.Rule, stats Stats) *Result {
	edb := make(map[string]bool)
	for _, f := range facts {
		edb[f.Predicate] = true
	}
	idb := make(map[string]bool)
	for _, r := range rules {
		idb[r.Head.Predicate] = true
	}

	return &Result{
		Database: db,
		EDB:      sortedKeys(edb),
		IDB:      sortedKeys(idb),
		Stats:    stats,
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// matchFunc produces the substitutions of one rule for one round
type matchFunc func(rule datalog.Rule, stats *JoinStats) []datalog.Substitution

// roundRunner applies a set of rules for one round, sequentially or on a
// worker pool, and merges their private outputs afterwards
type roundRunner struct {
	pool *WorkerPool // nil = sequential
}

func newRoundRunner(opts Options) *roundRunner {
	if !opts.Parallel {
		return &roundRunner{}
	}
	return &roundRunner{pool: NewWorkerPool(opts.MaxWorkers)}
}

// apply fires every rule and returns the union of their derivations. The
// lookups read by match must not change until apply returns.
func (r *roundRunner) apply(ctx Context, round int, rules []datalog.Rule, match matchFunc) (*storage.Database, int64, error) {
	fire := func(ctx Context, rule datalog.Rule) (RuleResult, error) {
		return ctx.FireRule(round, rule, func() (RuleResult, error) {
			var stats JoinStats
			out := storage.NewDatabase()
			for _, subst := range match(rule, &stats) {
				fact, err := Project(rule.Head, subst)
				if err != nil {
					return RuleResult{}, err
				}
				out.Add(fact)
			}
			return RuleResult{Derived: out, Candidates: stats.Candidates}, nil
		})
	}

	var results []RuleResult
	if r.pool == nil {
		results = make([]RuleResult, 0, len(rules))
		for _, rule := range rules {
			res, err := fire(ctx, rule)
			if err != nil {
				return nil, 0, fmt.Errorf("rule %s: %w", rule, err)
			}
			results = append(results, res)
		}
	} else {
		var err error
		results, err = ExecuteParallel(r.pool, ctx, rules, fire)
		if err != nil {
			return nil, 0, err
		}
	}

	// Merge in rule order after the barrier
	derived := storage.NewDatabase()
	var candidates int64
	for _, res := range results {
		derived.Merge(res.Derived)
		candidates += res.Candidates
	}
	return derived, candidates, nil
}

// fullMatch joins the whole body against db
func fullMatch(db *storage.Database) matchFunc {
	return func(rule datalog.Rule, stats *JoinStats) []datalog.Substitution {
		return stats.Join(rule.Body, db)
	}
}

// observe notifies the round observer, if any
func observe(opts Options, round int, db, delta *storage.Database) {
	if opts.Observer == nil {
		return
	}
	opts.Observer(RoundInfo{
		Round:        round,
		Database:     db,
		Delta:        delta,
		DatabaseSize: db.Len(),
		DeltaSize:    delta.Len(),
	})
}
