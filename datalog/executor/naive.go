package executor

import (
	"time"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// NaiveEvaluator re-applies every rule to the whole database each round until
// a round adds nothing. It redoes all earlier work every round and serves as
// the reference for SemiNaiveEvaluator.
type NaiveEvaluator struct {
	opts   Options
	runner *roundRunner
}

// NewNaiveEvaluator creates a naive evaluator
func NewNaiveEvaluator(opts Options) *NaiveEvaluator {
	opts.Strategy = Naive
	return &NaiveEvaluator{opts: opts, runner: newRoundRunner(opts)}
}

// Evaluate computes the least fixpoint without annotations
func (e *NaiveEvaluator) Evaluate(facts []datalog.Atom, rules []datalog.Rule) (*Result, error) {
	return e.EvaluateWithContext(&BaseContext{}, facts, rules)
}

// EvaluateWithContext computes the least fixpoint, reporting progress to ctx
func (e *NaiveEvaluator) EvaluateWithContext(ctx Context, facts []datalog.Atom, rules []datalog.Rule) (*Result, error) {
	start := time.Now()
	stats := Stats{Strategy: Naive}
	ctx.EvaluationBegin(Naive, len(facts), len(rules))

	db, err := prepare(ctx, facts, rules, e.opts)
	if err != nil {
		ctx.EvaluationComplete(stats, 0, err)
		return nil, err
	}

	match := fullMatch(db)
	for round := 1; ; round++ {
		rs, err := ctx.ExecuteRound(round, db.Len(), func() (RoundStats, error) {
			roundStart := time.Now()

			derived, candidates, err := e.runner.apply(ctx, round, rules, match)
			if err != nil {
				return RoundStats{Round: round}, err
			}

			fresh := derived.Difference(db)
			db.Merge(fresh)
			observe(e.opts, round, db, fresh)

			return RoundStats{
				Round:        round,
				RulesFired:   len(rules),
				Candidates:   candidates,
				Derived:      fresh.Len(),
				DatabaseSize: db.Len(),
				Elapsed:      time.Since(roundStart),
			}, nil
		})
		if err != nil {
			ctx.EvaluationComplete(stats, db.Len(), err)
			return nil, err
		}

		stats.record(rs)
		if rs.Derived == 0 {
			break
		}
	}

	stats.Elapsed = time.Since(start)
	ctx.EvaluationComplete(stats, db.Len(), nil)
	return newResult(db, facts, rules, stats), nil
}
