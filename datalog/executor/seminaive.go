package executor

import (
	"time"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// SemiNaiveEvaluator only joins against facts that are new since the previous
// round. Each round, a rule is evaluated once per body position whose
// predicate gained facts. That position reads the delta, earlier positions
// read the facts known before the delta and later positions read the full
// database, so a combination of several new facts is joined once. A
// derivation that uses no new fact was already found in an earlier round.
type SemiNaiveEvaluator struct {
	opts   Options
	runner *roundRunner
}

// NewSemiNaiveEvaluator creates a semi-naive evaluator
func NewSemiNaiveEvaluator(opts Options) *SemiNaiveEvaluator {
	opts.Strategy = SemiNaive
	return &SemiNaiveEvaluator{opts: opts, runner: newRoundRunner(opts)}
}

// Evaluate computes the least fixpoint without annotations
func (e *SemiNaiveEvaluator) Evaluate(facts []datalog.Atom, rules []datalog.Rule) (*Result, error) {
	return e.EvaluateWithContext(&BaseContext{}, facts, rules)
}

// EvaluateWithContext computes the least fixpoint, reporting progress to ctx
func (e *SemiNaiveEvaluator) EvaluateWithContext(ctx Context, facts []datalog.Atom, rules []datalog.Rule) (*Result, error) {
	start := time.Now()
	stats := Stats{Strategy: SemiNaive}
	ctx.EvaluationBegin(SemiNaive, len(facts), len(rules))

	db, err := prepare(ctx, facts, rules, e.opts)
	if err != nil {
		ctx.EvaluationComplete(stats, 0, err)
		return nil, err
	}

	// Round 1 applies every rule to the EDB; its new facts are the first delta
	delta := storage.NewDatabase()
	for round := 1; round == 1 || !delta.IsEmpty(); round++ {
		active, match := rules, fullMatch(db)
		inputSize := db.Len()
		if round > 1 {
			active, match = deltaRules(rules, delta), deltaMatch(db.Difference(delta), delta, db)
			inputSize = delta.Len()
		}

		rs, err := ctx.ExecuteRound(round, inputSize, func() (RoundStats, error) {
			roundStart := time.Now()

			derived, candidates, err := e.runner.apply(ctx, round, active, match)
			if err != nil {
				return RoundStats{Round: round}, err
			}

			next := derived.Difference(db)
			db.Merge(next)
			delta = next
			observe(e.opts, round, db, delta)

			return RoundStats{
				Round:        round,
				RulesFired:   len(active),
				Candidates:   candidates,
				Derived:      delta.Len(),
				DatabaseSize: db.Len(),
				Elapsed:      time.Since(roundStart),
			}, nil
		})
		if err != nil {
			ctx.EvaluationComplete(stats, db.Len(), err)
			return nil, err
		}

		stats.record(rs)
	}

	stats.Elapsed = time.Since(start)
	ctx.EvaluationComplete(stats, db.Len(), nil)
	return newResult(db, facts, rules, stats), nil
}

// deltaRules keeps the rules with at least one body atom over a predicate
// that has new facts
func deltaRules(rules []datalog.Rule, delta *storage.Database) []datalog.Rule {
	var active []datalog.Rule
	for _, rule := range rules {
		for _, atom := range rule.Body {
			if !delta.Relation(atom.Predicate).IsEmpty() {
				active = append(active, rule)
				break
			}
		}
	}
	return active
}

// deltaMatch joins a rule once per body position with new facts: that
// position reads delta, earlier positions read old and later ones read full
func deltaMatch(old, delta, full *storage.Database) matchFunc {
	return func(rule datalog.Rule, stats *JoinStats) []datalog.Substitution {
		var out []datalog.Substitution
		for pos, atom := range rule.Body {
			if delta.Relation(atom.Predicate).IsEmpty() {
				continue
			}
			out = append(out, stats.JoinDelta(rule.Body, pos, old, delta, full)...)
		}
		return out
	}
}
