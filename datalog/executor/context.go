package executor

import (
	"time"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/annotations"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// RuleResult is what one rule produced in one round. Derived is private to
// the rule until the round's merge.
type RuleResult struct {
	Derived    *storage.Database
	Candidates int64
}

// Context provides annotation points for evaluation tracking.
// FireRule may be called from several goroutines at once.
type Context interface {
	// Evaluation lifecycle
	EvaluationBegin(strategy Strategy, factCount, ruleCount int)
	EvaluationComplete(stats Stats, databaseSize int, err error)
	SafetyRejected(err error)

	// Rounds and the rules within them
	ExecuteRound(round, inputSize int, fn func() (RoundStats, error)) (RoundStats, error)
	FireRule(round int, rule datalog.Rule, fn func() (RuleResult, error)) (RuleResult, error)

	// Get underlying collector
	Collector() *annotations.Collector
}

// BaseContext provides a no-op implementation with zero overhead.
type BaseContext struct{}

// NewContext creates an appropriate context based on whether annotations are needed.
func NewContext(handler annotations.Handler) Context {
	if handler == nil {
		return &BaseContext{}
	}
	return &AnnotatedContext{
		collector: annotations.NewCollector(handler),
	}
}

// BaseContext implementations - all are simple pass-throughs

func (c *BaseContext) EvaluationBegin(strategy Strategy, factCount, ruleCount int) {}

func (c *BaseContext) EvaluationComplete(stats Stats, databaseSize int, err error) {}

func (c *BaseContext) SafetyRejected(err error) {}

func (c *BaseContext) ExecuteRound(round, inputSize int, fn func() (RoundStats, error)) (RoundStats, error) {
	return fn()
}

func (c *BaseContext) FireRule(round int, rule datalog.Rule, fn func() (RuleResult, error)) (RuleResult, error) {
	return fn()
}

func (c *BaseContext) Collector() *annotations.Collector {
	return nil
}

// AnnotatedContext provides full annotation tracking
type AnnotatedContext struct {
	BaseContext
	collector *annotations.Collector
	evalStart time.Time
}

func (c *AnnotatedContext) EvaluationBegin(strategy Strategy, factCount, ruleCount int) {
	c.evalStart = time.Now()
	c.collector.Add(annotations.Event{
		Name:  annotations.EvalBegin,
		Start: c.evalStart,
		Data: map[string]interface{}{
			"strategy":    strategy.Title(),
			"facts.count": factCount,
			"rules.count": ruleCount,
		},
	})
}

func (c *AnnotatedContext) EvaluationComplete(stats Stats, databaseSize int, err error) {
	data := map[string]interface{}{
		"strategy":       stats.Strategy.Title(),
		"rounds":         stats.Rounds,
		"database.count": databaseSize,
		"derived.count":  stats.Derived,
		"candidates":     stats.Candidates,
		"success":        err == nil,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	c.collector.AddTiming(annotations.EvalComplete, c.evalStart, data)
}

func (c *AnnotatedContext) SafetyRejected(err error) {
	c.collector.Add(annotations.Event{
		Name:  annotations.ErrorSafety,
		Start: time.Now(),
		Data: map[string]interface{}{
			"error": err.Error(),
		},
	})
}

func (c *AnnotatedContext) ExecuteRound(round, inputSize int, fn func() (RoundStats, error)) (RoundStats, error) {
	start := time.Now()

	c.collector.Add(annotations.Event{
		Name:  annotations.RoundBegin,
		Start: start,
		Data: map[string]interface{}{
			"round":       round,
			"input.count": inputSize,
		},
	})

	stats, err := fn()

	data := map[string]interface{}{
		"round":          round,
		"rules.fired":    stats.RulesFired,
		"derived.count":  stats.Derived,
		"database.count": stats.DatabaseSize,
		"candidates":     stats.Candidates,
		"success":        err == nil,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	c.collector.AddTiming(annotations.RoundComplete, start, data)
	return stats, err
}

func (c *AnnotatedContext) FireRule(round int, rule datalog.Rule, fn func() (RuleResult, error)) (RuleResult, error) {
	start := time.Now()
	result, err := fn()

	data := map[string]interface{}{
		"round":         round,
		"rule":          rule.String(),
		"head":          rule.Head.Predicate,
		"derived.count": result.Derived.Len(),
		"candidates":    result.Candidates,
		"success":       err == nil,
	}

	if err != nil {
		data["error"] = err.Error()
	}

	c.collector.AddTiming(annotations.RuleFired, start, data)
	return result, err
}

func (c *AnnotatedContext) Collector() *annotations.Collector {
	return c.collector
}
