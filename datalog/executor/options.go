package executor

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// Strategy selects the fixpoint algorithm
type Strategy string

const (
	Naive     Strategy = "naive"
	SemiNaive Strategy = "seminaive"
)

// ParseStrategy accepts the CLI spellings of a strategy, case-insensitively.
// "semi-naive" is accepted as an alias of "seminaive".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive":
		return Naive, nil
	case "seminaive", "semi-naive", "semi_naive":
		return SemiNaive, nil
	default:
		return "", fmt.Errorf("unknown evaluation strategy %q (want naive or seminaive)", s)
	}
}

// Title is the display name used in timing output
func (s Strategy) Title() string {
	switch s {
	case Naive:
		return "Naive"
	case SemiNaive:
		return "Semi-naive"
	default:
		return string(s)
	}
}

// RoundInfo describes the state after one round's fold. Database and Delta
// are live views, valid only for the duration of the observer call, and must
// not be modified.
type RoundInfo struct {
	Round    int
	Database *storage.Database
	Delta    *storage.Database

	// DatabaseSize and DeltaSize are tuple counts
	DatabaseSize int
	DeltaSize    int
}

// RoundObserver is called once per round, from the evaluating goroutine
type RoundObserver func(RoundInfo)

// Options configures an evaluation
type Options struct {
	Strategy Strategy

	// Parallel evaluation of the rules within a round
	Parallel   bool
	MaxWorkers int // 0 = use NumCPU

	// StrictArity rejects programs that use a predicate with more than one
	// arity instead of letting mismatched atoms match nothing
	StrictArity bool

	Observer RoundObserver
}

// DefaultOptions returns sequential semi-naive evaluation
func DefaultOptions() Options {
	return Options{
		Strategy: SemiNaive,
	}
}
