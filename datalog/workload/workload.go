// Package workload generates synthetic Datalog programs for tests,
// benchmarks and the gen-program tool.
package workload

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/parser"
)

// Shape is the edge structure of the generated graph
type Shape string

const (
	Chain  Shape = "chain"  // n0 -> n1 -> ... -> n(size-1)
	Cycle  Shape = "cycle"  // chain plus n(size-1) -> n0
	Grid   Shape = "grid"   // size x size lattice, edges right and down
	Random Shape = "random" // EdgesPerNode random successors per node
)

// RuleSet selects the rules evaluated over edge facts
type RuleSet string

const (
	// LinearClosure: path(X,Y) :- edge(X,Y). path(X,Z) :- path(X,Y), edge(Y,Z).
	LinearClosure RuleSet = "linear"
	// NonlinearClosure joins path with itself
	NonlinearClosure RuleSet = "nonlinear"
	// SameGeneration derives sg(X,Y) for nodes at the same depth below a
	// common ancestor
	SameGeneration RuleSet = "samegen"
)

// Config specifies what kind of program to build
type Config struct {
	Shape        Shape
	Size         int     // Nodes (chain, cycle, random) or side length (grid)
	EdgesPerNode int     // Random shape only
	Seed         int64   // Random shape only
	Rules        RuleSet // Defaults to LinearClosure
}

// DefaultConfig returns a small chain: 20 nodes, 190 paths
func DefaultConfig() Config {
	return Config{
		Shape: Chain,
		Size:  20,
		Rules: LinearClosure,
	}
}

// MediumConfig returns a chain of 200 nodes: 19,900 paths
func MediumConfig() Config {
	return Config{
		Shape: Chain,
		Size:  200,
		Rules: LinearClosure,
	}
}

// LargeConfig returns a random graph of 1,000 nodes with 3 edges each
func LargeConfig() Config {
	return Config{
		Shape:        Random,
		Size:         1000,
		EdgesPerNode: 3,
		Seed:         1,
		Rules:        LinearClosure,
	}
}

// ParseShape validates a shape name
func ParseShape(s string) (Shape, error) {
	switch shape := Shape(strings.ToLower(s)); shape {
	case Chain, Cycle, Grid, Random:
		return shape, nil
	default:
		return "", fmt.Errorf("unknown shape %q (want chain, cycle, grid or random)", s)
	}
}

// ParseRuleSet validates a rule set name
func ParseRuleSet(s string) (RuleSet, error) {
	switch rs := RuleSet(strings.ToLower(s)); rs {
	case LinearClosure, NonlinearClosure, SameGeneration:
		return rs, nil
	default:
		return "", fmt.Errorf("unknown rule set %q (want linear, nonlinear or samegen)", s)
	}
}

// Build generates the program described by config
func Build(config Config) (*parser.Program, error) {
	if config.Size < 1 {
		return nil, fmt.Errorf("size must be positive, got %d", config.Size)
	}
	if config.Rules == "" {
		config.Rules = LinearClosure
	}

	var edges [][2]string
	switch config.Shape {
	case Chain, Cycle:
		for i := 0; i+1 < config.Size; i++ {
			edges = append(edges, [2]string{node(i), node(i + 1)})
		}
		if config.Shape == Cycle && config.Size > 1 {
			edges = append(edges, [2]string{node(config.Size - 1), node(0)})
		}

	case Grid:
		for r := 0; r < config.Size; r++ {
			for c := 0; c < config.Size; c++ {
				if c+1 < config.Size {
					edges = append(edges, [2]string{cell(r, c), cell(r, c+1)})
				}
				if r+1 < config.Size {
					edges = append(edges, [2]string{cell(r, c), cell(r+1, c)})
				}
			}
		}

	case Random:
		if config.EdgesPerNode < 1 {
			return nil, fmt.Errorf("random shape needs EdgesPerNode >= 1")
		}
		rng := rand.New(rand.NewSource(config.Seed))
		seen := make(map[[2]string]bool)
		for i := 0; i < config.Size; i++ {
			for k := 0; k < config.EdgesPerNode; k++ {
				e := [2]string{node(i), node(rng.Intn(config.Size))}
				if !seen[e] {
					seen[e] = true
					edges = append(edges, e)
				}
			}
		}

	default:
		return nil, fmt.Errorf("unknown shape %q", config.Shape)
	}

	rules, err := rulesFor(config.Rules)
	if err != nil {
		return nil, err
	}

	prog := &parser.Program{Rules: rules}
	for _, e := range edges {
		prog.Facts = append(prog.Facts, datalog.NewAtom("edge",
			datalog.NewConstant(e[0]), datalog.NewConstant(e[1])))
	}
	return prog, nil
}

// WriteFile builds the program and writes it in source form to path
func WriteFile(path string, config Config) error {
	prog, err := Build(config)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(prog.String()), 0644); err != nil {
		return fmt.Errorf("failed to write program: %w", err)
	}
	return nil
}

func rulesFor(rs RuleSet) ([]datalog.Rule, error) {
	x, y, z := datalog.NewVariable("X"), datalog.NewVariable("Y"), datalog.NewVariable("Z")
	edge := func(a, b datalog.Term) datalog.Atom { return datalog.NewAtom("edge", a, b) }
	path := func(a, b datalog.Term) datalog.Atom { return datalog.NewAtom("path", a, b) }

	switch rs {
	case LinearClosure:
		return []datalog.Rule{
			datalog.NewRule(path(x, y), edge(x, y)),
			datalog.NewRule(path(x, z), path(x, y), edge(y, z)),
		}, nil

	case NonlinearClosure:
		return []datalog.Rule{
			datalog.NewRule(path(x, y), edge(x, y)),
			datalog.NewRule(path(x, z), path(x, y), path(y, z)),
		}, nil

	case SameGeneration:
		// sg(X,Y) :- edge(P,X), edge(P,Y).
		// sg(X,Y) :- edge(A,X), sg(A,B), edge(B,Y).
		p, a, b := datalog.NewVariable("P"), datalog.NewVariable("A"), datalog.NewVariable("B")
		sg := func(l, r datalog.Term) datalog.Atom { return datalog.NewAtom("sg", l, r) }
		return []datalog.Rule{
			datalog.NewRule(sg(x, y), edge(p, x), edge(p, y)),
			datalog.NewRule(sg(x, y), edge(a, x), sg(a, b), edge(b, y)),
		}, nil

	default:
		return nil, fmt.Errorf("unknown rule set %q", rs)
	}
}

func node(i int) string { return fmt.Sprintf("n%d", i) }

func cell(r, c int) string { return fmt.Sprintf("n%d_%d", r, c) }
