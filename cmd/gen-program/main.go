package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbrown/janus-fixpoint/datalog/workload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		preset       string
		shape        string
		rules        string
		size         int
		edgesPerNode int
		seed         int64
		out          string
	)

	cmd := &cobra.Command{
		Use:   "gen-program",
		Short: "Write a synthetic graph program for benchmarking datalog eval",
		Example: `  gen-program --shape chain --size 200 --out chain.dl
  gen-program --preset large --out random.dl`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg workload.Config
			switch preset {
			case "default":
				cfg = workload.DefaultConfig()
			case "medium":
				cfg = workload.MediumConfig()
			case "large":
				cfg = workload.LargeConfig()
			default:
				return fmt.Errorf("unknown preset %q (use default, medium or large)", preset)
			}

			changed := cmd.Flags().Changed
			if changed("shape") {
				s, err := workload.ParseShape(shape)
				if err != nil {
					return err
				}
				cfg.Shape = s
			}
			if changed("rules") {
				rs, err := workload.ParseRuleSet(rules)
				if err != nil {
					return err
				}
				cfg.Rules = rs
			}
			if changed("size") {
				cfg.Size = size
			}
			if changed("edges") {
				cfg.EdgesPerNode = edgesPerNode
			}
			if changed("seed") {
				cfg.Seed = seed
			}
			if cfg.Shape == workload.Random && cfg.EdgesPerNode == 0 {
				cfg.EdgesPerNode = 3
			}

			if out == "" {
				prog, err := workload.Build(cfg)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), prog.String())
				return err
			}

			if err := workload.WriteFile(out, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s program (size %d, %s rules) to %s\n", cfg.Shape, cfg.Size, cfg.Rules, out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&preset, "preset", "default", "starting configuration: default, medium or large")
	f.StringVar(&shape, "shape", "chain", "graph shape: chain, cycle, grid or random")
	f.StringVar(&rules, "rules", "linear", "rule set: linear, nonlinear or samegen")
	f.IntVar(&size, "size", 20, "node count, or side length for grid")
	f.IntVar(&edgesPerNode, "edges", 3, "successors per node for random")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
