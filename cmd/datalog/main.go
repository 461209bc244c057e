package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "datalog",
		Short: "Evaluate positive Datalog programs to their least fixpoint",
		Long: `datalog reads a program of facts and rules, rejects unsafe programs,
and computes every derivable fact with naive or semi-naive evaluation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newEvalCmd(), newCheckCmd(), newDumpCmd())
	return root
}
