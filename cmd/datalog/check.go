package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wbrown/janus-fixpoint/datalog/parser"
	"github.com/wbrown/janus-fixpoint/datalog/safety"
)

func newCheckCmd() *cobra.Command {
	var strictArity bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Parse a program and run the safety checks without evaluating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}
			err = safety.CheckWithOptions(prog.Facts, prog.Rules, safety.Options{StrictArity: strictArity})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d facts, %d rules)\n", args[0], len(prog.Facts), len(prog.Rules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strictArity, "strict-arity", false, "reject predicates used with more than one arity")
	return cmd
}
