package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

func newDumpCmd() *cobra.Command {
	var predicate string
	var meta bool
	var keys string

	cmd := &cobra.Command{
		Use:   "dump DIR",
		Short: "Print the facts of a badger snapshot in canonical text form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening a missing path would create an empty store
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("snapshot not found: %w", err)
			}

			strategy, err := storage.ParseKeyEncoding(keys)
			if err != nil {
				return err
			}
			store, err := storage.NewBadgerStore(args[0], storage.NewKeyEncoder(strategy))
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if meta {
				for _, key := range []string{"strategy", "rounds"} {
					if v, ok, err := store.Meta(key); err != nil {
						return err
					} else if ok {
						fmt.Fprintf(out, "%% %s: %s\n", key, v)
					}
				}
			}

			db := storage.NewDatabase()
			if predicate != "" {
				rel, err := store.LoadRelation(predicate)
				if err != nil {
					return err
				}
				rel.Ascend(func(t datalog.Tuple) bool {
					db.AddTuple(predicate, t)
					return true
				})
			} else if db, err = store.LoadDatabase(); err != nil {
				return err
			}

			return storage.WriteText(out, db)
		},
	}

	cmd.Flags().StringVarP(&predicate, "predicate", "p", "", "only print this predicate")
	cmd.Flags().BoolVar(&meta, "meta", false, "print snapshot metadata as comments first")
	cmd.Flags().StringVar(&keys, "keys", "binary", "key encoding the snapshot was written with")
	return cmd
}
