package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/annotations"
	"github.com/wbrown/janus-fixpoint/datalog/config"
	"github.com/wbrown/janus-fixpoint/datalog/executor"
	"github.com/wbrown/janus-fixpoint/datalog/parser"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

type evalFlags struct {
	configPath  string
	strategy    string
	output      string
	verbose     bool
	stats       bool
	parallel    bool
	workers     int
	idbOnly     bool
	strictArity bool
	snapshot    string
	keys        string
}

func newEvalCmd() *cobra.Command {
	var flags evalFlags

	cmd := &cobra.Command{
		Use:   "eval FILE [naive|seminaive]",
		Short: "Evaluate a program and write every fact to the output file",
		Example: `  datalog eval graph.dl
  datalog eval graph.dl naive -o closure.txt
  datalog eval graph.dl --strategy seminaive --parallel --verbose`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags, args)
			if err != nil {
				return err
			}
			return runEval(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML config file")
	f.StringVar(&flags.strategy, "strategy", "seminaive", "evaluation strategy: naive or seminaive")
	f.StringVarP(&flags.output, "output", "o", "output.txt", "output file")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "trace rounds and rule firings to stderr")
	f.BoolVar(&flags.stats, "stats", false, "print per-round statistics")
	f.BoolVar(&flags.parallel, "parallel", false, "fire the rules of a round concurrently")
	f.IntVar(&flags.workers, "workers", 0, "worker count for --parallel (0 = number of CPUs)")
	f.BoolVar(&flags.idbOnly, "idb-only", false, "write only derived predicates")
	f.BoolVar(&flags.strictArity, "strict-arity", false, "reject predicates used with more than one arity")
	f.StringVar(&flags.snapshot, "snapshot", "", "also save the result to a badger directory")
	f.StringVar(&flags.keys, "snapshot-keys", "binary", "snapshot key encoding: binary, text or l85")

	return cmd
}

// resolveConfig layers defaults, the config file, the environment, explicit
// flags and finally a positional strategy
func resolveConfig(cmd *cobra.Command, flags evalFlags, args []string) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment()

	changed := cmd.Flags().Changed
	if changed("strategy") {
		cfg.Strategy = flags.strategy
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if changed("stats") {
		cfg.Stats = flags.stats
	}
	if changed("parallel") {
		cfg.Parallel = flags.parallel
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("idb-only") {
		cfg.IDBOnly = flags.idbOnly
	}
	if changed("strict-arity") {
		cfg.StrictArity = flags.strictArity
	}
	if changed("snapshot") {
		cfg.Snapshot = flags.snapshot
	}
	if changed("snapshot-keys") {
		cfg.SnapshotKeys = flags.keys
	}
	if len(args) > 1 {
		cfg.Strategy = args[1]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runEval(stdout, stderr io.Writer, path string, cfg *config.Config) error {
	var handler annotations.Handler
	if cfg.Verbose {
		handler = annotations.NewOutputFormatter(stderr).Handle
	}

	prog, err := parser.ParseFile(path)
	if err != nil {
		if handler != nil {
			handler(annotations.Event{
				Name:  annotations.ErrorParse,
				Start: time.Now(),
				Data:  map[string]interface{}{"error": err.Error()},
			})
		}
		return err
	}

	opts := cfg.ExecutorOptions()
	ctx := executor.NewContext(handler)

	start := time.Now()
	result, err := executor.NewEvaluator(opts).EvaluateWithContext(ctx, prog.Facts, prog.Rules)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := writeOutput(cfg.Output, result, cfg.IDBOnly); err != nil {
		return err
	}

	if cfg.Snapshot != "" {
		if err := saveSnapshot(cfg.Snapshot, cfg.SnapshotKeys, result); err != nil {
			return err
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(stderr, "%s evaluation: %.6f seconds\n", opts.Strategy.Title(), elapsed.Seconds())
		fmt.Fprintln(stderr, annotations.NewRelationRenderer(false).RenderRelations(relationInfos(result.Database)))
	}

	if cfg.Verbose || cfg.Stats {
		tf := executor.NewTableFormatter()
		fmt.Fprintln(stdout, tf.FormatRoundStats(result.Stats))
		fmt.Fprintln(stdout, tf.FormatPredicates(result))
	}

	return nil
}

// writeOutput writes the canonical text form. The file is only created once
// evaluation has succeeded.
func writeOutput(path string, result *executor.Result, idbOnly bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if idbOnly {
		err = storage.WriteTextFiltered(w, result.Database, result.IsIDB)
	} else {
		err = storage.WriteText(w, result.Database)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

func saveSnapshot(dir, keys string, result *executor.Result) error {
	strategy, err := storage.ParseKeyEncoding(keys)
	if err != nil {
		return err
	}
	store, err := storage.NewBadgerStore(dir, storage.NewKeyEncoder(strategy))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveDatabase(result.Database); err != nil {
		return err
	}
	if err := store.SetMeta("strategy", string(result.Stats.Strategy)); err != nil {
		return err
	}
	return store.SetMeta("rounds", strconv.Itoa(result.Stats.Rounds))
}

// relationInfos summarises each predicate; a predicate used with several
// arities reports the largest
func relationInfos(db *storage.Database) []annotations.RelationInfo {
	var infos []annotations.RelationInfo
	for _, pred := range db.Predicates() {
		rel := db.Relation(pred)
		info := annotations.RelationInfo{Predicate: pred, TupleCount: rel.Len()}
		rel.Ascend(func(t datalog.Tuple) bool {
			if len(t) > info.Arity {
				info.Arity = len(t)
			}
			return true
		})
		infos = append(infos, info)
	}
	return infos
}
