package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/safety"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

const closureProgram = `% transitive closure
edge(a, b).
edge(b, c).
path(X, Y) :- edge(X, Y).
path(X, Z) :- path(X, Y), edge(Y, Z).
`

func writeProgram(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "program.dl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEvalWritesOutput(t *testing.T) {
	for _, strategy := range []string{"naive", "seminaive"} {
		t.Run(strategy, func(t *testing.T) {
			dir := t.TempDir()
			prog := writeProgram(t, dir, closureProgram)
			out := filepath.Join(dir, "output.txt")

			_, _, err := run(t, "eval", prog, strategy, "-o", out)
			require.NoError(t, err)

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, "edge(a, b).\nedge(b, c).\npath(a, b).\npath(a, c).\npath(b, c).\n", string(data))
		})
	}
}

func TestEvalIDBOnly(t *testing.T) {
	dir := t.TempDir()
	prog := writeProgram(t, dir, closureProgram)
	out := filepath.Join(dir, "idb.txt")

	_, _, err := run(t, "eval", prog, "--idb-only", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "path(a, b).\npath(a, c).\npath(b, c).\n", string(data))
}

func TestEvalVerbose(t *testing.T) {
	dir := t.TempDir()
	prog := writeProgram(t, dir, closureProgram)

	stdout, stderr, err := run(t, "eval", prog, "--strategy", "naive", "-v", "-o", filepath.Join(dir, "o.txt"))
	require.NoError(t, err)

	assert.Regexp(t, `Naive evaluation: \d+\.\d{6} seconds`, stderr)
	assert.Contains(t, stderr, "Relation(path/2, 3 Tuples)")
	assert.Contains(t, stdout, "_Naive: 3 rounds_")
	assert.Contains(t, stdout, "EDB")
}

func TestEvalRejectsUnsafeProgramWithoutOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unground fact", "p(X).\n"},
		{"unsafe rule", "p(a).\nq(X, Y) :- p(X).\n"},
		{"parse error", "p(a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			prog := writeProgram(t, dir, tt.src)
			out := filepath.Join(dir, "output.txt")

			_, _, err := run(t, "eval", prog, "-o", out)
			require.Error(t, err)

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr), "output file must not be written")
		})
	}
}

func TestEvalUnknownStrategy(t *testing.T) {
	dir := t.TempDir()
	prog := writeProgram(t, dir, closureProgram)

	_, _, err := run(t, "eval", prog, "magic", "-o", filepath.Join(dir, "o.txt"))
	assert.ErrorContains(t, err, "unknown evaluation strategy")
}

func TestEvalConfigFile(t *testing.T) {
	dir := t.TempDir()
	prog := writeProgram(t, dir, closureProgram)
	out := filepath.Join(dir, "from-config.txt")
	cfgPath := filepath.Join(dir, "datalog.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("strategy: naive\nidb_only: true\noutput: "+out+"\n"), 0644))

	_, _, err := run(t, "eval", prog, "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "edge")
}

func TestSnapshotAndDump(t *testing.T) {
	dir := t.TempDir()
	prog := writeProgram(t, dir, closureProgram)
	snap := filepath.Join(dir, "snap")

	_, _, err := run(t, "eval", prog, "--snapshot", snap, "-o", filepath.Join(dir, "o.txt"))
	require.NoError(t, err)

	stdout, _, err := run(t, "dump", snap, "--meta")
	require.NoError(t, err)
	assert.Equal(t,
		"% strategy: seminaive\n% rounds: 3\n"+
			"edge(a, b).\nedge(b, c).\npath(a, b).\npath(a, c).\npath(b, c).\n",
		stdout)

	stdout, _, err = run(t, "dump", snap, "-p", "edge")
	require.NoError(t, err)
	assert.Equal(t, "edge(a, b).\nedge(b, c).\n", stdout)
}

func TestSnapshotL85Keys(t *testing.T) {
	dir := t.TempDir()
	prog := writeProgram(t, dir, closureProgram)
	snap := filepath.Join(dir, "snap")

	_, _, err := run(t, "eval", prog, "--snapshot", snap, "--snapshot-keys", "l85", "-o", filepath.Join(dir, "o.txt"))
	require.NoError(t, err)

	stdout, _, err := run(t, "dump", snap, "--keys", "l85", "-p", "path")
	require.NoError(t, err)
	assert.Equal(t, "path(a, b).\npath(a, c).\npath(b, c).\n", stdout)
}

func TestDumpMissingSnapshot(t *testing.T) {
	_, _, err := run(t, "dump", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "snapshot not found")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := run(t, "check", writeProgram(t, dir, closureProgram))
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok (2 facts, 2 rules)")

	_, _, err = run(t, "check", writeProgram(t, dir, "p(X).\n"))
	assert.ErrorIs(t, err, safety.ErrUnsafeProgram)

	_, _, err = run(t, "check", writeProgram(t, dir, "p(a).\np(a, b).\n"), "--strict-arity")
	assert.ErrorIs(t, err, safety.ErrUnsafeProgram)
}

func TestExamplePrograms(t *testing.T) {
	dir := t.TempDir()

	out := filepath.Join(dir, "family.txt")
	_, _, err := run(t, "eval", filepath.Join("..", "..", "examples", "family.dl"), "--idb-only", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cousin(dan, eve).")
	assert.Contains(t, string(data), "descends_from_ann(gus).")
	assert.NotContains(t, string(data), "parent(")

	_, _, err = run(t, "check", filepath.Join("..", "..", "examples", "closure.dl"))
	assert.NoError(t, err)
}

func TestRelationInfosMixedArity(t *testing.T) {
	db := storage.FromFacts([]datalog.Fact{
		datalog.NewFact("p", "a"),
		datalog.NewFact("p", "a", "b", "c"),
		datalog.NewFact("p", "b", "c"),
		datalog.NewFact("q"),
	})

	infos := relationInfos(db)
	require.Len(t, infos, 2)
	assert.Equal(t, "p", infos[0].Predicate)
	assert.Equal(t, 3, infos[0].Arity)
	assert.Equal(t, 3, infos[0].TupleCount)
	assert.Equal(t, 0, infos[1].Arity)
}
