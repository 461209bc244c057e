package storage

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/wbrown/janus-fixpoint/datalog"
)

// WriteText writes every fact as `pred(t1, t2).`, one per line, ordered by
// predicate and then tuple
func WriteText(w io.Writer, db *Database) error {
	return WriteTextFiltered(w, db, nil)
}

// WriteTextFiltered is WriteText restricted to predicates accepted by keep.
// A nil keep accepts everything.
func WriteTextFiltered(w io.Writer, db *Database, keep func(predicate string) bool) error {
	bw := bufio.NewWriter(w)
	var werr error
	db.Ascend(func(f datalog.Fact) bool {
		if keep != nil && !keep(f.Predicate) {
			return true
		}
		_, werr = fmt.Fprintln(bw, f.String())
		return werr == nil
	})
	if werr != nil {
		return fmt.Errorf("failed to write facts: %w", werr)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write facts: %w", err)
	}
	return nil
}

// FormatText returns the text form of db
func FormatText(db *Database) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteText(&sb, db)
	return sb.String()
}
