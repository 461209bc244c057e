package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/janus-fixpoint/datalog"
	"github.com/wbrown/janus-fixpoint/datalog/storage"
)

// TableFormatter renders evaluation results and statistics as markdown tables
type TableFormatter struct {
	// MaxRows limits FormatRelation output; 0 means no limit
	MaxRows int
}

// NewTableFormatter creates a new table formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxRows: 50,
	}
}

// FormatRoundStats renders one row per round plus a total row
func (tf *TableFormatter) FormatRoundStats(stats Stats) string {
	headers := []string{"round", "rules", "candidates", "derived", "database", "elapsed"}

	rows := make([][]string, 0, len(stats.PerRound)+1)
	for _, rs := range stats.PerRound {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rs.Round),
			fmt.Sprintf("%d", rs.RulesFired),
			fmt.Sprintf("%d", rs.Candidates),
			fmt.Sprintf("%d", rs.Derived),
			fmt.Sprintf("%d", rs.DatabaseSize),
			formatDuration(rs.Elapsed),
		})
	}
	rows = append(rows, []string{
		"total",
		"",
		fmt.Sprintf("%d", stats.Candidates),
		fmt.Sprintf("%d", stats.Derived),
		"",
		formatDuration(stats.Elapsed),
	})

	return fmt.Sprintf("_%s: %d rounds_\n\n", stats.Strategy.Title(), stats.Rounds) +
		tf.formatTable(headers, rows)
}

// FormatPredicates renders one row per predicate of the result database
func (tf *TableFormatter) FormatPredicates(result *Result) string {
	if result == nil || result.Database.IsEmpty() {
		return "_Empty database_"
	}

	edb := make(map[string]bool, len(result.EDB))
	for _, p := range result.EDB {
		edb[p] = true
	}

	headers := []string{"predicate", "kind", "arity", "tuples"}
	var rows [][]string
	for _, pred := range result.Database.Predicates() {
		rel := result.Database.Relation(pred)

		var kinds []string
		if edb[pred] {
			kinds = append(kinds, "EDB")
		}
		if result.IsIDB(pred) {
			kinds = append(kinds, "IDB")
		}

		rows = append(rows, []string{
			pred,
			strings.Join(kinds, "+"),
			arities(rel),
			fmt.Sprintf("%d", rel.Len()),
		})
	}

	return tf.formatTable(headers, rows)
}

// FormatRelation renders the tuples of one relation with positional column
// headers
func (tf *TableFormatter) FormatRelation(rel *storage.Relation) string {
	if rel.IsEmpty() {
		return "_Empty relation_"
	}

	width := 0
	rel.Ascend(func(t datalog.Tuple) bool {
		if len(t) > width {
			width = len(t)
		}
		return true
	})

	headers := make([]string, width)
	for i := range headers {
		headers[i] = fmt.Sprintf("%s.%d", rel.Predicate(), i)
	}

	var rows [][]string
	truncated := false
	rel.Ascend(func(t datalog.Tuple) bool {
		if tf.MaxRows > 0 && len(rows) >= tf.MaxRows {
			truncated = true
			return false
		}
		row := make([]string, width)
		for i, c := range t {
			row[i] = string(c)
		}
		rows = append(rows, row)
		return true
	})

	out := tf.formatTable(headers, rows)
	if truncated {
		out += fmt.Sprintf("_showing %d of %d rows_\n", len(rows), rel.Len())
	}
	return out
}

// formatTable formats headers and rows as a markdown table
func (tf *TableFormatter) formatTable(headers []string, rows [][]string) string {
	tableString := &strings.Builder{}

	// Create alignment array with all columns using AlignNone for simple separators
	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d rows_\n", len(rows)))
	return tableString.String()
}

// arities lists the distinct tuple lengths of a relation, e.g. "2" or "1,2"
func arities(rel *storage.Relation) string {
	seen := make(map[int]bool)
	rel.Ascend(func(t datalog.Tuple) bool {
		seen[len(t)] = true
		return true
	})

	lengths := make([]int, 0, len(seen))
	for n := range seen {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	parts := make([]string, len(lengths))
	for i, n := range lengths {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ",")
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}

// RoundStatsString returns the round table for stats
func RoundStatsString(stats Stats) string {
	return NewTableFormatter().FormatRoundStats(stats)
}
