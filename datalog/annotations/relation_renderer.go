package annotations

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// RelationInfo is the summary of one predicate's relation used for rendering
type RelationInfo struct {
	Predicate  string
	Arity      int
	TupleCount int
}

// RelationRenderer provides pretty-printing for relation summaries
type RelationRenderer struct {
	useColor bool
}

// NewRelationRenderer creates a new relation renderer
func NewRelationRenderer(useColor bool) *RelationRenderer {
	return &RelationRenderer{useColor: useColor}
}

// RenderRelation renders a single relation as Relation(pred/arity, N Tuples)
func (r *RelationRenderer) RenderRelation(rel RelationInfo) string {
	name := fmt.Sprintf("%s/%d", rel.Predicate, rel.Arity)

	if r.useColor {
		return fmt.Sprintf("%s%s%s%s%s",
			color.BlueString("Relation("),
			color.CyanString(name),
			color.BlueString(", "),
			r.colorizeCount("Tuples", rel.TupleCount),
			color.BlueString(")"))
	}

	return fmt.Sprintf("Relation(%s, %d Tuples)", name, rel.TupleCount)
}

// RenderRelations renders multiple relations as a string
func (r *RelationRenderer) RenderRelations(rels []RelationInfo) string {
	parts := make([]string, len(rels))
	for i, rel := range rels {
		parts[i] = r.RenderRelation(rel)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RenderRelationWithAttrs renders with just attrs and tuple count. A negative
// count omits it.
func (r *RelationRenderer) RenderRelationWithAttrs(attrs []string, tupleCount int) string {
	attrList := strings.Join(attrs, " ")

	if r.useColor {
		result := fmt.Sprintf("%s%s%s",
			color.BlueString("Relation(["),
			color.CyanString(attrList),
			color.BlueString("]"))

		if tupleCount >= 0 {
			result += fmt.Sprintf("%s%s%s",
				color.BlueString(", "),
				r.colorizeCount("Tuples", tupleCount),
				color.BlueString(")"))
		} else {
			result += color.BlueString(")")
		}
		return result
	}

	if tupleCount >= 0 {
		return fmt.Sprintf("Relation([%s], %d Tuples)", attrList, tupleCount)
	}
	return fmt.Sprintf("Relation([%s])", attrList)
}

// colorizeCount formats a count with color based on size
func (r *RelationRenderer) colorizeCount(label string, count int) string {
	if !r.useColor {
		return fmt.Sprintf("%d %s", count, label)
	}

	countStr := fmt.Sprintf("%d", count)

	// Color based on size
	switch {
	case count == 0:
		countStr = color.RedString(countStr)
	case count < 100:
		countStr = color.GreenString(countStr)
	case count < 10000:
		countStr = color.YellowString(countStr)
	default:
		countStr = color.RedString(countStr)
	}

	return fmt.Sprintf("%s %s", countStr, label)
}
