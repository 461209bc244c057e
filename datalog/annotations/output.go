package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
	renderer *RelationRenderer
	mu       sync.Mutex
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stderr
	}

	// Auto-detect color support
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}

	return NewOutputFormatterWithColor(w, useColor)
}

// NewOutputFormatterWithColor creates a formatter with color forced on or off.
func NewOutputFormatterWithColor(w io.Writer, useColor bool) *OutputFormatter {
	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
		renderer: NewRelationRenderer(useColor),
	}
}

// Handle implements the Handler interface - prints events as they occur.
// Safe for concurrent use.
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintln(f.writer, output)
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case EvalBegin:
		return fmt.Sprintf("%s %s %s evaluation of %s and %s",
			latency,
			f.colorize("===", color.FgYellow),
			stringValue(event.Data, "strategy"),
			f.colorizeCount("facts", intValue(event.Data, "facts.count")),
			f.colorizeCount("rules", intValue(event.Data, "rules.count")))

	case RoundBegin:
		return fmt.Sprintf("%s %s Round %d starting from %s",
			latency,
			f.colorize("---", color.FgYellow),
			intValue(event.Data, "round"),
			f.colorizeCount("tuples", intValue(event.Data, "input.count")))

	case RoundComplete:
		return fmt.Sprintf("%s Round %d derived %s (%s, %s visited)",
			latency,
			intValue(event.Data, "round"),
			f.colorizeCount("new tuples", intValue(event.Data, "derived.count")),
			f.colorizeCount("tuples", intValue(event.Data, "database.count")),
			f.colorizeCount("candidates", intValue(event.Data, "candidates")))

	case RuleFired:
		rule := stringValue(event.Data, "rule")
		if f.useColor {
			rule = color.CyanString(rule)
		}
		derived := f.renderer.RenderRelationWithAttrs(
			[]string{stringValue(event.Data, "head")},
			intValue(event.Data, "derived.count"))
		return fmt.Sprintf("%s   %s %s %s (%s)",
			latency,
			rule,
			f.colorize("→", color.FgYellow),
			derived,
			f.colorizeCount("candidates", intValue(event.Data, "candidates")))

	case EvalComplete:
		if success, _ := event.Data["success"].(bool); !success {
			return fmt.Sprintf("%s %s Evaluation failed: %v",
				latency,
				f.colorize("✗", color.FgRed),
				event.Data["error"])
		}
		return fmt.Sprintf("%s %s Fixpoint after %d rounds with %s (%s derived).",
			latency,
			f.colorize("===", color.FgGreen),
			intValue(event.Data, "rounds"),
			f.colorizeCount("tuples", intValue(event.Data, "database.count")),
			f.colorizeCount("tuples", intValue(event.Data, "derived.count")))

	case ErrorParse, ErrorSafety:
		return fmt.Sprintf("%s %s %v",
			latency,
			f.colorize("✗", color.FgRed),
			event.Data["error"])

	default:
		// Generic format for unknown events
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	// Use microseconds for sub-millisecond durations
	if d < time.Millisecond {
		us := d.Microseconds()
		s := fmt.Sprintf("[%dµs]", us)
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	// Use floating-point milliseconds to preserve precision
	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch strings.ToLower(label) {
	case "rules":
		return color.CyanString(text)
	case "tuples", "new tuples", "facts":
		return color.MagentaString(text)
	case "candidates":
		return color.BlueString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// intValue reads a count from event data. Counts may be recorded as int or
// int64.
func intValue(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func stringValue(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

// ConsoleHandler creates a handler that prints formatted events to stderr.
func ConsoleHandler() Handler {
	return NewOutputFormatter(os.Stderr).Handle
}

// isTerminal checks if the file descriptor is a terminal.
func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
