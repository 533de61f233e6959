// Package observability provides formatted console output for the pipeline.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/report-classifier/internal/store"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunHeader outputs the pre-run report: which task is running, where the
// data comes from and goes to, and how much work is left.
func (p *Printer) PrintRunHeader(task, input, output string, total, pending int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Task:     %s\n", task))
	sb.WriteString(fmt.Sprintf("Input:    %s\n", input))
	sb.WriteString(fmt.Sprintf("Output:   %s\n", output))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total reports:   %d\n", total))
	sb.WriteString(fmt.Sprintf("Pending reports: %d", pending))

	p.printBox("CLASSIFICATION RUN", sb.String())
}

// PrintSummary outputs the label distribution of the finished table with
// per-label percentages.
func (p *Printer) PrintSummary(rows []store.SummaryRow) {
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	for i, row := range rows {
		sb.WriteString(fmt.Sprintf("%-28s %5d  (%.1f%%)", row.Label, row.Count, row.Percent))
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CLASSIFICATION SUMMARY", sb.String())
}

// Progressf prints a plain progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Progressf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warnf prints a non-fatal warning line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintf(p.out, "Warning: "+format+"\n", args...)
}
