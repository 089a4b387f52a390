// Package output prints run results to the console.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/verustcode/rulemap/internal/runner"
	"github.com/verustcode/rulemap/pkg/errors"
)

// maxMissingShown caps the names listed for the coverage warning
const maxMissingShown = 10

// Printer writes human readable run summaries
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w, or stdout when w is nil
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w}
}

// PrintSummary prints the outcome of a successful run
func (p *Printer) PrintSummary(sum *runner.Summary) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	p.printSeparator()
	if sum.Coverage.Warning() {
		yellow.Fprint(p.w, "⚠ Report generated")
	} else {
		green.Fprint(p.w, "✓ Report generated")
	}
	fmt.Fprintf(p.w, " in %s\n", sum.Duration.Round(time.Millisecond))

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(18)
	rows := [][2]string{
		{"Run", sum.RunID},
		{"Input", sum.Input},
		{"Output", sum.Output},
		{"Rule nodes", fmt.Sprintf("%d", sum.Nodes)},
		{"Mapping entries", fmt.Sprintf("%d", sum.MappingEntries)},
		{"Behaviors", fmt.Sprintf("%d mapped, %d unmapped, %d unnamed",
			sum.Behaviors.Mapped, sum.Behaviors.Unmapped, sum.Behaviors.Unnamed)},
	}
	if sum.PDF != "" {
		rows = append(rows, [2]string{"PDF", sum.PDF})
	}
	if sum.MetricsFile != "" {
		rows = append(rows, [2]string{"Metrics", sum.MetricsFile})
	}
	for _, row := range rows {
		fmt.Fprintf(p.w, "  %s%s\n", label.Render(row[0]), row[1])
	}

	if sum.Coverage.Warning() {
		p.printCoverage(sum)
	}
}

func (p *Printer) printCoverage(sum *runner.Summary) {
	yellow := color.New(color.FgYellow)

	missing := sum.Coverage.Missing
	more := 0
	if len(missing) > maxMissingShown {
		more = len(missing) - maxMissingShown
		missing = missing[:maxMissingShown]
	}

	yellow.Fprintf(p.w, "  %d of %d children were not attached to a rule:\n",
		sum.Coverage.Excess(), sum.Coverage.Seen)
	for _, name := range missing {
		fmt.Fprintf(p.w, "    - %s\n", name)
	}
	if more > 0 {
		fmt.Fprintf(p.w, "    ... and %d more\n", more)
	}
}

// PrintError prints a failed run, with the error code when there is one
func (p *Printer) PrintError(err error) {
	red := color.New(color.FgRed, color.Bold)

	p.printSeparator()
	red.Fprint(p.w, "✗ Report generation failed")
	if appErr, ok := errors.AsAppError(err); ok {
		fmt.Fprintf(p.w, " [%s]\n  %s\n", appErr.Code, appErr.Message)
		if appErr.Err != nil {
			fmt.Fprintf(p.w, "  %s\n", appErr.Err)
		}
		return
	}
	fmt.Fprintf(p.w, "\n  %s\n", err)
}

func (p *Printer) printSeparator() {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fmt.Fprintln(p.w, style.Render(strings.Repeat("─", 50)))
}
