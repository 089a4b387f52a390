package output

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/verustcode/rulemap/internal/report"
	"github.com/verustcode/rulemap/internal/runner"
	"github.com/verustcode/rulemap/pkg/errors"
)

func init() {
	color.NoColor = true
}

func sampleSummary() *runner.Summary {
	return &runner.Summary{
		RunID:          "cs1abc",
		Input:          "akamai_export.json",
		Output:         "output.html",
		Nodes:          12,
		MappingEntries: 40,
		Behaviors:      report.JoinStats{Mapped: 20, Unmapped: 3, Unnamed: 1},
		Coverage:       report.Coverage{Seen: 11, Attached: 11},
		Duration:       1500 * time.Millisecond,
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(sampleSummary())
	out := buf.String()

	assert.Contains(t, out, "✓ Report generated in 1.5s")
	assert.Contains(t, out, "output.html")
	assert.Contains(t, out, "cs1abc")
	assert.Contains(t, out, "20 mapped, 3 unmapped, 1 unnamed")
	assert.NotContains(t, out, "PDF")
	assert.NotContains(t, out, "not attached")
}

func TestPrintSummary_OptionalRows(t *testing.T) {
	sum := sampleSummary()
	sum.PDF = "output.pdf"
	sum.MetricsFile = "rulemap.prom"

	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(sum)
	assert.Contains(t, buf.String(), "output.pdf")
	assert.Contains(t, buf.String(), "rulemap.prom")
}

func TestPrintSummary_CoverageWarning(t *testing.T) {
	sum := sampleSummary()
	sum.Coverage = report.Coverage{Seen: 14, Attached: 2}
	for i := 0; i < 12; i++ {
		sum.Coverage.Missing = append(sum.Coverage.Missing, fmt.Sprintf("child-%d", i))
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(sum)
	out := buf.String()

	assert.Contains(t, out, "⚠ Report generated")
	assert.Contains(t, out, "12 of 14 children were not attached")
	assert.Contains(t, out, "- child-0")
	assert.Contains(t, out, "- child-9")
	assert.NotContains(t, out, "- child-10")
	assert.Contains(t, out, "... and 2 more")
}

func TestPrintError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		var buf bytes.Buffer
		err := errors.Wrap(errors.ErrCodeMappingFetch, "failed to fetch mapping table", stderrors.New("connection refused"))
		NewPrinter(&buf).PrintError(fmt.Errorf("run: %w", err))

		out := buf.String()
		assert.Contains(t, out, "✗ Report generation failed [E3001]")
		assert.Contains(t, out, "failed to fetch mapping table")
		assert.Contains(t, out, "connection refused")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintError(stderrors.New("boom"))
		assert.Contains(t, buf.String(), "boom")
	})
}
