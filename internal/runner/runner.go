// Package runner executes one report generation: load the export, flatten it,
// fetch the mapping table, render the page and write it out.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/rulemap/internal/config"
	"github.com/verustcode/rulemap/internal/mapping"
	"github.com/verustcode/rulemap/internal/report"
	"github.com/verustcode/rulemap/internal/report/exporter"
	"github.com/verustcode/rulemap/internal/ruletree"
	"github.com/verustcode/rulemap/pkg/idgen"
	"github.com/verustcode/rulemap/pkg/logger"
	"github.com/verustcode/rulemap/pkg/telemetry"
)

// Pipeline stages, in execution order
const (
	StageLoad    = "load"
	StageFlatten = "flatten"
	StageMapping = "mapping"
	StageRender  = "render"
	StageWrite   = "write"
	StagePDF     = "pdf"
)

// Summary describes a finished run
type Summary struct {
	RunID          string
	Input          string
	Output         string
	PDF            string
	MetricsFile    string
	Nodes          int
	Behaviors      report.JoinStats
	MappingEntries int
	Coverage       report.Coverage
	StartedAt      time.Time
	Duration       time.Duration
}

// Runner runs the pipeline for one configuration
type Runner struct {
	cfg     *config.Config
	loader  *mapping.Loader
	exports *exporter.ExportManager
	metrics *telemetry.Metrics
	now     func() time.Time
}

// Option customises a Runner
type Option func(*Runner)

// WithMappingLoader replaces the HTTP loader built from the config
func WithMappingLoader(l *mapping.Loader) Option {
	return func(r *Runner) { r.loader = l }
}

// WithExportManager replaces the default HTML/PDF exporters
func WithExportManager(m *exporter.ExportManager) Option {
	return func(r *Runner) { r.exports = m }
}

// WithClock overrides the time source used for the report footer
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner. cfg is expected to be validated.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		metrics: telemetry.NewMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = mapping.NewLoader(cfg.Mapping.Timeout)
	}
	if r.exports == nil {
		pdfOpts := exporter.DefaultPDFOptions()
		pdfOpts.Timeout = cfg.Export.PDFTimeout
		pdfOpts.ChromePath = cfg.Export.ChromePath
		r.exports = exporter.NewDefaultExportManager(pdfOpts)
	}
	return r
}

// Metrics exposes the run's metric set
func (r *Runner) Metrics() *telemetry.Metrics {
	return r.metrics
}

// Run executes every stage in order. The first failing stage aborts the run
// and its error is returned unchanged.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		RunID:       idgen.NewRunID(),
		Input:       r.cfg.Input,
		Output:      r.cfg.Output,
		PDF:         r.cfg.PDFOutputPath(),
		MetricsFile: r.cfg.Telemetry.MetricsFile,
		StartedAt:   r.now(),
	}
	log := logger.WithRunID(sum.RunID)

	ctx, span := telemetry.StartSpan(ctx, "rulemap.run",
		telemetry.WithRunAttributes(sum.RunID, "run"),
	)
	defer span.End()

	log.Info("Starting report generation",
		zap.String("input", sum.Input),
		zap.String("output", sum.Output),
		zap.String("mapping_url", r.cfg.Mapping.URL),
	)

	err := r.run(ctx, sum, log)
	sum.Duration = r.now().Sub(sum.StartedAt)
	r.finish(sum, err, log)

	if err != nil {
		telemetry.SetSpanError(span, err)
		log.Error("Report generation failed", zap.Error(err), zap.Duration("duration", sum.Duration))
		return sum, err
	}
	telemetry.SetSpanOK(span)
	log.Info("Report generation completed",
		zap.Int("nodes", sum.Nodes),
		zap.Int("behaviors_mapped", sum.Behaviors.Mapped),
		zap.Duration("duration", sum.Duration),
	)
	return sum, nil
}

func (r *Runner) run(ctx context.Context, sum *Summary, log *zap.Logger) error {
	treeOpts := []ruletree.Option{ruletree.WithMaxDepth(r.cfg.Tree.MaxDepth)}

	var value *ruletree.Value
	err := r.stage(ctx, sum.RunID, StageLoad, func(context.Context) error {
		var err error
		value, err = ruletree.LoadFile(sum.Input, treeOpts...)
		return err
	})
	if err != nil {
		return err
	}

	var result ruletree.Result
	err = r.stage(ctx, sum.RunID, StageFlatten, func(context.Context) error {
		root, err := ruletree.Parse(value, treeOpts...)
		if err != nil {
			return err
		}
		result, err = ruletree.Flatten(root, treeOpts...)
		return err
	})
	if err != nil {
		return err
	}
	sum.Nodes = len(result.Nodes)
	sum.Coverage = report.ComputeCoverage(result)
	log.Info("Flattened rule tree",
		zap.Int("nodes", sum.Nodes),
		zap.Int("children_seen", sum.Coverage.Seen),
		zap.Int("children_attached", sum.Coverage.Attached),
	)
	if sum.Coverage.Warning() {
		log.Warn("Some children were not captured as rule nodes",
			zap.Int("excess", sum.Coverage.Excess()),
			zap.Strings("missing", sum.Coverage.Missing),
		)
	}

	var table mapping.Table
	err = r.stage(ctx, sum.RunID, StageMapping, func(ctx context.Context) error {
		var err error
		table, err = r.loader.Load(ctx, r.cfg.Mapping.URL)
		return err
	})
	if err != nil {
		return err
	}
	sum.MappingEntries = len(table)
	log.Info("Loaded mapping table", zap.Int("entries", sum.MappingEntries))

	opts := r.cfg.Render
	opts.RunID = sum.RunID
	opts.GeneratedAt = sum.StartedAt

	var page []byte
	err = r.stage(ctx, sum.RunID, StageRender, func(context.Context) error {
		doc := report.Build(result, table, opts)
		sum.Behaviors = doc.Stats
		var err error
		page, err = doc.Render()
		return err
	})
	if err != nil {
		return err
	}
	log.Debug("Rendered report",
		zap.Int("bytes", len(page)),
		zap.Int("behaviors_unmapped", sum.Behaviors.Unmapped),
		zap.Int("behaviors_unnamed", sum.Behaviors.Unnamed),
	)

	err = r.stage(ctx, sum.RunID, StageWrite, func(ctx context.Context) error {
		return r.exports.ExportToFile(ctx, exporter.ExportFormatHTML, page, sum.Output)
	})
	if err != nil {
		return err
	}

	if sum.PDF == "" {
		return nil
	}
	return r.stage(ctx, sum.RunID, StagePDF, func(ctx context.Context) error {
		opts.PrintMode = true
		printable, err := report.Render(result, table, opts)
		if err != nil {
			return err
		}
		return r.exports.ExportToFile(ctx, exporter.ExportFormatPDF, printable, sum.PDF)
	})
}

// stage runs fn inside a span and records its duration
func (r *Runner) stage(ctx context.Context, runID, name string, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "rulemap."+name,
		telemetry.WithRunAttributes(runID, name),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	r.metrics.ObserveStage(name, time.Since(start))

	if err != nil {
		telemetry.SetSpanError(span, err)
		return err
	}
	telemetry.SetSpanOK(span)
	return nil
}

// finish records the outcome metrics and writes the textfile when configured.
// A textfile failure is logged and does not fail the run.
func (r *Runner) finish(sum *Summary, runErr error, log *zap.Logger) {
	r.metrics.NodesFlattened.Set(float64(sum.Nodes))
	r.metrics.MappingEntries.Set(float64(sum.MappingEntries))
	r.metrics.CoverageExcess.Set(float64(sum.Coverage.Excess()))
	r.metrics.BehaviorsTotal.WithLabelValues("mapped").Set(float64(sum.Behaviors.Mapped))
	r.metrics.BehaviorsTotal.WithLabelValues("unmapped").Set(float64(sum.Behaviors.Unmapped))
	r.metrics.BehaviorsTotal.WithLabelValues("unnamed").Set(float64(sum.Behaviors.Unnamed))
	r.metrics.Finish(runErr == nil, sum.StartedAt.Add(sum.Duration))

	if sum.MetricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(sum.MetricsFile); err != nil {
		log.Warn("Failed to write metrics textfile",
			zap.String("path", sum.MetricsFile),
			zap.Error(err),
		)
	}
}
