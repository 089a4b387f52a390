// Package exporter writes rendered reports to disk in one or more formats.
package exporter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/verustcode/rulemap/pkg/logger"
)

// ExportFormat represents the export format type
type ExportFormat string

const (
	// ExportFormatHTML writes the page as-is
	ExportFormatHTML ExportFormat = "html"
	// ExportFormatPDF prints the page through headless Chrome
	ExportFormatPDF ExportFormat = "pdf"
)

// ReportExporter defines the interface for report exporters
type ReportExporter interface {
	// ExportToFile writes the rendered page to path in the exporter's format
	ExportToFile(ctx context.Context, page []byte, path string) error
	// Name returns the human-readable name of the exporter
	Name() string
	// FileExtension returns the file extension for this format (e.g. ".html")
	FileExtension() string
}

// ExportManager manages all registered exporters
type ExportManager struct {
	exporters map[ExportFormat]ReportExporter
	mu        sync.RWMutex
}

// NewExportManager creates a new export manager
func NewExportManager() *ExportManager {
	return &ExportManager{
		exporters: make(map[ExportFormat]ReportExporter),
	}
}

// NewDefaultExportManager returns a manager with the HTML exporter and a PDF
// exporter using opts.
func NewDefaultExportManager(opts PDFOptions) *ExportManager {
	m := NewExportManager()
	m.Register(ExportFormatHTML, NewHTMLExporter())
	m.Register(ExportFormatPDF, NewPDFExporterWithOptions(opts))
	return m
}

// Register registers an exporter for a specific format
func (m *ExportManager) Register(format ExportFormat, exporter ReportExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exporters[format] = exporter
	logger.Debug("Registered report exporter",
		zap.String("format", string(format)),
		zap.String("name", exporter.Name()),
	)
}

// GetExporter returns the exporter for a specific format
func (m *ExportManager) GetExporter(format ExportFormat) (ReportExporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exporter, ok := m.exporters[format]
	if !ok {
		return nil, fmt.Errorf("no exporter registered for format: %s", format)
	}
	return exporter, nil
}

// ExportToFile writes page to path using the exporter registered for format
func (m *ExportManager) ExportToFile(ctx context.Context, format ExportFormat, page []byte, path string) error {
	exporter, err := m.GetExporter(format)
	if err != nil {
		return err
	}

	logger.Debug("Exporting report",
		zap.String("format", string(format)),
		zap.String("exporter", exporter.Name()),
		zap.String("path", path),
	)
	return exporter.ExportToFile(ctx, page, path)
}

// SupportedFormats returns the registered formats in name order
func (m *ExportManager) SupportedFormats() []ExportFormat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	formats := make([]ExportFormat, 0, len(m.exporters))
	for format := range m.exporters {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
