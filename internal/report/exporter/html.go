package exporter

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/verustcode/rulemap/pkg/errors"
	"github.com/verustcode/rulemap/pkg/logger"
)

// HTMLExporter writes the rendered page unchanged
type HTMLExporter struct{}

// NewHTMLExporter creates a new HTML exporter
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// ExportToFile creates or truncates path and writes page to it. The parent
// directory is created when missing.
func (e *HTMLExporter) ExportToFile(_ context.Context, page []byte, path string) error {
	if err := writeFile(path, page); err != nil {
		return err
	}
	logger.Info("Report written",
		zap.String("path", path),
		zap.String("size", formatBytes(len(page))),
	)
	return nil
}

// Name returns the human-readable name of this exporter
func (e *HTMLExporter) Name() string {
	return "HTML"
}

// FileExtension returns the file extension for HTML files
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// writeFile writes data to path, closing the file on every exit path
func writeFile(path string, data []byte) (err error) {
	details := map[string]string{"path": path}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeOutputWrite, "failed to create output directory", err).
				WithDetails(details)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, "failed to create output file", err).
			WithDetails(details)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeOutputWrite, "failed to close output file", cerr).
				WithDetails(details)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, "failed to write output file", err).
			WithDetails(details)
	}
	return nil
}
