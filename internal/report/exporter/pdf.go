package exporter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/verustcode/rulemap/pkg/errors"
	"github.com/verustcode/rulemap/pkg/logger"
)

// EnvChromePath overrides the Chrome binary used for PDF export
const EnvChromePath = "CHROME_PATH"

// PDFOptions contains configuration for PDF generation
type PDFOptions struct {
	// Paper dimensions in inches (A4: 8.27 x 11.69)
	PaperWidth  float64
	PaperHeight float64

	// Margins in inches
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	// DisplayHeaderFooter adds a page number footer
	DisplayHeaderFooter bool
	PrintBackground     bool
	// Scale of the webpage rendering (1.0 = 100%)
	Scale float64

	// Timeout bounds the whole Chrome session
	Timeout time.Duration
	// ChromePath overrides the browser binary; empty uses CHROME_PATH or the default lookup
	ChromePath string
}

// DefaultPDFOptions returns default PDF options for A4 paper
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:  8.27,
		PaperHeight: 11.69,

		MarginTop:    0.59, // ~15mm
		MarginBottom: 0.59,
		MarginLeft:   0.59,
		MarginRight:  0.59,

		DisplayHeaderFooter: true,
		PrintBackground:     true,
		Scale:               1.0,
		Timeout:             120 * time.Second,
	}
}

// PDFExporter prints the page to PDF with headless Chrome
type PDFExporter struct {
	options PDFOptions
}

// NewPDFExporter creates a new PDF exporter with default options
func NewPDFExporter() *PDFExporter {
	return NewPDFExporterWithOptions(DefaultPDFOptions())
}

// NewPDFExporterWithOptions creates a new PDF exporter with custom options.
// Zero size, scale and timeout fields fall back to the defaults.
func NewPDFExporterWithOptions(opts PDFOptions) *PDFExporter {
	def := DefaultPDFOptions()
	if opts.PaperWidth <= 0 || opts.PaperHeight <= 0 {
		opts.PaperWidth, opts.PaperHeight = def.PaperWidth, def.PaperHeight
	}
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return &PDFExporter{options: opts}
}

// Options returns the effective options
func (e *PDFExporter) Options() PDFOptions {
	return e.options
}

// Name returns the human-readable name of this exporter
func (e *PDFExporter) Name() string {
	return "PDF"
}

// FileExtension returns the file extension for PDF files
func (e *PDFExporter) FileExtension() string {
	return ".pdf"
}

// ExportToFile prints page to a PDF at path
func (e *PDFExporter) ExportToFile(ctx context.Context, page []byte, path string) error {
	data, err := e.Print(ctx, page)
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	logger.Info("PDF written",
		zap.String("path", path),
		zap.String("size", formatBytes(len(data))),
	)
	return nil
}

// Print loads page in headless Chrome and returns the printed PDF
func (e *PDFExporter) Print(ctx context.Context, html []byte) ([]byte, error) {
	startTime := time.Now()

	// a file keeps large pages clear of data URL limits
	tmpFile, err := os.CreateTemp("", "rulemap-pdf-*.html")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePDFExport, "failed to create temp file", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(html); err != nil {
		tmpFile.Close()
		return nil, errors.Wrap(errors.ErrCodePDFExport, "failed to write temp file", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodePDFExport, "failed to close temp file", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, e.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf("chromedp: "+format, args...))
		}),
	)
	defer browserCancel()

	var pdfData []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPaperWidth(e.options.PaperWidth).
				WithPaperHeight(e.options.PaperHeight).
				WithMarginTop(e.options.MarginTop).
				WithMarginBottom(e.options.MarginBottom).
				WithMarginLeft(e.options.MarginLeft).
				WithMarginRight(e.options.MarginRight).
				WithDisplayHeaderFooter(e.options.DisplayHeaderFooter).
				WithHeaderTemplate(headerTemplate).
				WithFooterTemplate(footerTemplate).
				WithPrintBackground(e.options.PrintBackground).
				WithScale(e.options.Scale).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		logger.Error("PDF generation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)),
		)
		return nil, errors.Wrap(errors.ErrCodePDFExport, "failed to generate PDF", err)
	}

	logger.Debug("PDF generated",
		zap.Int("pdf_size_bytes", len(pdfData)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return pdfData, nil
}

func (e *PDFExporter) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	chromePath := e.options.ChromePath
	if chromePath == "" {
		chromePath = os.Getenv(EnvChromePath)
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	return opts
}

// Chrome requires a non-empty header template to suppress its default one
const (
	headerTemplate = `<div></div>`
	footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#6b7280;">` +
		`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`
)

// formatBytes converts bytes to human-readable format
func formatBytes(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := int64(bytes) / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
