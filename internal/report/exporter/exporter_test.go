package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/rulemap/pkg/errors"
)

type stubExporter struct {
	calls int
	path  string
}

func (s *stubExporter) ExportToFile(_ context.Context, _ []byte, path string) error {
	s.calls++
	s.path = path
	return nil
}
func (s *stubExporter) Name() string          { return "Stub" }
func (s *stubExporter) FileExtension() string { return ".stub" }

func TestExportManager_Register(t *testing.T) {
	m := NewExportManager()
	stub := &stubExporter{}
	m.Register("stub", stub)

	got, err := m.GetExporter("stub")
	require.NoError(t, err)
	assert.Same(t, stub, got)

	require.NoError(t, m.ExportToFile(context.Background(), "stub", []byte("x"), "out.stub"))
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "out.stub", stub.path)
}

func TestExportManager_UnsupportedFormat(t *testing.T) {
	m := NewExportManager()
	_, err := m.GetExporter(ExportFormatPDF)
	assert.Error(t, err)

	err = m.ExportToFile(context.Background(), ExportFormatPDF, nil, "x.pdf")
	assert.Error(t, err)
}

func TestNewDefaultExportManager(t *testing.T) {
	m := NewDefaultExportManager(DefaultPDFOptions())
	assert.Equal(t, []ExportFormat{ExportFormatHTML, ExportFormatPDF}, m.SupportedFormats())
}

func TestHTMLExporter_ExportToFile(t *testing.T) {
	e := NewHTMLExporter()
	assert.Equal(t, "HTML", e.Name())
	assert.Equal(t, ".html", e.FileExtension())

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "output.html")
		require.NoError(t, e.ExportToFile(context.Background(), []byte("<html></html>"), path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", string(data))
	})

	t.Run("truncates existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output.html")
		require.NoError(t, os.WriteFile(path, []byte("a much longer previous report"), 0644))
		require.NoError(t, e.ExportToFile(context.Background(), []byte("new"), path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("path is a directory", func(t *testing.T) {
		dir := t.TempDir()
		err := e.ExportToFile(context.Background(), []byte("x"), dir)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeOutputWrite))
	})
}

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()
	assert.Equal(t, 8.27, opts.PaperWidth)
	assert.Equal(t, 11.69, opts.PaperHeight)
	assert.True(t, opts.PrintBackground)
	assert.Equal(t, 1.0, opts.Scale)
	assert.Equal(t, 120*time.Second, opts.Timeout)
}

func TestNewPDFExporterWithOptions(t *testing.T) {
	e := NewPDFExporterWithOptions(PDFOptions{Timeout: 5 * time.Second, ChromePath: "/opt/chrome"})
	opts := e.Options()
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 8.27, opts.PaperWidth)
	assert.Equal(t, 1.0, opts.Scale)
	assert.Equal(t, "/opt/chrome", opts.ChromePath)

	assert.Equal(t, "PDF", e.Name())
	assert.Equal(t, ".pdf", e.FileExtension())
	assert.Greater(t, len(e.allocatorOptions()), 5)
}

func TestPDFExporter_ExportToFile(t *testing.T) {
	if os.Getenv(EnvChromePath) == "" {
		t.Skip("CHROME_PATH not set")
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	e := NewPDFExporterWithOptions(PDFOptions{Timeout: 60 * time.Second})
	require.NoError(t, e.ExportToFile(context.Background(), []byte("<html><body><h1>rules</h1></body></html>"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFExporter_MissingBrowser(t *testing.T) {
	e := NewPDFExporterWithOptions(PDFOptions{
		Timeout:    5 * time.Second,
		ChromePath: filepath.Join(t.TempDir(), "no-such-chrome"),
	})
	err := e.ExportToFile(context.Background(), []byte("<html></html>"), filepath.Join(t.TempDir(), "x.pdf"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePDFExport))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1024*1024*3/2))
}
