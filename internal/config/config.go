// Package config provides configuration management for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verustcode/rulemap/consts"
	"github.com/verustcode/rulemap/internal/report"
	"github.com/verustcode/rulemap/internal/ruletree"
	"github.com/verustcode/rulemap/pkg/errors"
	"github.com/verustcode/rulemap/pkg/logger"
	"github.com/verustcode/rulemap/pkg/telemetry"
)

// Config is the complete configuration of one run
type Config struct {
	// Input is the rule tree export to read
	Input string `yaml:"input"`
	// Output is the HTML report to write
	Output    string           `yaml:"output"`
	Mapping   MappingConfig    `yaml:"mapping"`
	Render    report.Options   `yaml:"render"`
	Tree      TreeConfig       `yaml:"tree"`
	Export    ExportConfig     `yaml:"export"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// MappingConfig locates the behavior mapping table
type MappingConfig struct {
	// URL of the CSV table (key, equivalent, link)
	URL string `yaml:"url"`
	// Timeout of the fetch; 0 waits indefinitely
	Timeout time.Duration `yaml:"timeout"`
}

// TreeConfig bounds the rule tree walk
type TreeConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// ExportConfig holds the optional PDF rendition
type ExportConfig struct {
	// PDF is the output path; empty disables PDF export
	PDF        string        `yaml:"pdf"`
	PDFTimeout time.Duration `yaml:"pdf_timeout"`
	ChromePath string        `yaml:"chrome_path"`
}

// PDFEnabled reports whether a PDF should be written
func (c *ExportConfig) PDFEnabled() bool {
	return c.PDF != ""
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Input:  consts.DefaultInputFile,
		Output: consts.DefaultOutputFile,
		Render: report.DefaultOptions(),
		Tree: TreeConfig{
			MaxDepth: ruletree.DefaultMaxDepth,
		},
		Export: ExportConfig{
			PDFTimeout: 120 * time.Second,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 5,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: "localhost:4317",
				Insecure: true,
			},
		},
	}
}

// Load reads the configuration file at path and applies environment
// overrides. An empty path falls back to rulemap.yaml in the working
// directory when it exists, and to the defaults otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		if !Exists(consts.DefaultConfigFile) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		path = consts.DefaultConfigFile
	}
	return LoadFile(path)
}

// LoadFile reads the configuration file at path; a missing file is an error
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to read config file", err).
			WithDetails(map[string]string{"path": path})
	}

	// Expand environment variables in the configuration
	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to parse config file", err).
			WithDetails(map[string]string{"path": path})
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Exists checks if a configuration file exists
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// PDFOutputPath returns the PDF path with the output's base name when the
// configured value is "auto"
func (c *Config) PDFOutputPath() string {
	if c.Export.PDF != "auto" {
		return c.Export.PDF
	}
	base := strings.TrimSuffix(c.Output, filepath.Ext(c.Output))
	return base + ".pdf"
}
