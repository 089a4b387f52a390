package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/verustcode/rulemap/pkg/errors"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration before a run. Every problem found is
// reported in a single E7001 error.
func (c *Config) Validate() error {
	var failures []string

	if strings.TrimSpace(c.Input) == "" {
		failures = append(failures, "input path is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		failures = append(failures, "output path is required")
	}

	if c.Mapping.URL == "" {
		failures = append(failures, "mapping url is required")
	} else if u, err := url.Parse(c.Mapping.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		failures = append(failures, fmt.Sprintf("mapping url %q must be an absolute http(s) url", c.Mapping.URL))
	}
	if c.Mapping.Timeout < 0 {
		failures = append(failures, "mapping timeout must not be negative")
	}

	if c.Tree.MaxDepth <= 0 {
		failures = append(failures, "tree max_depth must be positive")
	}
	if c.Render.MaxIndent < 0 {
		failures = append(failures, "render max_indent must not be negative")
	}

	if level := strings.ToLower(c.Logging.Level); level != "" && !validLogLevels[level] {
		failures = append(failures, fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}
	if format := c.Logging.Format; format != "" && format != "text" && format != "json" {
		failures = append(failures, fmt.Sprintf("unknown log format %q", format))
	}

	if c.Export.PDFEnabled() && c.PDFOutputPath() == c.Output {
		failures = append(failures, "pdf path must differ from the html output path")
	}

	if len(failures) > 0 {
		return errors.ErrConfig(strings.Join(failures, "; ")).WithDetails(failures)
	}
	return nil
}
