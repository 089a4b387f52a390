package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verustcode/rulemap/consts"
)

// Environment variables read by applyEnvOverrides, without the RULEMAP_ prefix
const (
	EnvInput            = "INPUT"
	EnvOutput           = "OUTPUT"
	EnvMappingURL       = "MAPPING_URL"
	EnvMappingTimeout   = "MAPPING_TIMEOUT"
	EnvPDF              = "PDF"
	EnvMaxDepth         = "MAX_DEPTH"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvLogFile          = "LOG_FILE"
	EnvTelemetryEnabled = "TELEMETRY_ENABLED"
	EnvOTLPEnabled      = "OTLP_ENABLED"
	EnvOTLPEndpoint     = "OTLP_ENDPOINT"
	EnvMetricsFile      = "METRICS_FILE"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func getenv(name string) string {
	return os.Getenv(consts.EnvPrefix + name)
}

// applyEnvOverrides applies RULEMAP_* environment variables on top of cfg
func applyEnvOverrides(cfg *Config) {
	if v := getenv(EnvInput); v != "" {
		cfg.Input = v
	}
	if v := getenv(EnvOutput); v != "" {
		cfg.Output = v
	}

	// Mapping overrides
	if v := getenv(EnvMappingURL); v != "" {
		cfg.Mapping.URL = v
	}
	if v := getenv(EnvMappingTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Mapping.Timeout = d
		}
	}

	if v := getenv(EnvPDF); v != "" {
		cfg.Export.PDF = v
	}
	if v := getenv(EnvMaxDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tree.MaxDepth = n
		}
	}

	// Logging overrides
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := getenv(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}

	// Telemetry overrides
	if v := getenv(EnvTelemetryEnabled); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := getenv(EnvOTLPEnabled); v != "" {
		cfg.Telemetry.OTLP.Enabled = parseBool(v)
	}
	if v := getenv(EnvOTLPEndpoint); v != "" {
		cfg.Telemetry.OTLP.Endpoint = v
	}
	if v := getenv(EnvMetricsFile); v != "" {
		cfg.Telemetry.MetricsFile = v
	}
}

// parseBool parses a boolean string value
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// expandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with
// environment variable values
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := strings.SplitN(match[2:len(match)-1], ":-", 2)
		if value := os.Getenv(parts[0]); value != "" {
			return value
		}
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	})
}
