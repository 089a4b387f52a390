// Package consts defines cross-module constants used throughout the application.
package consts

// ServiceName is the application service name
const ServiceName = "rulemap"

// Project information constants
const (
	// ProjectName is the display name of the project
	ProjectName = "RuleMap"

	// ProjectURL is the GitHub repository URL
	ProjectURL = "https://github.com/verustcode/rulemap"
)

// Default file locations, relative to the working directory
const (
	// DefaultInputFile is the rule tree export read when no input is configured
	DefaultInputFile = "akamai_export.json"

	// DefaultOutputFile is the HTML report written when no output is configured
	DefaultOutputFile = "output.html"

	// DefaultConfigFile is picked up automatically when present
	DefaultConfigFile = "rulemap.yaml"
)

// EnvPrefix prefixes every environment override (RULEMAP_INPUT, ...)
const EnvPrefix = "RULEMAP_"

// Build information - set via ldflags during build or programmatically
var (
	// Version is the application version
	Version = "dev"

	// BuildTime is the build timestamp
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)
