// Package main is the entry point for the rulemap command.
// rulemap turns a CDN rule tree export into a browsable HTML report that pairs
// every behavior with its equivalent in the target platform.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verustcode/rulemap/consts"
	"github.com/verustcode/rulemap/internal/config"
	"github.com/verustcode/rulemap/internal/configfiles"
	"github.com/verustcode/rulemap/internal/output"
	"github.com/verustcode/rulemap/internal/runner"
	"github.com/verustcode/rulemap/pkg/errors"
	"github.com/verustcode/rulemap/pkg/logger"
	"github.com/verustcode/rulemap/pkg/telemetry"
)

// Build information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}

// newRootCmd builds the command tree. The root command runs generate.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   consts.ServiceName,
		Short: "Render a rule tree export as an HTML migration report",
		Long: `rulemap reads a property manager rule tree export, flattens it into an
ordered list of rules, cross-references every behavior against a CSV mapping
table fetched over HTTP(S) and writes a single-page HTML report.

With no flags it reads akamai_export.json and writes output.html in the
current directory. The mapping table URL must come from --mapping-url,
RULEMAP_MAPPING_URL or the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	generateCmd := &cobra.Command{
		Use:           "generate",
		Short:         "Generate the HTML report",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", consts.ProjectName, consts.Version)
			fmt.Fprintf(out, "  Build Time: %s\n", consts.BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", consts.GitCommit)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	addGenerateFlags(rootCmd)
	addGenerateFlags(generateCmd)
	rootCmd.AddCommand(generateCmd, initCmd, versionCmd)
	return rootCmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "config file path (default: "+consts.DefaultConfigFile+" when present)")
	cmd.Flags().String("input", "", "rule tree export to read (overrides config)")
	cmd.Flags().String("output", "", "HTML report to write (overrides config)")
	cmd.Flags().String("mapping-url", "", "URL of the behavior mapping CSV (overrides config)")
	cmd.Flags().String("pdf", "", `also write a PDF to this path ("auto" derives it from --output)`)
	cmd.Flags().Bool("debug", false, "enable debug logging")
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("input"); v != "" {
		cfg.Input = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Output = v
	}
	if v, _ := cmd.Flags().GetString("mapping-url"); v != "" {
		cfg.Mapping.URL = v
	}
	if v, _ := cmd.Flags().GetString("pdf"); v != "" {
		cfg.Export.PDF = v
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runGenerate runs one report generation
func runGenerate(cmd *cobra.Command, args []string) error {
	printer := output.NewPrinter(cmd.OutOrStdout())
	errPrinter := output.NewPrinter(cmd.ErrOrStderr())

	cfg, err := loadConfig(cmd)
	if err != nil {
		errPrinter.PrintError(err)
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}
	defer logger.Sync()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Warn("Tracing unavailable, continuing without it", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tel.Shutdown(ctx); err != nil {
				logger.Warn("Failed to shut down telemetry", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := runner.New(cfg).Run(ctx)
	if err != nil {
		errPrinter.PrintError(err)
		return err
	}
	printer.PrintSummary(sum)
	return nil
}

// runInit writes the example configuration, rulemap.yaml by default
func runInit(cmd *cobra.Command, args []string) error {
	path := consts.DefaultConfigFile
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	created, err := configfiles.WriteExample(path, force)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, use --force to overwrite\n", path)
	}
	return nil
}
