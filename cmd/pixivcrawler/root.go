package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pixivcrawler",
	Short: "Download, compress and serve popular Pixiv artworks by tag",
	Long: `pixivcrawler collects the most popular artworks of a Pixiv tag.

Stages:
  fetch    download new artworks of a tag, sorted by orientation
  process  convert downloaded images into small JPEGs with a manifest
  serve    serve a random processed image over HTTP

Configuration is read from flags, PIXIVCRAWLER_* environment variables,
.env files and a YAML config file, in that order of priority.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
		if noColor {
			ui.SetColor(false)
		}
		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
}

// configError marks failures that happen before any work starts
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var cfgErr *configError
	switch {
	case errors.As(err, &cfgErr):
		ui.PrintError("Configuration error", cfgErr.err)
	case errors.Is(err, context.Canceled):
		ui.PrintError("Interrupted")
	default:
		ui.PrintError("Error", err)
	}
	stop()
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.pixivcrawler.yaml or "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`pixivcrawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// changedFlags collects the flags set on the command line, keyed by the
// names config.MergeCommandLineFlags understands. rename maps a flag name to
// a different config key.
func changedFlags(cmd *cobra.Command, rename map[string]string) map[string]interface{} {
	flags := make(map[string]interface{})
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key := f.Name
		if r, ok := rename[key]; ok {
			key = r
		}
		switch f.Value.Type() {
		case "int":
			if v, err := cmd.Flags().GetInt(f.Name); err == nil {
				flags[key] = v
			}
		case "bool":
			if v, err := cmd.Flags().GetBool(f.Name); err == nil {
				flags[key] = v
			}
		default:
			flags[key] = f.Value.String()
		}
	})
	return flags
}

// loadConfig loads configuration with the command's flags applied and sets
// up the global logger
func loadConfig(cmd *cobra.Command, rename map[string]string) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile, changedFlags(cmd, rename))
	if err != nil {
		return nil, nil, &configError{err}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, &configError{err}
	}
	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version": version,
		"command": cmd.Name(),
	}).Debug("pixivcrawler starting")
	return cfg, log, nil
}
