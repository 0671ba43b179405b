package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pixivcrawler/pkg/auth"
	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage pixivcrawler configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (PIXIVCRAWLER_*)
  - .env in the working directory, then ~/.pixivcrawler.env
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration as YAML.

The file is created at the given path, the --config path, or
` + config.DefaultPath() + `. An existing file is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration merged from all sources. The cookie is masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Long: `Validate value ranges and report whether fetch can run, which additionally
needs a cookie and a tag.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(ui.Out, "\nNext steps:")
	fmt.Fprintln(ui.Out, "1. Store your cookie with 'pixivcrawler auth login' or set pixiv.cookie")
	fmt.Fprintln(ui.Out, "2. Run 'pixivcrawler config validate'")
	fmt.Fprintln(ui.Out, "3. Start downloading with 'pixivcrawler fetch <tag>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, changedFlags(cmd, nil))
	if err != nil {
		return &configError{err}
	}

	display := *cfg
	if display.Pixiv.Cookie != "" {
		display.Pixiv.Cookie = auth.SanitizeProfile(&auth.Profile{Cookie: display.Pixiv.Cookie}).Cookie
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, changedFlags(cmd, nil))
	if err != nil {
		return &configError{err}
	}

	var warnings []string
	if err := cfg.ValidateFetch(); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				warnings = append(warnings, e.Error())
			}
		} else {
			warnings = append(warnings, err.Error())
		}
	}

	if len(warnings) > 0 {
		ui.PrintWarning("fetch is not ready:")
		for _, w := range warnings {
			fmt.Fprintf(ui.Out, "  - %s\n", w)
		}
		fmt.Fprintln(ui.Out)
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Save root", cfg.Output.SaveRoot)
	ui.PrintInfo("Process", fmt.Sprintf("%s -> %s (max %dpx, quality %d)",
		cfg.Process.SourceRoot, cfg.Process.OutputRoot, cfg.Process.MaxDimension, cfg.Process.Quality))
	ui.PrintInfo("Serve", fmt.Sprintf("%s:%d from %s", cfg.Serve.Address, cfg.Serve.Port, cfg.Serve.ImageRoot))
	ui.PrintInfo("Log level", cfg.Logging.Level)
	return nil
}
