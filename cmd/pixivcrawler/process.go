package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pixivcrawler/pkg/transform"
	"pixivcrawler/pkg/ui"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert downloaded images into web-ready JPEGs",
	Long: `Convert every image under the source folder into a resized JPEG.

The {tag}/{category} layout of the source is mirrored in the destination and
each category gets a manifest.json listing its images. Manifests are rewritten
on every run; outputs whose source was removed stay on disk.`,
	Example: `  # Use the configured folders (pixiv_images -> api_ready_images)
  pixivcrawler process

  # Larger, better looking output
  pixivcrawler process --max-dimension 2560 --quality 80`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("source", "", "folder holding downloaded images")
	processCmd.Flags().String("dest", "", "folder for converted images")
	processCmd.Flags().Int("max-dimension", 1920, "longest side in pixels, 0 keeps the size")
	processCmd.Flags().Int("quality", 25, "JPEG quality (1-100)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	ui.PrintInfo("Source", cfg.Process.SourceRoot)
	ui.PrintInfo("Destination", cfg.Process.OutputRoot)

	t := transform.New(transform.OptionsFromConfig(cfg), log)
	t.SetProgress(ui.NewProgressDisplay())

	report, err := t.ProcessAll(cmd.Context(), cfg.Process.SourceRoot, cfg.Process.OutputRoot)
	if report != nil {
		ui.PrintRule()
		for _, c := range report.Categories {
			switch {
			case c.Sources == 0:
				ui.PrintWarning(fmt.Sprintf("%s/%s: no images", c.Tag, c.Category))
			case c.Manifest == "":
				ui.PrintWarning(fmt.Sprintf("%s/%s: nothing converted (%d failed)", c.Tag, c.Category, c.Failed))
			default:
				ui.PrintInfo(c.Tag+"/"+c.Category, fmt.Sprintf("%d converted, %d failed", c.Processed, c.Failed))
			}
		}
		ui.PrintInfo("Converted", strconv.Itoa(report.Processed))
		ui.PrintInfo("Duration", ui.FormatDuration(report.Duration))
	}
	if err != nil {
		return err
	}
	ui.PrintSuccess("Processing finished")
	return nil
}
