package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixivcrawler/pkg/gallery"
	"pixivcrawler/pkg/ui"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve random processed images over HTTP",
	Long: `Serve a random image from the processed library.

  GET /api?orientation=any|horizontal|vertical|square
  GET /          tag and image counts as JSON
  GET /metrics   Prometheus metrics`,
	Example: `  pixivcrawler serve --port 8080
  curl -o random.jpg 'http://127.0.0.1:8080/api?orientation=horizontal'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", "", "listen address")
	serveCmd.Flags().Int("port", 8080, "listen port")
	serveCmd.Flags().String("image-root", "", "processed image library")
	serveCmd.Flags().String("tag", "", "tag folder to serve (default: first by name)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd, map[string]string{"tag": "serve-tag"})
	if err != nil {
		return err
	}

	ui.PrintInfo("Library", cfg.Serve.ImageRoot)
	ui.PrintInfo("Listening", fmt.Sprintf("http://%s:%d", cfg.Serve.Address, cfg.Serve.Port))

	return gallery.New(gallery.OptionsFromConfig(cfg), log).
		ListenAndServe(cmd.Context(), cfg.Serve.Address, cfg.Serve.Port)
}
