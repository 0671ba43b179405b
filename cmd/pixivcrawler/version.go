package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"pixivcrawler/pkg/ui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(ui.Out, "pixivcrawler %s (commit: %s, built: %s)\n", version, gitCommit, buildDate)
		fmt.Fprintf(ui.Out, "Go Version: %s\nOS/Arch: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
