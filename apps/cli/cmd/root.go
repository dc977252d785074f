package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Readable terminal reports for test-run event streams.",
	Long: `verdict renders the line-delimited event journal a test engine
writes into a readable terminal report: one line per finished test,
failure details with source excerpts, and a final summary.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}
