// Proagent is a prompt-driven file processing daemon: it resolves a
// free-text instruction to one file operation and runs it on uploaded files.
//
// Usage:
//
//	proagent serve [--config /path/to/proagent.yaml]
//	proagent resolve "convert my document to pdf" -f report.docx
//	proagent run "compress to 70% quality" -f photo.jpg
//	proagent version
//
// @title       proagent API
// @version     1.0
// @description Prompt-driven file processing.
// @BasePath    /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/nadzzz/proagent/docs"
)

// version is set at build time via ldflags.
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:           "proagent",
	Short:         "Resolve free-text instructions into file operations and run them",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "proagent %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/proagent.yaml)")
	rootCmd.AddCommand(serveCmd, resolveCmd, runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
