package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "2.0.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitWarnings     = 1
	ExitUsageError   = 2
	ExitRuntimeError = 3
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "cleandoc",
	Short: "Remove institutional boilerplate from DOCX documents",
	Long: "CleanDoc removes header logos, institution and directorate names and the\n" +
		"trailing signature section from Word documents, either from the command\n" +
		"line or through a small upload service.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	exitCode = ExitSuccess
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print cleandoc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cleandoc version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a TOML config file (default ./cleandoc.toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
