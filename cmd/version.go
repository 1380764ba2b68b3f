/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cristianoliveira/sendpanel/internal/version"
	"github.com/spf13/cobra"
)

// versionOutputWriter overrides where the version is printed. Nil means stdout.
var versionOutputWriter io.Writer

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the current version of sendpanel.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		PrintVersion()
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

// GetVersion returns the version string.
func GetVersion() string {
	return version.String()
}

// PrintVersion prints the version.
func PrintVersion() {
	w := versionOutputWriter
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "sendpanel v%s\n", GetVersion())
}
