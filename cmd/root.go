/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cristianoliveira/sendpanel/internal/app"
	"github.com/cristianoliveira/sendpanel/internal/colors"
	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/spf13/cobra"
)

// outputWriter overrides where help is printed. Nil means stdout.
var outputWriter io.Writer

// RootCmd represents the base command when called without any subcommands.
// Without a subcommand it opens the panel.
var RootCmd = &cobra.Command{
	Use:   "sendpanel",
	Short: "Control panel for bulk message runs.",
	Long: `Control panel for bulk message runs.

Upload a contacts file, configure the run and follow it live while the
worker sends.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRun:  bootstrap,
	PersistentPostRun: shutdown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
// Errors not already shown to the operator are printed.
func Execute() error {
	err := RootCmd.Execute()
	var reported *app.ReportedError
	if err != nil && !stderrors.As(err, &reported) {
		colors.Error(errors.Message(err))
	}
	return err
}

func init() {
	// Set version for use in help output
	RootCmd.Version = GetVersion()

	// Hide the completion command
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			printCommandHelp(cmd)
			return
		}
		PrintHelp(cmd)
	})
}

// bootstrap loads configuration and the global logger before any command.
func bootstrap(cmd *cobra.Command, args []string) {
	config.Load()
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false))
	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("File logging disabled: %v", err))
	}
}

func shutdown(cmd *cobra.Command, args []string) {
	_ = logging.ShutdownGlobal()
}

func helpOutput() io.Writer {
	if outputWriter != nil {
		return outputWriter
	}
	return os.Stdout
}

func printCommandHelp(cmd *cobra.Command) {
	w := helpOutput()
	fmt.Fprintln(w, strings.TrimSpace(cmd.Long))
	if flags := cmd.LocalFlags().FlagUsages(); flags != "" {
		fmt.Fprintf(w, "\nFLAGS:\n%s", flags)
	}
}

// PrintHelp prints the top level help with commands in a fixed order.
func PrintHelp(cmd *cobra.Command) {
	commandOrder := []string{
		"tui",
		"run",
		"files",
		"validate",
		"preview",
		"health",
		"prefs",
		"help",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Use, found.Short))
	}

	helpText := fmt.Sprintf(`sendpanel v%s

%s

USAGE:
    sendpanel [COMMAND] [OPTIONS]

Without a command the panel is opened.

COMMANDS:
%s

OPTIONS:
    -h, --help      Show help message
    -v, --version   Show version
`, cmd.Version, cmd.Short, strings.Join(cmdLines, "\n"))
	fmt.Fprint(helpOutput(), helpText)
}
