/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianoliveira/sendpanel/internal/app"
	"github.com/cristianoliveira/sendpanel/internal/colors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/cristianoliveira/sendpanel/internal/session"
	"github.com/cristianoliveira/sendpanel/internal/tui/state"
	"github.com/spf13/cobra"
)

// programRunner runs the panel. Tests replace it.
var programRunner app.ProgramRunner = app.NewDefaultProgramRunner()

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the control panel",
	Long: `Open the interactive control panel.

KEY BINDINGS:
    tab/shift+tab   Move between fields (edits are saved on leave)
    enter           Upload the file in the path field, or save the field
    ctrl+s          Start a run
    ctrl+x          Stop the run
    ctrl+r          Remove the current file
    ctrl+t          Toggle light/dark theme
    ctrl+d          Dismiss the oldest notification
    f1              Toggle full help
    esc, ctrl+c     Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	RootCmd.AddCommand(tuiCmd)
	RootCmd.RunE = runTUI
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger := logging.GetGlobal()
	s, res, err := openSessionFunc(logger)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer closeResources(res, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	colors.DisableStructuredLogging()
	defer colors.EnableStructuredLogging()

	s.Connect(ctx)
	if err := programRunner.Run(ctx, state.NewModel(ctx, s)); err != nil {
		return fmt.Errorf("error running panel: %w", err)
	}
	return nil
}

func closeResources(res session.Resources, logger logging.Logger) {
	if err := res.Close(); err != nil {
		logger.Warn("close failed", "error", err.Error())
	}
}
