/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/app"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/spf13/cobra"
)

const runCommandLong = `Upload a contacts file and run it without the panel.

USAGE:
    sendpanel run [OPTIONS] <file>

OPTIONS:
    --limit <n>          Maximum messages to send (saved as preference)
    --delay <ms>         Delay between messages in milliseconds (saved as preference)
    --message <text>     Message template, e.g. "Hola {nombre}" (saved as preference)
    --connect-timeout    How long to wait for the worker (default 15s)
    -h, --help           Show this help

Progress is printed as the worker reports it. The command exits non-zero
when the run could not start or ended in error.`

// runFunc drives a headless run. Tests replace it.
var runFunc = func(ctx context.Context, input app.HeadlessRunInput) error {
	logger := logging.GetGlobal()
	s, res, err := openSessionFunc(logger)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer closeResources(res, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	view, err := app.NewHeadlessRunUseCase(s).Execute(ctx, input)
	if err != nil {
		return err
	}
	if view.State.Kind == domain.StateFailed {
		return &app.ReportedError{Err: fmt.Errorf("run failed: %s", view.State.Reason)}
	}
	return nil
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var (
		limit   int
		delay   int
		message string
		timeout time.Duration
	)

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Upload a file and run it without the panel",
		Long:  runCommandLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := app.HeadlessRunInput{
				Path:           args[0],
				Open:           openFileFunc,
				ConnectTimeout: timeout,
				Progress:       cmd.OutOrStdout(),
			}
			if limit < 0 || delay < 0 {
				return errors.Validation("run", "--limit and --delay cannot be negative")
			}
			if cmd.Flags().Changed("limit") {
				input.Limit = &limit
			}
			if cmd.Flags().Changed("delay") {
				input.Delay = &delay
			}
			if cmd.Flags().Changed("message") {
				input.Message = &message
			}
			return runFunc(cmd.Context(), input)
		},
	}

	runCmd.Flags().IntVar(&limit, "limit", domain.DefaultMessageLimit, "Maximum messages to send")
	runCmd.Flags().IntVar(&delay, "delay", domain.DefaultDelayMillis, "Delay between messages in milliseconds")
	runCmd.Flags().StringVar(&message, "message", "", "Message template")
	runCmd.Flags().DurationVar(&timeout, "connect-timeout", app.DefaultConnectTimeout, "How long to wait for the worker")
	return runCmd
}

func init() {
	RootCmd.AddCommand(NewRunCmd())
}
