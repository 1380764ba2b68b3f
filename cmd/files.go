/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/app"
	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/cristianoliveira/sendpanel/internal/search"
	"github.com/spf13/cobra"
)

// filesClientFunc returns the worker client. Tests replace it.
var filesClientFunc = func() app.FilesClient {
	return contactsClientFunc(logging.GetGlobal())
}

func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, config.GetDuration("request_timeout", 30*time.Second))
}

// addOutputFlags registers --format, --search and --regex on cmd.
func addOutputFlags(cmd *cobra.Command, opts *app.OutputOptions) {
	cmd.Flags().StringVar(&opts.Format, "format", app.FormatTable, "Output format: table, json")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Only show rows whose name or phone matches")
	cmd.Flags().BoolVar(&opts.Regex, "regex", false, "Treat --search as a regular expression")
}

func validateOutput(opts app.OutputOptions) error {
	if err := validateFormat(opts.Format, app.FormatTable, app.FormatJSON); err != nil {
		return err
	}
	if opts.Regex {
		return search.ValidatePattern(opts.Search)
	}
	return nil
}

func validateFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q (expected one of %v)", format, allowed)
}

// NewFilesCmd creates the files command.
func NewFilesCmd() *cobra.Command {
	var opts app.OutputOptions
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "List contacts files stored on the worker",
		Long: `List the contacts files already uploaded to the worker.

USAGE:
    sendpanel files [--format table|json] [--search <query> [--regex]]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts); err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			return app.NewFilesUseCase(filesClientFunc()).List(ctx, cmd.OutOrStdout(), opts)
		},
	}
	addOutputFlags(filesCmd, &opts)
	return filesCmd
}

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var opts app.OutputOptions
	validateCmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Check the phone numbers of a stored file",
		Long: `Ask the worker to validate the phone numbers of a stored file.

USAGE:
    sendpanel validate [--format table|json] [--search <query> [--regex]] <name>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts); err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			return app.NewFilesUseCase(filesClientFunc()).Validate(ctx, args[0], cmd.OutOrStdout(), opts)
		},
	}
	addOutputFlags(validateCmd, &opts)
	return validateCmd
}

// NewPreviewCmd creates the preview command.
func NewPreviewCmd() *cobra.Command {
	var opts app.OutputOptions
	previewCmd := &cobra.Command{
		Use:   "preview <name>",
		Short: "Show the first contacts of a stored file",
		Long: `Show the first contacts of a file stored on the worker.

USAGE:
    sendpanel preview [--format table|json] [--search <query> [--regex]] <name>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts); err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			return app.NewFilesUseCase(filesClientFunc()).Preview(ctx, args[0], cmd.OutOrStdout(), opts)
		},
	}
	addOutputFlags(previewCmd, &opts)
	return previewCmd
}

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	var format string
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the worker is up",
		Long: `Query the worker health endpoint.

USAGE:
    sendpanel health [--format table|json]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, app.FormatTable, app.FormatJSON); err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context())
			defer cancel()
			return app.NewFilesUseCase(filesClientFunc()).Health(ctx, cmd.OutOrStdout(), format)
		},
	}
	healthCmd.Flags().StringVar(&format, "format", app.FormatTable, "Output format: table, json")
	return healthCmd
}

func init() {
	RootCmd.AddCommand(NewFilesCmd(), NewValidateCmd(), NewPreviewCmd(), NewHealthCmd())
}
