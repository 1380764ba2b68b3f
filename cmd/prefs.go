/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/cristianoliveira/sendpanel/internal/app"
	"github.com/cristianoliveira/sendpanel/internal/colors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/spf13/cobra"
)

const (
	prefsCommandLong = `Manage the stored run preferences.

USAGE:
    sendpanel prefs <subcommand>

SUBCOMMANDS:
    show    Display the stored preferences
    set     Change one or more preferences

EXAMPLES:
    # Show preferences as TOML
    sendpanel prefs show --format toml

    # Send at most 100 messages, 500ms apart
    sendpanel prefs set --limit 100 --delay 500`
	setCommandLong = `Change one or more stored preferences.

USAGE:
    sendpanel prefs set [OPTIONS]

OPTIONS:
    --limit <n>        Maximum messages per run
    --delay <ms>       Delay between messages in milliseconds
    --message <text>   Message template
    --theme <name>     Panel theme: light, dark
    -h, --help         Show this help`
)

// NewPrefsCmd creates the prefs command.
func NewPrefsCmd() *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change run preferences",
		Long:  prefsCommandLong,
	}
	prefsCmd.AddCommand(newPrefsShowCmd(), newPrefsSetCmd())
	return prefsCmd
}

func newPrefsShowCmd() *cobra.Command {
	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the stored preferences",
		Long:  "Display the stored preferences.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, "text", app.FormatJSON, app.FormatTOML); err != nil {
				return err
			}
			store, closeStore := prefsStoreFunc(logging.GetGlobal())
			defer func() { _ = closeStore() }()
			return app.NewPrefsUseCase(store).Show(cmd.OutOrStdout(), format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, toml")
	return showCmd
}

func newPrefsSetCmd() *cobra.Command {
	var (
		limit   int
		delay   int
		message string
		theme   string
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more preferences",
		Long:  setCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input app.SetPrefsInput
			if cmd.Flags().Changed("limit") {
				input.Limit = &limit
			}
			if cmd.Flags().Changed("delay") {
				input.Delay = &delay
			}
			if cmd.Flags().Changed("message") {
				input.Message = &message
			}
			if cmd.Flags().Changed("theme") {
				input.Theme = &theme
			}

			store, closeStore := prefsStoreFunc(logging.GetGlobal())
			defer func() { _ = closeStore() }()
			if _, err := app.NewPrefsUseCase(store).Set(input); err != nil {
				return err
			}
			colors.Success("Preferences saved")
			return nil
		},
	}
	setCmd.Flags().IntVar(&limit, "limit", 0, "Maximum messages per run")
	setCmd.Flags().IntVar(&delay, "delay", 0, "Delay between messages in milliseconds")
	setCmd.Flags().StringVar(&message, "message", "", "Message template")
	setCmd.Flags().StringVar(&theme, "theme", "", "Panel theme: light, dark")
	return setCmd
}

func init() {
	RootCmd.AddCommand(NewPrefsCmd())
}
