// Package main provides the CLI entry point for shotcut.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	appName    = "shotcut"
	appVersion = "0.1.0"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           appName,
		Short:         "Extract one still per shot from a video",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	root.PersistentFlags().String("config", "", "Config file (default ./shotcut.yaml or ~/.config/shotcut/config.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for troubleshooting")
	root.PersistentFlags().Bool("json", false, "Emit NDJSON progress events instead of terminal output")

	root.AddCommand(newExtractCommand(), newExportCommand(), newConfigCommand(), newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
