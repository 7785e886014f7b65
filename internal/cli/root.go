// Package cli builds the wiggler command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/stigoleg/wiggler/internal/config"
)

const appName = "wiggler"

type options struct {
	version string
	cfgFile string
	server  string
	session config.Session
	// signalContext is replaceable so tests can run long-lived commands.
	signalContext func(context.Context) (context.Context, context.CancelFunc)
}

// NewRootCommand returns the full command tree.
func NewRootCommand(version string) *cobra.Command {
	o := &options{
		version: version,
		signalContext: func(parent context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(parent, shutdownSignals()...)
		},
	}

	root := &cobra.Command{
		Use:   appName,
		Short: "Keep your computer awake by periodically nudging the mouse",
		Long: `The Wiggler moves the mouse cursor for a short while, waits, and does it
again, so the system never considers you idle.

Run without a subcommand to open the settings panel. Use "serve" to run
headless with the control API, and start/stop/status/config to drive a
running instance.`,
		Example: `  # Open the settings panel
  wiggler

  # Wiggle for 2 hours, moving for 0.5s every 30s
  wiggler -d 2h --move 0.5 --wait 30

  # Run headless and control it from another terminal
  wiggler serve
  wiggler status`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, o)
		},
	}

	root.PersistentFlags().StringVar(&o.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/wiggler/config.yaml)")
	root.PersistentFlags().StringVar(&o.server, "server", config.DefaultListen, "address of a running wiggler for remote commands")

	config.RegisterFlags(root.Flags())
	config.RegisterSessionFlags(root.Flags(), &o.session)

	root.AddCommand(
		newServeCommand(o),
		newStartCommand(o),
		newStopCommand(o),
		newStatusCommand(o),
		newConfigCommand(o),
		newEventsCommand(o),
		newAttachCommand(o),
		newVersionCommand(o),
	)
	return root
}

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF4040"}).
	Bold(true)

// Execute runs the command tree and returns the process exit code.
func Execute(version string, args []string, stderr io.Writer) int {
	root := NewRootCommand(version)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintln(w, errorStyle.Render("Error:")+" "+err.Error())
}

// Main is the entry point used by cmd/wiggler.
func Main(version string) {
	os.Exit(Execute(version, os.Args[1:], os.Stderr))
}
