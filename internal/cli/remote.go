package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/stigoleg/wiggler/internal/api"
	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/util"
)

func newStartCommand(o *options) *cobra.Command {
	var session config.Session
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start wiggling on a running wiggler",
		Long: `Start a session on the instance at --server. A running session is
restarted.`,
		Example: `  wiggler start
  wiggler start -d 45m
  wiggler start --until 17:30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := session.Resolve(time.Now())
			if err != nil {
				return err
			}
			c, err := o.newClient()
			if err != nil {
				return err
			}
			if err := c.StartTimed(cmd.Context(), d); err != nil {
				return err
			}
			if d > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Wiggling for %s\n", d.Round(time.Second))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Wiggling")
			}
			return nil
		},
	}
	config.RegisterSessionFlags(cmd.Flags(), &session)
	return cmd
}

func newStopCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop wiggling on a running wiggler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.newClient()
			if err != nil {
				return err
			}
			if err := c.StopWiggle(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
			return nil
		},
	}
}

func newStatusCommand(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running wiggler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.newClient()
			if err != nil {
				return err
			}
			st, err := c.State(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			printState(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw state as JSON")
	return cmd
}

func printState(w io.Writer, st api.State) {
	status := "idle"
	switch {
	case !st.Ready:
		status = "stopped"
	case st.Wiggling:
		status = "wiggling"
	}

	fmt.Fprintf(w, "Status:  %s\n", status)
	fmt.Fprintf(w, "Move:    %gs\n", st.Config.MoveSeconds)
	fmt.Fprintf(w, "Wait:    %gs\n", st.Config.WaitSeconds)
	fmt.Fprintf(w, "Mode:    %s\n", st.Mode)
	fmt.Fprintf(w, "Health:  %s\n", st.Health)
	fmt.Fprintf(w, "Cycles:  %d\n", st.Cycles)
	if st.RemainingSeconds > 0 {
		fmt.Fprintf(w, "Left:    %s\n", util.Seconds(st.RemainingSeconds).Round(time.Second))
	}
}

func newConfigCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change the wiggle cadence",
	}

	var asJSON bool
	get := &cobra.Command{
		Use:   "get",
		Short: "Show the movement duration and wait interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.newClient()
			if err != nil {
				return err
			}
			w, err := c.GetConfig(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "move: %gs\nwait: %gs\n", w.MoveSeconds, w.WaitSeconds)
			return nil
		},
	}
	get.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	set := &cobra.Command{
		Use:   "set MOVE WAIT",
		Short: "Set the movement duration and wait interval",
		Long: `Set how long each wiggle lasts (0.1-10 seconds) and how long to wait
before the next one (0-60 seconds). Values are seconds or Go durations.
The change is saved to the config file of the running instance.`,
		Example: `  wiggler config set 0.5 30
  wiggler config set 1500ms 1m`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			move, err := util.ParseSeconds(args[0])
			if err != nil {
				return err
			}
			wait, err := util.ParseSeconds(args[1])
			if err != nil {
				return err
			}
			c, err := o.newClient()
			if err != nil {
				return err
			}
			if err := c.SetConfig(cmd.Context(), move, wait); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated: move %gs, wait %gs\n", move, wait)
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Show the local config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(o.cfgFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mgr.Path())
			return nil
		},
	}

	cmd.AddCommand(get, set, path)
	return cmd
}

func newEventsCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Stream push events from a running wiggler as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.newClient()
			if err != nil {
				return err
			}
			ctx, stop := o.signalContext(cmd.Context())
			defer stop()

			ch, err := c.Subscribe(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for e := range ch {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, o.version)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
