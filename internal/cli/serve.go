package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/logger"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

func newServeCommand(o *options) *cobra.Command {
	var (
		session config.Session
		start   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run headless with the control API",
		Long: `Run the wiggle engine without the settings panel and expose the control
API, event stream and /metrics on --listen.`,
		Example: `  # Serve on the default address
  wiggler serve

  # Start wiggling right away for 90 minutes, jitter mode
  wiggler serve --start -d 90 --mode jitter

  # Debug logging on another port
  wiggler serve --listen 127.0.0.1:9000 --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, mgr, err := loadSettings(cmd, o)
			if err != nil {
				return err
			}
			d, err := session.Resolve(time.Now())
			if err != nil {
				return err
			}

			if s.LogFile != "" {
				f, err := openLogFile(s.LogFile)
				if err != nil {
					return err
				}
				defer f.Close()
				logger.Init(s.LogLevel, false, f)
			} else {
				logger.Init(s.LogLevel, true, os.Stderr)
			}
			log := logger.WithComponent("serve")
			log.Info().Str("config", mgr.Path()).Msg("configuration loaded")

			ctx, stop := o.signalContext(cmd.Context())
			defer stop()

			w := newEngine(s, mgr)
			cleanup := wiggle.NewCleanupManager(shutdownTimeout)
			srv, err := startAPI(w, s.Listen, cleanup)
			cleanup.RegisterWiggler(w)
			if err != nil {
				_ = cleanup.Execute()
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wiggler serving on http://%s (ctrl+c to stop)\n", srv.Addr())

			if start || d > 0 {
				if err := w.StartTimed(d); err != nil {
					_ = cleanup.Execute()
					return err
				}
			}

			<-ctx.Done()
			log.Info().Msg("shutting down")
			return cleanup.Execute()
		},
	}

	config.RegisterFlags(cmd.Flags())
	config.RegisterSessionFlags(cmd.Flags(), &session)
	cmd.Flags().BoolVar(&start, "start", false, "start wiggling immediately")
	return cmd
}
