package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stigoleg/wiggler/internal/logger"
	"github.com/stigoleg/wiggler/internal/ui"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

// runTUI drives an in-process engine from the settings panel. The control
// API only runs when --listen was given explicitly.
func runTUI(cmd *cobra.Command, o *options) error {
	s, mgr, err := loadSettings(cmd, o)
	if err != nil {
		return err
	}
	d, err := o.session.Resolve(time.Now())
	if err != nil {
		return err
	}

	// The panel owns the terminal, so logs go to a file.
	f, err := openLogFile(s.LogFile)
	if err != nil {
		return err
	}
	defer f.Close()
	logger.Init(s.LogLevel, false, f)
	log := logger.WithComponent("cli")

	ctx, stop := o.signalContext(cmd.Context())
	defer stop()

	w := newEngine(s, mgr)
	cleanup := wiggle.NewCleanupManager(shutdownTimeout)
	defer func() {
		if err := cleanup.Execute(); err != nil {
			log.Error().Err(err).Msg("cleanup finished with errors")
		}
	}()

	if cmd.Flags().Changed("listen") {
		srv, err := startAPI(w, s.Listen, cleanup)
		if err != nil {
			cleanup.RegisterWiggler(w)
			return err
		}
		log.Info().Str("addr", srv.Addr()).Msg("control API enabled")
	}
	cleanup.RegisterWiggler(w)

	return ui.Run(ctx, ui.Local(w), ui.Options{Start: d > 0, Duration: d})
}

func newAttachCommand(o *options) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Open the settings panel for a running wiggler",
		Long: `Open the settings panel against the instance at --server instead of
starting a local engine.`,
		Example: `  wiggler attach --server 127.0.0.1:7787`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.newClient()
			if err != nil {
				return err
			}

			ctx, stop := o.signalContext(cmd.Context())
			defer stop()
			if err := c.Health(ctx); err != nil {
				return err
			}

			f, err := openLogFile(logFile)
			if err != nil {
				return err
			}
			defer f.Close()
			logger.Init("info", false, f)

			return ui.Run(ctx, c, ui.Options{Remote: c.BaseURL()})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	return cmd
}
