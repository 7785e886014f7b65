package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stigoleg/wiggler/internal/api"
	"github.com/stigoleg/wiggler/internal/client"
	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/platform"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

const shutdownTimeout = 5 * time.Second

// loadSettings layers flags over the config file over defaults.
func loadSettings(cmd *cobra.Command, o *options) (config.Settings, *config.Manager, error) {
	mgr, err := config.NewManager(o.cfgFile)
	if err != nil {
		return config.Settings{}, nil, err
	}
	if err := mgr.BindFlags(cmd.Flags()); err != nil {
		return config.Settings{}, nil, err
	}
	s, err := mgr.Load()
	if err != nil {
		return config.Settings{}, nil, err
	}
	return s, mgr, nil
}

func newEngine(s config.Settings, store wiggle.Store) *wiggle.Wiggler {
	return wiggle.New(
		wiggle.WithSettings(s),
		wiggle.WithStore(store),
		wiggle.WithInhibitor(platform.NewInhibitor()),
	)
}

// startAPI serves w on addr and registers its shutdown with cleanup.
func startAPI(w *wiggle.Wiggler, addr string, cleanup *wiggle.CleanupManager) (*api.Server, error) {
	srv := api.NewServer(w)
	if err := srv.Start(addr); err != nil {
		return nil, err
	}
	cleanup.RegisterFunc("api", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	return srv, nil
}

func (o *options) newClient() (*client.Client, error) {
	return client.New(o.server)
}

// openLogFile opens path for appending; empty means wiggler.log under the
// user cache directory.
func openLogFile(path string) (*os.File, error) {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate cache directory: %w", err)
		}
		path = filepath.Join(dir, appName, appName+".log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
