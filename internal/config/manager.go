package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys used in the config file and bound to flags.
const (
	keyMove            = "move"
	keyWait            = "wait"
	keyMode            = "mode"
	keyRespectActivity = "respect_activity"
	keyKeepAwake       = "keep_awake"
	keyListen          = "listen"
	keyLogLevel        = "log_level"
	keyLogFile         = "log_file"
)

// Manager loads settings from a YAML file, layers flag overrides on top and
// persists cadence changes made at runtime.
type Manager struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

// DefaultPath returns $XDG_CONFIG_HOME/wiggler/config.yaml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "wiggler", "config.yaml"), nil
}

// NewManager prepares a manager for path; an empty path means DefaultPath.
// Nothing is read until Load.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	d := Default()
	v.SetDefault(keyMove, d.MoveSeconds)
	v.SetDefault(keyWait, d.WaitSeconds)
	v.SetDefault(keyMode, string(d.Mode))
	v.SetDefault(keyRespectActivity, d.RespectActivity)
	v.SetDefault(keyKeepAwake, d.KeepAwake)
	v.SetDefault(keyListen, d.Listen)
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyLogFile, d.LogFile)

	v.SetEnvPrefix("wiggler")
	v.AutomaticEnv()

	return &Manager{v: v, path: path}, nil
}

// Path is the config file location.
func (m *Manager) Path() string {
	return m.path
}

// BindFlags wires flags registered by RegisterFlags into the manager so they
// override file values when set.
func (m *Manager) BindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		keyMove:            flagMove,
		keyWait:            flagWait,
		keyMode:            flagMode,
		keyRespectActivity: flagRespectActivity,
		keyKeepAwake:       flagKeepAwake,
		keyListen:          flagListen,
		keyLogLevel:        flagLogLevel,
		keyLogFile:         flagLogFile,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := m.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file. A missing file is not an error.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	err := m.v.ReadInConfig()
	m.mu.Unlock()

	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", m.path, err)
		}
	}

	s := m.Get()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", m.path, err)
	}
	return s, nil
}

// Get returns the effective settings without re-reading the file.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Settings{
		Wiggle: Wiggle{
			MoveSeconds: m.v.GetFloat64(keyMove),
			WaitSeconds: m.v.GetFloat64(keyWait),
		},
		Mode:            Mode(m.v.GetString(keyMode)),
		RespectActivity: m.v.GetBool(keyRespectActivity),
		KeepAwake:       m.v.GetBool(keyKeepAwake),
		Listen:          m.v.GetString(keyListen),
		LogLevel:        m.v.GetString(keyLogLevel),
		LogFile:         m.v.GetString(keyLogFile),
	}
}

// SaveWiggle validates and persists a new cadence. Only move and wait are
// written; every other key in the file is kept as the file had it, so flag
// and environment overrides never leak into it.
func (m *Manager) SaveWiggle(w Wiggle) error {
	if err := w.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.readFile()
	if err != nil {
		return err
	}
	out.Set(keyMove, w.MoveSeconds)
	out.Set(keyWait, w.WaitSeconds)

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := out.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", m.path, err)
	}

	m.v.Set(keyMove, w.MoveSeconds)
	m.v.Set(keyWait, w.WaitSeconds)
	return nil
}

// readFile loads the config file alone, without defaults, flags or env.
func (m *Manager) readFile() (*viper.Viper, error) {
	out := viper.New()
	out.SetConfigFile(m.path)
	out.SetConfigType("yaml")
	if err := out.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", m.path, err)
		}
	}
	return out, nil
}
