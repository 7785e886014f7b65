package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wiggler", "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)
	return m, path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, _ := newTestManager(t)

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadReadsFile(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("move: 2.5\nwait: 30\nmode: jitter\nrespect_activity: true\n"), 0o644))

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, s.MoveSeconds)
	assert.Equal(t, 30.0, s.WaitSeconds)
	assert.Equal(t, ModeJitter, s.Mode)
	assert.True(t, s.RespectActivity)
}

func TestLoadRejectsOutOfRangeFile(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("move: 20\n"), 0o644))

	_, err := m.Load()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSaveWiggleRoundTrip(t *testing.T) {
	m, path := newTestManager(t)
	_, err := m.Load()
	require.NoError(t, err)

	require.NoError(t, m.SaveWiggle(Wiggle{MoveSeconds: 3, WaitSeconds: 12}))
	assert.FileExists(t, path)

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	s, err := reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.MoveSeconds)
	assert.Equal(t, 12.0, s.WaitSeconds)
}

func TestSaveWiggleRejectsInvalid(t *testing.T) {
	m, path := newTestManager(t)

	err := m.SaveWiggle(Wiggle{MoveSeconds: 0, WaitSeconds: 5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.NoFileExists(t, path)
	assert.Equal(t, DefaultMoveSeconds, m.Get().MoveSeconds)
}

func TestFlagsOverrideFile(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("move: 2\nwait: 10\n"), 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--wait", "42"}))
	require.NoError(t, m.BindFlags(fs))

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.MoveSeconds, "unset flag must not shadow the file")
	assert.Equal(t, 42.0, s.WaitSeconds)
}

func TestSaveWiggleDoesNotPersistFlagOverrides(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("move: 2\nwait: 10\nlisten: 127.0.0.1:9000\n"), 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--mode", "jitter", "--keep-awake", "--respect-activity"}))
	require.NoError(t, m.BindFlags(fs))

	s, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, ModeJitter, s.Mode)

	require.NoError(t, m.SaveWiggle(Wiggle{MoveSeconds: 3, WaitSeconds: 20}))
	assert.Equal(t, 3.0, m.Get().MoveSeconds)
	assert.Equal(t, ModeJitter, m.Get().Mode, "flags still apply to this run")

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	s, err = reloaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.MoveSeconds)
	assert.Equal(t, 20.0, s.WaitSeconds)
	assert.Equal(t, ModeRoam, s.Mode)
	assert.False(t, s.KeepAwake)
	assert.False(t, s.RespectActivity)
	assert.Equal(t, "127.0.0.1:9000", s.Listen, "keys already in the file survive")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "keep_awake")
	assert.NotContains(t, string(raw), "mode")
}
