package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionResolve(t *testing.T) {
	// Use a fixed time for consistent testing
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		args    []string
		want    time.Duration
		wantErr bool
	}{
		{name: "no flags", args: nil, want: 0},
		{name: "duration flag", args: []string{"--duration", "2h30m"}, want: 150 * time.Minute},
		{name: "duration short flag minutes", args: []string{"-d", "150"}, want: 150 * time.Minute},
		{name: "until 24h", args: []string{"-u", "12:00"}, want: 2 * time.Hour},
		{name: "until 12h PM", args: []string{"--until", "10:30PM"}, want: 12*time.Hour + 30*time.Minute},
		{name: "invalid until", args: []string{"-u", "25:00"}, wantErr: true},
		{name: "invalid duration", args: []string{"-d", "soon"}, wantErr: true},
		{name: "both flags", args: []string{"-d", "10", "-u", "12:00"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Session
			fs := pflag.NewFlagSet("wiggler", pflag.ContinueOnError)
			RegisterSessionFlags(fs, &s)
			require.NoError(t, fs.Parse(tt.args))

			got, err := s.Resolve(now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionResolveConflict(t *testing.T) {
	_, err := Session{Duration: "5", Until: "12:00"}.Resolve(time.Now())
	assert.ErrorIs(t, err, ErrConflictingSession)
}
