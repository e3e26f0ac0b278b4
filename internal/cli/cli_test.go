package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.Config
	}{
		{
			name: "positional",
			args: []string{"project.hcl"},
			want: app.Config{ProjectPath: "project.hcl", LogFormat: "text", LogLevel: "info", TickInterval: app.DefaultTickInterval},
		},
		{
			name: "all flags",
			args: []string{"-p", "proj", "-log-format", "JSON", "-log-level", "debug", "-status-port", "8081",
				"-watch", "-out", "textures", "-backend", "socketio", "-workers", "3", "-strict"},
			want: app.Config{
				ProjectPath: "proj", OutDir: "textures", LogFormat: "json", LogLevel: "debug",
				StatusPort: 8081, Watch: true, Backend: "socketio", Workers: 3, Strict: true,
				TickInterval: app.DefaultTickInterval,
			},
		},
		{
			name: "long flag wins over positional",
			args: []string{"-project", "a", "b"},
			want: app.Config{ProjectPath: "a", LogFormat: "text", LogLevel: "info", TickInterval: app.DefaultTickInterval},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tc.want, *cfg)
		})
	}
}

func TestParse_Exits(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-nope"}, "flag provided but not defined"},
		{[]string{"-log-format", "xml", "p"}, "invalid log-format"},
		{[]string{"-log-level", "trace", "p"}, "invalid log-level"},
		{[]string{"-backend", "gpu", "p"}, `invalid backend "gpu"`},
		{[]string{"-status-port", "70000", "p"}, "invalid status-port"},
		{[]string{"-workers", "-2", "p"}, "Workers cannot be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
