package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	src := `
hit_tolerance = 12.5
strict_contracts = true

[layout]
spread = "two-up-odd"
rotation = 90

[scripting]
timeout = "2s"
`
	cfg, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 12.5, cfg.HitTolerance)
	assert.True(t, cfg.StrictContracts)
	assert.Equal(t, SpreadTwoUpOdd, cfg.Layout.Spread)
	assert.Equal(t, 90, cfg.Layout.Rotation)
	assert.Equal(t, 2*time.Second, cfg.Scripting.Timeout.Duration)
	// untouched keys keep their defaults
	assert.True(t, cfg.Scripting.Enabled)
	assert.Equal(t, 255*1024, cfg.Thumbnail.MaxBytes)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "zoom = 2\n",
		"bad spread":   "[layout]\nspread = \"three-up\"\n",
		"bad rotation": "[layout]\nrotation = 45\n",
		"bad duration": "[scripting]\ntimeout = \"soon\"\n",
		"bad syntax":   "hit_tolerance = \n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644))
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
