package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8888", cfg.Listen)
	assert.Equal(t, "auto", cfg.Counter.Backend)
	assert.Equal(t, 60, cfg.Counter.BlockSeconds)
	assert.Equal(t, 1000, cfg.Counter.SDN.Priority)
	assert.True(t, cfg.Detection.AutoBlock)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
state_file: /var/lib/ewdefence/blocked.json
countermeasure:
  backend: sdn
  block_seconds: 120
  sdn:
    controller_url: http://10.0.0.1:8080
detection:
  flood_threshold: 500
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "/var/lib/ewdefence/blocked.json", cfg.StateFile)
	assert.Equal(t, "sdn", cfg.Counter.Backend)
	assert.Equal(t, 120, cfg.Counter.BlockSeconds)
	assert.Equal(t, "http://10.0.0.1:8080", cfg.Counter.SDN.ControllerURL)
	assert.Equal(t, 500, cfg.Detection.FloodThreshold)

	// untouched keys keep their defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Detection.IntervalSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("countermeasure:\n  backend: pf\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestLoadRejectsNegativeBlockSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("countermeasure:\n  block_seconds: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsSDNWithoutURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
countermeasure:
  backend: sdn
  sdn:
    controller_url: ""
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
