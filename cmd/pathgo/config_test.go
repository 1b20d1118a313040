package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "pathgo.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &config{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathgo.yaml")

	data := `runtime: 8s
batch_size: 32
min_delay: 2ms
weight: length
output_dir: /tmp/runs
s3:
  bucket: demo-bucket
  prefix: routes/
presets:
  smalltown:
    seed: 12
    lat: 48.1
    lon: 11.5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8*time.Second, time.Duration(cfg.Runtime))
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 2*time.Millisecond, time.Duration(cfg.MinDelay))
	assert.Equal(t, "length", cfg.Weight)
	assert.Equal(t, "/tmp/runs", cfg.OutputDir)
	assert.Equal(t, "demo-bucket", cfg.S3.Bucket)
	assert.Equal(t, "routes/", cfg.S3.Prefix)
}

func TestConfigPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathgo.yaml")

	data := `presets:
  smalltown:
    seed: 12
    lat: 48.1
    lon: 11.5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	p, ok := cfg.preset("smalltown")
	require.True(t, ok)
	assert.Equal(t, int64(12), p.Seed)
	assert.Equal(t, 48.1, p.Lat)
	assert.Equal(t, 40, p.Width, "defaults fill unset preset fields")

	_, ok = cfg.preset("tokyo")
	assert.True(t, ok, "built-ins stay visible")

	_, ok = cfg.preset("atlantis")
	assert.False(t, ok)
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime: fast\n"), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
