package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/config"
)

func TestLoadDefaultProfile(t *testing.T) {
	cfg, err := config.Load(config.ProfileDefault, "", config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.False(t, cfg.Hash)
	assert.True(t, cfg.Anomaly)
	assert.True(t, cfg.Multihash)
}

func TestLoadQuickProfile(t *testing.T) {
	cfg, err := config.Load(config.ProfileQuick, "", config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.ChunkSize)
	assert.False(t, cfg.Anomaly)
	assert.False(t, cfg.ExtendedAttrs)
}

func TestLoadForensicProfile(t *testing.T) {
	cfg, err := config.Load(config.ProfileForensic, "", config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.True(t, cfg.Hash)
	assert.True(t, cfg.AllAttrs)
}

func TestLoadPerformanceProfile(t *testing.T) {
	cfg, err := config.Load(config.ProfilePerformance, "", config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.ChunkSize)
	assert.False(t, cfg.Multihash)
}

func TestLoadUnknownProfile(t *testing.T) {
	_, err := config.Load(config.Profile("bogus"), "", config.Overrides{})
	assert.Error(t, err)
}

func TestLoadConfigFileOverridesProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 42\nhash: true\n"), 0o644))

	cfg, err := config.Load(config.ProfileDefault, path, config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.ChunkSize)
	assert.True(t, cfg.Hash)
	// Anomaly wasn't mentioned in the file, so the profile default survives.
	assert.True(t, cfg.Anomaly)
}

func TestLoadFlagOverridesBeatConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 42\n"), 0o644))

	override := 99
	cfg, err := config.Load(config.ProfileDefault, path, config.Overrides{ChunkSize: &override})
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.ChunkSize)
}

func TestLoadMissingConfigFileErrors(t *testing.T) {
	_, err := config.Load(config.ProfileDefault, "/nonexistent/path/config.yaml", config.Overrides{})
	assert.Error(t, err)
}
