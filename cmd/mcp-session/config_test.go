package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	// Packages
	assert "github.com/stretchr/testify/assert"
)

func Test_config_001_missing_path_is_zero_value(t *testing.T) {
	cfg, err := loadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, fileConfig{}, cfg)
}

func Test_config_002_parses_yaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(`
clientName: test-client
clientVersion: 1.2.3
requestTimeout: 5s
roots:
  - uri: file:///a
    name: A
`), 0o644))

	cfg, err := loadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "test-client", cfg.ClientName)
	assert.Equal(t, "1.2.3", cfg.ClientVersion)

	timeout, err := cfg.requestTimeout()
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	assert.Len(t, cfg.Roots, 1)
	assert.Equal(t, "file:///a", cfg.Roots[0].URI)
}

func Test_config_003_missing_file_errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
