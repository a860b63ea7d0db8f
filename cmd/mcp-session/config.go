package main

import (
	"fmt"
	"os"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// fileConfig is the optional YAML config file read by --config, following
// the teacher's front-matter-as-yaml convention (pkg/agent/agent.go) for
// settings a caller would rather not repeat on every invocation.
type fileConfig struct {
	ClientName     string        `yaml:"clientName"`
	ClientVersion  string        `yaml:"clientVersion"`
	RequestTimeout string        `yaml:"requestTimeout"`
	Roots          []schema.Root `yaml:"roots"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// loadConfig reads and parses a YAML config file. A missing path is not an
// error: it simply yields the zero fileConfig, so --config is optional.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("mcp-session: reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("mcp-session: parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// requestTimeout parses the config's RequestTimeout string, returning 0 if
// it is empty so callers can tell "unset" apart from a parse failure.
func (c fileConfig) requestTimeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.RequestTimeout)
}
