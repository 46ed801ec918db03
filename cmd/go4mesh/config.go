package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds the runtime settings of the command line tool.
type Config struct {
	LogVerbosity int    `yaml:"log_verbosity"`
	CatalogPath  string `yaml:"catalog_path"` // omit for an in-memory catalog
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		LogVerbosity: 2,
	}
}

// LoadConfig reads the yaml config at the given pathname, or returns
// DefaultConfig() if the pathname is empty.
func LoadConfig(pathname string) (*Config, error) {
	config := DefaultConfig()
	if len(pathname) == 0 {
		return config, nil
	}

	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %q", pathname)
	}
	if err = yaml.UnmarshalStrict(buf, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %q", pathname)
	}
	return config, nil
}
