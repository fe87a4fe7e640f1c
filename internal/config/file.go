package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a TOML (.toml) or YAML (.yaml, .yml) file on top of base.
// Keys missing from the file keep their value from base. On error base is
// returned unchanged, including when the file names an unknown log level.
//
// Example TOML:
//
//	port = 9000
//	cors = false
//	maxage = -1
//
//	[mime]
//	".data" = "application/octet-stream"
func LoadFile(path string, base ServerConfig) (ServerConfig, error) {
	cfg := base
	cfg.MimeTypes = maps.Clone(base.MimeTypes)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return base, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return base, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return base, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return base, fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return base, fmt.Errorf("invalid loglevel in config file %s: %w", path, err)
	}
	return cfg, nil
}
