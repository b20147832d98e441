// Package config provides configuration loading and structs for the Shogo matcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/shogo/internal/match"
)

// Config holds all configuration for the application.
type Config struct {
	Debug        bool               `yaml:"debug"`
	Server       ServerConfig       `yaml:"server"`
	Storage      StorageConfig      `yaml:"storage"`
	Bibliography BibliographyConfig `yaml:"bibliography"`
	Matcher      match.Config       `yaml:"matcher"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the index cache location and retention.
type StorageConfig struct {
	CachePath string `yaml:"cache_path"`
	// CacheKeep is how many cached index snapshots to retain.
	CacheKeep int `yaml:"cache_keep"`
}

// BibliographyConfig holds the reference bibliography source.
type BibliographyConfig struct {
	// Path is the reference collection file (.csv, .ods, or .xlsx).
	Path string `yaml:"path"`
	// Watch reloads the index when the bibliography file changes (server mode).
	Watch bool `yaml:"watch"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed, or if the
// matcher section is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Matcher.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.CachePath = expandPath(cfg.Storage.CachePath, configDir)
	if cfg.Bibliography.Path != "" {
		cfg.Bibliography.Path = expandPath(cfg.Bibliography.Path, configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
