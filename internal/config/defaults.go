package config

import "github.com/hyperjump/shogo/internal/match"

// ApplyDefaults sets default values for any zero values in cfg. The matcher
// section applies its own defaults during YAML decoding (explicit zeros there
// are meaningful); it is only backfilled when the section is missing entirely.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.CachePath == "" {
		cfg.Storage.CachePath = "/usr/local/var/shogo/data/index-cache.db"
	}
	if cfg.Storage.CacheKeep == 0 {
		cfg.Storage.CacheKeep = 3
	}
	if cfg.Matcher == (match.Config{}) {
		cfg.Matcher = *match.DefaultConfig()
	}
}
