// Package config loads service configuration from an optional YAML file
// merged with environment overrides.
package config

import (
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the evaluation service.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	GitHub  GitHubConfig  `koanf:"github"`
	Cache   CacheConfig   `koanf:"cache"`
	History HistoryConfig `koanf:"history"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Port                  string   `koanf:"port"`
	AllowedOrigins        []string `koanf:"allowed_origins"`
	RequestTimeoutSeconds int      `koanf:"request_timeout_seconds"`
	MaxRequestsPerMin     int      `koanf:"max_requests_per_min"`
}

// GitHubConfig controls the upstream client.
type GitHubConfig struct {
	Token             string  `koanf:"token"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// CacheConfig controls the evaluation result cache.
type CacheConfig struct {
	MaxSize    int `koanf:"max_size"`
	TTLSeconds int `koanf:"ttl_seconds"`
}

// HistoryConfig controls evaluation history persistence.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                  "8080",
			AllowedOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
			RequestTimeoutSeconds: 30,
			MaxRequestsPerMin:     60,
		},
		GitHub: GitHubConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Cache: CacheConfig{
			MaxSize:    100,
			TTLSeconds: 1800,
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     "./data",
		},
	}
}

// Load reads configuration from the given YAML file on top of defaults,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
// Environment overrides always apply.
func LoadOrDefault() *Config {
	for _, path := range []string{"ghscore.yaml", "ghscore.yml", ".ghscore.yaml", ".ghscore.yml"} {
		if _, err := os.Stat(path); err == nil {
			if cfg, err := Load(path); err == nil {
				return cfg
			}
		}
	}

	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.History.Dir = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			c.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("CACHE_MAX_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			c.Cache.MaxSize = size
		}
	}
}
