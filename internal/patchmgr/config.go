// Package patchmgr tracks in-flight speculative patches for a node,
// merges siblings on request, and purges them once a block becomes stable.
package patchmgr

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds manager-level tuning independent of any single patch.
type Config struct {
	// DataDir is where the stable store lives.
	DataDir string `yaml:"data_dir"`

	// RetentionLimit caps how many in-flight branches the manager keeps
	// before refusing new ones; 0 means unlimited.
	RetentionLimit int `yaml:"retention_limit"`

	// PurgeOnStabilize runs Patch.Purge against the new stable baseline for
	// every remaining in-flight branch as soon as one branch stabilizes.
	PurgeOnStabilize bool `yaml:"purge_on_stabilize"`

	// Gossip controls the optional libp2p announcement of stabilized
	// branches (a complexity summary) to peers running their own manager.
	Gossip GossipConfig `yaml:"gossip"`

	// Metrics controls the optional Prometheus exposition of manager gauges.
	Metrics MetricsConfig `yaml:"metrics"`
}

// GossipConfig holds libp2p pubsub settings for stable-branch announcements.
type GossipConfig struct {
	Enabled     bool     `yaml:"enabled"`
	ListenAddrs []string `yaml:"listen_addrs"`
	Topic       string   `yaml:"topic"`
}

// MetricsConfig holds Prometheus registration settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:          "~/.patchdb",
		RetentionLimit:   0,
		PurgeOnStabilize: true,
		Gossip: GossipConfig{
			Enabled:     false,
			ListenAddrs: []string{"/ip4/0.0.0.0/tcp/4501"},
			Topic:       "/patchdb/stable/1.0.0",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "patchdb",
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "patchmgr.yaml"

// LoadConfig loads configuration from a YAML file under dataDir. If the
// file doesn't exist, it creates one populated with default values.
func LoadConfig(dataDir string) (*Config, error) {
	expandedDir := expandPath(dataDir)
	configPath := filepath.Join(expandedDir, ConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.DataDir = dataDir
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# PatchDB manager configuration\n# Generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
