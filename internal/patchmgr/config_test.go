package patchmgr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataDir != "~/.patchdb" {
		t.Errorf("expected ~/.patchdb, got %s", cfg.DataDir)
	}
	if cfg.RetentionLimit != 0 {
		t.Errorf("expected unlimited retention, got %d", cfg.RetentionLimit)
	}
	if !cfg.PurgeOnStabilize {
		t.Error("expected PurgeOnStabilize to default true")
	}
	if cfg.Gossip.Enabled {
		t.Error("expected gossip disabled by default")
	}
	if !cfg.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	if cfg.DataDir != tmpDir {
		t.Errorf("expected DataDir %s, got %s", tmpDir, cfg.DataDir)
	}
}

func TestLoadConfigReadsExisting(t *testing.T) {
	tmpDir := t.TempDir()

	customConfig := `data_dir: ` + tmpDir + `
retention_limit: 5
purge_on_stabilize: false
gossip:
  enabled: true
  topic: /patchdb/stable/2.0.0
metrics:
  enabled: false
`
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(customConfig), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RetentionLimit != 5 {
		t.Errorf("expected RetentionLimit 5, got %d", cfg.RetentionLimit)
	}
	if cfg.PurgeOnStabilize {
		t.Error("expected PurgeOnStabilize false")
	}
	if !cfg.Gossip.Enabled {
		t.Error("expected gossip enabled")
	}
	if cfg.Gossip.Topic != "/patchdb/stable/2.0.0" {
		t.Errorf("expected overridden topic, got %s", cfg.Gossip.Topic)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
}
