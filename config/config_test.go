package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress == "" || cfg.DataDir == "" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	if cfg.QueueDepth <= 0 || cfg.MailboxDepth <= 0 {
		t.Fatalf("depth defaults missing: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}

	// Loading the written file reproduces the defaults.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again != *cfg {
		t.Fatalf("reload mismatch: %+v vs %+v", again, cfg)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "ListenAddress = \":7777\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":7777" {
		t.Fatalf("explicit field overridden: %s", cfg.ListenAddress)
	}
	if cfg.NetworkName != "lasr-local" {
		t.Fatalf("network default missing: %s", cfg.NetworkName)
	}
	if cfg.QueueDepth != 64 {
		t.Fatalf("queue depth default missing: %d", cfg.QueueDepth)
	}
}

func TestValidateRejectsBadDepths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "QueueDepth = -1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("negative queue depth accepted")
	}
}
