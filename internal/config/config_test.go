package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("stream:\n  creator_password: hunter2\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.ChatPort != 7000 || cfg.Server.HealthPort != 7001 {
		t.Fatalf("default ports = %d/%d", cfg.Server.ChatPort, cfg.Server.HealthPort)
	}
	if cfg.Stream.CreatorNickname != "creator" {
		t.Fatalf("default creator nickname = %q", cfg.Stream.CreatorNickname)
	}
	if cfg.Stream.CreatorPassword != "hunter2" {
		t.Fatalf("creator password = %q, want value from file", cfg.Stream.CreatorPassword)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  chat_port: 9000
  max_clients: 5
paths:
  database: /tmp/test.db
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ChatPort != 9000 || cfg.Server.MaxClients != 5 {
		t.Fatalf("overrides not applied: %+v", cfg.Server)
	}
	if cfg.Paths.Database != "/tmp/test.db" {
		t.Fatalf("database path = %q", cfg.Paths.Database)
	}
	if cfg.Paths.Data != "./data" {
		t.Fatalf("untouched default changed: %q", cfg.Paths.Data)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
