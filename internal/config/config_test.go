package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer("")
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Port != 8089 || cfg.Character.Race != "Human" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Addr() != "127.0.0.1:8089" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadServer_MissingFile(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if cfg.Port != 8089 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadServer_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := `port: 9000
log_level: debug
character:
  name: Thrall
  race: Orc
  class: Shaman
  mode: manual
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Port != 9000 || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Character.Name != "Thrall" || cfg.Character.Mode != "manual" {
		t.Errorf("character = %+v", cfg.Character)
	}
	// Untouched fields keep their defaults.
	if cfg.BindAddress != "127.0.0.1" || cfg.DatabasePath != "data/classicdb.sqlite" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadServer_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "port: [nope"},
		{"port out of range", "port: 70000"},
		{"bad mode", "character:\n  mode: chaotic\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "server.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadServer(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
