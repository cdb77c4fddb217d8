// Package config loads server configuration from YAML with sane
// defaults for every field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CharacterConfig seeds the character the engine drives.
type CharacterConfig struct {
	// Name is generated from the race's name pools when empty.
	Name  string `yaml:"name"`
	Race  string `yaml:"race"`
	Class string `yaml:"class"`
	Mode  string `yaml:"mode"`
}

// ServerConfig is the full server configuration.
type ServerConfig struct {
	BindAddress  string          `yaml:"bind_address"`
	Port         int             `yaml:"port"`
	LogLevel     string          `yaml:"log_level"`
	DatabasePath string          `yaml:"database_path"`
	GuidePath    string          `yaml:"guide_path"`
	Character    CharacterConfig `yaml:"character"`
}

// DefaultServer returns the configuration used when no file exists.
func DefaultServer() ServerConfig {
	return ServerConfig{
		BindAddress:  "127.0.0.1",
		Port:         8089,
		LogLevel:     "info",
		DatabasePath: "data/classicdb.sqlite",
		GuidePath:    "",
		Character: CharacterConfig{
			Race:  "Human",
			Class: "Warrior",
			Mode:  "auto",
		},
	}
}

// LoadServer reads the configuration at path. A missing file yields
// the defaults; a malformed one is an error.
func LoadServer(path string) (ServerConfig, error) {
	cfg := DefaultServer()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Character.Mode {
	case "auto", "manual":
	default:
		return fmt.Errorf("unknown character mode %q", c.Character.Mode)
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}
