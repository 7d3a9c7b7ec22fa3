package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration. Stream identity (title, video
// source) lives in the database; this file covers listeners, paths and
// the bootstrap credentials.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Paths  PathsConfig  `yaml:"paths"`
	Stream StreamConfig `yaml:"stream"`
}

// ServerConfig holds network listener settings.
type ServerConfig struct {
	ChatPort   int `yaml:"chat_port"`
	HealthPort int `yaml:"health_port"`
	MaxClients int `yaml:"max_clients"`
}

// PathsConfig holds filesystem paths for data.
type PathsConfig struct {
	Data     string `yaml:"data"`
	Database string `yaml:"database"`
}

// StreamConfig holds bootstrap settings. The creator credentials are only
// used on first run to seed the single creator account.
type StreamConfig struct {
	CreatorNickname string `yaml:"creator_nickname"`
	CreatorPassword string `yaml:"creator_password"`
	HistoryLines    int    `yaml:"history_lines"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			ChatPort:   7000,
			HealthPort: 7001,
			MaxClients: 200,
		},
		Paths: PathsConfig{
			Data:     "./data",
			Database: "./data/velsgot.db",
		},
		Stream: StreamConfig{
			CreatorNickname: "creator",
			HistoryLines:    50,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}
