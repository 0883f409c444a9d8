package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the whole server configuration, loaded from TOML over defaults.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Game        GameConfig        `toml:"game"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type GameConfig struct {
	// TickRate is the simulation frequency in steps per second.
	TickRate int `toml:"tick_rate"`
	// LevelsPath points at the YAML progression table. An empty path or a
	// missing file falls back to the compiled-in defaults.
	LevelsPath string `toml:"levels_path"`
}

type LeaderboardConfig struct {
	// Driver selects the store backend: "file" or "postgres".
	Driver          string        `toml:"driver"`
	Path            string        `toml:"path"`
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5175",
			ShutdownTimeout: 10 * time.Second,
		},
		Game: GameConfig{
			TickRate:   30,
			LevelsPath: "data/levels.yaml",
		},
		Leaderboard: LeaderboardConfig{
			Driver:          "file",
			Path:            "data.json",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
