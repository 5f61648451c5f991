package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/park285/strawberry-chess/internal/chess"
)

type AppConfig struct {
	EngineName   string `yaml:"engine_name"`
	EngineAuthor string `yaml:"engine_author"`
	DefaultDepth int    `yaml:"default_depth"`
	Seed         int64  `yaml:"seed"`

	WSAddr        string `yaml:"ws_addr"`
	WSMaxSessions int    `yaml:"ws_max_sessions"`
}

func defaults() *AppConfig {
	return &AppConfig{
		EngineName:    "StrawberryChess v1.0",
		EngineAuthor:  "MK",
		DefaultDepth:  chess.DefaultDepth,
		WSAddr:        ":8089",
		WSMaxSessions: 8,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by ENGINE_CONFIG, then environment overrides.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("ENGINE_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("ENGINE_NAME")); v != "" {
		cfg.EngineName = v
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_AUTHOR")); v != "" {
		cfg.EngineAuthor = v
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_DEFAULT_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.Seed = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WSMaxSessions = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.EngineName) == "" {
		return errors.New("engine_name is required")
	}
	if c.DefaultDepth < 1 || c.DefaultDepth > chess.MaxDepth {
		return fmt.Errorf("default_depth %d out of range 1-%d", c.DefaultDepth, chess.MaxDepth)
	}
	if c.Seed < 0 {
		return fmt.Errorf("seed must be >= 0: %d", c.Seed)
	}
	if c.WSMaxSessions <= 0 {
		return fmt.Errorf("ws_max_sessions must be > 0: %d", c.WSMaxSessions)
	}
	return nil
}
