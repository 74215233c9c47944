// Package config loads the service configuration from a YAML file, applying
// defaults for anything not set.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen    string        `yaml:"listen"`
	StateFile string        `yaml:"state_file"`
	AccessLog string        `yaml:"access_log"`
	Redis     RedisConfig   `yaml:"redis"`
	Counter   CounterConfig `yaml:"countermeasure"`
	Detection DetectConfig  `yaml:"detection"`
	Logging   LogConfig     `yaml:"logging"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CounterConfig struct {
	Backend      string    `yaml:"backend"` // auto, netsh, iptables, sdn
	BlockSeconds int       `yaml:"block_seconds"`
	SDN          SDNConfig `yaml:"sdn"`
}

type SDNConfig struct {
	ControllerURL string `yaml:"controller_url"`
	Dpid          int    `yaml:"dpid"`
	Priority      int    `yaml:"priority"`
}

type DetectConfig struct {
	WindowSeconds       int     `yaml:"window_seconds"`
	IntervalSeconds     int     `yaml:"analysis_interval_seconds"`
	FloodThreshold      int     `yaml:"flood_threshold"`       // per-IP requests per window
	BotnetThreshold     int     `yaml:"botnet_threshold"`      // total requests before entropy check
	EntropyMin          float64 `yaml:"entropy_min"`           // below this, sources look coordinated
	PathRepeatThreshold int     `yaml:"path_repeat_threshold"` // hits on a single path per window
	AutoBlock           bool    `yaml:"auto_block"`
	MinConfidence       float64 `yaml:"mitigation_confidence"` // auto-block at or above this
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:    ":8888",
		StateFile: "controller_logs/blocked.json",
		AccessLog: "access.log",
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Counter: CounterConfig{
			Backend:      "auto",
			BlockSeconds: 60,
			SDN: SDNConfig{
				ControllerURL: "http://127.0.0.1:8080",
				Dpid:          1,
				Priority:      1000,
			},
		},
		Detection: DetectConfig{
			WindowSeconds:       60,
			IntervalSeconds:     5,
			FloodThreshold:      200,
			BotnetThreshold:     1000,
			EntropyMin:          3.0,
			PathRepeatThreshold: 500,
			AutoBlock:           true,
			MinConfidence:       0.7,
		},
		Logging: LogConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}

// Load reads path on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Counter.Backend {
	case "auto", "netsh", "iptables", "sdn":
	default:
		return fmt.Errorf("unknown countermeasure backend %q", c.Counter.Backend)
	}
	if c.Counter.BlockSeconds < 0 {
		return fmt.Errorf("block_seconds must be >= 0, got %d", c.Counter.BlockSeconds)
	}
	if c.Counter.Backend == "sdn" && c.Counter.SDN.ControllerURL == "" {
		return fmt.Errorf("sdn backend selected but controller_url is empty")
	}
	if c.Detection.WindowSeconds <= 0 || c.Detection.IntervalSeconds <= 0 {
		return fmt.Errorf("detection window and interval must be positive")
	}
	return nil
}
