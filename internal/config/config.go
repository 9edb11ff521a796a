package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BindIP           string
	Port             int
	TickInterval     time.Duration
	PullTimeout      time.Duration
	DiscoveryTimeout time.Duration
	// RemoteTTLTicks is how many missed ticks a remote entry survives.
	RemoteTTLTicks int
	Protocol       string
	HistoryPath    string
	LogPath        string
	LogLevel       string
	// Peer health thresholds: a learned peer is dropped after sustained
	// pull failures and re-admitted after enough successes.
	PeerDownWindow       time.Duration
	PeerDownFailures     int
	PeerRecoverSuccesses int
}

func DefaultConfig() Config {
	return Config{
		BindIP:           "127.0.0.1",
		Port:             8346,
		TickInterval:     3 * time.Second,
		PullTimeout:      350 * time.Millisecond,
		DiscoveryTimeout: 500 * time.Millisecond,
		RemoteTTLTicks:   8,
		Protocol:         "http",
		HistoryPath:      filepath.Join(defaultStateDir(), "history.db"),
		LogPath:          filepath.Join(defaultStateDir(), "agent-box.log"),
		LogLevel:         "info",

		PeerDownWindow:       30 * time.Second,
		PeerDownFailures:     3,
		PeerRecoverSuccesses: 2,
	}
}

// RemoteTTL is the grace period before a silent peer's sessions disappear.
func (c Config) RemoteTTL() time.Duration {
	return time.Duration(c.RemoteTTLTicks) * c.TickInterval
}

// fileOverlay mirrors the optional config file. Every field is a pointer so
// an absent key leaves the default untouched; durations are strings in
// time.ParseDuration syntax.
type fileOverlay struct {
	BindIP           *string `yaml:"bind_ip"`
	Port             *int    `yaml:"port"`
	TickInterval     *string `yaml:"tick_interval"`
	PullTimeout      *string `yaml:"pull_timeout"`
	DiscoveryTimeout *string `yaml:"discovery_timeout"`
	RemoteTTLTicks   *int    `yaml:"remote_ttl_ticks"`
	Protocol         *string `yaml:"protocol"`
	HistoryPath      *string `yaml:"history_path"`
	LogPath          *string `yaml:"log_path"`
	LogLevel         *string `yaml:"log_level"`
}

// Load returns the defaults overlaid with the config file at path, when one
// exists. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.apply(overlay); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(overlay fileOverlay) error {
	if overlay.BindIP != nil {
		c.BindIP = *overlay.BindIP
	}
	if overlay.Port != nil {
		c.Port = *overlay.Port
	}
	if err := applyDuration(&c.TickInterval, overlay.TickInterval, "tick_interval"); err != nil {
		return err
	}
	if err := applyDuration(&c.PullTimeout, overlay.PullTimeout, "pull_timeout"); err != nil {
		return err
	}
	if err := applyDuration(&c.DiscoveryTimeout, overlay.DiscoveryTimeout, "discovery_timeout"); err != nil {
		return err
	}
	if overlay.RemoteTTLTicks != nil {
		c.RemoteTTLTicks = *overlay.RemoteTTLTicks
	}
	if overlay.Protocol != nil {
		c.Protocol = *overlay.Protocol
	}
	if overlay.HistoryPath != nil {
		c.HistoryPath = *overlay.HistoryPath
	}
	if overlay.LogPath != nil {
		c.LogPath = *overlay.LogPath
	}
	if overlay.LogLevel != nil {
		c.LogLevel = *overlay.LogLevel
	}
	return nil
}

func applyDuration(dst *time.Duration, src *string, key string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "agent-box.yaml"
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "agent-box", "config.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agent-box"
	}
	return filepath.Join(home, ".local", "state", "agent-box")
}
