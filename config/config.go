// Package config loads and persists the launcher configuration file and maps
// it onto the per-module configuration snapshots.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"resultflow/modules/calculator"
	"resultflow/modules/commands"
	"resultflow/modules/websearch"
)

const (
	appDirName     = "resultflow"
	configFileName = "config.toml"
)

var ErrInvalid = errors.New("invalid configuration")

// ValidationError rejects one key of the file.
type ValidationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s=%q: %s", e.Key, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
	Websearch  WebsearchConfig  `toml:"websearch"`
	Calculator CalculatorConfig `toml:"calculator"`
	Commands   CommandsConfig   `toml:"commands"`
}

type ServerConfig struct {
	Listen         string  `toml:"listen"`
	RequestTimeout string  `toml:"request_timeout"`
	RateLimit      float64 `toml:"rate_limit"`
	Burst          int     `toml:"burst"`
}

// Timeout returns the parsed request timeout. Load has already validated it.
func (c ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return defaultRequestTimeout
	}
	return d
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Enabled flags are pointers so that a missing key means "on".

type WebsearchConfig struct {
	Enabled *bool          `toml:"enabled"`
	Icon    string         `toml:"icon"`
	Engines []EngineConfig `toml:"engines"`
}

type EngineConfig struct {
	Name    string `toml:"name"`
	Trigger string `toml:"trigger"`
	URL     string `toml:"url"`
	Icon    string `toml:"icon"`
	Enabled *bool  `toml:"enabled"`
}

type CalculatorConfig struct {
	Enabled *bool  `toml:"enabled"`
	Icon    string `toml:"icon"`
}

type CommandsConfig struct {
	Enabled *bool          `toml:"enabled"`
	Icon    string         `toml:"icon"`
	Entries []CommandEntry `toml:"entries"`
}

type CommandEntry struct {
	Name        string `toml:"name"`
	Command     string `toml:"command"`
	Description string `toml:"description"`
	Icon        string `toml:"icon"`
}

const (
	defaultListen         = ":8080"
	defaultRequestTimeout = 5 * time.Second
	defaultRateLimit      = 20.0
	defaultBurst          = 40
	defaultLogLevel       = "info"
)

func boolPtr(b bool) *bool { return &b }

func isEnabled(b *bool) bool {
	return b == nil || *b
}

// Default returns the configuration of a fresh installation.
func Default() *Config {
	cfg := &Config{}
	for _, eng := range websearch.DefaultEngines() {
		cfg.Websearch.Engines = append(cfg.Websearch.Engines, EngineConfig{
			Name:    eng.Name,
			Trigger: eng.Trigger,
			URL:     eng.URL,
			Icon:    eng.IconPath,
			Enabled: boolPtr(eng.Enabled),
		})
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(c *Config) {
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListen
	}
	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = defaultRequestTimeout.String()
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = defaultRateLimit
	}
	if c.Server.Burst <= 0 {
		c.Server.Burst = defaultBurst
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Websearch.Enabled == nil {
		c.Websearch.Enabled = boolPtr(true)
	}
	if c.Calculator.Enabled == nil {
		c.Calculator.Enabled = boolPtr(true)
	}
	if c.Commands.Enabled == nil {
		c.Commands.Enabled = boolPtr(true)
	}
}

func validate(c *Config) error {
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return &ValidationError{Key: "server.request_timeout", Value: c.Server.RequestTimeout, Reason: err.Error()}
	}
	if d <= 0 {
		return &ValidationError{Key: "server.request_timeout", Value: c.Server.RequestTimeout, Reason: "must be positive"}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Key: "log.level", Value: c.Log.Level, Reason: "must be debug, info, warn or error"}
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/resultflow/config.toml or the
// platform equivalent, falling back to ~/.config.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appDirName, configFileName)
}

// Load reads path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) WebsearchModule() websearch.Config {
	out := websearch.Config{
		Enabled:  isEnabled(c.Websearch.Enabled),
		IconPath: c.Websearch.Icon,
	}
	for _, e := range c.Websearch.Engines {
		out.Engines = append(out.Engines, websearch.Engine{
			Name:     e.Name,
			Trigger:  e.Trigger,
			URL:      e.URL,
			IconPath: e.Icon,
			Enabled:  isEnabled(e.Enabled),
		})
	}
	return out
}

func (c *Config) CalculatorModule() calculator.Config {
	return calculator.Config{
		Enabled:  isEnabled(c.Calculator.Enabled),
		IconPath: c.Calculator.Icon,
	}
}

func (c *Config) CommandsModule() commands.Config {
	out := commands.Config{
		Enabled:  isEnabled(c.Commands.Enabled),
		IconPath: c.Commands.Icon,
	}
	for _, e := range c.Commands.Entries {
		out.Commands = append(out.Commands, commands.Command{
			Name:        e.Name,
			CommandLine: e.Command,
			Description: e.Description,
			IconPath:    e.Icon,
		})
	}
	return out
}
