// Package config loads the application configuration from
// ~/.config/xplore/config.yaml. A missing or unparseable file yields
// the defaults; configuration is never a startup failure.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"xplore/pkg/logging"
)

// DefaultConfigFile is the config path relative to the home directory.
const DefaultConfigFile = ".config/xplore/config.yaml"

// Default values applied for absent fields.
const (
	DefaultTickRateFPS       = 30.0
	DefaultMaxResults        = 20
	DefaultOAuthCallbackPort = 8477
)

// DefaultView is the view shown at startup.
const DefaultView = "home"

// Config is the application configuration.
type Config struct {
	// TickRateFPS is the tick producer frequency.
	TickRateFPS float64 `yaml:"tick_rate_fps"`

	// DefaultMaxResults is the page size for timeline fetches.
	DefaultMaxResults int `yaml:"default_max_results"`

	// DefaultView is the startup view: home, mentions, bookmarks or search.
	DefaultView string `yaml:"default_view"`

	// OAuthCallbackPort is the local port for the login callback server.
	OAuthCallbackPort int `yaml:"oauth_callback_port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TickRateFPS:       DefaultTickRateFPS,
		DefaultMaxResults: DefaultMaxResults,
		DefaultView:       DefaultView,
		OAuthCallbackPort: DefaultOAuthCallbackPort,
	}
}

// TickInterval converts the configured FPS to a producer period.
func (c Config) TickInterval() time.Duration {
	if c.TickRateFPS <= 0 {
		fps := float64(DefaultTickRateFPS)
		return time.Duration(float64(time.Second) / fps)
	}
	return time.Duration(float64(time.Second) / c.TickRateFPS)
}

// Path returns the default config file location.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigFile)
}

// Load reads the config file at path ("" = default location) and fills
// absent fields with defaults. Any failure falls back to Default().
func Load(path string) Config {
	if path == "" {
		path = Path()
	}
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Config", "Could not read %s: %v", path, err)
		}
		return Default()
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logging.Warn("Config", "Ignoring unparseable config %s: %v", path, err)
		return Default()
	}

	return cfg.normalized()
}

// normalized replaces out-of-range values with defaults.
func (c Config) normalized() Config {
	if c.TickRateFPS <= 0 {
		c.TickRateFPS = DefaultTickRateFPS
	}
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = DefaultMaxResults
	}
	switch c.DefaultView {
	case "home", "mentions", "bookmarks", "search":
	default:
		c.DefaultView = DefaultView
	}
	if c.OAuthCallbackPort <= 0 || c.OAuthCallbackPort > 65535 {
		c.OAuthCallbackPort = DefaultOAuthCallbackPort
	}
	return c
}
