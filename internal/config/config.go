// Package config builds the immutable configuration snapshot of the client.
// Values come from environment variables with fallback defaults, optionally
// seeded from a .env file and an on-disk YAML file; the environment always
// wins. The snapshot is read once at startup and never reloaded.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	EnvAPIURL               = "STYLEAI_API_URL"
	EnvAPITimeout           = "STYLEAI_API_TIMEOUT"
	EnvStripePublishableKey = "STYLEAI_STRIPE_PUBLISHABLE_KEY"
	EnvAppName              = "STYLEAI_APP_NAME"
	EnvAppVersion           = "STYLEAI_APP_VERSION"
	EnvDebugMode            = "STYLEAI_DEBUG_MODE"
	EnvEnableConsoleLogs    = "STYLEAI_ENABLE_CONSOLE_LOGS"
	EnvDataDir              = "STYLEAI_DATA_DIR"
)

const (
	defaultAPITimeout = 10 * time.Second
	defaultAppName    = "Style AI"
	defaultAppVersion = "0.0.1"
)

type Config struct {
	APIURL               string        `yaml:"apiURL"`
	APITimeout           time.Duration `yaml:"apiTimeout"`
	StripePublishableKey string        `yaml:"stripePublishableKey"`
	AppName              string        `yaml:"appName"`
	AppVersion           string        `yaml:"appVersion"`
	DebugMode            bool          `yaml:"debugMode"`
	EnableConsoleLogs    bool          `yaml:"enableConsoleLogs"`
	DataDir              string        `yaml:"dataDir"`
}

// Load builds the configuration snapshot. A .env file in the working
// directory is loaded first if present (it never overrides variables already
// set in the environment), then the optional YAML file at yamlPath, then the
// environment on top.
func Load(yamlPath string) (*Config, error) {
	// godotenv.Load leaves existing environment variables untouched.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := &Config{
		APITimeout: defaultAPITimeout,
		AppName:    defaultAppName,
		AppVersion: defaultAppVersion,
	}

	if yamlPath != "" {
		if err := mergeYAMLFile(cfg, yamlPath); err != nil {
			return nil, err
		}
	}

	if err := mergeEnv(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func mergeYAMLFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return nil
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvAPITimeout); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvAPITimeout, err)
		}
		cfg.APITimeout = timeout
	}
	if v := os.Getenv(EnvStripePublishableKey); v != "" {
		cfg.StripePublishableKey = v
	}
	if v := os.Getenv(EnvAppName); v != "" {
		cfg.AppName = v
	}
	if v := os.Getenv(EnvAppVersion); v != "" {
		cfg.AppVersion = v
	}
	if v := os.Getenv(EnvDebugMode); v != "" {
		cfg.DebugMode = v == "true"
	}
	if v := os.Getenv(EnvEnableConsoleLogs); v != "" {
		cfg.EnableConsoleLogs = v == "true"
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}

	return nil
}

// parseTimeout accepts both Go duration syntax ("10s") and a bare
// millisecond count ("10000"), the latter matching the historical
// configuration surface.
func parseTimeout(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		if ms <= 0 {
			return 0, errors.New("timeout must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("timeout must be positive")
	}

	return d, nil
}

func applyDefaults(cfg *Config) {
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = defaultAPITimeout
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.AppVersion == "" {
		cfg.AppVersion = defaultAppVersion
	}
	if cfg.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(dir, "styleai")
		}
	}
}

func validate(cfg *Config) error {
	if cfg.APIURL == "" {
		return fmt.Errorf("%s is required", EnvAPIURL)
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("parsing API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API URL must be http or https, got %q", cfg.APIURL)
	}
	if u.Host == "" {
		return errors.New("API URL is missing a host")
	}

	if cfg.DataDir == "" {
		return errors.New("data directory could not be determined")
	}

	return nil
}

// TokenPath returns the location of the persisted bearer token slot.
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, "auth_token")
}

// GalleryDBPath returns the location of the local gallery database.
func (c *Config) GalleryDBPath() string {
	return filepath.Join(c.DataDir, "gallery.db")
}

// GalleryDir returns the directory downloaded images are written to.
func (c *Config) GalleryDir() string {
	return filepath.Join(c.DataDir, "gallery")
}
