// Package config loads the daemon settings: built-in defaults, then an
// optional YAML file, then EQUIDASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hnrobert/equidash/internal/analytics"
)

const DefaultDisclosure = `- Educational & informational only
- No investment advice
- Past performance is not indicative of future returns
- Reports must not be forwarded or redistributed
- User bears full market risk
`

type Config struct {
	Listen   string `yaml:"listen"`
	Title    string `yaml:"title"`
	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`

	// UsersFile is the CSV credential store.
	UsersFile string `yaml:"users_file"`

	// JWTSecret signs session cookies. Empty means a random secret per
	// process start, which logs everyone out on restart.
	JWTSecret     string        `yaml:"jwt_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	TouchInterval time.Duration `yaml:"touch_interval"`
	Cookie        Cookie        `yaml:"cookie"`

	Analytics analytics.Thresholds `yaml:"analytics"`

	// Disclosure is markdown shown on the login page. Users must accept it
	// before signing in.
	Disclosure string `yaml:"disclosure"`
}

type Cookie struct {
	Name   string `yaml:"name"`
	Secure bool   `yaml:"secure"`
}

func DefaultPath() string {
	return filepath.Join("/etc", "equidash", "config.yaml")
}

func Default() Config {
	return Config{
		Listen:        ":8501",
		Title:         "EquiAlgo Client Report",
		LogLevel:      "info",
		UsersFile:     filepath.Join("data", "users.csv"),
		SessionTTL:    12 * time.Hour,
		TouchInterval: time.Minute,
		Cookie:        Cookie{Name: "equidash_session"},
		Analytics:     analytics.DefaultThresholds(),
		Disclosure:    DefaultDisclosure,
	}
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		case len(b) > 0:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"EQUIDASH_LISTEN":      &cfg.Listen,
		"EQUIDASH_TITLE":       &cfg.Title,
		"EQUIDASH_LOG_DIR":     &cfg.LogDir,
		"EQUIDASH_LOG_LEVEL":   &cfg.LogLevel,
		"EQUIDASH_USERS_FILE":  &cfg.UsersFile,
		"EQUIDASH_JWT_SECRET":  &cfg.JWTSecret,
		"EQUIDASH_COOKIE_NAME": &cfg.Cookie.Name,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	dur := map[string]*time.Duration{
		"EQUIDASH_SESSION_TTL":    &cfg.SessionTTL,
		"EQUIDASH_TOUCH_INTERVAL": &cfg.TouchInterval,
	}
	for key, dst := range dur {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v := os.Getenv("EQUIDASH_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EQUIDASH_COOKIE_SECURE: %w", err)
		}
		cfg.Cookie.Secure = b
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Listen) == "":
		return errors.New("config: listen address is required")
	case strings.TrimSpace(c.UsersFile) == "":
		return errors.New("config: users_file is required")
	case c.SessionTTL <= 0:
		return errors.New("config: session_ttl must be positive")
	case c.TouchInterval < 0:
		return errors.New("config: touch_interval must not be negative")
	case strings.TrimSpace(c.Cookie.Name) == "":
		return errors.New("config: cookie name is required")
	case c.Analytics.Warm < 0 || c.Analytics.Hot < c.Analytics.Warm:
		return fmt.Errorf("config: analytics thresholds need 0 <= warm <= hot (got warm=%d hot=%d)", c.Analytics.Warm, c.Analytics.Hot)
	}
	return nil
}
