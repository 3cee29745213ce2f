// Package config loads the console configuration from the environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
var DefaultEnvFiles = []string{".env", ".env.local"}

type LogOptions struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	File   string `env:"LOG_FILE" envDefault:"adminctl.log"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // text or json
}

// Validate checks the logging options.
func (l *LogOptions) Validate() error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if l.Format != "text" && l.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", l.Format)
	}
	return nil
}

type Config struct {
	APIURL   string `env:"ADMIN_API_URL" envDefault:"http://localhost:3000/"`
	WebURL   string `env:"ADMIN_WEB_URL"` // Web console used by the edit action; defaults to APIURL
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	PageSize int    `env:"PAGE_SIZE" envDefault:"10"`
	Log      LogOptions
}

// LoadEnv loads the env files that exist and returns how many were loaded.
// Variables already set in the environment are not overridden.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Parse reads env files and parses the environment without validating, so
// callers can apply overrides before calling Normalize and Validate.
func Parse(envFiles ...string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Load reads env files, parses the environment and validates the result.
func Load(envFiles ...string) (*Config, error) {
	cfg, err := Parse(envFiles...)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills derived defaults and makes base URLs end with a slash so
// relative endpoint paths resolve beneath them.
func (c *Config) Normalize() {
	c.APIURL = withTrailingSlash(strings.TrimSpace(c.APIURL))
	if strings.TrimSpace(c.WebURL) == "" {
		c.WebURL = c.APIURL
	}
	c.WebURL = withTrailingSlash(strings.TrimSpace(c.WebURL))
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if err := validateURL("ADMIN_API_URL", c.APIURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("ADMIN_WEB_URL", c.WebURL); err != nil {
		errs = append(errs, err)
	}
	if c.PageSize <= 0 || c.PageSize > 500 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be between 1 and 500, got %d", c.PageSize))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RecordURL returns the web console address of one record.
func (c *Config) RecordURL(resource, id string) string {
	return c.WebURL + url.PathEscape(resource) + "/" + url.PathEscape(id)
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got '%s'", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: '%s'", name, raw)
	}
	return nil
}

func withTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
