// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr renders the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScraperConfig governs enumeration and detail fetch behavior.
type ScraperConfig struct {
	// MaxItems caps how many listing cards a single job enumerates.
	MaxItems int `mapstructure:"max_items"`
	// Workers bounds concurrent detail fetches per job.
	Workers int `mapstructure:"workers"`
	// WaitTimeoutSeconds bounds the wait for an expected page element.
	WaitTimeoutSeconds int `mapstructure:"wait_timeout_seconds"`
	// NavTimeoutSeconds bounds each browser navigation.
	NavTimeoutSeconds int `mapstructure:"nav_timeout_seconds"`
	// BaseURL is the listing page scraped when no search term is given.
	BaseURL string `mapstructure:"base_url"`
	// SearchURLFormat builds the listing URL for a search term; %s is the
	// escaped term.
	SearchURLFormat string `mapstructure:"search_url_format"`
	// CookieName/CookieValue form the preference cookie installed before the
	// listing renders. Empty name disables the cookie step.
	CookieName  string `mapstructure:"cookie_name"`
	CookieValue string `mapstructure:"cookie_value"`
	UserAgent   string `mapstructure:"user_agent"`
}

// ListingURL resolves the listing page for an optional search term.
func (s ScraperConfig) ListingURL(searchTerm string) string {
	if searchTerm == "" {
		return s.BaseURL
	}
	return fmt.Sprintf(s.SearchURLFormat, url.PathEscape(searchTerm))
}

// WaitTimeout returns the element wait bound as a duration.
func (s ScraperConfig) WaitTimeout() time.Duration {
	return time.Duration(s.WaitTimeoutSeconds) * time.Second
}

// NavTimeout returns the navigation bound as a duration.
func (s ScraperConfig) NavTimeout() time.Duration {
	return time.Duration(s.NavTimeoutSeconds) * time.Second
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("scraper.max_items", 50)
	v.SetDefault("scraper.workers", 5)
	v.SetDefault("scraper.wait_timeout_seconds", 10)
	v.SetDefault("scraper.nav_timeout_seconds", 30)
	v.SetDefault("scraper.base_url", "https://videos.example.com/")
	v.SetDefault("scraper.search_url_format", "https://videos.example.com/search/%s")
	v.SetDefault("scraper.cookie_name", "gender")
	v.SetDefault("scraper.cookie_value", "straight")
	v.SetDefault("scraper.user_agent", "video-scraper-bot/0.1")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scraper.MaxItems <= 0 {
		return fmt.Errorf("scraper.max_items must be > 0")
	}
	if c.Scraper.Workers <= 0 {
		return fmt.Errorf("scraper.workers must be > 0")
	}
	if c.Scraper.WaitTimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.wait_timeout_seconds must be > 0")
	}
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url must be set")
	}
	if _, err := url.Parse(c.Scraper.BaseURL); err != nil {
		return fmt.Errorf("scraper.base_url invalid: %w", err)
	}
	if c.Scraper.SearchURLFormat != "" && !strings.Contains(c.Scraper.SearchURLFormat, "%s") {
		return fmt.Errorf("scraper.search_url_format must contain %%s")
	}
	return nil
}
