package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Scraper.MaxItems != 50 {
		t.Fatalf("expected default max_items 50, got %d", cfg.Scraper.MaxItems)
	}
	if cfg.Scraper.Workers != 5 {
		t.Fatalf("expected default workers 5, got %d", cfg.Scraper.Workers)
	}
	if got := cfg.Scraper.WaitTimeout(); got != 10*time.Second {
		t.Fatalf("expected wait timeout 10s, got %v", got)
	}
	if got := cfg.Scraper.NavTimeout(); got != 30*time.Second {
		t.Fatalf("expected nav timeout 30s, got %v", got)
	}
	if cfg.Scraper.CookieName != "gender" || cfg.Scraper.CookieValue != "straight" {
		t.Fatalf("expected default preference cookie, got %s=%s", cfg.Scraper.CookieName, cfg.Scraper.CookieValue)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  host: 127.0.0.1
  port: 9090
scraper:
  max_items: 10
  workers: 2
  wait_timeout_seconds: 5
  base_url: https://videos.test/
  search_url_format: https://videos.test/find/%s
  cookie_name: ""
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Server.Addr(); got != "127.0.0.1:9090" {
		t.Fatalf("expected addr 127.0.0.1:9090, got %s", got)
	}
	if cfg.Scraper.MaxItems != 10 || cfg.Scraper.Workers != 2 {
		t.Fatalf("expected scraper overrides to apply: %+v", cfg.Scraper)
	}
	if cfg.Scraper.CookieName != "" {
		t.Fatalf("expected cookie disabled, got %q", cfg.Scraper.CookieName)
	}
	if cfg.Logging.Development {
		t.Fatal("expected development logging disabled")
	}
}

func TestListingURL(t *testing.T) {
	t.Parallel()

	s := ScraperConfig{
		BaseURL:         "https://videos.test/",
		SearchURLFormat: "https://videos.test/find/%s",
	}
	if got := s.ListingURL(""); got != "https://videos.test/" {
		t.Fatalf("expected base URL for empty term, got %s", got)
	}
	if got := s.ListingURL("red car"); got != "https://videos.test/find/red%20car" {
		t.Fatalf("expected escaped search URL, got %s", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8000},
		Scraper: ScraperConfig{
			MaxItems:           50,
			Workers:            5,
			WaitTimeoutSeconds: 10,
			BaseURL:            "https://videos.test/",
			SearchURLFormat:    "https://videos.test/find/%s",
		},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid max items",
			cfg: func() Config {
				c := base
				c.Scraper.MaxItems = 0
				return c
			}(),
			want: "scraper.max_items",
		},
		{
			name: "invalid workers",
			cfg: func() Config {
				c := base
				c.Scraper.Workers = -1
				return c
			}(),
			want: "scraper.workers",
		},
		{
			name: "invalid wait timeout",
			cfg: func() Config {
				c := base
				c.Scraper.WaitTimeoutSeconds = 0
				return c
			}(),
			want: "scraper.wait_timeout_seconds",
		},
		{
			name: "missing base url",
			cfg: func() Config {
				c := base
				c.Scraper.BaseURL = ""
				return c
			}(),
			want: "scraper.base_url",
		},
		{
			name: "search format without placeholder",
			cfg: func() Config {
				c := base
				c.Scraper.SearchURLFormat = "https://videos.test/find"
				return c
			}(),
			want: "scraper.search_url_format",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
