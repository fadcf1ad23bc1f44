package ratelimit

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Defaults for requests that match no tier.
const (
	DefaultRequests = 100
	DefaultWindow   = 60 * time.Second
)

// Tier is the limit applied to one group of endpoints.
type Tier struct {
	Name string
	// Path matches itself and everything below it.
	Path string
	// Method restricts the tier to one HTTP method; empty matches all.
	Method string
	Limit  int
	Window time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Default         Tier
	Tiers           []Tier
	CleanupInterval time.Duration
}

// DefaultConfig returns the built-in limits.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Default:         Tier{Name: "default", Limit: DefaultRequests, Window: DefaultWindow},
		Tiers:           DefaultTiers(),
		CleanupInterval: 10 * time.Minute,
	}
}

// DefaultTiers are the per-endpoint limits. Bulk operations that call
// outside services get hourly budgets.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "health", Path: "/health", Method: "GET", Limit: 0},
		{Name: "scrape", Path: "/api/scrape", Limit: 5, Window: time.Hour},
		{Name: "enrich", Path: "/api/enrich-contacts", Limit: 5, Window: time.Hour},
		{Name: "gmail", Path: "/api/gmail/draft", Limit: 10, Window: time.Minute},
		{Name: "jobs", Path: "/api/jobs", Limit: 30, Window: time.Minute},
		{Name: "applications", Path: "/api/applications", Limit: 30, Window: time.Minute},
	}
}

// LoadConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_REQUESTS and
// RATE_LIMIT_WINDOW (seconds) over the defaults.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if n, ok := envPositive("RATE_LIMIT_REQUESTS"); ok {
		cfg.Default.Limit = n
	}
	if n, ok := envPositive("RATE_LIMIT_WINDOW"); ok {
		cfg.Default.Window = time.Duration(n) * time.Second
	}
	return cfg
}

func envPositive(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[rate-limit] ignoring invalid %s=%q", key, v)
		return 0, false
	}
	return n, true
}
