// Package config provides configuration loading and validation for the job agent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default values for optional settings.
const (
	DefaultDatabaseURL    = "sqlite://data/jobs.db"
	DefaultIMAPAddr       = "imap.gmail.com:993"
	DefaultDraftsMailbox  = "[Gmail]/Drafts"
	DefaultProfilePath    = "configs/profile.json"
	DefaultCVDir          = "cv"
	DefaultAllowedOrigins = "http://localhost:8000,http://localhost:3000"
	DefaultPort           = 8000
	DefaultScrapeWorkers  = 4
)

// Config holds process-wide settings read from the environment.
// Credentials are optional at load time and checked by the Require* methods
// right before the component that needs them is used.
type Config struct {
	DatabaseURL string
	Port        int

	// Text generation
	LLMProvider     string
	AnthropicAPIKey string
	GeminiAPIKey    string

	// Mailbox used for draft filing
	GmailUser        string
	GmailAppPassword string
	IMAPAddr         string
	DraftsMailbox    string

	// Candidate profile and résumé variants
	ProfilePath string
	CVDir       string
	CVBucket    string
	CVEndpoint  string
	CVRegion    string
	CVAccessKey string
	CVSecretKey string

	// HTTP
	AllowedOrigins []string

	// Ingestion
	FeedURLs      []string
	ScrapeWorkers int
	UseBrowser    bool

	// Contact research
	SearchAPIKey   string
	SearchEngineID string

	// Notifications and mirrors
	TelegramToken    string
	TelegramChatID   int64
	RabbitMQURL      string
	NotionToken      string
	NotionDatabaseID string
}

// Load reads the configuration from environment variables.
// Callers are expected to have loaded any .env file beforehand.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("SCRAPE_WORKERS", DefaultScrapeWorkers)
	if err != nil {
		return nil, err
	}

	var chatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		chatID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %v", err)
		}
	}

	cfg := &Config{
		DatabaseURL:      getEnvString("DATABASE_URL", DefaultDatabaseURL),
		Port:             port,
		LLMProvider:      strings.ToLower(getEnvString("LLM_PROVIDER", "anthropic")),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GmailUser:        os.Getenv("GMAIL_USER"),
		GmailAppPassword: os.Getenv("GMAIL_APP_PASSWORD"),
		IMAPAddr:         getEnvString("IMAP_ADDR", DefaultIMAPAddr),
		DraftsMailbox:    getEnvString("DRAFTS_MAILBOX", DefaultDraftsMailbox),
		ProfilePath:      getEnvString("PROFILE_PATH", DefaultProfilePath),
		CVDir:            getEnvString("CV_DIR", DefaultCVDir),
		CVBucket:         os.Getenv("CV_BUCKET"),
		CVEndpoint:       os.Getenv("CV_ENDPOINT"),
		CVRegion:         getEnvString("CV_REGION", "auto"),
		CVAccessKey:      os.Getenv("CV_ACCESS_KEY"),
		CVSecretKey:      os.Getenv("CV_SECRET_KEY"),
		AllowedOrigins:   splitList(getEnvString("ALLOWED_ORIGINS", DefaultAllowedOrigins)),
		FeedURLs:         splitList(os.Getenv("FEED_URLS")),
		ScrapeWorkers:    workers,
		UseBrowser:       getEnvBool("USE_BROWSER", false),
		SearchAPIKey:     os.Getenv("SEARCH_API_KEY"),
		SearchEngineID:   os.Getenv("SEARCH_ENGINE_ID"),
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   chatID,
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that are wrong regardless of which features are used.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ScrapeWorkers < 1 {
		return fmt.Errorf("config error: SCRAPE_WORKERS must be at least 1, got %d", c.ScrapeWorkers)
	}
	switch c.LLMProvider {
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("config error: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

// LLMAPIKey returns the key for the configured provider, or "" when unset.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.AnthropicAPIKey
}

// RequireMailbox reports whether draft filing credentials are present.
func (c *Config) RequireMailbox() error {
	if c.GmailUser == "" || c.GmailAppPassword == "" {
		return fmt.Errorf("Gmail credentials not configured. Set GMAIL_USER and GMAIL_APP_PASSWORD in .env")
	}
	return nil
}

// UsesBucket reports whether résumé files are read from object storage.
func (c *Config) UsesBucket() bool {
	return c.CVBucket != ""
}

// RequireBucket reports whether object storage credentials are complete.
func (c *Config) RequireBucket() error {
	if c.CVBucket == "" {
		return fmt.Errorf("CV_BUCKET is required but not set")
	}
	if c.CVAccessKey == "" || c.CVSecretKey == "" {
		return fmt.Errorf("CV_ACCESS_KEY and CV_SECRET_KEY are required when CV_BUCKET is set")
	}
	return nil
}

// SearchEnabled reports whether web search is configured for contact research.
func (c *Config) SearchEnabled() bool {
	return c.SearchAPIKey != "" && c.SearchEngineID != ""
}

// TelegramEnabled reports whether urgent-listing notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// NotionEnabled reports whether the application tracker mirror is configured.
func (c *Config) NotionEnabled() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
