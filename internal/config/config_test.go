package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProfile = `{
	"name": "Anna Lindqvist",
	"email": "anna@example.com",
	"phone": "0700000000",
	"town": "Sollentuna",
	"biography": "- Bor i Sollentuna",
	"experience": {"restaurant": "- Barista på kafé (2024)"},
	"cv_files": {"general": "CV_General.pdf"}
}`

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "LLM_PROVIDER", "ALLOWED_ORIGINS", "SCRAPE_WORKERS", "TELEGRAM_CHAT_ID", "FEED_URLS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, []string{"http://localhost:8000", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultDraftsMailbox, cfg.DraftsMailbox)
	assert.Empty(t, cfg.FeedURLs)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/jobs")
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("FEED_URLS", "https://a.example/rss, ,https://b.example/rss")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "g-key", cfg.LLMAPIKey())
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.FeedURLs)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "eighty"},
		{"port out of range", "PORT", "70000"},
		{"bad provider", "LLM_PROVIDER", "openai"},
		{"zero workers", "SCRAPE_WORKERS", "0"},
		{"bad chat id", "TELEGRAM_CHAT_ID", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestRequireMailbox(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireMailbox()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GMAIL_APP_PASSWORD")

	cfg.GmailUser = "me@gmail.com"
	cfg.GmailAppPassword = "abcd efgh"
	assert.NoError(t, cfg.RequireMailbox())
}

func TestRequireBucket(t *testing.T) {
	cfg := &Config{CVBucket: "cvs"}
	assert.True(t, cfg.UsesBucket())
	assert.Error(t, cfg.RequireBucket())

	cfg.CVAccessKey, cfg.CVSecretKey = "ak", "sk"
	assert.NoError(t, cfg.RequireBucket())
}

func TestLoadProfile_ValidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(validProfile), 0644))

	p, err := LoadProfile(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Anna Lindqvist", p.Name)
	assert.Equal(t, "Sollentuna", p.Town)
	assert.Equal(t, DefaultKeywords(), p.Keywords, "keywords should fall back to defaults")
	assert.Equal(t, DefaultLocations(), p.Locations, "locations should fall back to defaults")
}

func TestLoadProfile_ExampleFileIsValid(t *testing.T) {
	p, err := LoadProfile(filepath.Join("..", "..", "configs", "profile.example.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.Experience["restaurant"])
	assert.Contains(t, p.ForbiddenTopics, "Shopify")
	assert.Equal(t, "B-körkort", p.DrivingLicence)
	assert.NotEmpty(t, p.Sectors)
}

func TestLoadProfile_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	p, err := LoadProfile(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestLoadProfile_FileNotFound(t *testing.T) {
	p, err := LoadProfile("/nonexistent/path/profile.json")
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "failed to read profile file")
}

func TestLoadProfile_EmptyPath(t *testing.T) {
	p, err := LoadProfile("")
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "profile path is empty")
}

func TestParseProfile_MissingRequired(t *testing.T) {
	p, err := ParseProfile([]byte(`{"name": "Anna", "email": "anna@example.com"}`))
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "schema")
}

func TestParseProfile_BadEmail(t *testing.T) {
	doc := `{"name":"A","email":"not-an-email","phone":"1","town":"T","biography":"B","experience":{"restaurant":"x"}}`
	p, err := ParseProfile([]byte(doc))
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "profile error")
}

func TestMergeWithDefaults_KeepsCustomValues(t *testing.T) {
	p := Profile{Keywords: []string{"kock"}, Locations: []string{"Malmö"}}
	merged := p.MergeWithDefaults()

	assert.Equal(t, []string{"kock"}, merged.Keywords)
	assert.Equal(t, []string{"Malmö"}, merged.Locations)
	assert.NotNil(t, merged.CVFiles)
}
