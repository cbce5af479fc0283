package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MoversScanner/internal/domain"
)

func validConfig() Config {
	cfg := defaultConfig()
	cfg.WordPress.APIURL = "https://example.org/wp-json/movers/v1/post"
	cfg.WordPress.Username = "editor"
	cfg.WordPress.Password = "pass"
	cfg.Groq.APIKey = "gsk_test"
	return cfg
}

func TestValidateRequiresCredentials(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	missingURL := validConfig()
	missingURL.WordPress.APIURL = ""
	assert.ErrorContains(t, missingURL.Validate(), "wordpress api url")

	missingUser := validConfig()
	missingUser.WordPress.Username = ""
	assert.ErrorContains(t, missingUser.Validate(), "username")

	missingPass := validConfig()
	missingPass.WordPress.Password = ""
	assert.ErrorContains(t, missingPass.Validate(), "password")

	missingKey := validConfig()
	missingKey.Groq.APIKey = ""
	assert.ErrorContains(t, missingKey.Validate(), "groq api key")
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	daily, err := cfg.FindListing(domain.Daily, domain.Gainer)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, daily.MinChangePercent, 1e-9)
	assert.Len(t, daily.URLs, 2)

	monthly, err := cfg.FindListing(domain.Monthly, domain.Loser)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, monthly.MinChangePercent, 1e-9)

	assert.Equal(t, 90, cfg.Pipeline.RecencyWindowDays)
	assert.Equal(t, 1, cfg.Pipeline.PublishDelaySeconds)
	assert.Equal(t, 256, cfg.Groq.MaxTokens)
	assert.InDelta(t, 0.4, cfg.Groq.Temperature, 1e-9)
	assert.False(t, cfg.WordPress.SkipPreflight)
}

func TestFindListingUnknownRun(t *testing.T) {
	t.Parallel()

	cfg := Config{Listings: []ListingConfig{{Mode: domain.Daily, Direction: domain.Gainer}}}
	_, err := cfg.FindListing(domain.Monthly, domain.Loser)
	assert.ErrorContains(t, err, "no listing configured")
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movers.yaml")
	raw := `
logging:
  level: debug
wordpress:
  apiUrl: https://file.example.org/wp-json/movers/v1/post
  username: file-user
  password: file-pass
groq:
  apiKey: file-key
pipeline:
  recencyWindowDays: 30
listings:
  - mode: monthly
    direction: gainer
    urls:
      - https://money.rediff.com/gainers/bse/monthly/groupa
    minChangePercent: 20
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv("WP_API_URL", "")
	t.Setenv("WP_USER", "")
	t.Setenv("GROQ_GAINER_MODEL", "")
	t.Setenv("WP_PASS", "env-pass")
	t.Setenv("GROQ_API_KEY", "env-key")

	cfg := Load(path)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://file.example.org/wp-json/movers/v1/post", cfg.WordPress.APIURL)
	assert.Equal(t, "file-user", cfg.WordPress.Username)
	// Environment wins over the file.
	assert.Equal(t, "env-pass", cfg.WordPress.Password)
	assert.Equal(t, "env-key", cfg.Groq.APIKey)

	assert.Equal(t, 30, cfg.Pipeline.RecencyWindowDays)
	require.Len(t, cfg.Listings, 1)
	assert.InDelta(t, 20.0, cfg.Listings[0].MinChangePercent, 1e-9)

	// File left defaults in place where it said nothing.
	assert.Equal(t, 30, cfg.WordPress.TimeoutSeconds)
	assert.Equal(t, "llama3-70b-8192", cfg.Groq.GainerModel)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("MOVERS_SCANNER_CONFIG", "")
	cfg := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Len(t, cfg.Listings, 4)
	assert.False(t, cfg.Browser.Windowed)
}
