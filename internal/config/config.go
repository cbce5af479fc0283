package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"MoversScanner/internal/domain"
)

const (
	configPathEnv      = "MOVERS_SCANNER_CONFIG"
	wpAPIURLEnv        = "WP_API_URL"
	wpUserEnv          = "WP_USER"
	wpPassEnv          = "WP_PASS"
	groqAPIKeyEnv      = "GROQ_API_KEY"
	groqGainerModelEnv = "GROQ_GAINER_MODEL"
	groqLoserModelEnv  = "GROQ_LOSER_MODEL"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.5993.118 Safari/537.36"

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Browser   BrowserConfig   `yaml:"browser"`
	Listings  []ListingConfig `yaml:"listings"`
	Groq      GroqConfig      `yaml:"groq"`
	WordPress WordPressConfig `yaml:"wordpress"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// LoggingConfig controls console log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BrowserConfig tunes the shared headless-browser session.
type BrowserConfig struct {
	Windowed               bool   `yaml:"windowed"`
	UserAgent              string `yaml:"userAgent"`
	PageTimeoutSeconds     int    `yaml:"pageTimeoutSeconds"`
	SelectorTimeoutSeconds int    `yaml:"selectorTimeoutSeconds"`
	SettleDelaySeconds     int    `yaml:"settleDelaySeconds"`
}

// PageTimeout bounds a single page navigation plus snapshot.
func (b BrowserConfig) PageTimeout() time.Duration {
	return time.Duration(b.PageTimeoutSeconds) * time.Second
}

// SelectorTimeout bounds the wait for a selector to render.
func (b BrowserConfig) SelectorTimeout() time.Duration {
	return time.Duration(b.SelectorTimeoutSeconds) * time.Second
}

// SettleDelay is the pause after navigation before selector waits; listing
// pages render their tables via script.
func (b BrowserConfig) SettleDelay() time.Duration {
	return time.Duration(b.SettleDelaySeconds) * time.Second
}

// ListingConfig describes one movers listing set: the pages to visit and
// the change threshold that qualifies a row as a candidate.
type ListingConfig struct {
	Mode             domain.Mode      `yaml:"mode"`
	Direction        domain.Direction `yaml:"direction"`
	URLs             []string         `yaml:"urls"`
	MinChangePercent float64          `yaml:"minChangePercent"`
}

// GroqConfig defines how to contact the chat-completions API.
type GroqConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	APIKey      string  `yaml:"apiKey"`
	GainerModel string  `yaml:"gainerModel"`
	LoserModel  string  `yaml:"loserModel"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
}

// WordPressConfig wires the publish endpoint and its credentials.
type WordPressConfig struct {
	APIURL         string `yaml:"apiUrl"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	SkipPreflight  bool   `yaml:"skipPreflight"`
}

// Timeout bounds a single publish or preflight request.
func (w WordPressConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

// PipelineConfig holds orchestration knobs.
type PipelineConfig struct {
	RecencyWindowDays   int `yaml:"recencyWindowDays"`
	PublishDelaySeconds int `yaml:"publishDelaySeconds"`
}

// PublishDelay throttles consecutive candidates.
func (p PipelineConfig) PublishDelay() time.Duration {
	return time.Duration(p.PublishDelaySeconds) * time.Second
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Listings) == 0 {
		cfg.Listings = defaultConfig().Listings
	}

	return cfg
}

// Validate checks the fatal preconditions: every credential the pipeline
// needs must be present before any network activity starts.
func (c Config) Validate() error {
	if c.WordPress.APIURL == "" {
		return fmt.Errorf("config: wordpress api url is required (set wordpress.apiUrl or %s)", wpAPIURLEnv)
	}
	if c.WordPress.Username == "" {
		return fmt.Errorf("config: wordpress username is required (set wordpress.username or %s)", wpUserEnv)
	}
	if c.WordPress.Password == "" {
		return fmt.Errorf("config: wordpress password is required (set wordpress.password or %s)", wpPassEnv)
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("config: groq api key is required (set groq.apiKey or %s)", groqAPIKeyEnv)
	}
	return nil
}

// FindListing selects the listing set for a run's mode and direction.
func (c Config) FindListing(mode domain.Mode, direction domain.Direction) (ListingConfig, error) {
	for _, l := range c.Listings {
		if l.Mode == mode && l.Direction == direction {
			return l, nil
		}
	}
	return ListingConfig{}, fmt.Errorf("config: no listing configured for %s %ss", mode, direction)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(wpAPIURLEnv); v != "" {
		c.WordPress.APIURL = v
	}

	if v := os.Getenv(wpUserEnv); v != "" {
		c.WordPress.Username = v
	}

	if v := os.Getenv(wpPassEnv); v != "" {
		c.WordPress.Password = v
	}

	if v := os.Getenv(groqAPIKeyEnv); v != "" {
		c.Groq.APIKey = v
	}

	if v := os.Getenv(groqGainerModelEnv); v != "" {
		c.Groq.GainerModel = v
	}

	if v := os.Getenv(groqLoserModelEnv); v != "" {
		c.Groq.LoserModel = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Browser.Windowed {
		base.Browser.Windowed = true
	}
	if override.Browser.UserAgent != "" {
		base.Browser.UserAgent = override.Browser.UserAgent
	}
	if override.Browser.PageTimeoutSeconds > 0 {
		base.Browser.PageTimeoutSeconds = override.Browser.PageTimeoutSeconds
	}
	if override.Browser.SelectorTimeoutSeconds > 0 {
		base.Browser.SelectorTimeoutSeconds = override.Browser.SelectorTimeoutSeconds
	}
	if override.Browser.SettleDelaySeconds > 0 {
		base.Browser.SettleDelaySeconds = override.Browser.SettleDelaySeconds
	}

	if override.Groq.Endpoint != "" {
		base.Groq.Endpoint = override.Groq.Endpoint
	}
	if override.Groq.APIKey != "" {
		base.Groq.APIKey = override.Groq.APIKey
	}
	if override.Groq.GainerModel != "" {
		base.Groq.GainerModel = override.Groq.GainerModel
	}
	if override.Groq.LoserModel != "" {
		base.Groq.LoserModel = override.Groq.LoserModel
	}
	if override.Groq.MaxTokens > 0 {
		base.Groq.MaxTokens = override.Groq.MaxTokens
	}
	if override.Groq.Temperature > 0 {
		base.Groq.Temperature = override.Groq.Temperature
	}

	if override.WordPress.APIURL != "" {
		base.WordPress.APIURL = override.WordPress.APIURL
	}
	if override.WordPress.Username != "" {
		base.WordPress.Username = override.WordPress.Username
	}
	if override.WordPress.Password != "" {
		base.WordPress.Password = override.WordPress.Password
	}
	if override.WordPress.TimeoutSeconds > 0 {
		base.WordPress.TimeoutSeconds = override.WordPress.TimeoutSeconds
	}
	if override.WordPress.SkipPreflight {
		base.WordPress.SkipPreflight = true
	}

	if override.Pipeline.RecencyWindowDays > 0 {
		base.Pipeline.RecencyWindowDays = override.Pipeline.RecencyWindowDays
	}
	if override.Pipeline.PublishDelaySeconds > 0 {
		base.Pipeline.PublishDelaySeconds = override.Pipeline.PublishDelaySeconds
	}

	if len(override.Listings) > 0 {
		base.Listings = override.Listings
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Browser: BrowserConfig{
			UserAgent:              defaultUserAgent,
			PageTimeoutSeconds:     30,
			SelectorTimeoutSeconds: 15,
			SettleDelaySeconds:     3,
		},
		Listings: []ListingConfig{
			{
				Mode:      domain.Daily,
				Direction: domain.Gainer,
				URLs: []string{
					"https://money.rediff.com/gainers/bse/daily/groupa",
					"https://money.rediff.com/gainers/bse/daily/groupb",
				},
				MinChangePercent: 7.0,
			},
			{
				Mode:      domain.Daily,
				Direction: domain.Loser,
				URLs: []string{
					"https://money.rediff.com/losers/bse/daily/groupa",
					"https://money.rediff.com/losers/bse/daily/groupb",
				},
				MinChangePercent: 7.0,
			},
			{
				Mode:      domain.Monthly,
				Direction: domain.Gainer,
				URLs: []string{
					"https://money.rediff.com/gainers/bse/monthly/groupa",
					"https://money.rediff.com/gainers/bse/monthly/groupb",
				},
				MinChangePercent: 25.0,
			},
			{
				Mode:      domain.Monthly,
				Direction: domain.Loser,
				URLs: []string{
					"https://money.rediff.com/losers/bse/monthly/groupa",
					"https://money.rediff.com/losers/bse/monthly/groupb",
				},
				MinChangePercent: 25.0,
			},
		},
		Groq: GroqConfig{
			Endpoint:    "https://api.groq.com/openai/v1/chat/completions",
			GainerModel: "llama3-70b-8192",
			LoserModel:  "llama-3.1-8b-instant",
			MaxTokens:   256,
			Temperature: 0.4,
		},
		WordPress: WordPressConfig{
			TimeoutSeconds: 30,
		},
		Pipeline: PipelineConfig{
			RecencyWindowDays:   90,
			PublishDelaySeconds: 1,
		},
	}
}
