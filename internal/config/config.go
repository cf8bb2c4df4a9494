package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all gmailsense configuration. It is resolved once at startup
// and treated as immutable for the duration of a run.
type Config struct {
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Processing ProcessingConfig `toml:"processing"`
	Labels     LabelConfig      `toml:"labels"`
	Gmail      GmailConfig      `toml:"gmail"`
}

// OpenRouterConfig holds the remote classification endpoint settings.
type OpenRouterConfig struct {
	APIURL  string `toml:"api_url"`
	Model   string `toml:"model"`
	Referer string `toml:"referer"`
	Title   string `toml:"title"`
}

// GmailConfig holds Gmail OAuth credentials. Users can override these via
// config file or the GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET env vars.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ProcessingConfig holds the batch pipeline settings.
type ProcessingConfig struct {
	BatchSize         int `toml:"batch_size"`
	BodyLimit         int `toml:"body_limit"`
	NewsletterAgeDays int `toml:"newsletter_age_days"`
	APIDelayMS        int `toml:"api_delay_ms"`

	// DelayOnError applies the inter-item rate-limit delay after errored
	// items too, not only after successfully processed ones.
	DelayOnError bool `toml:"delay_on_error"`

	RetryAttempts       int `toml:"retry_attempts"`
	RetryInitialDelayMS int `toml:"retry_initial_delay_ms"`
}

// APIDelay returns the inter-item rate-limit delay as a duration.
func (p ProcessingConfig) APIDelay() time.Duration {
	return time.Duration(p.APIDelayMS) * time.Millisecond
}

// RetryInitialDelay returns the first backoff delay as a duration.
func (p ProcessingConfig) RetryInitialDelay() time.Duration {
	return time.Duration(p.RetryInitialDelayMS) * time.Millisecond
}

// LabelConfig holds the label taxonomy: one name per top-level role and a
// subcategory-to-sublabel-name map per category that carries subcategories.
type LabelConfig struct {
	Processed   string `toml:"processed"`
	Newsletter  string `toml:"newsletter"`
	Marketplace string `toml:"marketplace"`
	Priority    string `toml:"priority"`
	General     string `toml:"general"`

	MarketplaceSublabels map[string]string `toml:"marketplace_sublabels"`
	PrioritySublabels    map[string]string `toml:"priority_sublabels"`
}

func defaults() Config {
	return Config{
		OpenRouter: OpenRouterConfig{
			APIURL:  "https://openrouter.ai/api/v1/chat/completions",
			Model:   "google/gemini-2.5-flash-lite",
			Referer: "https://github.com/arenoe-studio/gmailsense",
			Title:   "GmailSense Classifier",
		},
		Processing: ProcessingConfig{
			BatchSize:           100,
			BodyLimit:           500,
			NewsletterAgeDays:   7,
			APIDelayMS:          500,
			DelayOnError:        false,
			RetryAttempts:       3,
			RetryInitialDelayMS: 1000,
		},
		Labels: LabelConfig{
			Processed:   "Bot-Processed",
			Newsletter:  "Newsletter",
			Marketplace: "Marketplace",
			Priority:    "Priority",
			General:     "General",
			MarketplaceSublabels: map[string]string{
				"invoice":  "Marketplace/Invoice",
				"shipping": "Marketplace/Shipping",
				"receipt":  "Marketplace/Receipt",
			},
			PrioritySublabels: map[string]string{
				"invoice":  "Priority/Invoice",
				"booking":  "Priority/Booking",
				"shipping": "Priority/Shipping",
				"document": "Priority/Document",
				"security": "Priority/Security",
				"work":     "Priority/Work",
			},
		},
	}
}

// Load reads config from path. If path is empty or the file does not exist,
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the static configuration bounds. A run must abort before
// any mailbox mutation when validation fails.
func (c *Config) Validate() error {
	if c.OpenRouter.APIURL == "" {
		return fmt.Errorf("openrouter.api_url must not be empty")
	}
	if c.OpenRouter.Model == "" {
		return fmt.Errorf("openrouter.model must not be empty")
	}
	if c.Processing.BatchSize < 1 || c.Processing.BatchSize > 100 {
		return fmt.Errorf("processing.batch_size must be in [1,100], got %d", c.Processing.BatchSize)
	}
	if c.Processing.BodyLimit < 1 {
		return fmt.Errorf("processing.body_limit must be positive, got %d", c.Processing.BodyLimit)
	}
	if c.Processing.NewsletterAgeDays < 0 {
		return fmt.Errorf("processing.newsletter_age_days must not be negative, got %d", c.Processing.NewsletterAgeDays)
	}
	if c.Processing.APIDelayMS < 0 {
		return fmt.Errorf("processing.api_delay_ms must not be negative, got %d", c.Processing.APIDelayMS)
	}
	if c.Processing.RetryAttempts < 1 {
		return fmt.Errorf("processing.retry_attempts must be at least 1, got %d", c.Processing.RetryAttempts)
	}
	if c.Processing.RetryInitialDelayMS < 0 {
		return fmt.Errorf("processing.retry_initial_delay_ms must not be negative, got %d", c.Processing.RetryInitialDelayMS)
	}
	if c.Labels.Processed == "" {
		return fmt.Errorf("labels.processed must not be empty")
	}
	return nil
}

// ConfigDir returns the gmailsense config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gmailsense")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gmailsense")
}
