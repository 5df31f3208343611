package model

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete tracker configuration. It is assembled once by the
// CLI (flags > env > config file > defaults) and passed explicitly to the
// components that need it; nothing reads ambient state after construction.
type Config struct {
	OpenAI      OpenAIConfig      `yaml:"openai" mapstructure:"openai"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// OpenAIConfig holds API client settings
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"` // Custom endpoint (tests, proxies)
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	HTTPProxy   string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	SOCKSProxy  string        `yaml:"socks_proxy,omitempty" mapstructure:"socks_proxy"`
}

// RateLimitConfig paces outbound API calls. MaxCalls per Window is the
// sustained rate; Ceiling, when > 0, is a hard cap on total calls for the
// session after which the limiter refuses further admissions.
type RateLimitConfig struct {
	MaxCalls int           `yaml:"max_calls" mapstructure:"max_calls"`
	Window   time.Duration `yaml:"window" mapstructure:"window"`
	Burst    int           `yaml:"burst" mapstructure:"burst"`
	Ceiling  int           `yaml:"ceiling,omitempty" mapstructure:"ceiling"`
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls the response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir,omitempty" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ScoringConfig controls mention detection
type ScoringConfig struct {
	CaseSensitive bool `yaml:"case_sensitive" mapstructure:"case_sensitive"`
	ContextChars  int  `yaml:"context_chars" mapstructure:"context_chars"`
}

// OutputConfig controls terminal and file output
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	XLSX    string `yaml:"xlsx,omitempty" mapstructure:"xlsx"`
	CSV     string `yaml:"csv,omitempty" mapstructure:"csv"`
	JSON    string `yaml:"json,omitempty" mapstructure:"json"`
}

// SupportedModels are the chat model aliases the CLI accepts
var SupportedModels = []string{
	"gpt-3.5-turbo",
	"gpt-4",
	"gpt-4o",
	"gpt-4o-mini",
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Model:       "gpt-3.5-turbo",
			Timeout:     60 * time.Second,
			MaxTokens:   800,
			Temperature: 0.7,
		},
		RateLimit: RateLimitConfig{
			MaxCalls: 60,
			Window:   time.Minute,
			Burst:    1,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Scoring: ScoringConfig{
			CaseSensitive: false,
			ContextChars:  160,
		},
		Output: OutputConfig{},
	}
}

// Validate checks the configuration before any query is submitted.
// These are the only fatal errors in the pipeline; everything downstream
// is recorded per-row instead of aborting the batch.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or openai.api_key)")
	}
	if !isSupportedModel(c.OpenAI.Model) {
		return fmt.Errorf("unsupported model %q (supported: %s)", c.OpenAI.Model, strings.Join(SupportedModels, ", "))
	}
	if c.RateLimit.MaxCalls <= 0 {
		return fmt.Errorf("rate_limit.max_calls must be positive, got %d", c.RateLimit.MaxCalls)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %v", c.RateLimit.Window)
	}
	return nil
}

func isSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}
