package model

import "time"

// Config holds all runtime configuration for the extraction pipeline
type Config struct {
	Extract      ExtractConfig      `yaml:"extract" json:"extract"`
	HTTP         HTTPConfig         `yaml:"http" json:"http"`
	Cache        CacheConfig        `yaml:"cache" json:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" json:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" json:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" json:"llm"`
	Output       OutputConfig       `yaml:"output" json:"output"`
	Logging      LoggingConfig      `yaml:"logging" json:"logging"`
}

// ExtractConfig controls the text extraction stage
type ExtractConfig struct {
	LexiconPath     string `yaml:"lexicon_path" json:"lexicon_path"`         // Optional YAML overlay for the built-in lexicons
	FootnoteDivider string `yaml:"footnote_divider" json:"footnote_divider"` // Divider between body and footnote block, empty for default
}

// HTTPConfig controls harvesting records from the web
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	MaxRedirects  int           `yaml:"max_redirects" json:"max_redirects"`
	Retries       int           `yaml:"retries" json:"retries"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
	InsecureTLS   bool          `yaml:"insecure_tls" json:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" json:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" json:"no_proxy"`
}

// CacheConfig controls the extraction result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Directory string        `yaml:"directory" json:"directory"` // Empty means in-memory only
	TTL       time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig controls batch processing parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// RateLimitingConfig controls per-domain request pacing
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size"`
}

// LLMConfig controls the optional LLM review stage. The review is
// enabled by setting a provider name.
type LLMConfig struct {
	Provider       string `yaml:"provider" json:"provider"` // openai, anthropic, ollama; empty disables
	Model          string `yaml:"model" json:"model"`
	APIKey         string `yaml:"-" json:"-"` // Only ever read from the environment
	BaseURL        string `yaml:"base_url" json:"base_url"`
	Timeout        int    `yaml:"timeout" json:"timeout"` // Seconds
	StrictEvidence bool   `yaml:"strict_evidence" json:"strict_evidence"`
	MaxTokens      int    `yaml:"max_tokens" json:"max_tokens"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format        string `yaml:"format" json:"format"` // json, csv, markdown
	Directory     string `yaml:"directory" json:"directory"`
	IncludeFooter bool   `yaml:"include_footer" json:"include_footer"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"` // debug, info, warn, error
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "museum-provenance/0.3 (+https://github.com/codeforkjeff/museum-provenance)",
			MaxBodyBytes:  2 * 1024 * 1024,
			MaxRedirects:  3,
			Retries:       2,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         4,
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			Timeout:        60,
			StrictEvidence: true,
			MaxTokens:      1000,
		},
		Output: OutputConfig{
			Format:        "json",
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
