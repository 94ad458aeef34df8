// Package config provides configuration loading and validation for the HR
// assistant server and CLI. Values come from defaults, then an optional JSON
// or YAML file, then environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/hr-assistant/internal/llm"
	"github.com/jonathan/hr-assistant/internal/progress"
	"github.com/jonathan/hr-assistant/internal/resume"
	"github.com/jonathan/hr-assistant/internal/server/ratelimit"
	"github.com/jonathan/hr-assistant/internal/types"
)

// Config represents the application configuration.
type Config struct {
	Port        int      `json:"port,omitempty" yaml:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	Verbose     bool     `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	LLM LLMConfig `json:"llm" yaml:"llm"`

	// PromptsFile overrides the embedded prompt templates.
	PromptsFile string `json:"prompts_file,omitempty" yaml:"prompts_file,omitempty"`

	// WeightTolerance is how far requirement weights may drift from 1.0.
	WeightTolerance  float64 `json:"weight_tolerance,omitempty" yaml:"weight_tolerance,omitempty"`
	BatchConcurrency int     `json:"batch_concurrency,omitempty" yaml:"batch_concurrency,omitempty"`

	Stream StreamConfig    `json:"stream" yaml:"stream"`
	Resume resume.S3Config `json:"resume_store" yaml:"resume_store"`
	AMQP   AMQPConfig      `json:"amqp" yaml:"amqp"`
	Fetch  FetchConfig     `json:"fetch" yaml:"fetch"`

	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

// LLMConfig selects the chat-completion provider.
type LLMConfig struct {
	Provider    string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL     string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey      string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Temperature float64  `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Timeout     Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// StreamConfig configures progress streams.
type StreamConfig struct {
	MaxLifetime Duration `json:"max_lifetime,omitempty" yaml:"max_lifetime,omitempty"`
	Pace        Duration `json:"pace,omitempty" yaml:"pace,omitempty"`
	Buffer      int      `json:"buffer,omitempty" yaml:"buffer,omitempty"`
}

// AMQPConfig enables mirroring stream events to RabbitMQ when URL is set.
type AMQPConfig struct {
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Exchange string `json:"exchange,omitempty" yaml:"exchange,omitempty"`
}

// FetchConfig configures job page fetching.
type FetchConfig struct {
	Timeout           Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RequestsPerSecond float64  `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	Burst             int      `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// RateLimitConfig bounds the requests each client may send to the server.
type RateLimitConfig struct {
	Disabled        bool     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	DefaultLimit    int      `json:"default_limit,omitempty" yaml:"default_limit,omitempty"`
	DefaultWindow   Duration `json:"default_window,omitempty" yaml:"default_window,omitempty"`
	LLMPerMinute    int      `json:"llm_per_minute,omitempty" yaml:"llm_per_minute,omitempty"`
	WorkflowPerHour int      `json:"workflow_per_hour,omitempty" yaml:"workflow_per_hour,omitempty"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty" yaml:"cleanup_interval,omitempty"`
	// Whitelist and Blacklist hold client IP addresses.
	Whitelist []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`
	Blacklist []string `json:"blacklist,omitempty" yaml:"blacklist,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port: 8080,
		LLM: LLMConfig{
			Provider:    string(llm.ProviderOpenAI),
			Temperature: llm.DefaultTemperature,
			Timeout:     Duration(llm.DefaultTimeout),
		},
		WeightTolerance:  types.WeightTolerance,
		BatchConcurrency: 4,
		Stream: StreamConfig{
			MaxLifetime: Duration(progress.DefaultMaxLifetime),
			Buffer:      progress.DefaultBuffer,
		},
		AMQP: AMQPConfig{Exchange: progress.DefaultExchange},
		Fetch: FetchConfig{
			Timeout:           Duration(30 * time.Second),
			RequestsPerSecond: 1,
			Burst:             2,
		},
		RateLimit: RateLimitConfig{
			DefaultLimit:    ratelimit.DefaultLimit,
			DefaultWindow:   Duration(ratelimit.DefaultWindow),
			LLMPerMinute:    ratelimit.DefaultLLMPerMinute,
			WorkflowPerHour: ratelimit.DefaultWorkflowPerHour,
			CleanupInterval: Duration(ratelimit.DefaultCleanupInterval),
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// when path is not empty, then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values. Missing API keys
// are reported when the gateway is opened, so commands that never call the
// model still run.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be between 0 and 2")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be non-negative")
	}
	if c.WeightTolerance < 0 || c.WeightTolerance >= 1 {
		return fmt.Errorf("config error: 'weight_tolerance' must be in [0, 1)")
	}
	if c.BatchConcurrency < 0 {
		return fmt.Errorf("config error: 'batch_concurrency' must be non-negative")
	}
	if c.Stream.MaxLifetime < 0 || c.Stream.Pace < 0 {
		return fmt.Errorf("config error: stream durations must be non-negative")
	}
	if c.RateLimit.DefaultLimit < 0 || c.RateLimit.LLMPerMinute < 0 || c.RateLimit.WorkflowPerHour < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}
	if c.RateLimit.DefaultWindow < 0 || c.RateLimit.CleanupInterval < 0 {
		return fmt.Errorf("config error: rate limit durations must be non-negative")
	}
	if c.Resume.Endpoint != "" && c.Resume.Bucket == "" {
		return fmt.Errorf("config error: 'resume_store.bucket' is required when an endpoint is set")
	}

	if c.PromptsFile != "" {
		if _, err := os.Stat(c.PromptsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: prompts file not found: %s", c.PromptsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.PromptsFile == "" {
		result.PromptsFile = defaults.PromptsFile
	}
	if result.WeightTolerance == 0 {
		result.WeightTolerance = defaults.WeightTolerance
	}
	if result.BatchConcurrency == 0 {
		result.BatchConcurrency = defaults.BatchConcurrency
	}

	// LLM
	mergeString(&result.LLM.Provider, defaults.LLM.Provider)
	mergeString(&result.LLM.Model, defaults.LLM.Model)
	mergeString(&result.LLM.BaseURL, defaults.LLM.BaseURL)
	mergeString(&result.LLM.APIKey, defaults.LLM.APIKey)
	if result.LLM.Temperature == 0 {
		result.LLM.Temperature = defaults.LLM.Temperature
	}
	if result.LLM.Timeout == 0 {
		result.LLM.Timeout = defaults.LLM.Timeout
	}

	// Streams
	if result.Stream.MaxLifetime == 0 {
		result.Stream.MaxLifetime = defaults.Stream.MaxLifetime
	}
	if result.Stream.Pace == 0 {
		result.Stream.Pace = defaults.Stream.Pace
	}
	if result.Stream.Buffer == 0 {
		result.Stream.Buffer = defaults.Stream.Buffer
	}

	// Resume store
	mergeString(&result.Resume.Bucket, defaults.Resume.Bucket)
	mergeString(&result.Resume.Endpoint, defaults.Resume.Endpoint)
	mergeString(&result.Resume.Region, defaults.Resume.Region)
	mergeString(&result.Resume.AccessKey, defaults.Resume.AccessKey)
	mergeString(&result.Resume.SecretKey, defaults.Resume.SecretKey)

	mergeString(&result.AMQP.URL, defaults.AMQP.URL)
	mergeString(&result.AMQP.Exchange, defaults.AMQP.Exchange)

	if result.Fetch.Timeout == 0 {
		result.Fetch.Timeout = defaults.Fetch.Timeout
	}
	if result.Fetch.RequestsPerSecond == 0 {
		result.Fetch.RequestsPerSecond = defaults.Fetch.RequestsPerSecond
	}
	if result.Fetch.Burst == 0 {
		result.Fetch.Burst = defaults.Fetch.Burst
	}

	mergeInt(&result.RateLimit.DefaultLimit, defaults.RateLimit.DefaultLimit)
	mergeInt(&result.RateLimit.LLMPerMinute, defaults.RateLimit.LLMPerMinute)
	mergeInt(&result.RateLimit.WorkflowPerHour, defaults.RateLimit.WorkflowPerHour)
	if result.RateLimit.DefaultWindow == 0 {
		result.RateLimit.DefaultWindow = defaults.RateLimit.DefaultWindow
	}
	if result.RateLimit.CleanupInterval == 0 {
		result.RateLimit.CleanupInterval = defaults.RateLimit.CleanupInterval
	}
	if len(result.RateLimit.Whitelist) == 0 {
		result.RateLimit.Whitelist = defaults.RateLimit.Whitelist
	}
	if len(result.RateLimit.Blacklist) == 0 {
		result.RateLimit.Blacklist = defaults.RateLimit.Blacklist
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// LLMClientConfig converts the LLM section into a gateway configuration.
func (c *Config) LLMClientConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLM.Provider)
	if err != nil {
		return nil, err
	}
	return &llm.Config{
		Provider:    provider,
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		APIKey:      c.LLM.APIKey,
		Temperature: c.LLM.Temperature,
		Timeout:     c.LLM.Timeout.Std(),
	}, nil
}

// RateLimiterConfig converts the rate limit section into a limiter configuration.
func (c *Config) RateLimiterConfig() *ratelimit.Config {
	rl := c.RateLimit
	return &ratelimit.Config{
		Enabled:         !rl.Disabled,
		DefaultLimit:    rl.DefaultLimit,
		DefaultWindow:   rl.DefaultWindow.Std(),
		CleanupInterval: rl.CleanupInterval.Std(),
		Whitelist:       ratelimit.ClientSet(rl.Whitelist),
		Blacklist:       ratelimit.ClientSet(rl.Blacklist),
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(ratelimit.Tiers{
			LLMPerMinute:    rl.LLMPerMinute,
			WorkflowPerHour: rl.WorkflowPerHour,
		}),
	}
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
