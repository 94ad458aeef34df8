package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/hr-assistant/internal/llm"
)

// LookupFunc reads an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// providerKeyVars lists the provider specific API key variables checked
// after LLM_API_KEY.
var providerKeyVars = map[llm.Provider][]string{
	llm.ProviderOpenAI: {"OPENAI_API_KEY"},
	llm.ProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	llm.ProviderZhipu:  {"ZHIPU_API_KEY"},
}

// ApplyEnv overrides configuration values with environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	env := envReader{lookup: lookup}

	env.int("HR_PORT", &c.Port)
	env.list("HR_CORS_ORIGINS", &c.CORSOrigins)
	env.bool("HR_VERBOSE", &c.Verbose)

	env.string("LLM_PROVIDER", &c.LLM.Provider)
	env.string("LLM_MODEL", &c.LLM.Model)
	env.string("LLM_BASE_URL", &c.LLM.BaseURL)
	env.float("LLM_TEMPERATURE", &c.LLM.Temperature)
	env.duration("LLM_TIMEOUT", &c.LLM.Timeout)
	env.string("LLM_API_KEY", &c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if provider, err := llm.ParseProvider(c.LLM.Provider); err == nil {
			for _, key := range providerKeyVars[provider] {
				if env.string(key, &c.LLM.APIKey) {
					break
				}
			}
		}
	}

	env.string("PROMPTS_FILE", &c.PromptsFile)
	env.float("WEIGHT_TOLERANCE", &c.WeightTolerance)
	env.int("BATCH_CONCURRENCY", &c.BatchConcurrency)

	env.duration("STREAM_MAX_LIFETIME", &c.Stream.MaxLifetime)
	env.duration("STREAM_PACE", &c.Stream.Pace)

	env.string("RESUME_S3_BUCKET", &c.Resume.Bucket)
	env.string("RESUME_S3_ENDPOINT", &c.Resume.Endpoint)
	env.string("RESUME_S3_REGION", &c.Resume.Region)
	env.string("RESUME_S3_ACCESS_KEY", &c.Resume.AccessKey)
	env.string("RESUME_S3_SECRET_KEY", &c.Resume.SecretKey)

	env.string("AMQP_URL", &c.AMQP.URL)
	env.string("AMQP_EXCHANGE", &c.AMQP.Exchange)

	env.duration("FETCH_TIMEOUT", &c.Fetch.Timeout)
	env.float("FETCH_REQUESTS_PER_SECOND", &c.Fetch.RequestsPerSecond)

	enabled := !c.RateLimit.Disabled
	env.bool("RATE_LIMIT_ENABLED", &enabled)
	c.RateLimit.Disabled = !enabled
	env.int("RATE_LIMIT_DEFAULT_LIMIT", &c.RateLimit.DefaultLimit)
	env.duration("RATE_LIMIT_DEFAULT_WINDOW", &c.RateLimit.DefaultWindow)
	env.int("RATE_LIMIT_LLM_LIMIT", &c.RateLimit.LLMPerMinute)
	env.int("RATE_LIMIT_WORKFLOW_LIMIT", &c.RateLimit.WorkflowPerHour)
	env.duration("RATE_LIMIT_CLEANUP_INTERVAL", &c.RateLimit.CleanupInterval)
	env.list("RATE_LIMIT_WHITELIST", &c.RateLimit.Whitelist)
	env.list("RATE_LIMIT_BLACKLIST", &c.RateLimit.Blacklist)

	return env.err()
}

// envReader applies variables that are set and non-empty, collecting parse errors.
type envReader struct {
	lookup LookupFunc
	errs   []string
}

func (e *envReader) get(key string) (string, bool) {
	value, ok := e.lookup(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Sprintf("%s=%q: %v", key, value, err))
}

func (e *envReader) string(key string, dst *string) bool {
	if value, ok := e.get(key); ok {
		*dst = value
		return true
	}
	return false
}

func (e *envReader) int(key string, dst *int) {
	if value, ok := e.get(key); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			e.fail(key, value, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if value, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			e.fail(key, value, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if value, ok := e.get(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			e.fail(key, value, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *Duration) {
	if value, ok := e.get(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			e.fail(key, value, err)
			return
		}
		*dst = Duration(d)
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if value, ok := e.get(key); ok {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
	}
}

func (e *envReader) err() error {
	if len(e.errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid environment: %s", strings.Join(e.errs, "; "))
}
