// File: config/config.go

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/utils"
)

// SupportedModels lists the remote models a user may pick.
var SupportedModels = []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo", "gpt-4o-mini"}

type Config struct {
	UseLLM      bool           `env:"PF_USE_LLM" envDefault:"false"`
	Model       string         `env:"PF_MODEL" envDefault:"gpt-3.5-turbo" validate:"required,oneof=gpt-3.5-turbo gpt-4 gpt-4-turbo gpt-4o-mini"`
	APIKey      string         `env:"OPENAI_API_KEY"`
	BaseURL     string         `env:"PF_OPENAI_BASE_URL" validate:"omitempty,url"`
	Temperature float32        `env:"PF_TEMPERATURE" envDefault:"0.7" validate:"gte=0,lte=2"`
	MaxTokens   int            `env:"PF_MAX_TOKENS" envDefault:"800" validate:"gte=1"`
	Timeout     time.Duration  `env:"PF_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	PromptLimit int            `env:"PF_PROMPT_TOKEN_LIMIT" envDefault:"8000" validate:"gte=0"`
	MaxRetries  int            `env:"PF_MAX_RETRIES" envDefault:"2" validate:"gte=0,lte=10"`
	RetryDelay  time.Duration  `env:"PF_RETRY_DELAY" envDefault:"1s" validate:"gte=0"`
	RateLimit   time.Duration  `env:"PF_RATE_LIMIT" envDefault:"1s" validate:"gte=0"`
	CacheTTL    time.Duration  `env:"PF_CACHE_TTL" envDefault:"300s" validate:"gte=0"`
	CacheSize   int            `env:"PF_CACHE_SIZE" envDefault:"256" validate:"gte=1"`
	HistorySize int            `env:"PF_HISTORY_SIZE" envDefault:"0" validate:"gte=0"`
	ListenAddr  string         `env:"PF_LISTEN_ADDR" envDefault:":8501" validate:"required"`
	LogLevel    utils.LogLevel `env:"PF_LOG_LEVEL" envDefault:"WARN"`

	Criteria evaluator.Criteria `validate:"-"`
	Logger   utils.Logger       `validate:"-"`
}

var validate = validator.New()

// LoadConfig reads the environment on top of NewConfig defaults.
func LoadConfig() (*Config, error) {
	cfg := NewConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func NewConfig() *Config {
	return &Config{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   800,
		Timeout:     30 * time.Second,
		PromptLimit: 8000,
		MaxRetries:  2,
		RetryDelay:  time.Second,
		RateLimit:   time.Second,
		CacheTTL:    300 * time.Second,
		CacheSize:   256,
		ListenAddr:  ":8501",
		LogLevel:    utils.LogLevelWarn,
		Criteria:    evaluator.AllCriteria(),
	}
}

// Validate checks field ranges and the remote prerequisites.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.UseLLM && c.APIKey == "" {
		return errors.New("invalid config: an API key is required when LLM feedback is enabled")
	}
	return nil
}

// GetLogger returns the configured logger, creating one at LogLevel if unset.
func (c *Config) GetLogger() utils.Logger {
	if c.Logger == nil {
		c.Logger = utils.NewLogger(c.LogLevel)
	}
	return c.Logger
}

type ConfigOption func(*Config)

func SetUseLLM(useLLM bool) ConfigOption {
	return func(c *Config) {
		c.UseLLM = useLLM
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

func SetBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

func SetTemperature(temperature float32) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// SetPromptLimit caps the tokens sent to the remote model; zero disables
// the check.
func SetPromptLimit(tokens int) ConfigOption {
	return func(c *Config) {
		c.PromptLimit = tokens
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

func SetRateLimit(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.RateLimit = interval
	}
}

func SetCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

func SetCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// SetHistorySize bounds the session history; zero keeps everything.
func SetHistorySize(size int) ConfigOption {
	return func(c *Config) {
		c.HistorySize = size
	}
}

func SetListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
		if c.Logger != nil {
			c.Logger.SetLevel(level)
		}
	}
}

func SetLogger(logger utils.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

func SetCriteria(criteria evaluator.Criteria) ConfigOption {
	return func(c *Config) {
		c.Criteria = criteria
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}

// LoadCriteriaFile reads a YAML document of criterion flags, e.g.
//
//	clarity: true
//	context: true
//	examples: false
//
// Missing keys are disabled; unknown keys are an error.
func LoadCriteriaFile(path string) (evaluator.Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return evaluator.Criteria{}, fmt.Errorf("failed to read criteria file: %w", err)
	}
	return ParseCriteria(data)
}

// ParseCriteria decodes YAML (or JSON, which is valid YAML) criterion flags.
func ParseCriteria(data []byte) (evaluator.Criteria, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var criteria evaluator.Criteria
	if err := dec.Decode(&criteria); err != nil {
		if errors.Is(err, io.EOF) {
			return evaluator.Criteria{}, nil
		}
		return evaluator.Criteria{}, fmt.Errorf("invalid criteria: %w", err)
	}
	return criteria, nil
}
