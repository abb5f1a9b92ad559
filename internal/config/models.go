package config

import (
	"time"
)

// Scoring backend names
const (
	BackendAuto   = "auto"
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendLLM    = "llm"
	BackendNone   = "none"
)

// ScoringConfig selects and paces the scoring backend
type ScoringConfig struct {
	Backend          string
	Throttle         time.Duration
	TrustedAddresses []string
	// DefaultRegion is the ISO 3166 region used for numbers without a
	// country code
	DefaultRegion string
}

// LocalConfig represents the configuration for the on-device model
type LocalConfig struct {
	ModelPath     string
	Features      int
	Norm          string
	AlternateSign bool
	Binary        bool
	Threshold     float32
}

// RemoteConfig represents the configuration for the scoring API
type RemoteConfig struct {
	URL             string
	Timeout         time.Duration
	Attempts        uint
	RetryDelay      time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider  string
	Threshold float64
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// StoreConfig represents the configuration for the message store
type StoreConfig struct {
	Type          string
	SQLitePath    string
	MySQLDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SourceConfig represents the configuration for the message source
type SourceConfig struct {
	Path     string
	Watch    bool
	Debounce time.Duration
}

// ServerConfig represents the configuration for the HTTP API
type ServerConfig struct {
	Enabled       bool
	ListenAddress string
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() (ScoringConfig, error) {
	throttle, err := c.GetDuration("scoring.throttle")
	if err != nil {
		return ScoringConfig{}, err
	}
	return ScoringConfig{
		Backend:          c.GetString("scoring.backend"),
		Throttle:         throttle,
		TrustedAddresses: c.GetStringSlice("scoring.trusted_addresses"),
		DefaultRegion:    c.GetString("scoring.default_region"),
	}, nil
}

// GetLocal returns the local model configuration
func (c *Config) GetLocal() LocalConfig {
	return LocalConfig{
		ModelPath:     c.GetString("local.model_path"),
		Features:      c.GetInt("local.features"),
		Norm:          c.GetString("local.norm"),
		AlternateSign: c.GetBool("local.alternate_sign"),
		Binary:        c.GetBool("local.binary"),
		Threshold:     float32(c.GetFloat64("local.threshold")),
	}
}

// GetRemote returns the scoring API configuration
func (c *Config) GetRemote() (RemoteConfig, error) {
	timeout, err := c.GetDuration("remote.timeout")
	if err != nil {
		return RemoteConfig{}, err
	}
	retryDelay, err := c.GetDuration("remote.retry_delay")
	if err != nil {
		return RemoteConfig{}, err
	}
	breakerTimeout, err := c.GetDuration("remote.breaker.timeout")
	if err != nil {
		return RemoteConfig{}, err
	}
	attempts := c.GetInt("remote.attempts")
	if attempts < 1 {
		attempts = 1
	}
	failures := c.GetInt("remote.breaker.failures")
	if failures < 1 {
		failures = 1
	}
	return RemoteConfig{
		URL:             c.GetString("remote.url"),
		Timeout:         timeout,
		Attempts:        uint(attempts),
		RetryDelay:      retryDelay,
		BreakerFailures: uint32(failures),
		BreakerTimeout:  breakerTimeout,
	}, nil
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:  c.GetString("llm.provider"),
		Threshold: c.GetFloat64("llm.threshold"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetStore returns the message store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:          c.GetString("store.type"),
		SQLitePath:    c.GetString("store.sqlite_path"),
		MySQLDSN:      c.GetString("store.mysql_dsn"),
		RedisAddr:     c.GetString("store.redis_addr"),
		RedisPassword: c.GetString("store.redis_password"),
		RedisDB:       c.GetInt("store.redis_db"),
		RedisPrefix:   c.GetString("store.redis_prefix"),
	}
}

// GetSource returns the message source configuration
func (c *Config) GetSource() (SourceConfig, error) {
	debounce, err := c.GetDuration("source.debounce")
	if err != nil {
		return SourceConfig{}, err
	}
	return SourceConfig{
		Path:     c.GetString("source.path"),
		Watch:    c.GetBool("source.watch"),
		Debounce: debounce,
	}, nil
}

// GetServer returns the HTTP API configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Enabled:       c.GetBool("server.enabled"),
		ListenAddress: c.GetString("server.listen_address"),
	}
}
