package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds application configuration
type Config struct {
	StorageBackend string
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string

	ServerPort  string
	FrontendURL string
	EnableHSTS  bool

	AIProvider   string
	OpenAIKey    string
	AnthropicKey string
	AIModel      string
	AIBaseURL    string
	AIWebSearch  bool
	AIRateLimit  string
	ChatTTL      time.Duration

	RabbitMQURL      string
	RabbitMQPrefetch int
	QueueSize        int
	DLQRetention     time.Duration

	SeedSource string
	SeedPolicy string
	MirrorDir  string

	WorkerDebugMode bool
	ServerDebugMode bool
	MetricsEnabled  bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom loads configuration through lookup, which returns "" for unset keys
func LoadFrom(lookup func(string) string) (*Config, error) {
	env := envReader(lookup)
	cfg := &Config{
		StorageBackend: strings.ToLower(env.get("STORAGE_BACKEND", BackendSQLite)),
		SQLitePath:     env.get("SQLITE_PATH", "data/tracker.db"),
		DatabaseURL:    env.get("DATABASE_URL", ""),
		RedisURL:       env.get("REDIS_URL", ""),
		RedisKeyPrefix: env.get("REDIS_KEY_PREFIX", "tracker:"),

		ServerPort:  env.get("SERVER_PORT", "8080"),
		FrontendURL: env.get("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:  env.getBool("ENABLE_HSTS", false),

		AIProvider:   strings.ToLower(env.get("AI_PROVIDER", "openai")),
		OpenAIKey:    env.get("OPENAI_API_KEY", ""),
		AnthropicKey: env.get("ANTHROPIC_API_KEY", ""),
		AIModel:      env.get("AI_MODEL", ""),
		AIBaseURL:    env.get("AI_BASE_URL", ""),
		AIWebSearch:  env.getBool("AI_WEB_SEARCH", true),
		AIRateLimit:  env.get("AI_RATE_LIMIT", "10-M"),
		ChatTTL:      env.getDuration("CHAT_SESSION_TTL", 30*time.Minute),

		RabbitMQURL:      env.get("RABBITMQ_URL", ""),
		RabbitMQPrefetch: env.getInt("RABBITMQ_PREFETCH", 1),
		QueueSize:        env.getInt("QUEUE_SIZE", 256),
		DLQRetention:     env.getDuration("DLQ_RETENTION", 7*24*time.Hour),

		SeedSource: env.get("SEED_SOURCE", "public"),
		SeedPolicy: strings.ToLower(env.get("SEED_POLICY", "if_empty")),
		MirrorDir:  env.get("MIRROR_DIR", ""),

		WorkerDebugMode: env.getBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode: env.getBool("SERVER_DEBUG_MODE", false),
		MetricsEnabled:  env.getBool("METRICS_ENABLED", true),
		OTELEnabled:     env.getBool("OTEL_ENABLED", false),
		OTELEndpoint:    env.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want memory, sqlite, postgres or redis)", c.StorageBackend)
	}

	switch c.AIProvider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q (want openai, anthropic or none)", c.AIProvider)
	}

	switch c.SeedPolicy {
	case "if_empty", "always":
	default:
		return fmt.Errorf("unknown SEED_POLICY %q (want if_empty or always)", c.SeedPolicy)
	}

	if c.RabbitMQPrefetch < 1 {
		return fmt.Errorf("RABBITMQ_PREFETCH must be at least 1")
	}
	return nil
}

// AIAPIKey returns the credential for the selected provider
func (c *Config) AIAPIKey() string {
	switch c.AIProvider {
	case "anthropic":
		return c.AnthropicKey
	case "openai":
		return c.OpenAIKey
	}
	return ""
}

// AIEnabled reports whether a provider is selected and has credentials
func (c *Config) AIEnabled() bool {
	return c.AIProvider != "none" && c.AIAPIKey() != ""
}

// ProviderConfig returns the settings passed to the AI provider factory
func (c *Config) ProviderConfig() map[string]string {
	return map[string]string{
		"api_key":    c.AIAPIKey(),
		"model":      c.AIModel,
		"base_url":   c.AIBaseURL,
		"web_search": strconv.FormatBool(c.AIWebSearch),
	}
}

// UseBroker reports whether jobs go through RabbitMQ rather than the in-process queue
func (c *Config) UseBroker() bool {
	return c.RabbitMQURL != ""
}

type envReader func(string) string

func (e envReader) get(key, defaultValue string) string {
	if value := strings.TrimSpace(e(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	if value := strings.ToLower(strings.TrimSpace(e(key))); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e envReader) getInt(key string, defaultValue int) int {
	if value := e(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
