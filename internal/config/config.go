package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverCosmos = "cosmos"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Cosmos DB container partition key paths.
const (
	CosmosPartitionByConversation = "/conversation_id"
	CosmosPartitionByID           = "/id"
)

// Completion providers and API flavours.
const (
	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchain"

	APITypeAzure  = "azure"
	APITypeOpenAI = "openai"
)

// Config holds the convsearch API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Store      StoreConfig      `yaml:"store"`
	Search     SearchConfig     `yaml:"search"`
	Completion CompletionConfig `yaml:"completion"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig selects and configures the conversation store.
type StoreConfig struct {
	Driver string       `yaml:"driver"` // cosmos, redis, sqlite (default: cosmos)
	Cosmos CosmosConfig `yaml:"cosmos"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// CosmosConfig holds Azure Cosmos DB settings.
type CosmosConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Key       string `yaml:"key"`
	Database  string `yaml:"database"`
	Container string `yaml:"container"`
	// PartitionKeyPath is the container's partition key path (default: /conversation_id).
	PartitionKeyPath string `yaml:"partition_key_path"`
}

// RedisConfig holds Redis/Valkey settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SQLiteConfig holds embedded store settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig holds Azure AI Search settings.
type SearchConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CompletionConfig holds chat completion provider settings.
type CompletionConfig struct {
	Provider   string `yaml:"provider"` // openai, langchain (default: openai)
	APIType    string `yaml:"api_type"` // azure, openai (default: azure)
	Deployment string `yaml:"deployment"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
	// AllowToolCalls is a pointer so an explicit false survives ApplyDefaults.
	AllowToolCalls *bool `yaml:"allow_tool_calls"`
	// HealthCheck adds the provider to GET /health (openai provider only).
	HealthCheck bool `yaml:"health_check"`
}

// ToolCallsAllowed reports the effective tool-call setting.
func (c CompletionConfig) ToolCallsAllowed() bool {
	return c.AllowToolCalls == nil || *c.AllowToolCalls
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML with ${VAR} substitution, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverCosmos
	}
	if c.Store.Cosmos.PartitionKeyPath == "" {
		c.Store.Cosmos.PartitionKeyPath = CosmosPartitionByConversation
	}
	if c.Store.Redis.ReadinessTimeout <= 0 {
		c.Store.Redis.ReadinessTimeout = 10
	}
	if c.Store.Redis.KeyPrefix == "" {
		c.Store.Redis.KeyPrefix = "convsearch:"
	}

	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://default-url/"
	}
	if !strings.HasSuffix(c.Search.BaseURL, "/") {
		c.Search.BaseURL += "/"
	}
	if c.Search.APIVersion == "" {
		c.Search.APIVersion = "2024-07-01"
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 30
	}

	if c.Completion.Provider == "" {
		c.Completion.Provider = ProviderOpenAI
	}
	if c.Completion.APIType == "" {
		c.Completion.APIType = APITypeAzure
	}
	if c.Completion.Deployment == "" {
		c.Completion.Deployment = "gpt-4"
	}
	if c.Completion.APIVersion == "" && c.Completion.APIType == APITypeAzure {
		c.Completion.APIVersion = "2024-02-01"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if c.Search.BaseURL == "" {
		return errors.New("search.base_url is required")
	}
	return c.Completion.validate()
}

func (s StoreConfig) validate() error {
	switch s.Driver {
	case DriverCosmos:
		if s.Cosmos.Endpoint == "" || s.Cosmos.Database == "" || s.Cosmos.Container == "" {
			return errors.New("store.cosmos.endpoint, database and container are required")
		}
		switch s.Cosmos.PartitionKeyPath {
		case "", CosmosPartitionByConversation, CosmosPartitionByID:
		default:
			return fmt.Errorf("store.cosmos.partition_key_path must be %q or %q, got %q",
				CosmosPartitionByConversation, CosmosPartitionByID, s.Cosmos.PartitionKeyPath)
		}
	case DriverRedis:
		if len(s.Redis.Addrs) == 0 {
			return errors.New("store.redis.addrs is required")
		}
	case DriverSQLite:
		if s.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
	default:
		return fmt.Errorf("store.driver must be %q, %q or %q, got %q",
			DriverCosmos, DriverRedis, DriverSQLite, s.Driver)
	}
	return nil
}

func (c CompletionConfig) validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderLangchain:
	default:
		return fmt.Errorf("completion.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderLangchain, c.Provider)
	}
	switch c.APIType {
	case APITypeAzure:
		if c.BaseURL == "" {
			return errors.New("completion.base_url is required for the azure api_type")
		}
	case APITypeOpenAI:
	default:
		return fmt.Errorf("completion.api_type must be %q or %q, got %q",
			APITypeAzure, APITypeOpenAI, c.APIType)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
