package convsearch

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "redis", "sqlite" or "cosmos"
	addrs     []string
	password  string
	keyPrefix string
	path      string
	cosmos    cosmosConfig

	completer      Completer
	allowToolCalls bool

	searchBaseURL    string
	searchAPIVersion string
	searchAPIKey     string
	httpClient       *http.Client

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type cosmosConfig struct {
	endpoint, key, database, container string
	partitionKeyPath                   string
}

// WithRedis stores conversations in Redis or Valkey lists.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "convsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSQLite stores conversations in an embedded SQLite database file.
// Use ":memory:" for a process-local store.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.path = path
	})
}

// WithCosmos stores conversations in an Azure Cosmos DB container
// partitioned by /conversation_id.
func WithCosmos(endpoint, key, database, container string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "cosmos"
		c.cosmos.endpoint = endpoint
		c.cosmos.key = key
		c.cosmos.database = database
		c.cosmos.container = container
	})
}

// WithCosmosPartitionKeyPath sets the Cosmos DB container partition key path:
// "/conversation_id" (default) or "/id".
func WithCosmosPartitionKeyPath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cosmos.partitionKeyPath = path
	})
}

// WithCompleter sets the chat completion provider used to rewrite follow-up messages.
// Without it, only the first message of a conversation can be searched.
func WithCompleter(cmp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cmp
	})
}

// WithToolCalls forwards the tool-call permission to the completer. Default: true.
func WithToolCalls(allow bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.allowToolCalls = allow
	})
}

// WithAzureSearch configures the search service. baseURL is the indexes root,
// e.g. https://name.search.windows.net/indexes/.
func WithAzureSearch(baseURL, apiVersion, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchBaseURL = baseURL
		c.searchAPIVersion = apiVersion
		c.searchAPIKey = apiKey
	})
}

// WithHTTPClient overrides the HTTP client used for search requests.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
