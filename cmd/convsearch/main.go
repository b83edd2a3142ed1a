package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/config"
	dbCosmos "github.com/kailas-cloud/convsearch/internal/db/cosmos"
	dbRedis "github.com/kailas-cloud/convsearch/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/convsearch/internal/db/sqlite"
	"github.com/kailas-cloud/convsearch/internal/domain"
	logpkg "github.com/kailas-cloud/convsearch/internal/logger"
	"github.com/kailas-cloud/convsearch/internal/metrics"
	convrepo "github.com/kailas-cloud/convsearch/internal/repository/conversation"
	"github.com/kailas-cloud/convsearch/internal/transport/azsearch"
	chiTransport "github.com/kailas-cloud/convsearch/internal/transport/chi"
	lcCompletion "github.com/kailas-cloud/convsearch/internal/transport/langchain"
	openaiCompletion "github.com/kailas-cloud/convsearch/internal/transport/openai"
	conversationuc "github.com/kailas-cloud/convsearch/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/convsearch/internal/usecase/health"
	"github.com/kailas-cloud/convsearch/internal/usecase/intent"
	searchuc "github.com/kailas-cloud/convsearch/internal/usecase/search"
	"github.com/kailas-cloud/convsearch/internal/version"
)

// conversationStore is what the composition root needs from a store driver.
type conversationStore interface {
	conversationuc.Store
	Ping(ctx context.Context) error
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting convsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("completion_provider", cfg.Completion.Provider),
		zap.String("completion_api_type", cfg.Completion.APIType),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	ctx := context.Background()
	store, closeStore, err := buildStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("Failed to create conversation store", zap.Error(err))
	}
	defer closeStore()
	logger.Info("Conversation store ready", zap.String("store", store.Name()))

	completer, err := buildCompleter(cfg.Completion, logger)
	if err != nil {
		logger.Fatal("Failed to create completion provider", zap.Error(err))
	}

	searchClient := azsearch.NewClient(&azsearch.Config{
		BaseURL:    cfg.Search.BaseURL,
		APIVersion: cfg.Search.APIVersion,
		APIKey:     cfg.Search.APIKey,
		Timeout:    time.Duration(cfg.Search.TimeoutSec) * time.Second,
		UserAgent:  version.String(),
		Logger:     logger,
	})

	// Use case services
	intentSvc := intent.New(completer).WithToolCalls(cfg.Completion.ToolCallsAllowed())
	searchSvc := searchuc.New(searchClient)
	conversationSvc := conversationuc.New(
		conversationuc.NewInstrumentedStore(store, logger),
		intentSvc,
		searchSvc,
	)

	// Pass nil interface (not typed nil pointer) when the provider is not probed.
	var completionChecker healthuc.CompletionChecker
	if hc, ok := completer.(healthuc.CompletionChecker); ok && cfg.Completion.HealthCheck {
		completionChecker = hc
	}
	healthSvc := healthuc.New(store, completionChecker)

	server := chiTransport.NewServer(conversationSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildStore opens the configured driver and returns the repository plus its cleanup.
func buildStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (conversationStore, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.DriverCosmos:
		s, err := dbCosmos.NewStore(dbCosmos.Config{
			Endpoint:  cfg.Cosmos.Endpoint,
			Key:       cfg.Cosmos.Key,
			Database:  cfg.Cosmos.Database,
			Container: cfg.Cosmos.Container,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("cosmos: %w", err)
		}
		return convrepo.NewCosmos(s).WithPartitionKeyPath(cfg.Cosmos.PartitionKeyPath), noop, nil

	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("redis: %w", err)
		}
		timeout := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
		if err := s.WaitForReady(ctx, timeout); err != nil {
			s.Close()
			return nil, noop, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to Redis", zap.Strings("addrs", cfg.Redis.Addrs))
		return convrepo.NewRedis(s, cfg.Redis.KeyPrefix), s.Close, nil

	case config.DriverSQLite:
		conn, err := dbSQLite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("sqlite: %w", err)
		}
		logger.Info("Opened SQLite store", zap.String("path", cfg.SQLite.Path))
		return convrepo.NewSQLite(conn), func() { _ = conn.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// buildCompleter creates the configured chat completion provider.
func buildCompleter(cfg config.CompletionConfig, logger *zap.Logger) (domain.Completer, error) {
	switch cfg.Provider {
	case config.ProviderLangchain:
		c, err := lcCompletion.NewCompleter(&lcCompletion.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Azure:      cfg.APIType == config.APITypeAzure,
			APIVersion: cfg.APIVersion,
			Model:      cfg.Deployment,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("langchain: %w", err)
		}
		return c, nil
	default:
		return openaiCompletion.NewCompleter(&openaiCompletion.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			APIType:    cfg.APIType,
			APIVersion: cfg.APIVersion,
			Deployment: cfg.Deployment,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	}
}
