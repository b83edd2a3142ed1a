package convsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbCosmos "github.com/kailas-cloud/convsearch/internal/db/cosmos"
	dbRedis "github.com/kailas-cloud/convsearch/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/convsearch/internal/db/sqlite"
	"github.com/kailas-cloud/convsearch/internal/domain"
	convrepo "github.com/kailas-cloud/convsearch/internal/repository/conversation"
	"github.com/kailas-cloud/convsearch/internal/transport/azsearch"
	conversationuc "github.com/kailas-cloud/convsearch/internal/usecase/conversation"
	healthuc "github.com/kailas-cloud/convsearch/internal/usecase/health"
	"github.com/kailas-cloud/convsearch/internal/usecase/intent"
	searchuc "github.com/kailas-cloud/convsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSearchTimeout    = 30 * time.Second
	defaultKeyPrefix        = "convsearch:"
	defaultSearchAPIVersion = "2024-07-01"
)

// conversationUseCase is replaced by a mock in tests.
type conversationUseCase interface {
	Handle(ctx context.Context, req conversationuc.Request) (conversationuc.Response, error)
}

// store is a conversation repository with a liveness probe.
type store interface {
	conversationuc.Store
	Ping(ctx context.Context) error
}

// Client is the convsearch SDK entry point.
type Client struct {
	closeFn   func()
	store     store
	convSvc   conversationUseCase
	healthSvc healthUseCase
	obs       *observer
	now       func() time.Time
}

// New creates a Client and connects to the conversation store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        defaultKeyPrefix,
		searchAPIVersion: defaultSearchAPIVersion,
		allowToolCalls:   true,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("convsearch: conversation store required (use WithRedis, WithSQLite or WithCosmos)")
	}
	if cfg.searchBaseURL == "" {
		return nil, errors.New("convsearch: search service required (use WithAzureSearch)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	st, closeFn, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return wireClient(st, closeFn, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (store, func(), error) {
	noop := func() {}

	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("convsearch: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, noop, fmt.Errorf("convsearch: redis not ready: %w", err)
		}
		return convrepo.NewRedis(s, cfg.keyPrefix), s.Close, nil
	case "sqlite":
		conn, err := dbSQLite.Open(ctx, cfg.path)
		if err != nil {
			return nil, noop, fmt.Errorf("convsearch: open sqlite store: %w", err)
		}
		return convrepo.NewSQLite(conn), func() { _ = conn.Close() }, nil
	case "cosmos":
		switch cfg.cosmos.partitionKeyPath {
		case "", convrepo.PartitionByConversation, convrepo.PartitionByID:
		default:
			return nil, noop, fmt.Errorf("convsearch: unsupported cosmos partition key path %q",
				cfg.cosmos.partitionKeyPath)
		}
		s, err := dbCosmos.NewStore(dbCosmos.Config{
			Endpoint:  cfg.cosmos.endpoint,
			Key:       cfg.cosmos.key,
			Database:  cfg.cosmos.database,
			Container: cfg.cosmos.container,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("convsearch: create cosmos store: %w", err)
		}
		repo := convrepo.NewCosmos(s)
		if cfg.cosmos.partitionKeyPath != "" {
			repo.WithPartitionKeyPath(cfg.cosmos.partitionKeyPath)
		}
		return repo, noop, nil
	default:
		return nil, noop, fmt.Errorf("convsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(st store, closeFn func(), cfg *clientConfig, obs *observer) *Client {
	// Without a completer first turns still work; follow-ups fail intent resolution.
	var cmp domain.Completer = noopCompleter{}
	if cfg.completer != nil {
		cmp = &completerAdapter{inner: cfg.completer}
	}

	searchClient := azsearch.NewClient(&azsearch.Config{
		BaseURL:    cfg.searchBaseURL,
		APIVersion: cfg.searchAPIVersion,
		APIKey:     cfg.searchAPIKey,
		Timeout:    defaultSearchTimeout,
		HTTPClient: cfg.httpClient,
	})

	convSvc := conversationuc.New(
		st,
		intent.New(cmp).WithToolCalls(cfg.allowToolCalls),
		searchuc.New(searchClient),
	)

	return &Client{
		closeFn:   closeFn,
		store:     st,
		convSvc:   convSvc,
		healthSvc: healthuc.New(st, nil),
		obs:       obs,
		now:       time.Now,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Ping checks conversation store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := c.now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs one conversational search and returns sanitized documents.
// Failures wrap ErrIndexRequired or a *StepError.
func (c *Client) Search(ctx context.Context, q Query) (docs []Document, err error) {
	start := c.now()
	defer func() {
		c.obs.observe("search", start, err, "index", q.Index, "conversation_id", q.ConversationID)
	}()

	resp, err := c.convSvc.Handle(ctx, conversationuc.Request{
		ConversationID:        q.ConversationID,
		Message:               q.Message,
		IndexToSearch:         q.Index,
		Fields:                q.Fields,
		SemanticConfiguration: q.SemanticConfiguration,
	})
	if err != nil {
		return nil, fmt.Errorf("convsearch: %w", err)
	}

	docs = make([]Document, len(resp.Results))
	for i, d := range resp.Results {
		docs[i] = Document(d)
	}
	c.obs.documents(len(docs))
	return docs, nil
}

// completerAdapter wraps the public Completer to satisfy domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	out, err := a.inner.Complete(ctx, req.Prompt)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	return out, nil
}

// noopCompleter returns an error on Complete (used when no completer configured).
type noopCompleter struct{}

func (noopCompleter) Complete(_ context.Context, _ domain.CompletionRequest) (string, error) {
	return "", errors.New(
		"convsearch: completer not configured (use WithCompleter for follow-up messages)",
	)
}
