// Package langchain provides a chat completion provider on top of langchaingo.
package langchain

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/domain"
	"github.com/kailas-cloud/convsearch/internal/metrics"
)

// Compile-time check: Completer implements domain.Completer.
var _ domain.Completer = (*Completer)(nil)

// Config holds the langchaingo completion settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Azure      bool
	APIVersion string
	Model      string // deployment name when Azure is set
	Provider   string
	Logger     *zap.Logger
}

// Completer wraps a langchaingo model.
type Completer struct {
	llm      llms.Model
	model    string
	provider string
	logger   *zap.Logger
}

// NewCompleter creates a langchaingo-backed completion provider.
func NewCompleter(cfg *Config) (*Completer, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Azure {
		opts = append(opts, openai.WithAPIType(openai.APITypeAzure))
		if cfg.APIVersion != "" {
			opts = append(opts, openai.WithAPIVersion(cfg.APIVersion))
		}
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchaingo client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{llm: llm, model: cfg.Model, provider: cfg.Provider, logger: logger}, nil
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}
	if req.AllowToolCalls {
		c.logger.Debug("Tool calls allowed, no tools registered", zap.String("model", c.model))
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx, content)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return "", fmt.Errorf("generate content: %w", err)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	if len(resp.Choices) == 0 {
		c.logger.Warn("Completion returned no choices", zap.String("model", c.model))
		return "", nil
	}
	return resp.Choices[0].Content, nil
}
