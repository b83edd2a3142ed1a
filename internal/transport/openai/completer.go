package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/domain"
	"github.com/kailas-cloud/convsearch/internal/metrics"
)

// API types accepted by Config.APIType.
const (
	APITypeAzure  = "azure"
	APITypeOpenAI = "openai"
)

// Compile-time check: Completer implements domain.Completer.
var _ domain.Completer = (*Completer)(nil)

// Completer is a chat completion provider using Azure OpenAI or an
// OpenAI-compatible API.
type Completer struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	APIType    string // azure (default) or openai
	APIVersion string // Azure only
	Deployment string // Azure deployment name, or model name for openai
	Provider   string
	Logger     *zap.Logger
}

// NewCompleter creates a chat completion provider.
func NewCompleter(cfg *Config) *Completer {
	var clientCfg openai.ClientConfig
	if cfg.APIType == APITypeOpenAI {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	} else {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
		deployment := cfg.Deployment
		clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Deployment,
		provider: cfg.Provider,
		logger:   logger,
	}
}

// Complete implements domain.Completer. The prompt is sent as a single user message.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.AllowToolCalls {
		// tool_choice requires tools; none are registered.
		c.logger.Debug("Tool calls allowed, no tools registered", zap.String("model", c.model))
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)

	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return "", parseAPIError(err)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("Completion returned no choices", zap.String("model", c.model))
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractMessage(reqErr.Body); detail != "" {
			return fmt.Errorf("completion API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("completion API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("completion request failed: %w", err)
}

// extractMessage reads "detail" or "message" from a JSON error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Message
}
