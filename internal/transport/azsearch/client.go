// Package azsearch is a client for the Azure AI Search documents REST API.
package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/domain/search/request"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
	"github.com/kailas-cloud/convsearch/internal/metrics"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// Config holds Azure AI Search connection settings.
type Config struct {
	// BaseURL is the indexes root, e.g. https://name.search.windows.net/indexes/.
	BaseURL    string
	APIVersion string
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client dispatches hybrid queries to the document search endpoint.
type Client struct {
	baseURL    string
	apiVersion string
	apiKey     string
	userAgent  string
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates an Azure AI Search client.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		http:       hc,
		logger:     logger,
	}
}

// searchPayload is the wire shape of a documents search request.
type searchPayload struct {
	Search                string               `json:"search"`
	Count                 bool                 `json:"count"`
	VectorQueries         []vectorQueryPayload `json:"vectorQueries,omitempty"`
	QueryType             string               `json:"queryType,omitempty"`
	SemanticConfiguration string               `json:"semanticConfiguration,omitempty"`
	Captions              string               `json:"captions,omitempty"`
	Answers               string               `json:"answers,omitempty"`
}

type vectorQueryPayload struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	// Fields is a comma-separated list of vector fields.
	Fields string `json:"fields,omitempty"`
}

type searchResponse struct {
	Value []map[string]any `json:"value"`
}

// Search runs a hybrid query and returns the raw documents of the "value" array.
func (c *Client) Search(ctx context.Context, q request.Hybrid) ([]result.Document, error) {
	body, err := json.Marshal(toPayload(q))
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	endpoint := c.endpoint(q.Index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	docs, err := c.do(req)
	duration := time.Since(start)

	metrics.SearchRequestsTotal.WithLabelValues(q.Index, metrics.Status(err)).Inc()
	metrics.SearchRequestDuration.WithLabelValues(q.Index).Observe(duration.Seconds())

	if err != nil {
		return nil, err
	}

	c.logger.Debug("Search response",
		zap.String("index", q.Index),
		zap.Int("documents", len(docs)),
		zap.Duration("duration", duration),
	)
	return docs, nil
}

func (c *Client) do(req *http.Request) ([]result.Document, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", redactURL(req.URL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s for url: %s: %s",
			resp.Status, redactURL(req.URL), strings.TrimSpace(string(snippet)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var sr searchResponse
	if err := dec.Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]result.Document, len(sr.Value))
	for i, v := range sr.Value {
		docs[i] = v
	}
	return docs, nil
}

// endpoint builds {base}{index}/docs/search?api-version={v}.
func (c *Client) endpoint(index string) string {
	v := url.Values{}
	v.Set("api-version", c.apiVersion)
	return c.baseURL + url.PathEscape(index) + "/docs/search?" + v.Encode()
}

func toPayload(q request.Hybrid) searchPayload {
	p := searchPayload{
		Search:                q.Search,
		Count:                 q.Count,
		QueryType:             q.QueryType,
		SemanticConfiguration: q.SemanticConfiguration,
		Captions:              q.Captions,
	}
	if q.MaxAnswers > 0 {
		p.Answers = fmt.Sprintf("extractive|count-%d", q.MaxAnswers)
	}
	for _, vq := range q.VectorQueries {
		p.VectorQueries = append(p.VectorQueries, vectorQueryPayload{
			Kind:   vq.Kind,
			Text:   vq.Text,
			Fields: strings.Join(vq.Fields, ","),
		})
	}
	return p
}

func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
