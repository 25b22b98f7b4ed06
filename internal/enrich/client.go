// Package enrich calls the external inference service for summaries,
// keywords and fake-news classification. Failures degrade the article
// instead of failing the pipeline.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"newsscraper/internal/config"
	"newsscraper/pkg/models"
)

// Client talks to the inference service over HTTP. Concurrent calls are
// bounded by the configured number of inference slots.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	slots    *semaphore.Weighted
	logger   *slog.Logger
}

// NewClient creates a reusable enrichment client.
func NewClient(cfg config.EnrichmentConfig, logger *slog.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		http:     &http.Client{Timeout: cfg.Timeout},
		slots:    semaphore.NewWeighted(int64(cfg.Slots)),
		logger:   logger,
	}
}

// Enrich fills in summary, keywords and fake-news fields. Each capability
// degrades independently: a timeout or model error leaves its defaults in
// place and is logged, never surfaced as an error.
func (c *Client) Enrich(ctx context.Context, article *models.Article) {
	article.Summary = ""
	article.Keywords = []string{}
	article.IsFakeNews = false
	article.ConfidenceScore = 0.0

	acquireCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.slots.Acquire(acquireCtx, 1); err != nil {
		c.logger.Warn("no inference slot available, article left unenriched",
			"url", article.URL, "error", err)
		return
	}
	defer c.slots.Release(1)

	if summary, err := c.Summarize(ctx, article.Content); err != nil {
		c.logger.Warn("summarization degraded", "url", article.URL, "error", err)
	} else {
		article.Summary = summary
	}

	if keywords, err := c.Keywords(ctx, article.Content); err != nil {
		c.logger.Warn("keyword extraction degraded", "url", article.URL, "error", err)
	} else if keywords != nil {
		article.Keywords = keywords
	}

	if isFake, confidence, err := c.ClassifyFake(ctx, article.Title, article.Content); err != nil {
		c.logger.Warn("fake-news classification degraded", "url", article.URL, "error", err)
	} else {
		article.IsFakeNews = isFake
		article.ConfidenceScore = confidence
	}
}

// Summarize requests a summary of the text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/summarize", map[string]any{"text": text}, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// Keywords requests an ordered keyword list for the text.
func (c *Client) Keywords(ctx context.Context, text string) ([]string, error) {
	var resp struct {
		Keywords []string `json:"keywords"`
	}
	if err := c.post(ctx, "/keywords", map[string]any{"text": text}, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

// ClassifyFake requests a fake-news verdict for title plus text.
func (c *Client) ClassifyFake(ctx context.Context, title, text string) (bool, float64, error) {
	var resp struct {
		IsFake     bool    `json:"is_fake"`
		Confidence float64 `json:"confidence"`
	}
	payload := map[string]any{"title": title, "text": text}
	if err := c.post(ctx, "/classify", payload, &resp); err != nil {
		return false, 0.0, err
	}
	return resp.IsFake, resp.Confidence, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
