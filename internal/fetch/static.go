package fetch

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"newsscraper/internal/config"
	"newsscraper/pkg/models"
)

// maxBodyBytes caps how much of a response body is read. Pages larger than
// this are not articles.
const maxBodyBytes = 10 << 20

// StaticFetcher retrieves pages with a plain HTTP GET.
type StaticFetcher struct {
	client *http.Client
	cfg    config.ScraperConfig
	logger *slog.Logger
}

// NewStaticFetcher builds the static fetch path from configuration.
func NewStaticFetcher(cfg config.ScraperConfig, logger *slog.Logger) *StaticFetcher {
	return &StaticFetcher{
		client: &http.Client{
			Transport: &http.Transport{},
			Timeout:   cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch retrieves the URL, retrying transient failures, and returns the
// page body together with the redirect-resolved URL.
func (s *StaticFetcher) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	start := time.Now()
	var lastErr *Error

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := s.cfg.RetryDelay * time.Duration(attempt)
			s.logger.Debug("retrying fetch", "url", url, "wait", wait, "attempt", attempt)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, classifyError(url, ctx.Err())
			}
		}

		result, err := s.fetchOnce(ctx, url, start)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}

	return nil, lastErr
}

func (s *StaticFetcher) fetchOnce(ctx context.Context, url string, start time.Time) (*models.FetchResult, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnection, URL: url, Err: err}
	}

	if len(s.cfg.UserAgents) > 0 {
		req.Header.Set("User-Agent", s.cfg.UserAgents[rand.Intn(len(s.cfg.UserAgents))])
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyError(url, err)
	}

	return &models.FetchResult{
		URL:         url,
		ResolvedURL: resp.Request.URL.String(),
		HTML:        string(body),
		Method:      models.FetchStatic,
		StatusCode:  resp.StatusCode,
		Duration:    time.Since(start),
	}, nil
}
