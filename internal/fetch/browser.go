package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"newsscraper/internal/config"
	"newsscraper/pkg/models"
)

// BrowserPool bounds concurrent headless browser tabs. All tabs share one
// Chrome process through a single exec allocator.
type BrowserPool struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	slots       *semaphore.Weighted
	acquireWait time.Duration
}

// NewBrowserPool starts the shared allocator and sizes the tab pool.
func NewBrowserPool(cfg config.BrowserConfig) *BrowserPool {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserPool{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		slots:       semaphore.NewWeighted(int64(cfg.PoolSize)),
		acquireWait: cfg.AcquireTimeout,
	}
}

// acquire blocks until a tab slot is free or the acquisition deadline hits.
func (p *BrowserPool) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.acquireWait)
	defer cancel()
	return p.slots.Acquire(waitCtx, 1)
}

func (p *BrowserPool) release() { p.slots.Release(1) }

// Close tears down the shared browser process.
func (p *BrowserPool) Close() { p.allocCancel() }

// BrowserFetcher loads pages in a headless browser for JS-rendered sites.
type BrowserFetcher struct {
	pool   *BrowserPool
	cfg    config.BrowserConfig
	logger *slog.Logger
}

// NewBrowserFetcher wires the rendered fetch path onto a pool.
func NewBrowserFetcher(pool *BrowserPool, cfg config.BrowserConfig, logger *slog.Logger) *BrowserFetcher {
	return &BrowserFetcher{pool: pool, cfg: cfg, logger: logger}
}

// Fetch renders the URL, waits for the settle delay, and captures the DOM.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	start := time.Now()

	if err := b.pool.acquire(ctx); err != nil {
		return nil, &Error{Kind: KindTimeout, URL: url, Err: fmt.Errorf("browser pool acquisition: %w", err)}
	}
	defer b.pool.release()

	tabCtx, cancelTab := chromedp.NewContext(b.pool.allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, b.cfg.Timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, URL: url, Err: fmt.Errorf("browser render: %w", err)}
		}
		return nil, &Error{Kind: KindConnection, URL: url, Err: fmt.Errorf("browser render: %w", err)}
	}

	b.logger.Debug("rendered page", "url", url, "duration", time.Since(start))

	return &models.FetchResult{
		URL:         url,
		ResolvedURL: url,
		HTML:        html,
		Method:      models.FetchRendered,
		StatusCode:  http.StatusOK,
		Duration:    time.Since(start),
	}, nil
}
