package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsscraper/internal/config"
	"newsscraper/internal/datefilter"
	"newsscraper/internal/dedup"
	"newsscraper/internal/enrich"
	"newsscraper/internal/extract"
	"newsscraper/internal/fetch"
	"newsscraper/internal/normalize"
	"newsscraper/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubDetector struct{}

func (stubDetector) Detect(string) string { return "en" }

type stubEnricher struct {
	calls atomic.Int32
}

func (s *stubEnricher) Enrich(_ context.Context, article *models.Article) {
	s.calls.Add(1)
	article.Summary = "stub summary"
	article.Keywords = []string{"stub"}
}

func articleHTML(title, marker string) string {
	return fmt.Sprintf(
		"<html><head><title>%s</title></head><body><article><p>%s</p></article></body></html>",
		title,
		strings.Repeat("Real article prose about "+marker+". ", 30),
	)
}

func oldDatedArticleHTML() string {
	return `<html><head><title>Old Story</title>
<script type="application/ld+json">
{"@type": "NewsArticle", "headline": "Old Story", "datePublished": "2020-01-15T08:00:00Z",
 "articleBody": "` + strings.Repeat("Dated body from years ago. ", 30) + `"}
</script></head><body></body></html>`
}

func listingPageHTML(links int) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for i := 0; i < links; i++ {
		fmt.Fprintf(&b, `<li><a href="/news/story-number-%d-breaks">Story %d</a></li>`, i, i)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

type testHarness struct {
	server   *httptest.Server
	pipeline *Pipeline
	enricher *stubEnricher
	store    *dedup.MemoryStore

	articleFetches atomic.Int32
}

func newHarness(t *testing.T, cfg config.PipelineConfig) *testHarness {
	t.Helper()
	h := &testHarness{enricher: &stubEnricher{}, store: dedup.NewMemoryStore()}

	mux := http.NewServeMux()
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		h.articleFetches.Add(1)
		w.Write([]byte(articleHTML("Story", strings.TrimPrefix(r.URL.Path, "/news/"))))
	})
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPageHTML(30)))
	})
	mux.HandleFunc("/old-story", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(oldDatedArticleHTML()))
	})
	mux.HandleFunc("/empty-page", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>almost nothing</p></body></html>"))
	})
	h.server = httptest.NewServer(mux)
	t.Cleanup(h.server.Close)

	scraperCfg := config.ScraperConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 0,
		RetryDelay: 10 * time.Millisecond,
	}
	fetcher := fetch.New(fetch.NewStaticFetcher(scraperCfg, testLogger()), nil, 250, testLogger())

	h.pipeline = New(cfg, Deps{
		Fetcher:    fetcher,
		Extractor:  extract.NewChain(cfg.MinContentLength, testLogger()),
		Normalizer: normalize.Normalizer{MinLength: cfg.MinContentLength},
		Detector:   stubDetector{},
		Filter:     datefilter.New(cfg.RecencyWindow, testLogger()),
		Enricher:   h.enricher,
		Gateway:    dedup.NewGateway(h.store),
		Logger:     testLogger(),
	})
	h.pipeline.now = func() time.Time {
		return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func runBatch(h *testHarness, urls []string) models.ScrapeBatchResult {
	return h.pipeline.Run(context.Background(), models.ScrapeRequest{URLs: urls})
}

func defaultPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Workers:          4,
		RequestTimeout:   time.Minute,
		RecencyWindow:    180 * 24 * time.Hour,
		MinContentLength: 200,
		MaxListingLinks:  10,
	}
}

func TestRunSingleArticle(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	result := runBatch(h, []string{h.server.URL + "/news/city-council-budget-vote"})

	require.Len(t, result.Articles, 1)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Stats.Processed)

	article := result.Articles[0]
	assert.Equal(t, "Story", article.Title)
	assert.Contains(t, article.Content, "city-council-budget-vote")
	assert.Equal(t, "en", article.Language)
	assert.True(t, article.DateUnknown)
	assert.Equal(t, "stub summary", article.Summary)
	assert.False(t, article.ScrapedAt.IsZero())
	assert.Equal(t, 1, h.store.Len())
}

func TestRunNotFoundProducesScrapeError(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	result := runBatch(h, []string{h.server.URL + "/missing/page-not-here-now"})

	assert.Empty(t, result.Articles)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, StageFetch, result.Errors[0].Stage)
	assert.Contains(t, result.Errors[0].Message, "404")
	assert.Equal(t, int32(0), h.enricher.calls.Load())
}

func TestRunInvalidURLFailsValidation(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	result := runBatch(h, []string{"ftp://example.com/resource"})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, StageValidate, result.Errors[0].Stage)
}

func TestRunListingExpansionHonorsCap(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	result := runBatch(h, []string{h.server.URL + "/listing"})

	assert.Len(t, result.Articles, 10)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 10, result.Stats.Processed)
	assert.Equal(t, int32(10), h.articleFetches.Load(), "fetch fan-out must stop at the cap")

	// Discovered links land in discovery order.
	assert.Contains(t, result.Articles[0].Content, "story-number-0-breaks")
	assert.Contains(t, result.Articles[9].Content, "story-number-9-breaks")
}

func TestRunOldArticleIsFilteredByDate(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	result := runBatch(h, []string{h.server.URL + "/old-story"})

	assert.Empty(t, result.Articles)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Stats.Processed)
	assert.Equal(t, 1, result.Stats.FilteredByDate)
	assert.Equal(t, int32(0), h.enricher.calls.Load(), "filtered articles must not be enriched")
}

func TestRunThinPageIsAnExtractionError(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	result := runBatch(h, []string{h.server.URL + "/empty-page"})

	assert.Empty(t, result.Articles)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, StageExtract, result.Errors[0].Stage)
}

func TestRunDuplicateCanonicalURLCountedOnce(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	urls := []string{
		h.server.URL + "/news/same-story-two-ways?utm_source=feed",
		h.server.URL + "/news/same-story-two-ways?utm_source=social",
	}
	result := runBatch(h, urls)

	require.Len(t, result.Articles, 1)
	assert.Equal(t, 2, result.Stats.Processed)
	assert.Equal(t, 1, result.Stats.Duplicates)
	assert.Equal(t, 1, h.store.Len())
}

func TestRunDedupesIdenticalInputURLs(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	u := h.server.URL + "/news/one-story-only-here"
	result := runBatch(h, []string{u, u, u})

	require.Len(t, result.Articles, 1)
	assert.Equal(t, 1, result.Stats.Processed)
}

func TestRunPreservesInputOrder(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	urls := []string{
		h.server.URL + "/news/alpha-first-story-here",
		h.server.URL + "/news/bravo-second-story-here",
		h.server.URL + "/news/charlie-third-story-here",
	}
	result := runBatch(h, urls)

	require.Len(t, result.Articles, 3)
	assert.Contains(t, result.Articles[0].Content, "alpha-first-story-here")
	assert.Contains(t, result.Articles[1].Content, "bravo-second-story-here")
	assert.Contains(t, result.Articles[2].Content, "charlie-third-story-here")
}

func TestRunGlobalTimeoutTagsErrors(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	cfg := defaultPipelineConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	h := newHarness(t, cfg)

	result := runBatch(h, []string{slow.URL + "/news/never-loads-in-time"})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, StageFetch, result.Errors[0].Stage)
	assert.Contains(t, result.Errors[0].Message, "timeout")
}

func TestRunUnenrichedWhenServiceUnreachable(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	// Real enrichment client pointed at a closed port: the article must
	// still come through with the degraded defaults.
	h.pipeline.deps.Enricher = enrich.NewClient(config.EnrichmentConfig{
		Endpoint: "http://127.0.0.1:1",
		Timeout:  100 * time.Millisecond,
		Slots:    1,
	}, testLogger())

	result := runBatch(h, []string{h.server.URL + "/news/degraded-but-present-story"})

	require.Len(t, result.Articles, 1)
	article := result.Articles[0]
	assert.Empty(t, article.Summary)
	assert.Equal(t, []string{}, article.Keywords)
	assert.False(t, article.IsFakeNews)
	assert.Zero(t, article.ConfidenceScore)
}

func TestRunAccounting(t *testing.T) {
	h := newHarness(t, defaultPipelineConfig())

	urls := []string{
		h.server.URL + "/news/good-story-number-one",
		h.server.URL + "/missing/not-here-at-all",
		h.server.URL + "/old-story",
		h.server.URL + "/news/dup-story-same-canon?utm_source=a",
		h.server.URL + "/news/dup-story-same-canon?utm_source=b",
	}
	result := runBatch(h, urls)

	total := len(result.Articles) + len(result.Errors) +
		result.Stats.FilteredByDate + result.Stats.Duplicates
	assert.Equal(t, result.Stats.Processed, total,
		"every processed URL must land in exactly one bucket")
	assert.Equal(t, 5, result.Stats.Processed)
	assert.Len(t, result.Articles, 2)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Stats.FilteredByDate)
	assert.Equal(t, 1, result.Stats.Duplicates)
}
