// Package pipeline drives per-URL scraping under bounded concurrency and
// assembles the batch result.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"newsscraper/internal/config"
	"newsscraper/internal/datefilter"
	"newsscraper/internal/dedup"
	"newsscraper/internal/page"
	"newsscraper/pkg/models"
)

// Stage names attached to ScrapeErrors.
const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageDiscover = "discover"
	StageExtract  = "extract"
	StageNormal   = "normalize"
	StageDedup    = "dedup"
)

// Fetcher retrieves pages; implemented by the fetch layer.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)
}

// Extractor runs the strategy chain; implemented by extract.Chain.
type Extractor interface {
	Extract(fr *models.FetchResult) (*models.ExtractionCandidate, error)
}

// Normalizer cleans a winning candidate; implemented by
// normalize.Normalizer.
type Normalizer interface {
	Build(candidate *models.ExtractionCandidate, fr *models.FetchResult) (*models.Article, error)
}

// LanguageDetector tags article text with an ISO code.
type LanguageDetector interface {
	Detect(text string) string
}

// Enricher fills summary, keyword and fake-news fields, degrading on
// failure instead of erroring.
type Enricher interface {
	Enrich(ctx context.Context, article *models.Article)
}

// Gateway makes the accept/already-exists decision against the store.
type Gateway interface {
	Accept(ctx context.Context, article models.Article) (dedup.Status, error)
}

// Deps wires every stage into the orchestrator.
type Deps struct {
	Fetcher    Fetcher
	Extractor  Extractor
	Normalizer Normalizer
	Detector   LanguageDetector
	Filter     *datefilter.Filter
	Enricher   Enricher
	Gateway    Gateway
	Logger     *slog.Logger
}

// Pipeline runs the full per-URL chain: fetch, classify, extract,
// normalize, detect, filter, enrich, dedup.
type Pipeline struct {
	cfg    config.PipelineConfig
	deps   Deps
	logger *slog.Logger

	// now is a hook for tests.
	now func() time.Time
}

// New constructs the orchestrator.
func New(cfg config.PipelineConfig, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, deps: deps, logger: logger, now: time.Now}
}

// outcome is the single result of processing one resolved URL. Exactly one
// of article, scrapeErr, filtered, duplicate is set.
type outcome struct {
	article   *models.Article
	scrapeErr *models.ScrapeError
	filtered  bool
	duplicate bool
}

// job carries one top-level input URL through the worker pool.
type job struct {
	index int
	url   string
}

// jobResult keeps the outcomes of a top-level URL (one, or several after
// listing expansion) attached to its input position.
type jobResult struct {
	index    int
	outcomes []outcome
}

// Run processes every input URL and assembles the batch result. Top-level
// outcomes appear in input order; outcomes of discovered listing links
// follow their parent in discovery order.
func (p *Pipeline) Run(ctx context.Context, req models.ScrapeRequest) models.ScrapeBatchResult {
	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	urls := dedupeInput(req.URLs)

	slots := make([][]outcome, len(urls))
	jobs := make(chan job, len(urls))
	results := make(chan jobResult, len(urls))

	var wg sync.WaitGroup
	workers := p.cfg.Workers
	if workers > len(urls) {
		workers = len(urls)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- jobResult{index: j.index, outcomes: p.processURL(ctx, j.url)}
			}
		}()
	}

	for i, u := range urls {
		jobs <- job{index: i, url: u}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		slots[r.index] = r.outcomes
	}

	return assemble(slots)
}

// processURL handles one top-level input URL: validation, fetch,
// classification, and either direct article processing or one level of
// listing expansion.
func (p *Pipeline) processURL(ctx context.Context, rawURL string) []outcome {
	if err := validateURL(rawURL); err != nil {
		return []outcome{errOutcome(rawURL, StageValidate, err)}
	}

	fr, err := p.deps.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return []outcome{errOutcome(rawURL, StageFetch, err)}
	}

	if page.Classify(fr) == page.KindArticle {
		return []outcome{p.processArticle(ctx, fr)}
	}

	links := page.Discover(fr, p.cfg.MaxListingLinks)
	p.logger.Info("listing page expanded", "url", rawURL, "links", len(links))
	if len(links) == 0 {
		return []outcome{errOutcome(rawURL, StageDiscover, errors.New("listing page with no discoverable article links"))}
	}

	outcomes := make([]outcome, 0, len(links))
	for _, link := range links {
		outcomes = append(outcomes, p.processDiscovered(ctx, link))
	}
	return outcomes
}

// processDiscovered fetches a link found on a listing page. A discovered
// URL that is itself a listing is an extraction failure, not followed
// further.
func (p *Pipeline) processDiscovered(ctx context.Context, link string) outcome {
	fr, err := p.deps.Fetcher.Fetch(ctx, link)
	if err != nil {
		return errOutcome(link, StageFetch, err)
	}

	if page.Classify(fr) == page.KindListing {
		return errOutcome(link, StageExtract, errors.New("discovered link is another listing page"))
	}

	return p.processArticle(ctx, fr)
}

// processArticle runs the strict per-URL stage chain on a fetched page.
func (p *Pipeline) processArticle(ctx context.Context, fr *models.FetchResult) outcome {
	candidate, err := p.deps.Extractor.Extract(fr)
	if err != nil {
		return errOutcome(fr.URL, StageExtract, err)
	}

	article, err := p.deps.Normalizer.Build(candidate, fr)
	if err != nil {
		return errOutcome(fr.URL, StageNormal, err)
	}

	article.Language = p.deps.Detector.Detect(article.Content)

	now := p.now()
	if !p.deps.Filter.WithinWindow(article.PublicationDate, now) {
		p.logger.Debug("article outside recency window", "url", article.URL)
		return outcome{filtered: true}
	}
	article.DateUnknown = article.PublicationDate == nil

	article.ScrapedAt = now
	p.deps.Filter.CheckSkew(article.URL, article.PublicationDate, article.ScrapedAt)

	p.deps.Enricher.Enrich(ctx, article)

	status, err := p.deps.Gateway.Accept(ctx, *article)
	if err != nil {
		return errOutcome(article.URL, StageDedup, err)
	}
	if status == dedup.AlreadyExists {
		p.logger.Debug("duplicate article skipped", "url", article.URL)
		return outcome{duplicate: true}
	}

	p.logger.Info("article accepted",
		"url", article.URL, "strategy", candidate.Strategy, "method", fr.Method, "language", article.Language)
	return outcome{article: article}
}

func assemble(slots [][]outcome) models.ScrapeBatchResult {
	result := models.ScrapeBatchResult{
		Articles: []models.Article{},
		Errors:   []models.ScrapeError{},
	}

	for _, outcomes := range slots {
		for _, o := range outcomes {
			result.Stats.Processed++
			switch {
			case o.article != nil:
				result.Articles = append(result.Articles, *o.article)
			case o.scrapeErr != nil:
				result.Errors = append(result.Errors, *o.scrapeErr)
			case o.filtered:
				result.Stats.FilteredByDate++
			case o.duplicate:
				result.Stats.Duplicates++
			}
		}
	}
	return result
}

func errOutcome(url, stage string, err error) outcome {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "timeout: " + msg
	}
	return outcome{scrapeErr: &models.ScrapeError{URL: url, Stage: stage, Message: msg}}
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("unsupported scheme: " + parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func dedupeInput(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		result = append(result, u)
	}
	return result
}
