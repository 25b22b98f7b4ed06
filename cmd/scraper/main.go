package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"newsscraper/internal/config"
	"newsscraper/internal/datefilter"
	"newsscraper/internal/dedup"
	"newsscraper/internal/enrich"
	"newsscraper/internal/extract"
	"newsscraper/internal/fetch"
	scraperio "newsscraper/internal/io"
	"newsscraper/internal/language"
	"newsscraper/internal/logging"
	"newsscraper/internal/normalize"
	"newsscraper/internal/pipeline"
	"newsscraper/pkg/models"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	inputFile := flag.String("input", "", "File containing URLs to scrape (one per line)")
	outputFile := flag.String("output", "", "File to save the batch result to (JSON)")
	workers := flag.Int("workers", 0, "Override the concurrent worker count")
	flag.Parse()

	var cfg *config.AppConfig
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}
		cfg = loaded
	} else {
		cfg = config.CreateDefault()
	}

	if *inputFile != "" {
		cfg.IO.InputFile = *inputFile
	}
	if *outputFile != "" {
		cfg.IO.OutputFile = *outputFile
	}
	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}

	logger := logging.New(cfg.Logging.Level)

	urls := flag.Args()
	if cfg.IO.InputFile != "" {
		fileURLs, err := scraperio.ReadURLList(cfg.IO.InputFile)
		if err != nil {
			log.Fatalf("Error reading URLs: %v", err)
		}
		urls = append(fileURLs, urls...)
	}
	if len(urls) == 0 {
		log.Fatal("No URLs to scrape: pass them as arguments or via -input")
	}

	ctx := context.Background()

	static := fetch.NewStaticFetcher(cfg.Scraper, logger.With("component", "fetch.static"))
	var renderer fetch.Renderer
	if cfg.Browser.Enabled {
		pool := fetch.NewBrowserPool(cfg.Browser)
		defer pool.Close()
		renderer = fetch.NewBrowserFetcher(pool, cfg.Browser, logger.With("component", "fetch.browser"))
	}
	fetcher := fetch.New(static, renderer, cfg.Scraper.MinBodyChars, logger.With("component", "fetch"))

	var store dedup.Store
	if cfg.Store.URI != "" {
		mongoStore, err := dedup.NewMongoStore(ctx, cfg.Store)
		if err != nil {
			log.Fatalf("Error connecting to store: %v", err)
		}
		defer mongoStore.Close(ctx)
		store = mongoStore
	} else {
		logger.Warn("no store configured, deduplication is batch-scoped only")
		store = dedup.NewMemoryStore()
	}

	p := pipeline.New(cfg.Pipeline, pipeline.Deps{
		Fetcher:    fetcher,
		Extractor:  extract.NewChain(cfg.Pipeline.MinContentLength, logger.With("component", "extract")),
		Normalizer: normalize.Normalizer{MinLength: cfg.Pipeline.MinContentLength},
		Detector:   language.NewDetector(logger.With("component", "language")),
		Filter:     datefilter.New(cfg.Pipeline.RecencyWindow, logger.With("component", "datefilter")),
		Enricher:   enrich.NewClient(cfg.Enrichment, logger.With("component", "enrich")),
		Gateway:    dedup.NewGateway(store),
		Logger:     logger.With("component", "pipeline"),
	})

	logger.Info("starting batch", "urls", len(urls), "workers", cfg.Pipeline.Workers)
	result := p.Run(ctx, models.ScrapeRequest{URLs: urls})

	if err := scraperio.WriteBatchResult(result, cfg.IO.OutputFile); err != nil {
		log.Fatalf("Error saving results: %v", err)
	}

	logger.Info("batch finished",
		"articles", len(result.Articles),
		"errors", len(result.Errors),
		"filtered_by_date", result.Stats.FilteredByDate,
		"duplicates", result.Stats.Duplicates,
		"output", cfg.IO.OutputFile)

	if len(result.Articles) == 0 && len(result.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "every URL failed, see the error list in the output file")
		os.Exit(1)
	}
}
