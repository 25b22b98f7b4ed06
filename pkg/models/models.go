package models

import (
	"time"
)

// FetchMethod identifies how a page was retrieved.
type FetchMethod string

const (
	// FetchStatic means a plain HTTP GET without script execution.
	FetchStatic FetchMethod = "static"
	// FetchRendered means the page was loaded in a headless browser.
	FetchRendered FetchMethod = "rendered"
)

// ScrapeRequest is one batch of input URLs, in presentation order.
// Exact-match duplicates are dropped before processing.
type ScrapeRequest struct {
	URLs []string `json:"urls"`
}

// FetchResult holds a fetched page and how it was obtained. It is consumed
// by classification and extraction and discarded afterwards.
type FetchResult struct {
	URL         string
	ResolvedURL string
	HTML        string
	Method      FetchMethod
	StatusCode  int
	Duration    time.Duration
}

// ExtractionCandidate is one strategy's attempt at turning a fetched page
// into article content. One candidate exists per strategy attempt.
type ExtractionCandidate struct {
	Strategy    string
	Title       string
	Text        string
	PublishedAt *time.Time
	ImageURLs   []string
	LogoURL     string
	Quality     float64
}

// Article is the unit of output and storage. Immutable once emitted.
type Article struct {
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Summary         string     `json:"summary,omitempty"`
	Keywords        []string   `json:"keywords"`
	ImageURLs       []string   `json:"image_urls"`
	LogoURL         string     `json:"logo_url,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	DateUnknown     bool       `json:"date_unknown,omitempty"`
	ScrapedAt       time.Time  `json:"scraped_at"`
	Language        string     `json:"language"`
	URL             string     `json:"url"`
	SourceDomain    string     `json:"source_domain"`
	IsFakeNews      bool       `json:"is_fake_news"`
	ConfidenceScore float64    `json:"confidence_score"`
}

// ScrapeError describes why a single URL failed. Stage names the pipeline
// step that gave up on it.
type ScrapeError struct {
	URL     string `json:"url"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"error"`
	Trace   string `json:"trace,omitempty"`
}

// BatchStats counts processed URLs that produced neither an article nor an
// error: recency-filtered and store-duplicate outcomes.
type BatchStats struct {
	Processed      int `json:"processed"`
	FilteredByDate int `json:"filtered_by_date"`
	Duplicates     int `json:"duplicates"`
}

// ScrapeBatchResult is assembled exactly once per request. Every processed
// URL is accounted for in Articles, Errors, or the stats counters.
type ScrapeBatchResult struct {
	Articles []Article     `json:"articles"`
	Errors   []ScrapeError `json:"errors"`
	Stats    BatchStats    `json:"stats"`
}
