// Package datefilter drops articles published outside the recency window.
package datefilter

import (
	"log/slog"
	"time"

	"github.com/araddon/dateparse"
)

// clockSkewTolerance is how far a publication date may sit in the future
// of the scrape time before the inconsistency is logged.
const clockSkewTolerance = 24 * time.Hour

// Filter holds the recency window.
type Filter struct {
	window time.Duration
	logger *slog.Logger
}

// New builds a filter; a zero or negative window disables filtering.
func New(window time.Duration, logger *slog.Logger) *Filter {
	return &Filter{window: window, logger: logger}
}

// WithinWindow reports whether a publication date is inside the window
// ending at now. The boundary is inclusive. A nil date is "unknown" and
// passes by policy; callers flag it instead of discarding the article.
func (f *Filter) WithinWindow(published *time.Time, now time.Time) bool {
	if f.window <= 0 || published == nil {
		return true
	}
	cutoff := now.Add(-f.window)
	return !published.Before(cutoff)
}

// CheckSkew logs publication dates that sit implausibly far in the future
// of the scrape timestamp. The article is kept either way.
func (f *Filter) CheckSkew(url string, published *time.Time, scrapedAt time.Time) {
	if published == nil {
		return
	}
	if published.After(scrapedAt.Add(clockSkewTolerance)) {
		f.logger.Warn("publication date after scrape time",
			"url", url, "published", published, "scraped_at", scrapedAt)
	}
}

// ParseDate parses a free-form date string; nil when unparseable.
func ParseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	return &parsed
}
