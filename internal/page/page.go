// Package page decides whether a fetched page is a single article or a
// listing of articles, and discovers article links on listings.
package page

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsscraper/pkg/models"
)

// Kind is the classification outcome.
type Kind int

const (
	KindArticle Kind = iota
	KindListing
)

// listingLinkThreshold is how many distinct same-domain article-like links
// a page needs before it can be considered a listing.
const listingLinkThreshold = 5

// articleTextFloor is the paragraph-text length above which a page is
// assumed to carry its own article regardless of link count.
const articleTextFloor = 800

var (
	datePathPattern = regexp.MustCompile(`/\d{4}/\d{1,2}(/\d{1,2})?/`)
	slugPattern     = regexp.MustCompile(`/[a-z0-9]+(?:-[a-z0-9]+){2,}/?$`)
	sectionPattern  = regexp.MustCompile(`/(article|articles|news|story|stories|post|posts)/`)
)

// Classify inspects a fetched page and labels it Article or Listing.
// Ambiguous pages default to Article so extraction is still attempted.
func Classify(fr *models.FetchResult) Kind {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fr.HTML))
	if err != nil {
		return KindArticle
	}

	base, err := url.Parse(fr.ResolvedURL)
	if err != nil {
		return KindArticle
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := resolveLink(base, href)
		if link == nil || link.Host != base.Host {
			return
		}
		if !ArticleLikePath(link) {
			return
		}
		seen[link.String()] = struct{}{}
	})

	if len(seen) < listingLinkThreshold {
		return KindArticle
	}

	// Plenty of article links but also a substantial body means the page is
	// probably an article with a "related stories" rail.
	var paragraphLen int
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		paragraphLen += len(strings.TrimSpace(sel.Text()))
	})
	if paragraphLen >= articleTextFloor {
		return KindArticle
	}

	return KindListing
}

// Discover extracts candidate article URLs from a listing page in document
// order: same-domain links first, cross-domain links only when their path
// looks article-like. The result is capped at max entries.
func Discover(fr *models.FetchResult, max int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fr.HTML))
	if err != nil {
		return nil
	}

	base, err := url.Parse(fr.ResolvedURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var sameDomain, crossDomain []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link := resolveLink(base, href)
		if link == nil || !ArticleLikePath(link) {
			return
		}

		normalized := link.String()
		if _, ok := seen[normalized]; ok || normalized == fr.ResolvedURL {
			return
		}
		seen[normalized] = struct{}{}

		if link.Host == base.Host {
			sameDomain = append(sameDomain, normalized)
		} else {
			crossDomain = append(crossDomain, normalized)
		}
	})

	candidates := append(sameDomain, crossDomain...)
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}

// ArticleLikePath reports whether a URL path resembles an article
// permalink: a date segment, a hyphenated slug, or a news section prefix.
func ArticleLikePath(u *url.URL) bool {
	path := strings.ToLower(u.Path)
	if path == "" || path == "/" {
		return false
	}
	return datePathPattern.MatchString(path) ||
		slugPattern.MatchString(path) ||
		sectionPattern.MatchString(path)
}

func resolveLink(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}

	link := base.ResolveReference(ref)
	if link.Scheme != "http" && link.Scheme != "https" {
		return nil
	}
	link.Fragment = ""
	return link
}
