// Package normalize cleans winning extraction candidates and canonicalizes
// URLs into stable identity keys.
package normalize

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"newsscraper/pkg/models"
)

// ErrEmptyContent means the cleaned text fell below the minimum length.
// Extraction can pass raw-length checks and still fail here.
var ErrEmptyContent = errors.New("content empty after cleanup")

// trackingParams are query parameters stripped during URL canonicalization.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "msclkid", "ref", "source", "referrer", "mc_cid", "mc_eid",
}

var boilerplatePattern = regexp.MustCompile(`(?i)^(advertisement|sponsored( content)?|subscribe( now)?.{0,40}|sign up for .{0,60}|share this( article| story)?|read more:?.{0,60}|related( articles| stories)?:?|accept (all )?cookies.{0,40}|we use cookies.{0,80})$`)

// Normalizer applies Build with a configured minimum content length.
type Normalizer struct {
	MinLength int
}

// Build implements the pipeline's normalization stage.
func (n Normalizer) Build(candidate *models.ExtractionCandidate, fr *models.FetchResult) (*models.Article, error) {
	return Build(candidate, fr, n.MinLength)
}

// Build converts a winning candidate into an article with canonical URL,
// source domain and cleaned content. ScrapedAt and Language are filled in
// by later stages.
func Build(candidate *models.ExtractionCandidate, fr *models.FetchResult, minLength int) (*models.Article, error) {
	content := CleanText(candidate.Text)
	if len(content) < minLength {
		return nil, ErrEmptyContent
	}

	canonical, err := CanonicalURL(fr.ResolvedURL)
	if err != nil {
		return nil, err
	}

	title := strings.Join(strings.Fields(candidate.Title), " ")
	if title == "" {
		title = Domain(canonical)
	}

	article := &models.Article{
		Title:           title,
		Content:         content,
		URL:             canonical,
		SourceDomain:    Domain(canonical),
		PublicationDate: candidate.PublishedAt,
		ImageURLs:       AbsoluteURLs(candidate.ImageURLs, canonical),
		Keywords:        []string{},
	}

	if candidate.LogoURL != "" {
		if logo := absoluteURL(candidate.LogoURL, canonical); logo != "" {
			article.LogoURL = logo
		}
	}

	return article, nil
}

// CleanText strips boilerplate residue lines and collapses whitespace,
// keeping paragraph breaks.
func CleanText(text string) string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.Join(strings.Fields(line), " ")
			if line == "" || boilerplatePattern.MatchString(line) {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		paragraph := strings.Join(lines, " ")
		// Drop consecutive duplicate paragraphs left behind by templates.
		if len(paragraphs) > 0 && paragraphs[len(paragraphs)-1] == paragraph {
			continue
		}
		paragraphs = append(paragraphs, paragraph)
	}
	return strings.Join(paragraphs, "\n\n")
}

// CanonicalURL lowercases scheme and host, strips tracking parameters and
// the fragment, and re-encodes the query in sorted order. The result is the
// dedup identity key.
func CanonicalURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", errors.New("not an absolute http(s) url: " + raw)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	for _, param := range trackingParams {
		query.Del(param)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// Domain extracts the source domain from a URL, without the www. prefix.
func Domain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// AbsoluteURLs resolves relative URLs against base, canonicalizes them and
// deduplicates preserving order.
func AbsoluteURLs(raws []string, base string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(raws))
	for _, raw := range raws {
		abs := absoluteURL(raw, base)
		if abs == "" {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		result = append(result, abs)
	}
	return result
}

func absoluteURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	if ref.Host == "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return ""
		}
		ref = baseURL.ResolveReference(ref)
	}

	canonical, err := CanonicalURL(ref.String())
	if err != nil {
		return ""
	}
	return canonical
}
