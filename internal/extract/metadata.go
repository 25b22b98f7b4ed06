package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"newsscraper/pkg/models"
)

// MetadataStrategy reads structured article data: JSON-LD NewsArticle
// blocks and Open Graph meta tags. Highest precision, lowest recall.
type MetadataStrategy struct{}

func (s *MetadataStrategy) Name() string { return "metadata" }

type jsonLD struct {
	Type          any      `json:"@type"`
	Headline      string   `json:"headline"`
	ArticleBody   string   `json:"articleBody"`
	DatePublished string   `json:"datePublished"`
	Image         any      `json:"image"`
	Graph         []jsonLD `json:"@graph"`
}

func (s *MetadataStrategy) Attempt(fr *models.FetchResult) (*models.ExtractionCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fr.HTML))
	if err != nil {
		return nil, err
	}

	candidate := &models.ExtractionCandidate{}

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var block jsonLD
		if err := json.Unmarshal([]byte(sel.Text()), &block); err != nil {
			// Some sites wrap several objects in an array.
			var blocks []jsonLD
			if err := json.Unmarshal([]byte(sel.Text()), &blocks); err != nil {
				return true
			}
			block.Graph = blocks
		}

		for _, entry := range flattenLD(block) {
			if !isArticleType(entry.Type) || entry.ArticleBody == "" {
				continue
			}
			candidate.Title = entry.Headline
			candidate.Text = entry.ArticleBody
			candidate.PublishedAt = parsePublished(entry.DatePublished)
			candidate.ImageURLs = ldImages(entry.Image)
			return false
		}
		return true
	})

	if candidate.Text == "" {
		return nil, errors.New("no structured article body")
	}

	if candidate.Title == "" {
		candidate.Title = ExtractTitle(doc)
	}
	if candidate.PublishedAt == nil {
		if content, ok := doc.Find("meta[property='article:published_time']").First().Attr("content"); ok {
			candidate.PublishedAt = parsePublished(content)
		}
	}
	if len(candidate.ImageURLs) == 0 {
		if img, ok := doc.Find("meta[property='og:image']").First().Attr("content"); ok && img != "" {
			candidate.ImageURLs = []string{img}
		}
	}
	if logo, ok := doc.Find("link[rel='icon'], link[rel='shortcut icon'], link[rel='apple-touch-icon']").First().Attr("href"); ok {
		candidate.LogoURL = logo
	}

	candidate.Quality = scoreCandidate(candidate.Text, 1.0)
	return candidate, nil
}

func flattenLD(block jsonLD) []jsonLD {
	if len(block.Graph) == 0 {
		return []jsonLD{block}
	}
	entries := []jsonLD{block}
	for _, nested := range block.Graph {
		entries = append(entries, flattenLD(nested)...)
	}
	return entries
}

func isArticleType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "NewsArticle" || v == "Article" || v == "BlogPosting" || v == "ReportageNewsArticle"
	case []any:
		for _, item := range v {
			if isArticleType(item) {
				return true
			}
		}
	}
	return false
}

func ldImages(image any) []string {
	switch v := image.(type) {
	case string:
		return []string{v}
	case []any:
		var urls []string
		for _, item := range v {
			urls = append(urls, ldImages(item)...)
		}
		return urls
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return []string{u}
		}
	}
	return nil
}

func parsePublished(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// ExtractTitle picks the best title from a parsed page. Priority order:
// og:title, title tag, first h1.
func ExtractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
		if trimmed := strings.TrimSpace(og); trimmed != "" {
			return trimmed
		}
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
