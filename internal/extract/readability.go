package extract

import (
	"errors"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"newsscraper/pkg/models"
)

// ReadabilityStrategy applies the readability content heuristic. Second
// independent generic extractor; also yields favicon and lead image.
type ReadabilityStrategy struct{}

func (s *ReadabilityStrategy) Name() string { return "readability" }

func (s *ReadabilityStrategy) Attempt(fr *models.FetchResult) (*models.ExtractionCandidate, error) {
	pageURL, err := url.Parse(fr.ResolvedURL)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(fr.HTML), pageURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, errors.New("readability produced no content")
	}

	candidate := &models.ExtractionCandidate{
		Title:       article.Title,
		Text:        article.TextContent,
		PublishedAt: article.PublishedTime,
		LogoURL:     article.Favicon,
	}
	if article.Image != "" {
		candidate.ImageURLs = []string{article.Image}
	}

	candidate.Quality = scoreCandidate(candidate.Text, 0.8)
	return candidate, nil
}
