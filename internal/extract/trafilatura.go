package extract

import (
	"errors"
	"net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"

	"newsscraper/pkg/models"
)

// TrafilaturaStrategy runs the general-purpose trafilatura content
// extractor. Good recall on news templates, extracts metadata alongside
// the body.
type TrafilaturaStrategy struct{}

func (s *TrafilaturaStrategy) Name() string { return "trafilatura" }

func (s *TrafilaturaStrategy) Attempt(fr *models.FetchResult) (*models.ExtractionCandidate, error) {
	pageURL, err := url.Parse(fr.ResolvedURL)
	if err != nil {
		return nil, err
	}

	result, err := trafilatura.Extract(strings.NewReader(fr.HTML), trafilatura.Options{
		OriginalURL:   pageURL,
		IncludeImages: true,
	})
	if err != nil {
		return nil, err
	}
	if result == nil || strings.TrimSpace(result.ContentText) == "" {
		return nil, errors.New("trafilatura produced no content")
	}

	candidate := &models.ExtractionCandidate{
		Title: result.Metadata.Title,
		Text:  result.ContentText,
	}
	if !result.Metadata.Date.IsZero() {
		published := result.Metadata.Date
		candidate.PublishedAt = &published
	}
	if result.Metadata.Image != "" {
		candidate.ImageURLs = []string{result.Metadata.Image}
	}

	candidate.Quality = scoreCandidate(candidate.Text, 0.9)
	return candidate, nil
}
