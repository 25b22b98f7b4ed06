package extract

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"newsscraper/pkg/models"
)

// FallbackStrategy strips every tag and keeps whatever sizable text
// remains. Last resort; a candidate from here carries the lowest
// structural confidence.
type FallbackStrategy struct{}

func (s *FallbackStrategy) Name() string { return "fallback" }

func (s *FallbackStrategy) Attempt(fr *models.FetchResult) (*models.ExtractionCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fr.HTML))
	if err != nil {
		return nil, err
	}

	title := ExtractTitle(doc)

	doc.Find("script, style, noscript, nav, header, footer").Remove()
	body, err := doc.Find("body").Html()
	if err != nil || body == "" {
		body = fr.HTML
	}

	text := bluemonday.StrictPolicy().Sanitize(body)
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, errors.New("no text after tag stripping")
	}

	candidate := &models.ExtractionCandidate{
		Title:   title,
		Text:    text,
		Quality: scoreCandidate(text, 0.3),
	}
	return candidate, nil
}
