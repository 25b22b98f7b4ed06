package extract

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsscraper/pkg/models"
)

// DensityStrategy picks the DOM block holding the most paragraph text.
// Works on templates the structured extractors misread.
type DensityStrategy struct{}

func (s *DensityStrategy) Name() string { return "density" }

func (s *DensityStrategy) Attempt(fr *models.FetchResult) (*models.ExtractionCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fr.HTML))
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	var best *goquery.Selection
	bestLen := 0

	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		total := 0
		sel.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
			total += len(strings.TrimSpace(p.Text()))
		})
		if total > bestLen {
			bestLen = total
			best = sel
		}
	})

	if best == nil || bestLen == 0 {
		return nil, errors.New("no paragraph-dense block found")
	}

	var paragraphs []string
	best.ChildrenFiltered("p, h2, h3").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	var images []string
	best.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && src != "" {
			images = append(images, src)
		}
	})

	candidate := &models.ExtractionCandidate{
		Title:     ExtractTitle(doc),
		Text:      strings.Join(paragraphs, "\n\n"),
		ImageURLs: images,
	}

	candidate.Quality = scoreCandidate(candidate.Text, 0.6)
	return candidate, nil
}
