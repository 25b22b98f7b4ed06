package fetch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsscraper/pkg/models"
)

// contentContainers are the elements article bodies usually live in.
const contentContainers = "article, main, [role='article'], .post-content, .article-content, .entry-content, #content"

// Renderer is the escalation path for JS-rendered pages.
type Renderer interface {
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)
}

// Fetcher tries the static path first and escalates to a headless browser
// when the static body looks script-rendered. A nil renderer disables
// escalation.
type Fetcher struct {
	static   *StaticFetcher
	renderer Renderer
	minBody  int
	logger   *slog.Logger
}

// New builds the combined fetch layer.
func New(static *StaticFetcher, renderer Renderer, minBody int, logger *slog.Logger) *Fetcher {
	return &Fetcher{static: static, renderer: renderer, minBody: minBody, logger: logger}
}

// Fetch retrieves a page. Static failures are final; a thin static body
// triggers one rendered attempt, falling back to the static result if the
// render fails.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	result, err := f.static.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if f.renderer == nil || !NeedsRender(result.HTML, f.minBody) {
		return result, nil
	}

	f.logger.Debug("escalating to browser fetch", "url", url, "static_bytes", len(result.HTML))
	rendered, rerr := f.renderer.Fetch(ctx, url)
	if rerr != nil {
		f.logger.Warn("browser fetch failed, keeping static result", "url", url, "error", rerr)
		return result, nil
	}

	return rendered, nil
}

// NeedsRender reports whether a static body looks like it requires script
// execution: visible text below the threshold, or no recognizable content
// container holding a meaningfully sized body.
func NeedsRender(html string, minBody int) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return true
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	textLen := len(strings.Join(strings.Fields(body.Text()), " "))

	if textLen < minBody {
		return true
	}
	if doc.Find(contentContainers).Length() == 0 && textLen < minBody*4 {
		return true
	}
	return false
}
