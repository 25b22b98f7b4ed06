package page

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsscraper/pkg/models"
)

func fetchResult(resolvedURL, html string) *models.FetchResult {
	return &models.FetchResult{
		URL:         resolvedURL,
		ResolvedURL: resolvedURL,
		HTML:        html,
		Method:      models.FetchStatic,
	}
}

func listingHTML(links int) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for i := 0; i < links; i++ {
		fmt.Fprintf(&b, `<li><a href="/news/story-number-%d-breaks">Story %d</a></li>`, i, i)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func TestClassifyListing(t *testing.T) {
	fr := fetchResult("https://news.example.com/", listingHTML(12))
	assert.Equal(t, KindListing, Classify(fr))
}

func TestClassifyArticle(t *testing.T) {
	html := "<html><body><article><p>" +
		strings.Repeat("A sentence of real article prose. ", 40) +
		"</p></article></body></html>"
	fr := fetchResult("https://news.example.com/2024/05/01/big-story", html)
	assert.Equal(t, KindArticle, Classify(fr))
}

func TestClassifyArticleWithRelatedRail(t *testing.T) {
	// Many article links, but also a substantial body: the related-stories
	// rail must not flip the page to a listing.
	html := "<html><body><article><p>" +
		strings.Repeat("Plenty of body text in the main story. ", 30) +
		"</p></article>" + listingHTML(8) + "</body></html>"
	fr := fetchResult("https://news.example.com/2024/05/01/big-story", html)
	assert.Equal(t, KindArticle, Classify(fr))
}

func TestClassifyAmbiguousDefaultsToArticle(t *testing.T) {
	fr := fetchResult("https://news.example.com/about", "<html><body><p>short</p></body></html>")
	assert.Equal(t, KindArticle, Classify(fr))
}

func TestDiscoverCapsFanOut(t *testing.T) {
	fr := fetchResult("https://news.example.com/", listingHTML(30))
	links := Discover(fr, 10)
	require.Len(t, links, 10)

	// Document order is preserved.
	assert.Equal(t, "https://news.example.com/news/story-number-0-breaks", links[0])
	assert.Equal(t, "https://news.example.com/news/story-number-9-breaks", links[9])
}

func TestDiscoverResolvesRelativeLinks(t *testing.T) {
	html := `<html><body>
		<a href="/news/first-local-story">one</a>
		<a href="story-two-relative-path">two</a>
		<a href="https://news.example.com/news/absolute-same-domain">three</a>
	</body></html>`
	fr := fetchResult("https://news.example.com/section/", html)
	links := Discover(fr, 10)

	assert.Contains(t, links, "https://news.example.com/news/first-local-story")
	assert.Contains(t, links, "https://news.example.com/section/story-two-relative-path")
	assert.Contains(t, links, "https://news.example.com/news/absolute-same-domain")
}

func TestDiscoverPrefersSameDomainAndFiltersCrossDomain(t *testing.T) {
	html := `<html><body>
		<a href="https://other.example.org/">bare cross-domain homepage</a>
		<a href="https://other.example.org/2024/06/02/distant-story">dated cross-domain</a>
		<a href="/news/local-story-here-now">local</a>
	</body></html>`
	fr := fetchResult("https://news.example.com/", html)
	links := Discover(fr, 10)

	require.Len(t, links, 2)
	assert.Equal(t, "https://news.example.com/news/local-story-here-now", links[0])
	assert.Equal(t, "https://other.example.org/2024/06/02/distant-story", links[1])
}

func TestDiscoverDeduplicatesAndSkipsSelf(t *testing.T) {
	html := `<html><body>
		<a href="/news/same-story-twice-over">a</a>
		<a href="/news/same-story-twice-over">b</a>
		<a href="/news/same-story-twice-over#comments">c</a>
		<a href="https://news.example.com/section/front-page-listing">self</a>
	</body></html>`
	fr := fetchResult("https://news.example.com/section/front-page-listing", html)
	links := Discover(fr, 10)

	require.Len(t, links, 1)
	assert.Equal(t, "https://news.example.com/news/same-story-twice-over", links[0])
}

func TestDiscoverIgnoresNonHTTPSchemes(t *testing.T) {
	html := `<html><body>
		<a href="mailto:tips@example.com">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="#top">anchor</a>
		<a href="ftp://example.com/news/some-old-archive">ftp</a>
	</body></html>`
	fr := fetchResult("https://news.example.com/", html)
	assert.Empty(t, Discover(fr, 10))
}

func TestArticleLikePath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/2024/05/01/election-results", true},
		{"/2024/05/roundup", true},
		{"/news/anything", true},
		{"/story/anything", true},
		{"/some-long-hyphenated-slug", true},
		{"/", false},
		{"", false},
		{"/about", false},
		{"/contact-us", false},
	}
	for _, tc := range cases {
		u := &url.URL{Scheme: "https", Host: "example.com", Path: tc.path}
		assert.Equal(t, tc.want, ArticleLikePath(u), "path %q", tc.path)
	}
}
