package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/internal/htmltext"
)

var (
	jobIDPattern = regexp.MustCompile(`D\d+`)

	// hrefs pointing at a detail page carry one of these
	detailMarkers = []string{"D?id=", "Detail"}
)

const (
	paginationSelector = "ul.pagination, div.paging"
	nextMarker         = "次"
)

// Parser turns one search-results page into listing references
type Parser struct {
	base *url.URL
}

// NewParser builds a parser resolving relative hrefs against base
func NewParser(base *url.URL) (*Parser, error) {
	if base == nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("listing.Parser: absolute base url is required")
	}
	return &Parser{base: base}, nil
}

// Parse extracts the listing links and the continuation flag of one page.
// It has no side effects; the same markup always yields the same result.
func (p *Parser) Parse(markup []byte, page int) (domain.PageParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return domain.PageParseResult{}, fmt.Errorf("listing: parse page %d: %w", page, err)
	}

	result := domain.PageParseResult{
		PageNumber: page,
		Listings:   make([]domain.ListingReference, 0),
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !isDetailHref(href) {
			return
		}
		result.Listings = append(result.Listings, domain.ListingReference{
			URL:   p.resolve(href),
			Title: linkTitle(a),
			JobID: jobIDPattern.FindString(href),
		})
	})

	result.HasNext = hasNextPage(doc, page)

	return result, nil
}

func isDetailHref(href string) bool {
	for _, m := range detailMarkers {
		if strings.Contains(href, m) {
			return true
		}
	}
	return false
}

func linkTitle(a *goquery.Selection) string {
	for _, tag := range []string{"h3", "strong"} {
		if h := a.Find(tag).First(); h.Length() > 0 {
			return htmltext.SelectionText(h)
		}
	}
	return htmltext.SelectionText(a)
}

func (p *Parser) resolve(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return p.base.ResolveReference(ref).String()
}

func hasNextPage(doc *goquery.Document, page int) bool {
	region := doc.Find(paginationSelector).First()
	if region.Length() == 0 {
		return false
	}

	found := false
	region.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := htmltext.SelectionText(a)
		if strings.Contains(text, nextMarker) {
			found = true
			return false
		}
		if n, err := strconv.Atoi(htmltext.Normalize(text)); err == nil && n == page+1 {
			found = true
			return false
		}
		return true
	})

	return found
}
