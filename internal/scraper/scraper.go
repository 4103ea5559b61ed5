// Package scraper fetches product listings from the external catalog site.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/MuhammadShuhail-00/ecommerce-automation-backend/internal/domain"
)

// Config holds scraper settings. All driver state is scoped to one Fetch
// call; there is no package-level configuration.
type Config struct {
	BaseURL   string
	Pages     int
	Timeout   time.Duration
	UserAgent string
}

// Fetcher scrapes a bounded number of catalogue pages from the source site.
type Fetcher struct {
	cfg Config
}

// New creates a Fetcher with the given configuration.
func New(cfg Config) *Fetcher {
	return &Fetcher{cfg: cfg}
}

// FetchError signals that the source could not be scraped at all: the site
// was unreachable or every configured page failed to load.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch products: %s: %v", e.Reason, e.Err)
	}
	return "fetch products: " + e.Reason
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetch visits at most cfg.Pages catalogue pages and returns the extracted
// records. Individual malformed items and individual failed pages are
// skipped; Fetch returns a *FetchError only when no page loads at all.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.RawProduct, error) {
	var (
		products []domain.RawProduct
		skipped  int
	)

	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.cfg.Timeout)

	c.OnHTML("article.product_pod", func(e *colly.HTMLElement) {
		record, err := extractProduct(e.DOM, e.Request.AbsoluteURL)
		if err != nil {
			skipped++
			slog.Warn("skipping malformed product", "url", e.Request.URL.String(), "error", err)
			return
		}
		products = append(products, record)
	})

	pagesFailed := 0
	var lastErr error

	for page := 1; page <= f.cfg.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{Reason: "fetch cancelled", Err: err}
		}

		if err := c.Visit(f.pageURL(page)); err != nil {
			pagesFailed++
			lastErr = err
			slog.Warn("page load failed", "page", page, "error", err)
			continue
		}
	}

	if pagesFailed == f.cfg.Pages {
		return nil, &FetchError{Reason: "all pages failed to load", Err: lastErr}
	}

	slog.Info("scrape finished",
		"products", len(products),
		"skipped", skipped,
		"pages", f.cfg.Pages,
		"pages_failed", pagesFailed,
	)
	return products, nil
}

func (f *Fetcher) pageURL(page int) string {
	base := strings.TrimRight(f.cfg.BaseURL, "/")
	if page == 1 {
		return base + "/"
	}
	return fmt.Sprintf("%s/catalogue/page-%d.html", base, page)
}

// ratingWords maps the source's star-rating class words to integers.
var ratingWords = map[string]int{
	"Zero":  0,
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

// extractProduct pulls one record out of a product container. resolve maps
// relative image/detail URLs to absolute ones against the current page.
func extractProduct(s *goquery.Selection, resolve func(string) string) (domain.RawProduct, error) {
	link := s.Find("h3 a")
	name, ok := link.Attr("title")
	if !ok || strings.TrimSpace(name) == "" {
		return domain.RawProduct{}, fmt.Errorf("missing product title")
	}

	price := stripCurrency(s.Find(".price_color").Text())
	if price == "" {
		return domain.RawProduct{}, fmt.Errorf("missing price for %q", name)
	}

	href, ok := link.Attr("href")
	if !ok {
		return domain.RawProduct{}, fmt.Errorf("missing detail link for %q", name)
	}

	imageURL := ""
	if src, found := s.Find("img").Attr("src"); found {
		imageURL = resolve(src)
	}

	return domain.RawProduct{
		Name:      name,
		Price:     price,
		Rating:    parseRating(s.Find(".star-rating")),
		Stock:     parseStock(s.Find(".availability").Text()),
		ImageURL:  imageURL,
		SourceURL: resolve(href),
	}, nil
}

// parseRating maps the star-rating class ("star-rating Three") to 0-5.
// Unrecognized encodings map to 0, never an error.
func parseRating(s *goquery.Selection) int {
	class, ok := s.Attr("class")
	if !ok {
		return 0
	}
	words := strings.Fields(class)
	if len(words) < 2 {
		return 0
	}
	return ratingWords[words[len(words)-1]]
}

// parseStock maps availability text to a quantity. The source only ever
// reports a binary in-stock signal.
func parseStock(text string) int {
	if strings.Contains(text, "In stock") {
		return 1
	}
	return 0
}

// stripCurrency removes leading currency symbols and whitespace from a
// price string, leaving the bare decimal text.
func stripCurrency(text string) string {
	text = strings.TrimSpace(text)
	return strings.TrimLeft(text, "£$€ \u00a0")
}
