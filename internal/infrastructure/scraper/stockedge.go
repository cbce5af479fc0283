package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"MoversScanner/internal/browser"
	"MoversScanner/internal/domain"
	"MoversScanner/internal/ports"
)

const (
	defaultSearchURL   = "https://search.stockedge.com/"
	feedSectionQuery   = "?section=feeds"
	stockPathSegment   = "/share/"
	searchInput        = "#searchText"
	resultRowSelector  = ".response-table tr"
	feedItemSelector   = "ion-item"
	feedDateSelector   = "ion-col:nth-child(2) ion-text"
	symbolSelector     = "ion-text.small-font.low-margin-left"
	feedDateLayout     = "02-Jan-2006"
	defaultRecencyDays = 90
)

// ErrNoStockFound reports that the search returned no result pointing at a
// stock detail page (as opposed to a sector or index page).
var ErrNoStockFound = errors.New("no matching stock result")

// StockEdgeScraper resolves display names to stock detail pages and reads
// their feed sections. Each call opens its own tab and closes it on every
// exit path.
type StockEdgeScraper struct {
	session     *browser.Session
	searchURL   string
	recencyDays int
	now         func() time.Time
	logger      *slog.Logger
}

var _ ports.StockResolver = (*StockEdgeScraper)(nil)
var _ ports.FeedExtractor = (*StockEdgeScraper)(nil)

// NewStockEdgeScraper wires the shared session; recencyDays defaults to 90.
func NewStockEdgeScraper(session *browser.Session, recencyDays int, log *slog.Logger) *StockEdgeScraper {
	if recencyDays <= 0 {
		recencyDays = defaultRecencyDays
	}
	return &StockEdgeScraper{
		session:     session,
		searchURL:   defaultSearchURL,
		recencyDays: recencyDays,
		now:         time.Now,
		logger:      log,
	}
}

// Resolve types the display name into the search box, submits it, and scans
// the results for the first entry linking to a stock detail page. Entries
// targeting sector or index pages are not valid results.
func (s *StockEdgeScraper) Resolve(ctx context.Context, displayName string) (domain.ResolvedStock, error) {
	cfg := s.session.Config()
	tabCtx, cancel := s.session.NewTab(cfg.PageTimeout() + 2*cfg.SelectorTimeout())
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(s.searchURL),
		chromedp.WaitVisible(searchInput, chromedp.ByQuery),
		chromedp.SendKeys(searchInput, displayName+kb.Enter, chromedp.ByQuery),
		chromedp.WaitVisible(resultRowSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return domain.ResolvedStock{}, fmt.Errorf("search results for %q never rendered: %w", displayName, ErrNoStockFound)
	}

	detailURL, err := findStockDetailURL(html)
	if err != nil {
		return domain.ResolvedStock{}, fmt.Errorf("resolve %q: %w", displayName, err)
	}

	s.debug("resolved stock", "name", displayName, "url", detailURL)

	return domain.ResolvedStock{
		Symbol:    domain.SymbolNotAvailable,
		DetailURL: detailURL + feedSectionQuery,
	}, nil
}

// RecentFeed loads the feed section of a resolved detail page and returns
// the display symbol plus the headlines inside the recency window.
func (s *StockEdgeScraper) RecentFeed(ctx context.Context, detailURL string) (domain.StockFeed, error) {
	cfg := s.session.Config()
	tabCtx, cancel := s.session.NewTab(cfg.PageTimeout() + cfg.SelectorTimeout())
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(detailURL),
		chromedp.WaitVisible(feedItemSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return domain.StockFeed{}, fmt.Errorf("scrape stockedge feed page %s: %w", detailURL, err)
	}

	cutoff := s.now().AddDate(0, 0, -s.recencyDays)
	feed, err := parseFeedPage(html, cutoff)
	if err != nil {
		return domain.StockFeed{}, fmt.Errorf("scrape stockedge feed page %s: %w", detailURL, err)
	}

	s.debug("feed extracted", "url", detailURL, "symbol", feed.Symbol, "recent", len(feed.RecentHeadlines))
	return feed, nil
}

// findStockDetailURL returns the first result-row link whose target
// contains the stock detail path segment.
func findStockDetailURL(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse search results: %w", err)
	}

	var detailURL string
	doc.Find(resultRowSelector).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		badge := tr.Find("span.entity_name").First()
		if badge.Length() == 0 {
			return true
		}

		href, ok := badge.Closest("td").Find("a").First().Attr("href")
		if !ok || !strings.Contains(href, stockPathSegment) {
			return true
		}

		detailURL = href
		return false
	})

	if detailURL == "" {
		return "", ErrNoStockFound
	}
	return detailURL, nil
}

// parseFeedPage reads the symbol and feed items from a feed-section page.
// Items dated strictly after cutoff are kept in page order; items with
// unparsable dates are dropped, never fatal.
func parseFeedPage(html string, cutoff time.Time) (domain.StockFeed, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.StockFeed{}, fmt.Errorf("parse feed document: %w", err)
	}

	symbol := strings.TrimSpace(doc.Find(symbolSelector).First().Text())
	if symbol == "" {
		symbol = domain.SymbolNotAvailable
	}

	feed := domain.StockFeed{Symbol: symbol}
	doc.Find(feedItemSelector).Each(func(_ int, item *goquery.Selection) {
		dateText := strings.TrimSpace(item.Find(feedDateSelector).First().Text())
		headline := strings.TrimSpace(item.Find("p").First().Text())
		if headline == "" {
			return
		}

		date, err := time.Parse(feedDateLayout, dateText)
		if err != nil {
			return
		}
		if date.After(cutoff) {
			feed.RecentHeadlines = append(feed.RecentHeadlines, headline)
		}
	})

	return feed, nil
}

func (s *StockEdgeScraper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
