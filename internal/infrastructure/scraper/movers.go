package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"MoversScanner/internal/browser"
	"MoversScanner/internal/domain"
	"MoversScanner/internal/ports"
)

const moversTableSelector = "table.dataTable tbody tr"

// changeStrip removes the sign decoration and percent symbol from a change
// cell. A leading minus is deliberately not in the set, so loser rows keep
// their sign.
var changeStrip = strings.NewReplacer("+", "", "%", "", " ", "")

// MoversScraper reads ranked-movers listing pages through the shared
// browser session and turns qualifying rows into candidates.
type MoversScraper struct {
	session *browser.Session
	logger  *slog.Logger
}

var _ ports.CandidateSource = (*MoversScraper)(nil)

// NewMoversScraper wires the shared session.
func NewMoversScraper(session *browser.Session, log *slog.Logger) *MoversScraper {
	return &MoversScraper{session: session, logger: log}
}

// List visits each listing page and aggregates rows whose change magnitude
// meets the threshold, preserving listing order. A page that fails to load
// or render its table is skipped with a warning; List errors only when
// every page failed.
func (m *MoversScraper) List(ctx context.Context, req ports.ListingRequest) ([]domain.Candidate, error) {
	var (
		candidates []domain.Candidate
		failed     int
		lastErr    error
	)

	for _, pageURL := range req.URLs {
		m.debug("visit listing", "url", pageURL)

		html, err := m.session.CaptureHTML(pageURL, moversTableSelector)
		if err != nil {
			m.warn("listing page skipped", "url", pageURL, "error", err)
			failed++
			lastErr = err
			continue
		}

		rows, err := parseMoverRows(html, req.Direction)
		if err != nil {
			m.warn("listing page skipped", "url", pageURL, "error", err)
			failed++
			lastErr = err
			continue
		}

		kept := qualifying(rows, req.MinChangePercent)
		candidates = append(candidates, kept...)
		m.debug("listing parsed", "url", pageURL, "rows", len(rows), "kept", len(kept))
	}

	if failed > 0 && failed == len(req.URLs) {
		return nil, fmt.Errorf("all %d listing pages failed: %w", failed, lastErr)
	}

	return candidates, nil
}

// qualifying keeps rows whose change magnitude meets the threshold;
// exactly-at-threshold is included. Listing order is preserved.
func qualifying(rows []domain.Candidate, minChangePercent float64) []domain.Candidate {
	var kept []domain.Candidate
	for _, c := range rows {
		if math.Abs(c.ChangePercent) >= minChangePercent {
			kept = append(kept, c)
		}
	}
	return kept
}

// parseMoverRows extracts every data row from a listing table. Threshold
// filtering happens in List; rows with unparsable change cells come back
// with ChangePercent 0 and fall out there.
func parseMoverRows(html string, direction domain.Direction) ([]domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing document: %w", err)
	}

	var rows []domain.Candidate
	doc.Find("table.dataTable tr").Each(func(i int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 5 {
			// Header or decoration row.
			return
		}

		name := strings.TrimSpace(tds.Eq(0).Text())
		if name == "" {
			return
		}

		rows = append(rows, domain.Candidate{
			DisplayName:   name,
			ChangePercent: parseChangePercent(tds.Eq(4).Text()),
			Direction:     direction,
		})
	})

	return rows, nil
}

// parseChangePercent strips "+", "%", and spaces from a change cell and
// parses the remainder. Unparsable cells yield 0.
func parseChangePercent(cell string) float64 {
	cleaned := changeStrip.Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func (m *MoversScraper) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *MoversScraper) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
