package domain

import (
	"fmt"
	"time"
)

// SymbolNotAvailable is used when a detail page does not expose a symbol.
const SymbolNotAvailable = "N/A"

// NoRecentFeeds is the single-element summary returned for stocks without
// any feed item inside the recency window.
const NoRecentFeeds = "No recent feeds found"

// Direction classifies a candidate as a market gainer or loser. It drives
// threshold selection, tag naming, change formatting, and the summarization
// framing.
type Direction string

const (
	Gainer Direction = "gainer"
	Loser  Direction = "loser"
)

// TagSuffix returns the direction's part of a publish tag. Observed tags
// pluralize losers only ("monthlygainer" vs "monthlylosers").
func (d Direction) TagSuffix() string {
	if d == Loser {
		return "losers"
	}
	return "gainer"
}

// FormatChange renders a change percentage for publishing. Gainers carry an
// explicit plus sign; losers keep the bare numeric string, sign included if
// the source row had one.
func (d Direction) FormatChange(pct float64) string {
	if d == Gainer {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Mode separates daily runs from monthly runs.
type Mode string

const (
	Daily   Mode = "daily"
	Monthly Mode = "monthly"
)

// Tag builds the publish classification label, e.g. "monthlygainer".
func (m Mode) Tag(d Direction) string {
	return string(m) + d.TagSuffix()
}

// Candidate is a stock picked from a ranked-movers listing whose change
// magnitude met the run's threshold.
type Candidate struct {
	DisplayName   string
	ChangePercent float64
	Direction     Direction
}

// ResolvedStock locates a candidate's detail page on the stock-information
// site. Symbol falls back to SymbolNotAvailable.
type ResolvedStock struct {
	Symbol    string
	DetailURL string
}

// FeedItem is a single dated headline from a stock's feed section.
type FeedItem struct {
	Date     time.Time
	Headline string
}

// StockFeed carries the display symbol and the headlines that survived the
// recency filter, in page order.
type StockFeed struct {
	Symbol          string
	RecentHeadlines []string
}

// PublishRecord is the JSON body posted to the content endpoint. Field
// names match the endpoint's expected schema exactly.
type PublishRecord struct {
	StockName     string `json:"stockName"`
	NSESymbol     string `json:"nseSymbol"`
	ChangePercent string `json:"changePercent"`
	Summary1      string `json:"summary1"`
	Summary2      string `json:"summary2"`
	Summary3      string `json:"summary3"`
	Tag           string `json:"tag"`
}

// NewPublishRecord assembles the outbound payload. The summarizer may
// return fewer than three reasons; missing slots become empty strings.
func NewPublishRecord(c Candidate, symbol string, reasons []string, tag string) PublishRecord {
	rec := PublishRecord{
		StockName:     c.DisplayName,
		NSESymbol:     symbol,
		ChangePercent: c.Direction.FormatChange(c.ChangePercent),
		Tag:           tag,
	}
	if len(reasons) > 0 {
		rec.Summary1 = reasons[0]
	}
	if len(reasons) > 1 {
		rec.Summary2 = reasons[1]
	}
	if len(reasons) > 2 {
		rec.Summary3 = reasons[2]
	}
	return rec
}
