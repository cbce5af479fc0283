package ports

import (
	"context"

	"MoversScanner/internal/domain"
)

// ListingRequest carries everything the candidate source needs for one
// discovery pass.
type ListingRequest struct {
	URLs             []string
	MinChangePercent float64
	Direction        domain.Direction
}

// CandidateSource pulls ranked movers from the configured listing pages.
type CandidateSource interface {
	List(ctx context.Context, req ListingRequest) ([]domain.Candidate, error)
}

// StockResolver turns a candidate's display name into a canonical symbol
// and a detail-page URL via the stock-information site's search.
type StockResolver interface {
	Resolve(ctx context.Context, displayName string) (domain.ResolvedStock, error)
}

// FeedExtractor reads the detail page's feed section and keeps headlines
// inside the recency window.
type FeedExtractor interface {
	RecentFeed(ctx context.Context, detailURL string) (domain.StockFeed, error)
}

// Summarizer produces up to three publish-ready reasons for a move.
type Summarizer interface {
	Summarise(ctx context.Context, stockName string, headlines []string, direction domain.Direction) ([]string, error)
}

// Publisher posts records to the remote content endpoint. Publish never
// raises: failures are logged internally and reported as ok=false with an
// empty body. Preflight errors are fatal for the whole run.
type Publisher interface {
	Publish(ctx context.Context, rec domain.PublishRecord) (body string, ok bool)
	Preflight(ctx context.Context) error
}
