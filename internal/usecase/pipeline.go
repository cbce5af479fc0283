package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"MoversScanner/internal/domain"
	"MoversScanner/internal/ports"
)

// RunSpec parameterizes a single pipeline invocation: which listing set to
// discover from, how to tag the output, and the orchestration knobs.
type RunSpec struct {
	Mode         domain.Mode
	Direction    domain.Direction
	Listing      ports.ListingRequest
	Preflight    bool
	PublishDelay time.Duration
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.CandidateSource
	Resolver   ports.StockResolver
	Extractor  ports.FeedExtractor
	Summarizer ports.Summarizer
	Publisher  ports.Publisher
	Logger     *slog.Logger
}

// Pipeline drives discover → resolve → extract → summarise → publish with
// per-candidate failure isolation: one bad candidate never aborts the batch.
type Pipeline struct {
	source     ports.CandidateSource
	resolver   ports.StockResolver
	extractor  ports.FeedExtractor
	summarizer ports.Summarizer
	publisher  ports.Publisher
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		resolver:   deps.Resolver,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		publisher:  deps.Publisher,
		logger:     deps.Logger,
	}
}

// Run executes one batch. Preflight and discovery failures are fatal;
// everything after discovery is isolated per candidate. Candidates are
// processed strictly in discovery order with a fixed delay between them.
func (p *Pipeline) Run(ctx context.Context, run RunSpec) error {
	if run.Preflight {
		if err := p.publisher.Preflight(ctx); err != nil {
			return fmt.Errorf("publish preflight failed: %w", err)
		}
	}

	candidates, err := p.source.List(ctx, run.Listing)
	if err != nil {
		return fmt.Errorf("discover candidates: %w", err)
	}

	tag := run.Mode.Tag(run.Direction)
	p.info("discovered candidates",
		"count", len(candidates),
		"mode", run.Mode,
		"direction", run.Direction,
		"threshold", run.Listing.MinChangePercent)

	var published, skipped int
	for i, candidate := range candidates {
		p.info("processing candidate", "stock", candidate.DisplayName, "change", candidate.ChangePercent)

		ok, err := p.process(ctx, candidate, tag)
		switch {
		case err != nil:
			skipped++
			p.warn("candidate skipped", "stock", candidate.DisplayName, "error", err)
		case ok:
			published++
		}

		if run.PublishDelay > 0 && i < len(candidates)-1 {
			if err := wait(ctx, run.PublishDelay); err != nil {
				return err
			}
		}
	}

	p.info("run complete",
		"tag", tag,
		"processed", len(candidates),
		"published", published,
		"skipped", skipped)
	return nil
}

// process runs one candidate through the per-item stages. Publish failures
// are terminal for the candidate but already logged by the publisher and do
// not count as a skip.
func (p *Pipeline) process(ctx context.Context, candidate domain.Candidate, tag string) (bool, error) {
	resolved, err := p.resolver.Resolve(ctx, candidate.DisplayName)
	if err != nil {
		return false, fmt.Errorf("resolve: %w", err)
	}

	feed, err := p.extractor.RecentFeed(ctx, resolved.DetailURL)
	if err != nil {
		return false, fmt.Errorf("extract feed: %w", err)
	}

	reasons, err := p.summarizer.Summarise(ctx, candidate.DisplayName, feed.RecentHeadlines, candidate.Direction)
	if err != nil {
		return false, fmt.Errorf("summarise: %w", err)
	}

	symbol := feed.Symbol
	if symbol == "" {
		symbol = resolved.Symbol
	}

	p.info("candidate summarised",
		"stock", candidate.DisplayName,
		"symbol", symbol,
		"change", candidate.Direction.FormatChange(candidate.ChangePercent),
		"reasons", len(reasons))

	record := domain.NewPublishRecord(candidate, symbol, reasons, tag)
	_, ok := p.publisher.Publish(ctx, record)
	return ok, nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
