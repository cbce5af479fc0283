package app

import (
	"context"
	"fmt"
	"log/slog"

	"MoversScanner/internal/browser"
	"MoversScanner/internal/config"
	"MoversScanner/internal/domain"
	"MoversScanner/internal/infrastructure/llm"
	"MoversScanner/internal/infrastructure/scraper"
	"MoversScanner/internal/infrastructure/wordpress"
	"MoversScanner/internal/logging"
	"MoversScanner/internal/ports"
	"MoversScanner/internal/usecase"
)

// Application wires configuration to the pipeline and owns the browser
// session lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run performs a single pipeline execution for the given mode and
// direction. The browser session is opened here and released exactly once
// on every exit path.
func (a *Application) Run(ctx context.Context, mode domain.Mode, direction domain.Direction, skipPreflight bool) error {
	listing, err := a.cfg.FindListing(mode, direction)
	if err != nil {
		return err
	}

	session, err := browser.NewSession(ctx, a.cfg.Browser)
	if err != nil {
		return fmt.Errorf("launch browser session: %w", err)
	}
	defer session.Close()

	stockEdge := scraper.NewStockEdgeScraper(session, a.cfg.Pipeline.RecencyWindowDays, a.logger.With("component", "stockedge"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     scraper.NewMoversScraper(session, a.logger.With("component", "source")),
		Resolver:   stockEdge,
		Extractor:  stockEdge,
		Summarizer: llm.NewGroqClient(a.cfg.Groq),
		Publisher:  wordpress.NewPublisher(a.cfg.WordPress, a.logger.With("component", "wordpress")),
		Logger:     a.logger.With("component", "pipeline"),
	})

	return pipeline.Run(ctx, usecase.RunSpec{
		Mode:      mode,
		Direction: direction,
		Listing: ports.ListingRequest{
			URLs:             listing.URLs,
			MinChangePercent: listing.MinChangePercent,
			Direction:        direction,
		},
		Preflight:    !skipPreflight && !a.cfg.WordPress.SkipPreflight,
		PublishDelay: a.cfg.Pipeline.PublishDelay(),
	})
}
