package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"MoversScanner/internal/app"
	"MoversScanner/internal/config"
	"MoversScanner/internal/domain"
	"MoversScanner/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath     string
		modeFlag    string
		dirFlag     string
		noPreflight bool
	)

	cmd := &cobra.Command{
		Use:   "moversscanner",
		Short: "Discover sharp market movers, summarise why, and publish",
		Long: `moversscanner scrapes ranked-movers listings for stocks that moved past a
change threshold, enriches each with its recent news feed, asks an LLM for
the top reasons behind the move, and posts the result to a WordPress
endpoint. One invocation is one batch; scheduling is external.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(cfgPath)
			logger := logging.New(cfg.Logging.Level)

			if err := cfg.Validate(); err != nil {
				logger.Error("configuration invalid", "error", err)
				return err
			}

			mode, direction, err := parseRun(modeFlag, dirFlag)
			if err != nil {
				return err
			}

			application := app.New(cfg, logger)
			if err := application.Run(cmd.Context(), mode, direction, noPreflight); err != nil {
				logger.Error("run failed", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (default: $MOVERS_SCANNER_CONFIG)")
	cmd.Flags().StringVar(&modeFlag, "mode", "monthly", "run mode: daily or monthly")
	cmd.Flags().StringVar(&dirFlag, "direction", "gainers", "movers direction: gainers or losers")
	cmd.Flags().BoolVar(&noPreflight, "no-preflight", false, "skip the publish endpoint preflight check")

	return cmd
}

func parseRun(mode, direction string) (domain.Mode, domain.Direction, error) {
	var m domain.Mode
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "daily":
		m = domain.Daily
	case "monthly":
		m = domain.Monthly
	default:
		return "", "", fmt.Errorf("unknown mode %q (want daily or monthly)", mode)
	}

	var d domain.Direction
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "gainer", "gainers":
		d = domain.Gainer
	case "loser", "losers":
		d = domain.Loser
	default:
		return "", "", fmt.Errorf("unknown direction %q (want gainers or losers)", direction)
	}

	return m, d, nil
}
