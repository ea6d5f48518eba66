package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-screener/internal/screener/scraper"
	"golang-stock-screener/pkg/logger"

	"github.com/spf13/cobra"
)

var tickersCmd = &cobra.Command{
	Use:   "tickers [markets...]",
	Short: "Downloads the constituent lists into the input directory",
	Long: `Scrapes each market's constituents source and overwrites its ticker file.
Without arguments every configured market that has a scraper is refreshed.
A market that fails is logged and the others still run.`,
	RunE: runTickers,
}

func runTickers(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	markets := args
	if len(markets) == 0 {
		for _, id := range a.cfg.MarketIDs() {
			if a.cfg.Markets[id].Scraper != "" && a.cfg.Markets[id].SourceURL != "" {
				markets = append(markets, id)
			}
		}
	}

	svc := scraper.NewService(a.cfg, a.log)
	for _, m := range markets {
		if _, _, err := svc.Refresh(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.log.Error("Failed to refresh ticker list", logger.StringField("market", m), logger.ErrorField(err))
		}
	}
	return nil
}
