package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runMarkets []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Screens the configured markets and writes the reports",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringSliceVarP(&runMarkets, "market", "m", nil, "Markets to process (default: run.markets from the config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	markets := runMarkets
	if len(markets) == 0 {
		markets = a.cfg.Run.Markets
	}
	for _, m := range markets {
		if _, ok := a.cfg.Markets[m]; !ok {
			return fmt.Errorf("market %q is not configured (known: %v)", m, a.cfg.MarketIDs())
		}
	}

	_, err = a.runOnce(ctx, markets)
	return err
}

// runOnce runs the pipeline under a fresh run id and pushes the run metrics
// when a Pushgateway is configured.
func (a *app) runOnce(ctx context.Context, markets []string) ([]entity.MarketRunSummary, error) {
	ctx = logger.WithRunID(ctx, uuid.NewString())

	summaries, err := a.pipeline.Run(ctx, markets)
	if err != nil {
		a.log.ErrorContext(ctx, "Screener run failed", logger.ErrorField(err))
	}
	for _, s := range summaries {
		a.log.InfoContext(ctx, "Market summary",
			logger.StringField("market", s.Market),
			logger.Field("source_missing", s.SourceMissing),
			logger.IntField("tickers", s.Tickers),
			logger.IntField("records", s.Records),
			logger.IntField("skipped", s.Skipped),
			logger.IntField("fetch_errors", s.FetchErrors),
			logger.Field("files", s.OutputFiles),
		)
	}

	if a.cfg.Metrics.Enabled {
		if pushErr := a.recorder.Push(ctx, a.cfg.Metrics.PushURL, a.cfg.Metrics.Job); pushErr != nil {
			a.log.WarnContext(ctx, "Failed to push run metrics", logger.ErrorField(pushErr))
		}
	}
	return summaries, err
}
