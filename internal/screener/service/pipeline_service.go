package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/metrics"
	"golang-stock-screener/pkg/telegram"
	"golang-stock-screener/pkg/utils"

	"github.com/google/uuid"
)

// MetricsRecorder receives run metrics. *metrics.Recorder implements it.
type MetricsRecorder interface {
	RecordTicker(market, outcome string)
	RecordFallback(field, reason string)
	RecordError(kind string)
	RecordScreenMatches(market, screen string, n int)
	RecordRunCompleted(market string, at time.Time)
	RecordLatency(op string, seconds float64)
}

// PipelineService runs the screener for whole markets.
type PipelineService interface {
	// Run prepares the output directory and processes the markets in order.
	// A market whose ticker list is unavailable is logged and skipped; any
	// other error aborts the run.
	Run(ctx context.Context, markets []string) ([]entity.MarketRunSummary, error)
	// RunMarket fetches, computes, ranks, screens and writes one market.
	RunMarket(ctx context.Context, market string) (*entity.MarketRunSummary, error)
	// ScreenReport re-screens a previously written full report.
	ScreenReport(ctx context.Context, market, reportPath string) (*entity.MarketRunSummary, error)
}

type pipelineService struct {
	cfg           *config.Config
	log           *logger.Logger
	tickerRepo    repository.TickerListRepository
	fundamentals  repository.FundamentalsRepository
	portfolioRepo repository.PortfolioRepository
	calculator    MetricsCalculator
	pacer         Pacer
	screener      ScreenerService
	recorder      MetricsRecorder
	notifier      telegram.Notifier
	now           func() time.Time
}

// NewPipelineService creates a new PipelineService. notifier may be nil.
func NewPipelineService(
	cfg *config.Config,
	log *logger.Logger,
	tickerRepo repository.TickerListRepository,
	fundamentals repository.FundamentalsRepository,
	portfolioRepo repository.PortfolioRepository,
	calculator MetricsCalculator,
	pacer Pacer,
	screener ScreenerService,
	recorder MetricsRecorder,
	notifier telegram.Notifier,
) PipelineService {
	return &pipelineService{
		cfg:           cfg,
		log:           log,
		tickerRepo:    tickerRepo,
		fundamentals:  fundamentals,
		portfolioRepo: portfolioRepo,
		calculator:    calculator,
		pacer:         pacer,
		screener:      screener,
		recorder:      recorder,
		notifier:      notifier,
		now:           func() time.Time { return utils.TimeNowIn(cfg.Output.Timezone) },
	}
}

func (s *pipelineService) Run(ctx context.Context, markets []string) ([]entity.MarketRunSummary, error) {
	if logger.RunIDFromContext(ctx) == "" {
		ctx = logger.WithRunID(ctx, uuid.NewString())
	}
	s.log.InfoContext(ctx, "Starting screener run", logger.Field("markets", markets))

	if err := s.prepareOutput(ctx); err != nil {
		return nil, err
	}

	summaries := make([]entity.MarketRunSummary, 0, len(markets))
	for _, market := range markets {
		summary, err := s.RunMarket(ctx, market)
		if errors.Is(err, entity.ErrSourceUnavailable) {
			s.log.WarnContext(ctx, "Ticker source unavailable, skipping market",
				logger.StringField("market", market), logger.ErrorField(err))
			s.recorder.RecordError("source_unavailable")
			summaries = append(summaries, entity.MarketRunSummary{Market: market, SourceMissing: true})
			continue
		}
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, *summary)
	}

	s.log.InfoContext(ctx, "Screener run finished", logger.IntField("markets", len(summaries)))
	return summaries, nil
}

// prepareOutput creates the output directory and, when configured, removes the
// files a previous run left in it. Subdirectories are left alone.
func (s *pipelineService) prepareOutput(ctx context.Context) error {
	dir := s.cfg.Output.Directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	if !s.cfg.Output.Clean {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list output directory %s: %w", dir, err)
	}
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clean output directory %s: %w", dir, err)
		}
		removed++
	}
	s.log.DebugContext(ctx, "Output directory cleaned", logger.StringField("dir", dir), logger.IntField("removed", removed))
	return nil
}

func (s *pipelineService) RunMarket(ctx context.Context, market string) (*entity.MarketRunSummary, error) {
	log := s.log.With(logger.StringField("market", market))
	started := time.Now()

	tickers, err := s.tickerRepo.GetTickers(ctx, market)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "Processing market", logger.IntField("tickers", len(tickers)))

	summary := &entity.MarketRunSummary{Market: market, Tickers: len(tickers)}
	records := make([]entity.StockMetrics, 0, len(tickers))
	for i, ticker := range tickers {
		rec, err := s.processTicker(ctx, log, market, ticker)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, entity.ErrEmptyFundamentals):
			summary.Skipped++
		case err != nil:
			summary.FetchErrors++
		default:
			records = append(records, *rec)
		}
		log.DebugContext(ctx, "Ticker processed",
			logger.StringField("ticker", ticker),
			logger.IntField("position", i+1),
			logger.IntField("total", len(tickers)),
		)

		delay, err := s.pacer.Wait(ctx)
		if err != nil {
			return nil, err
		}
		log.DebugContext(ctx, "Paced", logger.DurationField("delay", delay))
	}
	summary.Records = len(records)

	portfolio := AssemblePortfolio(market, records)
	if err := s.writeReports(ctx, portfolio, summary, true); err != nil {
		return nil, err
	}

	s.recorder.RecordLatency("market_run", time.Since(started).Seconds())
	s.recorder.RecordRunCompleted(market, time.Now())
	log.InfoContext(ctx, "Market finished",
		logger.IntField("records", summary.Records),
		logger.IntField("skipped", summary.Skipped),
		logger.IntField("fetch_errors", summary.FetchErrors),
		logger.Float64Field("elapsed_seconds", time.Since(started).Seconds()),
	)
	s.notify(ctx, summary)
	return summary, nil
}

// processTicker fetches and computes one ticker. Errors are logged and
// counted here; the caller only classifies them.
func (s *pipelineService) processTicker(ctx context.Context, log *logger.Logger, market, ticker string) (*entity.StockMetrics, error) {
	fetchStarted := time.Now()
	snapshot, err := s.fundamentals.GetFundamentals(ctx, ticker)
	s.recorder.RecordLatency("fetch_fundamentals", time.Since(fetchStarted).Seconds())
	if err != nil {
		if ctx.Err() == nil {
			log.ErrorContext(ctx, "Failed to fetch fundamentals", logger.StringField("ticker", ticker), logger.ErrorField(err))
			s.recorder.RecordTicker(market, metrics.OutcomeFetchError)
		}
		return nil, err
	}

	rec, err := s.calculator.Compute(ticker, snapshot)
	if err != nil {
		log.InfoContext(ctx, "No statements for ticker, skipping", logger.StringField("ticker", ticker))
		s.recorder.RecordTicker(market, metrics.OutcomeEmpty)
		return nil, err
	}

	for _, f := range rec.Fallbacks {
		log.DebugContext(ctx, "Metric unavailable",
			logger.StringField("ticker", ticker),
			logger.StringField("field", f.Field),
			logger.ErrorField(f.Reason),
		)
		s.recorder.RecordFallback(f.Field, fallbackReason(f.Reason))
	}
	s.recorder.RecordTicker(market, metrics.OutcomeRecord)
	return rec, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, entity.ErrDivisionByZero):
		return entity.ErrDivisionByZero.Error()
	case errors.Is(err, entity.ErrFieldMissing):
		return entity.ErrFieldMissing.Error()
	default:
		return "other"
	}
}

func (s *pipelineService) ScreenReport(ctx context.Context, market, reportPath string) (*entity.MarketRunSummary, error) {
	records, err := s.portfolioRepo.Read(ctx, reportPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cfg.Output.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", s.cfg.Output.Directory, err)
	}

	summary := &entity.MarketRunSummary{Market: market, Tickers: len(records), Records: len(records)}
	if err := s.writeReports(ctx, AssemblePortfolio(market, records), summary, false); err != nil {
		return nil, err
	}
	s.notify(ctx, summary)
	return summary, nil
}

// writeReports screens the portfolio and writes the screen reports, plus the
// full table when includeAll is set. Any write error aborts.
func (s *pipelineService) writeReports(ctx context.Context, portfolio entity.Portfolio, summary *entity.MarketRunSummary, includeAll bool) error {
	date := utils.RunDate(s.now())

	if includeAll {
		path := s.outputPath(portfolio.Market, common.ScreenAll, date)
		if err := s.writeReport(ctx, path, portfolio.Records); err != nil {
			return err
		}
		summary.OutputFiles = append(summary.OutputFiles, path)
	}

	summary.Screens = s.screener.Screen(portfolio)
	for _, res := range summary.Screens {
		path := s.outputPath(portfolio.Market, res.Screen, date)
		if err := s.writeReport(ctx, path, res.Records); err != nil {
			return err
		}
		summary.OutputFiles = append(summary.OutputFiles, path)
		s.recorder.RecordScreenMatches(portfolio.Market, res.Screen, len(res.Records))
		s.log.InfoContext(ctx, "Screen written",
			logger.StringField("market", portfolio.Market),
			logger.StringField("screen", res.Screen),
			logger.IntField("matches", len(res.Records)),
			logger.StringField("path", path),
		)
	}
	return nil
}

// writeReport writes one report, creating any directory the file template
// introduced below the output directory.
func (s *pipelineService) writeReport(ctx context.Context, path string, records []entity.StockMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.recorder.RecordError("output")
		return fmt.Errorf("failed to create report directory for %s: %w", path, err)
	}
	if err := s.portfolioRepo.Write(ctx, path, records); err != nil {
		s.recorder.RecordError("output")
		return err
	}
	return nil
}

func (s *pipelineService) outputPath(market, screen, date string) string {
	name := utils.ReplacePlaceholders(s.cfg.Output.FileTemplate, map[string]string{
		"market": market,
		"screen": screen,
		"date":   date,
	})
	return filepath.Join(s.cfg.Output.Directory, name)
}

func (s *pipelineService) notify(ctx context.Context, summary *entity.MarketRunSummary) {
	if s.notifier == nil {
		return
	}
	for _, msg := range telegram.FormatScreenSummaryForTelegram(*summary, s.cfg.Telegram.TopN) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.log.ErrorContext(ctx, "Failed to send screen summary", logger.StringField("market", summary.Market), logger.ErrorField(err))
			s.recorder.RecordError("notify")
			return
		}
	}
}
