package main

import (
	"fmt"
	"log"
	"os"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/internal/screener/service"
	"golang-stock-screener/internal/screener/strategy"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/metrics"
	"golang-stock-screener/pkg/telegram"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stock-screener",
	Short: "Fundamental stock screener for ASX, HKEX, SGX and US listings",
	Long: `stock-screener reads each market's ticker list, fetches fundamentals per ticker,
computes quality and valuation ratios, ranks the market by return on capital
employed and writes one CSV report per screen.`,
	SilenceUsage: true,
}

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	recorder *metrics.Recorder
	pipeline service.PipelineService
	fetcher  repository.FundamentalsRepository
}

// newApp loads the configuration and wires the pipeline. The caller must call
// close when done.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	fetcher, err := repository.NewFundamentalsRepository(cfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fundamentals provider: %w", err)
	}

	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
	}

	recorder := metrics.New()
	pipeline := service.NewPipelineService(
		cfg,
		appLogger,
		repository.NewTickerListRepository(cfg, appLogger),
		fetcher,
		repository.NewPortfolioCSVRepository(appLogger),
		service.NewMetricsCalculator(),
		service.NewPacer(cfg.Pacing),
		service.NewScreenerService(strategy.NewScreenStrategies(cfg.Screens)),
		recorder,
		notifier,
	)

	appLogger.Info("Configuration loaded",
		logger.StringField("name", cfg.App.Name),
		logger.StringField("env", cfg.App.Env),
		logger.StringField("provider", cfg.Provider.Name),
	)
	return &app{cfg: cfg, log: appLogger, recorder: recorder, pipeline: pipeline, fetcher: fetcher}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd, screenCmd, tickersCmd, fetchCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error executing stock-screener CLI: %s", err)
		os.Exit(1)
	}
}
