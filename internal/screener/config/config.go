package config

import (
	"fmt"
	"sort"
	"time"

	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/config"

	"github.com/creasty/defaults"
)

// Input holds where ticker lists are read from.
type Input struct {
	Directory string `mapstructure:"directory" default:"input" validate:"required"`
}

// Output holds where reports are written.
type Output struct {
	Directory    string `mapstructure:"directory" default:"output" validate:"required"`
	FileTemplate string `mapstructure:"file_template" default:"{market}_{screen}.csv" validate:"required"`
	Clean        bool   `mapstructure:"clean" default:"true"`
	Timezone     string `mapstructure:"timezone" default:"UTC"`
}

// Run selects the markets processed by one run, in order.
type Run struct {
	Markets []string `mapstructure:"markets" validate:"min=1,dive,required"`
}

// Market describes one exchange's ticker list and how to read it.
type Market struct {
	TickerFile string `mapstructure:"ticker_file" validate:"required"`
	Format     string `mapstructure:"format" default:"csv" validate:"oneof=csv json"`
	Column     string `mapstructure:"column" default:"tickers"`
	Suffix     string `mapstructure:"suffix"`
	TypeFilter string `mapstructure:"type_filter" default:"stocks"`
	IDField    string `mapstructure:"id_field" default:"nc"`
	Scraper    string `mapstructure:"scraper" validate:"omitempty,oneof=asx hkex sgx us"`
	SourceURL  string `mapstructure:"source_url" validate:"omitempty,url"`
}

// YahooFinance holds the configuration for the Yahoo Finance API.
type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url" default:"https://query2.finance.yahoo.com" validate:"url"`
	CookieURL           string        `mapstructure:"cookie_url" default:"https://fc.yahoo.com" validate:"url"`
	Timeout             time.Duration `mapstructure:"timeout" default:"15s"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" default:"60" validate:"gt=0"`
	MaxRetries          int           `mapstructure:"max_retries" default:"3" validate:"gte=0"`
	RetryDelayBase      time.Duration `mapstructure:"retry_delay_base" default:"2s"`
	CrumbTTL            time.Duration `mapstructure:"crumb_ttl" default:"1h"`
	HistoryYears        int           `mapstructure:"history_years" default:"5" validate:"gt=0"`
}

// EODHD holds the configuration for the EODHD fundamentals API.
type EODHD struct {
	BaseURL             string        `mapstructure:"base_url" default:"https://eodhd.com/api" validate:"url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout" default:"30s"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute" default:"60" validate:"gt=0"`
	MaxRetries          int           `mapstructure:"max_retries" default:"3" validate:"gte=0"`
	RetryDelayBase      time.Duration `mapstructure:"retry_delay_base" default:"2s"`
	HistoryYears        int           `mapstructure:"history_years" default:"5" validate:"gt=0"`
}

// SnapshotFile reads fundamentals snapshots from JSON files.
type SnapshotFile struct {
	Directory string `mapstructure:"directory" default:"snapshots"`
}

// Provider selects and configures the fundamentals source.
type Provider struct {
	Name  string       `mapstructure:"name" default:"yahoo" validate:"oneof=yahoo eodhd file"`
	Yahoo YahooFinance `mapstructure:"yahoo"`
	EODHD EODHD        `mapstructure:"eodhd"`
	File  SnapshotFile `mapstructure:"file"`
}

// Pacing holds the per-ticker delay bounds in seconds.
type Pacing struct {
	Enabled    bool    `mapstructure:"enabled" default:"true"`
	MaxSeconds float64 `mapstructure:"max_seconds" default:"3" validate:"gte=1"`
}

type RealEstateLowPB struct {
	Enabled    bool     `mapstructure:"enabled" default:"true"`
	MaxPB      float64  `mapstructure:"max_pb" default:"0.7" validate:"gte=0"`
	Industries []string `mapstructure:"industries" validate:"min=1"`
}

type NetNet struct {
	Enabled       bool    `mapstructure:"enabled" default:"true"`
	MaxPB         float64 `mapstructure:"max_pb" default:"0.8" validate:"gte=0"`
	MinCashAssets float64 `mapstructure:"min_cash_assets" default:"0.5"`
}

type LowDebt struct {
	Enabled       bool    `mapstructure:"enabled" default:"true"`
	MaxDebtEquity float64 `mapstructure:"max_debt_equity" default:"0.15"`
}

// Composite is an extra screen that matches only what every listed screen
// matches. Listed screens use their configured thresholds even when disabled.
type Composite struct {
	Name    string   `mapstructure:"name" validate:"required"`
	Screens []string `mapstructure:"screens" validate:"min=2,dive,oneof=real_estate_low_pb net_net low_debt"`
}

// Screens holds the thresholds of each screen.
type Screens struct {
	RealEstateLowPB RealEstateLowPB `mapstructure:"real_estate_low_pb"`
	NetNet          NetNet          `mapstructure:"net_net"`
	LowDebt         LowDebt         `mapstructure:"low_debt"`
	Composites      []Composite     `mapstructure:"composites" validate:"dive"`
}

// Scraper holds settings for constituent list downloads.
type Scraper struct {
	Timeout   time.Duration `mapstructure:"timeout" default:"60s"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	TopN     int    `mapstructure:"top_n" default:"10" validate:"gte=0"`
}

// Metrics holds the Prometheus Pushgateway settings.
type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	PushURL string `mapstructure:"push_url" validate:"omitempty,url"`
	Job     string `mapstructure:"job" default:"stock_screener"`
}

// Schedule holds the cron expression used by the schedule command.
type Schedule struct {
	Cron       string `mapstructure:"cron" default:"0 18 * * 1-5"`
	Timezone   string `mapstructure:"timezone" default:"UTC"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// Config holds the full configuration of the screener.
type Config struct {
	App      config.App        `mapstructure:"app"`
	Logger   config.Logger     `mapstructure:"logger"`
	Input    Input             `mapstructure:"input"`
	Output   Output            `mapstructure:"output"`
	Run      Run               `mapstructure:"run"`
	Markets  map[string]Market `mapstructure:"markets" validate:"dive"`
	Provider Provider          `mapstructure:"provider"`
	Pacing   Pacing            `mapstructure:"pacing"`
	Screens  Screens           `mapstructure:"screens"`
	Scraper  Scraper           `mapstructure:"scraper"`
	Telegram Telegram          `mapstructure:"telegram"`
	Metrics  Metrics           `mapstructure:"metrics"`
	Schedule Schedule          `mapstructure:"schedule"`
}

// secretEnv lists keys that may only be supplied through the environment.
var secretEnv = []string{
	"provider.eodhd.api_key",
	"telegram.bot_token",
	"telegram.chat_id",
	"metrics.push_url",
}

// DefaultMarkets is used when the config file declares no markets.
func DefaultMarkets() map[string]Market {
	return map[string]Market{
		"asx": {
			TickerFile: "asx_tickers.csv",
			Format:     common.FormatCSV,
			Column:     "tickers",
			Suffix:     ".AX",
			Scraper:    "asx",
			SourceURL:  "https://www.asx200list.com/",
		},
		"hkex": {
			TickerFile: "hkex_tickers.csv",
			Format:     common.FormatCSV,
			Column:     "tickers",
			Suffix:     ".HK",
			Scraper:    "hkex",
			SourceURL:  "https://www.hkex.com.hk/eng/services/trading/securities/securitieslists/ListOfSecurities.xlsx",
		},
		"sgx": {
			TickerFile: "sgx_prices.json",
			Format:     common.FormatJSON,
			Suffix:     ".SI",
			TypeFilter: "stocks",
			IDField:    "nc",
			Scraper:    "sgx",
			SourceURL:  "https://api.sgx.com/securities/v1.1?excludetypes=bonds&params=nc,type",
		},
		"us": {
			TickerFile: "us_tickers.csv",
			Format:     common.FormatCSV,
			Column:     "tickers",
			Scraper:    "us",
		},
	}
}

// DefaultRunMarkets is the market order used when run.markets is empty.
var DefaultRunMarkets = []string{"hkex", "sgx", "asx"}

// DefaultRealEstateIndustries are the industry keywords of the real estate screen.
var DefaultRealEstateIndustries = []string{"reit", "real estate", "lodging"}

// ApplyDefaults fills values that struct tags cannot: list values and market
// entries, which are decoded after struct defaults run.
func (c *Config) ApplyDefaults() error {
	if len(c.Run.Markets) == 0 {
		c.Run.Markets = append([]string(nil), DefaultRunMarkets...)
	}
	if len(c.Screens.RealEstateLowPB.Industries) == 0 {
		c.Screens.RealEstateLowPB.Industries = append([]string(nil), DefaultRealEstateIndustries...)
	}
	if len(c.Markets) == 0 {
		c.Markets = DefaultMarkets()
	}
	for id, m := range c.Markets {
		if err := defaults.Set(&m); err != nil {
			return fmt.Errorf("market %s: %w", id, err)
		}
		c.Markets[id] = m
	}
	return nil
}

// Validate checks rules that span several sections.
func (c *Config) Validate() error {
	for _, id := range c.Run.Markets {
		if _, ok := c.Markets[id]; !ok {
			return fmt.Errorf("run market %q has no markets.%s section", id, id)
		}
	}
	names := map[string]bool{common.ScreenAll: true, "real_estate_low_pb": true, "net_net": true, "low_debt": true}
	for _, comp := range c.Screens.Composites {
		if names[comp.Name] {
			return fmt.Errorf("screens.composites: name %q is already used", comp.Name)
		}
		names[comp.Name] = true
	}
	if c.Provider.Name == common.ProviderEODHD && c.Provider.EODHD.APIKey == "" {
		return fmt.Errorf("provider.eodhd.api_key is required when provider.name is %s", common.ProviderEODHD)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.PushURL == "" {
		return fmt.Errorf("metrics.push_url is required when metrics are enabled")
	}
	return nil
}

// MarketIDs returns the configured market ids sorted by name.
func (c *Config) MarketIDs() []string {
	ids := make([]string, 0, len(c.Markets))
	for id := range c.Markets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load loads the screener configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, secretEnv...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
