package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
)

// Scraper kinds.
const (
	KindASX  = "asx"
	KindHKEX = "hkex"
	KindSGX  = "sgx"
	KindUS   = "us"
)

// Result is what a scraper produced. Raw is set by scrapers whose source
// document is stored as-is.
type Result struct {
	Tickers []string
	Raw     []byte
}

// Scraper downloads one exchange's constituent list.
type Scraper interface {
	GetName() string
	Scrape(ctx context.Context) (*Result, error)
}

// NewScraper returns the scraper configured for a market.
func NewScraper(market config.Market, cfg config.Scraper, client *http.Client) (Scraper, error) {
	if market.SourceURL == "" {
		return nil, fmt.Errorf("no source_url configured for %s scraper", market.Scraper)
	}
	src := &source{client: client, url: market.SourceURL, userAgent: cfg.UserAgent}
	if src.userAgent == "" {
		src.userAgent = common.BrowserUserAgent
	}

	switch market.Scraper {
	case KindASX:
		return &asxScraper{src: src, suffix: market.Suffix}, nil
	case KindHKEX:
		return &hkexScraper{src: src, suffix: market.Suffix}, nil
	case KindSGX:
		return &sgxScraper{src: src, typeFilter: market.TypeFilter, idField: market.IDField, suffix: market.Suffix}, nil
	case KindUS:
		return &usScraper{src: src}, nil
	default:
		return nil, fmt.Errorf("unknown scraper %q", market.Scraper)
	}
}

// source is a constituent document behind a URL.
type source struct {
	client    *http.Client
	url       string
	userAgent string
}

func (s *source) open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", s.url, resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *source) read(ctx context.Context) ([]byte, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.url, err)
	}
	return data, nil
}

// Service refreshes the ticker files in the input directory.
type Service interface {
	// Refresh scrapes a market and overwrites its ticker file. It returns the
	// file path and the number of tickers found.
	Refresh(ctx context.Context, marketID string) (string, int, error)
}

type service struct {
	cfg    *config.Config
	log    *logger.Logger
	client *http.Client
}

func NewService(cfg *config.Config, log *logger.Logger) Service {
	return &service{
		cfg:    cfg,
		log:    log,
		client: &http.Client{Timeout: cfg.Scraper.Timeout},
	}
}

func (s *service) Refresh(ctx context.Context, marketID string) (string, int, error) {
	market, ok := s.cfg.Markets[marketID]
	if !ok {
		return "", 0, fmt.Errorf("market %s is not configured", marketID)
	}
	sc, err := NewScraper(market, s.cfg.Scraper, s.client)
	if err != nil {
		return "", 0, fmt.Errorf("market %s: %w", marketID, err)
	}

	s.log.InfoContext(ctx, "Scraping constituents",
		logger.StringField("market", marketID),
		logger.StringField("scraper", sc.GetName()),
		logger.StringField("url", market.SourceURL),
	)
	res, err := sc.Scrape(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("market %s: %w", marketID, err)
	}
	if len(res.Tickers) == 0 {
		return "", 0, fmt.Errorf("market %s: scraper found no tickers", marketID)
	}

	if err := os.MkdirAll(s.cfg.Input.Directory, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create input directory: %w", err)
	}
	path := filepath.Join(s.cfg.Input.Directory, market.TickerFile)
	if market.Format == common.FormatJSON && res.Raw != nil {
		err = os.WriteFile(path, res.Raw, 0o644)
	} else {
		err = writeTickerCSV(path, market.Column, res.Tickers)
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to write ticker file %s: %w", path, err)
	}

	s.log.InfoContext(ctx, "Ticker file written",
		logger.StringField("market", marketID),
		logger.StringField("path", path),
		logger.IntField("tickers", len(res.Tickers)),
	)
	return path, len(res.Tickers), nil
}

func writeTickerCSV(path, column string, tickers []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeTickers(f, column, tickers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTickers(out io.Writer, column string, tickers []string) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{column}); err != nil {
		return err
	}
	for _, t := range tickers {
		if err := w.Write([]string{t}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
