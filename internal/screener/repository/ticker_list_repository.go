package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/utils"
)

// TickerListRepository reads the ticker list of a market from the input directory.
type TickerListRepository interface {
	GetTickers(ctx context.Context, marketID string) ([]string, error)
}

type tickerListRepository struct {
	cfg *config.Config
	log *logger.Logger
}

func NewTickerListRepository(cfg *config.Config, log *logger.Logger) TickerListRepository {
	return &tickerListRepository{cfg: cfg, log: log}
}

// GetTickers returns the market's tickers in file order with duplicates removed.
// It fails with entity.ErrSourceUnavailable when the file is missing, unreadable
// or yields no tickers.
func (r *tickerListRepository) GetTickers(ctx context.Context, marketID string) ([]string, error) {
	market, ok := r.cfg.Markets[marketID]
	if !ok {
		return nil, fmt.Errorf("%w: market %s is not configured", entity.ErrSourceUnavailable, marketID)
	}
	path := filepath.Join(r.cfg.Input.Directory, market.TickerFile)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	var raw []string
	switch market.Format {
	case common.FormatJSON:
		raw, err = readPriceList(f, market)
	default:
		raw, err = readTickerColumn(f, market)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, path, err)
	}

	tickers := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		if _, dup := seen[t]; dup {
			r.log.WarnContext(ctx, "Duplicate ticker dropped", logger.StringField("market", marketID), logger.StringField("ticker", t))
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: %s contains no tickers", entity.ErrSourceUnavailable, path)
	}

	r.log.DebugContext(ctx, "Ticker list loaded",
		logger.StringField("market", marketID),
		logger.StringField("path", path),
		logger.IntField("count", len(tickers)),
	)
	return tickers, nil
}

func readTickerColumn(rd io.Reader, market config.Market) ([]string, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == market.Column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("column %q not found", market.Column)
	}

	var tickers []string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(rec) {
			continue
		}
		if t := utils.WithSuffix(strings.TrimSpace(rec[col]), market.Suffix); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers, nil
}

func readPriceList(rd io.Reader, market config.Market) ([]string, error) {
	var resp dto.SGXPriceListResponse
	if err := json.NewDecoder(rd).Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	return resp.Tickers(market.TypeFilter, market.IDField, market.Suffix), nil
}
