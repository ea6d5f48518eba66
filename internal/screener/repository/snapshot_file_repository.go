package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/pkg/logger"
)

type snapshotFileRepository struct {
	dir string
	log *logger.Logger
}

// NewSnapshotFileRepository reads snapshots saved as <dir>/<ticker>.json, the
// format printed by the fetch command.
func NewSnapshotFileRepository(cfg *config.Config, log *logger.Logger) FundamentalsRepository {
	return &snapshotFileRepository{dir: cfg.Provider.File.Directory, log: log}
}

func (r *snapshotFileRepository) GetFundamentals(ctx context.Context, ticker string) (*entity.FundamentalsSnapshot, error) {
	if ticker == "" || strings.ContainsAny(ticker, `/\`) {
		return nil, fmt.Errorf("%w: invalid ticker %q", entity.ErrSourceUnavailable, ticker)
	}
	path := filepath.Join(r.dir, ticker+".json")

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, path, err)
	}

	var snapshot entity.FundamentalsSnapshot
	if err := json.Unmarshal(b, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrSourceUnavailable, path, err)
	}
	if snapshot.Ticker == "" {
		snapshot.Ticker = ticker
	}

	r.log.DebugContext(ctx, "Snapshot loaded", logger.StringField("ticker", ticker), logger.StringField("path", path))
	return &snapshot, nil
}
