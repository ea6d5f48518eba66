package repository

import (
	"context"
	"fmt"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
)

// FundamentalsRepository fetches the fundamentals snapshot of one ticker. A ticker
// the provider has no data for yields a snapshot with empty statements, not an error.
type FundamentalsRepository interface {
	GetFundamentals(ctx context.Context, ticker string) (*entity.FundamentalsSnapshot, error)
}

// NewFundamentalsRepository builds the provider selected by cfg.Provider.Name.
func NewFundamentalsRepository(cfg *config.Config, log *logger.Logger) (FundamentalsRepository, error) {
	switch cfg.Provider.Name {
	case common.ProviderYahoo:
		return NewYahooFinanceRepository(cfg, log)
	case common.ProviderEODHD:
		return NewEODHDRepository(cfg, log), nil
	case common.ProviderFile:
		return NewSnapshotFileRepository(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown fundamentals provider %q", cfg.Provider.Name)
	}
}
