package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickerListConfig(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return &config.Config{
		Input: config.Input{Directory: dir},
		Markets: map[string]config.Market{
			"asx":  {TickerFile: "asx.csv", Format: "csv", Column: "tickers", Suffix: ".AX"},
			"hkex": {TickerFile: "hkex.csv", Format: "csv", Column: "Stock Code"},
			"sgx":  {TickerFile: "sgx.json", Format: "json", Suffix: ".SI", TypeFilter: "stocks", IDField: "nc"},
		},
	}
}

func TestGetTickersCSV(t *testing.T) {
	cfg := tickerListConfig(t, map[string]string{
		"asx.csv":  "name,tickers\nBHP Group,BHP\nCBA, CBA.AX \nEmpty,\nDup,BHP.AX\n",
		"hkex.csv": "Stock Code,Name\n0005.HK,HSBC\n0700.HK,Tencent\n",
	})
	repo := NewTickerListRepository(cfg, logger.NewNop())

	got, err := repo.GetTickers(context.Background(), "asx")
	require.NoError(t, err)
	assert.Equal(t, []string{"BHP.AX", "CBA.AX"}, got)

	got, err = repo.GetTickers(context.Background(), "hkex")
	require.NoError(t, err)
	assert.Equal(t, []string{"0005.HK", "0700.HK"}, got)
}

func TestGetTickersPriceListJSON(t *testing.T) {
	cfg := tickerListConfig(t, map[string]string{
		"sgx.json": `{"data":{"prices":[{"type":"stocks","nc":"D05"},{"type":"bond","nc":"XX"}]}}`,
	})
	repo := NewTickerListRepository(cfg, logger.NewNop())

	got, err := repo.GetTickers(context.Background(), "sgx")
	require.NoError(t, err)
	assert.Equal(t, []string{"D05.SI"}, got)
}

func TestGetTickersSourceUnavailable(t *testing.T) {
	cfg := tickerListConfig(t, map[string]string{
		"hkex.csv": "",
		"sgx.json": `{"data":{"prices":[{"type":"bond","nc":"XX"}]}}`,
	})
	repo := NewTickerListRepository(cfg, logger.NewNop())

	for _, market := range []string{"asx", "hkex", "sgx", "nyse"} {
		t.Run(market, func(t *testing.T) {
			_, err := repo.GetTickers(context.Background(), market)
			assert.ErrorIs(t, err, entity.ErrSourceUnavailable)
		})
	}
}

func TestGetTickersMissingColumn(t *testing.T) {
	cfg := tickerListConfig(t, map[string]string{"asx.csv": "code\nBHP\n"})
	repo := NewTickerListRepository(cfg, logger.NewNop())

	_, err := repo.GetTickers(context.Background(), "asx")
	assert.ErrorIs(t, err, entity.ErrSourceUnavailable)
}
