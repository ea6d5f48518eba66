package service

import (
	"testing"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultStrategies() []strategy.ScreenStrategy {
	return []strategy.ScreenStrategy{
		strategy.NewRealEstateLowPBStrategy([]string{"reit", "real estate", "lodging"}, 0.7),
		strategy.NewNetNetStrategy(0.8, 0.5),
		strategy.NewLowDebtStrategy(0.15),
	}
}

func screenPortfolio() entity.Portfolio {
	return AssemblePortfolio("sgx", []entity.StockMetrics{
		{Ticker: "REIT1", Industry: "REIT - Retail", PB: 0.6, CashAssets: 0.1, DebtEquityCY: 0.5, ROCECY: 0.05},
		{Ticker: "CASH1", Industry: "Software", PB: 0.5, CashAssets: 0.7, DebtEquityCY: 0.1, ROCECY: 0.2},
		{Ticker: "HOTEL", Industry: "Lodging", PB: 0.65, CashAssets: 0.55, DebtEquityCY: -999, ROCECY: -999},
		{Ticker: "BANK", Industry: "Banks", PB: 1.2, CashAssets: 0.2, DebtEquityCY: 0.10, ROCECY: 0.1},
	})
}

func TestScreen(t *testing.T) {
	svc := NewScreenerService(defaultStrategies())
	portfolio := screenPortfolio()
	before := append([]entity.StockMetrics(nil), portfolio.Records...)

	results := svc.Screen(portfolio)
	require.Len(t, results, 3)

	assert.Equal(t, strategy.ScreenRealEstateLowPB, results[0].Screen)
	assert.Equal(t, []string{"REIT1", "HOTEL"}, results[0].Tickers())
	assert.Equal(t, strategy.ScreenNetNet, results[1].Screen)
	assert.Equal(t, []string{"CASH1", "HOTEL"}, results[1].Tickers())
	assert.Equal(t, strategy.ScreenLowDebt, results[2].Screen)
	assert.Equal(t, []string{"CASH1", "BANK"}, results[2].Tickers())

	assert.Equal(t, before, portfolio.Records)
	assert.Equal(t, []string{strategy.ScreenRealEstateLowPB, strategy.ScreenNetNet, strategy.ScreenLowDebt}, svc.Screens())
}

func TestScreenResultsAreSubsequences(t *testing.T) {
	portfolio := screenPortfolio()
	for _, res := range NewScreenerService(defaultStrategies()).Screen(portfolio) {
		pos := 0
		for _, rec := range res.Records {
			for pos < len(portfolio.Records) && portfolio.Records[pos].Ticker != rec.Ticker {
				pos++
			}
			require.Less(t, pos, len(portfolio.Records), "%s not in portfolio order", rec.Ticker)
		}
	}
}

func TestScreenEmptyPortfolio(t *testing.T) {
	results := NewScreenerService(defaultStrategies()).Screen(entity.Portfolio{Market: "asx"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Empty(t, r.Records)
	}
}
