package service

import (
	"fmt"
	"strings"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/pkg/common"
)

// MetricsCalculator turns a fundamentals snapshot into a metrics record.
type MetricsCalculator interface {
	// Compute returns entity.ErrEmptyFundamentals when the snapshot has no
	// income or no balance periods. Otherwise every field is either computed or
	// set to the missing sentinel, with the reason listed in Fallbacks.
	Compute(ticker string, snapshot *entity.FundamentalsSnapshot) (*entity.StockMetrics, error)
}

type metricsCalculator struct{}

func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{}
}

func (c *metricsCalculator) Compute(ticker string, snapshot *entity.FundamentalsSnapshot) (*entity.StockMetrics, error) {
	if snapshot.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", ticker, entity.ErrEmptyFundamentals)
	}

	income := newStatement(snapshot.IncomeStatement)
	balance := newStatement(snapshot.BalanceSheet)
	info := snapshot.Info

	rec := &entity.StockMetrics{
		Ticker:   ticker,
		Name:     common.DefaultName,
		Industry: common.DefaultIndustry,
	}
	if info.Name != nil && strings.TrimSpace(*info.Name) != "" {
		rec.Name = *info.Name
	}
	if info.Industry != nil && strings.TrimSpace(*info.Industry) != "" {
		rec.Industry = *info.Industry
	}

	set := func(column string, v float64, err error) {
		if err != nil {
			v = common.MissingValue
			rec.Fallbacks = append(rec.Fallbacks, entity.FieldFallback{Field: column, Reason: err})
		}
		rec.SetNumericField(column, v)
	}

	ebit, ebitErr := income.sum(entity.LineItemPretaxIncome, entity.LineItemInterestExpense)
	totalAssets, totalAssetsErr := balance.item(entity.LineItemTotalAssets)
	revenue, revenueErr := income.item(entity.LineItemTotalRevenue)
	interest, interestErr := income.item(entity.LineItemInterestExpense)
	debt, debtErr := balance.item(entity.LineItemTotalDebt)
	equity, equityErr := balance.item(entity.LineItemStockholderEquity)
	cash, cashErr := balance.item(entity.LineItemCashAndShortTerm)

	roce := ratio{ebit, ebitErr, totalAssets, totalAssetsErr}
	v, err := roce.eval(currentRatio)
	set(entity.ColumnROCECY, v, err)
	v, err = roce.eval(meanRatio)
	set(entity.ColumnROCEAvg, v, err)

	v, err = ratio{ebit, ebitErr, revenue, revenueErr}.eval(meanRatio)
	set(entity.ColumnEBITMargin, v, err)

	coverage := ratio{ebit, ebitErr, interest, interestErr}
	v, err = coverage.eval(currentRatio)
	set(entity.ColumnInterestCovCY, v, err)
	v, err = coverage.eval(meanRatio)
	set(entity.ColumnInterestCovAvg, v, err)

	debtEquity := ratio{debt, debtErr, equity, equityErr}
	v, err = debtEquity.eval(currentRatio)
	set(entity.ColumnDebtEquityCY, v, err)
	v, err = debtEquity.eval(meanRatio)
	set(entity.ColumnDebtEquityAvg, v, err)

	v, err = ratio{cash, cashErr, totalAssets, totalAssetsErr}.eval(currentRatio)
	set(entity.ColumnCashAssets, v, err)

	v, err = infoValue("priceToBook", info.PriceToBook)
	set(entity.ColumnPB, v, err)
	v, err = priceEarnings(info)
	set(entity.ColumnPE, v, err)
	v, err = marketCapMillions(info)
	set(entity.ColumnMarketCap, v, err)
	v, err = analystFollowing(info.Recommendations)
	set(entity.ColumnAnalysts, v, err)

	return rec, nil
}

// ratio pairs a numerator and denominator series with the errors from
// looking them up.
type ratio struct {
	num    series
	numErr error
	den    series
	denErr error
}

func (r ratio) eval(agg func(num, den series) (float64, error)) (float64, error) {
	if r.numErr != nil {
		return 0, r.numErr
	}
	if r.denErr != nil {
		return 0, r.denErr
	}
	return agg(r.num, r.den)
}

func infoValue(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%q: %w", name, entity.ErrFieldMissing)
	}
	return finite(*v)
}

func priceEarnings(info entity.SnapshotInfo) (float64, error) {
	price, err := infoValue("currentPrice", info.CurrentPrice)
	if err != nil {
		return 0, err
	}
	eps, err := infoValue("trailingEps", info.TrailingEPS)
	if err != nil {
		return 0, err
	}
	return divide(price, eps)
}

func marketCapMillions(info entity.SnapshotInfo) (float64, error) {
	mc, err := infoValue("marketCap", info.MarketCap)
	if err != nil {
		return 0, err
	}
	return mc / 1e6, nil
}

// analystFollowing is the mean number of analysts with a recommendation
// across the reported periods.
func analystFollowing(periods []entity.RecommendationPeriod) (float64, error) {
	if len(periods) == 0 {
		return 0, fmt.Errorf("%q: %w", "recommendations", entity.ErrFieldMissing)
	}
	var total int
	for _, p := range periods {
		total += p.Total()
	}
	return float64(total) / float64(len(periods)), nil
}
